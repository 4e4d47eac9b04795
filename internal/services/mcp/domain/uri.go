package domain

import (
	"fmt"
	"strings"
)

const campaignURIPrefix = "campaign://"

// parseCampaignIDFromResourceURI extracts the campaign ID from a URI of the
// form campaign://{campaign_id}/{resourceType}. The resourceType parameter is
// the resource suffix (e.g., "npcs", "bestiary", "combat").
func parseCampaignIDFromResourceURI(uri, resourceType string) (string, error) {
	suffix := "/" + resourceType

	if !strings.HasPrefix(uri, campaignURIPrefix) {
		return "", fmt.Errorf("URI must start with %q", campaignURIPrefix)
	}
	if !strings.HasSuffix(uri, suffix) {
		return "", fmt.Errorf("URI must end with %q", suffix)
	}

	campaignID := strings.TrimPrefix(uri, campaignURIPrefix)
	campaignID = strings.TrimSuffix(campaignID, suffix)
	campaignID = strings.TrimSpace(campaignID)

	if campaignID == "" {
		return "", fmt.Errorf("campaign ID is required in URI")
	}
	// Reject the placeholder value - actual campaign IDs must be provided
	if campaignID == "_" {
		return "", fmt.Errorf("campaign ID placeholder '_' is not a valid campaign ID")
	}
	if strings.ContainsAny(campaignID, "/?#") {
		return "", fmt.Errorf("URI must contain exactly one path segment after the campaign ID")
	}

	return campaignID, nil
}

// parseCampaignIDFromCampaignURI extracts the campaign ID from a URI of the
// form campaign://{campaign_id}. URIs with additional path segments, query
// parameters, or fragments belong to other resource handlers and are rejected.
func parseCampaignIDFromCampaignURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, campaignURIPrefix) {
		return "", fmt.Errorf("URI must start with %q", campaignURIPrefix)
	}

	campaignID := strings.TrimPrefix(uri, campaignURIPrefix)
	campaignID = strings.TrimSpace(campaignID)

	if campaignID == "" {
		return "", fmt.Errorf("campaign ID is required in URI")
	}
	if campaignID == "_" {
		return "", fmt.Errorf("campaign ID placeholder '_' is not a valid campaign ID")
	}
	if campaignID == "list" {
		return "", fmt.Errorf("campaign://list is the listing resource, not a campaign ID")
	}
	if strings.ContainsAny(campaignID, "/?#") {
		return "", fmt.Errorf("URI must not contain path segments, query parameters, or fragments after campaign ID")
	}

	return campaignID, nil
}
