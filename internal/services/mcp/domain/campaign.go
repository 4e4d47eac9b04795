package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	gameservice "github.com/fableforge/fableforge/internal/services/game/service"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// CampaignCreateInput represents the MCP tool input for campaign creation.
type CampaignCreateInput struct {
	Name              string `json:"name" jsonschema:"campaign name"`
	PlayerName        string `json:"player_name" jsonschema:"player character name"`
	PlayerDescription string `json:"player_description,omitempty" jsonschema:"optional player character description"`
	PlayerMaxHealth   int    `json:"player_max_health,omitempty" jsonschema:"optional player max health, defaults to 20"`
}

// CampaignCreateResult represents the MCP tool output for campaign creation.
type CampaignCreateResult struct {
	ID              string `json:"id" jsonschema:"campaign identifier"`
	Name            string `json:"name" jsonschema:"campaign name"`
	Slug            string `json:"slug" jsonschema:"campaign slug"`
	PlayerName      string `json:"player_name" jsonschema:"player character name"`
	PlayerHealth    int    `json:"player_health" jsonschema:"player current health"`
	PlayerMaxHealth int    `json:"player_max_health" jsonschema:"player max health"`
	CreatedAt       string `json:"created_at" jsonschema:"RFC3339 timestamp when campaign was created"`
}

// CampaignListEntry represents a readable campaign metadata entry.
type CampaignListEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	PlayerName string `json:"player_name"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// CampaignListPayload represents the MCP resource payload for campaign listings.
type CampaignListPayload struct {
	Campaigns []CampaignListEntry `json:"campaigns"`
}

// CampaignPayload represents the MCP resource payload for a single campaign.
type CampaignPayload struct {
	Campaign CampaignDetail `json:"campaign"`
}

// CampaignDetail represents a full campaign record including the player.
type CampaignDetail struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Slug              string `json:"slug"`
	PlayerName        string `json:"player_name"`
	PlayerDescription string `json:"player_description"`
	PlayerHealth      int    `json:"player_health"`
	PlayerMaxHealth   int    `json:"player_max_health"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

// CampaignCreateTool defines the MCP tool schema for creating campaigns.
func CampaignCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "campaign_create",
		Description: "Creates a new campaign with a player character. Returns the campaign ID.",
	}
}

// CampaignListResource defines the MCP resource for campaign listings.
func CampaignListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "campaign_list",
		Title:       "Campaigns",
		Description: "Readable listing of campaign metadata records",
		MIMEType:    "application/json",
		URI:         "campaign://list",
	}
}

// CampaignResourceTemplate defines the MCP resource template for one campaign.
func CampaignResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "campaign",
		Title:       "Campaign",
		Description: "Readable campaign record. URI format: campaign://{campaign_id}",
		MIMEType:    "application/json",
		URITemplate: "campaign://{campaign_id}",
	}
}

// CampaignCreateHandler executes a campaign creation request.
func CampaignCreateHandler(svc CampaignService) mcp.ToolHandlerFor[CampaignCreateInput, CampaignCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampaignCreateInput) (*mcp.CallToolResult, CampaignCreateResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		campaign, err := svc.CreateCampaign(runCtx, gameservice.CreateCampaignInput{
			Name:              input.Name,
			PlayerName:        input.PlayerName,
			PlayerDescription: input.PlayerDescription,
			PlayerMaxHealth:   input.PlayerMaxHealth,
		})
		if err != nil {
			return nil, CampaignCreateResult{}, fmt.Errorf("campaign create failed: %w", err)
		}

		result := CampaignCreateResult{
			ID:              campaign.ID,
			Name:            campaign.Name,
			Slug:            campaign.Slug,
			PlayerName:      campaign.Player.Name,
			PlayerHealth:    campaign.Player.Health,
			PlayerMaxHealth: campaign.Player.MaxHealth,
			CreatedAt:       formatTimestamp(campaign.CreatedAt),
		}
		return nil, result, nil
	}
}

// CampaignListResourceHandler returns a readable campaign listing resource.
func CampaignListResourceHandler(svc CampaignService) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if svc == nil {
			return nil, fmt.Errorf("campaign service is not configured")
		}

		uri := CampaignListResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		campaigns, err := svc.ListCampaigns(runCtx)
		if err != nil {
			return nil, fmt.Errorf("campaign list failed: %w", err)
		}

		payload := CampaignListPayload{}
		for _, campaign := range campaigns {
			payload.Campaigns = append(payload.Campaigns, CampaignListEntry{
				ID:         campaign.ID,
				Name:       campaign.Name,
				Slug:       campaign.Slug,
				PlayerName: campaign.Player.Name,
				CreatedAt:  formatTimestamp(campaign.CreatedAt),
				UpdatedAt:  formatTimestamp(campaign.UpdatedAt),
			})
		}
		return jsonResourceResult(uri, payload)
	}
}

// CampaignResourceHandler returns a readable single campaign resource.
func CampaignResourceHandler(svc CampaignService) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if svc == nil {
			return nil, fmt.Errorf("campaign service is not configured")
		}
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("campaign ID is required; use URI format campaign://{campaign_id}")
		}
		uri := req.Params.URI

		campaignID, err := parseCampaignIDFromCampaignURI(uri)
		if err != nil {
			return nil, fmt.Errorf("parse campaign ID from URI: %w", err)
		}

		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		campaign, err := svc.GetCampaign(runCtx, campaignID)
		if err != nil {
			return nil, fmt.Errorf("get campaign failed: %w", err)
		}

		payload := CampaignPayload{Campaign: campaignDetail(campaign)}
		return jsonResourceResult(uri, payload)
	}
}

func campaignDetail(campaign storage.Campaign) CampaignDetail {
	return CampaignDetail{
		ID:                campaign.ID,
		Name:              campaign.Name,
		Slug:              campaign.Slug,
		PlayerName:        campaign.Player.Name,
		PlayerDescription: campaign.Player.Description,
		PlayerHealth:      campaign.Player.Health,
		PlayerMaxHealth:   campaign.Player.MaxHealth,
		CreatedAt:         formatTimestamp(campaign.CreatedAt),
		UpdatedAt:         formatTimestamp(campaign.UpdatedAt),
	}
}

// formatTimestamp returns an RFC3339 timestamp or empty string.
func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(time.RFC3339)
}

// jsonResourceResult wraps a payload as an indented JSON resource read result.
func jsonResourceResult(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource payload: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
