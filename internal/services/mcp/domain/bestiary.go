package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	gameservice "github.com/fableforge/fableforge/internal/services/game/service"
)

// BestiaryEntryCreateInput represents the MCP tool input for creature templates.
type BestiaryEntryCreateInput struct {
	CampaignID  string `json:"campaign_id" jsonschema:"campaign identifier"`
	Name        string `json:"name" jsonschema:"creature name"`
	ThreatLevel string `json:"threat_level" jsonschema:"threat level (none, negligible, low, moderate, high, deadly, certain_death)"`
	HPFormula   string `json:"hp_formula" jsonschema:"hit points dice formula (e.g. 2d6+2)"`
}

// BestiaryEntryCreateResult represents the MCP tool output for creature templates.
type BestiaryEntryCreateResult struct {
	CampaignID  string `json:"campaign_id" jsonschema:"campaign identifier"`
	NameKey     string `json:"name_key" jsonschema:"creature key derived from the name"`
	Name        string `json:"name" jsonschema:"creature name"`
	ThreatLevel string `json:"threat_level" jsonschema:"threat level"`
	HPFormula   string `json:"hp_formula" jsonschema:"hit points dice formula"`
	CreatedAt   string `json:"created_at" jsonschema:"RFC3339 timestamp when entry was created"`
}

// BestiaryListEntry represents a readable bestiary entry.
type BestiaryListEntry struct {
	CampaignID  string `json:"campaign_id"`
	NameKey     string `json:"name_key"`
	Name        string `json:"name"`
	ThreatLevel string `json:"threat_level"`
	HPFormula   string `json:"hp_formula"`
	CreatedAt   string `json:"created_at"`
}

// BestiaryListPayload represents the MCP resource payload for bestiary listings.
type BestiaryListPayload struct {
	Entries []BestiaryListEntry `json:"entries"`
}

// BestiaryEntryCreateTool defines the MCP tool schema for creating creature templates.
func BestiaryEntryCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "bestiary_entry_create",
		Description: "Adds a creature template with a threat level and HP formula to a campaign's bestiary.",
	}
}

// BestiaryListResourceTemplate defines the MCP resource template for bestiary listings.
func BestiaryListResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "bestiary_list",
		Title:       "Bestiary",
		Description: "Readable listing of creature templates for a campaign. URI format: campaign://{campaign_id}/bestiary",
		MIMEType:    "application/json",
		URITemplate: "campaign://{campaign_id}/bestiary",
	}
}

// BestiaryEntryCreateHandler executes a creature template creation request.
func BestiaryEntryCreateHandler(svc BestiaryService) mcp.ToolHandlerFor[BestiaryEntryCreateInput, BestiaryEntryCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BestiaryEntryCreateInput) (*mcp.CallToolResult, BestiaryEntryCreateResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		entry, err := svc.CreateBestiaryEntry(runCtx, gameservice.CreateBestiaryEntryInput{
			CampaignID:  input.CampaignID,
			Name:        input.Name,
			ThreatLevel: input.ThreatLevel,
			HPFormula:   input.HPFormula,
		})
		if err != nil {
			return nil, BestiaryEntryCreateResult{}, fmt.Errorf("bestiary entry create failed: %w", err)
		}

		result := BestiaryEntryCreateResult{
			CampaignID:  entry.CampaignID,
			NameKey:     entry.NameKey,
			Name:        entry.Name,
			ThreatLevel: string(entry.ThreatLevel),
			HPFormula:   entry.HPFormula,
			CreatedAt:   formatTimestamp(entry.CreatedAt),
		}
		return nil, result, nil
	}
}

// BestiaryListResourceHandler returns a readable bestiary listing resource.
func BestiaryListResourceHandler(svc BestiaryService) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if svc == nil {
			return nil, fmt.Errorf("bestiary service is not configured")
		}
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("campaign ID is required; use URI format campaign://{campaign_id}/bestiary")
		}
		uri := req.Params.URI

		campaignID, err := parseCampaignIDFromResourceURI(uri, "bestiary")
		if err != nil {
			return nil, fmt.Errorf("parse campaign ID from URI: %w", err)
		}

		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		entries, err := svc.ListBestiary(runCtx, campaignID)
		if err != nil {
			return nil, fmt.Errorf("bestiary list failed: %w", err)
		}

		payload := BestiaryListPayload{}
		for _, entry := range entries {
			payload.Entries = append(payload.Entries, BestiaryListEntry{
				CampaignID:  entry.CampaignID,
				NameKey:     entry.NameKey,
				Name:        entry.Name,
				ThreatLevel: string(entry.ThreatLevel),
				HPFormula:   entry.HPFormula,
				CreatedAt:   formatTimestamp(entry.CreatedAt),
			})
		}
		return jsonResourceResult(uri, payload)
	}
}
