package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	gameservice "github.com/fableforge/fableforge/internal/services/game/service"
)

// NPCCreateInput represents the MCP tool input for NPC creation.
type NPCCreateInput struct {
	CampaignID  string   `json:"campaign_id" jsonschema:"campaign identifier"`
	Name        string   `json:"name" jsonschema:"NPC name"`
	Description string   `json:"description,omitempty" jsonschema:"optional NPC description"`
	Health      int      `json:"health,omitempty" jsonschema:"optional current health, defaults to max health"`
	MaxHealth   int      `json:"max_health,omitempty" jsonschema:"optional max health, defaults to 20"`
	HitChance   float64  `json:"hit_chance,omitempty" jsonschema:"optional hit chance in [0,1], defaults to 0.50 in combat"`
	Keywords    []string `json:"keywords,omitempty" jsonschema:"optional lookup keywords"`
}

// NPCCreateResult represents the MCP tool output for NPC creation.
type NPCCreateResult struct {
	CampaignID string   `json:"campaign_id" jsonschema:"campaign identifier"`
	Slug       string   `json:"slug" jsonschema:"NPC slug derived from the name"`
	Name       string   `json:"name" jsonschema:"NPC name"`
	Health     int      `json:"health" jsonschema:"current health"`
	MaxHealth  int      `json:"max_health" jsonschema:"max health"`
	Keywords   []string `json:"keywords" jsonschema:"lookup keywords"`
	CreatedAt  string   `json:"created_at" jsonschema:"RFC3339 timestamp when NPC was created"`
}

// NPCHealInput represents the MCP tool input for healing an NPC.
type NPCHealInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	Name       string `json:"name" jsonschema:"NPC name or keyword"`
	HealDice   string `json:"heal_dice" jsonschema:"healing dice formula (e.g. 1d6, 2d4+2, 5)"`
}

// NPCHealResult represents the MCP tool output for healing an NPC.
type NPCHealResult struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	Slug       string `json:"slug" jsonschema:"NPC slug"`
	Name       string `json:"name" jsonschema:"NPC name"`
	Healed     int    `json:"healed" jsonschema:"health restored after clamping at max"`
	Roll       int    `json:"roll" jsonschema:"raw healing roll"`
	Seed       int64  `json:"seed" jsonschema:"RNG seed used for the roll"`
	Health     int    `json:"health" jsonschema:"health after healing"`
	MaxHealth  int    `json:"max_health" jsonschema:"max health"`
}

// NPCListEntry represents a readable NPC entry.
type NPCListEntry struct {
	CampaignID  string   `json:"campaign_id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Health      int      `json:"health"`
	MaxHealth   int      `json:"max_health"`
	HitChance   float64  `json:"hit_chance"`
	Keywords    []string `json:"keywords"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// NPCListPayload represents the MCP resource payload for NPC listings.
type NPCListPayload struct {
	NPCs []NPCListEntry `json:"npcs"`
}

// NPCCreateTool defines the MCP tool schema for creating NPCs.
func NPCCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "npc_create",
		Description: "Creates a campaign NPC with health, hit chance, and lookup keywords.",
	}
}

// NPCHealTool defines the MCP tool schema for healing NPCs.
func NPCHealTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "npc_heal",
		Description: "Heals an NPC by rolling a dice formula. Accepts NPC name or keyword. Cannot exceed max health.",
	}
}

// NPCListResourceTemplate defines the MCP resource template for NPC listings.
func NPCListResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "npc_list",
		Title:       "NPCs",
		Description: "Readable listing of NPCs for a campaign. URI format: campaign://{campaign_id}/npcs",
		MIMEType:    "application/json",
		URITemplate: "campaign://{campaign_id}/npcs",
	}
}

// NPCCreateHandler executes an NPC creation request.
func NPCCreateHandler(svc NPCService) mcp.ToolHandlerFor[NPCCreateInput, NPCCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NPCCreateInput) (*mcp.CallToolResult, NPCCreateResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		npc, err := svc.CreateNPC(runCtx, gameservice.CreateNPCInput{
			CampaignID:  input.CampaignID,
			Name:        input.Name,
			Description: input.Description,
			Health:      input.Health,
			MaxHealth:   input.MaxHealth,
			HitChance:   input.HitChance,
			Keywords:    input.Keywords,
		})
		if err != nil {
			return nil, NPCCreateResult{}, fmt.Errorf("npc create failed: %w", err)
		}

		result := NPCCreateResult{
			CampaignID: npc.CampaignID,
			Slug:       npc.Slug,
			Name:       npc.Name,
			Health:     npc.Health,
			MaxHealth:  npc.MaxHealth,
			Keywords:   npc.Keywords,
			CreatedAt:  formatTimestamp(npc.CreatedAt),
		}
		return nil, result, nil
	}
}

// NPCHealHandler executes an NPC heal request.
func NPCHealHandler(svc NPCService) mcp.ToolHandlerFor[NPCHealInput, NPCHealResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NPCHealInput) (*mcp.CallToolResult, NPCHealResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		heal, err := svc.HealNPC(runCtx, gameservice.HealNPCInput{
			CampaignID: input.CampaignID,
			Name:       input.Name,
			HealDice:   input.HealDice,
		})
		if err != nil {
			return nil, NPCHealResult{}, fmt.Errorf("npc heal failed: %w", err)
		}

		result := NPCHealResult{
			CampaignID: heal.NPC.CampaignID,
			Slug:       heal.NPC.Slug,
			Name:       heal.NPC.Name,
			Healed:     heal.Healed,
			Roll:       heal.Roll,
			Seed:       heal.Seed,
			Health:     heal.NPC.Health,
			MaxHealth:  heal.NPC.MaxHealth,
		}
		return nil, result, nil
	}
}

// NPCListResourceHandler returns a readable NPC listing resource.
func NPCListResourceHandler(svc NPCService) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if svc == nil {
			return nil, fmt.Errorf("npc service is not configured")
		}
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("campaign ID is required; use URI format campaign://{campaign_id}/npcs")
		}
		uri := req.Params.URI

		campaignID, err := parseCampaignIDFromResourceURI(uri, "npcs")
		if err != nil {
			return nil, fmt.Errorf("parse campaign ID from URI: %w", err)
		}

		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		npcs, err := svc.ListNPCs(runCtx, campaignID)
		if err != nil {
			return nil, fmt.Errorf("npc list failed: %w", err)
		}

		payload := NPCListPayload{}
		for _, npc := range npcs {
			payload.NPCs = append(payload.NPCs, NPCListEntry{
				CampaignID:  npc.CampaignID,
				Slug:        npc.Slug,
				Name:        npc.Name,
				Description: npc.Description,
				Health:      npc.Health,
				MaxHealth:   npc.MaxHealth,
				HitChance:   npc.HitChance,
				Keywords:    npc.Keywords,
				CreatedAt:   formatTimestamp(npc.CreatedAt),
				UpdatedAt:   formatTimestamp(npc.UpdatedAt),
			})
		}
		return jsonResourceResult(uri, payload)
	}
}
