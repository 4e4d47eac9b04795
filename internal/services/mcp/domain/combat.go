package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fableforge/fableforge/internal/services/game/domain/combat"
	gameservice "github.com/fableforge/fableforge/internal/services/game/service"
)

// CombatParticipantInput describes one combatant joining a combat.
type CombatParticipantInput struct {
	Name              string   `json:"name" jsonschema:"participant display name"`
	Team              string   `json:"team" jsonschema:"team label (e.g. party, foes)"`
	Kind              string   `json:"kind" jsonschema:"source kind (npc, bestiary, player)"`
	Ref               string   `json:"ref,omitempty" jsonschema:"optional backing record key, defaults to the name"`
	HitChanceOverride *float64 `json:"hit_chance_override,omitempty" jsonschema:"optional hit chance in [0,1] overriding the record-derived chance"`
}

// CombatBeginInput represents the MCP tool input for starting combat.
type CombatBeginInput struct {
	CampaignID   string                   `json:"campaign_id" jsonschema:"campaign identifier"`
	Participants []CombatParticipantInput `json:"participants" jsonschema:"combatants spanning at least two teams"`
}

// CombatantResult represents one combatant in MCP responses.
type CombatantResult struct {
	ID        string  `json:"id" jsonschema:"combatant identifier"`
	Name      string  `json:"name" jsonschema:"display name"`
	Team      string  `json:"team" jsonschema:"team label"`
	Kind      string  `json:"kind" jsonschema:"source kind"`
	Ref       string  `json:"ref" jsonschema:"backing record key"`
	HitChance float64 `json:"hit_chance" jsonschema:"hit chance frozen at join time"`
	Status    string  `json:"status" jsonschema:"combatant status"`
}

// CombatBeginResult represents the MCP tool output for starting combat.
type CombatBeginResult struct {
	SessionID  string            `json:"session_id" jsonschema:"combat session identifier"`
	CampaignID string            `json:"campaign_id" jsonschema:"campaign identifier"`
	Status     string            `json:"status" jsonschema:"session status"`
	Combatants []CombatantResult `json:"combatants" jsonschema:"resolved combatants"`
	StartedAt  string            `json:"started_at" jsonschema:"RFC3339 timestamp when combat started"`
}

// AttackInput represents the MCP tool input for resolving an attack.
type AttackInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	AttackerID string `json:"attacker_id" jsonschema:"attacking combatant identifier"`
	TargetID   string `json:"target_id" jsonschema:"target combatant identifier"`
}

// AttackResult represents the MCP tool output for a resolved attack.
type AttackResult struct {
	AttackerID   string  `json:"attacker_id" jsonschema:"attacking combatant identifier"`
	TargetID     string  `json:"target_id" jsonschema:"target combatant identifier"`
	HitChance    float64 `json:"hit_chance" jsonschema:"attacker hit chance used for the roll"`
	Roll         float64 `json:"roll" jsonschema:"uniform draw in [0,1)"`
	Seed         int64   `json:"seed" jsonschema:"RNG seed used for the draw"`
	Hit          bool    `json:"hit" jsonschema:"whether the attack hit"`
	TargetStatus string  `json:"target_status" jsonschema:"target status after the attack"`
	OccurredAt   string  `json:"occurred_at" jsonschema:"RFC3339 timestamp of the attack"`
}

// CombatRemoveInput represents the MCP tool input for removing a participant.
type CombatRemoveInput struct {
	CampaignID    string `json:"campaign_id" jsonschema:"campaign identifier"`
	ParticipantID string `json:"participant_id" jsonschema:"combatant identifier"`
	Reason        string `json:"reason" jsonschema:"removal reason (death, flee, surrender)"`
}

// CombatRemoveResult represents the MCP tool output for removing a participant.
type CombatRemoveResult struct {
	ParticipantID string `json:"participant_id" jsonschema:"combatant identifier"`
	Name          string `json:"name" jsonschema:"combatant display name"`
	Status        string `json:"status" jsonschema:"combatant status after removal"`
	SessionStatus string `json:"session_status" jsonschema:"session status after removal"`
	SessionEnded  bool   `json:"session_ended" jsonschema:"whether the removal ended the combat"`
}

// CombatStatusInput represents the MCP tool input for reading combat state.
type CombatStatusInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
}

// AttackLogEntry represents one audit-log entry in MCP responses.
type AttackLogEntry struct {
	AttackerID   string  `json:"attacker_id"`
	TargetID     string  `json:"target_id"`
	HitChance    float64 `json:"hit_chance"`
	Roll         float64 `json:"roll"`
	Seed         int64   `json:"seed"`
	Hit          bool    `json:"hit"`
	TargetStatus string  `json:"target_status"`
	OccurredAt   string  `json:"occurred_at"`
}

// CombatStatusResult represents the MCP tool output for combat state.
type CombatStatusResult struct {
	SessionID  string            `json:"session_id" jsonschema:"combat session identifier"`
	CampaignID string            `json:"campaign_id" jsonschema:"campaign identifier"`
	Status     string            `json:"status" jsonschema:"session status"`
	Teams      []string          `json:"teams" jsonschema:"team labels in insertion order"`
	Combatants []CombatantResult `json:"combatants" jsonschema:"combatants in insertion order"`
	Log        []AttackLogEntry  `json:"log" jsonschema:"append-only attack audit log"`
	StartedAt  string            `json:"started_at" jsonschema:"RFC3339 timestamp when combat started"`
	EndedAt    string            `json:"ended_at,omitempty" jsonschema:"RFC3339 timestamp when combat ended, if applicable"`
}

// CombatPayload represents the MCP resource payload for an active combat.
type CombatPayload struct {
	Combat CombatStatusResult `json:"combat"`
}

// CombatBeginTool defines the MCP tool schema for starting combat.
func CombatBeginTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_begin",
		Description: "Starts a combat session for a campaign. Enforces at most one active combat per campaign.",
	}
}

// AttackTool defines the MCP tool schema for resolving attacks.
func AttackTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "attack",
		Description: "Resolves one attack between combatants. Records the roll in the audit log; never removes anyone.",
	}
}

// CombatRemoveParticipantTool defines the MCP tool schema for removing combatants.
func CombatRemoveParticipantTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_remove_participant",
		Description: "Removes a combatant for death, flee, or surrender. Ends the combat when a whole team is out.",
	}
}

// CombatStatusGetTool defines the MCP tool schema for reading combat state.
func CombatStatusGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_status_get",
		Description: "Returns the campaign's active combat snapshot including the attack audit log.",
	}
}

// CombatResourceTemplate defines the MCP resource template for active combat.
func CombatResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "combat",
		Title:       "Combat",
		Description: "Readable active combat snapshot. URI format: campaign://{campaign_id}/combat",
		MIMEType:    "application/json",
		URITemplate: "campaign://{campaign_id}/combat",
	}
}

// CombatBeginHandler executes a combat begin request.
func CombatBeginHandler(svc CombatService) mcp.ToolHandlerFor[CombatBeginInput, CombatBeginResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatBeginInput) (*mcp.CallToolResult, CombatBeginResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		participants := make([]gameservice.ParticipantInput, 0, len(input.Participants))
		for _, participant := range input.Participants {
			participants = append(participants, gameservice.ParticipantInput{
				Name:              participant.Name,
				Team:              participant.Team,
				Kind:              participant.Kind,
				Ref:               participant.Ref,
				HitChanceOverride: participant.HitChanceOverride,
			})
		}

		session, err := svc.BeginCombat(runCtx, input.CampaignID, participants)
		if err != nil {
			return nil, CombatBeginResult{}, fmt.Errorf("combat begin failed: %w", err)
		}

		result := CombatBeginResult{
			SessionID:  session.ID,
			CampaignID: session.CampaignID,
			Status:     string(session.Status),
			Combatants: combatantResults(session.Combatants),
			StartedAt:  formatTimestamp(session.StartedAt),
		}
		return nil, result, nil
	}
}

// AttackHandler executes an attack resolution request.
func AttackHandler(svc CombatService) mcp.ToolHandlerFor[AttackInput, AttackResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AttackInput) (*mcp.CallToolResult, AttackResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		event, err := svc.Attack(runCtx, input.CampaignID, input.AttackerID, input.TargetID)
		if err != nil {
			return nil, AttackResult{}, fmt.Errorf("attack failed: %w", err)
		}

		result := AttackResult{
			AttackerID:   event.AttackerID,
			TargetID:     event.TargetID,
			HitChance:    event.HitChance,
			Roll:         event.Roll,
			Seed:         event.Seed,
			Hit:          event.Hit,
			TargetStatus: string(event.TargetStatus),
			OccurredAt:   formatTimestamp(event.OccurredAt),
		}
		return nil, result, nil
	}
}

// CombatRemoveParticipantHandler executes a participant removal request.
func CombatRemoveParticipantHandler(svc CombatService) mcp.ToolHandlerFor[CombatRemoveInput, CombatRemoveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatRemoveInput) (*mcp.CallToolResult, CombatRemoveResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		removed, err := svc.RemoveParticipant(runCtx, input.CampaignID, input.ParticipantID, input.Reason)
		if err != nil {
			return nil, CombatRemoveResult{}, fmt.Errorf("combat remove participant failed: %w", err)
		}

		result := CombatRemoveResult{
			ParticipantID: removed.Combatant.ID,
			Name:          removed.Combatant.Name,
			Status:        string(removed.Combatant.Status),
			SessionStatus: string(removed.Session.Status),
			SessionEnded:  removed.Session.Status == combat.SessionEnded,
		}
		return nil, result, nil
	}
}

// CombatStatusGetHandler executes a combat status read request.
func CombatStatusGetHandler(svc CombatService) mcp.ToolHandlerFor[CombatStatusInput, CombatStatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatStatusInput) (*mcp.CallToolResult, CombatStatusResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		session, err := svc.CombatStatus(runCtx, input.CampaignID)
		if err != nil {
			return nil, CombatStatusResult{}, fmt.Errorf("combat status failed: %w", err)
		}
		return nil, combatStatusResult(session), nil
	}
}

// CombatResourceHandler returns a readable active combat resource.
func CombatResourceHandler(svc CombatService) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if svc == nil {
			return nil, fmt.Errorf("combat service is not configured")
		}
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("campaign ID is required; use URI format campaign://{campaign_id}/combat")
		}
		uri := req.Params.URI

		campaignID, err := parseCampaignIDFromResourceURI(uri, "combat")
		if err != nil {
			return nil, fmt.Errorf("parse campaign ID from URI: %w", err)
		}

		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		session, err := svc.CombatStatus(runCtx, campaignID)
		if err != nil {
			return nil, fmt.Errorf("combat status failed: %w", err)
		}

		payload := CombatPayload{Combat: combatStatusResult(session)}
		return jsonResourceResult(uri, payload)
	}
}

func combatantResults(combatants []combat.Combatant) []CombatantResult {
	out := make([]CombatantResult, 0, len(combatants))
	for _, c := range combatants {
		out = append(out, CombatantResult{
			ID:        c.ID,
			Name:      c.Name,
			Team:      c.Team,
			Kind:      string(c.Kind),
			Ref:       c.SourceRef,
			HitChance: c.HitChance,
			Status:    string(c.Status),
		})
	}
	return out
}

func combatStatusResult(session *combat.Session) CombatStatusResult {
	result := CombatStatusResult{
		SessionID:  session.ID,
		CampaignID: session.CampaignID,
		Status:     string(session.Status),
		Teams:      session.Teams(),
		Combatants: combatantResults(session.Combatants),
		StartedAt:  formatTimestamp(session.StartedAt),
	}
	for _, event := range session.Log {
		result.Log = append(result.Log, AttackLogEntry{
			AttackerID:   event.AttackerID,
			TargetID:     event.TargetID,
			HitChance:    event.HitChance,
			Roll:         event.Roll,
			Seed:         event.Seed,
			Hit:          event.Hit,
			TargetStatus: string(event.TargetStatus),
			OccurredAt:   formatTimestamp(event.OccurredAt),
		})
	}
	if session.EndedAt != nil {
		result.EndedAt = formatTimestamp(*session.EndedAt)
	}
	return result
}
