package domain

import (
	"context"
	"time"

	"github.com/fableforge/fableforge/internal/services/game/domain/combat"
	gameservice "github.com/fableforge/fableforge/internal/services/game/service"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// callTimeout bounds one in-process service call made on behalf of an MCP
// tool or resource request.
const callTimeout = 5 * time.Second

// CampaignService exposes campaign record operations to MCP handlers.
type CampaignService interface {
	CreateCampaign(ctx context.Context, in gameservice.CreateCampaignInput) (storage.Campaign, error)
	GetCampaign(ctx context.Context, campaignID string) (storage.Campaign, error)
	ListCampaigns(ctx context.Context) ([]storage.Campaign, error)
}

// NPCService exposes NPC record operations to MCP handlers.
type NPCService interface {
	CreateNPC(ctx context.Context, in gameservice.CreateNPCInput) (storage.NPC, error)
	HealNPC(ctx context.Context, in gameservice.HealNPCInput) (gameservice.HealResult, error)
	ListNPCs(ctx context.Context, campaignID string) ([]storage.NPC, error)
}

// BestiaryService exposes creature template operations to MCP handlers.
type BestiaryService interface {
	CreateBestiaryEntry(ctx context.Context, in gameservice.CreateBestiaryEntryInput) (storage.BestiaryEntry, error)
	ListBestiary(ctx context.Context, campaignID string) ([]storage.BestiaryEntry, error)
}

// CombatService exposes combat session operations to MCP handlers.
type CombatService interface {
	BeginCombat(ctx context.Context, campaignID string, participants []gameservice.ParticipantInput) (*combat.Session, error)
	Attack(ctx context.Context, campaignID, attackerID, targetID string) (combat.AttackEvent, error)
	RemoveParticipant(ctx context.Context, campaignID, participantID, reason string) (gameservice.RemoveResult, error)
	CombatStatus(ctx context.Context, campaignID string) (*combat.Session, error)
}

// GameService is the full service surface the MCP server registers against.
type GameService interface {
	CampaignService
	NPCService
	BestiaryService
	CombatService
}
