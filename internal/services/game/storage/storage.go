// Package storage defines persistence contracts for campaign state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/fableforge/fableforge/internal/services/game/domain/combat"
	"github.com/fableforge/fableforge/internal/services/game/domain/threat"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a record with the same key is already stored.
var ErrAlreadyExists = errors.New("record already exists")

// PlayerCharacter is the campaign's player-controlled character.
type PlayerCharacter struct {
	Name        string
	Description string
	Health      int
	MaxHealth   int
	HitChance   float64
}

// Campaign is one campaign's metadata record.
type Campaign struct {
	ID        string
	Name      string
	Slug      string
	Player    PlayerCharacter
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NPC is a campaign-scoped non-player character record.
type NPC struct {
	CampaignID  string
	Slug        string
	Name        string
	Description string
	Health      int
	MaxHealth   int
	// HitChance zero means unspecified; combat resolution falls back to 0.50.
	HitChance float64
	Keywords  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BestiaryEntry is a creature template used as a baseline for combatants.
type BestiaryEntry struct {
	CampaignID  string
	NameKey     string
	Name        string
	ThreatLevel threat.Level
	HPFormula   string
	CreatedAt   time.Time
}

// CampaignStore persists campaign metadata records.
type CampaignStore interface {
	PutCampaign(ctx context.Context, campaign Campaign) error
	GetCampaign(ctx context.Context, id string) (Campaign, error)
	ListCampaigns(ctx context.Context) ([]Campaign, error)
}

// NPCStore persists campaign-scoped NPC records.
type NPCStore interface {
	PutNPC(ctx context.Context, npc NPC) error
	GetNPC(ctx context.Context, campaignID, slug string) (NPC, error)
	ListNPCs(ctx context.Context, campaignID string) ([]NPC, error)
}

// BestiaryStore persists creature templates.
type BestiaryStore interface {
	PutBestiaryEntry(ctx context.Context, entry BestiaryEntry) error
	GetBestiaryEntry(ctx context.Context, campaignID, nameKey string) (BestiaryEntry, error)
	ListBestiary(ctx context.Context, campaignID string) ([]BestiaryEntry, error)
}

// CombatStore persists combat sessions with their combatants and audit log.
//
// PutSession must write the session row, combatant statuses, and any newly
// appended audit events atomically; the service holds the per-campaign lock
// across the whole load-modify-save cycle.
type CombatStore interface {
	GetActiveSession(ctx context.Context, campaignID string) (*combat.Session, error)
	PutSession(ctx context.Context, session *combat.Session) error
}

// Store is the full persistence surface the game service consumes.
type Store interface {
	CampaignStore
	NPCStore
	BestiaryStore
	CombatStore
}
