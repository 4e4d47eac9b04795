package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	apperrors "github.com/fableforge/fableforge/internal/errors"
	"github.com/fableforge/fableforge/internal/services/game/domain/dice"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// CreateNPCInput carries the fields for a new NPC record.
type CreateNPCInput struct {
	CampaignID  string
	Name        string
	Description string
	Health      int
	MaxHealth   int
	HitChance   float64
	Keywords    []string
}

// CreateNPC creates an NPC scoped to a campaign. The NPC's slug is derived
// from its name and must be unique within the campaign.
func (s *Service) CreateNPC(ctx context.Context, in CreateNPCInput) (storage.NPC, error) {
	campaignID := strings.TrimSpace(in.CampaignID)
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return storage.NPC{}, apperrors.New(apperrors.CodeInvalidArgument, "npc name is required")
	}
	if in.HitChance < 0 || in.HitChance > 1 {
		return storage.NPC{}, apperrors.Newf(apperrors.CodeInvalidArgument, "hit chance %v outside [0,1]", in.HitChance)
	}
	if in.Health < 0 || in.MaxHealth < 0 {
		return storage.NPC{}, apperrors.New(apperrors.CodeInvalidArgument, "health must be non-negative")
	}
	if err := s.requireCampaign(ctx, campaignID); err != nil {
		return storage.NPC{}, err
	}

	maxHealth := in.MaxHealth
	if maxHealth == 0 {
		maxHealth = defaultMaxHealth
	}
	health := in.Health
	if health == 0 {
		health = maxHealth
	}
	if health > maxHealth {
		return storage.NPC{}, apperrors.Newf(apperrors.CodeInvalidArgument, "health %d exceeds max health %d", health, maxHealth)
	}

	slug := slugify(name)
	if slug == "" {
		return storage.NPC{}, apperrors.Newf(apperrors.CodeInvalidArgument, "npc name %q produces an empty slug", name)
	}

	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	// The store upserts on slug for heals, so uniqueness is checked here.
	if _, err := s.store.GetNPC(ctx, campaignID, slug); err == nil {
		return storage.NPC{}, apperrors.Newf(apperrors.CodeAlreadyExists, "npc %q already exists", name)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return storage.NPC{}, fmt.Errorf("check npc: %w", err)
	}

	keywords := make([]string, 0, len(in.Keywords))
	for _, keyword := range in.Keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" {
			keywords = append(keywords, keyword)
		}
	}

	now := s.now()
	npc := storage.NPC{
		CampaignID:  campaignID,
		Slug:        slug,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Health:      health,
		MaxHealth:   maxHealth,
		HitChance:   in.HitChance,
		Keywords:    keywords,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutNPC(ctx, npc); err != nil {
		return storage.NPC{}, fmt.Errorf("put npc: %w", err)
	}

	s.log.Info().
		Str("campaign_id", campaignID).
		Str("npc", slug).
		Msg("npc created")
	return npc, nil
}

// HealNPCInput identifies an NPC and the healing to apply.
type HealNPCInput struct {
	CampaignID string
	Name       string
	HealDice   string
}

// HealResult reports the outcome of one heal.
type HealResult struct {
	NPC    storage.NPC
	Healed int
	Roll   int
	Seed   int64
}

// HealNPC restores an NPC's health by a dice roll, clamped at max health.
// The NPC is matched by name or by one of its keywords.
func (s *Service) HealNPC(ctx context.Context, in HealNPCInput) (HealResult, error) {
	campaignID := strings.TrimSpace(in.CampaignID)
	formula, err := dice.Parse(in.HealDice)
	if err != nil {
		return HealResult{}, err
	}
	if err := s.requireCampaign(ctx, campaignID); err != nil {
		return HealResult{}, err
	}

	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	npc, err := s.resolveNPC(ctx, campaignID, in.Name)
	if err != nil {
		return HealResult{}, err
	}

	seed, err := s.newSeed()
	if err != nil {
		return HealResult{}, fmt.Errorf("generate heal seed: %w", err)
	}
	roll := formula.Roll(rand.New(rand.NewSource(seed)))

	healed := roll
	if npc.Health+healed > npc.MaxHealth {
		healed = npc.MaxHealth - npc.Health
	}
	npc.Health += healed
	npc.UpdatedAt = s.now()
	if err := s.store.PutNPC(ctx, npc); err != nil {
		return HealResult{}, fmt.Errorf("put npc: %w", err)
	}

	s.log.Info().
		Str("campaign_id", campaignID).
		Str("npc", npc.Slug).
		Int("healed", healed).
		Msg("npc healed")
	return HealResult{NPC: npc, Healed: healed, Roll: roll, Seed: seed}, nil
}

// ListNPCs returns a campaign's NPC records.
func (s *Service) ListNPCs(ctx context.Context, campaignID string) ([]storage.NPC, error) {
	if err := s.requireCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	npcs, err := s.store.ListNPCs(ctx, strings.TrimSpace(campaignID))
	if err != nil {
		return nil, fmt.Errorf("list npcs: %w", err)
	}
	return npcs, nil
}

// resolveNPC finds an NPC by exact slug first, then by keyword.
func (s *Service) resolveNPC(ctx context.Context, campaignID, name string) (storage.NPC, error) {
	slug := slugify(name)
	npc, err := s.store.GetNPC(ctx, campaignID, slug)
	if err == nil {
		return npc, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.NPC{}, fmt.Errorf("get npc: %w", err)
	}

	npcs, err := s.store.ListNPCs(ctx, campaignID)
	if err != nil {
		return storage.NPC{}, fmt.Errorf("list npcs: %w", err)
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, candidate := range npcs {
		for _, keyword := range candidate.Keywords {
			if keyword == needle {
				return candidate, nil
			}
		}
	}
	return storage.NPC{}, apperrors.Newf(apperrors.CodeNotFound, "npc %q not found by name or keyword", name)
}
