package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/fableforge/fableforge/internal/errors"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

const (
	defaultMaxHealth         = 20
	defaultHitChance         = 0.50
	defaultPlayerDescription = "The player character"
)

// CreateCampaignInput carries the fields for a new campaign.
type CreateCampaignInput struct {
	Name              string
	PlayerName        string
	PlayerDescription string
	PlayerMaxHealth   int
}

// CreateCampaign creates a campaign with its player character.
func (s *Service) CreateCampaign(ctx context.Context, in CreateCampaignInput) (storage.Campaign, error) {
	name := strings.TrimSpace(in.Name)
	playerName := strings.TrimSpace(in.PlayerName)
	if name == "" {
		return storage.Campaign{}, apperrors.New(apperrors.CodeInvalidArgument, "campaign name is required")
	}
	if playerName == "" {
		return storage.Campaign{}, apperrors.New(apperrors.CodeInvalidArgument, "player name is required")
	}
	if in.PlayerMaxHealth < 0 {
		return storage.Campaign{}, apperrors.New(apperrors.CodeInvalidArgument, "player max health must be non-negative")
	}

	maxHealth := in.PlayerMaxHealth
	if maxHealth == 0 {
		maxHealth = defaultMaxHealth
	}
	description := strings.TrimSpace(in.PlayerDescription)
	if description == "" {
		description = defaultPlayerDescription
	}

	campaignID, err := s.newID()
	if err != nil {
		return storage.Campaign{}, fmt.Errorf("generate campaign id: %w", err)
	}

	now := s.now()
	campaign := storage.Campaign{
		ID:   campaignID,
		Name: name,
		Slug: slugify(name),
		Player: storage.PlayerCharacter{
			Name:        playerName,
			Description: description,
			Health:      maxHealth,
			MaxHealth:   maxHealth,
			HitChance:   defaultHitChance,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.PutCampaign(ctx, campaign); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return storage.Campaign{}, apperrors.Newf(apperrors.CodeAlreadyExists, "a campaign named %q already exists", name)
		}
		return storage.Campaign{}, fmt.Errorf("put campaign: %w", err)
	}

	s.log.Info().
		Str("campaign_id", campaign.ID).
		Str("slug", campaign.Slug).
		Msg("campaign created")
	return campaign, nil
}

// GetCampaign returns one campaign by id.
func (s *Service) GetCampaign(ctx context.Context, campaignID string) (storage.Campaign, error) {
	campaign, err := s.store.GetCampaign(ctx, strings.TrimSpace(campaignID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Campaign{}, apperrors.Newf(apperrors.CodeCampaignNotFound, "campaign %s not found", campaignID)
		}
		return storage.Campaign{}, fmt.Errorf("get campaign: %w", err)
	}
	return campaign, nil
}

// ListCampaigns returns all campaigns in creation order.
func (s *Service) ListCampaigns(ctx context.Context) ([]storage.Campaign, error) {
	campaigns, err := s.store.ListCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

// requireCampaign fails with CAMPAIGN_NOT_FOUND when the campaign is missing.
func (s *Service) requireCampaign(ctx context.Context, campaignID string) error {
	_, err := s.GetCampaign(ctx, campaignID)
	return err
}
