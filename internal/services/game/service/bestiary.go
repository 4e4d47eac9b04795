package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/fableforge/fableforge/internal/errors"
	"github.com/fableforge/fableforge/internal/services/game/domain/dice"
	"github.com/fableforge/fableforge/internal/services/game/domain/threat"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// CreateBestiaryEntryInput carries the fields for a creature template.
type CreateBestiaryEntryInput struct {
	CampaignID  string
	Name        string
	ThreatLevel string
	HPFormula   string
}

// CreateBestiaryEntry adds a creature template to a campaign's bestiary.
// Templates are create-only; a duplicate name fails.
func (s *Service) CreateBestiaryEntry(ctx context.Context, in CreateBestiaryEntryInput) (storage.BestiaryEntry, error) {
	campaignID := strings.TrimSpace(in.CampaignID)
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return storage.BestiaryEntry{}, apperrors.New(apperrors.CodeInvalidArgument, "creature name is required")
	}
	level, err := threat.Parse(in.ThreatLevel)
	if err != nil {
		return storage.BestiaryEntry{}, err
	}
	if _, err := dice.Parse(in.HPFormula); err != nil {
		return storage.BestiaryEntry{}, err
	}
	if err := s.requireCampaign(ctx, campaignID); err != nil {
		return storage.BestiaryEntry{}, err
	}

	nameKey := slugify(name)
	if nameKey == "" {
		return storage.BestiaryEntry{}, apperrors.Newf(apperrors.CodeInvalidArgument, "creature name %q produces an empty key", name)
	}

	entry := storage.BestiaryEntry{
		CampaignID:  campaignID,
		NameKey:     nameKey,
		Name:        name,
		ThreatLevel: level,
		HPFormula:   strings.ToLower(strings.TrimSpace(in.HPFormula)),
		CreatedAt:   s.now(),
	}
	if err := s.store.PutBestiaryEntry(ctx, entry); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return storage.BestiaryEntry{}, apperrors.Newf(apperrors.CodeAlreadyExists, "bestiary entry %q already exists", name)
		}
		return storage.BestiaryEntry{}, fmt.Errorf("put bestiary entry: %w", err)
	}

	s.log.Info().
		Str("campaign_id", campaignID).
		Str("creature", nameKey).
		Str("threat_level", string(level)).
		Msg("bestiary entry created")
	return entry, nil
}

// ListBestiary returns a campaign's creature templates.
func (s *Service) ListBestiary(ctx context.Context, campaignID string) ([]storage.BestiaryEntry, error) {
	if err := s.requireCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListBestiary(ctx, strings.TrimSpace(campaignID))
	if err != nil {
		return nil, fmt.Errorf("list bestiary: %w", err)
	}
	return entries, nil
}
