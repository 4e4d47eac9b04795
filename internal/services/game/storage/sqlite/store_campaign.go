package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// PutCampaign inserts one campaign record. The id and slug are unique;
// collisions surface as storage.ErrAlreadyExists.
func (s *Store) PutCampaign(ctx context.Context, campaign storage.Campaign) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(campaign.ID) == "" {
		return fmt.Errorf("campaign id is required")
	}
	if strings.TrimSpace(campaign.Name) == "" {
		return fmt.Errorf("campaign name is required")
	}
	if strings.TrimSpace(campaign.Slug) == "" {
		return fmt.Errorf("campaign slug is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO campaigns (
		   id, name, slug,
		   player_name, player_description,
		   player_health, player_max_health, player_hit_chance,
		   created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		campaign.ID,
		campaign.Name,
		campaign.Slug,
		campaign.Player.Name,
		campaign.Player.Description,
		campaign.Player.Health,
		campaign.Player.MaxHealth,
		campaign.Player.HitChance,
		toMillis(campaign.CreatedAt),
		toMillis(campaign.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put campaign: %w", err)
	}
	return nil
}

// GetCampaign returns one campaign by id.
func (s *Store) GetCampaign(ctx context.Context, id string) (storage.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return storage.Campaign{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Campaign{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, slug,
		        player_name, player_description,
		        player_health, player_max_health, player_hit_chance,
		        created_at, updated_at
		   FROM campaigns
		  WHERE id = ?`,
		id,
	)
	campaign, err := scanCampaign(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Campaign{}, storage.ErrNotFound
		}
		return storage.Campaign{}, fmt.Errorf("get campaign: %w", err)
	}
	return campaign, nil
}

// ListCampaigns returns every campaign ordered by creation time.
func (s *Store) ListCampaigns(ctx context.Context) ([]storage.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, slug,
		        player_name, player_description,
		        player_health, player_max_health, player_hit_chance,
		        created_at, updated_at
		   FROM campaigns
		  ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []storage.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("list campaigns: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (storage.Campaign, error) {
	var campaign storage.Campaign
	var createdAt, updatedAt int64
	err := row.Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.Slug,
		&campaign.Player.Name,
		&campaign.Player.Description,
		&campaign.Player.Health,
		&campaign.Player.MaxHealth,
		&campaign.Player.HitChance,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.Campaign{}, err
	}
	campaign.CreatedAt = fromMillis(createdAt)
	campaign.UpdatedAt = fromMillis(updatedAt)
	return campaign, nil
}
