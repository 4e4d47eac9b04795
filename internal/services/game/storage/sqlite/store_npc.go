package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// PutNPC upserts one NPC record keyed by campaign and slug. Upsert keeps
// heal and future edits a single call for the service layer.
func (s *Store) PutNPC(ctx context.Context, npc storage.NPC) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(npc.CampaignID) == "" {
		return fmt.Errorf("campaign id is required")
	}
	if strings.TrimSpace(npc.Slug) == "" {
		return fmt.Errorf("npc slug is required")
	}
	if strings.TrimSpace(npc.Name) == "" {
		return fmt.Errorf("npc name is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO npcs (
		   campaign_id, slug, name, description,
		   health, max_health, hit_chance, keywords,
		   created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (campaign_id, slug) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   health = excluded.health,
		   max_health = excluded.max_health,
		   hit_chance = excluded.hit_chance,
		   keywords = excluded.keywords,
		   updated_at = excluded.updated_at`,
		npc.CampaignID,
		npc.Slug,
		npc.Name,
		npc.Description,
		npc.Health,
		npc.MaxHealth,
		npc.HitChance,
		strings.Join(npc.Keywords, ","),
		toMillis(npc.CreatedAt),
		toMillis(npc.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put npc: %w", err)
	}
	return nil
}

// GetNPC returns one NPC by campaign and slug.
func (s *Store) GetNPC(ctx context.Context, campaignID, slug string) (storage.NPC, error) {
	if err := ctx.Err(); err != nil {
		return storage.NPC{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.NPC{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT campaign_id, slug, name, description,
		        health, max_health, hit_chance, keywords,
		        created_at, updated_at
		   FROM npcs
		  WHERE campaign_id = ? AND slug = ?`,
		campaignID,
		slug,
	)
	npc, err := scanNPC(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NPC{}, storage.ErrNotFound
		}
		return storage.NPC{}, fmt.Errorf("get npc: %w", err)
	}
	return npc, nil
}

// ListNPCs returns a campaign's NPCs ordered by creation time.
func (s *Store) ListNPCs(ctx context.Context, campaignID string) ([]storage.NPC, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT campaign_id, slug, name, description,
		        health, max_health, hit_chance, keywords,
		        created_at, updated_at
		   FROM npcs
		  WHERE campaign_id = ?
		  ORDER BY created_at ASC, slug ASC`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("list npcs: %w", err)
	}
	defer rows.Close()

	var npcs []storage.NPC
	for rows.Next() {
		npc, err := scanNPC(rows)
		if err != nil {
			return nil, fmt.Errorf("list npcs: %w", err)
		}
		npcs = append(npcs, npc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list npcs: %w", err)
	}
	return npcs, nil
}

func scanNPC(row rowScanner) (storage.NPC, error) {
	var npc storage.NPC
	var keywords string
	var createdAt, updatedAt int64
	err := row.Scan(
		&npc.CampaignID,
		&npc.Slug,
		&npc.Name,
		&npc.Description,
		&npc.Health,
		&npc.MaxHealth,
		&npc.HitChance,
		&keywords,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.NPC{}, err
	}
	if keywords != "" {
		npc.Keywords = strings.Split(keywords, ",")
	}
	npc.CreatedAt = fromMillis(createdAt)
	npc.UpdatedAt = fromMillis(updatedAt)
	return npc, nil
}
