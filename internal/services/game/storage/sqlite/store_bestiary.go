package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fableforge/fableforge/internal/services/game/domain/threat"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// PutBestiaryEntry inserts one creature template. Templates are create-only;
// a duplicate name key fails with storage.ErrAlreadyExists.
func (s *Store) PutBestiaryEntry(ctx context.Context, entry storage.BestiaryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(entry.CampaignID) == "" {
		return fmt.Errorf("campaign id is required")
	}
	if strings.TrimSpace(entry.NameKey) == "" {
		return fmt.Errorf("entry name key is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO bestiary_entries (
		   campaign_id, name_key, name, threat_level, hp_formula, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.CampaignID,
		entry.NameKey,
		entry.Name,
		string(entry.ThreatLevel),
		entry.HPFormula,
		toMillis(entry.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put bestiary entry: %w", err)
	}
	return nil
}

// GetBestiaryEntry returns one creature template by campaign and name key.
func (s *Store) GetBestiaryEntry(ctx context.Context, campaignID, nameKey string) (storage.BestiaryEntry, error) {
	if err := ctx.Err(); err != nil {
		return storage.BestiaryEntry{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BestiaryEntry{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT campaign_id, name_key, name, threat_level, hp_formula, created_at
		   FROM bestiary_entries
		  WHERE campaign_id = ? AND name_key = ?`,
		campaignID,
		nameKey,
	)
	entry, err := scanBestiaryEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.BestiaryEntry{}, storage.ErrNotFound
		}
		return storage.BestiaryEntry{}, fmt.Errorf("get bestiary entry: %w", err)
	}
	return entry, nil
}

// ListBestiary returns a campaign's creature templates ordered by name key.
func (s *Store) ListBestiary(ctx context.Context, campaignID string) ([]storage.BestiaryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT campaign_id, name_key, name, threat_level, hp_formula, created_at
		   FROM bestiary_entries
		  WHERE campaign_id = ?
		  ORDER BY name_key ASC`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bestiary: %w", err)
	}
	defer rows.Close()

	var entries []storage.BestiaryEntry
	for rows.Next() {
		entry, err := scanBestiaryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list bestiary: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bestiary: %w", err)
	}
	return entries, nil
}

func scanBestiaryEntry(row rowScanner) (storage.BestiaryEntry, error) {
	var entry storage.BestiaryEntry
	var level string
	var createdAt int64
	err := row.Scan(
		&entry.CampaignID,
		&entry.NameKey,
		&entry.Name,
		&level,
		&entry.HPFormula,
		&createdAt,
	)
	if err != nil {
		return storage.BestiaryEntry{}, err
	}
	entry.ThreatLevel = threat.Level(level)
	entry.CreatedAt = fromMillis(createdAt)
	return entry, nil
}
