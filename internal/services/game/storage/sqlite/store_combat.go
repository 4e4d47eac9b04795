package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fableforge/fableforge/internal/services/game/domain/combat"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// GetActiveSession loads the active combat session for a campaign, with its
// combatants in insertion order and the full audit log.
func (s *Store) GetActiveSession(ctx context.Context, campaignID string) (*combat.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(campaignID) == "" {
		return nil, fmt.Errorf("campaign id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, campaign_id, status, started_at, ended_at
		   FROM combat_sessions
		  WHERE campaign_id = ? AND status = ?`,
		campaignID,
		string(combat.SessionActive),
	)

	session := &combat.Session{}
	var status string
	var startedAt int64
	var endedAt sql.NullInt64
	if err := row.Scan(&session.ID, &session.CampaignID, &status, &startedAt, &endedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}
	session.Status = combat.SessionStatus(status)
	session.StartedAt = fromMillis(startedAt)
	session.EndedAt = fromNullMillis(endedAt)

	if err := s.loadCombatants(ctx, session); err != nil {
		return nil, err
	}
	if err := s.loadEvents(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Store) loadCombatants(ctx context.Context, session *combat.Session) error {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT combatant_id, name, team, kind, source_ref, hit_chance, status
		   FROM combatants
		  WHERE session_id = ?
		  ORDER BY position ASC`,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("load combatants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c combat.Combatant
		var kind, status string
		if err := rows.Scan(&c.ID, &c.Name, &c.Team, &kind, &c.SourceRef, &c.HitChance, &status); err != nil {
			return fmt.Errorf("load combatants: %w", err)
		}
		c.Kind = combat.SourceKind(kind)
		c.Status = combat.Status(status)
		session.Combatants = append(session.Combatants, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load combatants: %w", err)
	}
	return nil
}

func (s *Store) loadEvents(ctx context.Context, session *combat.Session) error {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT attacker_id, target_id, hit_chance, roll, seed, hit, target_status, occurred_at
		   FROM combat_events
		  WHERE session_id = ?
		  ORDER BY seq ASC`,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("load combat events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var event combat.AttackEvent
		var hit int
		var targetStatus string
		var occurredAt int64
		if err := rows.Scan(
			&event.AttackerID,
			&event.TargetID,
			&event.HitChance,
			&event.Roll,
			&event.Seed,
			&hit,
			&targetStatus,
			&occurredAt,
		); err != nil {
			return fmt.Errorf("load combat events: %w", err)
		}
		event.Hit = hit != 0
		event.TargetStatus = combat.Status(targetStatus)
		event.OccurredAt = fromMillis(occurredAt)
		session.Log = append(session.Log, event)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load combat events: %w", err)
	}
	return nil
}

// PutSession writes the session row, combatant statuses, and any appended
// audit events in one transaction.
func (s *Store) PutSession(ctx context.Context, session *combat.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if session == nil {
		return fmt.Errorf("session is required")
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO combat_sessions (id, campaign_id, status, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   status = excluded.status,
		   ended_at = excluded.ended_at`,
		session.ID,
		session.CampaignID,
		string(session.Status),
		toMillis(session.StartedAt),
		toNullMillis(session.EndedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put session: %w", err)
	}

	for position, c := range session.Combatants {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO combatants (
			   session_id, position, combatant_id, name, team, kind, source_ref, hit_chance, status
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (session_id, combatant_id) DO UPDATE SET
			   status = excluded.status`,
			session.ID,
			position,
			c.ID,
			c.Name,
			c.Team,
			string(c.Kind),
			c.SourceRef,
			c.HitChance,
			string(c.Status),
		); err != nil {
			return fmt.Errorf("put combatant %s: %w", c.ID, err)
		}
	}

	var persisted int
	if err := tx.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM combat_events WHERE session_id = ?`,
		session.ID,
	).Scan(&persisted); err != nil {
		return fmt.Errorf("count combat events: %w", err)
	}
	for seq := persisted; seq < len(session.Log); seq++ {
		event := session.Log[seq]
		hit := 0
		if event.Hit {
			hit = 1
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO combat_events (
			   session_id, seq, attacker_id, target_id,
			   hit_chance, roll, seed, hit, target_status, occurred_at
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			session.ID,
			seq,
			event.AttackerID,
			event.TargetID,
			event.HitChance,
			event.Roll,
			event.Seed,
			hit,
			string(event.TargetStatus),
			toMillis(event.OccurredAt),
		); err != nil {
			return fmt.Errorf("append combat event %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put session: %w", err)
	}
	return nil
}
