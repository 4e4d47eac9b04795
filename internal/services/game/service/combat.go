package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	apperrors "github.com/fableforge/fableforge/internal/errors"
	"github.com/fableforge/fableforge/internal/services/game/domain/combat"
	"github.com/fableforge/fableforge/internal/services/game/domain/threat"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// ParticipantInput describes one combatant joining a new combat.
type ParticipantInput struct {
	Name string
	Team string
	// Kind is npc, bestiary, or player.
	Kind string
	// Ref names the backing record: an NPC slug or bestiary name key. It
	// defaults to the participant name when empty.
	Ref string
	// HitChanceOverride wins over any record-derived chance when set.
	HitChanceOverride *float64
}

// BeginCombat starts a combat session for a campaign.
//
// Each participant's hit chance is resolved once, at join time: the explicit
// override when present, otherwise the backing record (bestiary threat level
// through the hit-chance table, or the NPC's stored chance), otherwise 0.50.
func (s *Service) BeginCombat(ctx context.Context, campaignID string, participants []ParticipantInput) (*combat.Session, error) {
	campaignID = strings.TrimSpace(campaignID)
	if err := s.requireCampaign(ctx, campaignID); err != nil {
		return nil, err
	}

	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.store.GetActiveSession(ctx, campaignID); err == nil {
		return nil, apperrors.Newf(apperrors.CodeDuplicateCombat, "campaign %s already has an active combat", campaignID)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check active session: %w", err)
	}

	combatants := make([]combat.Combatant, 0, len(participants))
	for _, participant := range participants {
		combatant, err := s.resolveCombatant(ctx, campaignID, participant)
		if err != nil {
			return nil, err
		}
		combatants = append(combatants, combatant)
	}

	sessionID, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	session, err := combat.NewSession(sessionID, campaignID, combatants, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.PutSession(ctx, session); err != nil {
		return nil, fmt.Errorf("put session: %w", err)
	}

	s.log.Info().
		Str("campaign_id", campaignID).
		Str("session_id", session.ID).
		Int("combatants", len(session.Combatants)).
		Strs("teams", session.Teams()).
		Msg("combat started")
	return session, nil
}

// resolveCombatant freezes one participant's hit chance and identity.
func (s *Service) resolveCombatant(ctx context.Context, campaignID string, in ParticipantInput) (combat.Combatant, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return combat.Combatant{}, apperrors.New(apperrors.CodeInvalidCombatSetup, "participant name is required")
	}
	kind := combat.SourceKind(strings.ToLower(strings.TrimSpace(in.Kind)))
	if !kind.Valid() {
		return combat.Combatant{}, apperrors.Newf(apperrors.CodeInvalidCombatSetup, "participant %s has unknown source kind %q", name, in.Kind)
	}

	ref := slugify(in.Ref)
	if ref == "" {
		ref = slugify(name)
	}

	chance := defaultHitChance
	switch {
	case in.HitChanceOverride != nil:
		chance = *in.HitChanceOverride
		if chance < 0 || chance > 1 {
			return combat.Combatant{}, apperrors.Newf(apperrors.CodeInvalidCombatSetup, "participant %s hit chance override %v outside [0,1]", name, chance)
		}
	case kind == combat.SourceBestiary:
		entry, err := s.store.GetBestiaryEntry(ctx, campaignID, ref)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return combat.Combatant{}, apperrors.Newf(apperrors.CodeNotFound, "bestiary entry %q not found", ref)
			}
			return combat.Combatant{}, fmt.Errorf("get bestiary entry: %w", err)
		}
		chance, err = threat.HitChanceFor(entry.ThreatLevel)
		if err != nil {
			return combat.Combatant{}, err
		}
	case kind == combat.SourceNPC:
		npc, err := s.store.GetNPC(ctx, campaignID, ref)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return combat.Combatant{}, apperrors.Newf(apperrors.CodeNotFound, "npc %q not found", ref)
			}
			return combat.Combatant{}, fmt.Errorf("get npc: %w", err)
		}
		if npc.HitChance > 0 {
			chance = npc.HitChance
		}
	}

	combatantID, err := s.newID()
	if err != nil {
		return combat.Combatant{}, fmt.Errorf("generate combatant id: %w", err)
	}
	return combat.Combatant{
		ID:        combatantID,
		Name:      name,
		Team:      strings.TrimSpace(in.Team),
		Kind:      kind,
		SourceRef: ref,
		HitChance: chance,
	}, nil
}

// Attack resolves one attack in the campaign's active combat.
//
// A fresh seed feeds a deterministic source for the uniform draw, and the
// seed travels with the result so any roll can be replayed.
func (s *Service) Attack(ctx context.Context, campaignID, attackerID, targetID string) (combat.AttackEvent, error) {
	campaignID = strings.TrimSpace(campaignID)

	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.activeSession(ctx, campaignID)
	if err != nil {
		return combat.AttackEvent{}, err
	}

	seed, err := s.newSeed()
	if err != nil {
		return combat.AttackEvent{}, fmt.Errorf("generate attack seed: %w", err)
	}
	roll := rand.New(rand.NewSource(seed)).Float64()

	event, err := session.ResolveAttack(attackerID, targetID, roll, seed, s.now())
	if err != nil {
		return combat.AttackEvent{}, err
	}
	if err := s.store.PutSession(ctx, session); err != nil {
		return combat.AttackEvent{}, fmt.Errorf("put session: %w", err)
	}

	s.log.Debug().
		Str("campaign_id", campaignID).
		Str("attacker_id", attackerID).
		Str("target_id", targetID).
		Bool("hit", event.Hit).
		Msg("attack resolved")
	return event, nil
}

// RemoveResult reports a removal and whether it ended the session.
type RemoveResult struct {
	Combatant combat.Combatant
	Session   *combat.Session
}

// RemoveParticipant takes a combatant out of the active combat.
func (s *Service) RemoveParticipant(ctx context.Context, campaignID, participantID, reason string) (RemoveResult, error) {
	campaignID = strings.TrimSpace(campaignID)
	parsed, err := combat.ParseReason(reason)
	if err != nil {
		return RemoveResult{}, err
	}

	lock := s.campaignLock(campaignID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.activeSession(ctx, campaignID)
	if err != nil {
		return RemoveResult{}, err
	}

	combatant, err := session.Remove(participantID, parsed, s.now())
	if err != nil {
		return RemoveResult{}, err
	}
	if err := s.store.PutSession(ctx, session); err != nil {
		return RemoveResult{}, fmt.Errorf("put session: %w", err)
	}

	entry := s.log.Info().
		Str("campaign_id", campaignID).
		Str("participant_id", participantID).
		Str("reason", string(parsed))
	if session.Status == combat.SessionEnded {
		entry = entry.Str("session_status", string(session.Status))
	}
	entry.Msg("participant removed")
	return RemoveResult{Combatant: *combatant, Session: session}, nil
}

// CombatStatus returns the campaign's active combat snapshot.
func (s *Service) CombatStatus(ctx context.Context, campaignID string) (*combat.Session, error) {
	return s.activeSession(ctx, strings.TrimSpace(campaignID))
}

func (s *Service) activeSession(ctx context.Context, campaignID string) (*combat.Session, error) {
	session, err := s.store.GetActiveSession(ctx, campaignID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNoActiveCombat, "campaign %s has no active combat", campaignID)
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}
