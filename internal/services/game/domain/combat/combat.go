// Package combat tracks the participants of one fight and resolves attacks.
//
// A session owns its combatant list exclusively. Combatants keep only a
// lookup key back to the NPC or bestiary record they were built from, so the
// underlying record can be edited or deleted without corrupting the session.
// A combatant's hit chance is frozen when it joins the fight; later record
// edits never change an active combatant mid-fight.
package combat

import (
	"strings"
	"time"

	apperrors "github.com/fableforge/fableforge/internal/errors"
)

// SourceKind identifies where a combatant's stats came from.
type SourceKind string

const (
	SourceNPC      SourceKind = "npc"
	SourceBestiary SourceKind = "bestiary"
	SourcePlayer   SourceKind = "player"
)

// Valid reports whether the kind is one of the defined sources.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceNPC, SourceBestiary, SourcePlayer:
		return true
	}
	return false
}

// Status is a combatant's standing within the session.
type Status string

const (
	StatusActive      Status = "active"
	StatusDead        Status = "dead"
	StatusFled        Status = "fled"
	StatusSurrendered Status = "surrendered"
	StatusRemoved     Status = "removed"
)

// Reason is the caller-supplied cause for removing a combatant.
type Reason string

const (
	ReasonDeath     Reason = "death"
	ReasonFlee      Reason = "flee"
	ReasonSurrender Reason = "surrender"
)

// ParseReason validates a removal reason string.
func ParseReason(value string) (Reason, error) {
	reason := Reason(strings.ToLower(strings.TrimSpace(value)))
	switch reason {
	case ReasonDeath, ReasonFlee, ReasonSurrender:
		return reason, nil
	}
	return "", apperrors.Newf(apperrors.CodeInvalidArgument, "unknown removal reason %q", value)
}

// Status returns the combatant status a removal reason implies.
func (r Reason) Status() Status {
	switch r {
	case ReasonFlee:
		return StatusFled
	case ReasonSurrender:
		return StatusSurrendered
	default:
		return StatusDead
	}
}

// Combatant is one participant's state within an active combat.
type Combatant struct {
	ID        string
	Name      string
	Team      string
	Kind      SourceKind
	SourceRef string
	HitChance float64
	Status    Status
}

// AttackEvent is one audit-log entry recording a resolved attack.
type AttackEvent struct {
	AttackerID   string
	TargetID     string
	HitChance    float64
	Roll         float64
	Seed         int64
	Hit          bool
	TargetStatus Status
	OccurredAt   time.Time
}

// SessionStatus is the lifecycle state of a combat session.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

// Session aggregates one fight's teams, participants, and audit log for a
// campaign. Combatant order is insertion order; it carries no turn semantics.
type Session struct {
	ID         string
	CampaignID string
	Status     SessionStatus
	Combatants []Combatant
	Log        []AttackEvent
	StartedAt  time.Time
	EndedAt    *time.Time
}

// NewSession validates combatants and assembles an active session.
//
// A combat needs at least one participant spanning at least two distinct
// teams; anything else is a degenerate setup and fails INVALID_COMBAT_SETUP.
func NewSession(sessionID, campaignID string, combatants []Combatant, startedAt time.Time) (*Session, error) {
	if strings.TrimSpace(campaignID) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "campaign id is required")
	}
	if len(combatants) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidCombatSetup, "at least one participant is required")
	}

	teams := make(map[string]struct{})
	seen := make(map[string]struct{}, len(combatants))
	for i := range combatants {
		c := &combatants[i]
		if strings.TrimSpace(c.ID) == "" {
			return nil, apperrors.New(apperrors.CodeInvalidCombatSetup, "combatant id is required")
		}
		if _, dup := seen[c.ID]; dup {
			return nil, apperrors.Newf(apperrors.CodeInvalidCombatSetup, "duplicate combatant id %s", c.ID)
		}
		seen[c.ID] = struct{}{}
		if strings.TrimSpace(c.Team) == "" {
			return nil, apperrors.Newf(apperrors.CodeInvalidCombatSetup, "combatant %s has no team", c.ID)
		}
		if !c.Kind.Valid() {
			return nil, apperrors.Newf(apperrors.CodeInvalidCombatSetup, "combatant %s has unknown source kind %q", c.ID, c.Kind)
		}
		if c.HitChance < 0 || c.HitChance > 1 {
			return nil, apperrors.Newf(apperrors.CodeInvalidCombatSetup, "combatant %s hit chance %v outside [0,1]", c.ID, c.HitChance)
		}
		if c.Status == "" {
			c.Status = StatusActive
		}
		teams[c.Team] = struct{}{}
	}
	if len(teams) < 2 {
		return nil, apperrors.New(apperrors.CodeInvalidCombatSetup, "participants must span at least two teams")
	}

	return &Session{
		ID:         sessionID,
		CampaignID: campaignID,
		Status:     SessionActive,
		Combatants: combatants,
		StartedAt:  startedAt,
	}, nil
}

// Combatant finds a participant by id.
func (s *Session) Combatant(participantID string) (*Combatant, error) {
	for i := range s.Combatants {
		if s.Combatants[i].ID == participantID {
			return &s.Combatants[i], nil
		}
	}
	return nil, apperrors.Newf(apperrors.CodeParticipantNotFound, "participant %s is not in combat", participantID)
}

// ResolveAttack applies one attack roll to the session.
//
// The draw must be uniform in [0,1); the attack hits iff it is strictly
// below the attacker's stored hit chance. The only state change is the
// appended audit event: an attack never transitions a combatant or the
// session, lethal outcomes go through Remove.
func (s *Session) ResolveAttack(attackerID, targetID string, roll float64, seed int64, now time.Time) (AttackEvent, error) {
	if s.Status != SessionActive {
		return AttackEvent{}, apperrors.Newf(apperrors.CodeNoActiveCombat, "combat session %s has ended", s.ID)
	}

	attacker, err := s.Combatant(attackerID)
	if err != nil {
		return AttackEvent{}, err
	}
	target, err := s.Combatant(targetID)
	if err != nil {
		return AttackEvent{}, err
	}
	if attacker.Status != StatusActive {
		return AttackEvent{}, apperrors.Newf(apperrors.CodeParticipantInactive, "attacker %s is %s", attacker.Name, attacker.Status)
	}
	if target.Status != StatusActive {
		return AttackEvent{}, apperrors.Newf(apperrors.CodeParticipantInactive, "target %s is %s", target.Name, target.Status)
	}

	// Hit probability models the attacker's competence, not the target's
	// evasion, so the attacker's stored chance drives the roll.
	event := AttackEvent{
		AttackerID:   attackerID,
		TargetID:     targetID,
		HitChance:    attacker.HitChance,
		Roll:         roll,
		Seed:         seed,
		Hit:          roll < attacker.HitChance,
		TargetStatus: target.Status,
		OccurredAt:   now,
	}
	s.Log = append(s.Log, event)
	return event, nil
}

// Remove transitions a combatant out of the fight for the given reason.
//
// Removing an already-removed participant fails PARTICIPANT_INACTIVE rather
// than silently succeeding, so the caller learns nothing changed. When a
// whole team is out of active combatants, the session ends.
func (s *Session) Remove(participantID string, reason Reason, now time.Time) (*Combatant, error) {
	if s.Status != SessionActive {
		return nil, apperrors.Newf(apperrors.CodeNoActiveCombat, "combat session %s has ended", s.ID)
	}

	combatant, err := s.Combatant(participantID)
	if err != nil {
		return nil, err
	}
	if combatant.Status != StatusActive {
		return nil, apperrors.Newf(apperrors.CodeParticipantInactive, "participant %s is already %s", combatant.Name, combatant.Status)
	}

	combatant.Status = reason.Status()

	if s.defeatedTeamExists() {
		s.Status = SessionEnded
		ended := now
		s.EndedAt = &ended
	}
	return combatant, nil
}

// defeatedTeamExists reports whether any team has no active combatants left.
func (s *Session) defeatedTeamExists() bool {
	activeByTeam := make(map[string]int)
	for _, c := range s.Combatants {
		if _, seen := activeByTeam[c.Team]; !seen {
			activeByTeam[c.Team] = 0
		}
		if c.Status == StatusActive {
			activeByTeam[c.Team]++
		}
	}
	for _, active := range activeByTeam {
		if active == 0 {
			return true
		}
	}
	return false
}

// Teams returns the distinct team labels in insertion order.
func (s *Session) Teams() []string {
	var teams []string
	seen := make(map[string]struct{})
	for _, c := range s.Combatants {
		if _, ok := seen[c.Team]; ok {
			continue
		}
		seen[c.Team] = struct{}{}
		teams = append(teams, c.Team)
	}
	return teams
}
