package combat

import (
	"testing"
	"time"

	apperrors "github.com/fableforge/fableforge/internal/errors"
)

var testStart = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func twoTeamCombatants() []Combatant {
	return []Combatant{
		{ID: "hero", Name: "Hero", Team: "players", Kind: SourcePlayer, HitChance: 0.5},
		{ID: "goblin", Name: "Goblin", Team: "monsters", Kind: SourceBestiary, SourceRef: "goblin", HitChance: 0.25},
	}
}

func newTestSession(t *testing.T, combatants []Combatant) *Session {
	t.Helper()
	session, err := NewSession("s1", "c1", combatants, testStart)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func TestNewSessionDefaultsStatusActive(t *testing.T) {
	session := newTestSession(t, twoTeamCombatants())
	if session.Status != SessionActive {
		t.Fatalf("expected active session, got %s", session.Status)
	}
	for _, c := range session.Combatants {
		if c.Status != StatusActive {
			t.Fatalf("expected combatant %s active, got %s", c.ID, c.Status)
		}
	}
}

func TestNewSessionRejectsSingleTeam(t *testing.T) {
	combatants := []Combatant{
		{ID: "a", Name: "A", Team: "players", Kind: SourcePlayer, HitChance: 0.5},
		{ID: "b", Name: "B", Team: "players", Kind: SourceNPC, HitChance: 0.5},
	}
	_, err := NewSession("s1", "c1", combatants, testStart)
	if !apperrors.IsCode(err, apperrors.CodeInvalidCombatSetup) {
		t.Fatalf("expected INVALID_COMBAT_SETUP, got %v", err)
	}
}

func TestNewSessionRejectsEmptyAndInvalid(t *testing.T) {
	cases := map[string][]Combatant{
		"no participants": {},
		"duplicate ids": {
			{ID: "a", Team: "x", Kind: SourceNPC, HitChance: 0.5},
			{ID: "a", Team: "y", Kind: SourceNPC, HitChance: 0.5},
		},
		"missing team": {
			{ID: "a", Team: "", Kind: SourceNPC, HitChance: 0.5},
			{ID: "b", Team: "y", Kind: SourceNPC, HitChance: 0.5},
		},
		"chance above one": {
			{ID: "a", Team: "x", Kind: SourceNPC, HitChance: 1.5},
			{ID: "b", Team: "y", Kind: SourceNPC, HitChance: 0.5},
		},
		"unknown kind": {
			{ID: "a", Team: "x", Kind: SourceKind("ghost"), HitChance: 0.5},
			{ID: "b", Team: "y", Kind: SourceNPC, HitChance: 0.5},
		},
	}
	for name, combatants := range cases {
		if _, err := NewSession("s1", "c1", combatants, testStart); !apperrors.IsCode(err, apperrors.CodeInvalidCombatSetup) {
			t.Fatalf("%s: expected INVALID_COMBAT_SETUP, got %v", name, err)
		}
	}
}

func TestResolveAttackUsesAttackerChance(t *testing.T) {
	session := newTestSession(t, twoTeamCombatants())

	event, err := session.ResolveAttack("hero", "goblin", 0.10, 99, testStart)
	if err != nil {
		t.Fatalf("resolve attack: %v", err)
	}
	if !event.Hit {
		t.Fatal("expected 0.10 draw below 0.5 chance to hit")
	}
	if event.HitChance != 0.5 {
		t.Fatalf("expected attacker's chance 0.5, got %v", event.HitChance)
	}
	if event.Seed != 99 {
		t.Fatalf("expected seed recorded, got %d", event.Seed)
	}
	if len(session.Log) != 1 {
		t.Fatalf("expected one audit event, got %d", len(session.Log))
	}
}

func TestResolveAttackBoundaryDraw(t *testing.T) {
	session := newTestSession(t, twoTeamCombatants())

	// Hit requires the draw strictly below the chance.
	event, err := session.ResolveAttack("hero", "goblin", 0.5, 1, testStart)
	if err != nil {
		t.Fatalf("resolve attack: %v", err)
	}
	if event.Hit {
		t.Fatal("expected draw equal to chance to miss")
	}
}

func TestResolveAttackNeverMutatesStatuses(t *testing.T) {
	session := newTestSession(t, twoTeamCombatants())
	if _, err := session.ResolveAttack("hero", "goblin", 0.01, 1, testStart); err != nil {
		t.Fatalf("resolve attack: %v", err)
	}
	target, err := session.Combatant("goblin")
	if err != nil {
		t.Fatalf("combatant: %v", err)
	}
	if target.Status != StatusActive {
		t.Fatalf("a hit must not change target status, got %s", target.Status)
	}
	if session.Status != SessionActive {
		t.Fatalf("an attack must not end the session, got %s", session.Status)
	}
}

func TestResolveAttackInactiveParticipants(t *testing.T) {
	session := newTestSession(t, []Combatant{
		{ID: "hero", Name: "Hero", Team: "players", Kind: SourcePlayer, HitChance: 0.5},
		{ID: "goblin", Name: "Goblin", Team: "monsters", Kind: SourceBestiary, HitChance: 0.25, Status: StatusDead},
		{ID: "orc", Name: "Orc", Team: "monsters", Kind: SourceBestiary, HitChance: 0.35},
	})

	if _, err := session.ResolveAttack("hero", "goblin", 0.1, 1, testStart); !apperrors.IsCode(err, apperrors.CodeParticipantInactive) {
		t.Fatalf("attacking the dead: expected PARTICIPANT_INACTIVE, got %v", err)
	}
	if _, err := session.ResolveAttack("goblin", "hero", 0.1, 1, testStart); !apperrors.IsCode(err, apperrors.CodeParticipantInactive) {
		t.Fatalf("attacking while dead: expected PARTICIPANT_INACTIVE, got %v", err)
	}
}

func TestResolveAttackUnknownParticipant(t *testing.T) {
	session := newTestSession(t, twoTeamCombatants())
	if _, err := session.ResolveAttack("hero", "dragon", 0.1, 1, testStart); !apperrors.IsCode(err, apperrors.CodeParticipantNotFound) {
		t.Fatalf("expected PARTICIPANT_NOT_FOUND, got %v", err)
	}
}

func TestRemoveTransitionsStatusByReason(t *testing.T) {
	tests := []struct {
		reason Reason
		want   Status
	}{
		{ReasonDeath, StatusDead},
		{ReasonFlee, StatusFled},
		{ReasonSurrender, StatusSurrendered},
	}
	for _, tc := range tests {
		session := newTestSession(t, []Combatant{
			{ID: "hero", Name: "Hero", Team: "players", Kind: SourcePlayer, HitChance: 0.5},
			{ID: "goblin", Name: "Goblin", Team: "monsters", Kind: SourceBestiary, HitChance: 0.25},
			{ID: "orc", Name: "Orc", Team: "monsters", Kind: SourceBestiary, HitChance: 0.35},
		})
		combatant, err := session.Remove("goblin", tc.reason, testStart)
		if err != nil {
			t.Fatalf("%s: remove: %v", tc.reason, err)
		}
		if combatant.Status != tc.want {
			t.Fatalf("%s: expected status %s, got %s", tc.reason, tc.want, combatant.Status)
		}
		if session.Status != SessionActive {
			t.Fatalf("%s: session should stay active while the team has fighters", tc.reason)
		}
	}
}

func TestRemoveLastActiveOnTeamEndsSession(t *testing.T) {
	session := newTestSession(t, twoTeamCombatants())

	if _, err := session.Remove("goblin", ReasonDeath, testStart); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if session.Status != SessionEnded {
		t.Fatalf("expected ended session, got %s", session.Status)
	}
	if session.EndedAt == nil || !session.EndedAt.Equal(testStart) {
		t.Fatalf("expected ended timestamp %v, got %v", testStart, session.EndedAt)
	}

	// An ended session rejects further attacks and removals.
	if _, err := session.ResolveAttack("hero", "goblin", 0.1, 1, testStart); !apperrors.IsCode(err, apperrors.CodeNoActiveCombat) {
		t.Fatalf("expected NO_ACTIVE_COMBAT after end, got %v", err)
	}
	if _, err := session.Remove("hero", ReasonFlee, testStart); !apperrors.IsCode(err, apperrors.CodeNoActiveCombat) {
		t.Fatalf("expected NO_ACTIVE_COMBAT after end, got %v", err)
	}
}

func TestRemoveTwiceFails(t *testing.T) {
	session := newTestSession(t, []Combatant{
		{ID: "hero", Name: "Hero", Team: "players", Kind: SourcePlayer, HitChance: 0.5},
		{ID: "goblin", Name: "Goblin", Team: "monsters", Kind: SourceBestiary, HitChance: 0.25},
		{ID: "orc", Name: "Orc", Team: "monsters", Kind: SourceBestiary, HitChance: 0.35},
	})
	if _, err := session.Remove("goblin", ReasonFlee, testStart); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if _, err := session.Remove("goblin", ReasonDeath, testStart); !apperrors.IsCode(err, apperrors.CodeParticipantInactive) {
		t.Fatalf("expected PARTICIPANT_INACTIVE on repeat removal, got %v", err)
	}
}

func TestParseReason(t *testing.T) {
	if reason, err := ParseReason(" Death "); err != nil || reason != ReasonDeath {
		t.Fatalf("expected death, got %v %v", reason, err)
	}
	if _, err := ParseReason("vanish"); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestTeamsInsertionOrder(t *testing.T) {
	session := newTestSession(t, []Combatant{
		{ID: "a", Team: "players", Kind: SourcePlayer, HitChance: 0.5},
		{ID: "b", Team: "monsters", Kind: SourceBestiary, HitChance: 0.25},
		{ID: "c", Team: "players", Kind: SourceNPC, HitChance: 0.5},
		{ID: "d", Team: "mercenaries", Kind: SourceNPC, HitChance: 0.65},
	})
	teams := session.Teams()
	want := []string{"players", "monsters", "mercenaries"}
	if len(teams) != len(want) {
		t.Fatalf("expected %d teams, got %d", len(want), len(teams))
	}
	for i := range want {
		if teams[i] != want[i] {
			t.Fatalf("expected team %s at %d, got %s", want[i], i, teams[i])
		}
	}
}

func TestThreeTeamEndCondition(t *testing.T) {
	session := newTestSession(t, []Combatant{
		{ID: "a", Team: "players", Kind: SourcePlayer, HitChance: 0.5},
		{ID: "b", Team: "monsters", Kind: SourceBestiary, HitChance: 0.25},
		{ID: "c", Team: "mercenaries", Kind: SourceNPC, HitChance: 0.65},
	})

	// One team emptying ends the fight even with two teams still standing.
	if _, err := session.Remove("b", ReasonDeath, testStart); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if session.Status != SessionEnded {
		t.Fatalf("expected ended session once a team is wiped, got %s", session.Status)
	}
}
