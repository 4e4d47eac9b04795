package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/fableforge/fableforge/internal/errors"
	"github.com/fableforge/fableforge/internal/services/game/domain/combat"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want string
	}{
		{in: "Old Marta", want: "old-marta"},
		{in: "  The Lost Kingdom  ", want: "the-lost-kingdom"},
		{in: "Grak'thar the Vile!", want: "grakthar-the-vile"},
		{in: "snake_case__name", want: "snake-case-name"},
		{in: "--edges--", want: "edges"},
	}
	for _, tc := range testCases {
		if got := slugify(tc.in); got != tc.want {
			t.Fatalf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateCampaignDefaultsPlayer(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	campaign, err := svc.CreateCampaign(context.Background(), CreateCampaignInput{
		Name:       "The Lost Kingdom",
		PlayerName: "Aragorn",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if campaign.Slug != "the-lost-kingdom" {
		t.Fatalf("slug = %q, want the-lost-kingdom", campaign.Slug)
	}
	if campaign.Player.MaxHealth != 20 {
		t.Fatalf("player max health = %d, want 20", campaign.Player.MaxHealth)
	}
	if campaign.Player.Health != 20 {
		t.Fatalf("player health = %d, want 20", campaign.Player.Health)
	}
	if campaign.Player.HitChance != 0.50 {
		t.Fatalf("player hit chance = %v, want 0.50", campaign.Player.HitChance)
	}
	if campaign.ID == "" {
		t.Fatal("expected generated campaign id")
	}
}

func TestCreateCampaignRequiresNames(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	if _, err := svc.CreateCampaign(context.Background(), CreateCampaignInput{PlayerName: "Aragorn"}); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("missing campaign name error = %v, want %s", err, apperrors.CodeInvalidArgument)
	}
	if _, err := svc.CreateCampaign(context.Background(), CreateCampaignInput{Name: "Sunfall"}); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("missing player name error = %v, want %s", err, apperrors.CodeInvalidArgument)
	}
}

func TestCreateNPCRequiresCampaign(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.CreateNPC(context.Background(), CreateNPCInput{
		CampaignID: "missing",
		Name:       "Old Marta",
	})
	if !apperrors.IsCode(err, apperrors.CodeCampaignNotFound) {
		t.Fatalf("create npc error = %v, want %s", err, apperrors.CodeCampaignNotFound)
	}
}

func TestCreateNPCRejectsDuplicateSlug(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	campaign := seedTestCampaign(t, svc)

	input := CreateNPCInput{
		CampaignID: campaign.ID,
		Name:       "Old Marta",
		Keywords:   []string{"Lighthouse", " harbor "},
	}
	npc, err := svc.CreateNPC(context.Background(), input)
	if err != nil {
		t.Fatalf("create npc: %v", err)
	}
	if npc.Health != 20 || npc.MaxHealth != 20 {
		t.Fatalf("health = %d/%d, want 20/20", npc.Health, npc.MaxHealth)
	}
	if len(npc.Keywords) != 2 || npc.Keywords[0] != "lighthouse" || npc.Keywords[1] != "harbor" {
		t.Fatalf("keywords = %v, want normalized [lighthouse harbor]", npc.Keywords)
	}

	_, err = svc.CreateNPC(context.Background(), input)
	if !apperrors.IsCode(err, apperrors.CodeAlreadyExists) {
		t.Fatalf("duplicate npc error = %v, want %s", err, apperrors.CodeAlreadyExists)
	}
}

func TestHealNPCClampsAtMaxHealth(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	campaign := seedTestCampaign(t, svc)
	if _, err := svc.CreateNPC(context.Background(), CreateNPCInput{
		CampaignID: campaign.ID,
		Name:       "Old Marta",
		Health:     18,
		MaxHealth:  20,
	}); err != nil {
		t.Fatalf("create npc: %v", err)
	}

	result, err := svc.HealNPC(context.Background(), HealNPCInput{
		CampaignID: campaign.ID,
		Name:       "Old Marta",
		HealDice:   "10",
	})
	if err != nil {
		t.Fatalf("heal npc: %v", err)
	}
	if result.Roll != 10 {
		t.Fatalf("roll = %d, want 10", result.Roll)
	}
	if result.Healed != 2 {
		t.Fatalf("healed = %d, want 2", result.Healed)
	}
	if result.NPC.Health != 20 {
		t.Fatalf("health = %d, want 20", result.NPC.Health)
	}
}

func TestHealNPCResolvesByKeyword(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	campaign := seedTestCampaign(t, svc)
	if _, err := svc.CreateNPC(context.Background(), CreateNPCInput{
		CampaignID: campaign.ID,
		Name:       "Old Marta",
		Health:     5,
		MaxHealth:  20,
		Keywords:   []string{"lighthouse"},
	}); err != nil {
		t.Fatalf("create npc: %v", err)
	}

	result, err := svc.HealNPC(context.Background(), HealNPCInput{
		CampaignID: campaign.ID,
		Name:       "Lighthouse",
		HealDice:   "3",
	})
	if err != nil {
		t.Fatalf("heal by keyword: %v", err)
	}
	if result.NPC.Slug != "old-marta" {
		t.Fatalf("resolved npc = %q, want old-marta", result.NPC.Slug)
	}
	if result.NPC.Health != 8 {
		t.Fatalf("health = %d, want 8", result.NPC.Health)
	}
}

func TestHealNPCRejectsBadFormula(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	campaign := seedTestCampaign(t, svc)
	_, err := svc.HealNPC(context.Background(), HealNPCInput{
		CampaignID: campaign.ID,
		Name:       "anyone",
		HealDice:   "banana",
	})
	if !apperrors.IsCode(err, apperrors.CodeInvalidDiceFormula) {
		t.Fatalf("bad formula error = %v, want %s", err, apperrors.CodeInvalidDiceFormula)
	}
}

func TestCreateBestiaryEntryValidatesThreatAndFormula(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	campaign := seedTestCampaign(t, svc)

	if _, err := svc.CreateBestiaryEntry(context.Background(), CreateBestiaryEntryInput{
		CampaignID:  campaign.ID,
		Name:        "Bog Wight",
		ThreatLevel: "apocalyptic",
		HPFormula:   "2d6",
	}); !apperrors.IsCode(err, apperrors.CodeInvalidThreatLevel) {
		t.Fatalf("unknown threat error = %v, want %s", err, apperrors.CodeInvalidThreatLevel)
	}
	if _, err := svc.CreateBestiaryEntry(context.Background(), CreateBestiaryEntryInput{
		CampaignID:  campaign.ID,
		Name:        "Bog Wight",
		ThreatLevel: "moderate",
		HPFormula:   "d",
	}); !apperrors.IsCode(err, apperrors.CodeInvalidDiceFormula) {
		t.Fatalf("bad formula error = %v, want %s", err, apperrors.CodeInvalidDiceFormula)
	}

	entry, err := svc.CreateBestiaryEntry(context.Background(), CreateBestiaryEntryInput{
		CampaignID:  campaign.ID,
		Name:        "Bog Wight",
		ThreatLevel: "Moderate",
		HPFormula:   "2D6+2",
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if entry.NameKey != "bog-wight" {
		t.Fatalf("name key = %q, want bog-wight", entry.NameKey)
	}
	if entry.HPFormula != "2d6+2" {
		t.Fatalf("hp formula = %q, want 2d6+2", entry.HPFormula)
	}

	_, err = svc.CreateBestiaryEntry(context.Background(), CreateBestiaryEntryInput{
		CampaignID:  campaign.ID,
		Name:        "Bog Wight",
		ThreatLevel: "low",
		HPFormula:   "1d4",
	})
	if !apperrors.IsCode(err, apperrors.CodeAlreadyExists) {
		t.Fatalf("duplicate entry error = %v, want %s", err, apperrors.CodeAlreadyExists)
	}
}

func TestBeginCombatResolvesHitChances(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	campaign := seedTestCampaign(t, svc)
	if _, err := svc.CreateNPC(context.Background(), CreateNPCInput{
		CampaignID: campaign.ID,
		Name:       "Old Marta",
		HitChance:  0.35,
	}); err != nil {
		t.Fatalf("create npc: %v", err)
	}
	if _, err := svc.CreateBestiaryEntry(context.Background(), CreateBestiaryEntryInput{
		CampaignID:  campaign.ID,
		Name:        "Bog Wight",
		ThreatLevel: "deadly",
		HPFormula:   "2d6",
	}); err != nil {
		t.Fatalf("create bestiary entry: %v", err)
	}

	override := 0.9
	session, err := svc.BeginCombat(context.Background(), campaign.ID, []ParticipantInput{
		{Name: "Aragorn", Team: "party", Kind: "player"},
		{Name: "Old Marta", Team: "party", Kind: "npc"},
		{Name: "Bog Wight", Team: "foes", Kind: "bestiary"},
		{Name: "Bog Wight Alpha", Team: "foes", Kind: "bestiary", Ref: "Bog Wight", HitChanceOverride: &override},
	})
	if err != nil {
		t.Fatalf("begin combat: %v", err)
	}
	if session.Status != combat.SessionActive {
		t.Fatalf("status = %q, want %q", session.Status, combat.SessionActive)
	}

	wantChances := []float64{0.50, 0.35, 0.80, 0.9}
	if len(session.Combatants) != len(wantChances) {
		t.Fatalf("combatants len = %d, want %d", len(session.Combatants), len(wantChances))
	}
	for i, want := range wantChances {
		if got := session.Combatants[i].HitChance; got != want {
			t.Fatalf("combatant[%d] hit chance = %v, want %v", i, got, want)
		}
	}
	if session.Combatants[3].SourceRef != "bog-wight" {
		t.Fatalf("alpha source ref = %q, want bog-wight", session.Combatants[3].SourceRef)
	}
}

func TestBeginCombatRejectsDuplicateSession(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	campaign := seedTestCampaign(t, svc)
	participants := []ParticipantInput{
		{Name: "Aragorn", Team: "party", Kind: "player"},
		{Name: "Wight", Team: "foes", Kind: "player"},
	}
	if _, err := svc.BeginCombat(context.Background(), campaign.ID, participants); err != nil {
		t.Fatalf("begin first combat: %v", err)
	}
	_, err := svc.BeginCombat(context.Background(), campaign.ID, participants)
	if !apperrors.IsCode(err, apperrors.CodeDuplicateCombat) {
		t.Fatalf("duplicate combat error = %v, want %s", err, apperrors.CodeDuplicateCombat)
	}
}

func TestBeginCombatUnknownCampaign(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.BeginCombat(context.Background(), "missing", []ParticipantInput{
		{Name: "Aragorn", Team: "party", Kind: "player"},
	})
	if !apperrors.IsCode(err, apperrors.CodeCampaignNotFound) {
		t.Fatalf("begin combat error = %v, want %s", err, apperrors.CodeCampaignNotFound)
	}
}

func TestBeginCombatMissingBestiaryRef(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	campaign := seedTestCampaign(t, svc)
	_, err := svc.BeginCombat(context.Background(), campaign.ID, []ParticipantInput{
		{Name: "Aragorn", Team: "party", Kind: "player"},
		{Name: "Unknown Horror", Team: "foes", Kind: "bestiary"},
	})
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("missing ref error = %v, want %s", err, apperrors.CodeNotFound)
	}
}

func TestAttackUsesSeededDrawAndPersists(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	svc.newSeed = func() (int64, error) { return 42, nil }
	campaign := seedTestCampaign(t, svc)
	session := beginTestCombat(t, svc, campaign.ID)

	event, err := svc.Attack(context.Background(), campaign.ID, session.Combatants[0].ID, session.Combatants[1].ID)
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	if event.Seed != 42 {
		t.Fatalf("seed = %d, want 42", event.Seed)
	}
	wantRoll := rand.New(rand.NewSource(42)).Float64()
	if event.Roll != wantRoll {
		t.Fatalf("roll = %v, want %v", event.Roll, wantRoll)
	}
	if got := event.Hit; got != (wantRoll < 0.50) {
		t.Fatalf("hit = %v, want %v for roll %v against 0.50", got, wantRoll < 0.50, wantRoll)
	}

	status, err := svc.CombatStatus(context.Background(), campaign.ID)
	if err != nil {
		t.Fatalf("combat status: %v", err)
	}
	if len(status.Log) != 1 {
		t.Fatalf("log len = %d, want 1", len(status.Log))
	}
	for _, combatant := range status.Combatants {
		if combatant.Status != combat.StatusActive {
			t.Fatalf("combatant %s status = %q, attack must not change statuses", combatant.ID, combatant.Status)
		}
	}
}

func TestAttackHitRate(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	var seed int64
	svc.newSeed = func() (int64, error) {
		seed++
		return seed, nil
	}
	campaign := seedTestCampaign(t, svc)
	session := beginTestCombat(t, svc, campaign.ID)

	const trials = 10000
	hits := 0
	for i := 0; i < trials; i++ {
		event, err := svc.Attack(context.Background(), campaign.ID, session.Combatants[0].ID, session.Combatants[1].ID)
		if err != nil {
			t.Fatalf("attack %d: %v", i, err)
		}
		if event.Hit {
			hits++
		}
	}
	rate := float64(hits) / trials
	if rate < 0.47 || rate > 0.53 {
		t.Fatalf("hit rate = %v over %d trials, want within [0.47, 0.53] of 0.50", rate, trials)
	}
}

func TestAttackWithoutActiveCombat(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	campaign := seedTestCampaign(t, svc)
	_, err := svc.Attack(context.Background(), campaign.ID, "a", "b")
	if !apperrors.IsCode(err, apperrors.CodeNoActiveCombat) {
		t.Fatalf("attack error = %v, want %s", err, apperrors.CodeNoActiveCombat)
	}
}

func TestRemoveParticipantEndsSession(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	campaign := seedTestCampaign(t, svc)
	session := beginTestCombat(t, svc, campaign.ID)

	result, err := svc.RemoveParticipant(context.Background(), campaign.ID, session.Combatants[1].ID, "death")
	if err != nil {
		t.Fatalf("remove participant: %v", err)
	}
	if result.Combatant.Status != combat.StatusDead {
		t.Fatalf("status = %q, want %q", result.Combatant.Status, combat.StatusDead)
	}
	if result.Session.Status != combat.SessionEnded {
		t.Fatalf("session status = %q, want %q", result.Session.Status, combat.SessionEnded)
	}
	if result.Session.EndedAt == nil {
		t.Fatal("expected ended_at to be set")
	}

	_, err = svc.CombatStatus(context.Background(), campaign.ID)
	if !apperrors.IsCode(err, apperrors.CodeNoActiveCombat) {
		t.Fatalf("status after end error = %v, want %s", err, apperrors.CodeNoActiveCombat)
	}
}

func TestRemoveParticipantRejectsUnknownReason(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	campaign := seedTestCampaign(t, svc)
	_, err := svc.RemoveParticipant(context.Background(), campaign.ID, "cbt", "vaporized")
	if !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("unknown reason error = %v, want %s", err, apperrors.CodeInvalidArgument)
	}
}

func seedTestCampaign(t *testing.T, svc *Service) storage.Campaign {
	t.Helper()

	campaign, err := svc.CreateCampaign(context.Background(), CreateCampaignInput{
		Name:       "Sunfall",
		PlayerName: "Aragorn",
	})
	if err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
	return campaign
}

func beginTestCombat(t *testing.T, svc *Service, campaignID string) *combat.Session {
	t.Helper()

	session, err := svc.BeginCombat(context.Background(), campaignID, []ParticipantInput{
		{Name: "Aragorn", Team: "party", Kind: "player"},
		{Name: "Wight", Team: "foes", Kind: "player"},
	})
	if err != nil {
		t.Fatalf("begin combat: %v", err)
	}
	return session
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()

	store := newFakeStore()
	svc := NewService(store, zerolog.Nop())
	svc.clock = func() time.Time {
		return time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	}
	return svc, store
}
