package service

import (
	"context"
	"sync"

	"github.com/fableforge/fableforge/internal/services/game/domain/combat"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// fakeStore is an in-memory storage.Store. Sessions are cloned on both read
// and write so callers cannot alias stored state, matching the SQLite store.
type fakeStore struct {
	mu        sync.Mutex
	campaigns map[string]storage.Campaign
	npcs      map[string]map[string]storage.NPC
	bestiary  map[string]map[string]storage.BestiaryEntry
	sessions  map[string]*combat.Session
}

var _ storage.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		campaigns: make(map[string]storage.Campaign),
		npcs:      make(map[string]map[string]storage.NPC),
		bestiary:  make(map[string]map[string]storage.BestiaryEntry),
		sessions:  make(map[string]*combat.Session),
	}
}

func (f *fakeStore) PutCampaign(_ context.Context, campaign storage.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.campaigns {
		if existing.Slug == campaign.Slug && existing.ID != campaign.ID {
			return storage.ErrAlreadyExists
		}
	}
	f.campaigns[campaign.ID] = campaign
	return nil
}

func (f *fakeStore) GetCampaign(_ context.Context, id string) (storage.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	campaign, ok := f.campaigns[id]
	if !ok {
		return storage.Campaign{}, storage.ErrNotFound
	}
	return campaign, nil
}

func (f *fakeStore) ListCampaigns(_ context.Context) ([]storage.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]storage.Campaign, 0, len(f.campaigns))
	for _, campaign := range f.campaigns {
		out = append(out, campaign)
	}
	return out, nil
}

func (f *fakeStore) PutNPC(_ context.Context, npc storage.NPC) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	bySlug, ok := f.npcs[npc.CampaignID]
	if !ok {
		bySlug = make(map[string]storage.NPC)
		f.npcs[npc.CampaignID] = bySlug
	}
	bySlug[npc.Slug] = npc
	return nil
}

func (f *fakeStore) GetNPC(_ context.Context, campaignID, slug string) (storage.NPC, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	npc, ok := f.npcs[campaignID][slug]
	if !ok {
		return storage.NPC{}, storage.ErrNotFound
	}
	return npc, nil
}

func (f *fakeStore) ListNPCs(_ context.Context, campaignID string) ([]storage.NPC, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]storage.NPC, 0, len(f.npcs[campaignID]))
	for _, npc := range f.npcs[campaignID] {
		out = append(out, npc)
	}
	return out, nil
}

func (f *fakeStore) PutBestiaryEntry(_ context.Context, entry storage.BestiaryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	byKey, ok := f.bestiary[entry.CampaignID]
	if !ok {
		byKey = make(map[string]storage.BestiaryEntry)
		f.bestiary[entry.CampaignID] = byKey
	}
	if _, exists := byKey[entry.NameKey]; exists {
		return storage.ErrAlreadyExists
	}
	byKey[entry.NameKey] = entry
	return nil
}

func (f *fakeStore) GetBestiaryEntry(_ context.Context, campaignID, nameKey string) (storage.BestiaryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.bestiary[campaignID][nameKey]
	if !ok {
		return storage.BestiaryEntry{}, storage.ErrNotFound
	}
	return entry, nil
}

func (f *fakeStore) ListBestiary(_ context.Context, campaignID string) ([]storage.BestiaryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]storage.BestiaryEntry, 0, len(f.bestiary[campaignID]))
	for _, entry := range f.bestiary[campaignID] {
		out = append(out, entry)
	}
	return out, nil
}

func (f *fakeStore) GetActiveSession(_ context.Context, campaignID string) (*combat.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[campaignID]
	if !ok || session.Status != combat.SessionActive {
		return nil, storage.ErrNotFound
	}
	return cloneSession(session), nil
}

func (f *fakeStore) PutSession(_ context.Context, session *combat.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.CampaignID] = cloneSession(session)
	return nil
}

func cloneSession(session *combat.Session) *combat.Session {
	clone := *session
	clone.Combatants = append([]combat.Combatant(nil), session.Combatants...)
	clone.Log = append([]combat.AttackEvent(nil), session.Log...)
	if session.EndedAt != nil {
		ended := *session.EndedAt
		clone.EndedAt = &ended
	}
	return &clone
}
