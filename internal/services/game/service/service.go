// Package service implements the campaign game operations on top of storage.
//
// Mutating operations serialize per campaign: the service holds the campaign
// lock across the whole load-modify-save cycle so concurrent tool calls never
// interleave writes to the same campaign's state.
package service

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fableforge/fableforge/internal/platform/id"
	"github.com/fableforge/fableforge/internal/platform/random"
	"github.com/fableforge/fableforge/internal/services/game/storage"
)

// Service executes campaign, NPC, bestiary, and combat operations.
type Service struct {
	store   storage.Store
	log     zerolog.Logger
	clock   func() time.Time
	newID   func() (string, error)
	newSeed func() (int64, error)

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a game service backed by the given store.
func NewService(store storage.Store, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		log:     log,
		clock:   time.Now,
		newID:   id.New,
		newSeed: random.NewSeed,
		locks:   make(map[string]*sync.Mutex),
	}
}

// campaignLock returns the mutex guarding one campaign's mutations.
func (s *Service) campaignLock(campaignID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[campaignID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[campaignID] = lock
	}
	return lock
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
)

// slugify lowercases text and reduces it to a hyphenated key.
func slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = slugStrip.ReplaceAllString(text, "")
	text = slugCollapse.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}
