package services

import (
	"math/rand"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/habeshagames/bingo-backend/cache"
	"github.com/habeshagames/bingo-backend/config"
)

// Service owns the round lifecycle engine: selections, escrow, lazy
// round transitions, claims and the call scheduler. One instance serves
// every stake tier.
type Service struct {
	db    *gorm.DB
	cache cache.Store
	clock clockwork.Clock
	hub   *Hub
	cfg   *config.Config
}

func New(db *gorm.DB, store cache.Store, clock clockwork.Clock, hub *Hub, cfg *config.Config) *Service {
	return &Service{
		db:    db,
		cache: store,
		clock: clock,
		hub:   hub,
		cfg:   cfg,
	}
}

// Hub exposes the push channel, used by the websocket endpoint.
func (s *Service) Hub() *Hub {
	return s.hub
}

// Stakes returns the configured stake tiers.
func (s *Service) Stakes() []int {
	return s.cfg.Stakes
}

// newRNG seeds a fresh generator per call, the same way the sequence
// shuffle has always been seeded.
func (s *Service) newRNG() *rand.Rand {
	return rand.New(rand.NewSource(s.clock.Now().UnixNano()))
}
