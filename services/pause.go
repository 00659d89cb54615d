package services

import (
	"context"
	"fmt"
	"time"

	"github.com/habeshagames/bingo-backend/cache"
)

// PauseState is the operator-facing pause bookkeeping for one round.
// PausedMs includes the currently open pause window, so readers see the
// same frozen call index whether or not a resume happened yet.
type PauseState struct {
	Paused   bool  `json:"paused"`
	PauseAt  int64 `json:"pause_at,omitempty"`
	PausedMs int64 `json:"paused_ms"`
}

func (s *Service) pauseState(ctx context.Context, gameID uint) (PauseState, error) {
	flag, _, err := s.cache.Get(ctx, pauseKey(gameID))
	if err != nil {
		return PauseState{}, err
	}
	pauseAt, hasAt, err := cache.GetInt64(ctx, s.cache, pauseAtKey(gameID))
	if err != nil {
		return PauseState{}, err
	}
	pausedMs, _, err := cache.GetInt64(ctx, s.cache, pauseMsKey(gameID))
	if err != nil {
		return PauseState{}, err
	}

	state := PauseState{Paused: flag == "1", PausedMs: pausedMs}
	if state.Paused && hasAt {
		state.PauseAt = pauseAt
		if extra := s.clock.Now().UnixMilli() - pauseAt; extra > 0 {
			state.PausedMs += extra
		}
	}
	if state.PausedMs < 0 {
		state.PausedMs = 0
	}
	return state, nil
}

// pausedDuration is the accumulated pause time fed into call derivation.
func (s *Service) pausedDuration(ctx context.Context, gameID uint) (time.Duration, error) {
	state, err := s.pauseState(ctx, gameID)
	if err != nil {
		return 0, err
	}
	return time.Duration(state.PausedMs) * time.Millisecond, nil
}

// pauseRound opens a pause window. Idempotent: pausing a paused round
// just reports the current state.
func (s *Service) pauseRound(ctx context.Context, gameID uint) (PauseState, error) {
	state, err := s.pauseState(ctx, gameID)
	if err != nil {
		return PauseState{}, err
	}
	if state.Paused && state.PauseAt > 0 {
		return state, nil
	}
	if err := s.cache.Set(ctx, pauseKey(gameID), "1", 0); err != nil {
		return PauseState{}, err
	}
	if err := cache.SetInt64(ctx, s.cache, pauseAtKey(gameID), s.clock.Now().UnixMilli(), 0); err != nil {
		return PauseState{}, err
	}
	if _, err := s.cache.SetNX(ctx, pauseMsKey(gameID), "0", 0); err != nil {
		return PauseState{}, err
	}
	return s.pauseState(ctx, gameID)
}

// resumeRound folds the open window into the accumulated total and
// clears the pause marker. Idempotent on an unpaused round.
func (s *Service) resumeRound(ctx context.Context, gameID uint) (PauseState, error) {
	state, err := s.pauseState(ctx, gameID)
	if err != nil {
		return PauseState{}, err
	}
	if state.Paused {
		// pauseState already includes the open window in PausedMs.
		if err := cache.SetInt64(ctx, s.cache, pauseMsKey(gameID), state.PausedMs, 0); err != nil {
			return PauseState{}, err
		}
	}
	if err := s.cache.Set(ctx, pauseKey(gameID), "0", 0); err != nil {
		return PauseState{}, err
	}
	if err := s.cache.Del(ctx, pauseAtKey(gameID)); err != nil {
		return PauseState{}, err
	}
	return s.pauseState(ctx, gameID)
}

func (s *Service) clearRoundCache(ctx context.Context, gameID uint, stake int) {
	err := s.cache.Del(ctx,
		callKey(gameID),
		pauseKey(gameID),
		pauseAtKey(gameID),
		pauseMsKey(gameID),
		idleKey(gameID),
		winnerKey(stake),
	)
	if err != nil {
		logInternal(fmt.Sprintf("clear cache for game %d", gameID), err)
	}
}
