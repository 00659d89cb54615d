package services

import (
	"context"
	"time"

	"github.com/habeshagames/bingo-backend/game"
	"github.com/habeshagames/bingo-backend/models"
	"github.com/habeshagames/bingo-backend/utils/logger"
)

// RoomStatus is the operator view of one stake tier.
type RoomStatus struct {
	Stake         int        `json:"stake"`
	GameID        uint       `json:"game_id"`
	Started       bool       `json:"started"`
	StartedAt     *time.Time `json:"started_at"`
	AcceptedCards int        `json:"accepted_cards"`
	Players       int        `json:"players"`
	Online        int        `json:"online"`
	CallCount     int        `json:"call_count"`
	Paused        bool       `json:"paused"`
	PausedMs      int64      `json:"paused_ms"`
}

// Rooms reports every configured stake tier for the admin dashboard.
func (s *Service) Rooms(ctx context.Context) ([]RoomStatus, error) {
	rooms := make([]RoomStatus, 0, len(s.cfg.Stakes))
	for _, stake := range s.cfg.Stakes {
		g, err := s.ActiveGame(ctx, stake)
		if err != nil {
			return nil, err
		}
		sels, err := s.acceptedSelections(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		status := RoomStatus{
			Stake:         stake,
			GameID:        g.ID,
			Started:       g.Started(),
			StartedAt:     g.StartedAt,
			AcceptedCards: len(sels),
			Players:       distinctPlayers(sels),
			Online:        s.onlineCount(ctx, g.ID, sels),
		}
		if g.Started() {
			pause, err := s.pauseState(ctx, g.ID)
			if err == nil {
				status.Paused = pause.Paused
				status.PausedMs = pause.PausedMs
			}
			seq := g.SequenceNumbers()
			paused, _ := s.pausedDuration(ctx, g.ID)
			status.CallCount = game.CallCount(len(seq), *g.StartedAt, paused, s.clock.Now())
		}
		rooms = append(rooms, status)
	}
	return rooms, nil
}

// PauseRound freezes the call clock for a stake's running round.
func (s *Service) PauseRound(ctx context.Context, stake int) (PauseState, error) {
	g, err := s.ActiveGame(ctx, stake)
	if err != nil {
		return PauseState{}, err
	}
	if !g.Started() {
		return PauseState{}, ErrRoundNotCalling
	}
	state, err := s.pauseRound(ctx, g.ID)
	if err != nil {
		return PauseState{}, err
	}
	s.hub.Broadcast(stake, Event{"type": "paused"})
	logger.Infof("[stake %d] game %d paused", stake, g.ID)
	return state, nil
}

// ResumeRound unfreezes the call clock; calling resumes exactly where
// it stopped.
func (s *Service) ResumeRound(ctx context.Context, stake int) (PauseState, error) {
	g, err := s.ActiveGame(ctx, stake)
	if err != nil {
		return PauseState{}, err
	}
	if !g.Started() {
		return PauseState{}, ErrRoundNotCalling
	}
	state, err := s.resumeRound(ctx, g.ID)
	if err != nil {
		return PauseState{}, err
	}
	s.hub.Broadcast(stake, Event{"type": "resumed", "paused_ms": state.PausedMs})
	logger.Infof("[stake %d] game %d resumed after %dms paused", stake, g.ID, state.PausedMs)
	return state, nil
}

// RestartRound force-ends a stake's current round with no winner and
// opens a fresh one. Stakes already charged are not refunded here;
// refunds go through the wallet adjust path.
func (s *Service) RestartRound(ctx context.Context, stake int) (uint, error) {
	g, err := s.ActiveGame(ctx, stake)
	if err != nil {
		return 0, err
	}
	won, err := s.finishRound(ctx, g.ID)
	if err != nil {
		return 0, err
	}
	if !won {
		return 0, ErrStaleRound
	}
	if err := s.db.WithContext(ctx).Where("game_id = ?", g.ID).Delete(&models.Selection{}).Error; err != nil {
		logInternal("clear selections on restart", err)
	}
	s.clearRoundCache(ctx, g.ID, stake)
	s.spawnNext(ctx, stake)
	s.hub.Broadcast(stake, Event{"type": "restarted"})
	logger.Infof("[stake %d] game %d force-restarted", stake, g.ID)
	return g.ID, nil
}
