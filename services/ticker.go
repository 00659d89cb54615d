package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/habeshagames/bingo-backend/cache"
	"github.com/habeshagames/bingo-backend/game"
	"github.com/habeshagames/bingo-backend/models"
	"github.com/habeshagames/bingo-backend/utils/logger"
)

// RunTicker drives call broadcasts and automatic win detection for
// every stake tier until the context ends. The call index itself is
// derived from started_at on every pass, so a missed tick never skips
// or repeats a number.
func (s *Service) RunTicker(ctx context.Context) {
	ticker := s.clock.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Tick(ctx)
		}
	}
}

// Tick runs one scheduler pass over all stake tiers.
func (s *Service) Tick(ctx context.Context) {
	for _, stake := range s.cfg.Stakes {
		if err := s.tickStake(ctx, stake); err != nil {
			logInternal(fmt.Sprintf("tick stake %d", stake), err)
		}
	}
}

func (s *Service) tickStake(ctx context.Context, stake int) error {
	var g models.Game
	err := s.db.WithContext(ctx).
		Where("stake = ? AND active = ? AND started_at IS NOT NULL", stake, true).
		Order("id DESC").
		First(&g).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	pause, err := s.pauseState(ctx, g.ID)
	if err != nil {
		return err
	}
	if pause.Paused {
		return nil
	}

	seq := g.SequenceNumbers()
	paused, err := s.pausedDuration(ctx, g.ID)
	if err != nil {
		return err
	}
	count := game.CallCount(len(seq), *g.StartedAt, paused, s.clock.Now())
	if count == 0 {
		return nil
	}

	s.broadcastCall(ctx, &g, seq, count)

	if winners, win := s.autoWinners(ctx, &g, seq, count); len(winners) > 0 {
		return s.settleAutoWin(ctx, &g, winners, win)
	}

	// Sequence ran out with nobody winning: roll the round over.
	if count >= len(seq) && len(seq) > 0 {
		if won, err := s.finishRound(ctx, g.ID); err != nil {
			return err
		} else if won {
			s.clearRoundCache(ctx, g.ID, stake)
			s.spawnNext(ctx, stake)
			s.hub.Broadcast(stake, Event{"type": "restarted"})
			logger.Infof("[stake %d] game %d exhausted %d calls, restarted", stake, g.ID, len(seq))
		}
	}
	return nil
}

// broadcastCall pushes the newest call once. The cache remembers the
// last index sent so overlapping passes stay silent.
func (s *Service) broadcastCall(ctx context.Context, g *models.Game, seq []int, count int) {
	last, _, err := cache.GetInt64(ctx, s.cache, callKey(g.ID))
	if err != nil {
		logInternal("call dedup read", err)
		return
	}
	if int64(count) <= last {
		return
	}
	if err := cache.SetInt64(ctx, s.cache, callKey(g.ID), int64(count), callDedupTTL); err != nil {
		logInternal("call dedup write", err)
		return
	}
	number := seq[count-1]
	s.hub.Broadcast(g.Stake, Event{
		"type":   "call",
		"number": number,
		"letter": game.Letter(number),
		"index":  count,
		"total":  len(seq),
	})
}

// autoWinner pairs a charged selection with its completed pattern.
type autoWinner struct {
	sel models.Selection
	win *game.WinResult
}

// autoWinners scans auto-enabled cards for patterns completed by the
// numbers called so far. Every card completing on the same tick wins
// together.
func (s *Service) autoWinners(ctx context.Context, g *models.Game, seq []int, count int) ([]autoWinner, *game.WinResult) {
	sels, err := s.acceptedSelections(ctx, g.ID)
	if err != nil {
		logInternal("auto winner scan", err)
		return nil, nil
	}
	called := game.CalledSet(seq, count)

	var winners []autoWinner
	var first *game.WinResult
	for _, sel := range sels {
		if !sel.AutoEnabled {
			continue
		}
		card := game.Generate(sel.CardIndex)
		if win := game.CheckPatterns(card, called); win != nil {
			winners = append(winners, autoWinner{sel: sel, win: win})
			if first == nil {
				first = win
			}
		}
	}
	return winners, first
}

// settleAutoWin finishes the round and splits the pot evenly across
// simultaneous winners. The conditional finish keeps this from double
// paying against a manual claim landing on the same call.
func (s *Service) settleAutoWin(ctx context.Context, g *models.Game, winners []autoWinner, first *game.WinResult) error {
	won, err := s.finishRound(ctx, g.ID)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	pot := float64(g.ChargedCount) * float64(g.Stake) * (1 - HouseCut)
	share := pot / float64(len(winners))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, w := range winners {
			note := fmt.Sprintf("Win game #%d (%s)", g.ID, w.win.Pattern)
			if len(winners) > 1 {
				note = fmt.Sprintf("Split win game #%d (%s)", g.ID, w.win.Pattern)
			}
			if err := s.creditWin(tx, w.sel.PlayerID, share, note); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	names := make([]string, 0, len(winners))
	indices := make([]int, 0, len(winners))
	for _, w := range winners {
		names = append(names, w.sel.Player.DisplayName())
		indices = append(indices, w.sel.CardIndex)
	}

	snap := WinnerSnapshot{
		Winner:  names[0],
		Index:   indices[0],
		Pattern: first.Pattern,
		Row:     first.Row,
		Col:     first.Col,
		Payout:  share,
		At:      s.clock.Now().UnixMilli(),
	}
	if len(winners) > 1 {
		snap.Winners = names
	}
	s.cacheWinner(ctx, g.Stake, snap)

	if len(winners) == 1 {
		s.hub.Broadcast(g.Stake, Event{
			"type":    "winner",
			"winner":  snap.Winner,
			"index":   snap.Index,
			"pattern": snap.Pattern,
			"row":     snap.Row,
			"col":     snap.Col,
			"payout":  share,
		})
	} else {
		s.hub.Broadcast(g.Stake, Event{
			"type":    "winners",
			"winners": names,
			"indices": indices,
			"pattern": snap.Pattern,
			"payout":  share,
		})
	}
	logger.Infof("[stake %d] game %d auto-won by %d card(s), %.2f each", g.Stake, g.ID, len(winners), share)

	s.clearRoundCacheKeepWinner(ctx, g.ID)
	s.spawnNext(ctx, g.Stake)
	return nil
}
