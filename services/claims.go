package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/habeshagames/bingo-backend/game"
	"github.com/habeshagames/bingo-backend/models"
	"github.com/habeshagames/bingo-backend/utils/logger"
)

// ClaimResult is the outcome of a bingo claim. Exactly one of Won or
// Disqualified is set; a disqualification carries the reason shown to
// the player.
type ClaimResult struct {
	OK           bool            `json:"ok"`
	Won          bool            `json:"won"`
	Disqualified bool            `json:"disqualified"`
	Reason       string          `json:"reason,omitempty"`
	Payout       float64         `json:"payout,omitempty"`
	Pattern      game.Pattern    `json:"pattern,omitempty"`
	Winner       *WinnerSnapshot `json:"winner,omitempty"`
}

// Claim adjudicates a manual bingo claim against the current call index.
// A claim is valid only in the one-call window where the pattern first
// became complete: complete already at the previous call means the claim
// is late, not complete at the current call means it is false. Either
// way the card is disqualified from the rest of the round.
func (s *Service) Claim(ctx context.Context, tid int64, stake, slot int, picks []int) (*ClaimResult, error) {
	if slot < 0 || slot > 1 {
		return nil, ErrInvalidInput
	}
	player, err := s.GetPlayer(ctx, tid)
	if err != nil {
		return nil, err
	}

	g, err := s.ActiveGame(ctx, stake)
	if err != nil {
		return nil, err
	}
	if !g.Started() {
		return nil, ErrRoundNotCalling
	}

	var sel models.Selection
	err = s.db.WithContext(ctx).
		Where("game_id = ? AND player_id = ? AND slot = ? AND accepted = ?", g.ID, player.ID, slot, true).
		First(&sel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoCard
	}
	if err != nil {
		return nil, err
	}

	seq := g.SequenceNumbers()
	paused, err := s.pausedDuration(ctx, g.ID)
	if err != nil {
		logInternal("pause lookup on claim", err)
	}
	count := game.CallCount(len(seq), *g.StartedAt, paused, s.clock.Now())
	card := game.Generate(sel.CardIndex)

	winNow := game.CheckPatterns(card, game.CalledSet(seq, count))
	if winNow == nil {
		return s.disqualify(ctx, g, &sel, player, "no winning pattern on this card")
	}
	if count > 0 {
		if winPrev := game.CheckPatterns(card, game.CalledSet(seq, count-1)); winPrev != nil {
			return s.disqualify(ctx, g, &sel, player, "claimed too late")
		}
	}

	return s.settleWin(ctx, g, player, &sel, winNow, picks)
}

// disqualify removes the offending card from the round and tells the
// room. When it was the last card standing, the round ends winnerless.
func (s *Service) disqualify(ctx context.Context, g *models.Game, sel *models.Selection, player *models.Player, reason string) (*ClaimResult, error) {
	res := s.db.WithContext(ctx).
		Where("id = ? AND game_id = ?", sel.ID, g.ID).
		Delete(&models.Selection{})
	if res.Error != nil {
		return nil, res.Error
	}

	logger.Infof("[stake %d] game %d disqualified card %d of %d: %s", g.Stake, g.ID, sel.CardIndex, player.TelegramID, reason)
	s.hub.Broadcast(g.Stake, Event{
		"type":   "disqualified",
		"player": player.DisplayName(),
		"index":  sel.CardIndex,
		"reason": reason,
	})

	var remaining int64
	if err := s.db.WithContext(ctx).Model(&models.Selection{}).
		Where("game_id = ? AND accepted = ?", g.ID, true).
		Count(&remaining).Error; err == nil && remaining == 0 {
		if won, err := s.finishRound(ctx, g.ID); err == nil && won {
			s.clearRoundCache(ctx, g.ID, g.Stake)
			s.spawnNext(ctx, g.Stake)
			s.hub.Broadcast(g.Stake, Event{"type": "game_ended_no_winner", "reason": "all players disqualified"})
		}
	}

	return &ClaimResult{OK: true, Disqualified: true, Reason: reason}, nil
}

// settleWin pays out a validated claim. The conditional finish is the
// race arbiter against the ticker and rival claims; losing it means the
// round was already settled.
func (s *Service) settleWin(ctx context.Context, g *models.Game, player *models.Player, sel *models.Selection, win *game.WinResult, picks []int) (*ClaimResult, error) {
	won, err := s.finishRound(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrStaleRound
	}

	payout := float64(g.ChargedCount) * float64(g.Stake) * (1 - HouseCut)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.creditWin(tx, player.ID, payout, fmt.Sprintf("Win game #%d (%s)", g.ID, win.Pattern))
	})
	if err != nil {
		// Money failed after the finish flipped; loud log, round stays
		// finished so no rival double-pays.
		logInternal(fmt.Sprintf("credit win for game %d player %d", g.ID, player.ID), err)
		return nil, err
	}

	snap := WinnerSnapshot{
		Winner:  player.DisplayName(),
		Index:   sel.CardIndex,
		Pattern: win.Pattern,
		Row:     win.Row,
		Col:     win.Col,
		Payout:  payout,
		Picks:   picks,
		At:      s.clock.Now().UnixMilli(),
	}
	s.cacheWinner(ctx, g.Stake, snap)
	s.hub.Broadcast(g.Stake, Event{
		"type":    "winner",
		"winner":  snap.Winner,
		"index":   snap.Index,
		"pattern": snap.Pattern,
		"row":     snap.Row,
		"col":     snap.Col,
		"payout":  snap.Payout,
	})
	logger.Infof("[stake %d] game %d won by %d, payout %.2f (%s)", g.Stake, g.ID, player.TelegramID, payout, win.Pattern)

	s.clearRoundCacheKeepWinner(ctx, g.ID)
	s.spawnNext(ctx, g.Stake)

	return &ClaimResult{OK: true, Won: true, Payout: payout, Pattern: win.Pattern, Winner: &snap}, nil
}

// clearRoundCacheKeepWinner drops a settled round's ephemeral keys but
// leaves the freshly written winner snapshot to expire on its own.
func (s *Service) clearRoundCacheKeepWinner(ctx context.Context, gameID uint) {
	err := s.cache.Del(ctx,
		callKey(gameID),
		pauseKey(gameID),
		pauseAtKey(gameID),
		pauseMsKey(gameID),
		idleKey(gameID),
	)
	if err != nil {
		logInternal(fmt.Sprintf("clear cache for game %d", gameID), err)
	}
}
