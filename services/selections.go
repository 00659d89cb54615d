package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/habeshagames/bingo-backend/cache"
	"github.com/habeshagames/bingo-backend/game"
	"github.com/habeshagames/bingo-backend/models"
)

// SelectResult reports the selection board after an accept, so the
// client can render taken cards and a freshly triggered countdown
// without a second poll.
type SelectResult struct {
	OK                 bool       `json:"ok"`
	GameID             uint       `json:"game_id"`
	Taken              []int      `json:"taken"`
	AcceptedCards      int        `json:"accepted_cards"`
	AcceptedPlayers    int        `json:"accepted_players"`
	CountdownStartedAt *time.Time `json:"countdown_started_at"`
}

// Preview derives the card for an index without reserving anything.
func (s *Service) Preview(index int) (*game.Card, error) {
	if index < 1 || index > game.MaxSeed {
		return nil, ErrInvalidInput
	}
	card := game.Generate(index)
	return &card, nil
}

// Accept reserves a card index for a player's slot in the current open
// round. The unique index on (game, card_index) is the arbiter when two
// players race for the same card.
func (s *Service) Accept(ctx context.Context, tid int64, stake, slot, index int) (*SelectResult, error) {
	if slot < 0 || slot > 1 || index < 1 || index > game.MaxSeed {
		return nil, ErrInvalidInput
	}
	player, err := s.GetOrCreatePlayer(ctx, tid)
	if err != nil {
		return nil, err
	}
	if player.Banned {
		return nil, ErrBanned
	}

	g, err := s.ActiveGame(ctx, stake)
	if err != nil {
		return nil, err
	}
	if g.Started() {
		return nil, ErrRoundStarted
	}
	if player.Balance() < float64(stake) {
		return nil, ErrInsufficientBalance
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken models.Selection
		err := tx.Where("game_id = ? AND card_index = ?", g.ID, index).First(&taken).Error
		if err == nil {
			if taken.PlayerID == player.ID && taken.Slot == slot {
				return nil // re-accepting your own card is a no-op
			}
			return ErrCardTaken
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		// Replacing a slot releases its previous card.
		if err := tx.Where("game_id = ? AND player_id = ? AND slot = ?", g.ID, player.ID, slot).
			Delete(&models.Selection{}).Error; err != nil {
			return err
		}

		sel := models.Selection{
			GameID:      g.ID,
			PlayerID:    player.ID,
			Slot:        slot,
			CardIndex:   index,
			Accepted:    true,
			AutoEnabled: true,
		}
		if err := tx.Create(&sel).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrCardTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Selecting counts as presence.
	now := s.clock.Now()
	_ = cache.SetInt64(ctx, s.cache, heartbeatKey(g.ID, tid), now.UnixMilli(), heartbeatTTL)
	_ = cache.SetInt64(ctx, s.cache, seenKey(tid), now.UnixMilli(), seenTTL)

	return s.selectResult(ctx, g, true)
}

// Cancel releases one of the player's reserved cards before the round
// starts.
func (s *Service) Cancel(ctx context.Context, tid int64, stake, slot int) (*SelectResult, error) {
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
	if g.Started() {
		return nil, ErrRoundStarted
	}

	res := s.db.WithContext(ctx).
		Where("game_id = ? AND player_id = ? AND slot = ?", g.ID, player.ID, slot).
		Delete(&models.Selection{})
	if res.Error != nil {
		return nil, res.Error
	}
	return s.selectResult(ctx, g, false)
}

// Abandon releases all of the player's cards in the round. Only honored
// before calling starts; once stakes are in, leaving forfeits them.
func (s *Service) Abandon(ctx context.Context, tid int64, stake int) (*SelectResult, error) {
	player, err := s.GetPlayer(ctx, tid)
	if err != nil {
		return nil, err
	}
	g, err := s.ActiveGame(ctx, stake)
	if err != nil {
		return nil, err
	}
	if g.Started() {
		return nil, ErrRoundStarted
	}

	res := s.db.WithContext(ctx).
		Where("game_id = ? AND player_id = ?", g.ID, player.ID).
		Delete(&models.Selection{})
	if res.Error != nil {
		return nil, res.Error
	}
	_ = s.cache.Del(ctx, heartbeatKey(g.ID, tid))
	return s.selectResult(ctx, g, false)
}

// ToggleAuto flips automatic win detection for one of the player's
// cards. With auto off, the ticker skips the card and the player must
// claim manually.
func (s *Service) ToggleAuto(ctx context.Context, tid int64, stake, slot int, enabled bool) error {
	if slot < 0 || slot > 1 {
		return ErrInvalidInput
	}
	player, err := s.GetPlayer(ctx, tid)
	if err != nil {
		return err
	}
	g, err := s.ActiveGame(ctx, stake)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Selection{}).
		Where("game_id = ? AND player_id = ? AND slot = ?", g.ID, player.ID, slot).
		Update("auto_enabled", enabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoCard
	}
	return nil
}

// selectResult rebuilds the board view and, on accepts, triggers the
// countdown the moment a second distinct player is in.
func (s *Service) selectResult(ctx context.Context, g *models.Game, maybeCountdown bool) (*SelectResult, error) {
	sels, err := s.acceptedSelections(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	players := distinctPlayers(sels)

	if maybeCountdown && players >= 2 && g.CountdownStartedAt == nil {
		res := s.db.WithContext(ctx).Model(&models.Game{}).
			Where("id = ? AND countdown_started_at IS NULL AND started_at IS NULL", g.ID).
			Update("countdown_started_at", s.clock.Now())
		if res.Error != nil {
			logInternal("start countdown on select", res.Error)
		}
		if err := s.db.WithContext(ctx).First(g, g.ID).Error; err != nil {
			return nil, err
		}
	}

	return &SelectResult{
		OK:                 true,
		GameID:             g.ID,
		Taken:              takenIndices(sels),
		AcceptedCards:      len(sels),
		AcceptedPlayers:    players,
		CountdownStartedAt: g.CountdownStartedAt,
	}, nil
}

// releaseStaleSelections drops pre-countdown reservations whose player
// stopped heartbeating. Throttled through the cache so concurrent polls
// do not all sweep at once.
func (s *Service) releaseStaleSelections(ctx context.Context, g *models.Game) {
	ok, err := s.cache.SetNX(ctx, staleSweepKey(g.ID), "1", staleSweepGap)
	if err != nil || !ok {
		return
	}
	sels, err := s.acceptedSelections(ctx, g.ID)
	if err != nil {
		logInternal("stale sweep load", err)
		return
	}
	cutoff := s.clock.Now().Add(-s.cfg.HeartbeatTimeout).UnixMilli()
	for _, sel := range sels {
		hb, ok, err := cache.GetInt64(ctx, s.cache, heartbeatKey(g.ID, sel.Player.TelegramID))
		if err != nil {
			continue
		}
		if ok && hb >= cutoff {
			continue
		}
		res := s.db.WithContext(ctx).
			Where("id = ? AND game_id = ?", sel.ID, g.ID).
			Delete(&models.Selection{})
		if res.Error != nil {
			logInternal(fmt.Sprintf("release stale selection %d", sel.ID), res.Error)
		}
	}
}

// isUniqueViolation matches constraint errors from both postgres and
// the sqlite test driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
