package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/habeshagames/bingo-backend/cache"
	"github.com/habeshagames/bingo-backend/game"
	"github.com/habeshagames/bingo-backend/models"
	"github.com/habeshagames/bingo-backend/utils/logger"
)

// GameState is the poll response: everything a client needs to render
// the round, including its own cards and balances.
type GameState struct {
	OK                 bool            `json:"ok"`
	Stake              int             `json:"stake"`
	GameID             uint            `json:"game_id"`
	Players            int             `json:"players"`
	AcceptedCount      int             `json:"accepted_count"`
	AcceptedCards      int             `json:"accepted_cards"`
	ChargedCards       int             `json:"charged_cards"`
	Taken              []int           `json:"taken"`
	CountdownStartedAt *time.Time      `json:"countdown_started_at"`
	CountdownRemaining *int            `json:"countdown_remaining"`
	StartedAt          *time.Time      `json:"started_at"`
	Started            bool            `json:"started"`
	Paused             bool            `json:"paused"`
	CurrentCall        *int            `json:"current_call"`
	CalledNumbers      []int           `json:"called_numbers"`
	CallCount          int             `json:"call_count"`
	MyCards            [2]*game.Card   `json:"my_cards"`
	MyIndices          [2]*int         `json:"my_indices"`
	AutoEnabled        [2]bool         `json:"auto_enabled"`
	Wallet             float64         `json:"wallet"`
	Gift               float64         `json:"gift"`
	Phone              string          `json:"phone"`
	TotalGames         int64           `json:"total_games"`
	Winner             *WinnerSnapshot `json:"winner"`
	ServerTime         int64           `json:"server_time"`
}

// StakeState is the lightweight per-tier status used by the home screen.
type StakeState struct {
	OK                 bool       `json:"ok"`
	Stake              int        `json:"stake"`
	GameID             *uint      `json:"game_id"`
	Started            bool       `json:"started"`
	CountdownStartedAt *time.Time `json:"countdown_started_at"`
	StartedAt          *time.Time `json:"started_at"`
	AcceptedCards      int        `json:"accepted_cards"`
	AcceptedCount      int        `json:"accepted_count"`
	PlayersDisplay     int        `json:"players_display"`
}

// WinnerSnapshot is cached briefly after a round ends so late-arriving
// clients still see who won.
type WinnerSnapshot struct {
	Winner  string       `json:"winner"`
	Winners []string     `json:"winners,omitempty"`
	Index   int          `json:"index"`
	Pattern game.Pattern `json:"pattern"`
	Row     int          `json:"row"`
	Col     int          `json:"col"`
	Payout  float64      `json:"payout"`
	Picks   []int        `json:"picks,omitempty"`
	At      int64        `json:"at"`
}

// ActiveGame returns the newest active round for a stake, creating one
// when none exists. Callers must tolerate the create racing another
// request; the latest-row query keeps everyone converging on one round.
func (s *Service) ActiveGame(ctx context.Context, stake int) (*models.Game, error) {
	var g models.Game
	err := s.db.WithContext(ctx).
		Where("stake = ? AND active = ?", stake, true).
		Order("id DESC").
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		g = models.Game{Stake: stake, Active: true}
		if err := s.db.WithContext(ctx).Create(&g).Error; err != nil {
			return nil, fmt.Errorf("create game for stake %d: %w", stake, err)
		}
		return &g, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch active game for stake %d: %w", stake, err)
	}
	return &g, nil
}

// finishRound flips a round inactive. Returns false when another path
// won the race; the loser must abandon its remaining side effects.
func (s *Service) finishRound(ctx context.Context, gameID uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Game{}).
		Where("id = ? AND active = ?", gameID, true).
		Updates(map[string]any{"active": false, "finished": true})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// spawnNext opens the successor round for a stake.
func (s *Service) spawnNext(ctx context.Context, stake int) {
	g := models.Game{Stake: stake, Active: true}
	if err := s.db.WithContext(ctx).Create(&g).Error; err != nil {
		logInternal(fmt.Sprintf("spawn next game for stake %d", stake), err)
	}
}

func (s *Service) acceptedSelections(ctx context.Context, gameID uint) ([]models.Selection, error) {
	var sels []models.Selection
	err := s.db.WithContext(ctx).
		Preload("Player").
		Where("game_id = ? AND accepted = ?", gameID, true).
		Order("id").
		Find(&sels).Error
	return sels, err
}

func distinctPlayers(sels []models.Selection) int {
	seen := make(map[uint]bool, len(sels))
	for _, sel := range sels {
		seen[sel.PlayerID] = true
	}
	return len(seen)
}

// onlineCount counts selections whose player heartbeated recently.
func (s *Service) onlineCount(ctx context.Context, gameID uint, sels []models.Selection) int {
	cutoff := s.clock.Now().Add(-s.cfg.HeartbeatTimeout).UnixMilli()
	online := 0
	for _, sel := range sels {
		hb, ok, err := cache.GetInt64(ctx, s.cache, heartbeatKey(gameID, sel.Player.TelegramID))
		if err != nil {
			continue
		}
		if ok && hb >= cutoff {
			online++
		}
	}
	return online
}

// favoredPick decides whether this round's sequence should be biased
// toward the configured favored player's card.
func (s *Service) favoredPick(sels []models.Selection, rng *rand.Rand) *game.FavoredPick {
	if s.cfg.FavoredTelegramID == 0 || s.cfg.FavoredWinRate <= 0 {
		return nil
	}
	if rng.Float64() > s.cfg.FavoredWinRate {
		return nil
	}
	var favored *models.Selection
	for i := range sels {
		if sels[i].Player.TelegramID == s.cfg.FavoredTelegramID {
			favored = &sels[i]
			break
		}
	}
	if favored == nil {
		return nil
	}
	pick := &game.FavoredPick{Card: game.Generate(favored.CardIndex)}
	for _, sel := range sels {
		if sel.ID != favored.ID {
			pick.Others = append(pick.Others, game.Generate(sel.CardIndex))
		}
	}
	return pick
}

// startCalling promotes a countdown round into the calling phase:
// generate and persist the sequence, set started_at, then charge one
// stake per distinct accepted player (gift balance first). The
// started_at IS NULL guard makes the promotion single-winner; losers
// simply reload.
func (s *Service) startCalling(ctx context.Context, g *models.Game) error {
	sels, err := s.acceptedSelections(ctx, g.ID)
	if err != nil {
		return err
	}
	rng := s.newRNG()
	seq := game.BuildSequence(s.favoredPick(sels, rng), rng)
	now := s.clock.Now()

	promoted := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Game{}).
			Where("id = ? AND started_at IS NULL AND active = ?", g.ID, true).
			Updates(map[string]any{
				"started_at": now,
				"sequence":   models.EncodeSequence(seq),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // another request promoted first
		}
		promoted = true

		charged := 0
		seen := make(map[uint]bool, len(sels))
		for _, sel := range sels {
			if seen[sel.PlayerID] {
				continue
			}
			seen[sel.PlayerID] = true
			err := s.chargeStake(tx, sel.PlayerID, g.Stake, g.ID)
			if errors.Is(err, ErrInsufficientBalance) {
				// Balance raced away since selection; drop the player's
				// cards, the round itself goes on.
				if err := tx.Where("game_id = ? AND player_id = ?", g.ID, sel.PlayerID).
					Delete(&models.Selection{}).Error; err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}
			charged++
		}

		return tx.Model(&models.Game{}).
			Where("id = ? AND stakes_charged = ?", g.ID, false).
			Updates(map[string]any{"stakes_charged": true, "charged_count": charged}).Error
	})
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).First(g, g.ID).Error; err != nil {
		return err
	}
	if promoted && g.StartedAt != nil {
		logger.Infof("[stake %d] game %d started calling, %d charged", g.Stake, g.ID, g.ChargedCount)
		s.hub.Broadcast(g.Stake, Event{
			"type":        "call.sync",
			"started_at":  g.StartedAt,
			"server_time": s.clock.Now().UnixMilli(),
		})
	}
	return nil
}

// StateSnapshot is the poll endpoint's engine: it lazily advances the
// round state machine as a side effect of reading it. Internal hiccups
// in a transition degrade to the last-known-good state; the next poll
// retries.
func (s *Service) StateSnapshot(ctx context.Context, stake int, tid int64) (*GameState, error) {
	// Each retry pass finishes the round it read, so successive reads
	// land on a fresh successor and the chain is short.
	for attempt := 0; attempt < 3; attempt++ {
		state, retry, err := s.stateOnce(ctx, stake, tid)
		if err != nil {
			return nil, err
		}
		if !retry {
			return state, nil
		}
	}

	// Rollover chain did not settle; report the open round as-is
	// without advancing it further.
	g, err := s.ActiveGame(ctx, stake)
	if err != nil {
		return nil, err
	}
	return &GameState{
		OK:                 true,
		Stake:              stake,
		GameID:             g.ID,
		CountdownStartedAt: g.CountdownStartedAt,
		StartedAt:          g.StartedAt,
		Started:            g.Started(),
		ServerTime:         s.clock.Now().UnixMilli(),
	}, nil
}

func (s *Service) stateOnce(ctx context.Context, stake int, tid int64) (*GameState, bool, error) {
	g, err := s.ActiveGame(ctx, stake)
	if err != nil {
		return nil, false, err
	}
	now := s.clock.Now()

	// Presence heartbeat for the polling player.
	if tid > 0 {
		if err := cache.SetInt64(ctx, s.cache, heartbeatKey(g.ID, tid), now.UnixMilli(), heartbeatTTL); err != nil {
			logInternal("heartbeat", err)
		}
		if err := cache.SetInt64(ctx, s.cache, seenKey(tid), now.UnixMilli(), seenTTL); err != nil {
			logInternal("seen marker", err)
		}
	}

	// Pre-countdown: release selections whose player went silent.
	if g.CountdownStartedAt == nil && !g.Started() {
		s.releaseStaleSelections(ctx, g)
	}

	sels, err := s.acceptedSelections(ctx, g.ID)
	if err != nil {
		return nil, false, err
	}
	cards := len(sels)
	players := distinctPlayers(sels)

	// A calling round everyone walked away from gets abandoned.
	if g.Started() && cards > 0 {
		if s.onlineCount(ctx, g.ID, sels) == 0 {
			idleSince, ok, _ := cache.GetInt64(ctx, s.cache, idleKey(g.ID))
			if !ok {
				_ = cache.SetInt64(ctx, s.cache, idleKey(g.ID), now.UnixMilli(), idleMarkerTTL)
			} else if now.UnixMilli()-idleSince >= s.cfg.IdleTimeout.Milliseconds() {
				if won, err := s.finishRound(ctx, g.ID); err == nil && won {
					if err := s.db.WithContext(ctx).Where("game_id = ?", g.ID).Delete(&models.Selection{}).Error; err != nil {
						logInternal("clear abandoned selections", err)
					}
					s.clearRoundCache(ctx, g.ID, stake)
					s.spawnNext(ctx, stake)
					s.hub.Broadcast(stake, Event{"type": "restarted"})
				}
				return nil, true, nil
			}
		} else {
			_ = s.cache.Del(ctx, idleKey(g.ID))
		}
	}

	// Calling with zero cards left (everyone disqualified or dropped at
	// charge time): finish as no-winner.
	if g.Started() && cards == 0 {
		if won, err := s.finishRound(ctx, g.ID); err == nil && won {
			s.clearRoundCache(ctx, g.ID, stake)
			s.spawnNext(ctx, stake)
			s.hub.Broadcast(stake, Event{"type": "game_ended_no_winner", "reason": "all players disqualified"})
		}
		return nil, true, nil
	}

	// Countdown begins at two distinct players, exactly once.
	if players >= 2 && g.CountdownStartedAt == nil && !g.Started() {
		res := s.db.WithContext(ctx).Model(&models.Game{}).
			Where("id = ? AND countdown_started_at IS NULL AND started_at IS NULL", g.ID).
			Update("countdown_started_at", now)
		if res.Error != nil {
			logInternal("start countdown", res.Error)
		}
		if err := s.db.WithContext(ctx).First(g, g.ID).Error; err != nil {
			return nil, false, err
		}
	}

	var countdownRemaining *int
	if g.CountdownStartedAt != nil && !g.Started() {
		remaining := s.cfg.Countdown - now.Sub(*g.CountdownStartedAt)
		switch {
		case players < 2:
			// Dropped below quorum mid-countdown: reset.
			res := s.db.WithContext(ctx).Model(&models.Game{}).
				Where("id = ? AND started_at IS NULL", g.ID).
				Update("countdown_started_at", nil)
			if res.Error != nil {
				logInternal("reset countdown", res.Error)
			}
			g.CountdownStartedAt = nil
		case remaining <= 0:
			if err := s.startCalling(ctx, g); err != nil {
				logInternal(fmt.Sprintf("start calling for game %d", g.ID), err)
			}
			sels, err = s.acceptedSelections(ctx, g.ID)
			if err != nil {
				return nil, false, err
			}
			cards = len(sels)
			players = distinctPlayers(sels)
		default:
			secs := int(remaining.Seconds())
			countdownRemaining = &secs
		}
	}

	state := &GameState{
		OK:                 true,
		Stake:              stake,
		GameID:             g.ID,
		AcceptedCount:      players,
		AcceptedCards:      cards,
		Taken:              takenIndices(sels),
		CountdownStartedAt: g.CountdownStartedAt,
		CountdownRemaining: countdownRemaining,
		StartedAt:          g.StartedAt,
		Started:            g.Started(),
		ServerTime:         now.UnixMilli(),
	}

	// Displayed player/card counts freeze at the charge snapshot so
	// post-lock churn never changes the advertised pot.
	if g.StakesCharged {
		state.Players = g.ChargedCount
		state.ChargedCards = g.ChargedCount
	} else {
		state.Players = players
		state.ChargedCards = cards
	}

	if g.Started() {
		seq := g.SequenceNumbers()
		paused, err := s.pausedDuration(ctx, g.ID)
		if err != nil {
			logInternal("pause lookup", err)
		}
		pauseState, _ := s.pauseState(ctx, g.ID)
		state.Paused = pauseState.Paused

		count := game.CallCount(len(seq), *g.StartedAt, paused, now)
		state.CallCount = count
		state.CalledNumbers = game.CalledNumbers(seq, count)
		if count > 0 {
			current := seq[count-1]
			state.CurrentCall = &current
		}

		// Sequence exhausted with no winner: roll the round over.
		if len(seq) > 0 && count >= len(seq) {
			if won, err := s.finishRound(ctx, g.ID); err == nil && won {
				s.clearRoundCache(ctx, g.ID, stake)
				s.spawnNext(ctx, stake)
				s.hub.Broadcast(stake, Event{"type": "restarted"})
			}
		}
	}
	if state.CurrentCall == nil {
		_ = s.cache.Del(ctx, callKey(g.ID))
	}

	if tid > 0 {
		s.fillPlayerView(ctx, state, g, sels, tid)
	}

	state.TotalGames = s.totalGames(ctx)
	state.Winner = s.winnerSnapshot(ctx, stake)
	return state, false, nil
}

func takenIndices(sels []models.Selection) []int {
	taken := make([]int, 0, len(sels))
	for _, sel := range sels {
		taken = append(taken, sel.CardIndex)
	}
	return taken
}

func (s *Service) fillPlayerView(ctx context.Context, state *GameState, g *models.Game, sels []models.Selection, tid int64) {
	state.AutoEnabled = [2]bool{true, true}

	var player models.Player
	err := s.db.WithContext(ctx).Where("telegram_id = ?", tid).First(&player).Error
	if err != nil {
		return
	}
	state.Wallet = player.Wallet
	state.Gift = player.Gift
	state.Phone = player.Phone

	for _, sel := range sels {
		if sel.PlayerID != player.ID || sel.Slot < 0 || sel.Slot > 1 {
			continue
		}
		card := game.Generate(sel.CardIndex)
		index := sel.CardIndex
		state.MyCards[sel.Slot] = &card
		state.MyIndices[sel.Slot] = &index
		state.AutoEnabled[sel.Slot] = sel.AutoEnabled
	}
}

// totalGames is an all-time started-rounds counter for display, cached
// briefly to keep polls cheap.
func (s *Service) totalGames(ctx context.Context) int64 {
	if raw, ok, _ := s.cache.Get(ctx, "total_games"); ok {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Game{}).Where("started_at IS NOT NULL").Count(&n).Error; err != nil {
		return 0
	}
	_ = cache.SetInt64(ctx, s.cache, "total_games", n, 5*time.Second)
	return n
}

func (s *Service) winnerSnapshot(ctx context.Context, stake int) *WinnerSnapshot {
	raw, ok, err := s.cache.Get(ctx, winnerKey(stake))
	if err != nil || !ok {
		return nil
	}
	var snap WinnerSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil
	}
	return &snap
}

func (s *Service) cacheWinner(ctx context.Context, stake int, snap WinnerSnapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, winnerKey(stake), string(raw), winnerTTL); err != nil {
		logInternal("cache winner snapshot", err)
	}
}

// StakeSnapshot is the cheap status read used by the lobby list.
func (s *Service) StakeSnapshot(ctx context.Context, stake int) (*StakeState, error) {
	var g models.Game
	err := s.db.WithContext(ctx).
		Where("stake = ? AND active = ?", stake, true).
		Order("id DESC").
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &StakeState{OK: true, Stake: stake}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch stake state %d: %w", stake, err)
	}

	sels, err := s.acceptedSelections(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	players := distinctPlayers(sels)
	display := players
	if g.StakesCharged {
		display = g.ChargedCount
	}
	gameID := g.ID
	return &StakeState{
		OK:                 true,
		Stake:              stake,
		GameID:             &gameID,
		Started:            g.Started(),
		CountdownStartedAt: g.CountdownStartedAt,
		StartedAt:          g.StartedAt,
		AcceptedCards:      len(sels),
		AcceptedCount:      players,
		PlayersDisplay:     display,
	}, nil
}
