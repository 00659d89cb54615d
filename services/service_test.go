package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/habeshagames/bingo-backend/cache"
	"github.com/habeshagames/bingo-backend/config"
	"github.com/habeshagames/bingo-backend/models"
)

func newTestService(t *testing.T) (*Service, *clockwork.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	clock := clockwork.NewFakeClock()
	cfg := &config.Config{
		Stakes:           []int{10, 20},
		Countdown:        30 * time.Second,
		HeartbeatTimeout: 15 * time.Second,
		IdleTimeout:      20 * time.Second,
		TickInterval:     time.Second,
	}
	svc := New(db, cache.NewMemory(clock), clock, NewHub(), cfg)
	return svc, clock
}

func createPlayer(t *testing.T, s *Service, tid int64, wallet, gift float64) *models.Player {
	t.Helper()
	player := &models.Player{TelegramID: tid, Wallet: wallet, Gift: gift}
	require.NoError(t, s.db.Create(player).Error)
	return player
}

func reloadPlayer(t *testing.T, s *Service, id uint) *models.Player {
	t.Helper()
	var player models.Player
	require.NoError(t, s.db.First(&player, id).Error)
	return &player
}

func reloadGame(t *testing.T, s *Service, id uint) *models.Game {
	t.Helper()
	var g models.Game
	require.NoError(t, s.db.First(&g, id).Error)
	return &g
}

// seedRunningGame creates a calling-phase round directly, bypassing the
// countdown, with a chosen call sequence.
func seedRunningGame(t *testing.T, s *Service, stake int, seq []int, chargedCount int, sels ...*models.Selection) *models.Game {
	t.Helper()
	start := s.clock.Now()
	g := &models.Game{
		Stake:         stake,
		Active:        true,
		StartedAt:     &start,
		Sequence:      models.EncodeSequence(seq),
		StakesCharged: true,
		ChargedCount:  chargedCount,
	}
	require.NoError(t, s.db.Create(g).Error)
	for _, sel := range sels {
		sel.GameID = g.ID
		sel.Accepted = true
		require.NoError(t, s.db.Create(sel).Error)
	}
	return g
}

// frontLoadedSequence puts the given numbers first, then the rest of
// 1..75 in ascending order.
func frontLoadedSequence(first ...int) []int {
	used := make(map[int]bool, len(first))
	seq := make([]int, 0, 75)
	for _, n := range first {
		used[n] = true
		seq = append(seq, n)
	}
	for n := 1; n <= 75; n++ {
		if !used[n] {
			seq = append(seq, n)
		}
	}
	return seq
}

func countSelections(t *testing.T, s *Service, gameID uint) int {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&models.Selection{}).
		Where("game_id = ? AND accepted = ?", gameID, true).Count(&n).Error)
	return int(n)
}

func heartbeat(t *testing.T, s *Service, gameID uint, tid int64) {
	t.Helper()
	require.NoError(t, cache.SetInt64(context.Background(), s.cache, heartbeatKey(gameID, tid), s.clock.Now().UnixMilli(), heartbeatTTL))
}
