package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/habeshagames/bingo-backend/cache"
	"github.com/habeshagames/bingo-backend/models"
)

func TestTickSettlesAutoWin(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	p := createPlayer(t, svc, 111, 0, 0)

	row := topRow(7)
	g := seedRunningGame(t, svc, 10, frontLoadedSequence(row...), 3,
		&models.Selection{PlayerID: p.ID, Slot: 0, CardIndex: 7, AutoEnabled: true})

	clock.Advance(20 * time.Second)
	svc.Tick(ctx)

	require.True(t, reloadGame(t, svc, g.ID).Finished)
	pp := reloadPlayer(t, svc, p.ID)
	require.Equal(t, 24.0, pp.Wallet, "3 charged x 10 stake x 0.8")
	require.Equal(t, 1, pp.Wins)

	snap := svc.winnerSnapshot(ctx, 10)
	require.NotNil(t, snap)
	require.Equal(t, 7, snap.Index)
	require.Empty(t, snap.Winners)

	next, err := svc.ActiveGame(ctx, 10)
	require.NoError(t, err)
	require.NotEqual(t, g.ID, next.ID)
}

func TestTickSplitsPotAcrossSimultaneousWinners(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	a := createPlayer(t, svc, 111, 0, 0)
	b := createPlayer(t, svc, 222, 0, 0)

	seq := frontLoadedSequence(append(topRow(7), topRow(8)...)...)
	g := seedRunningGame(t, svc, 10, seq, 2,
		&models.Selection{PlayerID: a.ID, Slot: 0, CardIndex: 7, AutoEnabled: true},
		&models.Selection{PlayerID: b.ID, Slot: 0, CardIndex: 8, AutoEnabled: true})

	// Far enough in for both rows to be complete on the same pass.
	clock.Advance(50 * time.Second)
	svc.Tick(ctx)

	require.True(t, reloadGame(t, svc, g.ID).Finished)
	require.Equal(t, 8.0, reloadPlayer(t, svc, a.ID).Wallet, "pot split evenly")
	require.Equal(t, 8.0, reloadPlayer(t, svc, b.ID).Wallet)

	snap := svc.winnerSnapshot(ctx, 10)
	require.NotNil(t, snap)
	require.Len(t, snap.Winners, 2)
}

func TestTickSkipsAutoDisabledCards(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	p := createPlayer(t, svc, 111, 0, 0)

	row := topRow(7)
	g := seedRunningGame(t, svc, 10, frontLoadedSequence(row...), 1,
		&models.Selection{PlayerID: p.ID, Slot: 0, CardIndex: 7})
	require.NoError(t, svc.db.Model(&models.Selection{}).
		Where("game_id = ?", g.ID).Update("auto_enabled", false).Error)

	clock.Advance(30 * time.Second)
	svc.Tick(ctx)

	require.True(t, reloadGame(t, svc, g.ID).Active, "manual-only card never auto-settles")
	require.Equal(t, 0.0, reloadPlayer(t, svc, p.ID).Wallet)
}

func TestTickIgnoresPausedRound(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	p := createPlayer(t, svc, 111, 0, 0)

	g := seedRunningGame(t, svc, 10, frontLoadedSequence(), 1,
		&models.Selection{PlayerID: p.ID, Slot: 0, CardIndex: 7})
	_, err := svc.PauseRound(ctx, 10)
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	svc.Tick(ctx)

	_, ok, err := svc.cache.Get(ctx, callKey(g.ID))
	require.NoError(t, err)
	require.False(t, ok, "no calls broadcast while paused")
}

func TestTickRestartsExhaustedRound(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	p := createPlayer(t, svc, 111, 0, 0)

	g := seedRunningGame(t, svc, 10, frontLoadedSequence(), 1,
		&models.Selection{PlayerID: p.ID, Slot: 0, CardIndex: 7})
	require.NoError(t, svc.db.Model(&models.Selection{}).
		Where("game_id = ?", g.ID).Update("auto_enabled", false).Error)

	clock.Advance(76 * 5 * time.Second)
	svc.Tick(ctx)

	require.True(t, reloadGame(t, svc, g.ID).Finished)
	next, err := svc.ActiveGame(ctx, 10)
	require.NoError(t, err)
	require.NotEqual(t, g.ID, next.ID)
	require.False(t, next.Started())
}

func TestBroadcastCallDedup(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	p := createPlayer(t, svc, 111, 0, 0)

	g := seedRunningGame(t, svc, 10, frontLoadedSequence(), 1,
		&models.Selection{PlayerID: p.ID, Slot: 0, CardIndex: 7})
	require.NoError(t, svc.db.Model(&models.Selection{}).
		Where("game_id = ?", g.ID).Update("auto_enabled", false).Error)

	clock.Advance(7 * time.Second)
	svc.Tick(ctx)
	last, ok, err := cache.GetInt64(ctx, svc.cache, callKey(g.ID))
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 2, last)

	// Same call index on the next pass leaves the marker untouched.
	svc.Tick(ctx)
	last, _, _ = cache.GetInt64(ctx, svc.cache, callKey(g.ID))
	require.EqualValues(t, 2, last)

	clock.Advance(5 * time.Second)
	svc.Tick(ctx)
	last, _, _ = cache.GetInt64(ctx, svc.cache, callKey(g.ID))
	require.EqualValues(t, 3, last)
}
