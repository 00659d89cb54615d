package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPauseAccumulatesAcrossWindows(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	state, err := svc.pauseRound(ctx, 1)
	require.NoError(t, err)
	require.True(t, state.Paused)

	clock.Advance(10 * time.Second)
	state, err = svc.pauseState(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 10000, state.PausedMs, "open window counts immediately")

	state, err = svc.resumeRound(ctx, 1)
	require.NoError(t, err)
	require.False(t, state.Paused)
	require.EqualValues(t, 10000, state.PausedMs)

	// Running time does not accumulate.
	clock.Advance(5 * time.Second)
	paused, err := svc.pausedDuration(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, paused)

	// Second window adds on top of the first.
	_, err = svc.pauseRound(ctx, 1)
	require.NoError(t, err)
	clock.Advance(3 * time.Second)
	state, err = svc.resumeRound(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 13000, state.PausedMs)
}

func TestPauseIsIdempotent(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	first, err := svc.pauseRound(ctx, 1)
	require.NoError(t, err)
	clock.Advance(2 * time.Second)

	second, err := svc.pauseRound(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, first.PauseAt, second.PauseAt, "re-pausing keeps the original window")
}

func TestResumeWithoutPauseIsNoop(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	state, err := svc.resumeRound(ctx, 1)
	require.NoError(t, err)
	require.False(t, state.Paused)
	require.EqualValues(t, 0, state.PausedMs)
}
