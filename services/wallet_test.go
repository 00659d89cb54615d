package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/habeshagames/bingo-backend/models"
)

func TestAdjustDepositWritesLedger(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	player, err := svc.Adjust(ctx, 111, models.DepositTransaction, 50, 0, "deposit #42", 999)
	require.NoError(t, err)
	require.Equal(t, 50.0, player.Wallet)

	rows, err := svc.Transactions(ctx, 111, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, models.DepositTransaction, rows[0].Kind)
	require.Equal(t, 50.0, rows[0].Amount)
	require.EqualValues(t, 999, rows[0].ActorTID)
}

func TestAdjustRejectsOverdraw(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := createPlayer(t, svc, 111, 10, 0)

	_, err := svc.Adjust(ctx, 111, models.WithdrawTransaction, -20, 0, "withdraw", 0)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.Equal(t, 10.0, reloadPlayer(t, svc, p.ID).Wallet, "balance untouched on rejection")

	rows, err := svc.Transactions(ctx, 111, 10)
	require.NoError(t, err)
	require.Empty(t, rows, "no ledger row for a rejected change")
}

func TestAdjustGiftConversion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	createPlayer(t, svc, 111, 0, 30)

	player, err := svc.Adjust(ctx, 111, models.ConvertTransaction, 30, -30, "gift to wallet", 0)
	require.NoError(t, err)
	require.Equal(t, 30.0, player.Wallet)
	require.Equal(t, 0.0, player.Gift)
}

func TestTransactionsNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Adjust(ctx, 111, models.DepositTransaction, 10, 0, "first", 0)
	require.NoError(t, err)
	_, err = svc.Adjust(ctx, 111, models.DepositTransaction, 20, 0, "second", 0)
	require.NoError(t, err)

	rows, err := svc.Transactions(ctx, 111, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "second", rows[0].Note)
}

func TestRegisterPreservesExistingFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	player, err := svc.Register(ctx, 111, "alemu", "+2519")
	require.NoError(t, err)
	require.Equal(t, "alemu", player.Username)

	// A bare relaunch must not blank what we know.
	player, err = svc.Register(ctx, 111, "", "")
	require.NoError(t, err)
	require.Equal(t, "alemu", player.Username)
	require.Equal(t, "+2519", player.Phone)
}

func TestGetPlayerNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetPlayer(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}
