package services

import (
	"fmt"
	"time"
)

// Cache key layout and TTLs for the ephemeral layer. None of these are
// authoritative for money.
const (
	heartbeatTTL  = 30 * time.Second
	seenTTL       = 2 * time.Minute
	callDedupTTL  = 2 * time.Minute
	winnerTTL     = 10 * time.Second
	idleMarkerTTL = 5 * time.Minute
	staleSweepGap = 3 * time.Second
)

func heartbeatKey(gameID uint, tid int64) string {
	return fmt.Sprintf("hb_%d_%d", gameID, tid)
}

func seenKey(tid int64) string {
	return fmt.Sprintf("seen_%d", tid)
}

func callKey(gameID uint) string {
	return fmt.Sprintf("call_%d", gameID)
}

func pauseKey(gameID uint) string {
	return fmt.Sprintf("pause_%d", gameID)
}

func pauseAtKey(gameID uint) string {
	return fmt.Sprintf("pause_at_%d", gameID)
}

func pauseMsKey(gameID uint) string {
	return fmt.Sprintf("pause_ms_%d", gameID)
}

func winnerKey(stake int) string {
	return fmt.Sprintf("winner_%d", stake)
}

func idleKey(gameID uint) string {
	return fmt.Sprintf("idle_game_%d", gameID)
}

func staleSweepKey(gameID uint) string {
	return fmt.Sprintf("stale_check_%d", gameID)
}
