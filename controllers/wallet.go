package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/habeshagames/bingo-backend/models"
)

type adjustRequest struct {
	TelegramID  int64   `json:"telegram_id" binding:"required"`
	Kind        string  `json:"kind" binding:"required"`
	WalletDelta float64 `json:"wallet_delta"`
	GiftDelta   float64 `json:"gift_delta"`
	Note        string  `json:"note"`
	ActorTID    int64   `json:"actor_tid"`
}

// AdjustWallet applies an externally-approved balance change: deposit
// confirmations, withdrawal approvals, admin credits, transfers. The
// engine trusts the caller (the bot backend) to have validated the
// reason; it only enforces non-negative balances.
func (h *Handler) AdjustWallet(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind := models.TransactionKind(req.Kind)
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown transaction kind"})
		return
	}
	player, err := h.svc.Adjust(c.Request.Context(), req.TelegramID, kind, req.WalletDelta, req.GiftDelta, req.Note, req.ActorTID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"wallet": player.Wallet,
		"gift":   player.Gift,
	})
}

// Transactions lists a player's ledger history, newest first.
func (h *Handler) Transactions(c *gin.Context) {
	tid, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.svc.Transactions(c.Request.Context(), tid, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "transactions": rows})
}
