package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type selectRequest struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
	Stake      int   `json:"stake" binding:"required"`
	Slot       int   `json:"slot"`
	Index      int   `json:"index" binding:"required"`
}

// SelectCard reserves a card index for one of the player's two slots.
func (h *Handler) SelectCard(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.svc.Accept(c.Request.Context(), req.TelegramID, req.Stake, req.Slot, req.Index)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type slotRequest struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
	Stake      int   `json:"stake" binding:"required"`
	Slot       int   `json:"slot"`
}

// CancelCard releases one reserved slot before the round starts.
func (h *Handler) CancelCard(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.svc.Cancel(c.Request.Context(), req.TelegramID, req.Stake, req.Slot)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type abandonRequest struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
	Stake      int   `json:"stake" binding:"required"`
}

// AbandonRound releases all the player's cards in the open round.
func (h *Handler) AbandonRound(c *gin.Context) {
	var req abandonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.svc.Abandon(c.Request.Context(), req.TelegramID, req.Stake)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type autoRequest struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
	Stake      int   `json:"stake" binding:"required"`
	Slot       int   `json:"slot"`
	Enabled    *bool `json:"enabled" binding:"required"`
}

// ToggleAuto flips automatic win detection for one card.
func (h *Handler) ToggleAuto(c *gin.Context) {
	var req autoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.ToggleAuto(c.Request.Context(), req.TelegramID, req.Stake, req.Slot, *req.Enabled); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "slot": req.Slot, "enabled": *req.Enabled})
}
