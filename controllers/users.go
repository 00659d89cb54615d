package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required"`
	Username   string `json:"username"`
	Phone      string `json:"phone"`
}

// RegisterPlayer creates or refreshes the player row for a telegram id.
// Registration is idempotent; the mini-app calls it on every launch.
func (h *Handler) RegisterPlayer(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	player, err := h.svc.Register(c.Request.Context(), req.TelegramID, req.Username, req.Phone)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

// GetPlayer fetches a player by telegram id.
func (h *Handler) GetPlayer(c *gin.Context) {
	tid, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}
	player, err := h.svc.GetPlayer(c.Request.Context(), tid)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

// UpdatePhone stores a player's phone number for payout contact.
func (h *Handler) UpdatePhone(c *gin.Context) {
	tid, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.UpdatePhone(c.Request.Context(), tid, req.Phone); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"telegram_id": tid, "phone": req.Phone})
}
