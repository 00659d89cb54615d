package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type claimRequest struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
	Stake      int   `json:"stake" binding:"required"`
	Slot       int   `json:"slot"`
	Picks      []int `json:"picks"`
}

// ClaimBingo adjudicates a manual bingo claim over HTTP. The websocket
// claim_bingo action lands in the same engine path.
func (h *Handler) ClaimBingo(c *gin.Context) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.svc.Claim(c.Request.Context(), req.TelegramID, req.Stake, req.Slot, req.Picks)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
