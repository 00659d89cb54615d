package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Rooms is the operator dashboard view of every stake tier.
func (h *Handler) Rooms(c *gin.Context) {
	rooms, err := h.svc.Rooms(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "rooms": rooms})
}

// PauseRound freezes the call clock for a stake's running round.
func (h *Handler) PauseRound(c *gin.Context) {
	stake, err := strconv.Atoi(c.Param("stake"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stake"})
		return
	}
	state, err := h.svc.PauseRound(c.Request.Context(), stake)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "paused": state.Paused, "paused_ms": state.PausedMs})
}

// ResumeRound unfreezes the call clock.
func (h *Handler) ResumeRound(c *gin.Context) {
	stake, err := strconv.Atoi(c.Param("stake"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stake"})
		return
	}
	state, err := h.svc.ResumeRound(c.Request.Context(), stake)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "paused": state.Paused, "paused_ms": state.PausedMs})
}

// RestartRound force-ends the current round and opens a fresh one.
func (h *Handler) RestartRound(c *gin.Context) {
	stake, err := strconv.Atoi(c.Param("stake"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stake"})
		return
	}
	gameID, err := h.svc.RestartRound(c.Request.Context(), stake)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "restarted_game_id": gameID})
}
