package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GameState is the main poll endpoint. Reading it advances the round
// state machine, so clients hit it on an interval.
func (h *Handler) GameState(c *gin.Context) {
	stake, err := strconv.Atoi(c.Param("stake"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stake"})
		return
	}
	// telegram_id is optional: anonymous polls still see the board.
	tid, _ := strconv.ParseInt(c.Query("telegram_id"), 10, 64)

	state, err := h.svc.StateSnapshot(c.Request.Context(), stake, tid)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// StakeStates lists the lightweight status of every stake tier.
func (h *Handler) StakeStates(c *gin.Context) {
	states := make([]any, 0)
	for _, stake := range h.svc.Stakes() {
		state, err := h.svc.StakeSnapshot(c.Request.Context(), stake)
		if err != nil {
			respondErr(c, err)
			return
		}
		states = append(states, state)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stakes": states})
}

// CardPreview derives the card grid for an index without reserving it.
func (h *Handler) CardPreview(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card index"})
		return
	}
	card, err := h.svc.Preview(index)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "index": index, "card": card})
}
