package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/habeshagames/bingo-backend/services"
	"github.com/habeshagames/bingo-backend/utils/logger"
)

// Handler wires HTTP requests into the round engine.
type Handler struct {
	svc *services.Service
}

func New(svc *services.Service) *Handler {
	return &Handler{svc: svc}
}

// respondErr maps business-rule errors to HTTP statuses. Anything not
// recognized is a server fault and gets logged.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": "account banned"})
	case errors.Is(err, services.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
	case errors.Is(err, services.ErrCardTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "card already taken"})
	case errors.Is(err, services.ErrRoundStarted):
		c.JSON(http.StatusConflict, gin.H{"error": "round already started"})
	case errors.Is(err, services.ErrRoundNotCalling):
		c.JSON(http.StatusConflict, gin.H{"error": "round not calling"})
	case errors.Is(err, services.ErrNoCard):
		c.JSON(http.StatusNotFound, gin.H{"error": "no card in this round"})
	case errors.Is(err, services.ErrStaleRound):
		c.JSON(http.StatusConflict, gin.H{"error": "round already finished"})
	default:
		logger.Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
