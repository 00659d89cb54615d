package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/habeshagames/bingo-backend/controllers"
	"github.com/habeshagames/bingo-backend/services"
)

func SetupRoutes(r *gin.Engine, svc *services.Service) {
	h := controllers.New(svc)
	api := r.Group("/api")

	// ----------------------
	// Player routes
	// ----------------------
	api.POST("/users", h.RegisterPlayer)                 // Register / refresh player
	api.GET("/users/:telegram_id", h.GetPlayer)          // Get player by Telegram ID
	api.PATCH("/users/:telegram_id/phone", h.UpdatePhone) // Set payout phone

	// ----------------------
	// Round routes
	// ----------------------
	api.GET("/state/:stake", h.GameState)   // Poll round state (advances the state machine)
	api.GET("/stakes", h.StakeStates)       // Lobby list of all stake tiers
	api.GET("/cards/:index", h.CardPreview) // Preview a card grid

	// ----------------------
	// Selection routes
	// ----------------------
	api.POST("/select", h.SelectCard)    // Reserve a card index
	api.POST("/select/cancel", h.CancelCard) // Release one slot
	api.POST("/abandon", h.AbandonRound) // Release all cards pre-start
	api.POST("/auto", h.ToggleAuto)      // Toggle auto win detection

	// ----------------------
	// Claim routes
	// ----------------------
	api.POST("/claim", h.ClaimBingo) // Manual bingo claim

	// ----------------------
	// Wallet routes
	// ----------------------
	api.POST("/wallet/adjust", h.AdjustWallet)              // Externally approved balance change
	api.GET("/transactions/:telegram_id", h.Transactions) // Ledger history

	// ----------------------
	// Admin routes
	// ----------------------
	admin := api.Group("/admin")
	admin.GET("/rooms", h.Rooms)
	admin.POST("/rooms/:stake/pause", h.PauseRound)
	admin.POST("/rooms/:stake/resume", h.ResumeRound)
	admin.POST("/rooms/:stake/restart", h.RestartRound)
}
