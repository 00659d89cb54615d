package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/habeshagames/bingo-backend/cache"
	"github.com/habeshagames/bingo-backend/config"
	"github.com/habeshagames/bingo-backend/routes"
	"github.com/habeshagames/bingo-backend/services"
)

// setupRouter initializes Gin routes and middleware.
func setupRouter(cfg *config.Config, svc *services.Service) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, svc)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket room endpoint
	r.GET("/ws/:stake", svc.HandleWebSocket)

	return r
}

func main() {
	cfg := config.Load()

	db := config.SetupDatabase(cfg.DatabaseURL)
	rdb := config.SetupRedis(cfg.RedisURL)

	svc := services.New(db, cache.NewRedis(rdb), clockwork.NewRealClock(), services.NewHub(), cfg)

	// Call scheduler runs for the life of the process.
	go svc.RunTicker(context.Background())

	router := setupRouter(cfg, svc)

	log.Printf("🚀 Bingo round engine starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("[FATAL] Failed to start server: %v", err)
	}
}
