package main

import (
	"log"

	"github.com/habeshagames/bingo-backend/config"
)

func main() {
	cfg := config.Load()
	_ = config.SetupDatabase(cfg.DatabaseURL) // connects + migrates
	log.Println("✅ Database migration completed successfully")
}
