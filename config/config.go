package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// Stake tiers, each running its own rounds.
	Stakes []int

	// Round timing.
	Countdown        time.Duration // selection lock-in countdown
	HeartbeatTimeout time.Duration // pre-countdown idle selection release
	IdleTimeout      time.Duration // zero-presence abandonment of a calling round
	TickInterval     time.Duration // call scheduler cadence

	// Favored-player sequence bias. Disabled unless both are set.
	FavoredTelegramID int64
	FavoredWinRate    float64

	AllowedOrigins []string
}

// Load reads .env (if present) and the environment. DATABASE_URL is
// required; everything else has defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	cfg := &Config{
		Port:             envOr("PORT", "4000"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         envOr("REDIS_URL", "redis://localhost:6379/0"),
		Stakes:           parseStakes(envOr("STAKES", "10,20,50")),
		Countdown:        30 * time.Second,
		HeartbeatTimeout: 15 * time.Second,
		IdleTimeout:      20 * time.Second,
		TickInterval:     time.Second,
		AllowedOrigins:   strings.Split(envOr("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("[FATAL] DATABASE_URL is required in .env or environment")
	}

	if raw := os.Getenv("FAVORED_TID"); raw != "" {
		if tid, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.FavoredTelegramID = tid
		}
	}
	if raw := os.Getenv("FAVORED_WIN_RATE"); raw != "" {
		if rate, err := strconv.ParseFloat(raw, 64); err == nil && rate > 0 && rate <= 1 {
			cfg.FavoredWinRate = rate
		}
	}

	return cfg
}

// ValidStake reports whether a stake is one of the configured tiers.
func (c *Config) ValidStake(stake int) bool {
	for _, s := range c.Stakes {
		if s == stake {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseStakes(raw string) []int {
	var stakes []int
	for _, part := range strings.Split(raw, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && n > 0 {
			stakes = append(stakes, n)
		}
	}
	if len(stakes) == 0 {
		stakes = []int{10, 20, 50}
	}
	return stakes
}
