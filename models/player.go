package models

import (
	"fmt"
	"time"
)

// Player is created lazily on first contact and never deleted. Gift is
// the promotional balance and is always spent before Wallet.
type Player struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TelegramID int64     `gorm:"uniqueIndex" json:"telegram_id"`
	Username   string    `json:"username"`
	Phone      string    `json:"phone"`
	Wallet     float64   `json:"wallet"`
	Gift       float64   `json:"gift"`
	Wins       int       `json:"wins"`
	Banned     bool      `json:"banned"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Balance is the total a stake can be charged against.
func (p *Player) Balance() float64 {
	return p.Wallet + p.Gift
}

// DisplayName mirrors what the bot shows: username, then phone, then id.
func (p *Player) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}
	if p.Phone != "" {
		return p.Phone
	}
	return fmt.Sprintf("Player %d", p.TelegramID)
}
