package models

import "time"

// Selection reserves one card index for a player in a round. A player
// may hold up to two cards via Slot 0 and 1. The (game, card index)
// pair is unique: the first accept wins, later ones get a conflict.
type Selection struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GameID      uint      `gorm:"index;uniqueIndex:idx_game_card;uniqueIndex:idx_game_player_slot" json:"game_id"`
	PlayerID    uint      `gorm:"index;uniqueIndex:idx_game_player_slot" json:"player_id"`
	Slot        int       `gorm:"uniqueIndex:idx_game_player_slot" json:"slot"`
	CardIndex   int       `gorm:"uniqueIndex:idx_game_card" json:"index"`
	Accepted    bool      `json:"accepted"`
	AutoEnabled bool      `gorm:"default:true" json:"auto_enabled"`
	CreatedAt   time.Time `json:"created_at"`

	Game   Game   `json:"-"`
	Player Player `json:"-"`
}
