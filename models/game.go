package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Game is one bingo round for a stake tier. At most one game per stake
// is active at a time, enforced by the latest-active query pattern.
// Sequence is assigned exactly once, when the round starts calling.
type Game struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Stake              int            `gorm:"index" json:"stake"`
	Active             bool           `gorm:"index" json:"active"`
	Finished           bool           `json:"finished"`
	CountdownStartedAt *time.Time     `json:"countdown_started_at"`
	StartedAt          *time.Time     `json:"started_at"`
	Sequence           datatypes.JSON `json:"-"`
	StakesCharged      bool           `json:"stakes_charged"`
	ChargedCount       int            `json:"charged_count"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Started reports whether the round has entered the calling phase.
func (g *Game) Started() bool {
	return g.StartedAt != nil
}

// SequenceNumbers decodes the persisted call order. Empty before start.
func (g *Game) SequenceNumbers() []int {
	if len(g.Sequence) == 0 {
		return nil
	}
	var seq []int
	if err := json.Unmarshal(g.Sequence, &seq); err != nil {
		return nil
	}
	return seq
}

// EncodeSequence stores the call order as a JSON column.
func EncodeSequence(seq []int) datatypes.JSON {
	raw, _ := json.Marshal(seq)
	return datatypes.JSON(raw)
}
