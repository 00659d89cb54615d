package models

import "time"

type TransactionKind string

const (
	StakeTransaction    TransactionKind = "stake"
	WinTransaction      TransactionKind = "win"
	DepositTransaction  TransactionKind = "deposit"
	WithdrawTransaction TransactionKind = "withdraw"
	AdjustTransaction   TransactionKind = "adjust"
	TransferTransaction TransactionKind = "transfer"
	ConvertTransaction  TransactionKind = "convert"
)

// Valid reports whether the kind may arrive from the adjust endpoint.
// Stake and win rows are only ever written by the engine itself.
func (k TransactionKind) Valid() bool {
	switch k {
	case DepositTransaction, WithdrawTransaction, AdjustTransaction, TransferTransaction, ConvertTransaction:
		return true
	}
	return false
}

// Transaction is an append-only ledger row. Every balance mutation
// writes exactly one, in the same database transaction as the mutation.
// Rows are never updated or deleted.
type Transaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	PlayerID  uint            `gorm:"index" json:"player_id"`
	Kind      TransactionKind `gorm:"index" json:"kind"`
	Amount    float64         `json:"amount"`
	Note      string          `json:"note"`
	ActorTID  int64           `json:"actor_tid"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}
