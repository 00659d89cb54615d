package services

import "errors"

// Expected business-rule failures. Handlers map these to HTTP statuses
// and user-facing messages; they are not logged as server faults.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrBanned              = errors.New("player banned")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrCardTaken           = errors.New("card already taken")
	ErrRoundStarted        = errors.New("round already started")
	ErrRoundNotCalling     = errors.New("round not calling")
	ErrNoCard              = errors.New("no card in this round")
	ErrStaleRound          = errors.New("round already finished")
)
