package model

import "time"

// EventType identifies the type of a domain event
type EventType string

const (
	// Wallet events
	EventWalletCreated  EventType = "wallet_created"
	EventBalanceChanged EventType = "balance_changed"
)

// Event is the base structure for domain events published outside the process
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Identity  string    `json:"identity"`
	Payload   any       `json:"payload"`
}

// WalletCreatedPayload contains data for wallet created events
type WalletCreatedPayload struct {
	Coins int64 `json:"coins"`
}

// BalanceChangedPayload contains data for balance changed events
type BalanceChangedPayload struct {
	Action     string `json:"action"`
	OldBalance int64  `json:"old_balance"`
	NewBalance int64  `json:"new_balance"`
	Diff       int64  `json:"diff"`
}
