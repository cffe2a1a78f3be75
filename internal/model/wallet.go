package model

import "time"

// DefaultCoins is the balance a wallet starts with on first access
const DefaultCoins int64 = 100

// DefaultAction tags ledger entries submitted without a reason
const DefaultAction = "unknown"

// LedgerEntry records one balance change
type LedgerEntry struct {
	Action    string    `json:"action"`
	Diff      int64     `json:"diff"`  // new balance minus old balance
	Total     int64     `json:"total"` // balance after this entry
	Timestamp time.Time `json:"timestamp"`
}

// WalletRecord is the durable per-user coin balance and its audit history
type WalletRecord struct {
	Identity string        `json:"-"`
	Coins    int64         `json:"coins"`
	History  []LedgerEntry `json:"history"`
}

// NewWalletRecord returns a wallet holding the default balance
func NewWalletRecord(identity string) *WalletRecord {
	return &WalletRecord{
		Identity: identity,
		Coins:    DefaultCoins,
		History:  []LedgerEntry{},
	}
}

// Apply sets the balance to total and appends the matching history entry
func (w *WalletRecord) Apply(total int64, action string, at time.Time) LedgerEntry {
	if action == "" {
		action = DefaultAction
	}
	entry := LedgerEntry{
		Action:    action,
		Diff:      total - w.Coins,
		Total:     total,
		Timestamp: at.UTC(),
	}
	w.Coins = total
	w.History = append(w.History, entry)
	return entry
}

// Clone returns an independent copy of the record
func (w *WalletRecord) Clone() *WalletRecord {
	c := *w
	c.History = make([]LedgerEntry, len(w.History))
	copy(c.History, w.History)
	return &c
}
