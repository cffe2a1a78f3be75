package response

import (
	"encoding/json"
	"time"

	"github.com/partyroom/partyroom/internal/model"
)

// Health is the response for the health endpoint
type Health struct {
	Status  string `json:"status"`
	Rooms   int    `json:"rooms"`
	Clients int    `json:"clients"`
}

// Player represents a room member in API responses
type Player struct {
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Identity string `json:"email"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		Number:   p.Number,
		Name:     p.Name,
		Identity: p.Identity,
	}
}

// Room represents a room in API responses
type Room struct {
	Code      string          `json:"code"`
	Started   bool            `json:"started"`
	Players   []Player        `json:"players"`
	Setup     json.RawMessage `json:"setup,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	StartedAt *time.Time      `json:"started_at,omitempty"`
}

// RoomFromModel converts model.Room
func RoomFromModel(r *model.Room) Room {
	players := make([]Player, len(r.Players))
	for i, p := range r.Players {
		players[i] = PlayerFromModel(p)
	}
	return Room{
		Code:      string(r.Code),
		Started:   r.Started,
		Players:   players,
		Setup:     r.Setup,
		CreatedAt: r.CreatedAt,
		StartedAt: r.StartedAt,
	}
}

// RoomList is the response for listing rooms
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// Wallet represents a wallet balance
type Wallet struct {
	Identity string `json:"email"`
	Coins    int64  `json:"coins"`
}

// LedgerEntry represents one history entry
type LedgerEntry struct {
	Action    string    `json:"action"`
	Diff      int64     `json:"diff"`
	Total     int64     `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// WalletHistory is the response for the history endpoint
type WalletHistory struct {
	Identity string        `json:"email"`
	History  []LedgerEntry `json:"history"`
}

// WalletHistoryFromModel converts ledger entries
func WalletHistoryFromModel(identity string, entries []model.LedgerEntry) WalletHistory {
	history := make([]LedgerEntry, len(entries))
	for i, e := range entries {
		history[i] = LedgerEntry{
			Action:    e.Action,
			Diff:      e.Diff,
			Total:     e.Total,
			Timestamp: e.Timestamp,
		}
	}
	return WalletHistory{Identity: identity, History: history}
}
