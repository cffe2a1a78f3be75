package model

import "fmt"

// ConnID identifies a single client connection for the lifetime of its socket
type ConnID string

// Player is a room member bound to one connection
type Player struct {
	ConnID   ConnID `json:"id"`
	Identity string `json:"email"` // not validated, used as wallet key
	Name     string `json:"name"`
	Number   int    `json:"number"` // 1-based, fixed at join time
	Ready    bool   `json:"ready"`
}

// DefaultPlayerName returns the display name used when a client sends none
func DefaultPlayerName(number int) string {
	return fmt.Sprintf("Player %d", number)
}

// Label returns the "identity (Pn)" form used to attribute activity
func (p Player) Label() string {
	return fmt.Sprintf("%s (P%d)", p.Identity, p.Number)
}
