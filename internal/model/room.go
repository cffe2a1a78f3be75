package model

import (
	"encoding/json"
	"time"
)

// RoomCode is the short human-shareable identifier clients use to join a room
type RoomCode string

// MaxPlayers is the room capacity
const MaxPlayers = 4

// Roster is the ordered list of players in a room, in join order
type Roster []Player

// Full reports whether the roster has reached capacity
func (r Roster) Full() bool {
	return len(r) >= MaxPlayers
}

// NextNumber returns the number assigned to the next arrival.
// Numbers follow the current length, so a departure followed by a join can
// produce a duplicate number within a room.
func (r Roster) NextNumber() int {
	return len(r) + 1
}

// Find returns the player bound to the given connection, or nil
func (r Roster) Find(conn ConnID) *Player {
	for i := range r {
		if r[i].ConnID == conn {
			return &r[i]
		}
	}
	return nil
}

// IndexOf returns the roster position of the connection, or -1
func (r Roster) IndexOf(conn ConnID) int {
	for i := range r {
		if r[i].ConnID == conn {
			return i
		}
	}
	return -1
}

// Without returns a copy of the roster with position i removed
func (r Roster) Without(i int) Roster {
	out := make(Roster, 0, len(r)-1)
	out = append(out, r[:i]...)
	return append(out, r[i+1:]...)
}

// Connections returns the connection of every player, in roster order
func (r Roster) Connections() []ConnID {
	conns := make([]ConnID, len(r))
	for i, p := range r {
		conns[i] = p.ConnID
	}
	return conns
}

// Clone returns an independent copy of the roster
func (r Roster) Clone() Roster {
	if r == nil {
		return Roster{}
	}
	out := make(Roster, len(r))
	copy(out, r)
	return out
}

// Room is one lobby/game session
type Room struct {
	Code    RoomCode
	Players Roster
	Started bool
	// Setup is the opaque game-setup payload (e.g. board links) frozen when
	// the game first starts
	Setup     json.RawMessage
	CreatedAt time.Time
	StartedAt *time.Time
}

// Clone returns a snapshot of the room safe to hand outside its lock
func (r *Room) Clone() *Room {
	c := *r
	c.Players = r.Players.Clone()
	if r.Setup != nil {
		c.Setup = append(json.RawMessage(nil), r.Setup...)
	}
	if r.StartedAt != nil {
		t := *r.StartedAt
		c.StartedAt = &t
	}
	return &c
}
