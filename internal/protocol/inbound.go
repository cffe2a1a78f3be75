package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/partyroom/partyroom/internal/model"
)

// Inbound event names
const (
	EventCreateLobby  = "create_lobby"
	EventJoinLobby    = "join_lobby"
	EventStartGame    = "start_game"
	EventGameAction   = "game_action"
	EventGetWallet    = "get_wallet"
	EventUpdateWallet = "update_wallet"
)

// Envelope is the wire frame for every message in both directions
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound is one decoded client event. The concrete types below are the
// only implementations.
type Inbound interface {
	EventName() string
}

// CreateLobby opens a new room with the sender as player 1
type CreateLobby struct {
	Identity string `json:"email"`
	Name     string `json:"playerName"`
}

// JoinLobby adds the sender to an existing room
type JoinLobby struct {
	RoomCode model.RoomCode `json:"roomCode"`
	Identity string         `json:"email"`
	Name     string         `json:"playerName"`
}

// StartGame flips a room to started and broadcasts the setup payload
type StartGame struct {
	RoomCode model.RoomCode  `json:"roomCode"`
	Links    json.RawMessage `json:"links,omitempty"`
}

// GameAction is an opaque action relayed to the other room members
type GameAction struct {
	RoomCode model.RoomCode  `json:"roomCode"`
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// GetWallet requests the sender's wallet balance
type GetWallet struct {
	Identity string `json:"email"`
}

// UpdateWallet submits a new absolute balance for an identity
type UpdateWallet struct {
	Identity string `json:"email"`
	Amount   int64  `json:"amount"`
	Reason   string `json:"reason"`
}

func (CreateLobby) EventName() string  { return EventCreateLobby }
func (JoinLobby) EventName() string    { return EventJoinLobby }
func (StartGame) EventName() string    { return EventStartGame }
func (GameAction) EventName() string   { return EventGameAction }
func (GetWallet) EventName() string    { return EventGetWallet }
func (UpdateWallet) EventName() string { return EventUpdateWallet }

// Decode parses a raw frame into one of the inbound event types.
// Every failure wraps model.ErrMalformedEvent.
func Decode(raw []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, malformed("invalid envelope: %v", err)
	}

	switch env.Event {
	case EventCreateLobby:
		var e CreateLobby
		if err := decodeData(env.Data, &e, true); err != nil {
			return nil, err
		}
		return e, nil

	case EventJoinLobby:
		var e JoinLobby
		if err := decodeData(env.Data, &e, false); err != nil {
			return nil, err
		}
		if e.RoomCode == "" {
			return nil, malformed("%s: roomCode is required", env.Event)
		}
		return e, nil

	case EventStartGame:
		var e StartGame
		if err := decodeData(env.Data, &e, false); err != nil {
			return nil, err
		}
		if e.RoomCode == "" {
			return nil, malformed("%s: roomCode is required", env.Event)
		}
		return e, nil

	case EventGameAction:
		var e GameAction
		if err := decodeData(env.Data, &e, false); err != nil {
			return nil, err
		}
		if e.RoomCode == "" {
			return nil, malformed("%s: roomCode is required", env.Event)
		}
		return e, nil

	case EventGetWallet:
		// Clients send either the bare identity string or {"email": ...}
		var identity string
		if err := json.Unmarshal(env.Data, &identity); err == nil {
			return GetWallet{Identity: identity}, nil
		}
		var e GetWallet
		if err := decodeData(env.Data, &e, true); err != nil {
			return nil, err
		}
		return e, nil

	case EventUpdateWallet:
		var body struct {
			Identity string `json:"email"`
			Amount   *int64 `json:"amount"`
			Reason   string `json:"reason"`
		}
		if err := decodeData(env.Data, &body, true); err != nil {
			return nil, err
		}
		if body.Amount == nil {
			if body.Identity == "" {
				// Missing identity is ignored downstream rather than rejected
				return UpdateWallet{Reason: body.Reason}, nil
			}
			return nil, malformed("%s: amount is required", env.Event)
		}
		return UpdateWallet{Identity: body.Identity, Amount: *body.Amount, Reason: body.Reason}, nil

	case "":
		return nil, malformed("missing event name")
	default:
		return nil, malformed("unknown event %q", env.Event)
	}
}

// decodeData unmarshals a payload object. Absent payloads are accepted only
// when allowEmpty is set.
func decodeData(data json.RawMessage, v any, allowEmpty bool) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if allowEmpty {
			return nil
		}
		return malformed("missing payload")
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return malformed("invalid payload: %v", err)
	}
	return nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrMalformedEvent, fmt.Sprintf(format, args...))
}
