package protocol

import (
	"encoding/json"
	"errors"

	"github.com/partyroom/partyroom/internal/model"
)

// Outbound event names
const (
	EventLobbyCreated = "lobby_created"
	EventJoinedLobby  = "joined_lobby"
	EventError        = "error"
	EventPlayerList   = "player_list"
	EventGameStarted  = "game_started"
	EventWalletUpdate = "wallet_update"
	// EventGameAction is reused for relayed actions
)

// Client-facing error messages
const (
	MsgRoomNotFound   = "Room not found"
	MsgGameStarted    = "Game already started"
	MsgRoomFull       = "Room is full"
	MsgMalformedEvent = "Malformed event"
	MsgInternal       = "Internal error"
)

// Message is an outbound event before encoding
type Message struct {
	Event string
	Data  any
}

// Encode renders the message as an envelope frame
func (m Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: m.Event, Data: data})
}

// LobbyAssignment is the payload of lobby_created and joined_lobby
type LobbyAssignment struct {
	RoomCode      model.RoomCode `json:"roomCode"`
	YourPlayerNum int            `json:"yourPlayerNum"`
}

// GameStartedPayload is the payload of game_started
type GameStartedPayload struct {
	Players model.Roster    `json:"players"`
	Links   json.RawMessage `json:"links,omitempty"`
}

// RelayedAction is the payload of a relayed game_action
type RelayedAction struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	From model.ConnID    `json:"from"`
}

// WalletBalance is the payload of wallet_update
type WalletBalance struct {
	Coins int64 `json:"coins"`
}

// LobbyCreated builds the reply to a successful create_lobby
func LobbyCreated(code model.RoomCode, number int) Message {
	return Message{Event: EventLobbyCreated, Data: LobbyAssignment{RoomCode: code, YourPlayerNum: number}}
}

// JoinedLobby builds the reply to a successful join_lobby
func JoinedLobby(code model.RoomCode, number int) Message {
	return Message{Event: EventJoinedLobby, Data: LobbyAssignment{RoomCode: code, YourPlayerNum: number}}
}

// PlayerList builds the roster broadcast
func PlayerList(roster model.Roster) Message {
	return Message{Event: EventPlayerList, Data: roster.Clone()}
}

// GameStarted builds the start synchronisation broadcast
func GameStarted(roster model.Roster, setup json.RawMessage) Message {
	return Message{Event: EventGameStarted, Data: GameStartedPayload{Players: roster.Clone(), Links: setup}}
}

// ActionRelay builds the message forwarded to the other room members
func ActionRelay(actionType string, data json.RawMessage, from model.ConnID) Message {
	return Message{Event: EventGameAction, Data: RelayedAction{Type: actionType, Data: data, From: from}}
}

// WalletUpdate builds the balance notification
func WalletUpdate(coins int64) Message {
	return Message{Event: EventWalletUpdate, Data: WalletBalance{Coins: coins}}
}

// Error builds an error notification from a domain error
func Error(err error) Message {
	return Message{Event: EventError, Data: ErrorText(err)}
}

// ErrorText maps domain errors to the messages clients display
func ErrorText(err error) string {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return MsgRoomNotFound
	case errors.Is(err, model.ErrGameAlreadyStarted):
		return MsgGameStarted
	case errors.Is(err, model.ErrRoomFull):
		return MsgRoomFull
	case errors.Is(err, model.ErrMalformedEvent):
		return MsgMalformedEvent
	default:
		return MsgInternal
	}
}
