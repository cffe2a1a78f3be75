package protocol

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyroom/partyroom/internal/model"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Inbound
	}{
		{
			name:     "create lobby",
			raw:      `{"event":"create_lobby","data":{"email":"a@x.com","playerName":"Ann"}}`,
			expected: CreateLobby{Identity: "a@x.com", Name: "Ann"},
		},
		{
			name:     "create lobby without payload",
			raw:      `{"event":"create_lobby"}`,
			expected: CreateLobby{},
		},
		{
			name:     "join lobby",
			raw:      `{"event":"join_lobby","data":{"roomCode":"ABC123","email":"b@x.com"}}`,
			expected: JoinLobby{RoomCode: "ABC123", Identity: "b@x.com"},
		},
		{
			name:     "start game with links",
			raw:      `{"event":"start_game","data":{"roomCode":"ABC123","links":{"3":22}}}`,
			expected: StartGame{RoomCode: "ABC123", Links: json.RawMessage(`{"3":22}`)},
		},
		{
			name:     "game action",
			raw:      `{"event":"game_action","data":{"roomCode":"ABC123","type":"roll","data":{"value":4}}}`,
			expected: GameAction{RoomCode: "ABC123", Type: "roll", Data: json.RawMessage(`{"value":4}`)},
		},
		{
			name:     "get wallet bare string",
			raw:      `{"event":"get_wallet","data":"a@x.com"}`,
			expected: GetWallet{Identity: "a@x.com"},
		},
		{
			name:     "get wallet object",
			raw:      `{"event":"get_wallet","data":{"email":"a@x.com"}}`,
			expected: GetWallet{Identity: "a@x.com"},
		},
		{
			name:     "get wallet without identity",
			raw:      `{"event":"get_wallet"}`,
			expected: GetWallet{},
		},
		{
			name:     "update wallet",
			raw:      `{"event":"update_wallet","data":{"email":"a@x.com","amount":150,"reason":"level_complete"}}`,
			expected: UpdateWallet{Identity: "a@x.com", Amount: 150, Reason: "level_complete"},
		},
		{
			name:     "update wallet without identity",
			raw:      `{"event":"update_wallet","data":{}}`,
			expected: UpdateWallet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `hello`},
		{"missing event", `{"data":{}}`},
		{"unknown event", `{"event":"teleport","data":{}}`},
		{"join without code", `{"event":"join_lobby","data":{"email":"b@x.com"}}`},
		{"join without payload", `{"event":"join_lobby"}`},
		{"start without code", `{"event":"start_game","data":{}}`},
		{"action without code", `{"event":"game_action","data":{"type":"roll"}}`},
		{"action wrong shape", `{"event":"game_action","data":[1,2]}`},
		{"update without amount", `{"event":"update_wallet","data":{"email":"a@x.com"}}`},
		{"update non integer amount", `{"event":"update_wallet","data":{"email":"a@x.com","amount":"lots"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			assert.ErrorIs(t, err, model.ErrMalformedEvent)
		})
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		expected string
	}{
		{
			name:     "lobby created",
			msg:      LobbyCreated("ABC123", 1),
			expected: `{"event":"lobby_created","data":{"roomCode":"ABC123","yourPlayerNum":1}}`,
		},
		{
			name:     "error",
			msg:      Error(model.ErrRoomFull),
			expected: `{"event":"error","data":"Room is full"}`,
		},
		{
			name:     "relay",
			msg:      ActionRelay("roll", json.RawMessage(`{"value":4}`), "conn-b"),
			expected: `{"event":"game_action","data":{"type":"roll","data":{"value":4},"from":"conn-b"}}`,
		},
		{
			name:     "wallet",
			msg:      WalletUpdate(150),
			expected: `{"event":"wallet_update","data":{"coins":150}}`,
		},
		{
			name:     "game started without links",
			msg:      GameStarted(model.Roster{{ConnID: "a", Identity: "a@x.com", Name: "Ann", Number: 1}}, nil),
			expected: `{"event":"game_started","data":{"players":[{"id":"a","email":"a@x.com","name":"Ann","number":1,"ready":false}]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.msg.Encode()
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(raw))
		})
	}
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, MsgRoomNotFound, ErrorText(model.ErrRoomNotFound))
	assert.Equal(t, MsgGameStarted, ErrorText(fmt.Errorf("join: %w", model.ErrGameAlreadyStarted)))
	assert.Equal(t, MsgRoomFull, ErrorText(model.ErrRoomFull))
	assert.Equal(t, MsgMalformedEvent, ErrorText(model.ErrMalformedEvent))
	assert.Equal(t, MsgInternal, ErrorText(assert.AnError))
}
