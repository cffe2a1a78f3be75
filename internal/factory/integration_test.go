package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"time"

	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/protocol"
)

type IntegrationSuite struct {
	suite.Suite
	app    *TestApp
	server *httptest.Server
	ctx    context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.server = httptest.NewServer(s.app.Router())
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.app.Hub.Close()
	s.server.Close()
}

func (s *IntegrationSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *IntegrationSuite) emit(conn *websocket.Conn, event string, data any) {
	payload, err := json.Marshal(data)
	s.Require().NoError(err)
	frame, err := json.Marshal(protocol.Envelope{Event: event, Data: payload})
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, frame))
}

// expect reads frames until one with the given event arrives
func (s *IntegrationSuite) expect(conn *websocket.Conn, event string) json.RawMessage {
	deadline := time.Now().Add(3 * time.Second)
	for {
		s.Require().NoError(conn.SetReadDeadline(deadline))
		_, frame, err := conn.ReadMessage()
		s.Require().NoError(err, "waiting for %s", event)

		var env protocol.Envelope
		s.Require().NoError(json.Unmarshal(frame, &env))
		if env.Event == event {
			return env.Data
		}
	}
}

// expectNothing asserts no frame arrives within a short window
func (s *IntegrationSuite) expectNothing(conn *websocket.Conn) {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond)))
	_, frame, err := conn.ReadMessage()
	s.Error(err, "unexpected frame %s", string(frame))
}

func (s *IntegrationSuite) TestFourPlayerSession() {
	s.app.MockRandom.QueueString("ROOM01")

	host := s.dial()
	s.emit(host, protocol.EventCreateLobby, map[string]string{"email": "a@x.com", "playerName": "Alice"})

	var created protocol.LobbyAssignment
	s.Require().NoError(json.Unmarshal(s.expect(host, protocol.EventLobbyCreated), &created))
	s.Equal(model.RoomCode("ROOM01"), created.RoomCode)
	s.Equal(1, created.YourPlayerNum)
	s.expect(host, protocol.EventPlayerList)

	guests := make([]*websocket.Conn, 3)
	for i := range guests {
		guests[i] = s.dial()
		s.emit(guests[i], protocol.EventJoinLobby, map[string]string{
			"roomCode": "ROOM01",
			"email":    fmt.Sprintf("p%d@x.com", i+2),
		})
		var joined protocol.LobbyAssignment
		s.Require().NoError(json.Unmarshal(s.expect(guests[i], protocol.EventJoinedLobby), &joined))
		s.Equal(i+2, joined.YourPlayerNum)
	}

	// The host sees the full roster eventually
	for {
		var roster []model.Player
		s.Require().NoError(json.Unmarshal(s.expect(host, protocol.EventPlayerList), &roster))
		if len(roster) == model.MaxPlayers {
			s.Equal("Player 4", roster[3].Name)
			break
		}
	}

	late := s.dial()
	s.emit(late, protocol.EventJoinLobby, map[string]string{"roomCode": "ROOM01"})
	var msg string
	s.Require().NoError(json.Unmarshal(s.expect(late, protocol.EventError), &msg))
	s.Equal(protocol.MsgRoomFull, msg)

	s.emit(host, protocol.EventStartGame, map[string]any{"roomCode": "ROOM01", "links": map[string]int{"3": 22}})
	for _, c := range append([]*websocket.Conn{host}, guests...) {
		var started protocol.GameStartedPayload
		s.Require().NoError(json.Unmarshal(s.expect(c, protocol.EventGameStarted), &started))
		s.Len(started.Players, model.MaxPlayers)
		s.JSONEq(`{"3":22}`, string(started.Links))
	}

	s.emit(guests[0], protocol.EventGameAction, map[string]any{
		"roomCode": "ROOM01",
		"type":     "move",
		"data":     map[string]int{"x": 1},
	})
	for _, c := range []*websocket.Conn{host, guests[1], guests[2]} {
		var relayed protocol.RelayedAction
		s.Require().NoError(json.Unmarshal(s.expect(c, protocol.EventGameAction), &relayed))
		s.Equal("move", relayed.Type)
		s.JSONEq(`{"x":1}`, string(relayed.Data))
	}
	s.expectNothing(guests[0])
}

func (s *IntegrationSuite) TestWalletOverSocket() {
	conn := s.dial()

	s.emit(conn, protocol.EventGetWallet, "a@x.com")
	var balance protocol.WalletBalance
	s.Require().NoError(json.Unmarshal(s.expect(conn, protocol.EventWalletUpdate), &balance))
	s.Equal(int64(100), balance.Coins)

	s.emit(conn, protocol.EventUpdateWallet, map[string]any{"email": "a@x.com", "amount": 150, "reason": "level_complete"})
	s.Require().NoError(json.Unmarshal(s.expect(conn, protocol.EventWalletUpdate), &balance))
	s.Equal(int64(150), balance.Coins)

	user, err := s.app.MemoryStore.GetUser(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Require().Len(user.History, 1)
	s.Equal(model.LedgerEntry{
		Action:    "level_complete",
		Diff:      50,
		Total:     150,
		Timestamp: s.app.MockClock.Now(),
	}, user.History[0])

	events := s.app.MockPublisher.Events()
	s.Require().Len(events, 2)
	s.Equal(model.EventBalanceChanged, events[1].Type)
}

func (s *IntegrationSuite) TestDisconnectBeforeStartUpdatesRoster() {
	s.app.MockRandom.QueueString("ROOM02")

	host := s.dial()
	s.emit(host, protocol.EventCreateLobby, map[string]string{"email": "a@x.com"})
	s.expect(host, protocol.EventLobbyCreated)

	guest := s.dial()
	s.emit(guest, protocol.EventJoinLobby, map[string]string{"roomCode": "ROOM02"})
	s.expect(guest, protocol.EventJoinedLobby)

	s.Require().NoError(guest.Close())

	for {
		var roster []model.Player
		s.Require().NoError(json.Unmarshal(s.expect(host, protocol.EventPlayerList), &roster))
		if len(roster) == 1 {
			s.Equal(1, roster[0].Number)
			break
		}
	}
}

func (s *IntegrationSuite) TestMalformedFrameGetsError() {
	conn := s.dial()
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"event":`)))

	var msg string
	s.Require().NoError(json.Unmarshal(s.expect(conn, protocol.EventError), &msg))
	s.Equal(protocol.MsgMalformedEvent, msg)
}
