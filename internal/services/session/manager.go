package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/protocol"
	"github.com/partyroom/partyroom/internal/services/room"
	"github.com/partyroom/partyroom/internal/services/wallet"
	"github.com/partyroom/partyroom/internal/transport"
)

// Manager routes client events to the room registry and wallet ledger and
// sends the resulting replies
type Manager struct {
	registry  *room.Registry
	ledger    *wallet.Ledger
	transport transport.Transport
	logger    *slog.Logger
}

// NewManager creates a new session Manager
func NewManager(registry *room.Registry, ledger *wallet.Ledger, transport transport.Transport, logger *slog.Logger) *Manager {
	return &Manager{
		registry:  registry,
		ledger:    ledger,
		transport: transport,
		logger:    logger.With(slog.String("component", "session")),
	}
}

// HandleRaw decodes one frame and handles it. Undecodable frames are answered
// with a malformed-event error.
func (m *Manager) HandleRaw(ctx context.Context, conn model.ConnID, raw []byte) {
	event, err := protocol.Decode(raw)
	if err != nil {
		m.logger.Warn("malformed event",
			slog.String("conn", string(conn)),
			slog.Any("error", err),
		)
		m.transport.Send(conn, protocol.Error(err))
		return
	}
	m.Handle(ctx, conn, event)
}

// Handle dispatches one decoded event from conn
func (m *Manager) Handle(ctx context.Context, conn model.ConnID, event protocol.Inbound) {
	switch e := event.(type) {
	case protocol.CreateLobby:
		m.createLobby(conn, e)
	case protocol.JoinLobby:
		m.joinLobby(conn, e)
	case protocol.StartGame:
		m.registry.Start(e.RoomCode, e.Links)
	case protocol.GameAction:
		m.RelayAction(e.RoomCode, conn, e.Type, e.Data)
	case protocol.GetWallet:
		m.getWallet(ctx, conn, e)
	case protocol.UpdateWallet:
		m.updateWallet(ctx, conn, e)
	default:
		m.logger.Warn("unhandled event", slog.String("event", event.EventName()))
	}
}

// Disconnect releases everything bound to a closed connection
func (m *Manager) Disconnect(_ context.Context, conn model.ConnID) {
	code, removed := m.registry.RemovePlayer(conn)
	m.logger.Info("client disconnected",
		slog.String("conn", string(conn)),
		slog.String("room", string(code)),
		slog.Bool("left_room", removed),
	)
}

// RelayAction forwards an action to every other member of the room.
// The sender never receives its own action and unknown rooms are ignored.
func (m *Manager) RelayAction(code model.RoomCode, sender model.ConnID, actionType string, data json.RawMessage) {
	roster, ok := m.registry.Members(code)
	if !ok {
		m.logger.Debug("action for unknown room dropped",
			slog.String("room", string(code)),
			slog.String("conn", string(sender)),
		)
		return
	}

	from := string(sender)
	if p := roster.Find(sender); p != nil {
		from = p.Label()
	}
	m.logger.Info("game action",
		slog.String("room", string(code)),
		slog.String("player", from),
		slog.String("type", actionType),
	)

	m.transport.Broadcast(roster.Connections(), protocol.ActionRelay(actionType, data, sender), sender)
}

func (m *Manager) createLobby(conn model.ConnID, e protocol.CreateLobby) {
	if _, err := m.registry.Create(conn, e.Identity, e.Name); err != nil {
		m.transport.Send(conn, protocol.Error(err))
	}
}

func (m *Manager) joinLobby(conn model.ConnID, e protocol.JoinLobby) {
	if _, err := m.registry.Join(e.RoomCode, conn, e.Identity, e.Name); err != nil {
		m.logger.Info("join rejected",
			slog.String("room", string(e.RoomCode)),
			slog.String("conn", string(conn)),
			slog.String("reason", protocol.ErrorText(err)),
		)
		m.transport.Send(conn, protocol.Error(err))
	}
}

func (m *Manager) getWallet(ctx context.Context, conn model.ConnID, e protocol.GetWallet) {
	if e.Identity == "" {
		return
	}
	user, err := m.ledger.GetOrCreate(ctx, e.Identity)
	if err != nil {
		m.transport.Send(conn, protocol.Error(err))
		return
	}
	m.transport.Send(conn, protocol.WalletUpdate(user.Coins))
}

func (m *Manager) updateWallet(ctx context.Context, conn model.ConnID, e protocol.UpdateWallet) {
	if e.Identity == "" {
		return
	}
	balance, err := m.ledger.ApplyAbsoluteUpdate(ctx, e.Identity, e.Amount, e.Reason)
	if err != nil {
		m.transport.Send(conn, protocol.Error(err))
		return
	}
	m.transport.Send(conn, protocol.WalletUpdate(balance))
}
