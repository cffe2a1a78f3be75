package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/partyroom/partyroom/internal/model"
)

// Client is one websocket connection
type Client struct {
	id          model.ConnID
	remote      string
	conn        *websocket.Conn
	send        chan []byte
	connectedAt time.Time
}

func newClient(id model.ConnID, conn *websocket.Conn, bufferSize int) *Client {
	return &Client{
		id:          id,
		remote:      conn.RemoteAddr().String(),
		conn:        conn,
		send:        make(chan []byte, bufferSize),
		connectedAt: time.Now(),
	}
}

// ID returns the connection id assigned at upgrade
func (c *Client) ID() model.ConnID {
	return c.id
}

// readPump feeds inbound frames to the handler until the socket fails
func (c *Client) readPump(ctx context.Context, handler SessionHandler, cfg Config, logger *slog.Logger) {
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Info("ws read failed", slog.String("conn", string(c.id)), slog.Any("error", err))
			}
			return
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		handler.HandleRaw(ctx, c.id, data)
	}
}

// writePump drains the send buffer and keeps the connection alive with pings
func (c *Client) writePump(cfg Config) {
	ticker := time.NewTicker(cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
