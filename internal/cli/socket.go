package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// envelope is the client protocol frame
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// streamSocket sends one event over a fresh websocket and prints every frame
// received until count frames have arrived, the server closes, or the user
// interrupts
func streamSocket(cmd *cobra.Command, event string, data any, count int) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	url := client.WebSocketURL()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	// Closing the socket unblocks the read loop on interrupt
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	frame, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}

	out := NewOutput(cfg.Output, cmd.OutOrStdout())
	if cfg.Verbose {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Connected to %s\n", url)
	}

	received := 0
	for count == 0 || received < count {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if cfg.Verbose {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Disconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("failed to parse frame: %w", err)
		}
		out.PrintFrame(Frame{Time: time.Now(), Event: env.Event, Data: env.Data})
		received++
	}

	return nil
}
