package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/partyroom/partyroom/internal/model"
)

// NATSConfig holds NATS publisher configuration
type NATSConfig struct {
	// URL is the server list passed to nats.Connect
	URL string
	// SubjectPrefix is prepended to the event type to form the subject
	SubjectPrefix string
	// Name identifies this client to the server
	Name                 string
	MaxReconnectAttempts int
	ReconnectWait        time.Duration
}

// DefaultNATSConfig returns sensible defaults
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:                  nats.DefaultURL,
		SubjectPrefix:        "partyroom.wallet",
		Name:                 "partyroom-server",
		MaxReconnectAttempts: 10,
		ReconnectWait:        2 * time.Second,
	}
}

// Subject returns the subject an event of the given type is published on
func (c NATSConfig) Subject(t model.EventType) string {
	return fmt.Sprintf("%s.%s", c.SubjectPrefix, t)
}

// NATSPublisher publishes events as JSON messages on core NATS subjects
type NATSPublisher struct {
	nc     *nats.Conn
	cfg    NATSConfig
	logger *slog.Logger
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to the configured server
func NewNATSPublisher(cfg NATSConfig, logger *slog.Logger) (*NATSPublisher, error) {
	logger = logger.With(slog.String("component", "nats-publisher"))

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnectAttempts),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected with error", slog.Any("error", err))
			} else {
				logger.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("connected to NATS", slog.String("url", cfg.URL))
	return &NATSPublisher{nc: nc, cfg: cfg, logger: logger}, nil
}

// Publish encodes the event and publishes it on its subject
func (p *NATSPublisher) Publish(_ context.Context, event model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	subject := p.cfg.Subject(event.Type)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	p.logger.Debug("published event",
		slog.String("subject", subject),
		slog.Int("size", len(data)),
	)
	return nil
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return err
	}
	return nil
}
