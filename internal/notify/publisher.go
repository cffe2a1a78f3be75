// Package notify publishes wallet domain events to other services.
package notify

import (
	"context"

	"github.com/partyroom/partyroom/internal/model"
)

// Publisher delivers domain events outside the process
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
	Close() error
}

// NopPublisher discards every event
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

// Publish does nothing
func (NopPublisher) Publish(context.Context, model.Event) error { return nil }

// Close does nothing
func (NopPublisher) Close() error { return nil }
