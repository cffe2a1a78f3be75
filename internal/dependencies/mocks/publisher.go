package mocks

import (
	"context"
	"sync"

	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/notify"
)

// MockPublisher records published events
type MockPublisher struct {
	mu     sync.Mutex
	events []model.Event

	// Err is returned from Publish when set
	Err error
}

var _ notify.Publisher = (*MockPublisher)(nil)

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the event
func (p *MockPublisher) Publish(_ context.Context, event model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)
	return nil
}

// Close does nothing
func (p *MockPublisher) Close() error { return nil }

// Events returns every recorded event in order
func (p *MockPublisher) Events() []model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Event, len(p.events))
	copy(out, p.events)
	return out
}
