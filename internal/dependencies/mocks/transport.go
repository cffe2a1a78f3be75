package mocks

import (
	"sync"

	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/protocol"
	"github.com/partyroom/partyroom/internal/transport"
)

// Delivery is one message received by one connection
type Delivery struct {
	Conn    model.ConnID
	Message protocol.Message
}

// MockTransport records every delivery for assertions
type MockTransport struct {
	mu         sync.Mutex
	deliveries []Delivery
}

// Ensure MockTransport implements Transport
var _ transport.Transport = (*MockTransport)(nil)

// NewMockTransport creates an empty MockTransport
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Send records a single delivery
func (t *MockTransport) Send(conn model.ConnID, msg protocol.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deliveries = append(t.deliveries, Delivery{Conn: conn, Message: msg})
}

// Broadcast records one delivery per recipient
func (t *MockTransport) Broadcast(conns []model.ConnID, msg protocol.Message, except model.ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range conns {
		if c == except {
			continue
		}
		t.deliveries = append(t.deliveries, Delivery{Conn: c, Message: msg})
	}
}

// All returns every delivery in order
func (t *MockTransport) All() []Delivery {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Delivery, len(t.deliveries))
	copy(out, t.deliveries)
	return out
}

// For returns the messages delivered to one connection, in order
func (t *MockTransport) For(conn model.ConnID) []protocol.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []protocol.Message
	for _, d := range t.deliveries {
		if d.Conn == conn {
			out = append(out, d.Message)
		}
	}
	return out
}

// Events returns the event names delivered to one connection, in order
func (t *MockTransport) Events(conn model.ConnID) []string {
	var names []string
	for _, m := range t.For(conn) {
		names = append(names, m.Event)
	}
	return names
}

// Last returns the most recent message delivered to conn
func (t *MockTransport) Last(conn model.ConnID) (protocol.Message, bool) {
	msgs := t.For(conn)
	if len(msgs) == 0 {
		return protocol.Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// Reset forgets all recorded deliveries
func (t *MockTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deliveries = nil
}
