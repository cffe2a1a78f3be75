package factory

import (
	"time"

	"github.com/partyroom/partyroom/internal/config"
	"github.com/partyroom/partyroom/internal/dependencies/mocks"
	"github.com/partyroom/partyroom/internal/storage/memory"
	"github.com/partyroom/partyroom/internal/testutil"
	"github.com/partyroom/partyroom/internal/transport/ws"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MockPublisher *mocks.MockPublisher
	MemoryStore   *memory.Storage
}

// NewTestApp creates an App backed by memory storage and a real websocket hub,
// with clock, random and publisher mocked
func NewTestApp() *TestApp {
	logger := testutil.NopLogger()
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockPublisher := mocks.NewMockPublisher()
	hub := ws.NewHub(logger)

	app := newWithDependencies(store, mockPublisher, hub, mockClock, mockRandom, logger)
	app.WebSocket = ws.NewHandler(hub, app.Sessions, config.Default().WebSocket, logger)

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MockPublisher: mockPublisher,
		MemoryStore:   store,
	}
}
