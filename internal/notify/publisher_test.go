package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/testutil"
)

func TestNopPublisherAcceptsEverything(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), model.Event{Type: model.EventBalanceChanged}))
	assert.NoError(t, p.Close())
}

func TestSubjectIncludesEventType(t *testing.T) {
	cfg := DefaultNATSConfig()
	assert.Equal(t, "partyroom.wallet.balance_changed", cfg.Subject(model.EventBalanceChanged))
	assert.Equal(t, "partyroom.wallet.wallet_created", cfg.Subject(model.EventWalletCreated))
}

func TestNewNATSPublisherFailsWithoutServer(t *testing.T) {
	cfg := DefaultNATSConfig()
	cfg.URL = "nats://127.0.0.1:1"
	cfg.MaxReconnectAttempts = 0

	_, err := NewNATSPublisher(cfg, testutil.NopLogger())
	assert.Error(t, err)
}
