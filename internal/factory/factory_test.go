package factory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyroom/partyroom/internal/config"
	"github.com/partyroom/partyroom/internal/notify"
	filestorage "github.com/partyroom/partyroom/internal/storage/file"
	"github.com/partyroom/partyroom/internal/storage/memory"
)

func TestNewWithMemoryStorage(t *testing.T) {
	cfg := config.Default()
	cfg.StorageType = config.StorageTypeMemory

	app, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	assert.IsType(t, &memory.Storage{}, app.Store)
	assert.IsType(t, notify.NopPublisher{}, app.Publisher)
	assert.NotNil(t, app.Hub)
	assert.NotNil(t, app.WebSocket)
	assert.NotNil(t, app.Router())
}

func TestNewWithFileStorageCreatesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	cfg := config.Default()
	cfg.DataFile = path

	app, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	assert.IsType(t, &filestorage.Storage{}, app.Store)
	_, err = os.Stat(path)
	assert.NoError(t, err)

	balance, err := app.Ledger.ApplyAbsoluteUpdate(context.Background(), "a@x.com", 75, "loss")
	require.NoError(t, err)
	assert.Equal(t, int64(75), balance)
}

func TestNewFailsWhenNATSUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.StorageType = config.StorageTypeMemory
	natsCfg := notify.DefaultNATSConfig()
	natsCfg.URL = "nats://127.0.0.1:1"
	natsCfg.MaxReconnectAttempts = 0
	cfg.NATS = &natsCfg

	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
