package factory

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/partyroom/partyroom/internal/api"
	"github.com/partyroom/partyroom/internal/config"
	"github.com/partyroom/partyroom/internal/dependencies/clock"
	"github.com/partyroom/partyroom/internal/dependencies/random"
	"github.com/partyroom/partyroom/internal/notify"
	"github.com/partyroom/partyroom/internal/services/room"
	"github.com/partyroom/partyroom/internal/services/session"
	"github.com/partyroom/partyroom/internal/services/wallet"
	"github.com/partyroom/partyroom/internal/storage"
	filestorage "github.com/partyroom/partyroom/internal/storage/file"
	"github.com/partyroom/partyroom/internal/storage/memory"
	pgstorage "github.com/partyroom/partyroom/internal/storage/postgres"
	redisstorage "github.com/partyroom/partyroom/internal/storage/redis"
	"github.com/partyroom/partyroom/internal/transport"
	"github.com/partyroom/partyroom/internal/transport/ws"
)

// App contains all wired application components
type App struct {
	// Storage
	Store     storage.UserStore
	Publisher notify.Publisher

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Registry *room.Registry
	Ledger   *wallet.Ledger
	Sessions *session.Manager

	// Transport
	Hub       *ws.Hub
	WebSocket *ws.Handler

	logger *slog.Logger
}

// New creates a new application with all dependencies wired.
// A nil logger discards output.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var publisher notify.Publisher = notify.NopPublisher{}
	if cfg.NATS != nil {
		natsPublisher, err := notify.NewNATSPublisher(*cfg.NATS, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		publisher = natsPublisher
	}

	hub := ws.NewHub(logger)
	app := newWithDependencies(store, publisher, hub, clock.New(), random.New(), logger)
	app.WebSocket = ws.NewHandler(hub, app.Sessions, cfg.WebSocket, logger)
	return app, nil
}

// newStore opens the configured wallet backend
func newStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.UserStore, error) {
	switch cfg.StorageType {
	case config.StorageTypeMemory:
		return memory.New(), nil
	case config.StorageTypeRedis:
		return redisstorage.New(cfg.Redis)
	case config.StorageTypePostgres:
		return pgstorage.New(ctx, cfg.Postgres, logger)
	default:
		return filestorage.Open(cfg.DataFile, logger)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.UserStore,
	publisher notify.Publisher,
	tr transport.Transport,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *App {
	registry := room.NewRegistry(room.NewCodeGenerator(rnd), tr, clk, logger)
	ledger := wallet.NewLedger(store, publisher, clk, logger)
	sessions := session.NewManager(registry, ledger, tr, logger)

	app := &App{
		Store:     store,
		Publisher: publisher,
		Clock:     clk,
		Random:    rnd,
		Registry:  registry,
		Ledger:    ledger,
		Sessions:  sessions,
		logger:    logger,
	}
	if hub, ok := tr.(*ws.Hub); ok {
		app.Hub = hub
	}
	return app
}

// Router returns the HTTP handler serving the API and the websocket endpoint
func (a *App) Router() http.Handler {
	cfg := api.RouterConfig{
		Logger:   a.logger,
		Registry: a.Registry,
		Ledger:   a.Ledger,
		Hub:      a.Hub,
	}
	if a.WebSocket != nil {
		cfg.WebSocket = a.WebSocket
	}
	return api.NewRouter(cfg)
}

// Close disconnects clients and releases external resources
func (a *App) Close() error {
	if a.Hub != nil {
		a.Hub.Close()
	}
	if err := a.Publisher.Close(); err != nil {
		a.logger.Warn("failed to close publisher", slog.Any("error", err))
	}
	return a.Store.Close()
}
