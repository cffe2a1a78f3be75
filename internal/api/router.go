package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/partyroom/partyroom/internal/api/handler"
	apimiddleware "github.com/partyroom/partyroom/internal/api/middleware"
	"github.com/partyroom/partyroom/internal/middleware"
	"github.com/partyroom/partyroom/internal/services/room"
	"github.com/partyroom/partyroom/internal/services/wallet"
	"github.com/partyroom/partyroom/internal/transport/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Registry *room.Registry
	Ledger   *wallet.Ledger
	Hub      *ws.Hub
	// WebSocket serves the client protocol at /ws (optional)
	WebSocket http.Handler
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handler.RouteNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.Registry, cfg.Hub)
	roomHandler := handler.NewRoomHandler(cfg.Registry)
	walletHandler := handler.NewWalletHandler(cfg.Ledger)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler
	api.Use(apimiddleware.Recovery(cfg.Logger))
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	// Room routes (read-only; rooms are driven over the socket)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)

	// Wallet routes
	api.HandleFunc("/wallets/{identity}", walletHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/wallets/{identity}", walletHandler.Update).Methods(http.MethodPost)
	api.HandleFunc("/wallets/{identity}/history", walletHandler.History).Methods(http.MethodGet)

	// Client protocol
	if cfg.WebSocket != nil {
		wsRouter := r.PathPrefix("/ws").Subrouter()
		wsRouter.Use(middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler))
		wsRouter.Use(loggingMiddleware)
		wsRouter.Handle("", cfg.WebSocket).Methods(http.MethodGet)
	}

	return r
}
