package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/partyroom/partyroom/internal/api/request"
	"github.com/partyroom/partyroom/internal/api/response"
	"github.com/partyroom/partyroom/internal/services/wallet"
)

// WalletHandler handles wallet endpoints
type WalletHandler struct {
	ledger *wallet.Ledger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(ledger *wallet.Ledger) *WalletHandler {
	return &WalletHandler{ledger: ledger}
}

// Get handles GET /api/v1/wallets/{identity}.
// Like get_wallet over the socket, an unknown identity gets a default wallet.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]

	user, err := h.ledger.GetOrCreate(r.Context(), identity)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.Wallet{Identity: identity, Coins: user.Coins})
}

// History handles GET /api/v1/wallets/{identity}/history
func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]

	entries, err := h.ledger.History(r.Context(), identity)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.WalletHistoryFromModel(identity, entries))
}

// Update handles POST /api/v1/wallets/{identity}
func (h *WalletHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]

	var req request.UpdateWalletRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Amount == nil {
		WriteError(w, NewInvalidRequestError("amount is required"))
		return
	}

	balance, err := h.ledger.ApplyAbsoluteUpdate(r.Context(), identity, *req.Amount, req.Reason)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.Wallet{Identity: identity, Coins: balance})
}
