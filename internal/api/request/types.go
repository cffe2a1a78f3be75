package request

// UpdateWalletRequest is the request body for setting a wallet balance.
// Amount is the new absolute balance, not a delta.
type UpdateWalletRequest struct {
	Amount *int64 `json:"amount"`
	Reason string `json:"reason"`
}
