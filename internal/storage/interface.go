package storage

import (
	"context"

	"github.com/partyroom/partyroom/internal/model"
)

// UserStore defines the interface for durable wallet persistence.
// Records are read and written whole, keyed by identity.
type UserStore interface {
	// GetUser returns model.ErrUserNotFound when no record exists
	GetUser(ctx context.Context, identity string) (*model.WalletRecord, error)
	SaveUser(ctx context.Context, user *model.WalletRecord) error
	Close() error
}
