package memory

import (
	"context"
	"sync"

	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu    sync.RWMutex
	users map[string]*model.WalletRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users: make(map[string]*model.WalletRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.UserStore = (*Storage)(nil)

func (s *Storage) GetUser(ctx context.Context, identity string) (*model.WalletRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[identity]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (s *Storage) SaveUser(ctx context.Context, user *model.WalletRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Identity] = user.Clone()
	return nil
}

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}
