// Package file stores every wallet in a single JSON document on disk.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/storage"
)

// document is the on-disk layout
type document struct {
	Users map[string]*model.WalletRecord `json:"users"`
}

// Storage keeps the whole document in memory and rewrites it on every save
type Storage struct {
	mu     sync.RWMutex
	path   string
	users  map[string]*model.WalletRecord
	logger *slog.Logger
}

// Ensure Storage implements the interface
var _ storage.UserStore = (*Storage)(nil)

// Open loads the document at path, creating it when missing.
// A document that cannot be read or parsed is replaced by an empty one.
func Open(path string, logger *slog.Logger) (*Storage, error) {
	s := &Storage{
		path:   path,
		users:  make(map[string]*model.WalletRecord),
		logger: logger.With(slog.String("component", "file-store")),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Info("creating user database", slog.String("path", path))
		if err := s.flush(); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		s.logger.Warn("failed to read user database, starting empty",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return s, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("failed to parse user database, starting empty",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return s, nil
	}

	for identity, user := range doc.Users {
		if user == nil {
			continue
		}
		user.Identity = identity
		if user.History == nil {
			user.History = []model.LedgerEntry{}
		}
		s.users[identity] = user
	}
	s.logger.Info("loaded user database",
		slog.String("path", path),
		slog.Int("users", len(s.users)),
	)
	return s, nil
}

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

	prev, existed := s.users[user.Identity]
	s.users[user.Identity] = user.Clone()
	if err := s.flush(); err != nil {
		// Keep memory consistent with what is on disk
		if existed {
			s.users[user.Identity] = prev
		} else {
			delete(s.users, user.Identity)
		}
		return err
	}
	return nil
}

// Close is a no-op; every save is already on disk
func (s *Storage) Close() error {
	return nil
}

// flush atomically replaces the file with the current document.
// The caller holds s.mu or has exclusive access.
func (s *Storage) flush() error {
	data, err := json.MarshalIndent(document{Users: s.users}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user database: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write user database: %w", err)
	}
	return nil
}
