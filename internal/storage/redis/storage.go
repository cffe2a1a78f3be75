package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Wallets are durable, so keys are written without a TTL.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().PingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.UserStore = (*Storage)(nil)

func (s *Storage) GetUser(ctx context.Context, identity string) (*model.WalletRecord, error) {
	data, err := s.client.Get(ctx, s.userKey(identity)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read user %q: %w", identity, err)
	}

	var user model.WalletRecord
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user %q: %w", identity, err)
	}
	user.Identity = identity
	if user.History == nil {
		user.History = []model.LedgerEntry{}
	}
	return &user, nil
}

func (s *Storage) SaveUser(ctx context.Context, user *model.WalletRecord) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.userKey(user.Identity), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write user %q: %w", user.Identity, err)
	}
	return nil
}
