// Package postgres stores wallets in PostgreSQL, one row per wallet and one
// row per ledger entry.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/storage"
)

// ErrHistoryRewritten is returned when a save would drop stored ledger entries
var ErrHistoryRewritten = errors.New("wallet history is append-only")

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Ensure Storage implements the interface
var _ storage.UserStore = (*Storage)(nil)

// New connects to the database, applying migrations first when configured
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	logger = logger.With(slog.String("component", "postgres-store"))

	if cfg.AutoMigrate {
		if err := Migrate(cfg.URL); err != nil {
			return nil, err
		}
		logger.Info("database migrations applied")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolCfg.ConnConfig.RuntimeParams["timezone"] = "UTC"
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Storage{pool: pool, logger: logger}, nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func (s *Storage) GetUser(ctx context.Context, identity string) (*model.WalletRecord, error) {
	user := &model.WalletRecord{Identity: identity, History: []model.LedgerEntry{}}

	err := s.pool.QueryRow(ctx,
		`SELECT coins FROM wallets WHERE identity = $1`, identity,
	).Scan(&user.Coins)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read wallet %q: %w", identity, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT action, diff, total, created_at FROM wallet_history
		 WHERE identity = $1 ORDER BY seq`, identity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read history for %q: %w", identity, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.Action, &e.Diff, &e.Total, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		user.History = append(user.History, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return user, nil
}

// SaveUser upserts the balance and appends the entries not yet stored
func (s *Storage) SaveUser(ctx context.Context, user *model.WalletRecord) error {
	return s.withTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO wallets (identity, coins, updated_at) VALUES ($1, $2, $3)
			 ON CONFLICT (identity) DO UPDATE SET coins = EXCLUDED.coins, updated_at = EXCLUDED.updated_at`,
			user.Identity, user.Coins, time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert wallet %q: %w", user.Identity, err)
		}

		var stored int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM wallet_history WHERE identity = $1`, user.Identity,
		).Scan(&stored); err != nil {
			return fmt.Errorf("failed to count history for %q: %w", user.Identity, err)
		}
		if stored > len(user.History) {
			return fmt.Errorf("%w: %q has %d stored entries, record has %d",
				ErrHistoryRewritten, user.Identity, stored, len(user.History))
		}

		batch := &pgx.Batch{}
		for i := stored; i < len(user.History); i++ {
			e := user.History[i]
			batch.Queue(
				`INSERT INTO wallet_history (identity, seq, action, diff, total, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				user.Identity, i, e.Action, e.Diff, e.Total, e.Timestamp,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to append history for %q: %w", user.Identity, err)
		}
		s.logger.Debug("appended history",
			slog.String("identity", user.Identity),
			slog.Int("entries", batch.Len()),
		)
		return nil
	})
}

// withTransaction runs fn in a transaction, rolling back when it fails
func (s *Storage) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				err = fmt.Errorf("rollback failed: %v, original error: %w", rbErr, err)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
