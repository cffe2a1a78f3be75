package wallet

import (
	"context"
	"errors"
	"log/slog"

	"github.com/partyroom/partyroom/internal/dependencies/clock"
	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/notify"
	"github.com/partyroom/partyroom/internal/storage"
)

// Ledger owns every read-modify-write of wallet records.
// Updates to one identity are serialized; different identities proceed in
// parallel.
type Ledger struct {
	store     storage.UserStore
	publisher notify.Publisher
	clock     clock.Clock
	locks     *keyedMutex
	logger    *slog.Logger
}

// NewLedger creates a new Ledger
func NewLedger(store storage.UserStore, publisher notify.Publisher, clock clock.Clock, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:     store,
		publisher: publisher,
		clock:     clock,
		locks:     newKeyedMutex(),
		logger:    logger.With(slog.String("component", "wallet-ledger")),
	}
}

// GetOrCreate returns the wallet for identity, creating and persisting a
// default one on first access
func (l *Ledger) GetOrCreate(ctx context.Context, identity string) (*model.WalletRecord, error) {
	if identity == "" {
		return nil, model.ErrMissingIdentity
	}
	unlock := l.locks.Lock(identity)
	defer unlock()

	return l.loadOrCreate(ctx, identity)
}

// ApplyAbsoluteUpdate sets the balance to newBalance and records the change.
// The caller supplies the resulting total, not a delta.
func (l *Ledger) ApplyAbsoluteUpdate(ctx context.Context, identity string, newBalance int64, reason string) (int64, error) {
	if identity == "" {
		return 0, model.ErrMissingIdentity
	}
	unlock := l.locks.Lock(identity)
	defer unlock()

	user, err := l.loadOrCreate(ctx, identity)
	if err != nil {
		return 0, err
	}

	old := user.Coins
	entry := user.Apply(newBalance, reason, l.clock.Now())
	if err := l.store.SaveUser(ctx, user); err != nil {
		l.logger.Error("failed to save wallet",
			slog.String("identity", identity),
			slog.Any("error", err),
		)
		return 0, err
	}

	l.logger.Info("wallet updated",
		slog.String("identity", identity),
		slog.String("action", entry.Action),
		slog.Int64("diff", entry.Diff),
		slog.Int64("total", entry.Total),
	)
	l.publish(ctx, model.Event{
		Type:      model.EventBalanceChanged,
		Timestamp: entry.Timestamp,
		Identity:  identity,
		Payload: model.BalanceChangedPayload{
			Action:     entry.Action,
			OldBalance: old,
			NewBalance: entry.Total,
			Diff:       entry.Diff,
		},
	})
	return user.Coins, nil
}

// History returns the ledger entries for identity without creating a wallet
func (l *Ledger) History(ctx context.Context, identity string) ([]model.LedgerEntry, error) {
	if identity == "" {
		return nil, model.ErrMissingIdentity
	}
	user, err := l.store.GetUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	return user.History, nil
}

// loadOrCreate reads the wallet, creating it when absent. The caller holds
// the identity lock.
func (l *Ledger) loadOrCreate(ctx context.Context, identity string) (*model.WalletRecord, error) {
	user, err := l.store.GetUser(ctx, identity)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		l.logger.Error("failed to load wallet",
			slog.String("identity", identity),
			slog.Any("error", err),
		)
		return nil, err
	}

	user = model.NewWalletRecord(identity)
	if err := l.store.SaveUser(ctx, user); err != nil {
		l.logger.Error("failed to create wallet",
			slog.String("identity", identity),
			slog.Any("error", err),
		)
		return nil, err
	}

	l.logger.Info("wallet created", slog.String("identity", identity), slog.Int64("coins", user.Coins))
	l.publish(ctx, model.Event{
		Type:      model.EventWalletCreated,
		Timestamp: l.clock.Now(),
		Identity:  identity,
		Payload:   model.WalletCreatedPayload{Coins: user.Coins},
	})
	return user, nil
}

// publish forwards an event; failures are logged and never fail the update
func (l *Ledger) publish(ctx context.Context, event model.Event) {
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.logger.Warn("failed to publish wallet event",
			slog.String("type", string(event.Type)),
			slog.String("identity", event.Identity),
			slog.Any("error", err),
		)
	}
}
