package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/domain"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/repository"
	apperrors "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/errors"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/logger"
)

// Adapter reads and writes whole cart ledgers through a LedgerStore. Loading
// never fails: anything that cannot be turned into a valid ledger is treated
// as an empty cart.
type Adapter struct {
	store  repository.LedgerStore
	logger *slog.Logger
}

// NewAdapter creates a persistence adapter over store.
func NewAdapter(store repository.LedgerStore, logger *slog.Logger) *Adapter {
	return &Adapter{store: store, logger: logger}
}

// Load returns the persisted ledger for a profile. A missing key, a store
// error, malformed JSON or a payload violating ledger invariants all yield an
// empty ledger.
func (a *Adapter) Load(ctx context.Context, profileID string) domain.Ledger {
	log := logger.WithContext(ctx, a.logger)

	data, err := a.store.Get(ctx, profileID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.WarnContext(ctx, "ledger load failed, using empty cart",
				slog.String("profile_id", profileID),
				slog.String("error", err.Error()),
			)
		}
		return domain.Ledger{}
	}

	ledger, err := Decode(data)
	if err != nil {
		log.WarnContext(ctx, "discarding unreadable ledger",
			slog.String("profile_id", profileID),
			slog.String("error", err.Error()),
		)
		return domain.Ledger{}
	}
	return ledger
}

// Save overwrites the persisted ledger for a profile.
func (a *Adapter) Save(ctx context.Context, profileID string, ledger domain.Ledger) error {
	data, err := Encode(ledger)
	if err != nil {
		return err
	}
	if err := a.store.Put(ctx, profileID, data); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Clear removes the persisted ledger for a profile.
func (a *Adapter) Clear(ctx context.Context, profileID string) error {
	if err := a.store.Delete(ctx, profileID); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	return nil
}

// Ping reports whether the underlying store is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.store.Ping(ctx)
}

// Encode serializes a ledger as {"items": [...], "coupon_code": ...}.
func Encode(ledger domain.Ledger) ([]byte, error) {
	if ledger.Items == nil {
		ledger.Items = []domain.LineItem{}
	}
	data, err := json.Marshal(ledger)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger: %w", err)
	}
	return data, nil
}

// Decode parses a persisted ledger and checks its invariants. Payloads of an
// older or unknown shape are rejected rather than partially loaded.
func Decode(data []byte) (domain.Ledger, error) {
	var ledger domain.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return domain.Ledger{}, fmt.Errorf("unmarshal ledger: %w", err)
	}
	if err := ledger.Validate(); err != nil {
		return domain.Ledger{}, fmt.Errorf("invalid ledger: %w", err)
	}
	if ledger.CouponCode != nil && strings.TrimSpace(*ledger.CouponCode) == "" {
		ledger.CouponCode = nil
	}
	return ledger, nil
}
