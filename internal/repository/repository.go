package repository

import "context"

// LedgerStore persists one serialized cart ledger per profile. Implementations
// store the payload as-is; decoding and shape checks belong to the caller.
type LedgerStore interface {
	// Get returns the payload stored for profileID, or an error wrapping
	// errors.ErrNotFound when nothing is stored.
	Get(ctx context.Context, profileID string) ([]byte, error)

	// Put overwrites the payload stored for profileID.
	Put(ctx context.Context, profileID string, payload []byte) error

	// Delete removes the payload for profileID. Deleting a missing key is not an error.
	Delete(ctx context.Context, profileID string) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
