package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/database"
	apperrors "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/errors"
)

// timeLayout is fixed-width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

//go:embed schema.sql
var schemaSQL string

// LedgerStore implements repository.LedgerStore on an embedded SQLite file.
type LedgerStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database at path and applies the schema.
func Open(ctx context.Context, path string) (*LedgerStore, error) {
	db, err := database.OpenSQLite(ctx, path, schemaSQL)
	if err != nil {
		return nil, err
	}
	return &LedgerStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *LedgerStore) Close() error {
	return s.db.Close()
}

// Get returns the raw ledger payload for a profile.
func (s *LedgerStore) Get(ctx context.Context, profileID string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM cart_ledgers WHERE profile_id = ?`, profileID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("cart ledger", profileID)
		}
		return nil, fmt.Errorf("sqlite get ledger: %w", err)
	}
	return payload, nil
}

// Put overwrites the ledger payload for a profile.
func (s *LedgerStore) Put(ctx context.Context, profileID string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cart_ledgers (profile_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(profile_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		profileID, payload, s.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite put ledger: %w", err)
	}
	return nil
}

// Delete removes the ledger payload for a profile.
func (s *LedgerStore) Delete(ctx context.Context, profileID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_ledgers WHERE profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("sqlite delete ledger: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *LedgerStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// PurgeBefore deletes ledgers last written before cutoff and returns how many
// were removed. It gives the embedded store the expiry Redis gets from TTLs.
func (s *LedgerStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_ledgers WHERE updated_at < ?`, cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite purge ledgers: %w", err)
	}
	return res.RowsAffected()
}
