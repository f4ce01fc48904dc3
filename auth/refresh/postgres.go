package refresh

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/distribution-auth/sessiongate/auth"
	"github.com/distribution-auth/sessiongate/pkg/option"
)

// PostgresRefreshRecordRepository stores refresh records in the refresh_records table.
//
// The table is created by RunMigrations.
type PostgresRefreshRecordRepository struct {
	db    *sql.DB
	clock clockwork.Clock
}

// NewPostgresRefreshRecordRepository returns a new PostgresRefreshRecordRepository.
func NewPostgresRefreshRecordRepository(db *sql.DB, clock clockwork.Clock) *PostgresRefreshRecordRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &PostgresRefreshRecordRepository{
		db:    db,
		clock: clock,
	}
}

// FindRefreshRecord implements auth.RefreshRecordStore.
func (r *PostgresRefreshRecordRepository) FindRefreshRecord(ctx context.Context, index string) (option.Option[auth.RefreshRecord], error) {
	query := `
		SELECT token, owner_id
		FROM refresh_records
		WHERE refresh_index = $1 AND (expires_at IS NULL OR expires_at > $2)
	`

	record := auth.RefreshRecord{Index: index}

	err := r.db.QueryRowContext(ctx, query, index, r.clock.Now()).Scan(&record.Token, &record.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return option.None[auth.RefreshRecord](), nil
	}
	if err != nil {
		return nil, auth.StoreError(err)
	}

	return option.Some(record), nil
}

// DeleteRefreshRecord implements auth.RefreshRecordStore.
func (r *PostgresRefreshRecordRepository) DeleteRefreshRecord(ctx context.Context, index string) error {
	query := `
		DELETE FROM refresh_records
		WHERE refresh_index = $1
	`

	if _, err := r.db.ExecContext(ctx, query, index); err != nil {
		return auth.StoreError(err)
	}

	return nil
}

// SaveRefreshRecord implements auth.RefreshRecordRepository.
// A non-positive ttl keeps the record until it is deleted.
func (r *PostgresRefreshRecordRepository) SaveRefreshRecord(ctx context.Context, record auth.RefreshRecord, ttl time.Duration) error {
	query := `
		INSERT INTO refresh_records (refresh_index, token, owner_id, expires_at)
		VALUES ($1, $2, $3, $4)
	`

	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: r.clock.Now().Add(ttl), Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, query, record.Index, record.Token, record.OwnerID, expiresAt); err != nil {
		return auth.StoreError(err)
	}

	return nil
}

// Close closes the underlying database handle.
func (r *PostgresRefreshRecordRepository) Close() error {
	return r.db.Close()
}
