package cache

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"exchange-rate-resolver/pkg/logger"
)

const (
	createTableQuery = `
		CREATE TABLE IF NOT EXISTS rate_cache (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			expires_at TIMESTAMPTZ NULL
		)`

	selectEntryQuery = `
		SELECT value FROM rate_cache
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`

	upsertEntryQuery = `
		INSERT INTO rate_cache (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`

	deleteEntryQuery = `DELETE FROM rate_cache WHERE key = $1`

	deleteExpiredQuery = `DELETE FROM rate_cache WHERE expires_at IS NOT NULL AND expires_at <= $1`
)

// querier is the part of *pgxpool.Pool the store uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps entries in the rate_cache table. Rows past expires_at read as
// misses and are removed by ClearExpired.
type PostgresStore struct {
	db    querier
	ttl   time.Duration
	log   *logger.Logger
	now   func() time.Time
	close func()
}

func NewPostgresStore(db querier, ttl time.Duration, log *logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:    db,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
		close: func() {},
	}
}

// InitPostgresStore opens a pool for dsn, checks it and creates the table if needed.
func InitPostgresStore(ctx context.Context, dsn string, timeout, ttl time.Duration, log *logger.Logger) (*PostgresStore, error) {
	const op = "cache.postgres.InitPostgresStore"

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 10 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, unavailable(op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable(op, err)
	}

	store := NewPostgresStore(pool, ttl, log)
	store.close = pool.Close

	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("PostgreSQL cache store initialized")
	return store, nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const op = "cache.postgres.EnsureSchema"

	if _, err := s.db.Exec(ctx, createTableQuery); err != nil {
		return unavailable(op, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const op = "cache.postgres.Get"

	var value []byte
	err := s.db.QueryRow(ctx, selectEntryQuery, key, s.now()).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable(op, err)
	}

	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	const op = "cache.postgres.Set"

	var expiresAt *time.Time
	if s.ttl > 0 {
		t := s.now().Add(s.ttl)
		expiresAt = &t
	}

	if _, err := s.db.Exec(ctx, upsertEntryQuery, key, value, expiresAt); err != nil {
		return unavailable(op, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	const op = "cache.postgres.Delete"

	if _, err := s.db.Exec(ctx, deleteEntryQuery, key); err != nil {
		return unavailable(op, err)
	}
	return nil
}

func (s *PostgresStore) ClearExpired(ctx context.Context) error {
	const op = "cache.postgres.ClearExpired"

	tag, err := s.db.Exec(ctx, deleteExpiredQuery, s.now())
	if err != nil {
		return unavailable(op, err)
	}

	s.log.Info("Cleared expired cache entries", "count", tag.RowsAffected())
	return nil
}

func (s *PostgresStore) Close() {
	s.close()
}
