package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exchange-rate-resolver/internal/domain/ports"
	"exchange-rate-resolver/pkg/logger"
)

type execCall struct {
	sql  string
	args []any
}

type fakeRow struct {
	value []byte
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = r.value
	return nil
}

type fakeQuerier struct {
	row     fakeRow
	tag     pgconn.CommandTag
	execErr error

	queries []execCall
	execs   []execCall
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return f.tag, f.execErr
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, execCall{sql: sql, args: args})
	return f.row
}

var pgNow = time.Date(2023, 1, 4, 12, 0, 0, 0, time.UTC)

func newPostgresStore(db querier, ttl time.Duration) *PostgresStore {
	s := NewPostgresStore(db, ttl, logger.Nop())
	s.now = func() time.Time { return pgNow }
	return s
}

func TestPostgresStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Hit", func(t *testing.T) {
		db := &fakeQuerier{row: fakeRow{value: []byte(`["EUR"]`)}}
		got, found, err := newPostgresStore(db, 0).Get(ctx, "currencies")

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `["EUR"]`, string(got))
		require.Len(t, db.queries, 1)
		assert.Equal(t, []any{"currencies", pgNow}, db.queries[0].args)
	})

	t.Run("Miss", func(t *testing.T) {
		db := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
		_, found, err := newPostgresStore(db, 0).Get(ctx, "currencies")

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Failure", func(t *testing.T) {
		db := &fakeQuerier{row: fakeRow{err: errors.New("connection reset")}}
		_, _, err := newPostgresStore(db, 0).Get(ctx, "currencies")

		assert.True(t, errors.Is(err, ports.ErrCacheUnavailable), "got %v", err)
	})
}

func TestPostgresStore_Set(t *testing.T) {
	ctx := context.Background()

	db := &fakeQuerier{}
	require.NoError(t, newPostgresStore(db, time.Hour).Set(ctx, "k", []byte("v")))
	require.Len(t, db.execs, 1)
	assert.True(t, strings.Contains(db.execs[0].sql, "ON CONFLICT (key) DO UPDATE"))

	expires, ok := db.execs[0].args[2].(*time.Time)
	require.True(t, ok)
	assert.Equal(t, pgNow.Add(time.Hour), *expires)

	db = &fakeQuerier{}
	require.NoError(t, newPostgresStore(db, 0).Set(ctx, "k", []byte("v")))
	assert.Nil(t, db.execs[0].args[2].(*time.Time), "zero ttl stores no expiry")

	db = &fakeQuerier{execErr: errors.New("read-only transaction")}
	err := newPostgresStore(db, 0).Set(ctx, "k", []byte("v"))
	assert.True(t, errors.Is(err, ports.ErrCacheUnavailable), "got %v", err)
}

func TestPostgresStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	db := &fakeQuerier{tag: pgconn.NewCommandTag("DELETE 3")}
	store := newPostgresStore(db, time.Hour)

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.ClearExpired(ctx))
	require.NoError(t, store.EnsureSchema(ctx))

	require.Len(t, db.execs, 3)
	assert.Equal(t, []any{"k"}, db.execs[0].args)
	assert.Equal(t, []any{pgNow}, db.execs[1].args)
	assert.Contains(t, db.execs[2].sql, "CREATE TABLE IF NOT EXISTS rate_cache")
}

func TestPostgresStore_KeepsCause(t *testing.T) {
	ctx := context.Background()
	db := &fakeQuerier{row: fakeRow{err: context.DeadlineExceeded}, execErr: context.Canceled}
	store := newPostgresStore(db, 0)

	_, _, err := store.Get(ctx, "currencies")
	assert.True(t, errors.Is(err, ports.ErrCacheUnavailable), "got %v", err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)

	err = store.Set(ctx, "currencies", []byte("[]"))
	assert.True(t, errors.Is(err, ports.ErrCacheUnavailable), "got %v", err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Contains(t, err.Error(), "cache.postgres.Set")
}
