package repository

import (
	"bytes"
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	upsertKVQuery = `
        INSERT INTO registry_kv (storage_class, key, value)
        VALUES ($1,$2,$3)
        ON CONFLICT (storage_class, key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`
	selectKVQuery = `SELECT value FROM registry_kv WHERE storage_class=$1 AND key=$2`

	// serialization_failure
	sqlStateSerialization = "40001"
)

// PostgresStore keeps registry state in the registry_kv table
// (see migrations/001_registry_kv.sql). ApplyIf re-checks the transaction's
// reads and writes inside one SERIALIZABLE transaction, so replicas sharing
// the database cannot both commit a transition built on the same state.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ ConditionalStore = (*PostgresStore)(nil)

// NewPostgresStore wraps pool. The pool is owned by the caller.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, class Class, key string) ([]byte, error) {
	var value []byte
	if err := s.pool.QueryRow(ctx, selectKVQuery, int16(class), key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *PostgresStore) Apply(ctx context.Context, writes []Write) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return sendWrites(ctx, tx, writes)
	})
}

func (s *PostgresStore) ApplyIf(ctx context.Context, reads []Read, writes []Write) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		for _, r := range reads {
			var value []byte
			err := tx.QueryRow(ctx, selectKVQuery, int16(r.Class), r.Key).Scan(&value)
			if errors.Is(err, pgx.ErrNoRows) {
				if r.Found {
					return ErrConflict
				}
				continue
			}
			if err != nil {
				return err
			}
			if !r.Found || !bytes.Equal(value, r.Value) {
				return ErrConflict
			}
		}
		return sendWrites(ctx, tx, writes)
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlStateSerialization {
		return ErrConflict
	}
	return err
}

func sendWrites(ctx context.Context, tx pgx.Tx, writes []Write) error {
	batch := &pgx.Batch{}
	for _, w := range writes {
		batch.Queue(upsertKVQuery, int16(w.Class), w.Key, w.Value)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close is a no-op; the pool is closed by persistence.Postgres.
func (s *PostgresStore) Close() error {
	return nil
}
