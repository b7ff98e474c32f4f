package repository

import (
	"bytes"
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore maps each (class, key) to prefix+class+":"+key. Apply runs the
// sets inside MULTI/EXEC so readers never see half of a registry transition.
// ApplyIf adds WATCH on the keys the transaction read, so replicas sharing the
// same Redis cannot both commit a transition built on the same state.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ ConditionalStore = (*RedisStore)(nil)

// NewRedisStore wraps client. The client is owned by the caller.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(class Class, key string) string {
	return s.prefix + class.String() + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, class Class, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.key(class, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return v, err
}

func (s *RedisStore) Apply(ctx context.Context, writes []Write) error {
	_, err := s.client.TxPipelined(ctx, s.queue(ctx, writes))
	return err
}

func (s *RedisStore) ApplyIf(ctx context.Context, reads []Read, writes []Write) error {
	if len(reads) == 0 {
		return s.Apply(ctx, writes)
	}
	keys := make([]string, 0, len(reads))
	for _, r := range reads {
		keys = append(keys, s.key(r.Class, r.Key))
	}

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		for i, r := range reads {
			v, err := tx.Get(ctx, keys[i]).Bytes()
			if errors.Is(err, redis.Nil) {
				if r.Found {
					return ErrConflict
				}
				continue
			}
			if err != nil {
				return err
			}
			if !r.Found || !bytes.Equal(v, r.Value) {
				return ErrConflict
			}
		}
		_, err := tx.TxPipelined(ctx, s.queue(ctx, writes))
		return err
	}, keys...)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

func (s *RedisStore) queue(ctx context.Context, writes []Write) func(redis.Pipeliner) error {
	return func(pipe redis.Pipeliner) error {
		for _, w := range writes {
			pipe.Set(ctx, s.key(w.Class, w.Key), w.Value, 0)
		}
		return nil
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the shared client is closed by persistence.Redis.
func (s *RedisStore) Close() error {
	return nil
}
