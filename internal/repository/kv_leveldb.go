package repository

import (
	"context"
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDBStore keeps each class under a one-byte key prefix in a single database.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore wraps an open database. The store owns db and closes it.
func NewLevelDBStore(db *leveldb.DB) *LevelDBStore {
	return &LevelDBStore{db: db}
}

func prefixedKey(class Class, key string) []byte {
	k := make([]byte, 0, len(key)+1)
	k = append(k, byte(class))
	return append(k, key...)
}

func (s *LevelDBStore) Get(_ context.Context, class Class, key string) ([]byte, error) {
	v, err := s.db.Get(prefixedKey(class, key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	return v, err
}

func (s *LevelDBStore) Apply(_ context.Context, writes []Write) error {
	batch := new(leveldb.Batch)
	for _, w := range writes {
		batch.Put(prefixedKey(w.Class, w.Key), w.Value)
	}
	return s.db.Write(batch, &ldb_opt.WriteOptions{Sync: true})
}

func (s *LevelDBStore) Ping(context.Context) error {
	_, err := s.db.GetProperty("leveldb.stats")
	return err
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
