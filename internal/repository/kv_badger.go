package repository

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore uses the same one-byte class prefix layout as LevelDBStore.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore wraps an open database. The store owns db and closes it.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (s *BadgerStore) Get(_ context.Context, class Class, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(prefixedKey(class, key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	return value, err
}

func (s *BadgerStore) Apply(_ context.Context, writes []Write) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, w := range writes {
			if err := txn.Set(prefixedKey(w.Class, w.Key), w.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger closed")
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
