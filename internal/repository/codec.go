package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	flagTrue  = []byte{1}
	flagFalse = []byte{0}
)

func getJSON(ctx context.Context, tx *Txn, class Class, key string, dst any) error {
	raw, err := tx.Get(ctx, class, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func putJSON(tx *Txn, class Class, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	tx.Set(class, key, raw)
	return nil
}

// getFlag reads a boolean; an absent key is false.
func getFlag(ctx context.Context, tx *Txn, key string) (bool, error) {
	raw, err := tx.Get(ctx, ClassPersistent, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(raw) == 1 && raw[0] == 1, nil
}

func putFlag(tx *Txn, key string, v bool) {
	if v {
		tx.Set(ClassPersistent, key, flagTrue)
		return
	}
	tx.Set(ClassPersistent, key, flagFalse)
}

// getCounter reads a big-endian uint64; an absent key is zero.
func getCounter(ctx context.Context, tx *Txn, key string) (uint64, error) {
	raw, err := tx.Get(ctx, ClassPersistent, key)
	if errors.Is(err, ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("counter %s: want 8 bytes, got %d", key, len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

func putCounter(tx *Txn, key string, n uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	tx.Set(ClassPersistent, key, buf[:])
}
