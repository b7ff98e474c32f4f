package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/payroll-registry/internal/domain"
)

// hashIndex is an append-only, insertion-ordered list of hashes stored as a
// counter plus one key per position, so appends and counts are O(1).
//
//	<prefix>/count -> uint64
//	<prefix>/<n>   -> 32 raw hash bytes, n in [0, count)
type hashIndex struct {
	prefix string
}

func (x hashIndex) countKey() string {
	return x.prefix + "/count"
}

func (x hashIndex) itemKey(n uint64) string {
	return fmt.Sprintf("%s/%020d", x.prefix, n)
}

// reset writes an empty list.
func (x hashIndex) reset(tx *Txn) {
	putCounter(tx, x.countKey(), 0)
}

func (x hashIndex) count(ctx context.Context, tx *Txn) (uint64, error) {
	return getCounter(ctx, tx, x.countKey())
}

func (x hashIndex) append(ctx context.Context, tx *Txn, h domain.Hash) error {
	n, err := x.count(ctx, tx)
	if err != nil {
		return err
	}
	tx.Set(ClassPersistent, x.itemKey(n), h[:])
	putCounter(tx, x.countKey(), n+1)
	return nil
}

func (x hashIndex) list(ctx context.Context, tx *Txn) ([]domain.Hash, error) {
	n, err := x.count(ctx, tx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Hash, 0, n)
	for i := uint64(0); i < n; i++ {
		raw, err := tx.Get(ctx, ClassPersistent, x.itemKey(i))
		if err != nil {
			return nil, fmt.Errorf("index %s[%d]: %w", x.prefix, i, err)
		}
		if len(raw) != domain.HashSize {
			return nil, fmt.Errorf("index %s[%d]: want %d bytes, got %d", x.prefix, i, domain.HashSize, len(raw))
		}
		var h domain.Hash
		copy(h[:], raw)
		out = append(out, h)
	}
	return out, nil
}
