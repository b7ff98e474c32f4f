package repository

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned by Store.Get when a key has never been written.
	ErrKeyNotFound = errors.New("key not found")
	// ErrConflict is returned by ConditionalStore.ApplyIf when a key read by the
	// transaction changed before the commit.
	ErrConflict = errors.New("concurrent update conflict")
)

// Class separates the owner pointer (rarely written) from the per-hash
// records, flags and indexes (write-heavy). Backends may place the classes in
// different key spaces but must commit writes across both atomically.
type Class uint8

const (
	ClassInstance Class = iota + 1
	ClassPersistent
)

func (c Class) String() string {
	switch c {
	case ClassInstance:
		return "instance"
	case ClassPersistent:
		return "persistent"
	default:
		return "unknown"
	}
}

// Write is a single buffered set.
type Write struct {
	Class Class
	Key   string
	Value []byte
}

// Read is a value a transaction observed in the backend. Found is false when
// the key did not exist.
type Read struct {
	Class Class
	Key   string
	Value []byte
	Found bool
}

// Store is a durable key-value backend with last-write-wins semantics and no
// expiry. Apply must commit all writes or none.
//
// A plain Store is only safe when one process owns it: the check-then-write
// of a registry transition is serialized by the service's mutex. Backends
// that several replicas can share implement ConditionalStore as well.
type Store interface {
	Get(ctx context.Context, class Class, key string) ([]byte, error)
	Apply(ctx context.Context, writes []Write) error
	Ping(ctx context.Context) error
	Close() error
}

// ConditionalStore commits writes only if every read still holds the value
// the transaction observed. On a mismatch it writes nothing and returns
// ErrConflict.
type ConditionalStore interface {
	Store
	ApplyIf(ctx context.Context, reads []Read, writes []Write) error
}

type slot struct {
	class Class
	key   string
}

// Txn buffers writes over a Store so that a registry operation reads its own
// writes and commits them in one Apply. A Txn that is never committed has no
// effect.
type Txn struct {
	store   Store
	pending map[slot][]byte
	order   []slot
	reads   map[slot]Read
	seen    []slot
}

// NewTxn starts a transaction over store.
func NewTxn(store Store) *Txn {
	return &Txn{store: store, pending: make(map[slot][]byte), reads: make(map[slot]Read)}
}

// Get returns the buffered value for key if one exists, otherwise the stored value.
func (t *Txn) Get(ctx context.Context, class Class, key string) ([]byte, error) {
	s := slot{class, key}
	if v, ok := t.pending[s]; ok {
		return append([]byte(nil), v...), nil
	}
	v, err := t.store.Get(ctx, class, key)
	switch {
	case err == nil:
		t.observe(s, v, true)
	case errors.Is(err, ErrKeyNotFound):
		t.observe(s, nil, false)
	}
	return v, err
}

// observe keeps the first value seen for a key; that is the value the commit
// is conditioned on.
func (t *Txn) observe(s slot, value []byte, found bool) {
	if _, ok := t.reads[s]; ok {
		return
	}
	t.seen = append(t.seen, s)
	t.reads[s] = Read{Class: s.class, Key: s.key, Value: append([]byte(nil), value...), Found: found}
}

// Reads returns the backend values observed so far, one per key.
func (t *Txn) Reads() []Read {
	reads := make([]Read, 0, len(t.seen))
	for _, s := range t.seen {
		reads = append(reads, t.reads[s])
	}
	return reads
}

// Set buffers a write. Later sets of the same key replace earlier ones.
func (t *Txn) Set(class Class, key string, value []byte) {
	s := slot{class, key}
	if _, ok := t.pending[s]; !ok {
		t.order = append(t.order, s)
	}
	t.pending[s] = append([]byte(nil), value...)
}

// Pending returns the number of distinct keys written.
func (t *Txn) Pending() int {
	return len(t.order)
}

// Commit applies all buffered writes atomically and resets the buffer. On a
// ConditionalStore the commit fails with ErrConflict if anything the
// transaction read has changed since.
func (t *Txn) Commit(ctx context.Context) error {
	if len(t.order) == 0 {
		return nil
	}
	writes := make([]Write, 0, len(t.order))
	for _, s := range t.order {
		writes = append(writes, Write{Class: s.class, Key: s.key, Value: t.pending[s]})
	}
	var err error
	if cs, ok := t.store.(ConditionalStore); ok {
		err = cs.ApplyIf(ctx, t.Reads(), writes)
	} else {
		err = t.store.Apply(ctx, writes)
	}
	if err != nil {
		return err
	}
	t.pending = make(map[slot][]byte)
	t.order = nil
	t.reads = make(map[slot]Read)
	t.seen = nil
	return nil
}
