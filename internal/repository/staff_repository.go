package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/payroll-registry/internal/domain"
)

// ErrRecordNotFound is returned when a hash has no record in a ledger.
var ErrRecordNotFound = errors.New("record not found")

// StaffRepository handles persistence for staff records, their registered
// flags and the enumeration list. A record exists iff its flag is true.
type StaffRepository interface {
	// Create writes record, flag and list entry together. Callers must have
	// checked IsRegistered first.
	Create(ctx context.Context, tx *Txn, record *domain.StaffRecord) error
	// Update overwrites an existing record without touching flag or list.
	Update(tx *Txn, record *domain.StaffRecord) error
	GetByHash(ctx context.Context, tx *Txn, hash domain.Hash) (*domain.StaffRecord, error)
	IsRegistered(ctx context.Context, tx *Txn, hash domain.Hash) (bool, error)
	Count(ctx context.Context, tx *Txn) (uint64, error)
	List(ctx context.Context, tx *Txn) ([]domain.Hash, error)
	InitIndex(tx *Txn)
}

type staffRepository struct {
	index hashIndex
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository() StaffRepository {
	return &staffRepository{index: hashIndex{prefix: "staff/all"}}
}

func staffRecordKey(h domain.Hash) string     { return "staff/record/" + h.String() }
func staffRegisteredKey(h domain.Hash) string { return "staff/registered/" + h.String() }

func (r *staffRepository) Create(ctx context.Context, tx *Txn, record *domain.StaffRecord) error {
	if err := putJSON(tx, ClassPersistent, staffRecordKey(record.StaffHash), record); err != nil {
		return err
	}
	putFlag(tx, staffRegisteredKey(record.StaffHash), true)
	return r.index.append(ctx, tx, record.StaffHash)
}

func (r *staffRepository) Update(tx *Txn, record *domain.StaffRecord) error {
	return putJSON(tx, ClassPersistent, staffRecordKey(record.StaffHash), record)
}

func (r *staffRepository) GetByHash(ctx context.Context, tx *Txn, hash domain.Hash) (*domain.StaffRecord, error) {
	registered, err := r.IsRegistered(ctx, tx, hash)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, ErrRecordNotFound
	}

	var record domain.StaffRecord
	if err := getJSON(ctx, tx, ClassPersistent, staffRecordKey(hash), &record); err != nil {
		// flag set without record breaks the ledger invariant
		return nil, fmt.Errorf("staff %s flagged but unreadable: %w", hash, err)
	}
	return &record, nil
}

func (r *staffRepository) IsRegistered(ctx context.Context, tx *Txn, hash domain.Hash) (bool, error) {
	return getFlag(ctx, tx, staffRegisteredKey(hash))
}

func (r *staffRepository) Count(ctx context.Context, tx *Txn) (uint64, error) {
	return r.index.count(ctx, tx)
}

func (r *staffRepository) List(ctx context.Context, tx *Txn) ([]domain.Hash, error) {
	return r.index.list(ctx, tx)
}

func (r *staffRepository) InitIndex(tx *Txn) {
	r.index.reset(tx)
}
