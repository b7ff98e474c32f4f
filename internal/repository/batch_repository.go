package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/payroll-registry/internal/domain"
)

// BatchRepository handles persistence for payroll batches. Batches are
// immutable, so there is no Update.
type BatchRepository interface {
	Create(ctx context.Context, tx *Txn, batch *domain.PayrollBatch) error
	GetByHash(ctx context.Context, tx *Txn, hash domain.Hash) (*domain.PayrollBatch, error)
	IsRecorded(ctx context.Context, tx *Txn, hash domain.Hash) (bool, error)
	Count(ctx context.Context, tx *Txn) (uint64, error)
	List(ctx context.Context, tx *Txn) ([]domain.Hash, error)
	InitIndex(tx *Txn)
}

type batchRepository struct {
	index hashIndex
}

// NewBatchRepository instantiates the repository.
func NewBatchRepository() BatchRepository {
	return &batchRepository{index: hashIndex{prefix: "batch/all"}}
}

func batchRecordKey(h domain.Hash) string   { return "batch/record/" + h.String() }
func batchRecordedKey(h domain.Hash) string { return "batch/recorded/" + h.String() }

func (r *batchRepository) Create(ctx context.Context, tx *Txn, batch *domain.PayrollBatch) error {
	if err := putJSON(tx, ClassPersistent, batchRecordKey(batch.BatchHash), batch); err != nil {
		return err
	}
	putFlag(tx, batchRecordedKey(batch.BatchHash), true)
	return r.index.append(ctx, tx, batch.BatchHash)
}

func (r *batchRepository) GetByHash(ctx context.Context, tx *Txn, hash domain.Hash) (*domain.PayrollBatch, error) {
	recorded, err := r.IsRecorded(ctx, tx, hash)
	if err != nil {
		return nil, err
	}
	if !recorded {
		return nil, ErrRecordNotFound
	}

	var batch domain.PayrollBatch
	if err := getJSON(ctx, tx, ClassPersistent, batchRecordKey(hash), &batch); err != nil {
		return nil, fmt.Errorf("batch %s flagged but unreadable: %w", hash, err)
	}
	return &batch, nil
}

func (r *batchRepository) IsRecorded(ctx context.Context, tx *Txn, hash domain.Hash) (bool, error) {
	return getFlag(ctx, tx, batchRecordedKey(hash))
}

func (r *batchRepository) Count(ctx context.Context, tx *Txn) (uint64, error) {
	return r.index.count(ctx, tx)
}

func (r *batchRepository) List(ctx context.Context, tx *Txn) ([]domain.Hash, error) {
	return r.index.list(ctx, tx)
}

func (r *batchRepository) InitIndex(tx *Txn) {
	r.index.reset(tx)
}
