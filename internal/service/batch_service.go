package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/payroll-registry/internal/domain"
	"github.com/spec-kit/payroll-registry/internal/events"
	"github.com/spec-kit/payroll-registry/internal/repository"
	apperrors "github.com/spec-kit/payroll-registry/pkg/util/errorutil"
)

// RecordPayrollBatch attests a batch. Recorded batches are permanent.
func (s *RegistryService) RecordPayrollBatch(ctx context.Context, hash domain.Hash, staffCount uint32) (*domain.PayrollBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := repository.NewTxn(s.store)
	owner, err := s.requireOwner(ctx, tx)
	if err != nil {
		return nil, err
	}

	recorded, err := s.batches.IsRecorded(ctx, tx, hash)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if recorded {
		return nil, ErrAlreadyRecorded.WithDetails(map[string]any{"batch_hash": hash.String()})
	}
	if hash.IsZero() {
		return nil, ErrInvalidHash
	}
	if staffCount == 0 {
		return nil, ErrInvalidStaffCount
	}

	now := s.clock.Now()
	batch := &domain.PayrollBatch{
		BatchHash:  hash,
		UploadedBy: owner,
		Timestamp:  now,
		StaffCount: staffCount,
	}
	if err := s.batches.Create(ctx, tx, batch); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.commit(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("payroll batch recorded",
		zap.String("batch_hash", hash.String()),
		zap.Uint32("staff_count", staffCount),
	)
	s.publish(ctx, events.Event{
		Type:      events.EventBatchRecorded,
		Hash:      hash.String(),
		Actor:     owner,
		Timestamp: now,
		Payload:   events.BatchRecordedPayload{StaffCount: staffCount},
	})
	return batch, nil
}

// GetPayrollBatch returns the batch recorded under hash.
func (s *RegistryService) GetPayrollBatch(ctx context.Context, hash domain.Hash) (*domain.PayrollBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, err := s.batches.GetByHash(ctx, repository.NewTxn(s.store), hash)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, ErrNotFound.WithDetails(map[string]any{"batch_hash": hash.String()})
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return batch, nil
}

// IsBatchRecorded reports whether hash was recorded.
func (s *RegistryService) IsBatchRecorded(ctx context.Context, hash domain.Hash) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recorded, err := s.batches.IsRecorded(ctx, repository.NewTxn(s.store), hash)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	return recorded, nil
}

// TotalBatches returns the number of recorded batches.
func (s *RegistryService) TotalBatches(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.batches.Count(ctx, repository.NewTxn(s.store))
	if err != nil {
		return 0, apperrors.NewInternalError(err)
	}
	return n, nil
}

// ListBatchHashes returns every recorded hash in recording order.
func (s *RegistryService) ListBatchHashes(ctx context.Context) ([]domain.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hashes, err := s.batches.List(ctx, repository.NewTxn(s.store))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return hashes, nil
}
