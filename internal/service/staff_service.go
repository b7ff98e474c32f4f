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

// RegisterStaff creates an active record for hash. A hash can be registered
// once ever; revoking it does not free it.
func (s *RegistryService) RegisterStaff(ctx context.Context, hash domain.Hash) (*domain.StaffRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := repository.NewTxn(s.store)
	owner, err := s.requireOwner(ctx, tx)
	if err != nil {
		return nil, err
	}

	registered, err := s.staff.IsRegistered(ctx, tx, hash)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if registered {
		return nil, ErrAlreadyRegistered.WithDetails(map[string]any{"staff_hash": hash.String()})
	}
	if hash.IsZero() {
		return nil, ErrInvalidHash
	}

	now := s.clock.Now()
	record := &domain.StaffRecord{
		StaffHash:    hash,
		RegisteredBy: owner,
		RegisteredAt: now,
		IsActive:     true,
	}
	if err := s.staff.Create(ctx, tx, record); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.commit(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("staff registered", zap.String("staff_hash", hash.String()))
	s.publish(ctx, events.Event{
		Type:      events.EventStaffRegistered,
		Hash:      hash.String(),
		Actor:     owner,
		Timestamp: now,
	})
	return record, nil
}

// RevokeStaff marks a registered record inactive. The record, its flag and
// its list entry stay in place.
func (s *RegistryService) RevokeStaff(ctx context.Context, hash domain.Hash) (*domain.StaffRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := repository.NewTxn(s.store)
	owner, err := s.requireOwner(ctx, tx)
	if err != nil {
		return nil, err
	}

	record, err := s.staff.GetByHash(ctx, tx, hash)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, ErrNotFound.WithDetails(map[string]any{"staff_hash": hash.String()})
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	record.IsActive = false
	if err := s.staff.Update(tx, record); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.commit(ctx, tx); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	s.logger.Info("staff revoked", zap.String("staff_hash", hash.String()))
	s.publish(ctx, events.Event{
		Type:      events.EventStaffRevoked,
		Hash:      hash.String(),
		Actor:     owner,
		Timestamp: now,
	})
	return record, nil
}

// IsStaffActive is false for unknown hashes and for revoked records.
func (s *RegistryService) IsStaffActive(ctx context.Context, hash domain.Hash) (bool, error) {
	record, err := s.GetStaffRecord(ctx, hash)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return record.IsActive, nil
}

// GetStaffRecord returns the record for hash, revoked or not.
func (s *RegistryService) GetStaffRecord(ctx context.Context, hash domain.Hash) (*domain.StaffRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, err := s.staff.GetByHash(ctx, repository.NewTxn(s.store), hash)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, ErrNotFound.WithDetails(map[string]any{"staff_hash": hash.String()})
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return record, nil
}

// IsStaffRegistered reports whether hash was ever registered.
func (s *RegistryService) IsStaffRegistered(ctx context.Context, hash domain.Hash) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	registered, err := s.staff.IsRegistered(ctx, repository.NewTxn(s.store), hash)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	return registered, nil
}

// TotalStaff returns the number of registered hashes, revoked included.
func (s *RegistryService) TotalStaff(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.staff.Count(ctx, repository.NewTxn(s.store))
	if err != nil {
		return 0, apperrors.NewInternalError(err)
	}
	return n, nil
}

// ListStaffHashes returns every registered hash in registration order.
func (s *RegistryService) ListStaffHashes(ctx context.Context) ([]domain.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hashes, err := s.staff.List(ctx, repository.NewTxn(s.store))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return hashes, nil
}
