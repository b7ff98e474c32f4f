package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/payroll-registry/internal/domain"
	"github.com/spec-kit/payroll-registry/internal/events"
	"github.com/spec-kit/payroll-registry/internal/repository"
	apperrors "github.com/spec-kit/payroll-registry/pkg/util/errorutil"
)

// Authorizer proves or rejects that the current caller may act as id.
type Authorizer interface {
	RequireAuth(ctx context.Context, id domain.Identity) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, id domain.Identity) error

func (f AuthorizerFunc) RequireAuth(ctx context.Context, id domain.Identity) error {
	return f(ctx, id)
}

// RegistryService owns the registry state machine: one owner, a staff ledger
// and a batch ledger over a single key-value store. Mutations are serialized
// and each one commits in a single store transaction.
type RegistryService struct {
	mu      sync.RWMutex
	store   repository.Store
	owners  repository.OwnerRepository
	staff   repository.StaffRepository
	batches repository.BatchRepository
	authz   Authorizer
	clock   Clock
	events  events.Dispatcher
	logger  *zap.Logger
}

// RegistryDependencies encapsulates collaborators required by the registry.
type RegistryDependencies struct {
	Store      repository.Store
	Authorizer Authorizer
	Clock      Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewRegistryService constructs the service. Clock, Dispatcher and Logger are optional.
func NewRegistryService(deps RegistryDependencies) *RegistryService {
	s := &RegistryService{
		store:   deps.Store,
		owners:  repository.NewOwnerRepository(),
		staff:   repository.NewStaffRepository(),
		batches: repository.NewBatchRepository(),
		authz:   deps.Authorizer,
		clock:   deps.Clock,
		events:  deps.Dispatcher,
		logger:  deps.Logger,
	}
	if s.clock == nil {
		s.clock = NewSystemClock()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Initialize stores the first owner and creates empty enumeration lists.
// It succeeds exactly once per store.
func (s *RegistryService) Initialize(ctx context.Context, owner domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := repository.NewTxn(s.store)
	exists, err := s.owners.Exists(ctx, tx)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if exists {
		return ErrAlreadyInitialized
	}
	if !owner.Valid() {
		return ErrInvalidIdentity
	}
	if err := s.authorize(ctx, owner); err != nil {
		return err
	}

	s.owners.Set(tx, owner)
	s.staff.InitIndex(tx)
	s.batches.InitIndex(tx)
	if err := s.commit(ctx, tx); err != nil {
		return err
	}

	now := s.clock.Now()
	s.logger.Info("registry initialized", zap.String("owner", owner.String()))
	s.publish(ctx, events.Event{
		Type:      events.EventRegistryInitialized,
		Actor:     owner,
		Timestamp: now,
	})
	return nil
}

// Owner returns the current owner.
func (s *RegistryService) Owner(ctx context.Context) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, err := s.owners.Get(ctx, repository.NewTxn(s.store))
	if errors.Is(err, repository.ErrOwnerNotSet) {
		return "", ErrNotInitialized
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return owner, nil
}

// TransferOwnership replaces the owner. Both the current owner and newOwner
// must authorize the call; no history is kept.
func (s *RegistryService) TransferOwnership(ctx context.Context, newOwner domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := repository.NewTxn(s.store)
	previous, err := s.requireOwner(ctx, tx)
	if err != nil {
		return err
	}
	if !newOwner.Valid() {
		return ErrInvalidIdentity
	}
	if err := s.authorize(ctx, newOwner); err != nil {
		return err
	}

	s.owners.Set(tx, newOwner)
	if err := s.commit(ctx, tx); err != nil {
		return err
	}

	now := s.clock.Now()
	s.logger.Info("ownership transferred",
		zap.String("previous_owner", previous.String()),
		zap.String("new_owner", newOwner.String()),
	)
	s.publish(ctx, events.Event{
		Type:      events.EventOwnershipTransferred,
		Actor:     previous,
		Timestamp: now,
		Payload: events.OwnershipTransferredPayload{
			PreviousOwner: previous,
			NewOwner:      newOwner,
		},
	})
	return nil
}

// requireOwner loads the owner and runs the authorization check. It must run
// before anything is buffered in tx.
func (s *RegistryService) requireOwner(ctx context.Context, tx *repository.Txn) (domain.Identity, error) {
	owner, err := s.owners.Get(ctx, tx)
	if errors.Is(err, repository.ErrOwnerNotSet) {
		return "", ErrNotInitialized
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if err := s.authorize(ctx, owner); err != nil {
		return "", err
	}
	return owner, nil
}

// commit applies tx. A conflict means another process sharing the store
// committed first; nothing was written and the caller may retry.
func (s *RegistryService) commit(ctx context.Context, tx *repository.Txn) error {
	err := tx.Commit(ctx)
	if errors.Is(err, repository.ErrConflict) {
		s.logger.Warn("registry commit conflict", zap.Error(err))
		return ErrConcurrentUpdate
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *RegistryService) authorize(ctx context.Context, id domain.Identity) error {
	if s.authz == nil {
		return ErrUnauthorized
	}
	if err := s.authz.RequireAuth(ctx, id); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		unauthorized := *ErrUnauthorized
		unauthorized.Err = err
		return &unauthorized
	}
	return nil
}

// publish hands a committed event to the sink. Sink failures never undo or
// fail the transition.
func (s *RegistryService) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	event.ID = uuid.NewString()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event sink failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}
