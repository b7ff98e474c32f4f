package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/payroll-registry/internal/domain"
)

const ownerKey = "owner"

// ErrOwnerNotSet is returned before the registry has been initialized.
var ErrOwnerNotSet = errors.New("owner not set")

// OwnerRepository stores the single owner pointer in the instance class.
type OwnerRepository interface {
	Get(ctx context.Context, tx *Txn) (domain.Identity, error)
	Exists(ctx context.Context, tx *Txn) (bool, error)
	Set(tx *Txn, owner domain.Identity)
}

type ownerRepository struct{}

// NewOwnerRepository instantiates the repository.
func NewOwnerRepository() OwnerRepository {
	return ownerRepository{}
}

func (ownerRepository) Get(ctx context.Context, tx *Txn) (domain.Identity, error) {
	raw, err := tx.Get(ctx, ClassInstance, ownerKey)
	if errors.Is(err, ErrKeyNotFound) {
		return "", ErrOwnerNotSet
	}
	if err != nil {
		return "", err
	}
	return domain.Identity(raw), nil
}

func (r ownerRepository) Exists(ctx context.Context, tx *Txn) (bool, error) {
	_, err := r.Get(ctx, tx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrOwnerNotSet):
		return false, nil
	default:
		return false, err
	}
}

func (ownerRepository) Set(tx *Txn, owner domain.Identity) {
	tx.Set(ClassInstance, ownerKey, []byte(owner))
}
