package service

import (
	"net/http"

	apperrors "github.com/spec-kit/payroll-registry/pkg/util/errorutil"
)

// Registry failure kinds. Every one aborts the call with no writes.
var (
	ErrNotInitialized     = apperrors.NewDomainError("NOT_INITIALIZED", "registry not initialized", http.StatusConflict, nil)
	ErrAlreadyInitialized = apperrors.NewDomainError("ALREADY_INITIALIZED", "registry already initialized", http.StatusConflict, nil)
	ErrUnauthorized       = apperrors.NewDomainError("UNAUTHORIZED", "caller is not authorized for this identity", http.StatusUnauthorized, nil)
	ErrInvalidHash        = apperrors.NewDomainError("INVALID_HASH", "hash must not be zero", http.StatusBadRequest, nil)
	ErrInvalidStaffCount  = apperrors.NewDomainError("INVALID_STAFF_COUNT", "staff count must be greater than zero", http.StatusBadRequest, nil)
	ErrInvalidIdentity    = apperrors.NewDomainError("INVALID_IDENTITY", "identity is not a valid address", http.StatusBadRequest, nil)
	ErrAlreadyRegistered  = apperrors.NewDomainError("ALREADY_REGISTERED", "staff already registered", http.StatusConflict, nil)
	ErrAlreadyRecorded    = apperrors.NewDomainError("ALREADY_RECORDED", "batch already recorded", http.StatusConflict, nil)
	ErrNotFound           = apperrors.NewDomainError("NOT_FOUND", "record not found", http.StatusNotFound, nil)
	ErrConcurrentUpdate   = apperrors.NewDomainError("CONCURRENT_UPDATE", "registry changed during the call, retry", http.StatusConflict, nil)
)
