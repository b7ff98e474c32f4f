package dto

import "time"

// InitializeRequest payload.
type InitializeRequest struct {
	Owner string `json:"owner"`
}

// TransferOwnershipRequest payload.
type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

// OwnerResponse payload.
type OwnerResponse struct {
	Owner string `json:"owner"`
}

// RegisterStaffRequest payload.
type RegisterStaffRequest struct {
	StaffHash string `json:"staff_hash"`
}

// RecordBatchRequest payload. StaffCount is signed so that negative input is
// reported as a validation error rather than a decode failure.
type RecordBatchRequest struct {
	BatchHash  string `json:"batch_hash"`
	StaffCount int64  `json:"staff_count"`
}

// StaffRecordResponse payload.
type StaffRecordResponse struct {
	StaffHash    string    `json:"staff_hash"`
	RegisteredBy string    `json:"registered_by"`
	RegisteredAt time.Time `json:"registered_at"`
	IsActive     bool      `json:"is_active"`
}

// PayrollBatchResponse payload.
type PayrollBatchResponse struct {
	BatchHash  string    `json:"batch_hash"`
	UploadedBy string    `json:"uploaded_by"`
	Timestamp  time.Time `json:"timestamp"`
	StaffCount uint32    `json:"staff_count"`
}

// HashListResponse is the full enumeration of one ledger.
type HashListResponse struct {
	Total  uint64   `json:"total"`
	Hashes []string `json:"hashes"`
}

// CountResponse payload.
type CountResponse struct {
	Total uint64 `json:"total"`
}

// StatusResponse answers the boolean lookups.
type StatusResponse struct {
	Hash  string `json:"hash"`
	Value bool   `json:"value"`
}
