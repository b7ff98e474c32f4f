package domain

import "time"

// StaffRecord is the registry entry for one staff identity hash.
// Records are never deleted; revocation only clears IsActive.
type StaffRecord struct {
	StaffHash    Hash      `json:"staff_hash"`
	RegisteredBy Identity  `json:"registered_by"`
	RegisteredAt time.Time `json:"registered_at"`
	IsActive     bool      `json:"is_active"`
}
