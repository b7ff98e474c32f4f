package events

import (
	"time"

	"github.com/spec-kit/payroll-registry/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRegistryInitialized  EventType = "registry_initialized"
	EventOwnershipTransferred EventType = "ownership_transferred"
	EventStaffRegistered      EventType = "staff_registered"
	EventStaffRevoked         EventType = "staff_revoked"
	EventBatchRecorded        EventType = "batch_recorded"
)

// AllEventTypes lists every type the registry emits.
var AllEventTypes = []EventType{
	EventRegistryInitialized,
	EventOwnershipTransferred,
	EventStaffRegistered,
	EventStaffRevoked,
	EventBatchRecorded,
}

// Event represents a committed registry transition. Hash is empty for
// ownership events.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Hash      string          `json:"hash,omitempty"`
	Actor     domain.Identity `json:"actor"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   interface{}     `json:"payload,omitempty"`
}

// BatchRecordedPayload payload.
type BatchRecordedPayload struct {
	StaffCount uint32 `json:"staff_count"`
}

// OwnershipTransferredPayload payload.
type OwnershipTransferredPayload struct {
	PreviousOwner domain.Identity `json:"previous_owner"`
	NewOwner      domain.Identity `json:"new_owner"`
}
