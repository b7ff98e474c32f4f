package domain

import "time"

// PayrollBatch attests that a payroll batch with the given hash was uploaded.
// It is immutable once recorded.
type PayrollBatch struct {
	BatchHash  Hash      `json:"batch_hash"`
	UploadedBy Identity  `json:"uploaded_by"`
	Timestamp  time.Time `json:"timestamp"`
	StaffCount uint32    `json:"staff_count"`
}
