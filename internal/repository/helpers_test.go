package repository

import (
	"time"

	"github.com/spec-kit/payroll-registry/internal/domain"
)

const testOwner = domain.Identity("0x52908400098527886e0f7030069857d2e4169ee7")

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func hashOf(b byte) domain.Hash {
	var h domain.Hash
	h[0] = b
	h[31] = b
	return h
}

func newStaffRecord(h domain.Hash) *domain.StaffRecord {
	return &domain.StaffRecord{
		StaffHash:    h,
		RegisteredBy: testOwner,
		RegisteredAt: testTime,
		IsActive:     true,
	}
}

func newPayrollBatch(h domain.Hash, count uint32) *domain.PayrollBatch {
	return &domain.PayrollBatch{
		BatchHash:  h,
		UploadedBy: testOwner,
		Timestamp:  testTime,
		StaffCount: count,
	}
}
