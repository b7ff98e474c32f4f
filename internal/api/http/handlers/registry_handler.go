package handlers

import (
	"math"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/payroll-registry/internal/api/dto"
	"github.com/spec-kit/payroll-registry/internal/domain"
	"github.com/spec-kit/payroll-registry/internal/service"
	apperrors "github.com/spec-kit/payroll-registry/pkg/util/errorutil"
)

// RegistryHandler exposes owner, staff and batch endpoints.
type RegistryHandler struct {
	registry *service.RegistryService
}

// NewRegistryHandler constructs handler.
func NewRegistryHandler(registry *service.RegistryService) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

// Initialize handles POST /registry/initialize.
func (h *RegistryHandler) Initialize(c *fiber.Ctx) error {
	var req dto.InitializeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	owner, err := parseIdentity(req.Owner)
	if err != nil {
		return err
	}
	if err := h.registry.Initialize(c.UserContext(), owner); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.OwnerResponse{Owner: owner.String()}})
}

// GetOwner handles GET /registry/owner.
func (h *RegistryHandler) GetOwner(c *fiber.Ctx) error {
	owner, err := h.registry.Owner(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.OwnerResponse{Owner: owner.String()}})
}

// TransferOwnership handles POST /registry/owner/transfer.
func (h *RegistryHandler) TransferOwnership(c *fiber.Ctx) error {
	var req dto.TransferOwnershipRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	newOwner, err := parseIdentity(req.NewOwner)
	if err != nil {
		return err
	}
	if err := h.registry.TransferOwnership(c.UserContext(), newOwner); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.OwnerResponse{Owner: newOwner.String()}})
}

// RegisterStaff handles POST /registry/staff.
func (h *RegistryHandler) RegisterStaff(c *fiber.Ctx) error {
	var req dto.RegisterStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	hash, err := parseHash(req.StaffHash)
	if err != nil {
		return err
	}
	record, err := h.registry.RegisterStaff(c.UserContext(), hash)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": staffRecordResponse(record)})
}

// RevokeStaff handles POST /registry/staff/:hash/revoke.
func (h *RegistryHandler) RevokeStaff(c *fiber.Ctx) error {
	hash, err := parseHash(c.Params("hash"))
	if err != nil {
		return err
	}
	record, err := h.registry.RevokeStaff(c.UserContext(), hash)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffRecordResponse(record)})
}

// GetStaff handles GET /registry/staff/:hash.
func (h *RegistryHandler) GetStaff(c *fiber.Ctx) error {
	hash, err := parseHash(c.Params("hash"))
	if err != nil {
		return err
	}
	record, err := h.registry.GetStaffRecord(c.UserContext(), hash)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffRecordResponse(record)})
}

// IsStaffActive handles GET /registry/staff/:hash/active.
func (h *RegistryHandler) IsStaffActive(c *fiber.Ctx) error {
	hash, err := parseHash(c.Params("hash"))
	if err != nil {
		return err
	}
	active, err := h.registry.IsStaffActive(c.UserContext(), hash)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatusResponse{Hash: hash.String(), Value: active}})
}

// IsStaffRegistered handles GET /registry/staff/:hash/registered.
func (h *RegistryHandler) IsStaffRegistered(c *fiber.Ctx) error {
	hash, err := parseHash(c.Params("hash"))
	if err != nil {
		return err
	}
	registered, err := h.registry.IsStaffRegistered(c.UserContext(), hash)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatusResponse{Hash: hash.String(), Value: registered}})
}

// CountStaff handles GET /registry/staff/count.
func (h *RegistryHandler) CountStaff(c *fiber.Ctx) error {
	total, err := h.registry.TotalStaff(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CountResponse{Total: total}})
}

// ListStaff handles GET /registry/staff.
func (h *RegistryHandler) ListStaff(c *fiber.Ctx) error {
	hashes, err := h.registry.ListStaffHashes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": hashListResponse(hashes)})
}

// RecordBatch handles POST /registry/batches.
func (h *RegistryHandler) RecordBatch(c *fiber.Ctx) error {
	var req dto.RecordBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	hash, err := parseHash(req.BatchHash)
	if err != nil {
		return err
	}
	if req.StaffCount < 0 || req.StaffCount > math.MaxUint32 {
		return apperrors.NewValidationError("staff_count out of range", map[string]any{"staff_count": req.StaffCount})
	}
	batch, err := h.registry.RecordPayrollBatch(c.UserContext(), hash, uint32(req.StaffCount))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": payrollBatchResponse(batch)})
}

// GetBatch handles GET /registry/batches/:hash.
func (h *RegistryHandler) GetBatch(c *fiber.Ctx) error {
	hash, err := parseHash(c.Params("hash"))
	if err != nil {
		return err
	}
	batch, err := h.registry.GetPayrollBatch(c.UserContext(), hash)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": payrollBatchResponse(batch)})
}

// IsBatchRecorded handles GET /registry/batches/:hash/recorded.
func (h *RegistryHandler) IsBatchRecorded(c *fiber.Ctx) error {
	hash, err := parseHash(c.Params("hash"))
	if err != nil {
		return err
	}
	recorded, err := h.registry.IsBatchRecorded(c.UserContext(), hash)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatusResponse{Hash: hash.String(), Value: recorded}})
}

// CountBatches handles GET /registry/batches/count.
func (h *RegistryHandler) CountBatches(c *fiber.Ctx) error {
	total, err := h.registry.TotalBatches(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CountResponse{Total: total}})
}

// ListBatches handles GET /registry/batches.
func (h *RegistryHandler) ListBatches(c *fiber.Ctx) error {
	hashes, err := h.registry.ListBatchHashes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": hashListResponse(hashes)})
}

func parseHash(raw string) (domain.Hash, error) {
	hash, err := domain.ParseHash(raw)
	if err != nil {
		return hash, apperrors.NewValidationError(err.Error(), map[string]any{"hash": raw})
	}
	return hash, nil
}

func parseIdentity(raw string) (domain.Identity, error) {
	id, err := domain.ParseIdentity(raw)
	if err != nil {
		return "", service.ErrInvalidIdentity.WithDetails(map[string]any{"identity": raw})
	}
	return id, nil
}

func staffRecordResponse(record *domain.StaffRecord) dto.StaffRecordResponse {
	return dto.StaffRecordResponse{
		StaffHash:    record.StaffHash.String(),
		RegisteredBy: record.RegisteredBy.String(),
		RegisteredAt: record.RegisteredAt,
		IsActive:     record.IsActive,
	}
}

func payrollBatchResponse(batch *domain.PayrollBatch) dto.PayrollBatchResponse {
	return dto.PayrollBatchResponse{
		BatchHash:  batch.BatchHash.String(),
		UploadedBy: batch.UploadedBy.String(),
		Timestamp:  batch.Timestamp,
		StaffCount: batch.StaffCount,
	}
}

func hashListResponse(hashes []domain.Hash) dto.HashListResponse {
	out := dto.HashListResponse{Total: uint64(len(hashes)), Hashes: make([]string, 0, len(hashes))}
	for _, h := range hashes {
		out.Hashes = append(out.Hashes, h.String())
	}
	return out
}
