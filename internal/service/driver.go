package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/repository"
)

// DriverService manages the driver registry: registration, admin
// approval, and tricycle assignment. Admin mutations are audited.
type DriverService struct {
	driverRepo repository.DriverRepository
	audit      *AuditService
}

// NewDriverService creates a new DriverService.
func NewDriverService(driverRepo repository.DriverRepository, audit *AuditService) *DriverService {
	return &DriverService{
		driverRepo: driverRepo,
		audit:      audit,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name      string
	Phone     string
	VehicleID string
}

// Register creates a driver awaiting admin approval.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidDriverID
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, ErrInvalidPhone
	}

	driver := &domain.Driver{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		VehicleID: req.VehicleID,
		Status:    domain.DriverStatusPendingApproval,
		CreatedAt: time.Now(),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

// Approve marks a driver approved so they can join the queue.
func (s *DriverService) Approve(ctx context.Context, driverID, adminID string) error {
	return s.setStatus(ctx, driverID, adminID, domain.DriverStatusApproved, "approve")
}

// Reject marks a driver rejected.
func (s *DriverService) Reject(ctx context.Context, driverID, adminID string) error {
	return s.setStatus(ctx, driverID, adminID, domain.DriverStatusRejected, "reject")
}

func (s *DriverService) setStatus(ctx context.Context, driverID, adminID string, status domain.DriverStatus, action string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	before, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, status); err != nil {
		return err
	}

	after := *before
	after.Status = status
	if s.audit != nil {
		s.audit.Record(ctx, "drivers", action, adminID, driverID, before, &after)
	}

	return nil
}

// ReassignVehicle changes the tricycle assigned to a driver.
func (s *DriverService) ReassignVehicle(ctx context.Context, driverID, vehicleID, adminID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	before, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}

	if err := s.driverRepo.UpdateVehicle(ctx, driverID, vehicleID); err != nil {
		return err
	}

	after := *before
	after.VehicleID = vehicleID
	if s.audit != nil {
		s.audit.Record(ctx, "drivers", "vehicle_reassign", adminID, driverID, before, &after)
	}

	return nil
}

// Get retrieves a driver by ID.
func (s *DriverService) Get(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// GetAll retrieves all drivers.
func (s *DriverService) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}
