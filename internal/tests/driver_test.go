package tests

import (
	"context"
	"testing"

	"trike/internal/domain"
	"trike/internal/service"
)

func newDriverService() (*service.DriverService, *MockDriverRepository, *MockAuditRepository) {
	driverRepo := NewMockDriverRepository()
	auditRepo := NewMockAuditRepository()
	audit := service.NewAuditService(auditRepo, testLogger())
	return service.NewDriverService(driverRepo, audit), driverRepo, auditRepo
}

func TestRegisterDriver_StartsPendingApproval(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newDriverService()

	driver, err := svc.Register(ctx, service.RegisterDriverRequest{
		Name:      "Jun",
		Phone:     "09170000001",
		VehicleID: "trike-12",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if driver.Status != domain.DriverStatusPendingApproval {
		t.Errorf("expected PENDING_APPROVAL, got %s", driver.Status)
	}
	if driver.ID == "" {
		t.Error("expected a generated driver ID")
	}
}

func TestApproveDriver_UpdatesStatusAndAudits(t *testing.T) {
	ctx := context.Background()
	svc, driverRepo, auditRepo := newDriverService()

	driver, err := svc.Register(ctx, service.RegisterDriverRequest{
		Name: "Jun", Phone: "09170000001", VehicleID: "trike-12",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.Approve(ctx, driver.ID, "admin-1"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if got := driverRepo.GetDriver(driver.ID).Status; got != domain.DriverStatusApproved {
		t.Errorf("expected APPROVED, got %s", got)
	}

	records := auditRepo.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(records))
	}
	if records[0].Module != "drivers" || records[0].Action != "approve" {
		t.Errorf("unexpected audit record: module=%s action=%s", records[0].Module, records[0].Action)
	}
	if records[0].AdminID != "admin-1" || records[0].TargetID != driver.ID {
		t.Errorf("unexpected audit actor/target: %+v", records[0])
	}
}

func TestRejectDriver_UpdatesStatus(t *testing.T) {
	ctx := context.Background()
	svc, driverRepo, _ := newDriverService()

	driver, _ := svc.Register(ctx, service.RegisterDriverRequest{
		Name: "Jun", Phone: "09170000001", VehicleID: "trike-12",
	})

	if err := svc.Reject(ctx, driver.ID, "admin-1"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if got := driverRepo.GetDriver(driver.ID).Status; got != domain.DriverStatusRejected {
		t.Errorf("expected REJECTED, got %s", got)
	}
}

func TestReassignVehicle_Audited(t *testing.T) {
	ctx := context.Background()
	svc, driverRepo, auditRepo := newDriverService()

	driver, _ := svc.Register(ctx, service.RegisterDriverRequest{
		Name: "Jun", Phone: "09170000001", VehicleID: "trike-12",
	})

	if err := svc.ReassignVehicle(ctx, driver.ID, "trike-99", "admin-1"); err != nil {
		t.Fatalf("reassign failed: %v", err)
	}

	if got := driverRepo.GetDriver(driver.ID).VehicleID; got != "trike-99" {
		t.Errorf("expected trike-99, got %s", got)
	}

	records := auditRepo.Records()
	if len(records) != 1 || records[0].Action != "vehicle_reassign" {
		t.Fatalf("expected a vehicle_reassign audit record, got %+v", records)
	}
}
