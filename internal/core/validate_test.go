package core

import (
	"errors"
	"testing"

	"fleetcore/internal/infra/persistence/memory"
	"fleetcore/pkg/domain"
)

func seededView(t *testing.T) domain.RuleView {
	t.Helper()
	return storeView{store: memory.NewSeededStore(nil)}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return verr.Fields
}

func TestValidateShipFieldRequirements(t *testing.T) {
	view := seededView(t)

	fields := fieldsOf(t, ValidateShip(view, Ship{}, ""))
	for _, field := range []string{"name", "imoNumber", "flag", "status"} {
		if fields[field] == "" {
			t.Errorf("expected message for %s, got %v", field, fields)
		}
	}

	fields = fieldsOf(t, ValidateShip(view, Ship{Name: "X", IMONumber: "12345", Flag: "PA", Status: domain.ShipStatusActive}, ""))
	if fields["imoNumber"] != "IMO number must be exactly 7 digits" {
		t.Fatalf("short imo: %v", fields)
	}
	fields = fieldsOf(t, ValidateShip(view, Ship{Name: "X", IMONumber: "12a4567", Flag: "PA", Status: domain.ShipStatusActive}, ""))
	if fields["imoNumber"] == "" {
		t.Fatalf("non-numeric imo must fail: %v", fields)
	}

	if err := ValidateShip(view, Ship{Name: "X", IMONumber: "1234567", Flag: "PA", Status: domain.ShipStatusActive}, ""); err != nil {
		t.Fatalf("valid ship rejected: %v", err)
	}
}

func TestValidateComponentFieldRequirements(t *testing.T) {
	view := seededView(t)

	fields := fieldsOf(t, ValidateComponent(view, Component{}, ""))
	for _, field := range []string{"shipId", "name", "serialNumber", "installDate", "lastMaintenanceDate"} {
		if fields[field] == "" {
			t.Errorf("expected message for %s, got %v", field, fields)
		}
	}

	fields = fieldsOf(t, ValidateComponent(view, Component{
		ShipID:              "missing",
		Name:                "X",
		SerialNumber:        "SN-1",
		InstallDate:         domain.MustParseDate("2024-01-01"),
		LastMaintenanceDate: domain.MustParseDate("2024-02-01"),
	}, ""))
	if fields["shipId"] != "ship does not exist" {
		t.Fatalf("missing ship: %v", fields)
	}
}

func TestValidateJobEnumMembership(t *testing.T) {
	view := seededView(t)
	component := view.ListComponents()[0]

	job := Job{
		ShipID:        component.ShipID,
		ComponentID:   component.ID,
		Type:          "Overhaul",
		Priority:      "Urgent",
		Status:        "Paused",
		ScheduledDate: domain.MustParseDate("2025-07-01"),
	}
	fields := fieldsOf(t, ValidateJob(view, job))
	for _, field := range []string{"type", "priority", "status"} {
		if fields[field] == "" {
			t.Errorf("expected message for %s, got %v", field, fields)
		}
	}

	job.Type = domain.JobTypeRepair
	job.Priority = domain.JobPriorityHigh
	job.Status = ""
	if err := ValidateJob(view, job); err != nil {
		t.Fatalf("empty status defaults later and must pass: %v", err)
	}
}
