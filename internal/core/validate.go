package core

import (
	"regexp"
	"strings"

	"fleetcore/pkg/domain"
)

var imoNumberPattern = regexp.MustCompile(`^\d{7}$`)

// ValidateShip checks a candidate ship against field requirements and fleet
// uniqueness. excludeID names the record under edit so a ship may keep its
// own IMO number.
func ValidateShip(view domain.RuleView, ship domain.Ship, excludeID string) error {
	verr := domain.NewValidationError()
	if strings.TrimSpace(ship.Name) == "" {
		verr.Add("name", "name is required")
	}
	switch {
	case strings.TrimSpace(ship.IMONumber) == "":
		verr.Add("imoNumber", "IMO number is required")
	case !imoNumberPattern.MatchString(ship.IMONumber):
		verr.Add("imoNumber", "IMO number must be exactly 7 digits")
	default:
		for _, other := range view.ListShips() {
			if other.ID != excludeID && other.IMONumber == ship.IMONumber {
				verr.Add("imoNumber", "IMO number already in use")
				break
			}
		}
	}
	if strings.TrimSpace(ship.Flag) == "" {
		verr.Add("flag", "flag is required")
	}
	if !validShipStatus(ship.Status) {
		verr.Add("status", "unknown ship status")
	}
	return verr.Err()
}

// ValidateComponent checks a candidate component: required fields, an
// existing parent ship, serial uniqueness, and maintenance-date ordering.
func ValidateComponent(view domain.RuleView, component domain.Component, excludeID string) error {
	verr := domain.NewValidationError()
	if component.ShipID == "" {
		verr.Add("shipId", "ship is required")
	} else if _, ok := view.FindShip(component.ShipID); !ok {
		verr.Add("shipId", "ship does not exist")
	}
	if strings.TrimSpace(component.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(component.SerialNumber) == "" {
		verr.Add("serialNumber", "serial number is required")
	} else {
		for _, other := range view.ListComponents() {
			if other.ID != excludeID && other.SerialNumber == component.SerialNumber {
				verr.Add("serialNumber", "serial number already in use")
				break
			}
		}
	}
	if component.InstallDate.IsZero() {
		verr.Add("installDate", "install date is required")
	}
	if component.LastMaintenanceDate.IsZero() {
		verr.Add("lastMaintenanceDate", "last maintenance date is required")
	} else if !component.InstallDate.IsZero() && component.LastMaintenanceDate.Before(component.InstallDate) {
		verr.Add("lastMaintenanceDate", "last maintenance date cannot precede install date")
	}
	return verr.Err()
}

// ValidateJob checks a candidate job: required fields, enum membership, and
// that the selected component is installed on the selected ship.
func ValidateJob(view domain.RuleView, job domain.Job) error {
	verr := domain.NewValidationError()
	if job.ShipID == "" {
		verr.Add("shipId", "ship is required")
	} else if _, ok := view.FindShip(job.ShipID); !ok {
		verr.Add("shipId", "ship does not exist")
	}
	if job.ComponentID == "" {
		verr.Add("componentId", "component is required")
	} else if component, ok := view.FindComponent(job.ComponentID); !ok {
		verr.Add("componentId", "component does not exist")
	} else if job.ShipID != "" && component.ShipID != job.ShipID {
		verr.Add("componentId", "component is not installed on the selected ship")
	}
	if !validJobType(job.Type) {
		verr.Add("type", "unknown job type")
	}
	if !validJobPriority(job.Priority) {
		verr.Add("priority", "unknown job priority")
	}
	if job.Status != "" && !validJobStatus(job.Status) {
		verr.Add("status", "unknown job status")
	}
	if job.ScheduledDate.IsZero() {
		verr.Add("scheduledDate", "scheduled date is required")
	}
	return verr.Err()
}

func validShipStatus(status domain.ShipStatus) bool {
	for _, s := range domain.ShipStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

func validJobType(t domain.JobType) bool {
	switch t {
	case domain.JobTypeInspection, domain.JobTypeRepair, domain.JobTypeReplacement, domain.JobTypeCleaning:
		return true
	}
	return false
}

func validJobPriority(p domain.JobPriority) bool {
	for _, known := range domain.JobPriorities() {
		if known == p {
			return true
		}
	}
	return false
}

func validJobStatus(s domain.JobStatus) bool {
	for _, known := range domain.JobStatuses() {
		if known == s {
			return true
		}
	}
	return false
}
