// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by fleetcore.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityShip identifies a ship record.
	EntityShip EntityType = "ship"
	// EntityComponent identifies an installed component record.
	EntityComponent EntityType = "component"
	// EntityJob identifies a maintenance job record.
	EntityJob EntityType = "job"
	// EntityNotification identifies a notification feed record.
	EntityNotification EntityType = "notification"
)

// ShipStatus represents the operational state of a ship.
type ShipStatus string

// Canonical ship statuses shown in fleet listings and status charts.
const (
	ShipStatusActive           ShipStatus = "Active"
	ShipStatusUnderMaintenance ShipStatus = "Under Maintenance"
	ShipStatusInactive         ShipStatus = "Inactive"
)

// ShipStatuses lists every ship status in display order.
func ShipStatuses() []ShipStatus {
	return []ShipStatus{ShipStatusActive, ShipStatusUnderMaintenance, ShipStatusInactive}
}

// JobType enumerates the kinds of maintenance work tracked against components.
type JobType string

// Canonical maintenance job types.
const (
	JobTypeInspection  JobType = "Inspection"
	JobTypeRepair      JobType = "Repair"
	JobTypeReplacement JobType = "Replacement"
	JobTypeCleaning    JobType = "Cleaning"
)

// JobPriority ranks the urgency of a maintenance job.
type JobPriority string

// Canonical job priorities in ascending urgency.
const (
	JobPriorityLow      JobPriority = "Low"
	JobPriorityMedium   JobPriority = "Medium"
	JobPriorityHigh     JobPriority = "High"
	JobPriorityCritical JobPriority = "Critical"
)

// JobPriorities lists every job priority in ascending order.
func JobPriorities() []JobPriority {
	return []JobPriority{JobPriorityLow, JobPriorityMedium, JobPriorityHigh, JobPriorityCritical}
}

// JobStatus enumerates the maintenance job workflow states.
type JobStatus string

// Canonical job statuses used for scheduling and dashboard aggregation.
const (
	JobStatusOpen       JobStatus = "Open"
	JobStatusInProgress JobStatus = "In Progress"
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusCancelled  JobStatus = "Cancelled"
)

// JobStatuses lists every job status in workflow order.
func JobStatuses() []JobStatus {
	return []JobStatus{JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled}
}

// NotificationType classifies entries in the notification feed.
type NotificationType string

// Notification taxonomy. NotificationJobCompleted is defined for feed
// consumers but no core flow emits it today; completion is reported as a
// regular update.
const (
	NotificationJobCreated   NotificationType = "job_created"
	NotificationJobUpdated   NotificationType = "job_updated"
	NotificationJobCompleted NotificationType = "job_completed"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ship represents a vessel in the managed fleet.
type Ship struct {
	Base
	Name      string     `json:"name"`
	IMONumber string     `json:"imo_number"`
	Flag      string     `json:"flag"`
	Status    ShipStatus `json:"status"`
}

// Component represents equipment installed on exactly one ship.
type Component struct {
	Base
	ShipID              string `json:"ship_id"`
	Name                string `json:"name"`
	SerialNumber        string `json:"serial_number"`
	InstallDate         Date   `json:"install_date"`
	LastMaintenanceDate Date   `json:"last_maintenance_date"`
}

// Job captures scheduled or completed maintenance work on a component.
type Job struct {
	Base
	ShipID             string      `json:"ship_id"`
	ComponentID        string      `json:"component_id"`
	Type               JobType     `json:"type"`
	Priority           JobPriority `json:"priority"`
	Status             JobStatus   `json:"status"`
	AssignedEngineerID string      `json:"assigned_engineer_id"`
	ScheduledDate      Date        `json:"scheduled_date"`
	CompletedDate      *Date       `json:"completed_date,omitempty"`
	Description        string      `json:"description,omitempty"`
}

// Notification is an entry in the in-app feed. It carries denormalized
// message text only and does not link back to the job it describes.
type Notification struct {
	Base
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Read    bool             `json:"read"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
