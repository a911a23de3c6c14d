package core

import "fleetcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	ShipStatus         = domain.ShipStatus
	JobType            = domain.JobType
	JobPriority        = domain.JobPriority
	JobStatus          = domain.JobStatus
	NotificationType   = domain.NotificationType
	Severity           = domain.Severity
	Base               = domain.Base
	Date               = domain.Date
	Ship               = domain.Ship
	Component          = domain.Component
	Job                = domain.Job
	Notification       = domain.Notification
	Role               = domain.Role
	User               = domain.User
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	ValidationError    = domain.ValidationError
)

const (
	EntityShip         = domain.EntityShip
	EntityComponent    = domain.EntityComponent
	EntityJob          = domain.EntityJob
	EntityNotification = domain.EntityNotification
)

const (
	RoleAdmin     = domain.RoleAdmin
	RoleInspector = domain.RoleInspector
	RoleEngineer  = domain.RoleEngineer
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
