package core

import (
	"context"
	"fmt"
	"time"

	"fleetcore/internal/infra/persistence/memory"
	"fleetcore/pkg/domain"
)

// Service exposes the transactional fleet operations: entity CRUD behind
// validation, authorization gating, notification emission, and the derived
// dashboard views. All observability hooks are optional and default to no-ops.
type Service struct {
	store   PersistentStore
	session *SessionManager
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
	nowFn   func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger injects a structured logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder injects a metrics sink for operation outcomes.
func WithMetricsRecorder(metrics MetricsRecorder) Option {
	return func(s *Service) { s.metrics = metrics }
}

// WithTracer injects a tracer wrapping each operation in a span.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// WithAuditRecorder injects an audit sink for completed mutations.
func WithAuditRecorder(audit AuditRecorder) Option {
	return func(s *Service) { s.audit = audit }
}

// WithSessionManager attaches a session whose role gates mutations. Without
// one the service performs no authorization checks.
func WithSessionManager(session *SessionManager) Option {
	return func(s *Service) { s.session = session }
}

// WithNowFunc overrides the clock used for audit timestamps and KPI windows.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: noopLogger{},
		nowFn:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	return NewService(memory.NewSeededStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// Session returns the attached session manager, or nil when authorization is
// not gated.
func (s *Service) Session() *SessionManager {
	return s.session
}

// ErrNotFound is returned when reference validation fails within
// transactional helpers.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ErrPermissionDenied is returned when the session role may not modify the
// target entity type.
type ErrPermissionDenied struct {
	Role   Role
	Entity EntityType
}

func (e ErrPermissionDenied) Error() string {
	return fmt.Sprintf("role %s may not modify %s records", e.Role, e.Entity)
}

func (s *Service) authorize(entity EntityType) error {
	if s.session == nil {
		return nil
	}
	user, ok := s.session.CurrentUser()
	if !ok {
		return ErrNotAuthenticated
	}
	if !domain.CanModify(user.Role, entity) {
		return ErrPermissionDenied{Role: user.Role, Entity: entity}
	}
	return nil
}

func (s *Service) actor() string {
	if s.session == nil {
		return ""
	}
	if user, ok := s.session.CurrentUser(); ok {
		return user.Email
	}
	return ""
}

// instrument wraps one mutation in the observability hooks: a trace span, a
// metrics observation, an audit entry, and a log line on failure.
func (s *Service) instrument(ctx context.Context, operation string, entity EntityType, action Action, fn func(ctx context.Context) (string, error)) error {
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	started := s.nowFn()
	entityID, err := fn(ctx)
	s.finish(ctx, operation, entity, entityID, action, started, err)
	if span != nil {
		span.End(err)
	}
	return err
}

func (s *Service) finish(ctx context.Context, operation string, entity EntityType, entityID string, action Action, started time.Time, err error) {
	duration := s.nowFn().Sub(started)
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, duration)
	}
	if s.audit != nil {
		entry := AuditEntry{
			Operation: operation,
			Entity:    entity,
			EntityID:  entityID,
			Action:    action,
			Actor:     s.actor(),
			Status:    AuditStatusSuccess,
			Duration:  duration,
			Timestamp: started,
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
		}
		s.audit.Record(ctx, entry)
	}
	if err != nil {
		s.logger.Warn("operation failed", "operation", operation, "error", err)
	} else {
		s.logger.Debug("operation completed", "operation", operation, "entity_id", entityID)
	}
}

// storeView adapts the read side of the persistent store to the rule view
// consumed by field validation.
type storeView struct {
	store PersistentStore
}

func (v storeView) ListShips() []Ship                    { return v.store.ListShips() }
func (v storeView) ListComponents() []Component          { return v.store.ListComponents() }
func (v storeView) ListJobs() []Job                      { return v.store.ListJobs() }
func (v storeView) FindShip(id string) (Ship, bool)      { return v.store.GetShip(id) }
func (v storeView) FindComponent(id string) (Component, bool) {
	return v.store.GetComponent(id)
}
func (v storeView) FindJob(id string) (Job, bool) { return v.store.GetJob(id) }

func (s *Service) view() domain.RuleView {
	return storeView{store: s.store}
}

// CreateShip validates and persists a new ship.
func (s *Service) CreateShip(ctx context.Context, ship Ship) (Ship, Result, error) {
	var created Ship
	var res Result
	err := s.instrument(ctx, "create_ship", EntityShip, ActionCreate, func(ctx context.Context) (string, error) {
		if err := s.authorize(EntityShip); err != nil {
			return "", err
		}
		if err := ValidateShip(s.view(), ship, ""); err != nil {
			return "", err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateShip(ship)
			return txErr
		})
		return created.ID, err
	})
	return created, res, err
}

// UpdateShip mutates a ship using the provided mutator and re-validates the
// result before commit.
func (s *Service) UpdateShip(ctx context.Context, id string, mutator func(*Ship) error) (Ship, Result, error) {
	var updated Ship
	var res Result
	err := s.instrument(ctx, "update_ship", EntityShip, ActionUpdate, func(ctx context.Context) (string, error) {
		if err := s.authorize(EntityShip); err != nil {
			return id, err
		}
		view := s.view()
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateShip(id, func(ship *Ship) error {
				if mErr := mutator(ship); mErr != nil {
					return mErr
				}
				return ValidateShip(view, *ship, id)
			})
			return txErr
		})
		return id, err
	})
	return updated, res, err
}

// DeleteShip removes a ship. Ships with installed components or open history
// of jobs cannot be deleted.
func (s *Service) DeleteShip(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.instrument(ctx, "delete_ship", EntityShip, ActionDelete, func(ctx context.Context) (string, error) {
		if err := s.authorize(EntityShip); err != nil {
			return id, err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteShip(id)
		})
		return id, err
	})
	return res, err
}

// CreateComponent validates and persists a new component installation.
func (s *Service) CreateComponent(ctx context.Context, component Component) (Component, Result, error) {
	var created Component
	var res Result
	err := s.instrument(ctx, "create_component", EntityComponent, ActionCreate, func(ctx context.Context) (string, error) {
		if err := s.authorize(EntityComponent); err != nil {
			return "", err
		}
		if err := ValidateComponent(s.view(), component, ""); err != nil {
			return "", err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateComponent(component)
			return txErr
		})
		return created.ID, err
	})
	return created, res, err
}

// UpdateComponent mutates a component and re-validates the result before
// commit. Serial uniqueness excludes the record under edit.
func (s *Service) UpdateComponent(ctx context.Context, id string, mutator func(*Component) error) (Component, Result, error) {
	var updated Component
	var res Result
	err := s.instrument(ctx, "update_component", EntityComponent, ActionUpdate, func(ctx context.Context) (string, error) {
		if err := s.authorize(EntityComponent); err != nil {
			return id, err
		}
		view := s.view()
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateComponent(id, func(component *Component) error {
				if mErr := mutator(component); mErr != nil {
					return mErr
				}
				return ValidateComponent(view, *component, id)
			})
			return txErr
		})
		return id, err
	})
	return updated, res, err
}

// DeleteComponent removes a component. Components referenced by jobs cannot
// be deleted.
func (s *Service) DeleteComponent(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.instrument(ctx, "delete_component", EntityComponent, ActionDelete, func(ctx context.Context) (string, error) {
		if err := s.authorize(EntityComponent); err != nil {
			return id, err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteComponent(id)
		})
		return id, err
	})
	return res, err
}

// CreateJob validates and persists a new maintenance job, emitting a
// job_created notification in the same transaction.
func (s *Service) CreateJob(ctx context.Context, job Job) (Job, Result, error) {
	var created Job
	var res Result
	err := s.instrument(ctx, "create_job", EntityJob, ActionCreate, func(ctx context.Context) (string, error) {
		if err := s.authorize(EntityJob); err != nil {
			return "", err
		}
		view := s.view()
		if err := ValidateJob(view, job); err != nil {
			return "", err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateJob(job)
			if txErr != nil {
				return txErr
			}
			_, txErr = tx.AddNotification(Notification{
				Type:    domain.NotificationJobCreated,
				Title:   "New Job Created",
				Message: jobCreatedMessage(view, created),
			})
			return txErr
		})
		return created.ID, err
	})
	return created, res, err
}

// UpdateJob mutates a job and emits a job_updated notification in the same
// transaction. A transition into Completed stamps the completion date.
func (s *Service) UpdateJob(ctx context.Context, id string, mutator func(*Job) error) (Job, Result, error) {
	var updated Job
	var res Result
	err := s.instrument(ctx, "update_job", EntityJob, ActionUpdate, func(ctx context.Context) (string, error) {
		if err := s.authorize(EntityJob); err != nil {
			return id, err
		}
		view := s.view()
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateJob(id, func(job *Job) error {
				if mErr := mutator(job); mErr != nil {
					return mErr
				}
				return ValidateJob(view, *job)
			})
			if txErr != nil {
				return txErr
			}
			_, txErr = tx.AddNotification(Notification{
				Type:    domain.NotificationJobUpdated,
				Title:   "Job Updated",
				Message: jobUpdatedMessage(view, updated),
			})
			return txErr
		})
		return id, err
	})
	return updated, res, err
}

// DeleteJob removes a job record.
func (s *Service) DeleteJob(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.instrument(ctx, "delete_job", EntityJob, ActionDelete, func(ctx context.Context) (string, error) {
		if err := s.authorize(EntityJob); err != nil {
			return id, err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteJob(id)
		})
		return id, err
	})
	return res, err
}

func jobCreatedMessage(view domain.RuleView, job Job) string {
	ship, component := jobContext(view, job)
	return fmt.Sprintf("%s scheduled for %s on %s", job.Type, component, ship)
}

func jobUpdatedMessage(view domain.RuleView, job Job) string {
	ship, component := jobContext(view, job)
	return fmt.Sprintf("%s for %s on %s has been updated", job.Type, component, ship)
}

func jobContext(view domain.RuleView, job Job) (shipName, componentName string) {
	shipName, componentName = "unknown ship", "unknown component"
	if ship, ok := view.FindShip(job.ShipID); ok {
		shipName = ship.Name
	}
	if component, ok := view.FindComponent(job.ComponentID); ok {
		componentName = component.Name
	}
	return shipName, componentName
}

// MarkNotificationRead flags one notification as read.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.instrument(ctx, "mark_notification_read", EntityNotification, ActionUpdate, func(ctx context.Context) (string, error) {
		if err := s.authorize(EntityNotification); err != nil {
			return id, err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.MarkNotificationRead(id)
		})
		return id, err
	})
	return res, err
}

// MarkAllNotificationsRead flags the entire feed as read. Idempotent.
func (s *Service) MarkAllNotificationsRead(ctx context.Context) (Result, error) {
	var res Result
	err := s.instrument(ctx, "mark_all_notifications_read", EntityNotification, ActionUpdate, func(ctx context.Context) (string, error) {
		if err := s.authorize(EntityNotification); err != nil {
			return "", err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.MarkAllNotificationsRead()
		})
		return "", err
	})
	return res, err
}

// DeleteNotification removes one entry from the feed.
func (s *Service) DeleteNotification(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.instrument(ctx, "delete_notification", EntityNotification, ActionDelete, func(ctx context.Context) (string, error) {
		if err := s.authorize(EntityNotification); err != nil {
			return id, err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteNotification(id)
		})
		return id, err
	})
	return res, err
}

// Ships lists every ship in stable order.
func (s *Service) Ships() []Ship { return s.store.ListShips() }

// Ship fetches one ship by ID.
func (s *Service) Ship(id string) (Ship, bool) { return s.store.GetShip(id) }

// Components lists every component in stable order.
func (s *Service) Components() []Component { return s.store.ListComponents() }

// Component fetches one component by ID.
func (s *Service) Component(id string) (Component, bool) { return s.store.GetComponent(id) }

// Jobs lists every job in stable order.
func (s *Service) Jobs() []Job { return s.store.ListJobs() }

// Job fetches one job by ID.
func (s *Service) Job(id string) (Job, bool) { return s.store.GetJob(id) }

// Notifications lists the feed, newest first.
func (s *Service) Notifications() []Notification { return s.store.ListNotifications() }

// UnreadNotificationCount reports the number of unread feed entries.
func (s *Service) UnreadNotificationCount() int { return s.store.UnreadNotificationCount() }

// KPISummary derives the dashboard headline numbers as of the service clock.
func (s *Service) KPISummary() KPISummary {
	return ComputeKPISummary(s.Ships(), s.Components(), s.Jobs(), domain.DateOf(s.nowFn()))
}

// JobsByStatus derives the job status histogram.
func (s *Service) JobsByStatus() map[JobStatus]int { return JobsByStatus(s.Jobs()) }

// JobsByPriority derives the job priority histogram.
func (s *Service) JobsByPriority() map[JobPriority]int { return JobsByPriority(s.Jobs()) }

// ShipsByStatus derives the ship status histogram.
func (s *Service) ShipsByStatus() map[ShipStatus]int { return ShipsByStatus(s.Ships()) }

// Calendar buckets the month's jobs by scheduled day.
func (s *Service) Calendar(year int, month time.Month) MonthCalendar {
	return BuildMonthCalendar(s.Jobs(), year, month)
}

// JobsOn returns the jobs scheduled on exactly the given day.
func (s *Service) JobsOn(day Date) []Job { return JobsOn(s.Jobs(), day) }

// SearchShips filters ships by substring query.
func (s *Service) SearchShips(query string) []Ship { return SearchShips(s.Ships(), query) }

// SearchJobs filters jobs by query plus exact status/priority filters.
func (s *Service) SearchJobs(filter JobFilter) []Job {
	return SearchJobs(s.Jobs(), s.Ships(), s.Components(), filter)
}

// ComponentsByShip lists the components installed on one ship.
func (s *Service) ComponentsByShip(shipID string) []Component {
	return ComponentsByShip(s.Components(), shipID)
}

// JobsByShip lists the jobs targeting one ship.
func (s *Service) JobsByShip(shipID string) []Job { return JobsByShip(s.Jobs(), shipID) }

// JobsByComponent lists the jobs targeting one component.
func (s *Service) JobsByComponent(componentID string) []Job {
	return JobsByComponent(s.Jobs(), componentID)
}

// ComponentOptionsForShip restricts job component candidates to one ship and
// reports whether a prior selection had to be cleared.
func (s *Service) ComponentOptionsForShip(shipID, selectedComponentID string) ComponentOptions {
	return ComponentOptionsForShip(s.Components(), shipID, selectedComponentID)
}
