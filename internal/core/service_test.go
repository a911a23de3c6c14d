package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetcore/pkg/domain"
)

func newTestService(opts ...Option) *Service {
	return NewInMemoryService(NewDefaultRulesEngine(), opts...)
}

func firstShipID(t *testing.T, svc *Service) string {
	t.Helper()
	ships := svc.Ships()
	if len(ships) == 0 {
		t.Fatal("expected seeded ships")
	}
	return ships[0].ID
}

func TestCreateShipPersistsAndLists(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, _, err := svc.CreateShip(ctx, Ship{Name: "Northern Star", IMONumber: "5550001", Flag: "NO", Status: domain.ShipStatusActive})
	if err != nil {
		t.Fatalf("create ship: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected assigned id")
	}
	if got, ok := svc.Ship(created.ID); !ok || got.Name != "Northern Star" {
		t.Fatalf("lookup after create: %+v ok=%v", got, ok)
	}
	if len(svc.Ships()) != 4 {
		t.Fatalf("expected seed plus one, got %d", len(svc.Ships()))
	}
}

func TestCreateShipRejectsDuplicateIMO(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	existing := svc.Ships()[0]
	_, _, err := svc.CreateShip(ctx, Ship{Name: "Clone", IMONumber: existing.IMONumber, Flag: "PA", Status: domain.ShipStatusActive})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields["imoNumber"] != "IMO number already in use" {
		t.Fatalf("unexpected field message: %v", verr.Fields)
	}
	if len(svc.Ships()) != 3 {
		t.Fatal("failed create must not change state")
	}
}

func TestUpdateShipKeepsOwnIMO(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	id := firstShipID(t, svc)

	updated, _, err := svc.UpdateShip(ctx, id, func(ship *Ship) error {
		ship.Status = domain.ShipStatusInactive
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.ShipStatusInactive {
		t.Fatalf("status not applied: %+v", updated)
	}
}

func TestUpdateShipRejectsTakingAnotherIMO(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	ships := svc.Ships()

	_, _, err := svc.UpdateShip(ctx, ships[0].ID, func(ship *Ship) error {
		ship.IMONumber = ships[1].IMONumber
		return nil
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteShipWithDependentsFails(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var withComponents string
	for _, component := range svc.Components() {
		withComponents = component.ShipID
		break
	}
	if _, err := svc.DeleteShip(ctx, withComponents); err == nil {
		t.Fatal("expected delete to be rejected while components reference the ship")
	}
	if len(svc.Ships()) != 3 {
		t.Fatal("rejected delete must not change state")
	}
}

func TestCreateComponentRejectsDuplicateSerial(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	existing := svc.Components()[0]

	_, _, err := svc.CreateComponent(ctx, Component{
		ShipID:              existing.ShipID,
		Name:                "Spare",
		SerialNumber:        existing.SerialNumber,
		InstallDate:         domain.MustParseDate("2024-01-01"),
		LastMaintenanceDate: domain.MustParseDate("2024-06-01"),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields["serialNumber"] == "" {
		t.Fatalf("expected serialNumber message, got %v", verr.Fields)
	}
}

func TestUpdateComponentKeepsOwnSerial(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	existing := svc.Components()[0]

	if _, _, err := svc.UpdateComponent(ctx, existing.ID, func(component *Component) error {
		component.Name = "Renamed"
		return nil
	}); err != nil {
		t.Fatalf("self-edit must keep its own serial: %v", err)
	}
}

func TestUpdateComponentRejectsMaintenanceBeforeInstall(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	existing := svc.Components()[0]

	_, _, err := svc.UpdateComponent(ctx, existing.ID, func(component *Component) error {
		component.LastMaintenanceDate = component.InstallDate.AddDays(-1)
		return nil
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields["lastMaintenanceDate"] == "" {
		t.Fatalf("expected lastMaintenanceDate message, got %v", verr.Fields)
	}
}

func TestCreateJobEmitsCreatedNotification(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	component := svc.Components()[0]

	created, _, err := svc.CreateJob(ctx, Job{
		ShipID:        component.ShipID,
		ComponentID:   component.ID,
		Type:          domain.JobTypeInspection,
		Priority:      domain.JobPriorityHigh,
		ScheduledDate: domain.MustParseDate("2025-07-01"),
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if created.Status != domain.JobStatusOpen {
		t.Fatalf("expected default Open status, got %s", created.Status)
	}

	feed := svc.Notifications()
	if len(feed) != 1 {
		t.Fatalf("expected one notification, got %d", len(feed))
	}
	n := feed[0]
	if n.Type != domain.NotificationJobCreated || n.Title != "New Job Created" || n.Read {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if svc.UnreadNotificationCount() != 1 {
		t.Fatalf("unread count: %d", svc.UnreadNotificationCount())
	}
}

func TestCreateJobRejectsCrossShipComponent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var component Component
	var otherShip Ship
	for _, c := range svc.Components() {
		for _, s := range svc.Ships() {
			if s.ID != c.ShipID {
				component, otherShip = c, s
			}
		}
	}

	_, _, err := svc.CreateJob(ctx, Job{
		ShipID:        otherShip.ID,
		ComponentID:   component.ID,
		Type:          domain.JobTypeRepair,
		Priority:      domain.JobPriorityLow,
		ScheduledDate: domain.MustParseDate("2025-07-01"),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields["componentId"] != "component is not installed on the selected ship" {
		t.Fatalf("unexpected field message: %v", verr.Fields)
	}
	if len(svc.Notifications()) != 0 {
		t.Fatal("rejected create must not emit a notification")
	}
}

func TestCompletingJobStampsDateAndEmitsUpdate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var open Job
	for _, job := range svc.Jobs() {
		if job.Status == domain.JobStatusOpen {
			open = job
			break
		}
	}
	if open.ID == "" {
		t.Fatal("expected a seeded open job")
	}

	updated, _, err := svc.UpdateJob(ctx, open.ID, func(job *Job) error {
		job.Status = domain.JobStatusCompleted
		return nil
	})
	if err != nil {
		t.Fatalf("complete job: %v", err)
	}
	if updated.CompletedDate == nil {
		t.Fatal("transition to Completed must stamp the completion date")
	}

	feed := svc.Notifications()
	if len(feed) != 1 {
		t.Fatalf("expected one notification, got %d", len(feed))
	}
	if feed[0].Type != domain.NotificationJobUpdated || feed[0].Read {
		t.Fatalf("completion must surface as an unread update: %+v", feed[0])
	}
}

func TestNotificationHousekeeping(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	component := svc.Components()[0]

	for i := 0; i < 2; i++ {
		if _, _, err := svc.CreateJob(ctx, Job{
			ShipID:        component.ShipID,
			ComponentID:   component.ID,
			Type:          domain.JobTypeCleaning,
			Priority:      domain.JobPriorityLow,
			ScheduledDate: domain.MustParseDate("2025-07-01"),
		}); err != nil {
			t.Fatalf("create job: %v", err)
		}
	}
	feed := svc.Notifications()
	if len(feed) != 2 || svc.UnreadNotificationCount() != 2 {
		t.Fatalf("expected two unread entries, got %d/%d", len(feed), svc.UnreadNotificationCount())
	}

	if _, err := svc.MarkNotificationRead(ctx, feed[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if svc.UnreadNotificationCount() != 1 {
		t.Fatalf("unread after mark: %d", svc.UnreadNotificationCount())
	}

	if _, err := svc.MarkAllNotificationsRead(ctx); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	if _, err := svc.MarkAllNotificationsRead(ctx); err != nil {
		t.Fatalf("mark all must be idempotent: %v", err)
	}
	if svc.UnreadNotificationCount() != 0 {
		t.Fatalf("unread after mark all: %d", svc.UnreadNotificationCount())
	}

	if _, err := svc.DeleteNotification(ctx, feed[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(svc.Notifications()) != 1 {
		t.Fatalf("expected one entry left, got %d", len(svc.Notifications()))
	}
}

func TestAuthorizationGating(t *testing.T) {
	session := NewSessionManager(nil)
	svc := newTestService(WithSessionManager(session))
	ctx := context.Background()

	ship := Ship{Name: "Gated", IMONumber: "5550002", Flag: "DK", Status: domain.ShipStatusActive}

	if _, _, err := svc.CreateShip(ctx, ship); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("anonymous create should fail with ErrNotAuthenticated, got %v", err)
	}

	if _, err := session.Login("inspector@entnt.in", "inspect123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, _, err := svc.CreateShip(ctx, ship)
	var denied ErrPermissionDenied
	if !errors.As(err, &denied) {
		t.Fatalf("inspector create should be denied, got %v", err)
	}
	if denied.Role != domain.RoleInspector || denied.Entity != EntityShip {
		t.Fatalf("unexpected denial: %+v", denied)
	}

	if _, err := session.Login("engineer@entnt.in", "engine123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := svc.CreateShip(ctx, ship); !errors.As(err, &denied) {
		t.Fatalf("engineer may not modify ships, got %v", err)
	}
	component := svc.Components()[0]
	if _, _, err := svc.UpdateComponent(ctx, component.ID, func(c *Component) error {
		c.Name = "Engineer Touched"
		return nil
	}); err != nil {
		t.Fatalf("engineer should modify components: %v", err)
	}

	if _, err := session.Login("admin@entnt.in", "admin123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := svc.CreateShip(ctx, ship); err != nil {
		t.Fatalf("admin create: %v", err)
	}
}

func TestObservabilityHooksFire(t *testing.T) {
	audit := &captureAuditRecorder{}
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	svc := newTestService(
		WithAuditRecorder(audit),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
	)
	ctx := context.Background()

	created, _, err := svc.CreateShip(ctx, Ship{Name: "Observed", IMONumber: "5550003", Flag: "SE", Status: domain.ShipStatusActive})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := svc.CreateShip(ctx, Ship{Name: "Dup", IMONumber: "5550003", Flag: "SE", Status: domain.ShipStatusActive}); err == nil {
		t.Fatal("expected duplicate rejection")
	}

	if !audit.has("create_ship", AuditStatusSuccess, func(e AuditEntry) bool { return e.EntityID == created.ID }) {
		t.Fatalf("missing success audit entry: %+v", audit.entries)
	}
	if !audit.has("create_ship", AuditStatusError, nil) {
		t.Fatal("missing error audit entry")
	}
	if !metrics.has("create_ship", true) || !metrics.has("create_ship", false) {
		t.Fatalf("missing metric observations: %+v", metrics.calls)
	}
	if !tracer.has("create_ship", true) || !tracer.has("create_ship", false) {
		t.Fatal("missing trace spans")
	}
}

type captureAuditRecorder struct {
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) has(op string, status AuditStatus, predicate func(AuditEntry) bool) bool {
	for _, entry := range c.entries {
		if entry.Operation == op && entry.Status == status {
			if predicate == nil || predicate(entry) {
				return true
			}
		}
	}
	return false
}

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: duration})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

type spanRecord struct {
	op  string
	err error
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

func (c *captureTracer) has(op string, success bool) bool {
	for _, record := range c.ended {
		if record.op == op {
			if success && record.err == nil {
				return true
			}
			if !success && record.err != nil {
				return true
			}
		}
	}
	return false
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}
