// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral sessions, and the transactional engine
// that the durable backends wrap.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"fleetcore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Ship aliases domain.Ship for in-memory persistence operations.
	Ship = domain.Ship
	// Component aliases domain.Component.
	Component = domain.Component
	// Job aliases domain.Job.
	Job = domain.Job
	// Notification aliases domain.Notification.
	Notification = domain.Notification
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	ships         map[string]Ship
	components    map[string]Component
	jobs          map[string]Job
	notifications map[string]Notification
}

// Snapshot is the serialisable representation of the in-memory state. Each
// field maps to one persistence bucket; durable backends rewrite all four
// after every committed transaction.
type Snapshot struct {
	Ships         map[string]Ship         `json:"ships"`
	Components    map[string]Component    `json:"components"`
	Jobs          map[string]Job          `json:"jobs"`
	Notifications map[string]Notification `json:"notifications"`
}

// IsEmpty reports whether the snapshot holds no records at all. Empty
// backends are initialized from the seed dataset.
func (s Snapshot) IsEmpty() bool {
	return len(s.Ships) == 0 && len(s.Components) == 0 && len(s.Jobs) == 0 && len(s.Notifications) == 0
}

func newMemoryState() memoryState {
	return memoryState{
		ships:         map[string]Ship{},
		components:    map[string]Component{},
		jobs:          map[string]Job{},
		notifications: map[string]Notification{},
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Ships:         make(map[string]Ship, len(state.ships)),
		Components:    make(map[string]Component, len(state.components)),
		Jobs:          make(map[string]Job, len(state.jobs)),
		Notifications: make(map[string]Notification, len(state.notifications)),
	}
	for k, v := range state.ships {
		s.Ships[k] = v
	}
	for k, v := range state.components {
		s.Components[k] = v
	}
	for k, v := range state.jobs {
		s.Jobs[k] = cloneJob(v)
	}
	for k, v := range state.notifications {
		s.Notifications[k] = v
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Ships {
		state.ships[k] = v
	}
	for k, v := range s.Components {
		state.components[k] = v
	}
	for k, v := range s.Jobs {
		state.jobs[k] = cloneJob(v)
	}
	for k, v := range s.Notifications {
		state.notifications[k] = v
	}
	return state
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.ships {
		cloned.ships[k] = v
	}
	for k, v := range s.components {
		cloned.components[k] = v
	}
	for k, v := range s.jobs {
		cloned.jobs[k] = cloneJob(v)
	}
	for k, v := range s.notifications {
		cloned.notifications[k] = v
	}
	return cloned
}

// cloneJob deep-copies the optional completion date so snapshots never share
// pointers with live state.
func cloneJob(j Job) Job {
	cp := j
	if j.CompletedDate != nil {
		d := *j.CompletedDate
		cp.CompletedDate = &d
	}
	return cp
}

// Store provides an in-memory transactional store for the fleet domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an empty in-memory store backed by the provided rules
// engine. A nil engine disables rule evaluation.
func NewStore(engine *RulesEngine) *Store {
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// NewSeededStore constructs an in-memory store preloaded with the fixture
// fleet, matching what durable backends do when their snapshot slot is empty.
func NewSeededStore(engine *RulesEngine) *Store {
	s := NewStore(engine)
	s.ImportState(SeedSnapshot())
	return s
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ExportState returns a deep copy of the committed state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the committed state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine returns the engine evaluated on every transaction.
func (s *Store) RulesEngine() *RulesEngine {
	return s.engine
}

// SetNowFunc overrides the transaction clock. Intended for tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		fn = func() time.Time { return time.Now().UTC() }
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// RunInTransaction executes fn within a transactional copy of the store
// state. Registered rules evaluate against the post-state; blocking
// violations abort the commit and surface as RuleViolationError.
func (s *Store) RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Now returns the calendar day stamped on records mutated in this transaction.
func (tx *transaction) Now() domain.Date {
	return domain.DateOf(tx.now)
}

// CreateShip stores a new ship within the transaction.
func (tx *transaction) CreateShip(ship Ship) (Ship, error) {
	if ship.ID == "" {
		ship.ID = tx.store.newID()
	}
	if _, exists := tx.state.ships[ship.ID]; exists {
		return Ship{}, fmt.Errorf("ship %q already exists", ship.ID)
	}
	ship.CreatedAt = tx.now
	ship.UpdatedAt = tx.now
	tx.state.ships[ship.ID] = ship
	tx.recordChange(Change{Entity: domain.EntityShip, Action: domain.ActionCreate, After: ship})
	return ship, nil
}

// UpdateShip mutates a ship using the provided mutator function.
func (tx *transaction) UpdateShip(id string, mutator func(*Ship) error) (Ship, error) {
	current, ok := tx.state.ships[id]
	if !ok {
		return Ship{}, fmt.Errorf("ship %q not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return Ship{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.ships[id] = current
	tx.recordChange(Change{Entity: domain.EntityShip, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteShip removes a ship. Ships with installed components or scheduled
// jobs cannot be deleted; there is no cascade.
func (tx *transaction) DeleteShip(id string) error {
	current, ok := tx.state.ships[id]
	if !ok {
		return fmt.Errorf("ship %q not found", id)
	}
	for _, component := range tx.state.components {
		if component.ShipID == id {
			return fmt.Errorf("ship %q still has component %q installed", id, component.ID)
		}
	}
	for _, job := range tx.state.jobs {
		if job.ShipID == id {
			return fmt.Errorf("ship %q still has job %q scheduled", id, job.ID)
		}
	}
	delete(tx.state.ships, id)
	tx.recordChange(Change{Entity: domain.EntityShip, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateComponent stores a new installed component.
func (tx *transaction) CreateComponent(component Component) (Component, error) {
	if component.ID == "" {
		component.ID = tx.store.newID()
	}
	if _, exists := tx.state.components[component.ID]; exists {
		return Component{}, fmt.Errorf("component %q already exists", component.ID)
	}
	if _, ok := tx.state.ships[component.ShipID]; !ok {
		return Component{}, fmt.Errorf("ship %q not found", component.ShipID)
	}
	component.CreatedAt = tx.now
	component.UpdatedAt = tx.now
	tx.state.components[component.ID] = component
	tx.recordChange(Change{Entity: domain.EntityComponent, Action: domain.ActionCreate, After: component})
	return component, nil
}

// UpdateComponent mutates an existing component.
func (tx *transaction) UpdateComponent(id string, mutator func(*Component) error) (Component, error) {
	current, ok := tx.state.components[id]
	if !ok {
		return Component{}, fmt.Errorf("component %q not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return Component{}, err
	}
	if _, ok := tx.state.ships[current.ShipID]; !ok {
		return Component{}, fmt.Errorf("ship %q not found", current.ShipID)
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.components[id] = current
	tx.recordChange(Change{Entity: domain.EntityComponent, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteComponent removes a component. Components referenced by jobs cannot
// be deleted.
func (tx *transaction) DeleteComponent(id string) error {
	current, ok := tx.state.components[id]
	if !ok {
		return fmt.Errorf("component %q not found", id)
	}
	for _, job := range tx.state.jobs {
		if job.ComponentID == id {
			return fmt.Errorf("component %q is still referenced by job %q", id, job.ID)
		}
	}
	delete(tx.state.components, id)
	tx.recordChange(Change{Entity: domain.EntityComponent, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateJob stores a maintenance job record.
func (tx *transaction) CreateJob(job Job) (Job, error) {
	if job.ID == "" {
		job.ID = tx.store.newID()
	}
	if _, exists := tx.state.jobs[job.ID]; exists {
		return Job{}, fmt.Errorf("job %q already exists", job.ID)
	}
	if job.Status == "" {
		job.Status = domain.JobStatusOpen
	}
	job.CreatedAt = tx.now
	job.UpdatedAt = tx.now
	job = tx.stampCompletion(Job{}, job)
	tx.state.jobs[job.ID] = cloneJob(job)
	tx.recordChange(Change{Entity: domain.EntityJob, Action: domain.ActionCreate, After: cloneJob(job)})
	return cloneJob(job), nil
}

// UpdateJob mutates a job. The completion date is stamped exactly on the
// transition into Completed and preserved afterwards.
func (tx *transaction) UpdateJob(id string, mutator func(*Job) error) (Job, error) {
	current, ok := tx.state.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("job %q not found", id)
	}
	before := cloneJob(current)
	working := cloneJob(current)
	if err := mutator(&working); err != nil {
		return Job{}, err
	}
	working.ID = id
	working.CreatedAt = before.CreatedAt
	working.UpdatedAt = tx.now
	working = tx.stampCompletion(before, working)
	tx.state.jobs[id] = cloneJob(working)
	tx.recordChange(Change{Entity: domain.EntityJob, Action: domain.ActionUpdate, Before: before, After: cloneJob(working)})
	return cloneJob(working), nil
}

func (tx *transaction) stampCompletion(before, after Job) Job {
	if after.Status == domain.JobStatusCompleted {
		if before.Status != domain.JobStatusCompleted && after.CompletedDate == nil {
			d := domain.DateOf(tx.now)
			after.CompletedDate = &d
		}
	}
	return after
}

// DeleteJob removes a job record.
func (tx *transaction) DeleteJob(id string) error {
	current, ok := tx.state.jobs[id]
	if !ok {
		return fmt.Errorf("job %q not found", id)
	}
	delete(tx.state.jobs, id)
	tx.recordChange(Change{Entity: domain.EntityJob, Action: domain.ActionDelete, Before: cloneJob(current)})
	return nil
}

// AddNotification appends a feed entry. ID, timestamp, and the unread flag
// are assigned here.
func (tx *transaction) AddNotification(n Notification) (Notification, error) {
	if n.ID == "" {
		n.ID = tx.store.newID()
	}
	if _, exists := tx.state.notifications[n.ID]; exists {
		return Notification{}, fmt.Errorf("notification %q already exists", n.ID)
	}
	if n.Type == "" {
		return Notification{}, fmt.Errorf("notification type is required")
	}
	n.Read = false
	n.CreatedAt = tx.now
	n.UpdatedAt = tx.now
	tx.state.notifications[n.ID] = n
	tx.recordChange(Change{Entity: domain.EntityNotification, Action: domain.ActionCreate, After: n})
	return n, nil
}

// MarkNotificationRead flips a single entry's read flag.
func (tx *transaction) MarkNotificationRead(id string) error {
	current, ok := tx.state.notifications[id]
	if !ok {
		return fmt.Errorf("notification %q not found", id)
	}
	if current.Read {
		return nil
	}
	before := current
	current.Read = true
	current.UpdatedAt = tx.now
	tx.state.notifications[id] = current
	tx.recordChange(Change{Entity: domain.EntityNotification, Action: domain.ActionUpdate, Before: before, After: current})
	return nil
}

// MarkAllNotificationsRead drives the unread count to zero. Idempotent.
func (tx *transaction) MarkAllNotificationsRead() error {
	for id, n := range tx.state.notifications {
		if n.Read {
			continue
		}
		before := n
		n.Read = true
		n.UpdatedAt = tx.now
		tx.state.notifications[id] = n
		tx.recordChange(Change{Entity: domain.EntityNotification, Action: domain.ActionUpdate, Before: before, After: n})
	}
	return nil
}

// DeleteNotification removes a feed entry.
func (tx *transaction) DeleteNotification(id string) error {
	current, ok := tx.state.notifications[id]
	if !ok {
		return fmt.Errorf("notification %q not found", id)
	}
	delete(tx.state.notifications, id)
	tx.recordChange(Change{Entity: domain.EntityNotification, Action: domain.ActionDelete, Before: current})
	return nil
}

// FindShip retrieves a ship by ID from the transaction state.
func (tx *transaction) FindShip(id string) (Ship, bool) {
	s, ok := tx.state.ships[id]
	return s, ok
}

// FindComponent retrieves a component by ID from the transaction state.
func (tx *transaction) FindComponent(id string) (Component, bool) {
	c, ok := tx.state.components[id]
	return c, ok
}

// FindJob retrieves a job by ID from the transaction state.
func (tx *transaction) FindJob(id string) (Job, bool) {
	j, ok := tx.state.jobs[id]
	if !ok {
		return Job{}, false
	}
	return cloneJob(j), true
}

// sortRecords orders listings by creation instant, then ID, so insertion
// order is stable across snapshot round-trips.
func shipOrder(a, b Ship) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func componentOrder(a, b Component) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func jobOrder(a, b Job) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// notificationOrder keeps the feed newest-first, matching how the
// notification center presents it.
func notificationOrder(a, b Notification) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (v transactionView) ListShips() []Ship {
	out := make([]Ship, 0, len(v.state.ships))
	for _, s := range v.state.ships {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return shipOrder(out[i], out[j]) })
	return out
}

func (v transactionView) ListComponents() []Component {
	out := make([]Component, 0, len(v.state.components))
	for _, c := range v.state.components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return componentOrder(out[i], out[j]) })
	return out
}

func (v transactionView) ListJobs() []Job {
	out := make([]Job, 0, len(v.state.jobs))
	for _, j := range v.state.jobs {
		out = append(out, cloneJob(j))
	}
	sort.Slice(out, func(i, j int) bool { return jobOrder(out[i], out[j]) })
	return out
}

func (v transactionView) ListNotifications() []Notification {
	out := make([]Notification, 0, len(v.state.notifications))
	for _, n := range v.state.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return notificationOrder(out[i], out[j]) })
	return out
}

func (v transactionView) FindShip(id string) (Ship, bool) {
	s, ok := v.state.ships[id]
	return s, ok
}

func (v transactionView) FindComponent(id string) (Component, bool) {
	c, ok := v.state.components[id]
	return c, ok
}

func (v transactionView) FindJob(id string) (Job, bool) {
	j, ok := v.state.jobs[id]
	if !ok {
		return Job{}, false
	}
	return cloneJob(j), true
}

// Read helpers ---------------------------------------------------------------

// GetShip retrieves a ship by ID from committed state.
func (s *Store) GetShip(id string) (Ship, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ship, ok := s.state.ships[id]
	return ship, ok
}

// ListShips returns all ships from committed state in insertion order.
func (s *Store) ListShips() []Ship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListShips()
}

// GetComponent retrieves a component by ID from committed state.
func (s *Store) GetComponent(id string) (Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.components[id]
	return c, ok
}

// ListComponents returns all components in insertion order.
func (s *Store) ListComponents() []Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListComponents()
}

// GetJob retrieves a job by ID from committed state.
func (s *Store) GetJob(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.state.jobs[id]
	if !ok {
		return Job{}, false
	}
	return cloneJob(j), true
}

// ListJobs returns all jobs in insertion order.
func (s *Store) ListJobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListJobs()
}

// ListNotifications returns the feed newest-first.
func (s *Store) ListNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListNotifications()
}

// UnreadNotificationCount counts entries whose read flag is still false.
func (s *Store) UnreadNotificationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.state.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}
