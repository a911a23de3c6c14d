package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	CreateShip(Ship) (Ship, error)
	UpdateShip(id string, mutator func(*Ship) error) (Ship, error)
	DeleteShip(id string) error
	CreateComponent(Component) (Component, error)
	UpdateComponent(id string, mutator func(*Component) error) (Component, error)
	DeleteComponent(id string) error
	CreateJob(Job) (Job, error)
	UpdateJob(id string, mutator func(*Job) error) (Job, error)
	DeleteJob(id string) error
	AddNotification(Notification) (Notification, error)
	MarkNotificationRead(id string) error
	MarkAllNotificationsRead() error
	DeleteNotification(id string) error
	FindShip(id string) (Ship, bool)
	FindComponent(id string) (Component, bool)
	FindJob(id string) (Job, bool)
	// Now is the instant stamped on records mutated in this transaction.
	Now() Date
}

// TransactionView provides read-only access to snapshot data for rules and
// derived views.
type TransactionView interface {
	RuleView
	ListNotifications() []Notification
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers; a backend
// is free to persist snapshots however it likes as long as reloading yields
// an identical state.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetShip(id string) (Ship, bool)
	ListShips() []Ship
	GetComponent(id string) (Component, bool)
	ListComponents() []Component
	GetJob(id string) (Job, bool)
	ListJobs() []Job
	ListNotifications() []Notification
	UnreadNotificationCount() int
}
