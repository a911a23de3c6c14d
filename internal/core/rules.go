package core

import "fleetcore/pkg/domain"

type (
	Rule            = domain.Rule
	RulesEngine     = domain.RulesEngine
	RuleView        = domain.RuleView
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
)

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
// Every rule here blocks the commit, so a transaction that would leave the
// fleet in an inconsistent state never reaches the snapshot.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewIMOUniquenessRule())
	engine.Register(NewSerialUniquenessRule())
	engine.Register(NewMaintenanceOrderRule())
	engine.Register(NewJobScopeRule())
	return engine
}
