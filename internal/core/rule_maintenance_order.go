package core

import (
	"context"
	"fmt"

	"fleetcore/pkg/domain"
)

// NewMaintenanceOrderRule returns the rule requiring a component's last
// maintenance date to fall on or after its install date.
func NewMaintenanceOrderRule() domain.Rule {
	return maintenanceOrderRule{}
}

type maintenanceOrderRule struct{}

func (maintenanceOrderRule) Name() string { return "maintenance_order" }

func (maintenanceOrderRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, component := range view.ListComponents() {
		if component.InstallDate.IsZero() || component.LastMaintenanceDate.IsZero() {
			continue
		}
		if component.LastMaintenanceDate.Before(component.InstallDate) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "maintenance_order",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("component %s (%s) maintained %s before install %s", component.Name, component.ID, component.LastMaintenanceDate, component.InstallDate),
				Entity:   domain.EntityComponent,
				EntityID: component.ID,
			})
		}
	}
	return res, nil
}
