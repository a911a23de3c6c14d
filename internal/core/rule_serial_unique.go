package core

import (
	"context"
	"fmt"

	"fleetcore/pkg/domain"
)

// NewSerialUniquenessRule returns the in-transaction rule enforcing serial
// number uniqueness across all installed components, regardless of ship.
func NewSerialUniquenessRule() domain.Rule {
	return serialUniquenessRule{}
}

type serialUniquenessRule struct{}

func (serialUniquenessRule) Name() string { return "serial_unique" }

func (serialUniquenessRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	seen := make(map[string]string)
	res := domain.Result{}
	for _, component := range view.ListComponents() {
		if component.SerialNumber == "" {
			continue
		}
		if otherID, dup := seen[component.SerialNumber]; dup {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "serial_unique",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("components %s and %s share serial number %s", otherID, component.ID, component.SerialNumber),
				Entity:   domain.EntityComponent,
				EntityID: component.ID,
			})
			continue
		}
		seen[component.SerialNumber] = component.ID
	}
	return res, nil
}
