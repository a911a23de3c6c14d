package core

import (
	"context"
	"fmt"

	"fleetcore/pkg/domain"
)

// NewIMOUniquenessRule returns the in-transaction rule enforcing global IMO
// number uniqueness across the fleet.
func NewIMOUniquenessRule() domain.Rule {
	return imoUniquenessRule{}
}

type imoUniquenessRule struct{}

func (imoUniquenessRule) Name() string { return "imo_unique" }

func (imoUniquenessRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	seen := make(map[string]string)
	res := domain.Result{}
	for _, ship := range view.ListShips() {
		if ship.IMONumber == "" {
			continue
		}
		if otherID, dup := seen[ship.IMONumber]; dup {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "imo_unique",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("ships %s and %s share IMO number %s", otherID, ship.ID, ship.IMONumber),
				Entity:   domain.EntityShip,
				EntityID: ship.ID,
			})
			continue
		}
		seen[ship.IMONumber] = ship.ID
	}
	return res, nil
}
