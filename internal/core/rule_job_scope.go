package core

import (
	"context"
	"fmt"

	"fleetcore/pkg/domain"
)

// NewJobScopeRule returns the rule requiring every job's component to be
// installed on the job's ship. Jobs without a component selection pass.
func NewJobScopeRule() domain.Rule {
	return jobScopeRule{}
}

type jobScopeRule struct{}

func (jobScopeRule) Name() string { return "job_scope" }

func (jobScopeRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, job := range view.ListJobs() {
		if job.ComponentID == "" {
			continue
		}
		component, ok := view.FindComponent(job.ComponentID)
		if !ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "job_scope",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("job %s references missing component %s", job.ID, job.ComponentID),
				Entity:   domain.EntityJob,
				EntityID: job.ID,
			})
			continue
		}
		if component.ShipID != job.ShipID {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "job_scope",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("job %s scoped to ship %s but component %s belongs to ship %s", job.ID, job.ShipID, component.ID, component.ShipID),
				Entity:   domain.EntityJob,
				EntityID: job.ID,
			})
		}
	}
	return res, nil
}
