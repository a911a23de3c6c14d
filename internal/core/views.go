package core

import (
	"strings"
	"time"

	"fleetcore/pkg/domain"
)

// overdueWindowMonths is how far back a component's last maintenance may lie
// before it counts as overdue on the dashboard.
const overdueWindowMonths = 3

// KPISummary is the dashboard headline block.
type KPISummary struct {
	TotalShips        int `json:"total_ships"`
	OverdueComponents int `json:"overdue_components"`
	JobsInProgress    int `json:"jobs_in_progress"`
	JobsCompleted     int `json:"jobs_completed"`
}

// ComputeKPISummary derives the dashboard numbers from a full snapshot. A
// component is overdue when its last maintenance date lies more than three
// calendar months before now.
func ComputeKPISummary(ships []domain.Ship, components []domain.Component, jobs []domain.Job, now domain.Date) KPISummary {
	summary := KPISummary{TotalShips: len(ships)}
	cutoff := now.AddMonths(-overdueWindowMonths)
	for _, component := range components {
		if !component.LastMaintenanceDate.IsZero() && component.LastMaintenanceDate.Before(cutoff) {
			summary.OverdueComponents++
		}
	}
	for _, job := range jobs {
		switch job.Status {
		case domain.JobStatusInProgress:
			summary.JobsInProgress++
		case domain.JobStatusCompleted:
			summary.JobsCompleted++
		}
	}
	return summary
}

// JobsByStatus counts jobs per workflow state. Every status appears in the
// result, zero counts included, so charts render stable axes.
func JobsByStatus(jobs []domain.Job) map[domain.JobStatus]int {
	counts := make(map[domain.JobStatus]int, len(domain.JobStatuses()))
	for _, status := range domain.JobStatuses() {
		counts[status] = 0
	}
	for _, job := range jobs {
		counts[job.Status]++
	}
	return counts
}

// JobsByPriority counts jobs per priority with all priorities present.
func JobsByPriority(jobs []domain.Job) map[domain.JobPriority]int {
	counts := make(map[domain.JobPriority]int, len(domain.JobPriorities()))
	for _, priority := range domain.JobPriorities() {
		counts[priority] = 0
	}
	for _, job := range jobs {
		counts[job.Priority]++
	}
	return counts
}

// ShipsByStatus counts ships per operational status with all statuses present.
func ShipsByStatus(ships []domain.Ship) map[domain.ShipStatus]int {
	counts := make(map[domain.ShipStatus]int, len(domain.ShipStatuses()))
	for _, status := range domain.ShipStatuses() {
		counts[status] = 0
	}
	for _, ship := range ships {
		counts[ship.Status]++
	}
	return counts
}

// MonthCalendar groups one month's scheduled jobs by day.
type MonthCalendar struct {
	Year         int                  `json:"year"`
	Month        time.Month           `json:"month"`
	Days         int                  `json:"days"`
	FirstWeekday time.Weekday         `json:"first_weekday"`
	Buckets      map[int][]domain.Job `json:"buckets"`
}

// BuildMonthCalendar buckets the jobs scheduled in the given month by exact
// day of month. Days without jobs have no bucket.
func BuildMonthCalendar(jobs []domain.Job, year int, month time.Month) MonthCalendar {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	cal := MonthCalendar{
		Year:         year,
		Month:        month,
		Days:         first.AddDate(0, 1, -1).Day(),
		FirstWeekday: first.Weekday(),
		Buckets:      make(map[int][]domain.Job),
	}
	for _, job := range jobs {
		if job.ScheduledDate.IsZero() {
			continue
		}
		if job.ScheduledDate.Year() == year && job.ScheduledDate.Month() == month {
			day := job.ScheduledDate.Day()
			cal.Buckets[day] = append(cal.Buckets[day], job)
		}
	}
	return cal
}

// JobsOn returns the jobs scheduled on exactly the given day.
func JobsOn(jobs []domain.Job, day domain.Date) []domain.Job {
	var out []domain.Job
	for _, job := range jobs {
		if job.ScheduledDate.Equal(day) {
			out = append(out, job)
		}
	}
	return out
}

// SearchShips filters ships by a case-insensitive substring match over name,
// IMO number, and flag. An empty query returns every ship.
func SearchShips(ships []domain.Ship, query string) []domain.Ship {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return ships
	}
	var out []domain.Ship
	for _, ship := range ships {
		if strings.Contains(strings.ToLower(ship.Name), query) ||
			strings.Contains(strings.ToLower(ship.IMONumber), query) ||
			strings.Contains(strings.ToLower(ship.Flag), query) {
			out = append(out, ship)
		}
	}
	return out
}

// JobFilter narrows a job search. Zero-valued fields do not filter.
type JobFilter struct {
	Query    string
	Status   domain.JobStatus
	Priority domain.JobPriority
}

// SearchJobs filters jobs by a case-insensitive substring over the owning
// ship's name, the component's name, the job type, and the description, then
// applies exact status and priority filters. All conditions are conjunctive.
func SearchJobs(jobs []domain.Job, ships []domain.Ship, components []domain.Component, filter JobFilter) []domain.Job {
	shipNames := make(map[string]string, len(ships))
	for _, ship := range ships {
		shipNames[ship.ID] = strings.ToLower(ship.Name)
	}
	componentNames := make(map[string]string, len(components))
	for _, component := range components {
		componentNames[component.ID] = strings.ToLower(component.Name)
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	var out []domain.Job
	for _, job := range jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && job.Priority != filter.Priority {
			continue
		}
		if query != "" {
			if !strings.Contains(shipNames[job.ShipID], query) &&
				!strings.Contains(componentNames[job.ComponentID], query) &&
				!strings.Contains(strings.ToLower(string(job.Type)), query) &&
				!strings.Contains(strings.ToLower(job.Description), query) {
				continue
			}
		}
		out = append(out, job)
	}
	return out
}

// ComponentsByShip returns the components installed on the given ship.
func ComponentsByShip(components []domain.Component, shipID string) []domain.Component {
	var out []domain.Component
	for _, component := range components {
		if component.ShipID == shipID {
			out = append(out, component)
		}
	}
	return out
}

// JobsByShip returns the jobs targeting the given ship.
func JobsByShip(jobs []domain.Job, shipID string) []domain.Job {
	var out []domain.Job
	for _, job := range jobs {
		if job.ShipID == shipID {
			out = append(out, job)
		}
	}
	return out
}

// JobsByComponent returns the jobs targeting the given component.
func JobsByComponent(jobs []domain.Job, componentID string) []domain.Job {
	var out []domain.Job
	for _, job := range jobs {
		if job.ComponentID == componentID {
			out = append(out, job)
		}
	}
	return out
}

// ComponentOptions is the candidate set offered when scheduling a job against
// a ship, plus whether a previously selected component had to be dropped
// because it belongs to a different ship.
type ComponentOptions struct {
	Components       []domain.Component
	SelectionCleared bool
}

// ComponentOptionsForShip restricts job component candidates to the selected
// ship. When the prior selection is not among them, SelectionCleared reports
// that the caller must discard it.
func ComponentOptionsForShip(components []domain.Component, shipID, selectedComponentID string) ComponentOptions {
	opts := ComponentOptions{Components: ComponentsByShip(components, shipID)}
	if selectedComponentID == "" {
		return opts
	}
	for _, component := range opts.Components {
		if component.ID == selectedComponentID {
			return opts
		}
	}
	opts.SelectionCleared = true
	return opts
}
