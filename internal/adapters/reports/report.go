// Package reports builds exportable fleet maintenance reports and stores the
// rendered artifacts in a blob store.
package reports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"fleetcore/internal/core"
	"fleetcore/pkg/domain"
)

// Format identifies a report rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// Source supplies the snapshot a report is built from. *core.Service
// satisfies it.
type Source interface {
	Ships() []domain.Ship
	Components() []domain.Component
	Jobs() []domain.Job
}

// OverdueComponent is one overdue entry in the report, denormalized with its
// ship name for standalone reading.
type OverdueComponent struct {
	ComponentID         string      `json:"component_id"`
	ComponentName       string      `json:"component_name"`
	ShipName            string      `json:"ship_name"`
	LastMaintenanceDate domain.Date `json:"last_maintenance_date"`
}

// FleetReport is the exportable snapshot of fleet health: the dashboard KPIs,
// the three histograms, and the overdue component roster.
type FleetReport struct {
	GeneratedAt    time.Time                  `json:"generated_at"`
	Summary        core.KPISummary            `json:"summary"`
	ShipsByStatus  map[domain.ShipStatus]int  `json:"ships_by_status"`
	JobsByStatus   map[domain.JobStatus]int   `json:"jobs_by_status"`
	JobsByPriority map[domain.JobPriority]int `json:"jobs_by_priority"`
	Overdue        []OverdueComponent         `json:"overdue_components"`
}

// Build assembles a fleet report from the source as of now.
func Build(source Source, now time.Time) FleetReport {
	ships := source.Ships()
	components := source.Components()
	jobs := source.Jobs()
	today := domain.DateOf(now)

	shipNames := make(map[string]string, len(ships))
	for _, ship := range ships {
		shipNames[ship.ID] = ship.Name
	}

	report := FleetReport{
		GeneratedAt:    now.UTC(),
		Summary:        core.ComputeKPISummary(ships, components, jobs, today),
		ShipsByStatus:  core.ShipsByStatus(ships),
		JobsByStatus:   core.JobsByStatus(jobs),
		JobsByPriority: core.JobsByPriority(jobs),
	}

	cutoff := today.AddMonths(-3)
	for _, component := range components {
		if component.LastMaintenanceDate.IsZero() || !component.LastMaintenanceDate.Before(cutoff) {
			continue
		}
		report.Overdue = append(report.Overdue, OverdueComponent{
			ComponentID:         component.ID,
			ComponentName:       component.Name,
			ShipName:            shipNames[component.ShipID],
			LastMaintenanceDate: component.LastMaintenanceDate,
		})
	}
	sort.Slice(report.Overdue, func(i, j int) bool {
		return report.Overdue[i].ComponentID < report.Overdue[j].ComponentID
	})
	return report
}

// Render serializes the report in the requested format.
func Render(report FleetReport, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(report, "", "  ")
	case FormatCSV:
		return renderCSV(report)
	default:
		return nil, fmt.Errorf("unsupported report format %s", format)
	}
}

// renderCSV flattens the report into section/label/value rows, with overdue
// components as a trailing section keyed by component id.
func renderCSV(report FleetReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"section", "label", "value"},
		{"summary", "total_ships", strconv.Itoa(report.Summary.TotalShips)},
		{"summary", "overdue_components", strconv.Itoa(report.Summary.OverdueComponents)},
		{"summary", "jobs_in_progress", strconv.Itoa(report.Summary.JobsInProgress)},
		{"summary", "jobs_completed", strconv.Itoa(report.Summary.JobsCompleted)},
	}
	for _, status := range domain.ShipStatuses() {
		rows = append(rows, []string{"ships_by_status", string(status), strconv.Itoa(report.ShipsByStatus[status])})
	}
	for _, status := range domain.JobStatuses() {
		rows = append(rows, []string{"jobs_by_status", string(status), strconv.Itoa(report.JobsByStatus[status])})
	}
	for _, priority := range domain.JobPriorities() {
		rows = append(rows, []string{"jobs_by_priority", string(priority), strconv.Itoa(report.JobsByPriority[priority])})
	}
	for _, overdue := range report.Overdue {
		rows = append(rows, []string{
			"overdue_component",
			fmt.Sprintf("%s (%s)", overdue.ComponentName, overdue.ShipName),
			overdue.LastMaintenanceDate.String(),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
