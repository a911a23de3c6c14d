package memory

import (
	"time"

	"fleetcore/pkg/domain"
)

// seedBase returns deterministic Base fields. The creation instants are
// staggered so listings preserve the fixture order.
func seedBase(id string, offset int) domain.Base {
	created := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Minute)
	return domain.Base{ID: id, CreatedAt: created, UpdatedAt: created}
}

// SeedSnapshot returns the fixture fleet used to initialize an empty backend:
// three ships, four installed components, and three maintenance jobs.
func SeedSnapshot() Snapshot {
	ships := []Ship{
		{Base: seedBase("s1", 0), Name: "Ever Given", IMONumber: "9811000", Flag: "Panama", Status: domain.ShipStatusActive},
		{Base: seedBase("s2", 1), Name: "Maersk Alabama", IMONumber: "9164263", Flag: "USA", Status: domain.ShipStatusUnderMaintenance},
		{Base: seedBase("s3", 2), Name: "MSC Oscar", IMONumber: "9703291", Flag: "Panama", Status: domain.ShipStatusActive},
	}
	components := []Component{
		{Base: seedBase("c1", 3), ShipID: "s1", Name: "Main Engine", SerialNumber: "ME-1234", InstallDate: domain.MustParseDate("2020-01-10"), LastMaintenanceDate: domain.MustParseDate("2024-03-12")},
		{Base: seedBase("c2", 4), ShipID: "s2", Name: "Radar", SerialNumber: "RAD-5678", InstallDate: domain.MustParseDate("2021-07-18"), LastMaintenanceDate: domain.MustParseDate("2023-12-01")},
		{Base: seedBase("c3", 5), ShipID: "s1", Name: "Navigation System", SerialNumber: "NAV-9876", InstallDate: domain.MustParseDate("2020-02-15"), LastMaintenanceDate: domain.MustParseDate("2024-01-20")},
		{Base: seedBase("c4", 6), ShipID: "s3", Name: "Propeller", SerialNumber: "PROP-4321", InstallDate: domain.MustParseDate("2019-11-30"), LastMaintenanceDate: domain.MustParseDate("2023-11-15")},
	}
	completed := domain.MustParseDate("2025-05-22")
	jobs := []Job{
		{
			Base: seedBase("j1", 7), ShipID: "s1", ComponentID: "c1",
			Type: domain.JobTypeInspection, Priority: domain.JobPriorityHigh, Status: domain.JobStatusOpen,
			AssignedEngineerID: "3", ScheduledDate: domain.MustParseDate("2025-06-05"),
			Description: "Routine engine inspection",
		},
		{
			Base: seedBase("j2", 8), ShipID: "s2", ComponentID: "c2",
			Type: domain.JobTypeRepair, Priority: domain.JobPriorityCritical, Status: domain.JobStatusInProgress,
			AssignedEngineerID: "3", ScheduledDate: domain.MustParseDate("2025-05-28"),
			Description: "Radar calibration and repair",
		},
		{
			Base: seedBase("j3", 9), ShipID: "s1", ComponentID: "c3",
			Type: domain.JobTypeCleaning, Priority: domain.JobPriorityMedium, Status: domain.JobStatusCompleted,
			AssignedEngineerID: "3", ScheduledDate: domain.MustParseDate("2025-05-20"), CompletedDate: &completed,
			Description: "Navigation system cleaning",
		},
	}

	snapshot := Snapshot{
		Ships:         make(map[string]Ship, len(ships)),
		Components:    make(map[string]Component, len(components)),
		Jobs:          make(map[string]Job, len(jobs)),
		Notifications: map[string]Notification{},
	}
	for _, s := range ships {
		snapshot.Ships[s.ID] = s
	}
	for _, c := range components {
		snapshot.Components[c.ID] = c
	}
	for _, j := range jobs {
		snapshot.Jobs[j.ID] = j
	}
	return snapshot
}
