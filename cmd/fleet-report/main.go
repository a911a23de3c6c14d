// Command fleet-report opens the configured fleet store and either prints the
// dashboard summary or exports a full fleet report to the configured blob
// store.
//
// Usage:
//
//	fleet-report kpi [-json]
//	fleet-report export [-formats json,csv]
//
// Storage and blob backends are selected through the FLEETCORE_* environment
// variables.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"fleetcore/internal/adapters/reports"
	"fleetcore/internal/blob"
	"fleetcore/internal/core"
	"fleetcore/pkg/domain"
)

const exportTimeout = 30 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	command := "kpi"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	defer closeStore(store)
	svc := core.NewService(store)

	switch command {
	case "kpi":
		return runKPI(svc, args, stdout, stderr)
	case "export":
		return runExport(svc, args, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q (want kpi or export)\n", command)
		return 2
	}
}

func closeStore(store core.PersistentStore) {
	if closer, ok := store.(io.Closer); ok {
		_ = closer.Close()
	}
}

func runKPI(svc *core.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("kpi", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "emit the summary as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	summary := svc.KPISummary()
	if *asJSON {
		payload := struct {
			Summary        core.KPISummary            `json:"summary"`
			ShipsByStatus  map[domain.ShipStatus]int  `json:"ships_by_status"`
			JobsByStatus   map[domain.JobStatus]int   `json:"jobs_by_status"`
			JobsByPriority map[domain.JobPriority]int `json:"jobs_by_priority"`
		}{summary, svc.ShipsByStatus(), svc.JobsByStatus(), svc.JobsByPriority()}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			fmt.Fprintf(stderr, "encode: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(stdout, "Total ships:        %d\n", summary.TotalShips)
	fmt.Fprintf(stdout, "Overdue components: %d\n", summary.OverdueComponents)
	fmt.Fprintf(stdout, "Jobs in progress:   %d\n", summary.JobsInProgress)
	fmt.Fprintf(stdout, "Jobs completed:     %d\n", summary.JobsCompleted)
	fmt.Fprintln(stdout, "\nShips by status:")
	for _, status := range domain.ShipStatuses() {
		fmt.Fprintf(stdout, "  %-18s %d\n", status, svc.ShipsByStatus()[status])
	}
	fmt.Fprintln(stdout, "Jobs by status:")
	for _, status := range domain.JobStatuses() {
		fmt.Fprintf(stdout, "  %-18s %d\n", status, svc.JobsByStatus()[status])
	}
	return 0
}

func runExport(svc *core.Service, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	formatsFlag := fs.String("formats", "json,csv", "comma-separated report formats")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var formats []reports.Format
	for _, raw := range strings.Split(*formatsFlag, ",") {
		raw = strings.TrimSpace(raw)
		if raw != "" {
			formats = append(formats, reports.Format(raw))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	artifactStore, err := blob.Open(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "open blob store: %v\n", err)
		return 1
	}

	worker := reports.NewWorker(svc, artifactStore, nil)
	worker.Start()
	defer func() { _ = worker.Stop(context.Background()) }()

	record, err := worker.EnqueueExport(ctx, reports.ExportInput{Formats: formats, RequestedBy: "fleet-report"})
	if err != nil {
		fmt.Fprintf(stderr, "enqueue export: %v\n", err)
		return 1
	}

	record, err = waitForExport(ctx, worker, record.ID)
	if err != nil {
		fmt.Fprintf(stderr, "export: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "export %s %s\n", record.ID, record.Status)
	for _, artifact := range record.Artifacts {
		fmt.Fprintf(stdout, "  %s (%d bytes)\n", artifact.Key, artifact.SizeBytes)
	}
	return 0
}

func waitForExport(ctx context.Context, worker *reports.Worker, id string) (reports.ExportRecord, error) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		record, ok := worker.GetExport(id)
		if !ok {
			return reports.ExportRecord{}, fmt.Errorf("export %s not found", id)
		}
		switch record.Status {
		case reports.ExportStatusSucceeded:
			return record, nil
		case reports.ExportStatusFailed:
			return record, fmt.Errorf("export failed: %s", record.Error)
		}
		select {
		case <-ctx.Done():
			return record, ctx.Err()
		case <-ticker.C:
		}
	}
}
