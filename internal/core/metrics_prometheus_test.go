package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusMetricsRecorder(reg)
	ctx := context.Background()

	rec.Observe(ctx, "create_ship", true, 20*time.Millisecond)
	rec.Observe(ctx, "create_ship", false, 5*time.Millisecond)
	rec.Observe(ctx, "", true, time.Second) // ignored

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	byName := map[string]int{}
	for _, family := range families {
		byName[family.GetName()] = len(family.GetMetric())
	}
	if byName["fleetcore_service_operations_total"] != 2 {
		t.Fatalf("expected success and error series, got %v", byName)
	}
	if byName["fleetcore_service_operation_duration_seconds"] != 1 {
		t.Fatalf("expected one histogram series, got %v", byName)
	}
}
