package domain

import "testing"

func TestCanModifyMatrix(t *testing.T) {
	cases := []struct {
		role   Role
		entity EntityType
		want   bool
	}{
		{RoleAdmin, EntityShip, true},
		{RoleAdmin, EntityComponent, true},
		{RoleAdmin, EntityJob, true},
		{RoleAdmin, EntityNotification, true},
		{RoleEngineer, EntityShip, false},
		{RoleEngineer, EntityComponent, true},
		{RoleEngineer, EntityJob, true},
		{RoleInspector, EntityShip, false},
		{RoleInspector, EntityComponent, false},
		{RoleInspector, EntityJob, false},
		{RoleInspector, EntityNotification, true},
		{Role("Visitor"), EntityJob, false},
		{RoleAdmin, EntityType("unknown"), false},
	}
	for _, tc := range cases {
		if got := CanModify(tc.role, tc.entity); got != tc.want {
			t.Errorf("CanModify(%s, %s) = %v, want %v", tc.role, tc.entity, got, tc.want)
		}
	}
}

func TestResultMergeAndBlocking(t *testing.T) {
	var combined Result
	combined.Merge(Result{})
	if combined.HasBlocking() {
		t.Fatal("empty result should not block")
	}
	combined.Merge(Result{Violations: []Violation{{Rule: "a", Severity: SeverityWarn}}})
	if combined.HasBlocking() {
		t.Fatal("warn alone should not block")
	}
	combined.Merge(Result{Violations: []Violation{{Rule: "b", Severity: SeverityBlock}}})
	if !combined.HasBlocking() {
		t.Fatal("block severity should block")
	}
	if len(combined.Violations) != 2 {
		t.Fatalf("expected merged violations, got %d", len(combined.Violations))
	}
}
