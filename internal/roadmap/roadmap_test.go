package roadmap

import "testing"

func TestParseBuckets(t *testing.T) {
	content := `
# Roadmap

## Phase 1
- [ ] Task 1 TASK-001
- [>] Task 2 (in progress) TASK-002
- [x] Task 3 (done) TASK-003

## Phase 2
- [ ] Task 4 TASK-004
- [!] Task 5 (blocked) TASK-005
- [-] Task 6 (skipped) TASK-006
`
	r := Parse(content)

	if len(r.Pending) != 2 {
		t.Errorf("pending = %d, want 2", len(r.Pending))
	}
	if len(r.InProgress) != 1 {
		t.Errorf("in_progress = %d, want 1", len(r.InProgress))
	}
	if len(r.Completed) != 1 {
		t.Errorf("completed = %d, want 1", len(r.Completed))
	}
	if len(r.Blocked) != 1 {
		t.Errorf("blocked = %d, want 1", len(r.Blocked))
	}
	if len(r.Skipped) != 1 {
		t.Errorf("skipped = %d, want 1", len(r.Skipped))
	}
	if r.Total() != 6 {
		t.Errorf("total = %d, want 6", r.Total())
	}
}

func TestParseTaskExtractsID(t *testing.T) {
	task, ok := ParseTask("- [ ] Implement the widget TASK-042")
	if !ok {
		t.Fatal("expected task to parse")
	}
	if task.TaskID != "TASK-042" {
		t.Errorf("TaskID = %q, want TASK-042", task.TaskID)
	}
	if task.Status != Pending {
		t.Errorf("Status = %q, want pending", task.Status)
	}
}

func TestParseTaskNonTaskLine(t *testing.T) {
	if _, ok := ParseTask("## Phase 1"); ok {
		t.Error("heading line should not parse as task")
	}
	if _, ok := ParseTask("Just some prose."); ok {
		t.Error("prose line should not parse as task")
	}
}

func TestHasPendingAndIsComplete(t *testing.T) {
	allDone := Parse("- [x] Done 1\n- [x] Done 2\n")
	if allDone.HasPending() {
		t.Error("HasPending should be false when all complete")
	}
	if !allDone.IsComplete() {
		t.Error("IsComplete should be true when all complete")
	}

	mixed := Parse("- [x] Done 1\n- [ ] Pending 1\n")
	if !mixed.HasPending() {
		t.Error("HasPending should be true with a pending task")
	}
	if mixed.IsComplete() {
		t.Error("IsComplete should be false with a pending task")
	}
}

func TestFindCurrentTaskPrefersInProgress(t *testing.T) {
	r := Parse("- [ ] Pending 1\n- [>] In progress 1\n")
	task, ok := r.FindCurrentTask()
	if !ok {
		t.Fatal("expected a current task")
	}
	if task.Status != InProgress {
		t.Errorf("expected in-progress task first, got %s", task.Status)
	}
}

func TestFindCurrentTaskFallsBackToPending(t *testing.T) {
	r := Parse("- [ ] Pending 1\n")
	task, ok := r.FindCurrentTask()
	if !ok || task.Status != Pending {
		t.Errorf("expected pending task, got %+v ok=%v", task, ok)
	}
}

func TestParsePreservesRawLineIndentation(t *testing.T) {
	r := Parse("  - [ ] Indented task\n")
	if len(r.Pending) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(r.Pending))
	}
	if r.Pending[0].RawLine != "  - [ ] Indented task" {
		t.Errorf("RawLine = %q", r.Pending[0].RawLine)
	}
}

func TestParsePhasePlanCountsCompletedPhases(t *testing.T) {
	content := `# PHASE-01 Setup
- [x] Task 1
- [x] Task 2

# PHASE-02 Build
- [x] Task 3
- [ ] Task 4
`
	plan := ParsePhasePlan(content)
	if len(plan.Phases) != 2 {
		t.Fatalf("phases = %v", plan.Phases)
	}
	if plan.PhasesCompleted != 1 {
		t.Errorf("PhasesCompleted = %d, want 1", plan.PhasesCompleted)
	}
}

func TestIsTaskFileAndPhasePlanFile(t *testing.T) {
	if !IsTaskFile("TASK-001_widget.md") {
		t.Error("expected TASK file match")
	}
	if IsTaskFile("notes.md") {
		t.Error("unexpected TASK file match")
	}
	if !IsPhasePlanFile("PHASE_PLAN_01.md") {
		t.Error("expected phase plan match")
	}
	if !IsRoadmapFile(".claude/status/ROADMAP.md") {
		t.Error("expected roadmap match")
	}
}
