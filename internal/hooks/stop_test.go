package hooks

import (
	"strings"
	"testing"
)

func TestRunStopNoRoadmap(t *testing.T) {
	dir := t.TempDir()
	out := RunStop(dir)
	if out.Decision != "block" {
		t.Errorf("decision = %q, want block", out.Decision)
	}
	if !strings.Contains(out.Reason, "ROADMAP NOT FOUND") {
		t.Errorf("reason = %q, want ROADMAP NOT FOUND", out.Reason)
	}
}

func TestRunStopComplete(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, ".claude/status/ROADMAP.md", "- [x] TASK-001: Done\n- [x] TASK-002: Also done\n")

	out := RunStop(dir)
	if out.Decision != "allow" {
		t.Errorf("decision = %q, want allow", out.Decision)
	}
	if !strings.Contains(out.Reason, "ALL TASKS COMPLETED") {
		t.Errorf("reason = %q, want ALL TASKS COMPLETED", out.Reason)
	}
}

func TestRunStopInProgress(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, ".claude/status/ROADMAP.md", "- [x] TASK-001: Done\n- [ ] TASK-002: Pending\n- [ ] TASK-003: Also pending\n")
	writeProjectFile(t, dir, ".claude/status/memory.json", `{"project":"x","schema_version":"1"}`)

	out := RunStop(dir)
	if out.Decision != "block" {
		t.Errorf("decision = %q, want block", out.Decision)
	}
	if !strings.Contains(out.Reason, "AUTONOMOUS MODE ACTIVE") {
		t.Errorf("reason = %q, want AUTONOMOUS MODE ACTIVE", out.Reason)
	}
}

func TestRunStopRetryCeilingIsStuck(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, ".claude/status/ROADMAP.md", "- [ ] TASK-001: Pending\n")
	writeProjectFile(t, dir, ".claude/status/memory.json", `{"current_task":{"id":"TASK-001","status":"IN_PROGRESS","retry_count":5,"max_retries":5}}`)

	out := RunStop(dir)
	if out.Decision != "block" {
		t.Errorf("decision = %q, want block", out.Decision)
	}
	if !strings.Contains(out.Reason, "STUCK STATE DETECTED") {
		t.Errorf("reason = %q, want STUCK STATE DETECTED", out.Reason)
	}
}

func TestRunStopTaskScopedUnresolvedErrorsIsStuck(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, ".claude/status/ROADMAP.md", "- [ ] TASK-001: Pending\n")
	writeProjectFile(t, dir, ".claude/status/memory.json", `{"current_task":{"id":"TASK-001","status":"IN_PROGRESS","retry_count":0,"max_retries":5}}`)
	writeProjectFile(t, dir, ".claude/status/error_history.json", `[
		{"task":"TASK-001","kind":"command_failure","error":"e1","timestamp":"t1"},
		{"task":"TASK-001","kind":"command_failure","error":"e2","timestamp":"t2"},
		{"task":"TASK-001","kind":"command_failure","error":"e3","timestamp":"t3"}
	]`)

	out := RunStop(dir)
	if !strings.Contains(out.Reason, "STUCK STATE DETECTED") {
		t.Errorf("reason = %q, want STUCK STATE DETECTED", out.Reason)
	}
}
