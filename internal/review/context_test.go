package review

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danshapiro/autoeng/internal/model"
)

func initReviewTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@test",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@test",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-b", "main")
	run("config", "user.name", "test")
	run("config", "user.email", "test@test")
	return dir
}

func TestBuildRegularPromptNoStagedChanges(t *testing.T) {
	dir := initReviewTestRepo(t)
	task := &model.CurrentTask{ID: "TASK-001", Status: model.TaskInProgress}

	prompt, err := BuildRegularPrompt(dir, task)
	if err != nil {
		t.Fatal(err)
	}
	if prompt.Mode != ModeRegular {
		t.Errorf("mode = %v, want ModeRegular", prompt.Mode)
	}
	if !strings.Contains(prompt.Instruction, noStagedChanges) {
		t.Errorf("expected placeholder for empty diff, got:\n%s", prompt.Instruction)
	}
	if !strings.Contains(prompt.Instruction, noAPIContract) {
		t.Errorf("expected API contract placeholder, got:\n%s", prompt.Instruction)
	}
}

func TestBuildRegularPromptIncludesTaskSpec(t *testing.T) {
	dir := initReviewTestRepo(t)
	phaseDir := filepath.Join(dir, ".claude", "phases", "phase-1")
	if err := os.MkdirAll(phaseDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(phaseDir, "TASK-001_demo.md"), []byte("# TASK-001 demo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	task := &model.CurrentTask{ID: "TASK-001", Status: model.TaskInProgress}
	prompt, err := BuildRegularPrompt(dir, task)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt.Instruction, "# TASK-001 demo") {
		t.Errorf("expected task spec content, got:\n%s", prompt.Instruction)
	}
}

func TestBuildDeepPromptIncludesTransitionAndRequirements(t *testing.T) {
	dir := initReviewTestRepo(t)
	statusDir := filepath.Join(dir, ".claude", "status")
	if err := os.MkdirAll(statusDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(statusDir, "requirements.md"), []byte("Build the thing.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	task := &model.CurrentTask{ID: "TASK-001", Status: model.TaskCompleted}
	previous := &model.TaskSnapshot{TaskID: "TASK-001", Status: model.TaskInProgress}

	prompt, err := BuildDeepPrompt(dir, task, previous, CompleteTask)
	if err != nil {
		t.Fatal(err)
	}
	if prompt.Mode != ModeDeep {
		t.Errorf("mode = %v, want ModeDeep", prompt.Mode)
	}
	if !strings.Contains(prompt.Instruction, "Build the thing.") {
		t.Errorf("expected requirements content, got:\n%s", prompt.Instruction)
	}
	if !strings.Contains(prompt.Instruction, "IN_PROGRESS") || !strings.Contains(prompt.Instruction, "COMPLETED") {
		t.Errorf("expected transition states in prompt, got:\n%s", prompt.Instruction)
	}
	if !strings.Contains(prompt.Instruction, "STATE_TRANSITION_VALID") {
		t.Errorf("expected deep-review output footer, got:\n%s", prompt.Instruction)
	}
}

func TestSummarizeRoadmapTruncatesToTwentyLines(t *testing.T) {
	dir := t.TempDir()
	statusDir := filepath.Join(dir, ".claude", "status")
	if err := os.MkdirAll(statusDir, 0o755); err != nil {
		t.Fatal(err)
	}
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, "line")
	}
	if err := os.WriteFile(filepath.Join(statusDir, "ROADMAP.md"), []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}

	summary := summarizeRoadmap(dir)
	if got := strings.Count(summary, "line"); got != roadmapSummaryLen {
		t.Errorf("summarizeRoadmap returned %d lines, want %d", got, roadmapSummaryLen)
	}
}
