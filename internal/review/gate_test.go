package review

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeMinimalMemory(t *testing.T, dir string) {
	t.Helper()
	statusDir := filepath.Join(dir, ".claude", "status")
	if err := os.MkdirAll(statusDir, 0o755); err != nil {
		t.Fatal(err)
	}
	memory := `{"current_task": {"id": "TASK-001", "status": "IN_PROGRESS", "retry_count": 0, "max_retries": 5}}`
	if err := os.WriteFile(filepath.Join(statusDir, "memory.json"), []byte(memory), 0o644); err != nil {
		t.Fatal(err)
	}
}

func stageAFile(t *testing.T, dir string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command("git", "-C", dir, "add", "file.txt")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git add: %v\n%s", err, out)
	}
}

func TestIsCommitCommand(t *testing.T) {
	cases := map[string]bool{
		"git commit -m 'test'": true,
		"git push origin main": false,
		"git status":           false,
		"npm install":          false,
	}
	for cmd, want := range cases {
		if got := IsCommitCommand(cmd); got != want {
			t.Errorf("IsCommitCommand(%q) = %v, want %v", cmd, got, want)
		}
	}
}

func TestRunGateNonCommitCommandPassesThrough(t *testing.T) {
	dir := t.TempDir()
	decision, err := RunGate(dir, "ls -la", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Deny {
		t.Errorf("decision = %+v, want allow", decision)
	}
}

func TestRunGateSkipEnvVarAllows(t *testing.T) {
	dir := initReviewTestRepo(t)
	writeMinimalMemory(t, dir)
	stageAFile(t, dir)
	t.Setenv(EnvSkipReview, "1")

	decision, err := RunGate(dir, "git commit -m 'x'", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Deny {
		t.Errorf("decision = %+v, want allow when %s=1", decision, EnvSkipReview)
	}
}

func TestRunGateNoStagedFilesAllows(t *testing.T) {
	dir := initReviewTestRepo(t)
	writeMinimalMemory(t, dir)
	decision, err := RunGate(dir, "git commit -m 'x'", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Deny {
		t.Errorf("decision = %+v, want allow with nothing staged", decision)
	}
}

func TestRunGateDeniesWhenReviewerUnavailable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shebang scripts only")
	}
	dir := initReviewTestRepo(t)
	writeMinimalMemory(t, dir)
	stageAFile(t, dir)

	binDir := filepath.Join(dir, "bin")
	codexPath := filepath.Join(binDir, "reviewer")
	writeExecutable(t, codexPath, "#!/bin/sh\necho boom 1>&2\nexit 1\n")
	t.Setenv(EnvReviewerBin, codexPath)

	decision, err := RunGate(dir, "git commit -m 'x'", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !decision.Deny || !strings.Contains(decision.Reason, "commit blocked") {
		t.Errorf("decision = %+v, want deny mentioning commit blocked", decision)
	}
}

func TestRunGateAllowsWhenReviewerPasses(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shebang scripts only")
	}
	dir := initReviewTestRepo(t)
	writeMinimalMemory(t, dir)
	stageAFile(t, dir)

	binDir := filepath.Join(dir, "bin")
	codexPath := filepath.Join(binDir, "reviewer")
	writeExecutable(t, codexPath, "#!/bin/sh\ncat >/dev/null\necho 'VERDICT: PASS'\necho 'ISSUES:'\nexit 0\n")
	t.Setenv(EnvReviewerBin, codexPath)

	decision, err := RunGate(dir, "git commit -m 'x'", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Deny {
		t.Errorf("decision = %+v, want allow", decision)
	}
}

func TestRunGateEscalatesAfterMaxRetries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shebang scripts only")
	}
	dir := initReviewTestRepo(t)
	writeMinimalMemory(t, dir)
	stageAFile(t, dir)

	binDir := filepath.Join(dir, "bin")
	codexPath := filepath.Join(binDir, "reviewer")
	writeExecutable(t, codexPath, "#!/bin/sh\ncat >/dev/null\necho 'VERDICT: FAIL'\necho 'ISSUES:'\necho '- [Severity: ERROR] bad'\nexit 0\n")
	t.Setenv(EnvReviewerBin, codexPath)

	var last GateDecision
	for i := 0; i < 3; i++ {
		decision, err := RunGate(dir, "git commit -m 'x'", time.Second)
		if err != nil {
			t.Fatal(err)
		}
		last = decision
	}
	if !last.Deny || !strings.Contains(last.Reason, "RETRY LIMIT EXCEEDED") {
		t.Errorf("after 3 identical failures, decision = %+v, want retry-limit escape hatch", last)
	}
}
