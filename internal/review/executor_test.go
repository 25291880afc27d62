package review

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestExecuteParsesPassingOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shebang scripts only")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "reviewer")
	writeExecutable(t, bin, "#!/bin/sh\ncat >/dev/null\necho 'VERDICT: PASS'\necho 'ISSUES:'\nexit 0\n")

	result, err := Execute(context.Background(), bin, Prompt{Instruction: "do the thing", Mode: ModeRegular}, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if result.Verdict != VerdictPass {
		t.Errorf("verdict = %v, want Pass", result.Verdict)
	}
}

func TestExecuteReturnsErrorOnNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shebang scripts only")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "reviewer")
	writeExecutable(t, bin, "#!/bin/sh\ncat >/dev/null\necho boom 1>&2\nexit 1\n")

	_, err := Execute(context.Background(), bin, Prompt{Instruction: "x", Mode: ModeRegular}, time.Second)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want error mentioning stderr output", err)
	}
}

func TestExecuteTimesOut(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shebang scripts only")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "reviewer")
	writeExecutable(t, bin, "#!/bin/sh\ncat >/dev/null\nsleep 5\necho 'VERDICT: PASS'\n")

	_, err := Execute(context.Background(), bin, Prompt{Instruction: "x", Mode: ModeRegular}, 100*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %v, want timeout error", err)
	}
}
