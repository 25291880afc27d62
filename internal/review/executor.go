package review

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds how long the external reviewer is allowed to run
// before its process is killed and the review treated as a hard failure.
const DefaultTimeout = 30 * time.Second

// Execute spawns the resolved reviewer binary, writes prompt.Instruction to
// its stdin, and parses its stdout once it exits. A non-zero exit, a spawn
// failure, or exceeding timeout all fail closed: the caller must treat an
// error here as "review could not run", never as an implicit pass.
func Execute(ctx context.Context, bin string, prompt Prompt, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, "review", "--uncommitted")
	cmd.Stdin = strings.NewReader(prompt.Instruction)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return Result{}, fmt.Errorf("reviewer timed out after %s", timeout)
	}
	if err != nil {
		stderrText := stderr.String()
		if strings.Contains(stderrText, "not found") || strings.Contains(stderrText, "No such file") {
			return Result{}, fmt.Errorf("reviewer command not found: %s", stderrText)
		}
		return Result{}, fmt.Errorf("reviewer exited with error: %w: %s", err, stderrText)
	}

	return ParseOutput(stdout.String(), prompt.Mode), nil
}
