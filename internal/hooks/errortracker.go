package hooks

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/danshapiro/autoeng/internal/model"
	"github.com/danshapiro/autoeng/internal/persist"
)

const (
	errorHistoryFile = ".claude/status/error_history.json"
	memoryFile       = ".claude/status/memory.json"
)

// RunErrorTracker is the PostToolUse error_tracker sub-handler: it records
// failed commands into error_history.json, increments retry_count in
// memory.json for command failures (not test failures), and marks matching
// unresolved errors resolved on success.
func RunErrorTracker(projectRoot string, input HookInput) {
	outcome := classifyOutcome(input)

	switch outcome.kind {
	case outcomeUnknown:
		return
	case outcomeSuccess:
		handleCommandSuccess(projectRoot, outcome.command)
	case outcomeFailure:
		handleCommandFailure(projectRoot, outcome)
	}
}

type outcomeKind int

const (
	outcomeUnknown outcomeKind = iota
	outcomeSuccess
	outcomeFailure
)

type toolOutcome struct {
	kind           outcomeKind
	command        string
	failureKind    model.ErrorKind
	message        string
	attemptedFix   string
	incrementRetry bool
}

func classifyOutcome(input HookInput) toolOutcome {
	command := input.ToolInput.Command
	result := input.result()

	exitCode, hasExitCode := extractExitCode(input, result)
	success, hasSuccess := extractSuccess(result, exitCode, hasExitCode)

	if hasSuccess && success {
		return toolOutcome{kind: outcomeSuccess, command: command}
	}
	if !hasSuccess {
		return toolOutcome{kind: outcomeUnknown}
	}

	stderr, stdout := "", ""
	if result != nil {
		stderr = firstNonEmpty(result.Stderr, result.Error)
		stdout = firstNonEmpty(result.Stdout, result.Output)
	}
	rawMessage := firstNonEmpty(strings.TrimSpace(stderr), strings.TrimSpace(stdout))
	if rawMessage == "" {
		rawMessage = "Command failed"
	}

	kind := classifyFailureKind(command, rawMessage)
	trimmedCmd := strings.TrimSpace(command)
	var attemptedFix string
	if trimmedCmd != "" {
		attemptedFix = "command: " + truncateTail(trimmedCmd, 500)
	}

	return toolOutcome{
		kind:           outcomeFailure,
		command:        truncateTail(trimmedCmd, 500),
		failureKind:    kind,
		message:        model.TruncateErrorMessage(rawMessage),
		attemptedFix:   attemptedFix,
		incrementRetry: kind == model.ErrorKindCommandFailure,
	}
}

func extractExitCode(input HookInput, result *ToolResult) (int, bool) {
	if result != nil {
		if result.ExitCode != nil {
			return *result.ExitCode, true
		}
		if result.Code != nil {
			return *result.Code, true
		}
	}
	if input.ExitCode != nil {
		return *input.ExitCode, true
	}
	return 0, false
}

func extractSuccess(result *ToolResult, exitCode int, hasExitCode bool) (bool, bool) {
	if result != nil && result.Success != nil {
		return *result.Success, true
	}
	if hasExitCode {
		return exitCode == 0, true
	}
	return false, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func isTestCommand(commandLower string) bool {
	for _, marker := range []string{"pytest", "cargo test", "go test", "npm test", "pnpm test", "yarn test"} {
		if strings.Contains(commandLower, marker) {
			return true
		}
	}
	return false
}

func classifyFailureKind(command, message string) model.ErrorKind {
	if !isTestCommand(strings.ToLower(command)) {
		return model.ErrorKindCommandFailure
	}

	looksLikeCompile := strings.Contains(message, "could not compile") ||
		strings.Contains(message, "error[E") ||
		strings.Contains(message, "error:") ||
		strings.Contains(message, "Compilation failed")
	looksLikeRuntime := strings.Contains(message, "Traceback (most recent call last)") ||
		strings.Contains(message, "ModuleNotFoundError") ||
		strings.Contains(message, "ImportError") ||
		strings.Contains(message, "SyntaxError")

	if looksLikeCompile || looksLikeRuntime {
		return model.ErrorKindCommandFailure
	}
	return model.ErrorKindTestFailure
}

func truncateTail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "…(truncated)"
}

func handleCommandSuccess(projectRoot, command string) {
	memPath := filepath.Join(projectRoot, memoryFile)
	mem := persist.TryReadJSON[model.Memory](memPath)
	if mem.CurrentTask == nil || mem.CurrentTask.ID == "" {
		return
	}

	resolveMatchingErrors(projectRoot, mem.CurrentTask.ID, command)

	now := time.Now().UTC().Format(time.RFC3339)
	mem.Session.LastCommand = command
	mem.Session.LastCommandAt = now

	if isTestCommand(strings.ToLower(command)) {
		mem.Session.LastTestCommand = command
		mem.Session.LastTestAt = now
		mem.Session.LastTestOutcome = "success"
		mem.Session.ConsecutiveTestFailures = 0
		mem.Session.RepeatTestFailureCount = 0
		mem.Session.LastTestFailureSig = ""
	}

	_ = persist.WriteJSON(memPath, mem)
}

func handleCommandFailure(projectRoot string, outcome toolOutcome) {
	memPath := filepath.Join(projectRoot, memoryFile)
	mem := persist.TryReadJSON[model.Memory](memPath)

	taskID := "unknown"
	if mem.CurrentTask != nil && mem.CurrentTask.ID != "" {
		taskID = mem.CurrentTask.ID
	}

	errPath := filepath.Join(projectRoot, errorHistoryFile)
	errs := persist.TryReadJSON[[]model.ErrorRecord](errPath)
	errs = append(errs, model.ErrorRecord{
		Task:         taskID,
		Kind:         outcome.failureKind,
		Command:      outcome.command,
		Error:        outcome.message,
		AttemptedFix: outcome.attemptedFix,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
	_ = persist.WriteJSON(errPath, errs)

	now := time.Now().UTC().Format(time.RFC3339)
	if mem.CurrentTask != nil && mem.CurrentTask.ID != "" && outcome.incrementRetry {
		mem.CurrentTask.RetryCount++
		mem.CurrentTask.LastUpdated = now
	}

	mem.ErrorState.LastError = outcome.message
	mem.ErrorState.LastErrorAt = now
	mem.ErrorState.ErrorCount++

	if outcome.command != "" {
		mem.Session.LastCommand = outcome.command
		mem.Session.LastCommandAt = now

		if isTestCommand(strings.ToLower(outcome.command)) {
			mem.Session.LastTestCommand = outcome.command
			mem.Session.LastTestAt = now
			mem.Session.LastTestOutcome = string(outcome.failureKind)

			if outcome.failureKind == model.ErrorKindTestFailure {
				firstLine := outcome.message
				if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
					firstLine = firstLine[:idx]
				}
				signature := truncateTail(outcome.command+"|"+strings.TrimSpace(firstLine), 500)

				mem.Session.ConsecutiveTestFailures++

				if mem.Session.LastTestFailureSig == signature {
					mem.Session.RepeatTestFailureCount++
				} else {
					mem.Session.RepeatTestFailureCount = 1
				}
				mem.Session.LastTestFailureSig = signature
			}
		}
	}

	_ = persist.WriteJSON(memPath, mem)
}

func resolveMatchingErrors(projectRoot, taskID, command string) {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return
	}
	cmdKey := truncateTail(cmd, 500)

	errPath := filepath.Join(projectRoot, errorHistoryFile)
	errs := persist.TryReadJSON[[]model.ErrorRecord](errPath)
	if len(errs) == 0 {
		return
	}

	resolved := 0
	now := time.Now().UTC().Format(time.RFC3339)
	for i := range errs {
		e := &errs[i]
		if e.Resolution != nil || e.Task != taskID {
			continue
		}
		matches := e.Command == cmdKey || strings.Contains(e.AttemptedFix, cmdKey)
		if !matches {
			continue
		}
		e.Resolution = &model.Resolution{
			Message:   "command succeeded: " + cmdKey,
			Timestamp: now,
		}
		resolved++
	}

	if resolved > 0 {
		_ = persist.WriteJSON(errPath, errs)
	}
}
