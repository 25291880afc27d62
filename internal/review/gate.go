package review

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/danshapiro/autoeng/internal/gitutil"
	"github.com/danshapiro/autoeng/internal/model"
	"github.com/danshapiro/autoeng/internal/persist"
)

// MemoryFile and RetryFile locate the two documents the gate reads and
// updates on every commit attempt.
const (
	MemoryFile    = ".claude/status/memory.json"
	RetryFile     = ".claude/status/review_retry_count.json"
	errorHistFile = ".claude/status/error_history.json"

	// EnvSkipReview is the documented escape hatch for bypassing the gate
	// entirely — e.g. to land a fix for a reviewer that is itself broken.
	EnvSkipReview = "SKIP_CODEX_REVIEW"
)

// GateDecision is the review gate's verdict on one attempted commit.
type GateDecision struct {
	Deny   bool
	Reason string
}

func allow() GateDecision { return GateDecision{} }

func deny(reason string) GateDecision { return GateDecision{Deny: true, Reason: reason} }

// IsCommitCommand reports whether a shell command string is a git commit
// invocation the gate should intercept. Every other Bash command passes
// through untouched — the gate only ever concerns itself with commits.
func IsCommitCommand(command string) bool {
	return strings.Contains(command, "git commit")
}

// RunGate evaluates one attempted "git commit" against the current task's
// review requirements. It is fail-closed: any error resolving or running
// the external reviewer denies the commit rather than allowing it silently.
func RunGate(projectRoot, command string, timeout time.Duration) (GateDecision, error) {
	if !IsCommitCommand(command) {
		return allow(), nil
	}

	if isTruthyEnv(EnvSkipReview) {
		return allow(), nil
	}

	staged, err := gitutil.StagedFiles(projectRoot)
	if err != nil || len(staged) == 0 {
		return allow(), nil
	}

	stagedHash, err := stagedFilesHash(projectRoot)
	if err != nil {
		return allow(), nil
	}

	mem := persist.TryReadJSON[model.Memory](filepath.Join(projectRoot, MemoryFile))
	if mem.CurrentTask == nil || mem.CurrentTask.ID == "" {
		return allow(), nil
	}
	current := mem.CurrentTask
	taskID := current.ID

	retryPath := filepath.Join(projectRoot, RetryFile)
	retryState := persist.TryReadJSON[model.ReviewRetryState](retryPath)
	isSameAttempt := retryState.CurrentTaskID == taskID && retryState.LastStagedHash == stagedHash

	tracker := LoadStateTracker(projectRoot)
	_, hasSnapshot := tracker.PreviousSnapshot(taskID)
	isTransition := tracker.DetectTransition(current)
	transition := InternalProgress
	if isTransition {
		transition = tracker.ClassifyTransition(current)
	}
	requiresDeep := transition.RequiresDeepReview()

	var prompt Prompt
	if requiresDeep {
		previous, _ := tracker.PreviousSnapshot(taskID)
		var previousPtr *model.TaskSnapshot
		if hasSnapshot {
			previousPtr = &previous
		}
		prompt, err = BuildDeepPrompt(projectRoot, current, previousPtr, transition)
	} else {
		prompt, err = BuildRegularPrompt(projectRoot, current)
	}
	if err != nil {
		return deny(reviewUnavailableMessage(err)), nil
	}

	bin, err := ResolveReviewerBinary()
	if err != nil {
		return deny(reviewUnavailableMessage(err)), nil
	}

	result, err := Execute(context.Background(), bin, prompt, timeout)
	if err != nil {
		return deny(reviewUnavailableMessage(err)), nil
	}

	switch result.Verdict {
	case VerdictPass:
		if requiresDeep && !result.StateTransitionValid {
			return deny(result.FormatErrorMessage()), nil
		}
		if isTransition || !hasSnapshot {
			if err := tracker.UpdateSnapshot(current); err != nil {
				return GateDecision{}, fmt.Errorf("update task snapshot: %w", err)
			}
		}
		return allow(), nil
	case VerdictWarn:
		if !hasSnapshot {
			if err := tracker.UpdateSnapshot(current); err != nil {
				return GateDecision{}, fmt.Errorf("update task snapshot: %w", err)
			}
		}
		return allow(), nil
	default:
		return handleFailure(projectRoot, retryPath, retryState, taskID, stagedHash, isSameAttempt, result)
	}
}

func handleFailure(projectRoot, retryPath string, retryState model.ReviewRetryState, taskID, stagedHash string, isSameAttempt bool, result Result) (GateDecision, error) {
	failureReason := result.FormatErrorMessage()

	if isSameAttempt {
		retryState.ConsecutiveFailures++
	} else {
		retryState.ConsecutiveFailures = 1
		retryState.CurrentTaskID = taskID
		retryState.LastStagedHash = stagedHash
		retryState.FailureReasons = nil
	}
	retryState.LastFailureAt = time.Now().UTC().Format(time.RFC3339)
	retryState.FailureReasons = append(retryState.FailureReasons, model.FailureEntry{
		ID:     persist.NewID(),
		Reason: failureReason,
	})

	_ = persist.WriteJSON(retryPath, retryState)

	if retryState.ConsecutiveFailures >= model.MaxReviewRetries {
		recordReviewFailure(projectRoot, taskID, failureReason)
		return deny(fmt.Sprintf(`❌ Code Review Failed (%d/%d):

%s

⚠️ RETRY LIMIT EXCEEDED

The same code has been rejected %d times. This suggests a fundamental issue.

Recommended actions:
1. Try a completely different implementation approach
2. Skip review temporarily: export SKIP_CODEX_REVIEW=1 && git commit
3. Mark task as BLOCKED: edit ROADMAP.md and change [ ] to [!]
4. Review the task requirements in %s.md

Previous failures:
%s
`, retryState.ConsecutiveFailures, model.MaxReviewRetries, failureReason, retryState.ConsecutiveFailures, taskID, joinFailureReasons(retryState.FailureReasons))), nil
	}

	return deny(fmt.Sprintf("❌ Code Review Failed (Attempt %d/%d):\n\n%s\n\n\U0001F4A1 Fix the issues above and try again.",
		retryState.ConsecutiveFailures, model.MaxReviewRetries, failureReason)), nil
}

// joinFailureReasons renders the retry state's failure history for display,
// one reason per line separated by a rule; the ULID stamped on each entry is
// provenance for cross-referencing, not shown in the human-facing message.
func joinFailureReasons(entries []model.FailureEntry) string {
	reasons := make([]string, len(entries))
	for i, e := range entries {
		reasons[i] = e.Reason
	}
	return strings.Join(reasons, "\n---\n")
}

func recordReviewFailure(projectRoot, taskID, reason string) {
	errPath := filepath.Join(projectRoot, errorHistFile)
	errs := persist.TryReadJSON[[]model.ErrorRecord](errPath)
	errs = append(errs, model.ErrorRecord{
		Task:      taskID,
		Kind:      model.ErrorKindCodexReviewFailure,
		Command:   "git commit",
		Error:     model.TruncateErrorMessage(reason),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	_ = persist.WriteJSON(errPath, errs)
}

func reviewUnavailableMessage(err error) string {
	return fmt.Sprintf(`❌ Review could not be executed, commit blocked.

Error:
%s

Fix:
1) Ensure the reviewer CLI is installed and available in PATH
2) Re-run the commit after fixing the review tool

If you intentionally want to bypass the gate, set SKIP_CODEX_REVIEW=1 or remove
the review-gate hook from .claude/settings.json.`, err)
}

// stagedFilesHash hashes the staged diff with SHA-256 to detect whether a
// retried commit carries the same content as its last rejection.
func stagedFilesHash(projectRoot string) (string, error) {
	diff, err := gitutil.StagedDiff(projectRoot)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(diff))
	return hex.EncodeToString(sum[:]), nil
}

func isTruthyEnv(name string) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true":
		return true
	default:
		return false
	}
}
