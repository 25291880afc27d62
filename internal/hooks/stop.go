package hooks

import (
	"fmt"
	"path/filepath"

	"github.com/danshapiro/autoeng/internal/model"
	"github.com/danshapiro/autoeng/internal/persist"
	"github.com/danshapiro/autoeng/internal/roadmap"
)

// maxConsecutiveErrors bounds how many of the most recent error_history.json
// entries may be unresolved before the loop is considered stuck, regardless
// of which task they're scoped to.
const maxConsecutiveErrors = 10

// maxTaskScopedUnresolvedErrors bounds how many unresolved errors scoped to
// the current task alone are tolerated before the loop is considered stuck.
const maxTaskScopedUnresolvedErrors = 3

// StopOutput is the Stop hook's output: a plain allow/block decision plus a
// human-readable reason, never JSON-nested further.
type StopOutput struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// RunStop is the Stop hook: the loop driver's continue/halt decision. It
// checks, in order, whether a roadmap exists, whether it's complete, whether
// the current task looks stuck, and otherwise instructs the loop to
// continue onto the next pending task.
func RunStop(projectRoot string) StopOutput {
	r, exists := roadmap.Load(projectRoot)
	if !exists {
		return StopOutput{Decision: "block", Reason: noRoadmapReason}
	}

	if r.IsComplete() {
		return StopOutput{
			Decision: "allow",
			Reason:   completionReason(r),
		}
	}

	if reason, suggestion, stuck := checkStuck(projectRoot); stuck {
		return StopOutput{Decision: "block", Reason: stuckReason(reason, suggestion)}
	}

	return StopOutput{Decision: "block", Reason: continueReason(r)}
}

const noRoadmapReason = `❌ ROADMAP NOT FOUND

Cannot run autonomous loop without a roadmap.

Action Required:
1. Create:
   - .claude/status/ROADMAP.md
   - .claude/status/api_contract.yaml
   - .claude/status/memory.json

2. Or create manually following the template.
`

func completionReason(r roadmap.Roadmap) string {
	return fmt.Sprintf(`🎉 ALL TASKS COMPLETED!

Summary:
- Total tasks: %d
- Completed: %d

The autonomous loop has finished successfully.
You may now stop.
`, r.Total(), len(r.Completed))
}

func stuckReason(reason, suggestion string) string {
	return fmt.Sprintf(`⚠️ STUCK STATE DETECTED

Reason: %s
Suggestion: %s

Options:
1. Try a COMPLETELY DIFFERENT approach
2. Skip current task: Mark as [!] in ROADMAP
3. Request human intervention

DO NOT simply retry the same approach.
`, reason, suggestion)
}

func continueReason(r roadmap.Roadmap) string {
	total := r.Total()
	completed := len(r.Completed)
	progressPct := 0.0
	if total > 0 {
		progressPct = float64(completed) / float64(total) * 100.0
	}

	nextTask := "Check ROADMAP"
	if task, ok := r.FindCurrentTask(); ok {
		nextTask = truncateRunesToLen(task.Content, 80)
	}

	return fmt.Sprintf(`🔄 AUTONOMOUS MODE ACTIVE

Progress: %d/%d (%.1f%%)
├── Completed: %d
├── In Progress: %d
└── Pending: %d

Next Task: %s

Continue the loop. DO NOT STOP.
`, completed, total, progressPct, completed, len(r.InProgress), len(r.Pending), nextTask)
}

func truncateRunesToLen(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func checkStuck(projectRoot string) (reason, suggestion string, stuck bool) {
	memPath := filepath.Join(projectRoot, memoryFile)
	mem := persist.TryReadJSON[model.Memory](memPath)

	taskID := "unknown"
	retryCount := 0
	if mem.CurrentTask != nil {
		if mem.CurrentTask.ID != "" {
			taskID = mem.CurrentTask.ID
		}
		retryCount = mem.CurrentTask.RetryCount
	}

	if retryCount >= model.DefaultMaxRetries {
		return fmt.Sprintf("Task %s exceeded %d retries", taskID, model.DefaultMaxRetries),
			"Try different approach or skip task", true
	}

	errPath := filepath.Join(projectRoot, errorHistoryFile)
	errs := persist.TryReadJSON[[]model.ErrorRecord](errPath)
	if len(errs) == 0 {
		return "", "", false
	}

	taskUnresolved := 0
	for _, e := range errs {
		if e.Task == taskID && e.Resolution == nil {
			taskUnresolved++
		}
	}
	if taskUnresolved >= maxTaskScopedUnresolvedErrors {
		return fmt.Sprintf("Task %s has %d unresolved errors", taskID, taskUnresolved),
			"Review error patterns, try alternative", true
	}

	recentUnresolved := 0
	for i := len(errs) - 1; i >= 0 && len(errs)-i <= maxConsecutiveErrors; i-- {
		if errs[i].Resolution == nil {
			recentUnresolved++
		}
	}
	if recentUnresolved >= maxConsecutiveErrors {
		return fmt.Sprintf("%d consecutive errors", recentUnresolved),
			"System may need intervention", true
	}

	return "", "", false
}
