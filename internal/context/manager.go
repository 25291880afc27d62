package context

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/danshapiro/autoeng/internal/config"
	"github.com/danshapiro/autoeng/internal/gitutil"
	"github.com/danshapiro/autoeng/internal/model"
	"github.com/danshapiro/autoeng/internal/persist"
	"github.com/danshapiro/autoeng/internal/roadmap"
	"github.com/danshapiro/autoeng/internal/statemachine"
)

// Mode selects which briefing is assembled and at what size budget.
type Mode int

const (
	ModeAutonomous Mode = iota
	ModeReview
	ModeTask
)

const (
	statusDir = ".claude/status"
	phasesDir = ".claude/phases"
)

// Manager assembles context sections by reading the project's state files.
// It never errors on a missing or malformed file: an absent section is
// simply omitted so one bad file can't take down the whole briefing.
type Manager struct {
	ProjectRoot string
	Config      config.Config
}

// NewManager returns a Manager rooted at projectRoot.
func NewManager(projectRoot string, cfg config.Config) *Manager {
	return &Manager{ProjectRoot: projectRoot, Config: cfg}
}

func (m *Manager) path(parts ...string) string {
	return filepath.Join(append([]string{m.ProjectRoot}, parts...)...)
}

// SystemHeader returns the banner that orients the assistant to the active mode.
func (m *Manager) SystemHeader(mode Mode) string {
	switch mode {
	case ModeAutonomous:
		return `
╔══════════════════════════════════════════════════════════════════════════════╗
║                    AUTONOMOUS MODE - CONTEXT INJECTION                        ║
╠══════════════════════════════════════════════════════════════════════════════╣
║  WARNING: Your conversation history may be compressed/truncated               ║
║  TRUST ONLY the state files below, NOT your "memory"                          ║
║  CONTINUE the loop - do NOT stop until ROADMAP is complete                    ║
╚══════════════════════════════════════════════════════════════════════════════╝
`
	case ModeReview:
		return `
╔══════════════════════════════════════════════════════════════════════════════╗
║                    CODE REVIEW MODE - CONTEXT INJECTION                       ║
╠══════════════════════════════════════════════════════════════════════════════╣
║  Review the code changes against the API contract and project standards       ║
║  Check for: contract compliance, test coverage, error handling, consistency   ║
╚══════════════════════════════════════════════════════════════════════════════╝
`
	case ModeTask:
		return `
╔══════════════════════════════════════════════════════════════════════════════╗
║                    TASK EXECUTION MODE - CONTEXT INJECTION                    ║
╠══════════════════════════════════════════════════════════════════════════════╣
║  Focus on the current task specification below                                ║
║  Follow TDD: write a failing test first, then implement, then verify          ║
╚══════════════════════════════════════════════════════════════════════════════╝
`
	default:
		return ""
	}
}

// MemoryContext summarizes memory.json: current task, working context, next
// action and progress.
func (m *Manager) MemoryContext() string {
	mem := persist.TryReadJSON[model.Memory](m.path(statusDir, "memory.json"))

	var b strings.Builder
	b.WriteString("\n## CURRENT STATE\n")

	if mem.CurrentTask != nil && mem.CurrentTask.ID != "" {
		name := mem.CurrentTask.Name
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&b, "\n### Current Task\n- **ID**: %s\n- **Name**: %s\n- **Status**: %s\n- **Retry Count**: %d/%d\n",
			mem.CurrentTask.ID, name, mem.CurrentTask.Status, mem.CurrentTask.RetryCount, mem.CurrentTask.MaxRetries)
	}

	if mem.WorkingContext.CurrentFile != "" {
		fn := mem.WorkingContext.CurrentFunction
		if fn == "" {
			fn = "N/A"
		}
		fmt.Fprintf(&b, "\n### Working Context\n- **Current File**: `%s`\n- **Current Function**: `%s`\n",
			mem.WorkingContext.CurrentFile, fn)

		if len(mem.WorkingContext.PendingTests) > 0 {
			tests := mem.WorkingContext.PendingTests
			if len(tests) > 5 {
				tests = tests[:5]
			}
			fmt.Fprintf(&b, "- **Pending Tests**: %s\n", strings.Join(tests, ", "))
		}
	}

	if mem.NextAction.Action != "" {
		target := mem.NextAction.Target
		if target == "" {
			target = "N/A"
		}
		reason := mem.NextAction.Reason
		if reason == "" {
			reason = "N/A"
		}
		fmt.Fprintf(&b, "\n### Next Action\n- **Action**: %s\n- **Target**: %s\n- **Reason**: %s\n",
			mem.NextAction.Action, target, reason)
	}

	if mem.Progress.PhasesTotal > 0 || mem.Progress.Completed > 0 {
		total := mem.Progress.Completed + mem.Progress.Pending + mem.Progress.InProgress + mem.Progress.Skipped
		pct := 0.0
		if total > 0 {
			pct = float64(mem.Progress.Completed) / float64(total) * 100
		}
		phase := mem.Progress.CurrentPhase
		if phase == "" {
			phase = "N/A"
		}
		fmt.Fprintf(&b, "\n### Progress\n- **Tasks**: %d/%d (%.1f%%)\n- **Current Phase**: %s\n",
			mem.Progress.Completed, total, pct, phase)
	}

	return b.String()
}

// StateMachineContext summarizes the git-backed workflow state. It returns
// "" until the project opts in by creating state.json.
func (m *Manager) StateMachineContext() string {
	if !persist.FileExists(m.path(statemachine.StateFile)) {
		return ""
	}
	if !gitutil.IsRepo(m.ProjectRoot) {
		return ""
	}

	sm := statemachine.New(m.ProjectRoot)
	current, err := sm.CurrentState()
	if err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n## STATE MACHINE\n\n")
	fmt.Fprintf(&b, "**Current State**: %s %s\n", current.StateID.Icon(), strings.ToUpper(string(current.StateID)))
	if current.TaskID != "" {
		fmt.Fprintf(&b, "**Task ID**: %s\n", current.TaskID)
	}
	if current.Phase != "" {
		fmt.Fprintf(&b, "**Phase**: %s\n", current.Phase)
	}
	fmt.Fprintf(&b, "**Description**: %s\n\n", statemachine.StateDescription(current.StateID))

	next := statemachine.NextStates(current.StateID)
	if len(next) > 0 {
		recommended, hasRecommendation := statemachine.RecommendNextState(current.StateID)
		b.WriteString("**Possible Next States**:\n")
		for _, n := range next {
			suffix := ""
			if hasRecommendation && n == recommended {
				suffix = " (Recommended)"
			}
			fmt.Fprintf(&b, "  -> %s %s%s\n", n.Icon(), n, suffix)
		}
		b.WriteString("\n")
	}

	snapshots, err := sm.ListStates()
	if err == nil && len(snapshots) > 1 {
		b.WriteString("**Recent Transitions**:\n")
		limit := len(snapshots)
		if limit > 5 {
			limit = 5
		}
		for _, snap := range snapshots[:limit] {
			stateID, taskID, ok := model.ParseTagInfo(snap.Tag)
			if !ok {
				continue
			}
			task := taskID
			if task == "" {
				task = "-"
			}
			fmt.Fprintf(&b, "  %s %s [%s]\n", stateID.Icon(), stateID, task)
		}
	}

	return b.String()
}

// RoadmapContext summarizes ROADMAP.md. includeCompleted adds a recent-completed
// section, used only in the full Autonomous briefing when explicitly requested.
func (m *Manager) RoadmapContext(includeCompleted bool) string {
	r, ok := roadmap.Load(m.ProjectRoot)
	if !ok {
		return "\n## ROADMAP NOT FOUND\nInitialize `.claude/status/ROADMAP.md` first!\n"
	}

	var b strings.Builder
	b.WriteString("\n## ROADMAP\n")
	done := len(r.Completed) + len(r.Skipped)
	fmt.Fprintf(&b, "\n**Progress**: %d/%d tasks done (completed + skipped)\n", done, r.Total())

	if len(r.InProgress) > 0 {
		b.WriteString("\n### IN PROGRESS\n")
		for _, task := range r.InProgress {
			fmt.Fprintf(&b, "%s\n", task.RawLine)
		}
	}

	b.WriteString("\n### PENDING\n")
	pendingCount := len(r.Pending)
	if pendingCount > 20 {
		pendingCount = 20
	}
	for _, task := range r.Pending[:pendingCount] {
		fmt.Fprintf(&b, "%s\n", task.RawLine)
	}
	if len(r.Pending) > 20 {
		fmt.Fprintf(&b, "... and %d more\n", len(r.Pending)-20)
	}

	if includeCompleted && len(r.Completed) > 0 {
		b.WriteString("\n### COMPLETED (Recent)\n")
		completed := r.Completed
		count := len(completed)
		if count > 5 {
			count = 5
		}
		for i := len(completed) - 1; i >= len(completed)-count; i-- {
			fmt.Fprintf(&b, "%s\n", completed[i].RawLine)
		}
	}

	return b.String()
}

// CurrentTaskSpecContext embeds the detail file for the task memory.json
// currently points at, searching .claude/phases recursively.
func (m *Manager) CurrentTaskSpecContext() string {
	mem := persist.TryReadJSON[model.Memory](m.path(statusDir, "memory.json"))
	if mem.CurrentTask == nil || mem.CurrentTask.ID == "" {
		return ""
	}

	content, ok := roadmap.FindTaskSpec(m.ProjectRoot, mem.CurrentTask.ID)
	if !ok {
		return ""
	}
	return fmt.Sprintf("\n## CURRENT TASK SPEC: %s\n```markdown\n%s\n```\n", mem.CurrentTask.ID, content)
}

// ErrorContext summarizes error_history.json, optionally filtered to one
// task id. Unfiltered, it shows the most recent unresolved errors.
func (m *Manager) ErrorContext(taskFilter string) string {
	errs := persist.TryReadJSON[[]model.ErrorRecord](m.path(statusDir, "error_history.json"))
	if len(errs) == 0 {
		return ""
	}

	var relevant []model.ErrorRecord
	if taskFilter != "" {
		for _, e := range errs {
			if e.Task == taskFilter {
				relevant = append(relevant, e)
			}
		}
	} else {
		start := 0
		if len(errs) > 15 {
			start = len(errs) - 15
		}
		relevant = errs[start:]
	}
	if len(relevant) == 0 {
		return ""
	}

	var unresolved []model.ErrorRecord
	for _, e := range relevant {
		if e.Resolution == nil {
			unresolved = append(unresolved, e)
		}
	}
	if len(unresolved) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n## ERROR HISTORY (MUST AVOID REPEATING)\n\n### Unresolved Errors\n")
	count := len(unresolved)
	if count > 5 {
		count = 5
	}
	for i := len(unresolved) - 1; i >= len(unresolved)-count; i-- {
		e := unresolved[i]
		attempted := e.AttemptedFix
		if attempted == "" {
			attempted = "N/A"
		}
		fmt.Fprintf(&b, "\n**Task**: %s\n**Error**: %s\n**Attempted**: %s\n---\n",
			e.Task, truncateRunes(e.Error, 200), truncateRunes(attempted, 100))
	}

	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ContractContext embeds api_contract.yaml, truncated to 8000 bytes.
func (m *Manager) ContractContext() string {
	content, ok := persist.TryReadFile(m.path(statusDir, "api_contract.yaml"))
	if !ok {
		return ""
	}
	return fmt.Sprintf("\n## API CONTRACT\n```yaml\n%s\n```\n", TruncateMiddle(content, 8000))
}

// RepoMapContext embeds the generated repository map, preferring the TOON
// format over Markdown, truncated to 15000 bytes.
func (m *Manager) RepoMapContext() string {
	candidates := []struct {
		rel   string
		label string
	}{
		{"repo_map/structure.toon", "TOON"},
		{"repo_map/structure.md", "Markdown"},
	}

	for _, c := range candidates {
		full := m.path(".claude", c.rel)
		content, ok := persist.TryReadFile(full)
		if !ok {
			continue
		}
		return fmt.Sprintf("\n## REPOSITORY MAP (Code Skeleton - %s)\n```text\n%s\n```\n", c.label, TruncateMiddle(content, 15000))
	}
	return "\n## REPOSITORY MAP\n\n*Not generated. Run the `repo-map` subcommand (default format: TOON).*\n"
}

// GitContext embeds the last limit commits, oneline format, capped at 2000 runes.
func (m *Manager) GitContext(limit int) string {
	logOutput, err := gitutil.Log(m.ProjectRoot, limit)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\n## RECENT GIT HISTORY\n```\n%s\n```\n", truncateRunes(logOutput, 2000))
}

// DecisionsContext embeds the last limit lines of decisions.log.
func (m *Manager) DecisionsContext(limit int) string {
	content, ok := persist.TryReadFile(m.path(statusDir, "decisions.log"))
	if !ok {
		return ""
	}
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) == 0 || (len(lines) == 1 && lines[0] == "") {
		return ""
	}
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return fmt.Sprintf("\n## RECENT DECISIONS\n```\n%s\n```\n", strings.Join(lines, "\n"))
}

const (
	// BudgetAutonomous caps the default full-briefing document.
	BudgetAutonomous = 80000
	// BudgetReview caps the code-review briefing.
	BudgetReview = 40000
	// BudgetTask caps the single-task briefing.
	BudgetTask = 30000
)

func (m *Manager) budget(mode Mode) int {
	b := m.Config.Context.Budgets
	switch mode {
	case ModeReview:
		if b.Review > 0 {
			return b.Review
		}
		return BudgetReview
	case ModeTask:
		if b.Task > 0 {
			return b.Task
		}
		return BudgetTask
	default:
		if b.Autonomous > 0 {
			return b.Autonomous
		}
		return BudgetAutonomous
	}
}

const autonomousFooter = `
═══════════════════════════════════════════════════════════════════════════════
MANDATORY ACTIONS:
1. Read the CURRENT STATE above carefully
2. Check ERROR HISTORY to avoid repeating mistakes
3. Follow the NEXT ACTION from memory.json
4. Execute following TDD (test first, then implement)
5. Update memory.json IMMEDIATELY after any progress
6. Continue the loop - DO NOT STOP until all tasks are [x] marked
═══════════════════════════════════════════════════════════════════════════════
`

const reviewFooter = `
═══════════════════════════════════════════════════════════════════════════════
REVIEW CHECKLIST:
1. Does the code match the API CONTRACT exactly? (signatures, types, returns)
2. Are there comprehensive tests? (happy path + edge cases + error cases)
3. Is error handling complete?
4. Does it follow project conventions?
5. Any security concerns?
═══════════════════════════════════════════════════════════════════════════════
`

// FullContext assembles the complete Autonomous-mode briefing, bounded to
// the autonomous budget.
func (m *Manager) FullContext() string {
	var b strings.Builder
	b.WriteString(m.SystemHeader(ModeAutonomous))
	b.WriteString(m.MemoryContext())
	b.WriteString(m.StateMachineContext())
	b.WriteString(m.RoadmapContext(false))
	b.WriteString(m.CurrentTaskSpecContext())
	b.WriteString(m.RepoMapContext())
	b.WriteString(m.ErrorContext(""))
	b.WriteString(m.ContractContext())
	b.WriteString(m.GitContext(10))
	b.WriteString(m.DecisionsContext(20))
	b.WriteString(autonomousFooter)
	return TruncateMiddle(b.String(), m.budget(ModeAutonomous))
}

// ReviewContext assembles the Review-mode briefing, bounded to the review budget.
func (m *Manager) ReviewContext() string {
	var b strings.Builder
	b.WriteString(m.SystemHeader(ModeReview))
	b.WriteString(m.MemoryContext())
	b.WriteString(m.CurrentTaskSpecContext())
	b.WriteString(m.ContractContext())
	b.WriteString(m.ErrorContext(""))
	b.WriteString(reviewFooter)
	return TruncateMiddle(b.String(), m.budget(ModeReview))
}

// TaskContext assembles the Task-mode briefing for one task, bounded to the
// task budget.
func (m *Manager) TaskContext(taskID string) string {
	var b strings.Builder
	b.WriteString(m.SystemHeader(ModeTask))
	b.WriteString(m.MemoryContext())
	b.WriteString(m.CurrentTaskSpecContext())
	b.WriteString(m.ContractContext())
	b.WriteString(m.ErrorContext(taskID))
	return TruncateMiddle(b.String(), m.budget(ModeTask))
}
