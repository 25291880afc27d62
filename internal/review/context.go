package review

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/danshapiro/autoeng/internal/gitutil"
	"github.com/danshapiro/autoeng/internal/model"
	"github.com/danshapiro/autoeng/internal/persist"
	"github.com/danshapiro/autoeng/internal/roadmap"
)

// Prompt is an assembled review instruction ready to be piped to the
// external reviewer's stdin.
type Prompt struct {
	Instruction string
	Mode        Mode
}

const (
	noStagedChanges   = "*No staged changes*"
	noAPIContract     = "*No API contract defined*"
	noRequirements    = "*No requirements.md file found*"
	noRoadmap         = "*No ROADMAP found*"
	roadmapSummaryLen = 20
)

// BuildRegularPrompt assembles the checklist used on every non-critical
// commit: staged diff, the active task's spec, and the API contract.
func BuildRegularPrompt(projectRoot string, current *model.CurrentTask) (Prompt, error) {
	diff, err := stagedDiff(projectRoot)
	if err != nil {
		return Prompt{}, err
	}

	taskSpec := readTaskSpec(projectRoot, current)
	contract := readAPIContract(projectRoot)

	instruction := fmt.Sprintf(`# Code Review - Task In Progress

## Current Task
%s

## Staged Changes
%s

## API Contract
%s

## Regular Review Checklist
- [ ] Code satisfies the task's stated requirements
- [ ] Function signatures match the API contract
- [ ] Error handling is complete
- [ ] No obvious security issues
- [ ] Follows project conventions

Output format:
VERDICT: PASS | FAIL | WARN
ISSUES:
- [Severity: ERROR|WARN] Description
`, taskSpec, diff, contract)

	return Prompt{Instruction: instruction, Mode: ModeRegular}, nil
}

// BuildDeepPrompt assembles the checklist used on CompleteTask/BlockTask
// transitions: it additionally surfaces the original requirements, a
// roadmap summary, and the state transition itself, and requires the
// reviewer to explicitly validate the transition.
func BuildDeepPrompt(projectRoot string, current *model.CurrentTask, previous *model.TaskSnapshot, transition TransitionType) (Prompt, error) {
	diff, err := stagedDiff(projectRoot)
	if err != nil {
		return Prompt{}, err
	}

	requirements := readRequirements(projectRoot)
	taskSpec := readTaskSpec(projectRoot, current)
	contract := readAPIContract(projectRoot)
	roadmapSummary := summarizeRoadmap(projectRoot)

	prevStatus := "UNKNOWN"
	if previous != nil {
		prevStatus = string(previous.Status)
	}
	taskID := current.ID
	if taskID == "" {
		taskID = "UNKNOWN"
	}

	instruction := fmt.Sprintf(`# Code Review - Task State Transition

⚠️ CRITICAL REVIEW: Task state is changing from %s → %s

## State Transition Context
- Previous State: %s
- New State: %s
- Task ID: %s
- Transition Type: %s

## Original Requirements
%s

## Current Task Specification
%s

## Staged Changes
%s

## API Contract Validation
%s

## Overall Progress
%s

## State Transition Review Checklist
- [ ] The change fully implements what the task requires
- [ ] It matches the design intent of the original requirements
- [ ] The API contract is honored
- [ ] The state transition is justified (e.g. COMPLETED requires passing tests)
- [ ] No new technical debt was introduced
- [ ] Documentation and comments are complete

Output format:
VERDICT: PASS | FAIL | WARN
STATE_TRANSITION_VALID: YES | NO
ISSUES:
- [Severity: CRITICAL|ERROR|WARN] Description
`, prevStatus, current.Status, prevStatus, current.Status, taskID, transition,
		requirements, taskSpec, diff, contract, roadmapSummary)

	return Prompt{Instruction: instruction, Mode: ModeDeep}, nil
}

func stagedDiff(projectRoot string) (string, error) {
	diff, err := gitutil.StagedDiff(projectRoot)
	if err != nil {
		return "", fmt.Errorf("get staged diff: %w", err)
	}
	if strings.TrimSpace(diff) == "" {
		return noStagedChanges, nil
	}
	return diff, nil
}

func readRequirements(projectRoot string) string {
	content, ok := persist.TryReadFile(filepath.Join(projectRoot, ".claude", "status", "requirements.md"))
	if !ok {
		return noRequirements
	}
	return content
}

func readTaskSpec(projectRoot string, current *model.CurrentTask) string {
	if current == nil || current.ID == "" {
		return "*No current task*"
	}
	content, ok := roadmap.FindTaskSpec(projectRoot, current.ID)
	if !ok {
		return fmt.Sprintf("*Task spec for %s not found*", current.ID)
	}
	return content
}

func readAPIContract(projectRoot string) string {
	content, ok := persist.TryReadFile(filepath.Join(projectRoot, ".claude", "status", "api_contract.yaml"))
	if !ok {
		return noAPIContract
	}
	return content
}

func summarizeRoadmap(projectRoot string) string {
	content, ok := persist.TryReadFile(filepath.Join(projectRoot, ".claude", "status", "ROADMAP.md"))
	if !ok {
		return noRoadmap
	}
	lines := strings.Split(content, "\n")
	if len(lines) > roadmapSummaryLen {
		lines = lines[:roadmapSummaryLen]
	}
	return strings.Join(lines, "\n")
}
