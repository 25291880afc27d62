package model

import (
	"fmt"
	"strings"
	"time"
)

// StateID is one node of the workflow graph driven by the git state machine.
type StateID string

const (
	StateIdle      StateID = "idle"
	StatePlanning  StateID = "planning"
	StateCoding    StateID = "coding"
	StateTesting   StateID = "testing"
	StateReviewing StateID = "reviewing"
	StateCompleted StateID = "completed"
	StateBlocked   StateID = "blocked"
)

// Icon returns the emoji used when rendering this state in context output.
func (s StateID) Icon() string {
	switch s {
	case StateIdle:
		return "⏸️"
	case StatePlanning:
		return "📝"
	case StateCoding:
		return "💻"
	case StateTesting:
		return "🧪"
	case StateReviewing:
		return "🔍"
	case StateCompleted:
		return "✅"
	case StateBlocked:
		return "🚫"
	default:
		return "❔"
	}
}

// ParseStateID parses s case-insensitively into a known StateID.
func ParseStateID(s string) (StateID, bool) {
	switch StateID(strings.ToLower(s)) {
	case StateIdle:
		return StateIdle, true
	case StatePlanning:
		return StatePlanning, true
	case StateCoding:
		return StateCoding, true
	case StateTesting:
		return StateTesting, true
	case StateReviewing:
		return StateReviewing, true
	case StateCompleted:
		return StateCompleted, true
	case StateBlocked:
		return StateBlocked, true
	default:
		return "", false
	}
}

// MachineState is the content of .claude/status/state.json.
type MachineState struct {
	StateID   StateID           `json:"state_id"`
	TaskID    string            `json:"task_id,omitempty"`
	Phase     string            `json:"phase,omitempty"`
	Timestamp string            `json:"timestamp"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
}

// NewMachineState builds a MachineState stamped with the current time.
func NewMachineState(stateID StateID, taskID string) MachineState {
	return MachineState{
		StateID:   stateID,
		TaskID:    taskID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// StateSnapshot is a point-in-time view of state.json recovered from a git tag.
type StateSnapshot struct {
	Tag       string
	CommitSHA string
	Message   string
	UnixTime  int64
	State     *MachineState
}

// ParseTagInfo splits a "state-YYYYMMDD-HHMMSS-<state>-<taskid>" tag into its
// state id and task id. Task ids may themselves contain hyphens: everything
// after the state-id token is rejoined with "-".
func ParseTagInfo(tag string) (StateID, string, bool) {
	rest, ok := strings.CutPrefix(tag, "state-")
	if !ok {
		return "", "", false
	}
	parts := strings.Split(rest, "-")
	if len(parts) < 3 {
		return "", "", false
	}
	stateID, ok := ParseStateID(parts[2])
	if !ok {
		return "", "", false
	}
	taskID := ""
	if len(parts) > 3 && parts[3] != "none" {
		taskID = strings.Join(parts[3:], "-")
	}
	return stateID, taskID, true
}

// FormatTag builds the tag name for stateID/taskID at ts.
func FormatTag(ts time.Time, stateID StateID, taskID string) string {
	task := taskID
	if task == "" {
		task = "none"
	}
	return fmt.Sprintf("state-%s-%s-%s", ts.UTC().Format("20060102-150405"), stateID, task)
}

// TaskSnapshot is the last-observed status for one task, used by the review
// gate to detect workflow transitions independently of the git state machine.
type TaskSnapshot struct {
	TaskID    string     `json:"task_id"`
	Status    TaskStatus `json:"status"`
	Timestamp string     `json:"timestamp"`
}

// TaskSnapshotStore maps task id to its last-observed snapshot.
type TaskSnapshotStore map[string]TaskSnapshot

// FailureEntry is one rejected review attempt, stamped with a sortable ULID
// so failure history can be cross-referenced by mint order (e.g. from the
// error history) without relying on timestamp string comparison.
type FailureEntry struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// ReviewRetryState tracks consecutive review-gate failures for the staged
// content of one task, used to enforce the retry limit.
type ReviewRetryState struct {
	CurrentTaskID       string         `json:"current_task_id,omitempty"`
	ConsecutiveFailures int            `json:"consecutive_failures"`
	LastFailureAt       string         `json:"last_failure_timestamp,omitempty"`
	LastStagedHash      string         `json:"last_staged_files_hash,omitempty"`
	FailureReasons      []FailureEntry `json:"failure_reasons,omitempty"`
}

// MaxReviewRetries is the number of consecutive FAIL verdicts on the same
// staged content allowed before the gate surfaces an escape-hatch message.
const MaxReviewRetries = 3
