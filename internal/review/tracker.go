package review

import (
	"path/filepath"
	"time"

	"github.com/danshapiro/autoeng/internal/model"
	"github.com/danshapiro/autoeng/internal/persist"
)

// SnapshotsFile is the per-task last-observed-status cache the review gate
// uses to detect workflow transitions independently of the git state machine.
const SnapshotsFile = ".claude/status/task_snapshots.json"

// TransitionType classifies a detected task-status change.
type TransitionType int

const (
	InternalProgress TransitionType = iota
	StartTask
	CompleteTask
	BlockTask
	UnblockTask
)

func (t TransitionType) String() string {
	switch t {
	case StartTask:
		return "StartTask"
	case CompleteTask:
		return "CompleteTask"
	case BlockTask:
		return "BlockTask"
	case UnblockTask:
		return "UnblockTask"
	default:
		return "InternalProgress"
	}
}

// RequiresDeepReview reports whether t is a critical-enough transition to
// warrant the Deep review checklist; every other transition (including no
// transition at all) gets the lighter Regular checklist.
func (t TransitionType) RequiresDeepReview() bool {
	return t == CompleteTask || t == BlockTask
}

// StateTracker persists the last-observed status of every task it has seen,
// used to detect and classify PENDING/IN_PROGRESS/COMPLETED/BLOCKED
// transitions between successive review-gate invocations.
type StateTracker struct {
	projectRoot string
	snapshots   model.TaskSnapshotStore
}

// LoadStateTracker reads the snapshot store, starting empty if absent.
func LoadStateTracker(projectRoot string) *StateTracker {
	store := persist.TryReadJSON[model.TaskSnapshotStore](filepath.Join(projectRoot, SnapshotsFile))
	if store == nil {
		store = model.TaskSnapshotStore{}
	}
	return &StateTracker{projectRoot: projectRoot, snapshots: store}
}

// PreviousSnapshot returns the last-recorded snapshot for taskID, if any.
func (t *StateTracker) PreviousSnapshot(taskID string) (model.TaskSnapshot, bool) {
	snap, ok := t.snapshots[taskID]
	return snap, ok
}

// DetectTransition reports whether current's status differs from the last
// snapshot recorded for its task id. A task seen for the first time is never
// a transition — there is nothing to transition from yet.
func (t *StateTracker) DetectTransition(current *model.CurrentTask) bool {
	if current == nil || current.ID == "" {
		return false
	}
	prev, ok := t.snapshots[current.ID]
	if !ok {
		return false
	}
	return prev.Status != current.Status
}

// ClassifyTransition names the kind of transition current represents,
// relative to its last-recorded snapshot. Any pair not in the known set
// (including a first-ever sighting) classifies as InternalProgress.
func (t *StateTracker) ClassifyTransition(current *model.CurrentTask) TransitionType {
	if current == nil || current.ID == "" {
		return InternalProgress
	}
	prevStatus := model.TaskStatus("UNKNOWN")
	if prev, ok := t.snapshots[current.ID]; ok {
		prevStatus = prev.Status
	}

	switch {
	case prevStatus == model.TaskPending && current.Status == model.TaskInProgress:
		return StartTask
	case prevStatus == model.TaskInProgress && current.Status == model.TaskCompleted:
		return CompleteTask
	case prevStatus == model.TaskInProgress && current.Status == model.TaskBlocked:
		return BlockTask
	case prevStatus == model.TaskBlocked && current.Status == model.TaskInProgress:
		return UnblockTask
	default:
		return InternalProgress
	}
}

// UpdateSnapshot records current's status as the new baseline for its task
// id and persists the store immediately.
func (t *StateTracker) UpdateSnapshot(current *model.CurrentTask) error {
	if current == nil || current.ID == "" {
		return nil
	}
	if t.snapshots == nil {
		t.snapshots = model.TaskSnapshotStore{}
	}
	t.snapshots[current.ID] = model.TaskSnapshot{
		TaskID:    current.ID,
		Status:    current.Status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return t.save()
}

func (t *StateTracker) save() error {
	return persist.WriteJSON(filepath.Join(t.projectRoot, SnapshotsFile), t.snapshots)
}
