package review

import (
	"testing"

	"github.com/danshapiro/autoeng/internal/model"
)

func TestDetectTransitionFirstSightingIsNotATransition(t *testing.T) {
	dir := t.TempDir()
	tracker := LoadStateTracker(dir)
	task := &model.CurrentTask{ID: "TASK-001", Status: model.TaskInProgress}

	if tracker.DetectTransition(task) {
		t.Error("first sighting of a task should not be a transition")
	}

	if err := tracker.UpdateSnapshot(task); err != nil {
		t.Fatal(err)
	}
	if tracker.DetectTransition(task) {
		t.Error("unchanged status should not be a transition")
	}

	completed := &model.CurrentTask{ID: "TASK-001", Status: model.TaskCompleted}
	if !tracker.DetectTransition(completed) {
		t.Error("status change should be detected as a transition")
	}
}

func TestClassifyTransitionKnownPairs(t *testing.T) {
	cases := []struct {
		prev, next model.TaskStatus
		want       TransitionType
	}{
		{model.TaskPending, model.TaskInProgress, StartTask},
		{model.TaskInProgress, model.TaskCompleted, CompleteTask},
		{model.TaskInProgress, model.TaskBlocked, BlockTask},
		{model.TaskBlocked, model.TaskInProgress, UnblockTask},
		{model.TaskCompleted, model.TaskInProgress, InternalProgress},
	}

	for _, c := range cases {
		dir := t.TempDir()
		tracker := LoadStateTracker(dir)
		seed := &model.CurrentTask{ID: "TASK-001", Status: c.prev}
		if err := tracker.UpdateSnapshot(seed); err != nil {
			t.Fatal(err)
		}

		next := &model.CurrentTask{ID: "TASK-001", Status: c.next}
		got := tracker.ClassifyTransition(next)
		if got != c.want {
			t.Errorf("%s -> %s: classify = %v, want %v", c.prev, c.next, got, c.want)
		}
	}
}

func TestRequiresDeepReview(t *testing.T) {
	if !CompleteTask.RequiresDeepReview() {
		t.Error("CompleteTask should require deep review")
	}
	if !BlockTask.RequiresDeepReview() {
		t.Error("BlockTask should require deep review")
	}
	if StartTask.RequiresDeepReview() || UnblockTask.RequiresDeepReview() || InternalProgress.RequiresDeepReview() {
		t.Error("only CompleteTask/BlockTask should require deep review")
	}
}

func TestStateTrackerPersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()
	tracker := LoadStateTracker(dir)
	task := &model.CurrentTask{ID: "TASK-002", Status: model.TaskBlocked}
	if err := tracker.UpdateSnapshot(task); err != nil {
		t.Fatal(err)
	}

	reloaded := LoadStateTracker(dir)
	snap, ok := reloaded.PreviousSnapshot("TASK-002")
	if !ok || snap.Status != model.TaskBlocked {
		t.Fatalf("reloaded snapshot = %+v, ok=%v", snap, ok)
	}
}
