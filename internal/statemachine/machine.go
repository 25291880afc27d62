// Package statemachine drives the project through its Idle -> Planning ->
// Coding -> Testing -> Reviewing -> Completed workflow, persisting every
// transition as a commit tagged "state-<timestamp>-<state>-<task>" so the
// full history can be replayed or rolled back with nothing but git.
package statemachine

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/danshapiro/autoeng/internal/gitutil"
	"github.com/danshapiro/autoeng/internal/model"
	"github.com/danshapiro/autoeng/internal/persist"
)

// StateFile is the project-relative path to the current machine state.
const StateFile = ".claude/status/state.json"

const tagPrefix = "state-"

// Machine drives state transitions for one project checkout.
type Machine struct {
	ProjectRoot string
	hooks       *HookManager
}

// New returns a Machine rooted at projectRoot with the default hook set
// registered (workflow validation pre-hook, transition-log post-hook).
// It does not require projectRoot to be a git repository: CurrentState
// works on a bare checkout, only TransitionTo/ListStates/RollbackToTag do.
func New(projectRoot string) *Machine {
	hooks := NewHookManager()
	hooks.RegisterPreHook(WorkflowValidationHook{})
	hooks.RegisterPostHook(LoggingHook{})
	return &Machine{ProjectRoot: projectRoot, hooks: hooks}
}

// RegisterPreHook adds a custom pre-transition hook beyond the defaults.
func (m *Machine) RegisterPreHook(h PreTransitionHook) { m.hooks.RegisterPreHook(h) }

// RegisterPostHook adds a custom post-transition hook beyond the defaults.
func (m *Machine) RegisterPostHook(h PostTransitionHook) { m.hooks.RegisterPostHook(h) }

func (m *Machine) stateFilePath() string {
	return filepath.Join(m.ProjectRoot, StateFile)
}

// CurrentState reads state.json, returning the Idle zero value if it has
// never been written.
func (m *Machine) CurrentState() (model.MachineState, error) {
	state, err := persist.ReadJSON[model.MachineState](m.stateFilePath())
	if err != nil {
		return model.MachineState{}, err
	}
	if state == nil {
		return model.MachineState{StateID: model.StateIdle}, nil
	}
	return *state, nil
}

// TransitionTo moves the machine to newStateID, committing and tagging the
// change. It refuses to run while the index already has staged changes, so a
// state commit never accidentally carries along unrelated work-in-progress.
func (m *Machine) TransitionTo(newStateID model.StateID, taskID string, metadata map[string]any) (string, error) {
	staged, err := gitutil.HasStagedChanges(m.ProjectRoot)
	if err != nil {
		return "", fmt.Errorf("check staged changes: %w", err)
	}
	if staged {
		return "", fmt.Errorf("refusing to create a state commit while changes are staged; commit or unstage first")
	}

	current, err := m.CurrentState()
	if err != nil {
		return "", err
	}

	ctx := TransitionContext{
		ProjectRoot: m.ProjectRoot,
		FromState:   current.StateID,
		ToState:     newStateID,
		TaskID:      taskID,
		Metadata:    metadata,
	}

	decision, err := m.hooks.RunPreHooks(ctx)
	if err != nil {
		return "", err
	}
	switch decision.Kind {
	case DecisionBlock:
		return "", fmt.Errorf("state transition blocked: %s", decision.Reason)
	case DecisionModify:
		ctx.ToState = decision.Modified
	}

	newState := model.NewMachineState(ctx.ToState, taskID)
	newState.Metadata = metadata

	if err := persist.WriteJSON(m.stateFilePath(), newState); err != nil {
		return "", fmt.Errorf("write state file: %w", err)
	}

	relPath, err := filepath.Rel(m.ProjectRoot, m.stateFilePath())
	if err != nil {
		relPath = StateFile
	}
	if err := gitutil.AddPath(m.ProjectRoot, relPath); err != nil {
		return "", fmt.Errorf("stage state file: %w", err)
	}

	task := taskID
	if task == "" {
		task = "none"
	}
	message := fmt.Sprintf("state: %s | task: %s", ctx.ToState, task)
	if err := gitutil.Commit(m.ProjectRoot, message); err != nil {
		return "", fmt.Errorf("commit state transition: %w", err)
	}

	tagName := model.FormatTag(time.Now(), ctx.ToState, taskID)
	if err := gitutil.Tag(m.ProjectRoot, tagName); err != nil {
		return "", fmt.Errorf("tag state transition: %w", err)
	}

	m.hooks.RunPostHooks(ctx, newState)
	return tagName, nil
}

// RollbackToTag restores state.json to the content it had at tagName,
// without moving HEAD or creating a new commit.
func (m *Machine) RollbackToTag(tagName string) error {
	relPath, err := filepath.Rel(m.ProjectRoot, m.stateFilePath())
	if err != nil {
		relPath = StateFile
	}
	content, err := gitutil.ShowFileAt(m.ProjectRoot, tagName, relPath)
	if err != nil {
		return fmt.Errorf("read state file at %s: %w", tagName, err)
	}
	return persist.WriteFileAtomic(m.stateFilePath(), []byte(content))
}

// ListStates returns every "state-*" tag's snapshot, most recent first.
func (m *Machine) ListStates() ([]model.StateSnapshot, error) {
	tags, err := gitutil.TagsWithPrefix(m.ProjectRoot, tagPrefix)
	if err != nil {
		return nil, fmt.Errorf("list state tags: %w", err)
	}

	relPath, err := filepath.Rel(m.ProjectRoot, m.stateFilePath())
	if err != nil {
		relPath = StateFile
	}

	snapshots := make([]model.StateSnapshot, 0, len(tags))
	for _, tag := range tags {
		info, err := gitutil.ShowCommit(m.ProjectRoot, tag)
		if err != nil {
			continue
		}
		snapshot := model.StateSnapshot{
			Tag:       tag,
			CommitSHA: info.SHA,
			Message:   info.Message,
			UnixTime:  info.UnixTime,
		}
		if content, err := gitutil.ShowFileAt(m.ProjectRoot, tag, relPath); err == nil {
			var state model.MachineState
			if json.Unmarshal([]byte(content), &state) == nil {
				snapshot.State = &state
			}
		}
		snapshots = append(snapshots, snapshot)
	}

	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].UnixTime > snapshots[j].UnixTime })
	return snapshots, nil
}
