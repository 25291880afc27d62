// Package model defines the on-disk data model shared by every subsystem:
// Memory, error records, machine state, task snapshots and review-retry state.
package model

import (
	"encoding/json"
	"fmt"
)

// TaskStatus is the lifecycle status of the current task tracked in Memory.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskBlocked    TaskStatus = "BLOCKED"
)

// DefaultMaxRetries is the ceiling on CurrentTask.RetryCount before the loop
// driver considers a task stuck.
const DefaultMaxRetries = 5

// CurrentTask describes the task the host assistant is actively working on.
type CurrentTask struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      TaskStatus `json:"status"`
	Phase       string     `json:"phase,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
	LastUpdated string     `json:"last_updated,omitempty"`
}

// WorkingContext tracks the file/function the assistant is currently editing
// plus outstanding test and implementation work.
type WorkingContext struct {
	CurrentFile            string   `json:"current_file,omitempty"`
	CurrentFunction        string   `json:"current_function,omitempty"`
	PendingTests           []string `json:"pending_tests,omitempty"`
	PendingImplementations []string `json:"pending_implementations,omitempty"`
	ModifiedFiles          []string `json:"modified_files,omitempty"`
}

// Progress summarizes roadmap task counts, refreshed by the progress-sync hook.
type Progress struct {
	Completed       int    `json:"completed"`
	Pending         int    `json:"pending"`
	InProgress      int    `json:"in_progress"`
	Skipped         int    `json:"skipped"`
	CurrentPhase    string `json:"current_phase,omitempty"`
	PhasesCompleted int    `json:"phases_completed"`
	PhasesTotal     int    `json:"phases_total"`
	LastSyncedAt    string `json:"last_synced_at,omitempty"`
}

// Session tracks process-lifetime bookkeeping for the current loop.
type Session struct {
	StartedAt         string `json:"started_at,omitempty"`
	LoopCount         int    `json:"loop_count"`
	LastCompressionAt string `json:"last_compression_at,omitempty"`

	// Command/test bookkeeping refreshed by the error-tracker hook on every
	// observed tool invocation.
	LastCommand             string `json:"last_command,omitempty"`
	LastCommandAt           string `json:"last_command_at,omitempty"`
	LastTestCommand         string `json:"last_test_command,omitempty"`
	LastTestAt              string `json:"last_test_at,omitempty"`
	LastTestOutcome         string `json:"last_test_outcome,omitempty"`
	ConsecutiveTestFailures int    `json:"consecutive_test_failures"`
	RepeatTestFailureCount  int    `json:"repeat_test_failure_count"`
	LastTestFailureSig      string `json:"last_test_failure_signature,omitempty"`
}

// ErrorState is the last-observed error and whether it has blocked the task.
type ErrorState struct {
	LastError     string `json:"last_error,omitempty"`
	LastErrorAt   string `json:"last_error_at,omitempty"`
	ErrorCount    int    `json:"error_count"`
	Blocked       bool   `json:"blocked"`
	BlockReason   string `json:"block_reason,omitempty"`
}

// NextAction is the assistant's self-recorded plan for its next turn.
type NextAction struct {
	Action string `json:"action"`
	Target string `json:"target"`
	Reason string `json:"reason"`
}

// DefaultNextAction mirrors the initial state of a freshly bootstrapped project.
func DefaultNextAction() NextAction {
	return NextAction{
		Action: "INITIALIZE",
		Target: "Run project architect",
		Reason: "System initialized, awaiting project plan",
	}
}

// knownMemoryFields are the top-level Memory keys consumed by this package;
// anything else found on disk is preserved verbatim in Memory.Extra.
var knownMemoryFields = map[string]struct{}{
	"project": {}, "schema_version": {}, "session": {}, "current_task": {},
	"working_context": {}, "active_files": {}, "progress": {}, "error_state": {},
	"next_action": {}, "contract_hash": {}, "checkpoints": {},
}

// Memory is the single source of truth for the host assistant's current
// state, persisted at .claude/status/memory.json.
type Memory struct {
	Project         string           `json:"project"`
	SchemaVersion   string           `json:"schema_version"`
	Session         Session          `json:"session"`
	CurrentTask     *CurrentTask     `json:"current_task,omitempty"`
	WorkingContext  WorkingContext   `json:"working_context"`
	ActiveFiles     []string         `json:"active_files,omitempty"`
	Progress        Progress         `json:"progress"`
	ErrorState      ErrorState       `json:"error_state"`
	NextAction      NextAction       `json:"next_action"`
	ContractHash    string           `json:"contract_hash,omitempty"`
	Checkpoints     []string         `json:"checkpoints,omitempty"`

	// Extra preserves any top-level field this struct doesn't model, so that
	// round-tripping Memory never drops data written by a newer schema.
	Extra map[string]json.RawMessage `json:"-"`
}

// NewMemory returns a freshly initialized Memory for project.
func NewMemory(project string) *Memory {
	return &Memory{
		Project:       project,
		SchemaVersion: "1",
		NextAction:    DefaultNextAction(),
	}
}

// MarshalJSON merges the known fields with any preserved unknown fields.
func (m Memory) MarshalJSON() ([]byte, error) {
	type alias Memory
	b, err := json.Marshal(alias(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return b, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, fmt.Errorf("remarshal memory: %w", err)
	}
	for k, v := range m.Extra {
		if _, known := knownMemoryFields[k]; known {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the known fields and stashes everything else in Extra.
func (m *Memory) UnmarshalJSON(data []byte) error {
	type alias Memory
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	extra := make(map[string]json.RawMessage)
	for k, v := range raw {
		if _, known := knownMemoryFields[k]; known {
			continue
		}
		extra[k] = v
	}

	*m = Memory(a)
	if len(extra) > 0 {
		m.Extra = extra
	}
	return nil
}
