package statemachine

import (
	"fmt"

	"github.com/danshapiro/autoeng/internal/model"
)

// ValidateTransition reports whether moving from one state to another is a
// legal edge in the workflow graph. Blocked can return to any active state;
// a state transitioning to itself is always allowed (re-stamping metadata).
func ValidateTransition(from, to model.StateID) error {
	if from == to {
		return nil
	}

	valid := map[model.StateID]map[model.StateID]bool{
		model.StateIdle: {
			model.StatePlanning: true,
		},
		model.StatePlanning: {
			model.StateCoding:  true,
			model.StateBlocked: true,
		},
		model.StateCoding: {
			model.StateTesting:   true,
			model.StateBlocked:   true,
			model.StateReviewing: true,
		},
		model.StateTesting: {
			model.StateCoding:    true,
			model.StateReviewing: true,
			model.StateBlocked:   true,
		},
		model.StateReviewing: {
			model.StateCompleted: true,
			model.StateCoding:    true,
			model.StateBlocked:   true,
		},
		model.StateBlocked: {
			model.StatePlanning:  true,
			model.StateCoding:    true,
			model.StateTesting:   true,
			model.StateReviewing: true,
		},
		model.StateCompleted: {
			model.StateIdle:     true,
			model.StatePlanning: true,
		},
	}

	if valid[from][to] {
		return nil
	}
	return fmt.Errorf("invalid state transition: %s -> %s", from, to)
}

// NextStates lists the states reachable directly from from.
func NextStates(from model.StateID) []model.StateID {
	switch from {
	case model.StateIdle:
		return []model.StateID{model.StatePlanning}
	case model.StatePlanning:
		return []model.StateID{model.StateCoding, model.StateBlocked}
	case model.StateCoding:
		return []model.StateID{model.StateTesting, model.StateReviewing, model.StateBlocked}
	case model.StateTesting:
		return []model.StateID{model.StateCoding, model.StateReviewing, model.StateBlocked}
	case model.StateReviewing:
		return []model.StateID{model.StateCompleted, model.StateCoding, model.StateBlocked}
	case model.StateBlocked:
		return []model.StateID{model.StatePlanning, model.StateCoding, model.StateTesting, model.StateReviewing}
	case model.StateCompleted:
		return []model.StateID{model.StateIdle, model.StatePlanning}
	default:
		return nil
	}
}

// RecommendNextState returns the standard-workflow successor of from, or
// ("", false) when the operator must decide manually (Blocked).
func RecommendNextState(from model.StateID) (model.StateID, bool) {
	switch from {
	case model.StateIdle:
		return model.StatePlanning, true
	case model.StatePlanning:
		return model.StateCoding, true
	case model.StateCoding:
		return model.StateTesting, true
	case model.StateTesting:
		return model.StateReviewing, true
	case model.StateReviewing:
		return model.StateCompleted, true
	case model.StateCompleted:
		return model.StateIdle, true
	default:
		return "", false
	}
}

// StateDescription is a one-line human summary of what a state means.
func StateDescription(s model.StateID) string {
	switch s {
	case model.StateIdle:
		return "Idle, no active task"
	case model.StatePlanning:
		return "Planning: designing architecture and breaking down tasks"
	case model.StateCoding:
		return "Coding: implementing functionality"
	case model.StateTesting:
		return "Testing: running tests and verifying behavior"
	case model.StateReviewing:
		return "Reviewing: code review and quality checks"
	case model.StateCompleted:
		return "Task completed, awaiting the next one"
	case model.StateBlocked:
		return "Blocked, waiting on an external condition or human input"
	default:
		return ""
	}
}

// IsTerminalState reports whether s ends the current task's lifecycle.
func IsTerminalState(s model.StateID) bool {
	return s == model.StateCompleted || s == model.StateBlocked
}

// IsActiveState reports whether s represents ongoing work.
func IsActiveState(s model.StateID) bool {
	switch s {
	case model.StatePlanning, model.StateCoding, model.StateTesting, model.StateReviewing:
		return true
	default:
		return false
	}
}
