package statemachine

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/danshapiro/autoeng/internal/model"
	"github.com/danshapiro/autoeng/internal/persist"
)

// TransitionContext describes an in-flight state transition, passed to every
// registered hook.
type TransitionContext struct {
	ProjectRoot string
	FromState   model.StateID
	ToState     model.StateID
	TaskID      string
	Metadata    map[string]any
}

// DecisionKind is the verdict a PreTransitionHook returns.
type DecisionKind int

const (
	DecisionAllow DecisionKind = iota
	DecisionBlock
	DecisionModify
)

// HookDecision is the outcome of running a PreTransitionHook.
type HookDecision struct {
	Kind     DecisionKind
	Reason   string
	Modified model.StateID
}

// Allow is the decision that lets a transition proceed unchanged.
var Allow = HookDecision{Kind: DecisionAllow}

// Block builds a decision that refuses the transition, recording why.
func Block(reason string) HookDecision { return HookDecision{Kind: DecisionBlock, Reason: reason} }

// Modify builds a decision that redirects the transition to a different state.
func Modify(to model.StateID) HookDecision { return HookDecision{Kind: DecisionModify, Modified: to} }

// PreTransitionHook runs before a transition is committed and can block or
// redirect it.
type PreTransitionHook interface {
	Name() string
	Execute(ctx TransitionContext) (HookDecision, error)
}

// PostTransitionHook runs after a transition has been committed and tagged.
// Its errors are logged, never propagated: a broken post-hook must not undo
// a transition that already happened in git.
type PostTransitionHook interface {
	Name() string
	Execute(ctx TransitionContext, newState model.MachineState) error
}

// HookManager runs the registered pre/post hooks around each transition.
type HookManager struct {
	pre  []PreTransitionHook
	post []PostTransitionHook
}

// NewHookManager returns an empty manager.
func NewHookManager() *HookManager {
	return &HookManager{}
}

// RegisterPreHook appends a PreTransitionHook to the pipeline.
func (m *HookManager) RegisterPreHook(h PreTransitionHook) {
	m.pre = append(m.pre, h)
}

// RegisterPostHook appends a PostTransitionHook to the pipeline.
func (m *HookManager) RegisterPostHook(h PostTransitionHook) {
	m.post = append(m.post, h)
}

// RunPreHooks runs every registered pre-hook in order. The first Block wins
// immediately; the first Modify seen (absent a Block) wins, and later hooks
// see its target as ctx.ToState; otherwise Allow.
func (m *HookManager) RunPreHooks(ctx TransitionContext) (HookDecision, error) {
	final := Allow
	for _, h := range m.pre {
		decision, err := h.Execute(ctx)
		if err != nil {
			return HookDecision{}, fmt.Errorf("pre-transition hook %q: %w", h.Name(), err)
		}
		switch decision.Kind {
		case DecisionBlock:
			return decision, nil
		case DecisionModify:
			if final.Kind != DecisionModify {
				final = decision
				ctx.ToState = decision.Modified
			}
		}
	}
	return final, nil
}

// RunPostHooks runs every registered post-hook, logging (not propagating)
// any failure so one broken hook can't appear to undo a committed transition.
func (m *HookManager) RunPostHooks(ctx TransitionContext, newState model.MachineState) {
	for _, h := range m.post {
		if err := h.Execute(ctx, newState); err != nil {
			log.Printf("post-transition hook %q failed: %v", h.Name(), err)
		}
	}
}

// WorkflowValidationHook blocks any transition ValidateTransition rejects.
type WorkflowValidationHook struct{}

func (WorkflowValidationHook) Name() string { return "workflow_validation" }

func (WorkflowValidationHook) Execute(ctx TransitionContext) (HookDecision, error) {
	if err := ValidateTransition(ctx.FromState, ctx.ToState); err != nil {
		return Block(err.Error()), nil
	}
	return Allow, nil
}

// LoggingHook appends every transition to state_transitions.log.
type LoggingHook struct{}

func (LoggingHook) Name() string { return "logging" }

func (LoggingHook) Execute(ctx TransitionContext, newState model.MachineState) error {
	logPath := filepath.Join(ctx.ProjectRoot, ".claude", "status", "state_transitions.log")
	task := ctx.TaskID
	if task == "" {
		task = "-"
	}
	entry := fmt.Sprintf("[%s] %s -> %s | task: %s\n", newState.Timestamp, ctx.FromState, ctx.ToState, task)
	return persist.AppendFile(logPath, entry)
}
