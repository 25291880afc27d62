package hooks

import (
	"time"

	"github.com/danshapiro/autoeng/internal/review"
)

// DefaultReviewTimeout bounds how long the review gate waits on the
// reviewer process before treating it as unavailable.
const DefaultReviewTimeout = 30 * time.Second

// PreToolOutput is the PreToolUse hookSpecificOutput shape: flat on allow,
// with permissionDecision/permissionDecisionReason added on deny.
type PreToolOutput struct {
	HookSpecificOutput struct {
		HookEventName            string `json:"hookEventName"`
		PermissionDecision       string `json:"permissionDecision,omitempty"`
		PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
	} `json:"hookSpecificOutput"`
}

// PreToolUseAllow is the graceful default PreToolUse emits when the hook
// can't even attempt the gate (malformed input, no resolvable project
// root): allow the tool call through rather than block on missing state.
func PreToolUseAllow() PreToolOutput {
	var out PreToolOutput
	out.HookSpecificOutput.HookEventName = "PreToolUse"
	return out
}

// RunPreTool is the PreToolUse review-gate entry point: it hands the
// command off to the already-built review gate and translates its
// allow/deny decision into the hook's output shape. timeout of zero falls
// back to DefaultReviewTimeout.
func RunPreTool(projectRoot string, input HookInput, timeout time.Duration) (PreToolOutput, error) {
	var out PreToolOutput
	out.HookSpecificOutput.HookEventName = "PreToolUse"

	if timeout <= 0 {
		timeout = DefaultReviewTimeout
	}
	decision, err := review.RunGate(projectRoot, input.ToolInput.Command, timeout)
	if err != nil {
		return out, err
	}
	if decision.Deny {
		out.HookSpecificOutput.PermissionDecision = "deny"
		out.HookSpecificOutput.PermissionDecisionReason = decision.Reason
	}
	return out, nil
}
