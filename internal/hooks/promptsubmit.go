package hooks

import (
	"github.com/danshapiro/autoeng/internal/config"
	"github.com/danshapiro/autoeng/internal/context"
)

// PromptSubmitOutput mirrors SessionStartOutput's flat shape: hookEventName
// and additionalContext sit directly under hookSpecificOutput.
type PromptSubmitOutput struct {
	HookSpecificOutput struct {
		HookEventName     string `json:"hookEventName"`
		AdditionalContext string `json:"additionalContext"`
	} `json:"hookSpecificOutput"`
}

// RunPromptSubmit injects the autonomous-mode context bundle ahead of every
// user prompt, so state survives a compaction the assistant's own memory
// wouldn't. A missing project root yields an empty additionalContext rather
// than an error — there is nothing to inject outside a managed project.
func RunPromptSubmit(projectRoot string, cfg config.Config) PromptSubmitOutput {
	var out PromptSubmitOutput
	out.HookSpecificOutput.HookEventName = "UserPromptSubmit"
	if projectRoot == "" {
		return out
	}
	mgr := context.NewManager(projectRoot, cfg)
	out.HookSpecificOutput.AdditionalContext = mgr.FullContext()
	return out
}
