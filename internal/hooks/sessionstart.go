package hooks

import (
	_ "embed"
	"strings"
)

//go:embed assets/protocol.md
var protocolDoc string

// SessionStartOutput is the flat (not nested) hookSpecificOutput shape
// SessionStart emits: its payload sits directly under hookSpecificOutput
// rather than under a "for <event>" key, as the UserPromptSubmit and
// PreToolUse outputs also do.
type SessionStartOutput struct {
	HookSpecificOutput struct {
		HookEventName     string `json:"hookEventName"`
		AdditionalContext string `json:"additionalContext"`
	} `json:"hookSpecificOutput"`
}

// RunSessionStart builds the context injected at the start of every
// session: a banner followed by the embedded protocol document. It takes
// no project-root argument because the protocol text is static — it does
// not depend on any per-project state file being present.
func RunSessionStart() SessionStartOutput {
	var out SessionStartOutput
	out.HookSpecificOutput.HookEventName = "SessionStart"
	out.HookSpecificOutput.AdditionalContext = strings.Join([]string{
		"AUTONOMOUS ENGINEERING PROTOCOL",
		strings.Repeat("=", 80),
		protocolDoc,
	}, "\n\n")
	return out
}
