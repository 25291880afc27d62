package hooks

import "encoding/json"

// ToolInput is the subset of "tool_input" this package inspects across
// hook events: the shell command for Bash-shaped tools, and the file path
// under either of its two observed key names.
type ToolInput struct {
	Command  string `json:"command,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	Path     string `json:"path,omitempty"`
}

// ResolvedFilePath returns file_path if set, else path, else "".
func (t ToolInput) ResolvedFilePath() string {
	if t.FilePath != "" {
		return t.FilePath
	}
	return t.Path
}

// ToolResult is the subset of "tool_output"/"tool_result" this package
// inspects. Both keys are observed in the wild carrying the same shape, so
// HookInput exposes one merged accessor.
type ToolResult struct {
	ExitCode *int   `json:"exit_code,omitempty"`
	Code     *int   `json:"code,omitempty"`
	Success  *bool  `json:"success,omitempty"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HookInput is the stdin payload every PostToolUse/PreToolUse handler reads.
type HookInput struct {
	ToolInput  ToolInput   `json:"tool_input"`
	ToolOutput *ToolResult `json:"tool_output,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
	ExitCode   *int        `json:"exit_code,omitempty"`
}

// result returns tool_output if present, else tool_result, else nil.
func (h HookInput) result() *ToolResult {
	if h.ToolOutput != nil {
		return h.ToolOutput
	}
	return h.ToolResult
}

// DecodeHookInput validates raw against the hook-input schema, then decodes
// it. A schema mismatch or malformed JSON yields (HookInput{}, false); the
// caller's handler is expected to respond with its graceful default rather
// than surface an error.
func DecodeHookInput(raw []byte) (HookInput, bool) {
	if !validateHookInput(raw) {
		return HookInput{}, false
	}
	if len(raw) == 0 {
		return HookInput{}, true
	}
	var in HookInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return HookInput{}, false
	}
	return in, true
}
