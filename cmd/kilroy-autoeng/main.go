// Command kilroy-autoeng is the single binary backing every autonomous-
// engineering hook: one process per invocation, stdin is a JSON hook
// payload (when the event carries one), stdout is a JSON response.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/danshapiro/autoeng/internal/config"
	"github.com/danshapiro/autoeng/internal/hooks"
	"github.com/danshapiro/autoeng/internal/model"
	"github.com/danshapiro/autoeng/internal/repomap"
	"github.com/danshapiro/autoeng/internal/statemachine"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "[autoeng] ", log.LstdFlags)

	switch os.Args[1] {
	case "session-start":
		runSessionStart()
	case "prompt-submit":
		runPromptSubmit()
	case "pre-tool":
		runPreTool(logger)
	case "post-tool-progress":
		runPostToolProgress()
	case "post-tool-errors":
		runPostToolErrors()
	case "post-tool-repomap":
		runPostToolRepoMap(logger)
	case "stop":
		runStop()
	case "repo-map":
		runRepoMap(os.Args[2:])
	case "state":
		runState(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  kilroy-autoeng session-start")
	fmt.Fprintln(os.Stderr, "  kilroy-autoeng prompt-submit")
	fmt.Fprintln(os.Stderr, "  kilroy-autoeng pre-tool")
	fmt.Fprintln(os.Stderr, "  kilroy-autoeng post-tool-progress")
	fmt.Fprintln(os.Stderr, "  kilroy-autoeng post-tool-errors")
	fmt.Fprintln(os.Stderr, "  kilroy-autoeng post-tool-repomap")
	fmt.Fprintln(os.Stderr, "  kilroy-autoeng stop")
	fmt.Fprintln(os.Stderr, "  kilroy-autoeng repo-map [--format toon|md]")
	fmt.Fprintln(os.Stderr, "  kilroy-autoeng state transition <state> [task-id]")
	fmt.Fprintln(os.Stderr, "  kilroy-autoeng state rollback <tag>")
	fmt.Fprintln(os.Stderr, "  kilroy-autoeng state list")
}

// readHookInput reads stdin to EOF. A read failure is a CLI-level error
// (nonzero exit); an empty, malformed or schema-invalid payload is not —
// hooks.DecodeHookInput degrades that to a graceful default.
func readHookInput() []byte {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("read stdin: %w", err))
		os.Exit(1)
	}
	return raw
}

func emit(v any) {
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("encode response: %w", err))
		os.Exit(1)
	}
}

func resolveRoot() (string, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return hooks.ResolveProjectRoot(cwd)
}

func runSessionStart() {
	emit(hooks.RunSessionStart())
}

func runPromptSubmit() {
	root, ok := resolveRoot()
	if !ok {
		emit(hooks.RunPromptSubmit("", config.Default()))
		return
	}
	emit(hooks.RunPromptSubmit(root, loadConfigOrFatal(root)))
}

func runPreTool(logger *log.Logger) {
	raw := readHookInput()
	input, ok := hooks.DecodeHookInput(raw)
	root, hasRoot := resolveRoot()
	if !ok || !hasRoot {
		emit(hooks.PreToolUseAllow())
		return
	}

	cfg := loadConfigOrFatal(root)
	timeout := time.Duration(cfg.Reviewer.TimeoutSeconds) * time.Second

	out, err := hooks.RunPreTool(root, input, timeout)
	if err != nil {
		logger.Printf("pre-tool: %v", err)
		emit(hooks.PreToolUseAllow())
		return
	}
	emit(out)
}

func runPostToolProgress() {
	raw := readHookInput()
	input, ok := hooks.DecodeHookInput(raw)
	root, hasRoot := resolveRoot()
	if !ok || !hasRoot {
		emit(postToolAck("none", "", ""))
		return
	}

	result := hooks.RunProgressSync(root, input)
	action := "none"
	if result.Synced {
		action = "synced"
	}
	emit(postToolAck(action, result.SyncType, result.File))
}

func runPostToolErrors() {
	raw := readHookInput()
	input, ok := hooks.DecodeHookInput(raw)
	root, hasRoot := resolveRoot()
	if ok && hasRoot {
		hooks.RunErrorTracker(root, input)
	}
	emit(postToolNoOp())
}

func runPostToolRepoMap(logger *log.Logger) {
	raw := readHookInput()
	input, ok := hooks.DecodeHookInput(raw)
	root, hasRoot := resolveRoot()
	if ok && hasRoot {
		cfg := loadConfigOrFatal(root)
		hooks.RunRepoMapSync(root, input, cfg.RepoMap.MinIntervalSecs, logger.Printf)
	}
	emit(postToolNoOp())
}

func runStop() {
	root, ok := resolveRoot()
	if !ok {
		emit(hooks.StopOutput{Decision: "allow", Reason: "no managed project found"})
		return
	}
	emit(hooks.RunStop(root))
}

// postToolAck mirrors the {status, action, sync_type, file} shape the
// progress-sync sub-handler reports, distinct from the other two
// PostToolUse sub-handlers' plain hookSpecificOutput acknowledgement.
func postToolAck(action, syncType, file string) map[string]any {
	resp := map[string]any{"status": "ok", "action": action}
	if syncType != "" {
		resp["sync_type"] = syncType
	}
	if file != "" {
		resp["file"] = file
	}
	return resp
}

func postToolNoOp() map[string]any {
	return map[string]any{
		"hookSpecificOutput": map[string]any{
			"hookEventName": "PostToolUse",
		},
	}
}

// loadConfigOrFatal is a CLI-level boundary: a malformed config document is
// an operator error, not an absent-file default, so it exits nonzero before
// any hook body runs rather than silently falling back to defaults.
func loadConfigOrFatal(root string) config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

func runRepoMap(args []string) {
	root, ok := resolveRoot()
	if !ok {
		fmt.Fprintln(os.Stderr, "no project root (.claude/) found")
		os.Exit(1)
	}
	cfg := loadConfigOrFatal(root)

	format := "toon"
	if len(cfg.RepoMap.Formats) > 0 {
		format = cfg.RepoMap.Formats[0]
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--format":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--format requires a value")
				os.Exit(1)
			}
			format = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown arg: %s\n", args[i])
			os.Exit(1)
		}
	}

	mapper := repomap.NewMapper(root)
	files, err := mapper.Generate()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch format {
	case "toon":
		err = mapper.WriteTOON(files)
	case "md":
		err = mapper.WriteMarkdown(files)
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (want toon or md)\n", format)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("files=%d\n", len(files))
}

// runState exposes the git-backed state machine (internal/statemachine) as a
// CLI utility for operators and scripted tooling outside the hook lifecycle.
func runState(args []string) {
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	root, ok := resolveRoot()
	if !ok {
		fmt.Fprintln(os.Stderr, "no project root (.claude/) found")
		os.Exit(1)
	}
	m := statemachine.New(root)

	switch args[0] {
	case "transition":
		runStateTransition(m, args[1:])
	case "rollback":
		runStateRollback(m, args[1:])
	case "list":
		runStateList(m)
	default:
		fmt.Fprintf(os.Stderr, "unknown state subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func runStateTransition(m *statemachine.Machine, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "state transition requires a target state")
		os.Exit(1)
	}
	target, ok := model.ParseStateID(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown state %q (want one of idle, planning, coding, testing, reviewing, completed, blocked)\n", args[0])
		os.Exit(1)
	}
	taskID := ""
	if len(args) > 1 {
		taskID = args[1]
	}

	tag, err := m.TransitionTo(target, taskID, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tag)
}

func runStateRollback(m *statemachine.Machine, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "state rollback requires a tag name")
		os.Exit(1)
	}
	if err := m.RollbackToTag(args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runStateList(m *statemachine.Machine) {
	snapshots, err := m.ListStates()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, s := range snapshots {
		stateID := ""
		if s.State != nil {
			stateID = string(s.State.StateID)
		}
		fmt.Printf("%s\t%s\t%s\n", s.Tag, stateID, s.CommitSHA)
	}
}
