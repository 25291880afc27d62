package review

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// EnvReviewerBin is the environment variable that overrides every other
// reviewer-resolution step.
const EnvReviewerBin = "CLAUDE_AUTONOMOUS_CODEX_BIN"

const defaultReviewerCmd = "codex"

var (
	resolveOnce sync.Once
	resolvedBin string
	resolvedErr error
)

// ResolveReviewerBinary locates the external reviewer executable, in
// priority order: the EnvReviewerBin environment variable, the reviewer
// command on PATH, the newest nvm-managed node install, and a project-local
// node_modules/.bin search walking up to 5 parent directories. The result is
// cached for the process lifetime; a failed resolution is retried on every
// call since the environment may change between invocations (e.g. a test
// harness installing a fake binary mid-run).
func ResolveReviewerBinary() (string, error) {
	resolveOnce.Do(func() {
		resolvedBin, resolvedErr = resolveUncached()
	})
	if resolvedErr == nil {
		return resolvedBin, nil
	}
	// The cached attempt failed; retry so a binary installed after process
	// start (or during a test) is picked up, without mutating the cache.
	return resolveUncached()
}

func resolveUncached() (string, error) {
	if envPath := os.Getenv(EnvReviewerBin); envPath != "" {
		if validateBinary(envPath) {
			return envPath, nil
		}
		fmt.Fprintf(os.Stderr, "⚠️  %s points to an invalid binary: %s\n", EnvReviewerBin, envPath)
		fmt.Fprintln(os.Stderr, "   Falling back to automatic search...")
	}

	if validateBinary(defaultReviewerCmd) {
		return defaultReviewerCmd, nil
	}

	if path, ok := searchNVMDirectories(); ok {
		return path, nil
	}

	if path, ok := searchProjectLocal(); ok {
		return path, nil
	}

	return "", buildResolutionError()
}

// validateBinary checks that path exists, is executable (POSIX permission
// bit, best-effort on platforms without that concept), and answers to
// "--version" with a zero exit code.
func validateBinary(path string) bool {
	if !looksLikeBareName(path) {
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		if info.Mode()&0o111 == 0 {
			return false
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, path, "--version")
	return cmd.Run() == nil
}

// looksLikeBareName reports whether path is a command name to be resolved
// against PATH (no path separators) rather than a concrete file path.
func looksLikeBareName(path string) bool {
	return filepath.Base(path) == path
}

func searchNVMDirectories() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	nvmBase := filepath.Join(home, ".nvm", "versions", "node")
	entries, err := os.ReadDir(nvmBase)
	if err != nil {
		return "", false
	}

	var versions []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(nvmBase, entry.Name(), "bin", defaultReviewerCmd)
		if validateBinary(candidate) {
			versions = append(versions, entry.Name())
		}
	}
	if len(versions) == 0 {
		return "", false
	}

	// Lexicographic descending is sufficient for nvm's vMAJOR.MINOR.PATCH
	// directory names.
	sort.Sort(sort.Reverse(sort.StringSlice(versions)))
	return filepath.Join(nvmBase, versions[0], "bin", defaultReviewerCmd), true
}

func searchProjectLocal() (string, bool) {
	current, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(current, "node_modules", ".bin", defaultReviewerCmd)
		if validateBinary(candidate) {
			return candidate, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", false
}

func buildResolutionError() error {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "~"
	}

	envState := "not set"
	if os.Getenv(EnvReviewerBin) != "" {
		envState = "set but invalid"
	}

	return fmt.Errorf(
		"reviewer command not found in any of the following locations:\n"+
			"1. Environment variable: %s (%s)\n"+
			"2. System PATH (command %q not found)\n"+
			"3. nvm directories: %s/.nvm/versions/node/*/bin/%s (not found)\n"+
			"4. Project-local: ./node_modules/.bin/%s (not found)\n\n"+
			"Installation suggestions:\n"+
			"- Install via npm: npm install -g @openai/codex\n"+
			"- Or set %s to an absolute path to the reviewer binary",
		EnvReviewerBin, envState, defaultReviewerCmd, home, defaultReviewerCmd, defaultReviewerCmd, EnvReviewerBin,
	)
}
