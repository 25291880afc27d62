// Package hooks implements the process-style hook handlers that a host
// assistant invokes at each stage of the autonomous loop: session start,
// prompt submission, tool use (before and after), and stop.
package hooks

import (
	"os"
	"path/filepath"

	"github.com/danshapiro/autoeng/internal/gitutil"
)

// maxWalkUpParents bounds the last-resort upward search for ".claude/" when
// no git command locates a usable root.
const maxWalkUpParents = 10

// ResolveProjectRoot locates the project root containing a ".claude/"
// directory, searched in priority order: the git superproject working tree,
// the current working directory, the git toplevel, and finally a walk up to
// maxWalkUpParents ancestors of cwd. It returns ("", false) if none qualify;
// callers fall back to graceful defaults rather than treating this as fatal.
func ResolveProjectRoot(cwd string) (string, bool) {
	if super, err := gitutil.SuperprojectWorkingTree(cwd); err == nil && super != "" && hasClaudeDir(super) {
		return super, true
	}

	if hasClaudeDir(cwd) {
		return cwd, true
	}

	if top, err := gitutil.TopLevel(cwd); err == nil && top != "" && hasClaudeDir(top) {
		return top, true
	}

	dir := cwd
	for i := 0; i < maxWalkUpParents; i++ {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
		if hasClaudeDir(dir) {
			return dir, true
		}
	}

	return "", false
}

func hasClaudeDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".claude"))
	return err == nil && info.IsDir()
}
