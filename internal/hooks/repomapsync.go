package hooks

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danshapiro/autoeng/internal/repomap"
)

// RepoMapSyncResult describes what, if anything, RunRepoMapSync did.
type RepoMapSyncResult struct {
	Regenerated bool
	Reason      string
}

// RunRepoMapSync is the PostToolUse repo_map_sync sub-handler: on a write to
// a supported source file, it throttles and then regenerates the repo map.
// Generation failures are logged by the caller and otherwise swallowed —
// a stale map is never worse than blocking the tool call that triggered it.
// defaultMinIntervalSecs (typically config.RepoMapConfig.MinIntervalSecs) is
// used when REPO_MAP_MIN_INTERVAL_SECS is unset; zero falls back to
// repomap.DefaultMinIntervalSecs. REPO_MAP_MIN_INTERVAL_SECS=0 disables
// throttling.
func RunRepoMapSync(projectRoot string, input HookInput, defaultMinIntervalSecs int, logf func(string, ...any)) RepoMapSyncResult {
	if envTruthy("SKIP_REPO_MAP") {
		return RepoMapSyncResult{Reason: "skipped via SKIP_REPO_MAP"}
	}

	filePath := input.ToolInput.ResolvedFilePath()
	if filePath == "" {
		return RepoMapSyncResult{Reason: "no file path in tool input"}
	}
	if strings.Contains("/"+filepath.ToSlash(filePath), "/.claude/repo_map/") {
		return RepoMapSyncResult{Reason: "path under .claude/repo_map/"}
	}

	ext := strings.TrimPrefix(filepath.Ext(filePath), ".")
	if _, ok := repomap.LanguageForExtension(ext); !ok {
		return RepoMapSyncResult{Reason: "unsupported extension"}
	}

	minInterval := defaultMinIntervalSecs
	if minInterval <= 0 {
		minInterval = repomap.DefaultMinIntervalSecs
	}
	if v := os.Getenv("REPO_MAP_MIN_INTERVAL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			minInterval = n
		}
	}
	if minInterval > 0 && !repomap.ShouldRegenerate(projectRoot, minInterval) {
		return RepoMapSyncResult{Reason: "throttled"}
	}

	mapper := repomap.NewMapper(projectRoot)
	files, err := mapper.Generate()
	if err != nil {
		if logf != nil {
			logf("repo map generation failed: %v", err)
		}
		return RepoMapSyncResult{Reason: "generation failed"}
	}
	if err := mapper.WriteTOON(files); err != nil {
		if logf != nil {
			logf("repo map write failed: %v", err)
		}
		return RepoMapSyncResult{Reason: "write failed"}
	}
	if err := repomap.RecordGeneration(projectRoot); err != nil && logf != nil {
		logf("repo map throttle state write failed: %v", err)
	}

	return RepoMapSyncResult{Regenerated: true, Reason: "regenerated"}
}

func envTruthy(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	return v == "1" || v == "true"
}
