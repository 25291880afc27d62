package repomap

import (
	"path/filepath"
	"time"

	"github.com/danshapiro/autoeng/internal/persist"
)

// StateFile is the project-relative path of the regeneration throttle state.
const StateFile = ".claude/status/repo_map_state.json"

// DefaultMinIntervalSecs is how often the map may regenerate absent
// configuration or an environment override.
const DefaultMinIntervalSecs = 10

type throttleState struct {
	LastGeneratedAt time.Time `json:"last_generated_at"`
}

// ShouldRegenerate reports whether enough time has passed since the last
// recorded regeneration under projectRoot to run another one.
func ShouldRegenerate(projectRoot string, minIntervalSecs int) bool {
	if minIntervalSecs <= 0 {
		minIntervalSecs = DefaultMinIntervalSecs
	}
	state := persist.TryReadJSON[throttleState](filepath.Join(projectRoot, StateFile))
	if state.LastGeneratedAt.IsZero() {
		return true
	}
	return time.Since(state.LastGeneratedAt) >= time.Duration(minIntervalSecs)*time.Second
}

// RecordGeneration stamps the throttle state with the current time.
func RecordGeneration(projectRoot string) error {
	return persist.WriteJSON(filepath.Join(projectRoot, StateFile), throttleState{LastGeneratedAt: time.Now()})
}
