package roadmap

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/danshapiro/autoeng/internal/persist"
)

// RoadmapFile is the project-relative path to the roadmap document.
const RoadmapFile = ".claude/status/ROADMAP.md"

// Load reads and parses ROADMAP.md under projectRoot. A missing file is not
// an error: callers distinguish "absent" from "empty" via the ok return.
func Load(projectRoot string) (Roadmap, bool) {
	content, ok := persist.TryReadFile(filepath.Join(projectRoot, RoadmapFile))
	if !ok {
		return Roadmap{}, false
	}
	return Parse(content), true
}

// PhasePlan summarizes a PHASE_PLAN*.md file: its phase headers and how many
// have been marked complete, feeding Memory.Progress.PhasesCompleted/Total.
type PhasePlan struct {
	Phases          []string
	PhasesCompleted int
}

var phaseHeaderPattern = regexp.MustCompile(`(?m)^#{1,3}\s*(PHASE-\d+.*)$`)

// ParsePhasePlan extracts phase headers from a PHASE_PLAN*.md document and
// counts the phases whose section has at least one task and no pending or
// in-progress task left.
func ParsePhasePlan(content string) PhasePlan {
	headers := phaseHeaderPattern.FindAllStringSubmatch(content, -1)
	plan := PhasePlan{}
	for _, h := range headers {
		plan.Phases = append(plan.Phases, strings.TrimSpace(h[1]))
	}

	sections := phaseHeaderPattern.Split(content, -1)
	// sections[0] is preamble before the first header; sections[i+1]
	// corresponds to headers[i].
	for i := range plan.Phases {
		if i+1 >= len(sections) {
			break
		}
		section := sections[i+1]
		roadmapInSection := Parse(section)
		if roadmapInSection.Total() > 0 && !roadmapInSection.HasPending() {
			plan.PhasesCompleted++
		}
	}
	return plan
}

// TaskFilePattern matches a task detail file such as "TASK-001_do_thing.md".
var TaskFilePattern = regexp.MustCompile(`^TASK-\d+.*\.md$`)

// IsTaskFile reports whether filename looks like a task detail file.
func IsTaskFile(filename string) bool {
	return strings.Contains(filename, "TASK-") && strings.HasSuffix(filename, ".md")
}

// IsPhasePlanFile reports whether filename looks like a phase-plan file.
func IsPhasePlanFile(filename string) bool {
	return strings.Contains(filename, "PHASE_PLAN") && strings.HasSuffix(filename, ".md")
}

// IsRoadmapFile reports whether path refers to ROADMAP.md.
func IsRoadmapFile(path string) bool {
	return filepath.Base(path) == "ROADMAP.md" || strings.Contains(path, "ROADMAP.md")
}

// FindTaskSpec searches for the task's detail file: first
// .claude/status/<taskID>.md, then recursively under .claude/phases/ up to
// depth 4, matching any filename containing taskID and ending in ".md".
func FindTaskSpec(projectRoot, taskID string) (string, bool) {
	direct := filepath.Join(projectRoot, ".claude", "status", taskID+".md")
	if content, ok := persist.TryReadFile(direct); ok {
		return content, true
	}

	phasesDir := filepath.Join(projectRoot, ".claude", "phases")
	content, ok := searchPhasesDir(phasesDir, taskID, 4)
	if !ok {
		return "", false
	}
	return content, true
}

func searchPhasesDir(dir, taskID string, depthRemaining int) (string, bool) {
	if depthRemaining <= 0 {
		return "", false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if content, ok := searchPhasesDir(full, taskID, depthRemaining-1); ok {
				return content, true
			}
			continue
		}
		if strings.Contains(entry.Name(), taskID) && strings.HasSuffix(entry.Name(), ".md") {
			if content, ok := persist.TryReadFile(full); ok {
				return content, true
			}
		}
	}
	return "", false
}
