package hooks

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/danshapiro/autoeng/internal/model"
	"github.com/danshapiro/autoeng/internal/persist"
	"github.com/danshapiro/autoeng/internal/roadmap"
)

// ProgressSyncResult describes what, if anything, RunProgressSync did.
type ProgressSyncResult struct {
	Synced   bool
	SyncType string
	File     string
}

// RunProgressSync is the PostToolUse progress_sync sub-handler: it inspects
// the touched file path and, when it recognizes ROADMAP.md, a TASK-*.md, or
// a PHASE_PLAN*.md, re-derives memory.json's progress fields from it.
func RunProgressSync(projectRoot string, input HookInput) ProgressSyncResult {
	filePath := input.ToolInput.ResolvedFilePath()
	if filePath == "" {
		return ProgressSyncResult{}
	}
	filename := filepath.Base(filePath)

	var synced bool
	var syncType string
	switch {
	case roadmap.IsRoadmapFile(filePath):
		synced = syncFromRoadmap(projectRoot)
		syncType = "roadmap"
	case roadmap.IsTaskFile(filename):
		synced = syncFromTaskFile(projectRoot, filePath)
		syncType = "task"
	case roadmap.IsPhasePlanFile(filename):
		synced = syncFromPhasePlan(projectRoot, filePath)
		syncType = "phase"
	default:
		return ProgressSyncResult{File: filePath}
	}

	return ProgressSyncResult{Synced: synced, SyncType: syncType, File: filePath}
}

func syncFromRoadmap(projectRoot string) bool {
	r, ok := roadmap.Load(projectRoot)
	if !ok {
		return false
	}

	memPath := filepath.Join(projectRoot, memoryFile)
	mem := persist.TryReadJSON[model.Memory](memPath)

	mem.Progress.Completed = len(r.Completed)
	mem.Progress.Pending = len(r.Pending)
	mem.Progress.InProgress = len(r.InProgress)
	mem.Progress.Skipped = len(r.Skipped)
	mem.Progress.LastSyncedAt = time.Now().UTC().Format(time.RFC3339)

	if task, ok := r.FindCurrentTask(); ok && task.PhaseID != "" {
		mem.Progress.CurrentPhase = task.PhaseID
	}

	_ = persist.WriteJSON(memPath, mem)
	return true
}

func syncFromTaskFile(projectRoot, filePath string) bool {
	content, ok := readTouchedFile(projectRoot, filePath)
	if !ok || strings.TrimSpace(content) == "" {
		return false
	}

	parsed := roadmap.Parse(content)

	memPath := filepath.Join(projectRoot, memoryFile)
	mem := persist.TryReadJSON[model.Memory](memPath)

	mem.WorkingContext.CurrentFile = filePath
	mem.WorkingContext.PendingTests = nil
	mem.WorkingContext.PendingImplementations = nil
	for _, task := range parsed.Pending {
		if strings.Contains(strings.ToLower(task.Content), "test") {
			mem.WorkingContext.PendingTests = append(mem.WorkingContext.PendingTests, task.Content)
		} else {
			mem.WorkingContext.PendingImplementations = append(mem.WorkingContext.PendingImplementations, task.Content)
		}
	}

	_ = persist.WriteJSON(memPath, mem)
	return true
}

func syncFromPhasePlan(projectRoot, filePath string) bool {
	content, ok := readTouchedFile(projectRoot, filePath)
	if !ok {
		return false
	}

	plan := roadmap.ParsePhasePlan(content)
	if len(plan.Phases) == 0 {
		return false
	}

	memPath := filepath.Join(projectRoot, memoryFile)
	mem := persist.TryReadJSON[model.Memory](memPath)

	mem.Progress.PhasesTotal = len(plan.Phases)
	mem.Progress.PhasesCompleted = plan.PhasesCompleted
	mem.Progress.LastSyncedAt = time.Now().UTC().Format(time.RFC3339)

	_ = persist.WriteJSON(memPath, mem)
	return true
}

// readTouchedFile resolves filePath against projectRoot when relative, then
// reads it; a missing file is not an error, just "nothing to sync".
func readTouchedFile(projectRoot, filePath string) (string, bool) {
	full := filePath
	if !filepath.IsAbs(full) {
		full = filepath.Join(projectRoot, filePath)
	}
	return persist.TryReadFile(full)
}
