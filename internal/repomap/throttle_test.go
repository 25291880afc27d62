package repomap

import "testing"

func TestShouldRegenerateNoStateFile(t *testing.T) {
	dir := t.TempDir()
	if !ShouldRegenerate(dir, DefaultMinIntervalSecs) {
		t.Error("expected first regeneration to be allowed with no prior state")
	}
}

func TestShouldRegenerateThrottlesImmediateRerun(t *testing.T) {
	dir := t.TempDir()
	if err := RecordGeneration(dir); err != nil {
		t.Fatal(err)
	}
	if ShouldRegenerate(dir, 3600) {
		t.Error("expected regeneration to be throttled immediately after recording")
	}
}

func TestShouldRegenerateNonPositiveIntervalFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	if err := RecordGeneration(dir); err != nil {
		t.Fatal(err)
	}
	// A non-positive interval falls back to DefaultMinIntervalSecs, which is
	// long enough that a generation recorded moments ago still throttles.
	if ShouldRegenerate(dir, -1) {
		t.Error("expected non-positive interval to fall back to the default throttle window")
	}
}
