package review

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeExecutable(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}
}

// resolveUncached is exercised directly rather than through
// ResolveReviewerBinary in most of these tests: the public entry point caches
// a successful resolution for the whole process, which would make its
// result depend on test execution order.

func TestResolveUncachedViaEnvVar(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shebang scripts only")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "fake-reviewer")
	writeExecutable(t, bin, "#!/bin/sh\necho fake-1.0\nexit 0\n")

	t.Setenv(EnvReviewerBin, bin)

	got, err := resolveUncached()
	if err != nil {
		t.Fatal(err)
	}
	if got != bin {
		t.Errorf("resolveUncached() = %q, want %q", got, bin)
	}
}

func TestResolveUncachedInvalidEnvVarFallsThrough(t *testing.T) {
	t.Setenv(EnvReviewerBin, "/does/not/exist/reviewer")
	t.Setenv("PATH", t.TempDir())

	if _, err := resolveUncached(); err == nil {
		t.Error("expected resolution to fail when no reviewer can be found anywhere")
	}
}

func TestValidateBinaryRejectsNonExecutableFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permission bits only")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "not-executable")
	if err := os.WriteFile(path, []byte("echo hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if validateBinary(path) {
		t.Error("validateBinary = true for a non-executable file, want false")
	}
}
