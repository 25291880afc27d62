package repomap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestMapperRoundTrip covers a project with a single Go source file: the
// first Generate call parses it and produces a TOON file naming the path,
// language, and Hello symbol; cache.json is written; a second Generate call
// hits the cache (same hash) and emits byte-identical TOON output.
func TestMapperRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/main.go", "package main\n\nfunc Hello() int { return 1 }\n")

	m1 := NewMapper(dir)
	files1, err := m1.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if len(files1) != 1 || files1[0].Path != "src/main.go" || files1[0].Language != "go" {
		t.Fatalf("files1 = %+v", files1)
	}
	if len(files1[0].Symbols) != 1 || files1[0].Symbols[0].Name != "Hello" {
		t.Fatalf("symbols = %+v", files1[0].Symbols)
	}

	if err := m1.WriteTOON(files1); err != nil {
		t.Fatal(err)
	}
	toonPath := filepath.Join(dir, ".claude", "repo_map", "structure.toon")
	firstTOON, err := os.ReadFile(toonPath)
	if err != nil {
		t.Fatal(err)
	}

	cachePath := filepath.Join(dir, CacheFile)
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("expected cache.json to exist: %v", err)
	}

	m2 := NewMapper(dir)
	files2, err := m2.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if files2[0].Hash != files1[0].Hash {
		t.Fatalf("hash changed between runs: %s != %s", files2[0].Hash, files1[0].Hash)
	}
	if err := m2.WriteTOON(files2); err != nil {
		t.Fatal(err)
	}
	secondTOON, err := os.ReadFile(toonPath)
	if err != nil {
		t.Fatal(err)
	}

	// generated timestamp changes between runs but file/symbol content must
	// not; compare everything after the first two header lines.
	if lines1, lines2 := skipHeader(string(firstTOON)), skipHeader(string(secondTOON)); lines1 != lines2 {
		t.Errorf("TOON body differs between cache-miss and cache-hit runs:\n%s\n---\n%s", lines1, lines2)
	}
}

func skipHeader(s string) string {
	lines := strings.SplitN(s, "\n", 3)
	if len(lines) < 3 {
		return s
	}
	return lines[2]
}

func TestMapperWriteMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package main\n\nfunc F() {}\n")

	m := NewMapper(dir)
	files, err := m.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.WriteMarkdown(files); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(filepath.Join(dir, ".claude", "repo_map", "structure.md"))
	if err != nil {
		t.Fatal(err)
	}
	if len(content) == 0 {
		t.Error("expected non-empty markdown output")
	}
}
