package repomap

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindSourceFilesSkipsDefaultIgnores(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/main.go", "package main\n")
	writeFile(t, dir, "node_modules/lib/index.js", "module.exports = {};\n")
	writeFile(t, dir, "vendor/pkg/vendor.go", "package pkg\n")
	writeFile(t, dir, ".git/HEAD", "ref: refs/heads/main\n")
	writeFile(t, dir, "README.md", "# demo\n")

	files, err := FindSourceFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0] != "src/main.go" {
		t.Fatalf("files = %v, want [src/main.go]", files)
	}
}

func TestFindSourceFilesHonorsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/main.go", "package main\n")
	writeFile(t, dir, "build/gen.go", "package build\n")
	writeFile(t, dir, ".gitignore", "build/\n")

	files, err := FindSourceFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0] != "src/main.go" {
		t.Fatalf("files = %v, want [src/main.go]", files)
	}
}

func TestFindSourceFilesMultipleLanguages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package main\n")
	writeFile(t, dir, "b.py", "def f(): pass\n")
	writeFile(t, dir, "c.ts", "const x = 1;\n")
	writeFile(t, dir, "d.rs", "fn main() {}\n")
	writeFile(t, dir, "e.txt", "not source\n")

	files, err := FindSourceFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(files)
	want := []string{"a.go", "b.py", "c.ts", "d.rs"}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}
