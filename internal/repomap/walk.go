package repomap

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnoreDirs are pruned from traversal regardless of .gitignore
// contents; repo_map must never walk its own output directory (loop
// prevention) and should not spend cycles in build/dependency trees.
var defaultIgnoreDirs = map[string]bool{
	".git":         true,
	".claude":      true,
	"node_modules": true,
	"target":       true,
	"vendor":       true,
}

// gitignoreSet accumulates glob patterns collected from every .gitignore
// found while walking, each rewritten into a pattern anchored at the project
// root so a single doublestar.Match call can test a project-relative path.
type gitignoreSet struct {
	patterns []string
}

func loadGitignore(dir string) []string {
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return nil
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		patterns = append(patterns, trimmed)
	}
	return patterns
}

// add rewrites patterns collected from a .gitignore rooted at dirRel
// (project-root-relative, "" for the project root) into root-anchored globs
// that ignored can match against a slash-separated, project-root-relative
// path.
func (g *gitignoreSet) add(dirRel string, patterns []string) {
	for _, p := range patterns {
		neg := strings.HasPrefix(p, "!")
		if neg {
			p = p[1:]
		}
		p = strings.TrimSuffix(p, "/")
		anchored := strings.Contains(p, "/")
		glob := p
		if !anchored {
			glob = "**/" + p
		}
		if dirRel != "" {
			glob = dirRel + "/" + glob
		}
		if neg {
			glob = "!" + glob
		}
		g.patterns = append(g.patterns, glob)
	}
}

func (g *gitignoreSet) ignored(relPath string) bool {
	ignored := false
	for _, pat := range g.patterns {
		neg := strings.HasPrefix(pat, "!")
		p := strings.TrimPrefix(pat, "!")
		ok, _ := doublestar.Match(p, relPath)
		if !ok {
			ok, _ = doublestar.Match(p+"/**", relPath)
		}
		if ok {
			ignored = !neg
		}
	}
	return ignored
}

// FindSourceFiles walks projectRoot honoring .gitignore patterns (collected
// from every directory visited) and the built-in default-ignore set,
// returning project-relative paths of every file whose extension is
// supported.
func FindSourceFiles(projectRoot string) ([]string, error) {
	ignores := &gitignoreSet{}
	ignores.add("", loadGitignore(projectRoot))

	var files []string
	var walk func(dir, relDir string) error
	walk = func(dir, relDir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}

		localIgnores := &gitignoreSet{patterns: append([]string(nil), ignores.patterns...)}
		for _, e := range entries {
			if e.Name() == ".gitignore" {
				localIgnores.add(relDir, loadGitignore(dir))
			}
		}

		for _, e := range entries {
			name := e.Name()
			rel := name
			if relDir != "" {
				rel = relDir + "/" + name
			}

			if e.IsDir() {
				if defaultIgnoreDirs[name] || localIgnores.ignored(rel) {
					continue
				}
				if err := walk(filepath.Join(dir, name), rel); err != nil {
					return err
				}
				continue
			}

			if localIgnores.ignored(rel) {
				continue
			}
			ext := strings.TrimPrefix(filepath.Ext(name), ".")
			if _, ok := LanguageForExtension(ext); ok {
				files = append(files, rel)
			}
		}
		return nil
	}

	if err := walk(projectRoot, ""); err != nil {
		return nil, err
	}
	return files, nil
}
