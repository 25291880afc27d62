package repomap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/danshapiro/autoeng/internal/persist"
)

// maxParallelExtractions bounds the number of files parsed concurrently;
// tree-sitter parsing is CPU-bound and pure per file, so a worker pool fed
// from an unbuffered job channel is enough to saturate available cores
// without unbounded goroutine fan-out on large trees.
const maxParallelExtractions = 8

// Mapper discovers, parses and caches the symbol skeleton of every supported
// source file under a project root.
type Mapper struct {
	ProjectRoot string
	cache       *FileHashCache
}

// NewMapper loads the project's existing hash cache, if any.
func NewMapper(projectRoot string) *Mapper {
	return &Mapper{ProjectRoot: projectRoot, cache: LoadCache(projectRoot)}
}

// Generate walks the project, extracts (or reuses cached) symbols for every
// file, persists the updated cache, and returns the files sorted by path for
// deterministic output.
func (m *Mapper) Generate() ([]FileSymbols, error) {
	relPaths, err := FindSourceFiles(m.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("find source files: %w", err)
	}

	type result struct {
		fs  FileSymbols
		err error
	}

	results := make([]result, len(relPaths))
	var wg sync.WaitGroup

	worker := func(in <-chan int) {
		defer wg.Done()
		for idx := range in {
			fs, err := m.extractFile(relPaths[idx])
			results[idx] = result{fs: fs, err: err}
		}
	}

	indices := make(chan int)
	workers := maxParallelExtractions
	if workers > len(relPaths) {
		workers = len(relPaths)
	}
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go worker(indices)
	}
	for idx := range relPaths {
		indices <- idx
	}
	close(indices)
	wg.Wait()

	var files []FileSymbols
	var firstErr error
	for _, r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		files = append(files, r.fs)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	if err := m.cache.Save(); err != nil {
		return nil, fmt.Errorf("save repo map cache: %w", err)
	}

	return files, nil
}

func (m *Mapper) extractFile(relPath string) (FileSymbols, error) {
	content, err := os.ReadFile(filepath.Join(m.ProjectRoot, relPath))
	if err != nil {
		return FileSymbols{}, err
	}
	hash := persist.ContentHash(content)

	if cached, ok := m.cache.Get(relPath, hash); ok {
		return cached, nil
	}

	ext := filepath.Ext(relPath)
	if len(ext) > 0 {
		ext = ext[1:]
	}
	language, ok := LanguageForExtension(ext)
	if !ok {
		return FileSymbols{}, fmt.Errorf("unsupported extension for %s", relPath)
	}
	extractor, err := GetExtractor(language)
	if err != nil {
		return FileSymbols{}, err
	}
	symbols, err := extractor.ExtractSymbols(content)
	if err != nil {
		// A file that fails to parse contributes an empty symbol list
		// instead of failing the whole map.
		symbols = nil
	}

	fs := FileSymbols{Path: relPath, Language: language, Symbols: symbols, Hash: hash}
	m.cache.Insert(relPath, fs)
	return fs, nil
}

// WriteTOON writes the TOON rendering of files to .claude/repo_map/structure.toon.
func (m *Mapper) WriteTOON(files []FileSymbols) error {
	path := filepath.Join(m.ProjectRoot, ".claude", "repo_map", "structure.toon")
	return persist.WriteFileAtomic(path, []byte(GenerateTOON(files, time.Now())))
}

// WriteMarkdown writes the Markdown rendering of files to .claude/repo_map/structure.md.
func (m *Mapper) WriteMarkdown(files []FileSymbols) error {
	path := filepath.Join(m.ProjectRoot, ".claude", "repo_map", "structure.md")
	return persist.WriteFileAtomic(path, []byte(GenerateMarkdown(files, time.Now())))
}
