package repomap

import (
	"path/filepath"

	"github.com/danshapiro/autoeng/internal/persist"
)

// CacheFile is the project-relative path the hash cache persists to.
const CacheFile = ".claude/repo_map/cache.json"

type cacheEntry struct {
	ID       string   `json:"id"`
	Hash     string   `json:"hash"`
	Language string   `json:"language"`
	Symbols  []Symbol `json:"symbols"`
}

// FileHashCache maps a file's content hash to its last-extracted symbols so
// unchanged files skip re-parsing.
type FileHashCache struct {
	projectRoot string
	entries     map[string]cacheEntry
	dirty       bool
}

// LoadCache reads the cache file under projectRoot, or returns an empty cache
// if it doesn't exist yet.
func LoadCache(projectRoot string) *FileHashCache {
	entries := persist.TryReadJSON[map[string]cacheEntry](filepath.Join(projectRoot, CacheFile))
	if entries == nil {
		entries = map[string]cacheEntry{}
	}
	return &FileHashCache{projectRoot: projectRoot, entries: entries}
}

// Save persists the cache if it has pending changes since the last Save.
func (c *FileHashCache) Save() error {
	if !c.dirty {
		return nil
	}
	if err := persist.WriteJSON(filepath.Join(c.projectRoot, CacheFile), c.entries); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Get returns the cached symbols for relPath if its stored hash matches hash.
func (c *FileHashCache) Get(relPath, hash string) (FileSymbols, bool) {
	entry, ok := c.entries[relPath]
	if !ok || entry.Hash != hash {
		return FileSymbols{}, false
	}
	return FileSymbols{Path: relPath, Language: entry.Language, Symbols: entry.Symbols, Hash: entry.Hash}, true
}

// Insert records freshly extracted symbols for relPath, stamping the entry
// with a fresh ULID provenance id, and marks the cache dirty so the next
// Save writes it out.
func (c *FileHashCache) Insert(relPath string, fs FileSymbols) {
	c.entries[relPath] = cacheEntry{ID: persist.NewID(), Hash: fs.Hash, Language: fs.Language, Symbols: fs.Symbols}
	c.dirty = true
}

// Clear drops every cached entry.
func (c *FileHashCache) Clear() {
	c.entries = map[string]cacheEntry{}
	c.dirty = true
}
