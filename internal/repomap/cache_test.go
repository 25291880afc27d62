package repomap

import "testing"

func TestCacheMissThenHit(t *testing.T) {
	dir := t.TempDir()
	cache := LoadCache(dir)

	if _, ok := cache.Get("src/main.go", "hash1"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	fs := FileSymbols{Path: "src/main.go", Language: "go", Hash: "hash1", Symbols: []Symbol{
		{Kind: SymbolFunction, Name: "main", Signature: "func main();", LineStart: 1, LineEnd: 3},
	}}
	cache.Insert("src/main.go", fs)

	got, ok := cache.Get("src/main.go", "hash1")
	if !ok {
		t.Fatalf("expected hit after insert")
	}
	if got.Language != "go" || len(got.Symbols) != 1 {
		t.Errorf("got = %+v", got)
	}

	if _, ok := cache.Get("src/main.go", "differenthash"); ok {
		t.Errorf("expected miss when hash differs")
	}
}

func TestCacheInsertStampsID(t *testing.T) {
	dir := t.TempDir()
	cache := LoadCache(dir)
	cache.Insert("a.go", FileSymbols{Path: "a.go", Language: "go", Hash: "h1"})
	cache.Insert("b.go", FileSymbols{Path: "b.go", Language: "go", Hash: "h2"})

	idA := cache.entries["a.go"].ID
	idB := cache.entries["b.go"].ID
	if idA == "" || idB == "" {
		t.Fatalf("expected non-empty provenance ids, got a=%q b=%q", idA, idB)
	}
	if idA == idB {
		t.Errorf("expected distinct ids per insert, both are %q", idA)
	}
}

func TestCacheSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	cache := LoadCache(dir)
	cache.Insert("a.go", FileSymbols{Path: "a.go", Language: "go", Hash: "h1"})
	if err := cache.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded := LoadCache(dir)
	got, ok := reloaded.Get("a.go", "h1")
	if !ok || got.Language != "go" {
		t.Errorf("reloaded cache missing entry, got %+v ok=%v", got, ok)
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	cache := LoadCache(dir)
	cache.Insert("a.go", FileSymbols{Path: "a.go", Hash: "h1"})
	cache.Clear()
	if _, ok := cache.Get("a.go", "h1"); ok {
		t.Errorf("expected cache to be empty after Clear")
	}
}
