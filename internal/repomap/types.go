// Package repomap walks a project's source tree, extracts a structural
// skeleton of each supported source file via tree-sitter, and emits the
// result as TOON or Markdown for injection into the assistant's context.
package repomap

// SymbolKind classifies a single extracted declaration.
type SymbolKind string

const (
	SymbolFunction SymbolKind = "Function"
	SymbolStruct   SymbolKind = "Struct"
	SymbolEnum     SymbolKind = "Enum"
	SymbolTrait    SymbolKind = "Trait"
	SymbolImpl     SymbolKind = "Impl"
	SymbolConst    SymbolKind = "Const"
	SymbolModule   SymbolKind = "Module"
	SymbolType     SymbolKind = "Type"
)

// Symbol is one function, struct, interface, or similar declaration found in
// a source file.
type Symbol struct {
	Kind       SymbolKind `json:"kind"`
	Name       string     `json:"name"`
	Signature  string     `json:"signature"`
	LineStart  int        `json:"line_start"`
	LineEnd    int        `json:"line_end"`
}

// FileSymbols is the extracted skeleton of a single source file.
type FileSymbols struct {
	Path     string   `json:"path"`
	Language string   `json:"language"`
	Symbols  []Symbol `json:"symbols"`
	Hash     string   `json:"hash"`
}

// LanguageExtractor parses source text for one language into a flat symbol
// list. Implementations must be safe to call concurrently from a worker pool
// since each extractor instance may be reused across goroutines.
type LanguageExtractor interface {
	ExtractSymbols(source []byte) ([]Symbol, error)
	LanguageName() string
}

// supportedExtensions maps a file extension (without the dot) to the
// language name used to select an extractor.
var supportedExtensions = map[string]string{
	"go":  "go",
	"py":  "python",
	"js":  "javascript",
	"jsx": "javascript",
	"ts":  "typescript",
	"tsx": "typescript",
	"rs":  "rust",
}

// LanguageForExtension returns the language name registered for ext (without
// a leading dot) and whether one is supported.
func LanguageForExtension(ext string) (string, bool) {
	lang, ok := supportedExtensions[ext]
	return lang, ok
}

// GetExtractor returns the LanguageExtractor registered for language, or an
// error if none is.
func GetExtractor(language string) (LanguageExtractor, error) {
	switch language {
	case "go":
		return NewGoExtractor(), nil
	case "python":
		return NewPythonExtractor(), nil
	case "javascript":
		return NewJavaScriptExtractor(), nil
	case "typescript":
		return NewTypeScriptExtractor(), nil
	case "rust":
		return NewRustExtractor(), nil
	default:
		return nil, &unsupportedLanguageError{language}
	}
}

type unsupportedLanguageError struct{ language string }

func (e *unsupportedLanguageError) Error() string {
	return "unsupported language: " + e.language
}
