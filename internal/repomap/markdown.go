package repomap

import (
	"fmt"
	"strings"
	"time"
)

// GenerateMarkdown renders files as a human-readable Markdown document,
// grouping each file's symbols into Structs/Enums/Traits/Functions/Impls
// fenced code blocks tagged with the file's language.
func GenerateMarkdown(files []FileSymbols, generatedAt time.Time) string {
	var out strings.Builder

	out.WriteString("# Repository Structure Map\n\n")
	fmt.Fprintf(&out, "Generated: %s\n\n", generatedAt.UTC().Format("2006-01-02 15:04:05"))

	totalSymbols := 0
	for _, f := range files {
		totalSymbols += len(f.Symbols)
	}
	fmt.Fprintf(&out, "Files: %d | Symbols: %d\n\n", len(files), totalSymbols)
	out.WriteString("---\n\n")

	for _, f := range files {
		fmt.Fprintf(&out, "## %s\n\n", f.Path)
		if len(f.Symbols) == 0 {
			out.WriteString("*No symbols found*\n\n")
			continue
		}

		writeGroup(&out, "Structs", f.Language, filterKind(f.Symbols, SymbolStruct))
		writeGroup(&out, "Enums", f.Language, filterKind(f.Symbols, SymbolEnum))
		writeGroup(&out, "Traits", f.Language, filterKind(f.Symbols, SymbolTrait))
		writeGroup(&out, "Functions", f.Language, filterKind(f.Symbols, SymbolFunction))
		writeGroup(&out, "Implementations", f.Language, filterKind(f.Symbols, SymbolImpl))

		out.WriteString("---\n\n")
	}

	return out.String()
}

func filterKind(symbols []Symbol, kind SymbolKind) []Symbol {
	var out []Symbol
	for _, s := range symbols {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

func writeGroup(out *strings.Builder, title, language string, symbols []Symbol) {
	if len(symbols) == 0 {
		return
	}
	fmt.Fprintf(out, "### %s\n\n```%s\n", title, language)
	for _, s := range symbols {
		fmt.Fprintf(out, "// Line %d\n%s\n\n", s.LineStart, s.Signature)
	}
	out.WriteString("```\n\n")
}
