package repomap

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GenerateTOON renders files as a TOON (Token-Oriented Object Notation)
// document: a YAML-like header followed by a top-level files[N]: array,
// each entry carrying a comma-row symbols table.
func GenerateTOON(files []FileSymbols, generatedAt time.Time) string {
	var out strings.Builder

	out.WriteString("# Repository Structure Map (TOON Format)\n")
	fmt.Fprintf(&out, "generated: %s\n", generatedAt.UTC().Format("2006-01-02 15:04:05"))

	totalSymbols := 0
	for _, f := range files {
		totalSymbols += len(f.Symbols)
	}
	fmt.Fprintf(&out, "total_files: %d\n", len(files))
	fmt.Fprintf(&out, "total_symbols: %d\n\n", totalSymbols)

	if len(files) == 0 {
		out.WriteString("files[0]:\n")
		return out.String()
	}

	fmt.Fprintf(&out, "files[%d]:\n", len(files))
	for idx, f := range files {
		fmt.Fprintf(&out, "\n  # File %d\n", idx+1)
		fmt.Fprintf(&out, "  path: %s\n", escapeTOONString(f.Path))
		fmt.Fprintf(&out, "  language: %s\n", f.Language)
		fmt.Fprintf(&out, "  hash: %s\n", f.Hash)

		if len(f.Symbols) == 0 {
			out.WriteString("  symbols[0]:\n")
			continue
		}
		writeSymbolsTable(&out, f.Symbols, "  ")
	}

	return out.String()
}

func writeSymbolsTable(out *strings.Builder, symbols []Symbol, indent string) {
	fmt.Fprintf(out, "%ssymbols[%d]{kind,name,signature,line_start,line_end}:\n", indent, len(symbols))
	for _, s := range symbols {
		fmt.Fprintf(out, "%s  %s,%s,%s,%s,%s\n", indent,
			string(s.Kind),
			escapeTOONString(s.Name),
			escapeTOONString(s.Signature),
			strconv.Itoa(s.LineStart),
			strconv.Itoa(s.LineEnd))
	}
}

// escapeTOONString quotes s if it is empty, has leading/trailing whitespace,
// or contains a field delimiter (, : tab | " newline cr), escaping embedded
// backslashes and quotes.
func escapeTOONString(s string) string {
	needsQuotes := s == "" ||
		strings.HasPrefix(s, " ") ||
		strings.HasSuffix(s, " ") ||
		strings.ContainsAny(s, ",:\t|\"\n\r")

	if !needsQuotes {
		return s
	}
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
