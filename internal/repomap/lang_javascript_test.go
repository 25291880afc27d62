package repomap

import "testing"

func TestJavaScriptExtractorFunction(t *testing.T) {
	src := []byte("function greet(name) {\n    return `Hello, ${name}!`;\n}\n")
	symbols, err := NewJavaScriptExtractor().ExtractSymbols(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(symbols) != 1 || symbols[0].Kind != SymbolFunction || symbols[0].Name != "greet" {
		t.Fatalf("symbols = %+v", symbols)
	}
}

func TestJavaScriptExtractorArrowFunction(t *testing.T) {
	src := []byte("const add = (a, b) => {\n    return a + b;\n};\n")
	symbols, err := NewJavaScriptExtractor().ExtractSymbols(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(symbols) != 1 || symbols[0].Name != "add" {
		t.Fatalf("symbols = %+v", symbols)
	}
}

func TestJavaScriptExtractorClass(t *testing.T) {
	src := []byte("export class User {\n    constructor(name) {\n        this.name = name;\n    }\n}\n")
	symbols, err := NewJavaScriptExtractor().ExtractSymbols(src)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, s := range symbols {
		if s.Name == "User" && s.Kind == SymbolStruct {
			found = true
		}
	}
	if !found {
		t.Fatalf("symbols = %+v", symbols)
	}
}

func TestJavaScriptExtractorReactComponent(t *testing.T) {
	src := []byte("const Button = ({ onClick, children }) => {\n    return null;\n};\n")
	symbols, err := NewJavaScriptExtractor().ExtractSymbols(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(symbols) != 1 || symbols[0].Name != "Button" {
		t.Fatalf("symbols = %+v", symbols)
	}
}
