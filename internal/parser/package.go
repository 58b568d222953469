package parser

import "parsegen/internal/ast"

func ParseSource(path string, source string) (*ast.Grammar, []ParseError, []ScanError) {
	scanner := NewScanner(source)
	tokens := scanner.ScanTokens()

	parser := NewParser(path, source, tokens)
	grammar := parser.ParseGrammar()

	return grammar, parser.errors, scanner.errors
}
