// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"parsegen/internal/ast"
	"parsegen/internal/errors"
	"parsegen/internal/parser"
	"parsegen/internal/plan"
	"parsegen/internal/semantic"
)

// compileFile runs the pipeline up to the compiled program: scan, parse,
// validate, synthesize. All diagnostics are rendered to stderr with source
// context; a non-nil error means the grammar did not compile.
func compileFile(path string) (*plan.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	g, parseErrors, scanErrors := parser.ParseSource(path, string(source))
	reporter := errors.NewReporter(path, string(source))

	var diags []errors.CompilerError
	for _, e := range scanErrors {
		diags = append(diags, errors.NewError(errors.ErrorLexical, e.Message, scanSpan(path, e)))
	}
	for _, e := range parseErrors {
		diags = append(diags, errors.NewError(errors.ErrorSyntax, e.Message, parseSpan(path, e)))
	}
	if g != nil && len(diags) == 0 {
		diags = append(diags, semantic.Check(g)...)
	}

	var program *plan.Program
	if g != nil && !errors.HasErrors(diags) {
		var buildErr error
		program, buildErr = plan.Build(g)
		if buildErr != nil {
			if ce, ok := buildErr.(errors.CompilerError); ok {
				diags = append(diags, ce)
			} else {
				return nil, buildErr
			}
		}
	}

	if len(diags) > 0 {
		fmt.Fprint(os.Stderr, reporter.FormatAll(diags))
	}
	if errors.HasErrors(diags) || program == nil {
		return nil, fmt.Errorf("%s: compilation failed", path)
	}
	return program, nil
}

func scanSpan(path string, e parser.ScanError) ast.Span {
	start := ast.Position{
		Filename: path,
		Offset:   e.Position.Offset,
		Line:     e.Position.Line,
		Column:   e.Position.Column,
	}
	end := start
	end.Offset += e.Length
	end.Column += e.Length
	return ast.Span{Start: start, End: end}
}

func parseSpan(path string, e parser.ParseError) ast.Span {
	start := ast.Position{
		Filename: path,
		Offset:   e.Position.Offset,
		Line:     e.Position.Line,
		Column:   e.Position.Column,
	}
	end := start
	end.Offset++
	end.Column++
	return ast.Span{Start: start, End: end}
}
