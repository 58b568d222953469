// Package analysis provides the read-only static passes over the grammar
// model that the synthesizer composes: cut splitting, left-recursion
// classification, binding extraction, keyword collection, nullability,
// first-token ("peek") derivation, cycle detection, and shadowing checks.
package analysis

import (
	"parsegen/internal/ast"
)

// FindCut splits a pattern sequence at its first commit marker. ok is false
// when the sequence contains no cut.
func FindCut(patterns []ast.Pattern) (pre, post []ast.Pattern, ok bool) {
	for i, p := range patterns {
		if _, isCut := p.(*ast.Cut); isCut {
			return patterns[:i], patterns[i+1:], true
		}
	}
	return nil, nil, false
}

// SplitLeftRecursive partitions a rule's variants into recursive tails
// (variants whose very first pattern is a call to the rule itself) and base
// variants. Declaration order is preserved within each partition.
func SplitLeftRecursive(ruleName string, variants []*ast.Variant) (recursive, base []*ast.Variant) {
	for _, v := range variants {
		if len(v.Patterns) > 0 {
			if call, isCall := v.Patterns[0].(*ast.RuleCall); isCall && call.Name.Value == ruleName {
				recursive = append(recursive, v)
				continue
			}
		}
		base = append(base, v)
	}
	return recursive, base
}

// CollectBindings computes the ordered list of names a pattern sequence
// exposes to its enclosing context. Not(...) exposes nothing; Peek exposes
// its inner bindings; a bound Recover exposes only its own binding.
func CollectBindings(patterns []ast.Pattern) []string {
	var names []string
	for _, p := range patterns {
		names = append(names, patternBindings(p)...)
	}
	return names
}

func patternBindings(p ast.Pattern) []string {
	switch p := p.(type) {
	case *ast.RuleCall:
		if p.Binding != nil {
			return []string{p.Binding.Value}
		}
	case *ast.Optional:
		return patternBindings(p.Inner)
	case *ast.Repeat:
		return patternBindings(p.Inner)
	case *ast.Plus:
		return patternBindings(p.Inner)
	case *ast.Delimited:
		return CollectBindings(p.Inner)
	case *ast.SpanBinding:
		return append([]string{p.Name.Value}, patternBindings(p.Inner)...)
	case *ast.Recover:
		if p.Binding != nil {
			return []string{p.Binding.Value}
		}
		return patternBindings(p.Body)
	case *ast.Peek:
		return patternBindings(p.Inner)
	case *ast.Group:
		var names []string
		for _, alt := range p.Alts {
			names = append(names, CollectBindings(alt)...)
		}
		return names
	case *ast.Not:
		// Negative lookahead only succeeds when the inner pattern fails,
		// so its bindings can never hold a value.
		return nil
	}
	return nil
}

// CollectKeywords gathers every bare-word literal piece in the grammar.
// These words need keyword tokenization so that, for example, "commit" in a
// literal matches a whole identifier token rather than a prefix.
func CollectKeywords(g *ast.Grammar) map[string]bool {
	kws := make(map[string]bool)
	for _, r := range g.Rules {
		for _, v := range r.Variants {
			collectKeywordsSeq(v.Patterns, kws)
		}
	}
	return kws
}

func collectKeywordsSeq(patterns []ast.Pattern, kws map[string]bool) {
	for _, p := range patterns {
		collectKeywordsPattern(p, kws)
	}
}

func collectKeywordsPattern(p ast.Pattern, kws map[string]bool) {
	switch p := p.(type) {
	case *ast.Lit:
		pieces, err := LiteralPieces(p.Value)
		if err != nil {
			return
		}
		for _, piece := range pieces {
			if piece != "_" && isWord(piece) {
				kws[piece] = true
			}
		}
	case *ast.Group:
		for _, alt := range p.Alts {
			collectKeywordsSeq(alt, kws)
		}
	case *ast.Delimited:
		collectKeywordsSeq(p.Inner, kws)
	case *ast.Optional:
		collectKeywordsPattern(p.Inner, kws)
	case *ast.Repeat:
		collectKeywordsPattern(p.Inner, kws)
	case *ast.Plus:
		collectKeywordsPattern(p.Inner, kws)
	case *ast.SpanBinding:
		collectKeywordsPattern(p.Inner, kws)
	case *ast.Recover:
		collectKeywordsPattern(p.Body, kws)
		collectKeywordsPattern(p.Sync, kws)
	case *ast.Peek:
		collectKeywordsPattern(p.Inner, kws)
	case *ast.Not:
		collectKeywordsPattern(p.Inner, kws)
	}
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
