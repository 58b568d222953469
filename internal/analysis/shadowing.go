package analysis

import (
	"fmt"

	"parsegen/internal/ast"
)

// ShadowIssue reports one unreachable alternative. Shadowing is an error,
// not a warning: the shadowed alternative can never match, so the grammar
// cannot express what its author wrote. Rendered holds the unreachable
// alternative in grammar-definition syntax for the diagnostic note.
type ShadowIssue struct {
	Span     ast.Span
	Message  string
	Rendered string
}

// Shadowing compares every pair of sibling alternatives term by term. A
// fully identical pair is reported as identical; when the earlier
// alternative is a strict prefix of the later one, the later alternative is
// unreachable. The reverse order (longer first) is fine. This check is
// deliberately conservative: a cut or differing actions further along do
// not rescue a prefix-shadowed alternative.
func Shadowing(variants []*ast.Variant) []ShadowIssue {
	var issues []ShadowIssue
	for i := 0; i < len(variants); i++ {
		for j := i + 1; j < len(variants); j++ {
			a, b := variants[i].Patterns, variants[j].Patterns
			n := min(len(a), len(b))
			if !sequenceEqual(a[:n], b[:n]) {
				continue
			}
			switch {
			case len(a) == len(b):
				issues = append(issues, ShadowIssue{
					Span:     variants[j].Span(),
					Message:  fmt.Sprintf("Alternative %d and %d are identical", i+1, j+1),
					Rendered: ast.SequenceString(b),
				})
			case len(a) < len(b):
				issues = append(issues, ShadowIssue{
					Span:     variants[j].Span(),
					Message:  fmt.Sprintf("Alternative %d shadows Alternative %d", i+1, j+1),
					Rendered: ast.SequenceString(b),
				})
			}
		}
	}
	return issues
}

// GroupShadowing applies the same pairwise check to every Group nested in a
// pattern sequence.
func GroupShadowing(patterns []ast.Pattern) []ShadowIssue {
	var issues []ShadowIssue
	for _, p := range patterns {
		issues = append(issues, groupShadowingPattern(p)...)
	}
	return issues
}

func groupShadowingPattern(p ast.Pattern) []ShadowIssue {
	switch p := p.(type) {
	case *ast.Group:
		variants := make([]*ast.Variant, len(p.Alts))
		for i, alt := range p.Alts {
			variants[i] = &ast.Variant{Patterns: alt}
		}
		issues := Shadowing(variants)
		for _, alt := range p.Alts {
			issues = append(issues, GroupShadowing(alt)...)
		}
		return issues
	case *ast.Delimited:
		return GroupShadowing(p.Inner)
	case *ast.Optional:
		return groupShadowingPattern(p.Inner)
	case *ast.Repeat:
		return groupShadowingPattern(p.Inner)
	case *ast.Plus:
		return groupShadowingPattern(p.Inner)
	case *ast.SpanBinding:
		return groupShadowingPattern(p.Inner)
	case *ast.Recover:
		return append(groupShadowingPattern(p.Body), groupShadowingPattern(p.Sync)...)
	case *ast.Peek:
		return groupShadowingPattern(p.Inner)
	case *ast.Not:
		return groupShadowingPattern(p.Inner)
	}
	return nil
}

func sequenceEqual(a, b []ast.Pattern) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !PatternEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// PatternEqual is structural equality over match behavior: spans and result
// bindings are ignored because they do not affect what input a pattern
// accepts.
func PatternEqual(a, b ast.Pattern) bool {
	switch a := a.(type) {
	case *ast.Cut:
		_, ok := b.(*ast.Cut)
		return ok
	case *ast.Lit:
		bl, ok := b.(*ast.Lit)
		return ok && a.Value == bl.Value
	case *ast.RuleCall:
		bc, ok := b.(*ast.RuleCall)
		if !ok || a.Name.Value != bc.Name.Value || len(a.Args) != len(bc.Args) {
			return false
		}
		for i := range a.Args {
			if a.Args[i].Kind != bc.Args[i].Kind || a.Args[i].Text != bc.Args[i].Text {
				return false
			}
		}
		return true
	case *ast.Group:
		bg, ok := b.(*ast.Group)
		if !ok || len(a.Alts) != len(bg.Alts) {
			return false
		}
		for i := range a.Alts {
			if !sequenceEqual(a.Alts[i], bg.Alts[i]) {
				return false
			}
		}
		return true
	case *ast.Delimited:
		bd, ok := b.(*ast.Delimited)
		return ok && a.Kind == bd.Kind && sequenceEqual(a.Inner, bd.Inner)
	case *ast.Optional:
		bo, ok := b.(*ast.Optional)
		return ok && PatternEqual(a.Inner, bo.Inner)
	case *ast.Repeat:
		br, ok := b.(*ast.Repeat)
		return ok && PatternEqual(a.Inner, br.Inner)
	case *ast.Plus:
		bp, ok := b.(*ast.Plus)
		return ok && PatternEqual(a.Inner, bp.Inner)
	case *ast.SpanBinding:
		bs, ok := b.(*ast.SpanBinding)
		return ok && PatternEqual(a.Inner, bs.Inner)
	case *ast.Recover:
		br, ok := b.(*ast.Recover)
		return ok && PatternEqual(a.Body, br.Body) && PatternEqual(a.Sync, br.Sync)
	case *ast.Peek:
		bp, ok := b.(*ast.Peek)
		return ok && PatternEqual(a.Inner, bp.Inner)
	case *ast.Not:
		bn, ok := b.(*ast.Not)
		return ok && PatternEqual(a.Inner, bn.Inner)
	}
	return false
}
