package semantic

import (
	"fmt"
	"strings"

	"parsegen/internal/analysis"
	"parsegen/internal/ast"
	"parsegen/internal/errors"
	"parsegen/internal/runtime"
)

// Check runs every validation pass over the grammar and returns all
// diagnostics, errors first within each pass, passes in a fixed order so
// output is stable.
func Check(g *ast.Grammar) []errors.CompilerError {
	c := &checker{
		grammar:  g,
		builtins: runtime.CatalogNames(),
	}

	c.checkDuplicates()
	c.checkReferences()
	c.checkLiterals()
	c.checkRecursion()
	c.checkShadowing()
	c.checkUnused()

	return c.diags
}

// Validate returns the first error-level diagnostic, or nil when the grammar
// is valid.
func Validate(g *ast.Grammar) error {
	for _, d := range Check(g) {
		if d.Level == errors.Error {
			return d
		}
	}
	return nil
}

type checker struct {
	grammar  *ast.Grammar
	builtins map[string]bool
	diags    []errors.CompilerError
}

func (c *checker) errorf(code string, span ast.Span, format string, args ...interface{}) {
	c.diags = append(c.diags, errors.NewError(code, fmt.Sprintf(format, args...), span))
}

func (c *checker) checkDuplicates() {
	seen := make(map[string]bool)
	for _, r := range c.grammar.Rules {
		if seen[r.Name.Value] {
			c.errorf(errors.ErrorDuplicateRule, r.Name.Span(),
				"Duplicate rule definition: '%s'", r.Name.Value)
			continue
		}
		seen[r.Name.Value] = true
	}
}

// checkReferences validates rule-call names and argument counts. Name
// resolution is skipped entirely for inheriting grammars: unknown names may
// live in the parent, which is not visible here.
func (c *checker) checkReferences() {
	inherits := c.grammar.Inherits != nil

	for _, r := range c.grammar.Rules {
		params := make(map[string]bool, len(r.Params))
		for _, p := range r.Params {
			params[p.Name.Value] = true
		}

		for _, v := range r.Variants {
			walkCalls(v.Patterns, func(call *ast.RuleCall) {
				name := call.Name.Value

				if params[name] {
					return
				}
				if c.builtins[name] {
					if len(call.Args) > 0 {
						c.errorf(errors.ErrorArgumentCount, call.Name.Span(),
							"Built-in rule '%s' does not accept arguments.", name)
					}
					return
				}

				target := c.grammar.Rule(name)
				if target == nil {
					if !inherits {
						c.errorf(errors.ErrorUndefinedRule, call.Name.Span(),
							"Undefined rule: '%s'", name)
					}
					return
				}
				if len(call.Args) != len(target.Params) {
					c.errorf(errors.ErrorArgumentCount, call.Name.Span(),
						"Rule '%s' expects %d argument(s), but got %d.",
						name, len(target.Params), len(call.Args))
				}
			})
		}
	}
}

func (c *checker) checkLiterals() {
	for _, r := range c.grammar.Rules {
		for _, v := range r.Variants {
			walkLits(v.Patterns, func(lit *ast.Lit) {
				if _, err := analysis.LiteralPieces(lit.Value); err != nil {
					c.errorf(errors.ErrorBadLiteral, lit.Span(), "%s", err.Error())
				}
			})
		}
	}
}

func (c *checker) checkRecursion() {
	for _, cycle := range analysis.Cycles(c.grammar) {
		if len(cycle) < 2 {
			// Direct left recursion is rewritten by the synthesizer.
			continue
		}
		first := c.grammar.Rule(cycle[0])
		span := first.Name.Span()
		c.errorf(errors.ErrorLeftRecursion, span,
			"Indirect left recursion detected (unsupported): %s -> %s",
			strings.Join(cycle, " -> "), cycle[0])
	}
}

func (c *checker) checkShadowing() {
	report := func(issue analysis.ShadowIssue) {
		c.diags = append(c.diags,
			errors.NewError(errors.ErrorShadowing, issue.Message, issue.Span).
				WithNote("unreachable alternative: "+issue.Rendered))
	}
	for _, r := range c.grammar.Rules {
		for _, issue := range analysis.Shadowing(r.Variants) {
			report(issue)
		}
		for _, v := range r.Variants {
			for _, issue := range analysis.GroupShadowing(v.Patterns) {
				report(issue)
			}
		}
	}
}

// checkUnused warns about rules nothing references. Public rules are entry
// points; names starting with '_' opt out; inheriting grammars are exempt
// because the parent may call anything.
func (c *checker) checkUnused() {
	if c.grammar.Inherits != nil {
		return
	}

	used := make(map[string]bool)
	for _, r := range c.grammar.Rules {
		for _, v := range r.Variants {
			walkCalls(v.Patterns, func(call *ast.RuleCall) {
				used[call.Name.Value] = true
			})
		}
	}

	for _, r := range c.grammar.Rules {
		if r.Public || used[r.Name.Value] || strings.HasPrefix(r.Name.Value, "_") {
			continue
		}
		c.diags = append(c.diags, errors.NewWarning(errors.WarnUnusedRule,
			fmt.Sprintf("Rule '%s' is never used", r.Name.Value), r.Name.Span()))
	}
}
