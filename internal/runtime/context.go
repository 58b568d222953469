package runtime

import "fmt"

// ParseError is a runtime parse failure anchored at an input position.
type ParseError struct {
	Msg    string
	Offset int
	Line   int
	Column int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// NewError builds a ParseError at a token's position.
func NewError(tok Token, format string, args ...any) *ParseError {
	return &ParseError{
		Msg:    fmt.Sprintf(format, args...),
		Offset: tok.Offset,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

type errorState struct {
	err  *ParseError
	deep bool
}

// Context threads the mutable parse state through every nested rule call:
// the fatal (cut-committed) flag, the best error recorded so far, the rule
// name stack used to contextualize errors, and the scope stack. One Context
// serves one top-level parse invocation.
//
// Speculative attempts snapshot and restore every field except the best
// error, which is only ever improved, never rolled back.
type Context struct {
	fatal     bool
	bestError *errorState
	ruleStack []string
	Scopes    *ScopeStack
}

func NewContext() *Context {
	return &Context{Scopes: NewScopeStack()}
}

func (c *Context) SetFatal(fatal bool) { c.fatal = fatal }
func (c *Context) Fatal() bool         { return c.fatal }

func (c *Context) EnterRule(name string) {
	c.ruleStack = append(c.ruleStack, name)
}

func (c *Context) ExitRule() {
	if len(c.ruleStack) > 0 {
		c.ruleStack = c.ruleStack[:len(c.ruleStack)-1]
	}
}

// RuleStack returns the currently active rule names, outermost first.
func (c *Context) RuleStack() []string {
	return c.ruleStack
}

// RecordError keeps err as the best candidate when it is deeper than the
// current one. An error is deep when its position differs from the start of
// the attempt that produced it, meaning the attempt made some progress
// before failing. A deep error replaces a shallow one; between two deep
// errors the first recorded wins, so unrelated attempts do not churn the
// diagnostic.
func (c *Context) RecordError(err error, startOffset int) {
	pe := asParseError(err)
	deep := pe.Offset != startOffset

	if name := c.currentRule(); name != "" {
		pe = &ParseError{
			Msg:    fmt.Sprintf("Error in rule '%s': %s", name, pe.Msg),
			Offset: pe.Offset,
			Line:   pe.Line,
			Column: pe.Column,
		}
	}

	if c.bestError == nil || (deep && !c.bestError.deep) {
		c.bestError = &errorState{err: pe, deep: deep}
	}
}

// TakeBestError removes and returns the best recorded error, or nil.
func (c *Context) TakeBestError() *ParseError {
	if c.bestError == nil {
		return nil
	}
	err := c.bestError.err
	c.bestError = nil
	return err
}

func (c *Context) currentRule() string {
	if len(c.ruleStack) == 0 {
		return ""
	}
	return c.ruleStack[len(c.ruleStack)-1]
}

// Symbol table forwarding.

func (c *Context) EnterScope()                { c.Scopes.EnterScope() }
func (c *Context) ExitScope()                 { c.Scopes.ExitScope() }
func (c *Context) Define(name string)         { c.Scopes.Define(name) }
func (c *Context) IsDefined(name string) bool { return c.Scopes.IsDefined(name) }

func asParseError(err error) *ParseError {
	if pe, ok := err.(*ParseError); ok {
		return pe
	}
	return &ParseError{Msg: err.Error()}
}
