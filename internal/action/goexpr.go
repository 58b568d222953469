package action

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver maps a binding name to the Go expression holding its value in
// generated code.
type Resolver func(name string) string

// GoExpr renders the action as a Go expression of type any. Operand types
// are unknown until parse time, so arithmetic goes through the runtime
// helpers.
func GoExpr(e *Expr, resolve Resolver) string {
	left := goAdditive(e.Left, resolve)
	if e.Op == "" {
		return left
	}
	right := goAdditive(e.Right, resolve)
	return fmt.Sprintf("runtime.MustCompare(%q, %s, %s)", e.Op, left, right)
}

func goAdditive(a *Additive, resolve Resolver) string {
	acc := goMultiplicative(a.Left, resolve)
	for _, op := range a.Ops {
		acc = fmt.Sprintf("runtime.MustBinOp(%q, %s, %s)", op.Op, acc, goMultiplicative(op.Right, resolve))
	}
	return acc
}

func goMultiplicative(m *Multiplicative, resolve Resolver) string {
	acc := goUnary(m.Left, resolve)
	for _, op := range m.Ops {
		acc = fmt.Sprintf("runtime.MustBinOp(%q, %s, %s)", op.Op, acc, goUnary(op.Right, resolve))
	}
	return acc
}

func goUnary(u *Unary, resolve Resolver) string {
	value := goPrimary(u.Value, resolve)
	if u.Op == nil {
		return value
	}
	if *u.Op == "-" {
		return fmt.Sprintf("runtime.MustNegate(%s)", value)
	}
	return fmt.Sprintf("!runtime.Truthy(%s)", value)
}

func goPrimary(p *Primary, resolve Resolver) string {
	switch {
	case p.Float != nil:
		// Keep whole floats float-typed in the generated source.
		return fmt.Sprintf("float64(%s)", strconv.FormatFloat(*p.Float, 'g', -1, 64))
	case p.Int != nil:
		return strconv.Itoa(*p.Int)
	case p.Str != nil:
		return strconv.Quote(*p.Str)
	case p.Bool != nil:
		return *p.Bool
	case p.Nil:
		return "nil"
	case p.List != nil:
		items := make([]string, 0, len(p.List.Items))
		for _, item := range p.List.Items {
			items = append(items, GoExpr(item, resolve))
		}
		return fmt.Sprintf("[]any{%s}", strings.Join(items, ", "))
	case p.Ident != nil:
		return resolve(*p.Ident)
	case p.Paren != nil:
		return "(" + GoExpr(p.Paren, resolve) + ")"
	}
	return "nil"
}
