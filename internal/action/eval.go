package action

import (
	"fmt"

	"parsegen/internal/runtime"
)

// Eval computes the value of an action expression over the variant's
// bindings.
func Eval(e *Expr, env map[string]any) (any, error) {
	left, err := evalAdditive(e.Left, env)
	if err != nil {
		return nil, err
	}
	if e.Op == "" {
		return left, nil
	}
	right, err := evalAdditive(e.Right, env)
	if err != nil {
		return nil, err
	}
	return runtime.Compare(e.Op, left, right)
}

func evalAdditive(a *Additive, env map[string]any) (any, error) {
	acc, err := evalMultiplicative(a.Left, env)
	if err != nil {
		return nil, err
	}
	for _, op := range a.Ops {
		right, err := evalMultiplicative(op.Right, env)
		if err != nil {
			return nil, err
		}
		acc, err = runtime.BinOp(op.Op, acc, right)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func evalMultiplicative(m *Multiplicative, env map[string]any) (any, error) {
	acc, err := evalUnary(m.Left, env)
	if err != nil {
		return nil, err
	}
	for _, op := range m.Ops {
		right, err := evalUnary(op.Right, env)
		if err != nil {
			return nil, err
		}
		acc, err = runtime.BinOp(op.Op, acc, right)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func evalUnary(u *Unary, env map[string]any) (any, error) {
	value, err := evalPrimary(u.Value, env)
	if err != nil {
		return nil, err
	}
	if u.Op == nil {
		return value, nil
	}
	switch *u.Op {
	case "-":
		return runtime.Negate(value)
	case "!":
		return !runtime.Truthy(value), nil
	}
	return nil, fmt.Errorf("unknown unary operator '%s'", *u.Op)
}

func evalPrimary(p *Primary, env map[string]any) (any, error) {
	switch {
	case p.Float != nil:
		return *p.Float, nil
	case p.Int != nil:
		return *p.Int, nil
	case p.Str != nil:
		return *p.Str, nil
	case p.Bool != nil:
		return *p.Bool == "true", nil
	case p.Nil:
		return nil, nil
	case p.List != nil:
		items := make([]any, 0, len(p.List.Items))
		for _, item := range p.List.Items {
			v, err := Eval(item, env)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case p.Ident != nil:
		v, ok := env[*p.Ident]
		if !ok {
			return nil, fmt.Errorf("unbound name '%s' in action", *p.Ident)
		}
		return v, nil
	case p.Paren != nil:
		return Eval(p.Paren, env)
	}
	return nil, fmt.Errorf("empty action expression")
}
