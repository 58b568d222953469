package runtime

import (
	"fmt"
	"strings"
)

// BinOp applies an arithmetic or string operator to dynamically typed
// operands. Generated parsers and the interpreter share this so action
// results agree between backends.
func BinOp(op string, left, right any) (any, error) {
	if li, lok := left.(int); lok {
		if ri, rok := right.(int); rok {
			return intOp(op, li, ri)
		}
		if rf, rok := right.(float64); rok {
			return floatOp(op, float64(li), rf)
		}
	}
	if lf, lok := left.(float64); lok {
		switch r := right.(type) {
		case float64:
			return floatOp(op, lf, r)
		case int:
			return floatOp(op, lf, float64(r))
		}
	}
	if ls, lok := left.(string); lok {
		if rs, rok := right.(string); rok && op == "+" {
			return ls + rs, nil
		}
	}
	return nil, fmt.Errorf("invalid operands for '%s': %T and %T", op, left, right)
}

func intOp(op string, l, r int) (any, error) {
	switch op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return l % r, nil
	}
	return nil, fmt.Errorf("unknown operator '%s'", op)
}

func floatOp(op string, l, r float64) (any, error) {
	switch op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return l / r, nil
	}
	return nil, fmt.Errorf("unknown operator '%s'", op)
}

// Compare evaluates a comparison operator over dynamically typed operands.
func Compare(op string, left, right any) (any, error) {
	switch op {
	case "==":
		return valueEqual(left, right), nil
	case "!=":
		return !valueEqual(left, right), nil
	}
	ln, lok := toFloat(left)
	rn, rok := toFloat(right)
	if lok && rok {
		switch op {
		case "<":
			return ln < rn, nil
		case "<=":
			return ln <= rn, nil
		case ">":
			return ln > rn, nil
		case ">=":
			return ln >= rn, nil
		}
	}
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		c := strings.Compare(ls, rs)
		switch op {
		case "<":
			return c < 0, nil
		case "<=":
			return c <= 0, nil
		case ">":
			return c > 0, nil
		case ">=":
			return c >= 0, nil
		}
	}
	return nil, fmt.Errorf("invalid operands for '%s': %T and %T", op, left, right)
}

func valueEqual(l, r any) bool {
	if ln, ok := toFloat(l); ok {
		if rn, ok := toFloat(r); ok {
			return ln == rn
		}
	}
	return l == r
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Negate applies unary minus.
func Negate(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return -n, nil
	case float64:
		return -n, nil
	}
	return nil, fmt.Errorf("invalid operand for unary '-': %T", v)
}

// MustBinOp is BinOp for generated code, where operand types are only known
// at parse time. Failures panic; generated wrappers convert the panic into a
// parse error.
func MustBinOp(op string, left, right any) any {
	v, err := BinOp(op, left, right)
	if err != nil {
		panic(err)
	}
	return v
}

// MustCompare is Compare for generated code.
func MustCompare(op string, left, right any) any {
	v, err := Compare(op, left, right)
	if err != nil {
		panic(err)
	}
	return v
}

// MustNegate is Negate for generated code.
func MustNegate(v any) any {
	n, err := Negate(v)
	if err != nil {
		panic(err)
	}
	return n
}

// RecoverError converts a panic raised by a Must* helper into the deferred
// caller's returned error. Generated entry points install it with defer.
func RecoverError(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = e
			return
		}
		*err = fmt.Errorf("%v", r)
	}
}

// TextSpan is the byte range of input consumed by a span binding.
type TextSpan struct {
	Start int
	End   int
}

// Truthy reports whether a value counts as true in a condition.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	}
	return true
}
