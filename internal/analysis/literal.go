package analysis

import (
	"fmt"
	"strings"
	"unicode"
)

// BadLiteral reports a literal whose text cannot be mapped to input tokens.
type BadLiteral struct {
	Reason string
}

func (e *BadLiteral) Error() string { return e.Reason }

// LiteralPieces tokenizes a literal's text into its constituent input
// tokens: identifier words and single punctuation characters. Multi-piece
// literals must match adjacent tokens in the input.
//
// Direct bracket tokens, booleans, and numerics are rejected the way the
// delimiter and primitive-matcher constructs expect:
//   - "("/")"/"["/"]"/"{"/"}"  -> use paren(...), [...] or {...}
//   - "true"/"false"           -> use the lit_bool primitive
//   - leading digit            -> use the integer primitive
func LiteralPieces(value string) ([]string, error) {
	switch value {
	case "":
		return nil, &BadLiteral{Reason: "Empty string literal is not supported."}
	case "(", ")", "[", "]", "{", "}":
		return nil, &BadLiteral{Reason: fmt.Sprintf(
			"Invalid direct token literal: '%s'. Use paren(...), [...] or {...} instead.", value)}
	case "true", "false":
		return nil, &BadLiteral{Reason: fmt.Sprintf(
			"Boolean literal '%s' cannot be used as a token. Use `lit_bool` parser instead.", value)}
	}
	if r := firstRune(value); unicode.IsDigit(r) {
		return nil, &BadLiteral{Reason: fmt.Sprintf(
			"Numeric literal '%s' cannot be used as a token. Use `integer` parser instead.", value)}
	}

	var pieces []string
	rest := value
	for rest != "" {
		r := firstRune(rest)
		switch {
		case unicode.IsSpace(r):
			rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		case r == '_' || unicode.IsLetter(r):
			word := takeWhile(rest, func(c rune) bool {
				return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
			})
			pieces = append(pieces, word)
			rest = rest[len(word):]
		case strings.ContainsRune("()[]{}", r):
			return nil, &BadLiteral{Reason: fmt.Sprintf(
				"Cannot map punctuation '%c' to a token.", r)}
		case unicode.IsDigit(r):
			return nil, &BadLiteral{Reason: fmt.Sprintf(
				"Numeric literal '%s' cannot be used as a token. Use `integer` parser instead.", value)}
		default:
			pieces = append(pieces, string(r))
			rest = rest[len(string(r)):]
		}
	}
	if len(pieces) == 0 {
		return nil, &BadLiteral{Reason: "Empty string literal is not supported."}
	}
	return pieces, nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func takeWhile(s string, pred func(rune) bool) string {
	for i, r := range s {
		if !pred(r) {
			return s[:i]
		}
	}
	return s
}
