// Package runtime holds the support objects every synthesized parser routine
// depends on at execution time: the input token stream, the parse context
// with speculative attempt/rollback and deepest-error tracking, the nested
// scope stack, and the built-in primitive matchers.
package runtime

import (
	"fmt"
	"strings"
	"unicode"
)

type TokenKind int

const (
	TokenIdent TokenKind = iota
	TokenInt
	TokenFloat
	TokenString
	TokenPunct
	TokenEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokenIdent:
		return "identifier"
	case TokenInt:
		return "integer"
	case TokenFloat:
		return "float"
	case TokenString:
		return "string"
	case TokenPunct:
		return "punctuation"
	default:
		return "end of input"
	}
}

// Token is one unit of the flat input model. Offset/End are byte positions
// used for the adjacency requirement of multi-token literals and for span
// capture.
type Token struct {
	Kind   TokenKind
	Text   string // unquoted for strings
	Offset int
	End    int
	Line   int
	Column int
}

// Tokenize splits an input string into tokens: identifiers, integer and
// float literals, double-quoted strings, and single-character punctuation.
// Whitespace separates tokens and is discarded.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	line, col := 1, 1
	i := 0
	for i < len(input) {
		c := rune(input[i])
		switch {
		case c == '\n':
			line++
			col = 1
			i++
		case unicode.IsSpace(c):
			col++
			i++
		case c == '_' || unicode.IsLetter(c):
			start := i
			for i < len(input) && (input[i] == '_' || isAlphaNum(rune(input[i]))) {
				i++
			}
			tokens = append(tokens, Token{
				Kind: TokenIdent, Text: input[start:i],
				Offset: start, End: i, Line: line, Column: col,
			})
			col += i - start
		case unicode.IsDigit(c):
			start := i
			kind := TokenInt
			for i < len(input) && unicode.IsDigit(rune(input[i])) {
				i++
			}
			if i+1 < len(input) && input[i] == '.' && unicode.IsDigit(rune(input[i+1])) {
				kind = TokenFloat
				i++
				for i < len(input) && unicode.IsDigit(rune(input[i])) {
					i++
				}
			}
			tokens = append(tokens, Token{
				Kind: kind, Text: input[start:i],
				Offset: start, End: i, Line: line, Column: col,
			})
			col += i - start
		case c == '"':
			start := i
			i++
			var b strings.Builder
			closed := false
			for i < len(input) {
				if input[i] == '\\' && i+1 < len(input) {
					b.WriteByte(unescape(input[i+1]))
					i += 2
					continue
				}
				if input[i] == '"' {
					i++
					closed = true
					break
				}
				if input[i] == '\n' {
					break
				}
				b.WriteByte(input[i])
				i++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated string literal at %d:%d", line, col)
			}
			tokens = append(tokens, Token{
				Kind: TokenString, Text: b.String(),
				Offset: start, End: i, Line: line, Column: col,
			})
			col += i - start
		default:
			tokens = append(tokens, Token{
				Kind: TokenPunct, Text: string(c),
				Offset: i, End: i + 1, Line: line, Column: col,
			})
			i++
			col++
		}
	}
	tokens = append(tokens, Token{
		Kind: TokenEOF, Offset: len(input), End: len(input), Line: line, Column: col,
	})
	return tokens, nil
}

func isAlphaNum(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c)
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}
