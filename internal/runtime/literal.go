package runtime

import "strings"

// MatchLiteral matches a literal's token pieces in order. Consecutive
// punctuation pieces must be adjacent in the raw input, so "->" will not
// match "- >", while word pieces like "else if" tolerate whitespace.
func MatchLiteral(s *Stream, pieces ...string) (string, error) {
	for i, piece := range pieces {
		if i > 0 && punctPiece(pieces[i-1]) && punctPiece(piece) && s.Peek().Offset != s.PrevEnd() {
			return "", NewError(s.Peek(), "expected '%s'", strings.Join(pieces, ""))
		}
		if _, err := s.Expect(piece); err != nil {
			return "", err
		}
	}
	return strings.Join(pieces, " "), nil
}

// MatchParam matches a rule parameter's value as if it were a literal
// written in the rule body. Only string values are matchable.
func MatchParam(s *Stream, name string, value any) (any, error) {
	text, ok := value.(string)
	if !ok {
		return nil, NewError(s.Peek(), "parameter '%s' cannot be matched against input", name)
	}
	pieces := splitPieces(text)
	if len(pieces) == 0 {
		return nil, NewError(s.Peek(), "parameter '%s' has no matchable tokens", name)
	}
	return MatchLiteral(s, pieces...)
}

func splitPieces(text string) []string {
	var pieces []string
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			start := i
			for i < len(text) && (text[i] == '_' ||
				text[i] >= 'a' && text[i] <= 'z' ||
				text[i] >= 'A' && text[i] <= 'Z' ||
				text[i] >= '0' && text[i] <= '9') {
				i++
			}
			pieces = append(pieces, text[start:i])
		default:
			pieces = append(pieces, string(c))
			i++
		}
	}
	return pieces
}

func punctPiece(piece string) bool {
	if len(piece) != 1 {
		return false
	}
	c := piece[0]
	return !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
}
