package runtime

import "strconv"

// BuiltIn describes one primitive matcher of this backend's catalog. Every
// built-in is zero-argument; the core only checks arity and forwards the
// name for dispatch.
type BuiltIn struct {
	Name   string
	Result string
	Match  func(*Stream) (any, error)
}

// Catalog returns the ordered built-in set of the token-stream backend.
func Catalog() []BuiltIn {
	return []BuiltIn{
		{Name: "ident", Result: "string", Match: matchIdent},
		{Name: "integer", Result: "int", Match: matchInteger},
		{Name: "float", Result: "float64", Match: matchFloat},
		{Name: "string", Result: "string", Match: matchString},
		{Name: "lit_bool", Result: "bool", Match: matchBool},
		{Name: "any", Result: "string", Match: matchAny},
		{Name: "eof", Result: "", Match: matchEOF},
	}
}

// CatalogNames returns the built-in name set in the shape the validator
// consumes.
func CatalogNames() map[string]bool {
	names := make(map[string]bool)
	for _, b := range Catalog() {
		names[b.Name] = true
	}
	return names
}

// LookupBuiltIn resolves a built-in by name.
func LookupBuiltIn(name string) (BuiltIn, bool) {
	for _, b := range Catalog() {
		if b.Name == name {
			return b, true
		}
	}
	return BuiltIn{}, false
}

// MatchBuiltIn resolves and runs a built-in in one call. Generated parsers
// dispatch through this instead of carrying the catalog around.
func MatchBuiltIn(name string, s *Stream) (any, error) {
	b, ok := LookupBuiltIn(name)
	if !ok {
		return nil, NewError(s.Peek(), "unknown built-in '%s'", name)
	}
	return b.Match(s)
}

func matchIdent(s *Stream) (any, error) {
	tok := s.Peek()
	if tok.Kind != TokenIdent {
		return nil, NewError(tok, "expected identifier")
	}
	if s.IsKeyword(tok.Text) {
		return nil, NewError(tok, "expected identifier, found keyword '%s'", tok.Text)
	}
	s.Next()
	return tok.Text, nil
}

func matchInteger(s *Stream) (any, error) {
	tok := s.Peek()
	if tok.Kind != TokenInt {
		return nil, NewError(tok, "expected integer")
	}
	n, err := strconv.Atoi(tok.Text)
	if err != nil {
		return nil, NewError(tok, "invalid integer literal '%s'", tok.Text)
	}
	s.Next()
	return n, nil
}

func matchFloat(s *Stream) (any, error) {
	tok := s.Peek()
	if tok.Kind != TokenFloat && tok.Kind != TokenInt {
		return nil, NewError(tok, "expected float")
	}
	f, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return nil, NewError(tok, "invalid float literal '%s'", tok.Text)
	}
	s.Next()
	return f, nil
}

func matchString(s *Stream) (any, error) {
	tok := s.Peek()
	if tok.Kind != TokenString {
		return nil, NewError(tok, "expected string literal")
	}
	s.Next()
	return tok.Text, nil
}

func matchBool(s *Stream) (any, error) {
	tok := s.Peek()
	if tok.Kind == TokenIdent && (tok.Text == "true" || tok.Text == "false") {
		s.Next()
		return tok.Text == "true", nil
	}
	return nil, NewError(tok, "expected boolean literal")
}

func matchAny(s *Stream) (any, error) {
	tok := s.Peek()
	if tok.Kind == TokenEOF {
		return nil, NewError(tok, "unexpected end of input")
	}
	s.Next()
	return tok.Text, nil
}

func matchEOF(s *Stream) (any, error) {
	tok := s.Peek()
	if tok.Kind != TokenEOF {
		return nil, NewError(tok, "expected end of input")
	}
	return nil, nil
}
