package runtime

// Stream is the single input cursor for one parse invocation. Backtracking
// is an explicit position snapshot/restore; the token slice itself is never
// mutated.
type Stream struct {
	tokens   []Token
	pos      int
	keywords map[string]bool
}

// NewStream wraps a token slice produced by Tokenize. The slice must end
// with a TokenEOF entry.
func NewStream(tokens []Token) *Stream {
	return &Stream{tokens: tokens}
}

// SetKeywords marks the grammar's reserved words. The ident primitive
// refuses them, so a word the grammar matches literally terminates an ident
// repetition instead of being swallowed by it.
func (s *Stream) SetKeywords(words []string) {
	s.keywords = make(map[string]bool, len(words))
	for _, w := range words {
		s.keywords[w] = true
	}
}

// IsKeyword reports whether text is one of the grammar's reserved words.
func (s *Stream) IsKeyword(text string) bool {
	return s.keywords[text]
}

func (s *Stream) Pos() int       { return s.pos }
func (s *Stream) SetPos(pos int) { s.pos = pos }

// Peek returns the current token without consuming it.
func (s *Stream) Peek() Token {
	return s.tokens[s.pos]
}

// Next consumes and returns the current token. At end of input it keeps
// returning the EOF token.
func (s *Stream) Next() Token {
	tok := s.tokens[s.pos]
	if tok.Kind != TokenEOF {
		s.pos++
	}
	return tok
}

func (s *Stream) EOF() bool {
	return s.tokens[s.pos].Kind == TokenEOF
}

// PeekText reports whether the current token's text matches exactly.
func (s *Stream) PeekText(text string) bool {
	tok := s.tokens[s.pos]
	return tok.Kind != TokenEOF && tok.Text == text
}

// Expect consumes the current token when its text matches, or fails with a
// positioned error.
func (s *Stream) Expect(text string) (Token, error) {
	tok := s.tokens[s.pos]
	if tok.Kind == TokenEOF || tok.Text != text {
		return Token{}, NewError(tok, "expected '%s'", text)
	}
	s.pos++
	return tok, nil
}

// Offset returns the byte offset of the current token, which is also the
// start position used by the error-depth heuristic.
func (s *Stream) Offset() int {
	return s.tokens[s.pos].Offset
}

// PrevEnd returns the end offset of the most recently consumed token, or 0
// when nothing has been consumed. Span bindings and literal adjacency
// checks measure from here.
func (s *Stream) PrevEnd() int {
	if s.pos == 0 {
		return 0
	}
	return s.tokens[s.pos-1].End
}
