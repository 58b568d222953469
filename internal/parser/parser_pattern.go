package parser

import (
	"strconv"

	"parsegen/internal/ast"
)

func (p *Parser) parsePattern() ast.Pattern {
	start := p.peek()
	pattern := p.parseAtom()
	if pattern == nil {
		return nil
	}
	return p.parsePostfix(start, pattern)
}

// parsePostfix handles the cardinality suffixes and '@name' span bindings,
// which stack left to right: "expr?@range" binds the span of the optional.
func (p *Parser) parsePostfix(start Token, inner ast.Pattern) ast.Pattern {
	for {
		switch {
		case p.match(QUESTION):
			inner = &ast.Optional{Sp: p.spanFrom(start), Inner: inner}
		case p.match(STAR):
			inner = &ast.Repeat{Sp: p.spanFrom(start), Inner: inner}
		case p.match(PLUS):
			inner = &ast.Plus{Sp: p.spanFrom(start), Inner: inner}
		case p.match(AT):
			name, ok := p.consumeIdent("expected span binding name after '@'")
			if !ok {
				return nil
			}
			inner = &ast.SpanBinding{Sp: p.spanFrom(start), Inner: inner, Name: name}
		default:
			return inner
		}
	}
}

func (p *Parser) parseAtom() ast.Pattern {
	start := p.peek()

	switch {
	case p.check(STRING):
		tok := p.advance()
		return &ast.Lit{Sp: p.spanFrom(start), Value: tok.Lexeme}

	case p.match(FAT_ARROW):
		return &ast.Cut{Sp: p.spanFrom(start)}

	case p.match(LEFT_PAREN):
		return p.parseGroup(start)

	case p.match(LEFT_BRACKET):
		inner := p.parseSequence(RIGHT_BRACKET)
		p.consume(RIGHT_BRACKET, "expected ']' to close bracketed region")
		return &ast.Delimited{Sp: p.spanFrom(start), Kind: ast.Bracket, Inner: inner}

	case p.match(LEFT_BRACE):
		inner := p.parseSequence(RIGHT_BRACE)
		p.consume(RIGHT_BRACE, "expected '}' to close braced region")
		return &ast.Delimited{Sp: p.spanFrom(start), Kind: ast.Brace, Inner: inner}

	case p.check(IDENTIFIER):
		return p.parseNamedAtom()
	}

	p.errorAtCurrent("expected pattern")
	p.advance()
	return nil
}

// parseNamedAtom parses the atoms that start with an identifier: rule calls,
// optional 'binding:' prefixes, and the paren/peek/not/recover forms. Those
// four names are contextual; a grammar may still define rules with other names
// freely.
func (p *Parser) parseNamedAtom() ast.Pattern {
	start := p.peek()
	first := p.advance()

	var binding *ast.Ident
	name := p.makeIdent(first)

	if p.check(COLON) && p.peekNext().Type == IDENTIFIER {
		p.advance()
		b := p.makeIdent(first)
		binding = &b
		name, _ = p.consumeIdent("expected rule name after binding")
	}

	switch name.Value {
	case "paren":
		if p.match(LEFT_PAREN) {
			inner := p.parseSequence(RIGHT_PAREN)
			p.consume(RIGHT_PAREN, "expected ')' to close paren region")
			return &ast.Delimited{Sp: p.spanFrom(start), Kind: ast.Paren, Inner: inner}
		}
	case "peek":
		if p.match(LEFT_PAREN) {
			inner := p.parseSubPattern(RIGHT_PAREN)
			p.consume(RIGHT_PAREN, "expected ')' to close peek")
			return &ast.Peek{Sp: p.spanFrom(start), Inner: inner}
		}
	case "not":
		if p.match(LEFT_PAREN) {
			inner := p.parseSubPattern(RIGHT_PAREN)
			p.consume(RIGHT_PAREN, "expected ')' to close not")
			return &ast.Not{Sp: p.spanFrom(start), Inner: inner}
		}
	case "recover":
		if p.match(LEFT_PAREN) {
			body := p.parseSubPattern(COMMA)
			p.consume(COMMA, "expected ',' between recover body and sync pattern")
			sync := p.parseSubPattern(RIGHT_PAREN)
			p.consume(RIGHT_PAREN, "expected ')' to close recover")
			return &ast.Recover{Sp: p.spanFrom(start), Binding: binding, Body: body, Sync: sync}
		}
	}

	var args []ast.Arg
	if p.check(LEFT_PAREN) && p.argListFollows(name) {
		p.advance()
		args = p.parseArgs()
		p.consume(RIGHT_PAREN, "expected ')' after rule arguments")
	}

	return &ast.RuleCall{Sp: p.spanFrom(start), Binding: binding, Name: name, Args: args}
}

// parseGroup parses '(' already consumed: ordered alternatives of sequences.
func (p *Parser) parseGroup(start Token) ast.Pattern {
	var alts [][]ast.Pattern
	for {
		alts = append(alts, p.parseSequence(RIGHT_PAREN, PIPE))
		if !p.match(PIPE) {
			break
		}
	}
	p.consume(RIGHT_PAREN, "expected ')' to close group")
	return &ast.Group{Sp: p.spanFrom(start), Alts: alts}
}

// parseSequence parses patterns until one of the stop tokens.
func (p *Parser) parseSequence(stops ...TokenType) []ast.Pattern {
	var patterns []ast.Pattern
	for !p.isAtEnd() && !p.checkAny(stops...) {
		pattern := p.parsePattern()
		if pattern == nil {
			break
		}
		patterns = append(patterns, pattern)
	}
	return patterns
}

// parseSubPattern parses a sequence position that the model stores as a
// single pattern: one pattern stays bare, several wrap in a one-alternative
// group.
func (p *Parser) parseSubPattern(stops ...TokenType) ast.Pattern {
	start := p.peek()
	patterns := p.parseSequence(stops...)
	if len(patterns) == 1 {
		return patterns[0]
	}
	return &ast.Group{Sp: p.spanFrom(start), Alts: [][]ast.Pattern{patterns}}
}

func (p *Parser) checkAny(types ...TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			return true
		}
	}
	return false
}

// argListFollows disambiguates 'call(1, "x")' from a call followed by a
// group atom: an argument list opens directly after the rule name (no
// whitespace) and starts with a literal.
func (p *Parser) argListFollows(name ast.Ident) bool {
	if p.peek().Position.Offset != name.EndPos.Offset {
		return false
	}
	next := p.peekNext()
	switch next.Type {
	case NUMBER, STRING, MINUS:
		return true
	case IDENTIFIER:
		return next.Lexeme == "true" || next.Lexeme == "false"
	}
	return false
}

func (p *Parser) parseArgs() []ast.Arg {
	var args []ast.Arg
	for !p.check(RIGHT_PAREN) && !p.isAtEnd() {
		arg, ok := p.parseArg()
		if !ok {
			break
		}
		args = append(args, arg)
		if !p.match(COMMA) {
			break
		}
	}
	return args
}

func (p *Parser) parseArg() (ast.Arg, bool) {
	start := p.peek()

	switch {
	case p.check(STRING):
		tok := p.advance()
		return ast.Arg{Sp: p.spanFrom(start), Kind: ast.ArgString, Text: tok.Lexeme}, true

	case p.check(NUMBER) || p.check(MINUS):
		negative := p.match(MINUS)
		tok := p.consume(NUMBER, "expected number after '-'")
		if tok.Type == ILLEGAL {
			return ast.Arg{}, false
		}
		n, err := strconv.Atoi(tok.Lexeme)
		if err != nil {
			p.errors = append(p.errors, ParseError{
				Message:  "integer argument expected",
				Position: tok.Position,
			})
			return ast.Arg{}, false
		}
		text := tok.Lexeme
		if negative {
			n = -n
			text = "-" + text
		}
		return ast.Arg{Sp: p.spanFrom(start), Kind: ast.ArgInt, Text: text, Int: n}, true

	case p.check(IDENTIFIER) && (p.peek().Lexeme == "true" || p.peek().Lexeme == "false"):
		tok := p.advance()
		return ast.Arg{Sp: p.spanFrom(start), Kind: ast.ArgBool, Text: tok.Lexeme, Truth: tok.Lexeme == "true"}, true
	}

	p.errorAtCurrent("expected literal argument")
	return ast.Arg{}, false
}
