package parser

import (
	"strings"

	"parsegen/internal/ast"
)

type Parser struct {
	filename string
	source   string
	tokens   []Token
	current  int
	errors   []ParseError
}

type ParseError struct {
	Message  string
	Position Position
}

func NewParser(filename, source string, tokens []Token) *Parser {
	return &Parser{
		filename: filename,
		source:   source,
		tokens:   tokens,
	}
}

func (p *Parser) ParseGrammar() *ast.Grammar {
	start := p.consume(GRAMMAR, "expected 'grammar' keyword")

	name, ok := p.consumeIdent("expected grammar name")
	if !ok {
		return nil
	}

	var inherits *ast.Ident
	if p.match(COLON) {
		parent, ok := p.consumeIdent("expected parent grammar name after ':'")
		if !ok {
			return nil
		}
		inherits = &parent
	}

	p.consume(LEFT_BRACE, "expected '{' to open grammar body")

	grammar := &ast.Grammar{
		Pos:      p.makePos(start),
		Name:     name,
		Inherits: inherits,
	}

	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		switch {
		case p.check(USE):
			if use := p.parseUse(); use != nil {
				grammar.Uses = append(grammar.Uses, *use)
			}
		case p.check(PUB) || p.check(RULE):
			if rule := p.parseRule(); rule != nil {
				grammar.Rules = append(grammar.Rules, rule)
			}
		default:
			p.errorAtCurrent("expected 'use' or rule definition")
			p.synchronize()
		}
	}

	end := p.consume(RIGHT_BRACE, "expected '}' to close grammar body")
	grammar.EndPos = p.makeEndPos(end)
	return grammar
}

// parseUse captures the raw host import text between 'use' and ';'. The text
// is opaque here; the code backend reproduces it verbatim.
func (p *Parser) parseUse() *ast.Use {
	start := p.consume(USE, "expected 'use' keyword")

	textStart := p.peek().Position.Offset
	for !p.check(SEMICOLON) && !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		p.advance()
	}
	semi := p.consume(SEMICOLON, "expected ';' after use declaration")
	if semi.Type == ILLEGAL {
		return nil
	}

	return &ast.Use{
		Pos:  p.makePos(start),
		Text: strings.TrimSpace(p.source[textStart:semi.Position.Offset]),
	}
}

func (p *Parser) parseRule() *ast.Rule {
	public := p.match(PUB)
	start := p.consume(RULE, "expected 'rule' keyword")
	if public {
		start = p.tokens[p.current-2]
	}

	name, ok := p.consumeIdent("expected rule name")
	if !ok {
		p.synchronize()
		return nil
	}

	params := p.parseRuleParams()
	p.consume(ARROW, "expected '->' before rule result type")
	result := p.parseTypeRef()
	p.consume(EQUAL, "expected '=' before rule body")

	var variants []*ast.Variant
	for {
		variant := p.parseVariant()
		if variant == nil {
			p.synchronize()
			return nil
		}
		variants = append(variants, variant)
		if !p.match(PIPE) {
			break
		}
	}
	p.consume(SEMICOLON, "expected ';' after rule body")

	return &ast.Rule{
		Pos:      p.makePos(start),
		Public:   public,
		Name:     name,
		Params:   params,
		Result:   result,
		Variants: variants,
	}
}

func (p *Parser) parseRuleParams() []ast.Param {
	if !p.match(LEFT_PAREN) {
		return nil
	}

	var params []ast.Param
	for !p.check(RIGHT_PAREN) && !p.isAtEnd() {
		name, ok := p.consumeIdent("expected parameter name")
		if !ok {
			break
		}
		p.consume(COLON, "expected ':' after parameter name")
		paramType := p.parseTypeRef()
		params = append(params, ast.Param{Name: name, Type: paramType})

		if !p.match(COMMA) {
			break
		}
	}
	p.consume(RIGHT_PAREN, "expected ')' after parameter list")
	return params
}

func (p *Parser) parseTypeRef() ast.TypeRef {
	tok := p.consume(IDENTIFIER, "expected type name")
	if tok.Type == ILLEGAL {
		return ast.TypeRef{Pos: p.makePos(tok), Text: "any"}
	}
	return ast.TypeRef{Pos: p.makePos(tok), Text: tok.Lexeme}
}

func (p *Parser) parseVariant() *ast.Variant {
	var patterns []ast.Pattern
	for !p.check(ARROW) && !p.check(PIPE) && !p.check(SEMICOLON) && !p.isAtEnd() {
		pattern := p.parsePattern()
		if pattern == nil {
			return nil
		}
		patterns = append(patterns, pattern)
	}

	p.consume(ARROW, "expected '->' before variant action")
	action, ok := p.parseAction()
	if !ok {
		return nil
	}

	return &ast.Variant{Patterns: patterns, Action: action}
}

// parseAction captures the balanced-brace raw text of a variant's result
// expression.
func (p *Parser) parseAction() (ast.Action, bool) {
	open := p.consume(LEFT_BRACE, "expected '{' to open action")
	if open.Type == ILLEGAL {
		return ast.Action{}, false
	}

	depth := 1
	for depth > 0 && !p.isAtEnd() {
		switch p.peek().Type {
		case LEFT_BRACE:
			depth++
		case RIGHT_BRACE:
			depth--
		}
		if depth > 0 {
			p.advance()
		}
	}
	if p.isAtEnd() {
		p.errorAtCurrent("expected '}' to close action")
		return ast.Action{}, false
	}
	closeTok := p.advance()

	return ast.Action{
		Pos:  p.makePos(open),
		Text: strings.TrimSpace(p.source[open.Position.Offset+1 : closeTok.Position.Offset]),
	}, true
}
