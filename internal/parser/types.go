package parser

type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers + literals
	IDENTIFIER
	NUMBER
	STRING

	// Keywords
	GRAMMAR
	USE
	PUB
	RULE

	// Operators
	ARROW     // ->
	FAT_ARROW // =>
	EQUAL
	PIPE
	QUESTION
	STAR
	PLUS
	MINUS
	AT
	BANG
	SLASH
	PERCENT
	LESS
	LESS_EQUAL
	GREATER
	GREATER_EQUAL
	EQUAL_EQUAL
	BANG_EQUAL

	// Separators
	COMMA
	COLON
	SEMICOLON

	// Brackets
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	LEFT_BRACKET
	RIGHT_BRACKET
)

type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based absolute index in input
}
