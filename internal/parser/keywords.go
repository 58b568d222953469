package parser

var KEYWORDS = map[string]TokenType{
	"grammar": GRAMMAR,
	"use":     USE,
	"pub":     PUB,
	"rule":    RULE,
}
