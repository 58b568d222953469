package errors

// Error code ranges:
// E0001-E0099: grammar validation errors
// E0100-E0199: surface syntax errors
// E0200-E0299: synthesis errors
// W0001-W0099: warnings

const (
	// E0001: a rule name defined twice
	ErrorDuplicateRule = "E0001"

	// E0002: a call to a rule that does not exist
	ErrorUndefinedRule = "E0002"

	// E0003: wrong number of arguments in a rule call
	ErrorArgumentCount = "E0003"

	// E0004: indirect left recursion cycle
	ErrorLeftRecursion = "E0004"

	// E0005: identical or shadowing alternatives
	ErrorShadowing = "E0005"

	// E0006: a literal that cannot be tokenized
	ErrorBadLiteral = "E0006"

	// E0100: surface parse errors
	ErrorSyntax = "E0100"

	// E0101: scanner errors
	ErrorLexical = "E0101"

	// E0200: left-recursive rule with no base variant
	ErrorNoBaseVariant = "E0200"

	// E0201: recover sync pattern with no derivable start token
	ErrorBadRecoverSync = "E0201"

	// W0001: rule defined but never referenced
	WarnUnusedRule = "W0001"
)
