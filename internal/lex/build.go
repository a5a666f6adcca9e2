package lex

import "fmt"

// State names. The lexer is single-state for almost everything; "yul" is
// entered on `assembly` and exited on the matching `}`, since Yul has a
// slightly different identifier/number rule set (e.g. `verbatim1I_o`-style
// identifiers and `3:u256`-suffixed numbers) from the surrounding language.
const (
	StateDefault = "default"
	StateYul     = "yul"
)

// BuildLexer returns a fully-populated Lexer for this language: every
// keyword, punctuation/operator, literal shape, and comment pattern
// registered in priority order (longest-match still wins via the
// GNU-lex-style disambiguation in lazyLex.selectMatch; order only matters
// for same-length ties, which is why e.g. "<<=" is added before "<<"
// before "<").
func BuildLexer() Lexer {
	lx := NewLexer()
	lx.SetStartingState(StateDefault)

	addCommon(lx, StateDefault)
	addCommon(lx, StateYul)

	// keywords: longest textual match already wins over plain identifiers
	// because the keyword pattern and the identifier pattern match the
	// same text with equal length, and keywords are registered first.
	for _, kw := range Keywords {
		cl, _ := KeywordClass(kw)
		lx.AddClass(cl, StateDefault)
		must(lx.AddPattern(`(?i)`+kw+`\b`, LexAs(cl.ID()), StateDefault))
	}

	for _, kw := range YulKeywords {
		cl, _ := KeywordClass(kw)
		lx.AddClass(cl, StateYul)
		must(lx.AddPattern(`(?i)`+kw+`\b`, LexAs(cl.ID()), StateYul))
	}

	lx.AddClass(TokenIdentifier, StateDefault)
	lx.AddClass(TokenIdentifier, StateYul)
	must(lx.AddPattern(`[a-zA-Z_$][a-zA-Z0-9_$]*`, LexAs(TokenIdentifier.ID()), StateDefault))
	must(lx.AddPattern(`[a-zA-Z_$][a-zA-Z0-9_$]*`, LexAs(TokenIdentifier.ID()), StateYul))

	must(lx.AddPattern(`assembly\b`, LexAndSwapState(mustKeyword("assembly").ID(), StateYul), StateDefault))
	must(lx.AddPattern(`\{`, LexAndSwapState(PunctuationClass("lbrace").ID(), StateYul), StateYul))
	must(lx.AddPattern(`\}`, LexAndSwapState(PunctuationClass("rbrace").ID(), StateDefault), StateYul))

	addPunctuation(lx, StateDefault)
	addPunctuation(lx, StateYul)

	addLiterals(lx, StateDefault)
	addLiterals(lx, StateYul)

	return lx
}

func mustKeyword(s string) TokenClass {
	c, ok := KeywordClass(s)
	if !ok {
		panic("not a keyword: " + s)
	}
	return c
}

func addCommon(lx Lexer, state string) {
	must(lx.AddPattern(`[ \t\r\n]+`, Discard(), state))
	lx.AddClass(TokenError, state)
	must(lx.AddPattern(`///[^\n]*`, DocComment(), state))
	must(lx.AddPattern(`/\*\*(?s:.*?)\*/`, DocComment(), state))
	must(lx.AddPattern(`//[^\n]*`, Comment(), state))
	must(lx.AddPattern(`/\*(?s:.*?)\*/`, Comment(), state))
}

func addPunctuation(lx Lexer, state string) {
	// registration order matters for same-length ties: multi-char operators
	// that share a prefix with a shorter one are declared longest-first is
	// NOT required here (selectMatch already prefers the longer match
	// regardless of order), but operators of EQUAL length that could both
	// match the same text cannot occur in this table, so order is purely
	// cosmetic below.
	for _, p := range punctuation {
		lx.AddClass(PunctuationClass(p.id), state)
	}
	for _, p := range punctuation {
		must(lx.AddPattern(regexpQuoteOp(p.text), LexAs(PunctuationClass(p.id).ID()), state))
	}
}

func regexpQuoteOp(s string) string {
	out := ""
	for _, r := range s {
		switch r {
		case '+', '*', '.', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			out += `\` + string(r)
		default:
			out += string(r)
		}
	}
	return out
}

func addLiterals(lx Lexer, state string) {
	lx.AddClass(TokenNumberLiteral, state)
	lx.AddClass(TokenHexNumber, state)
	lx.AddClass(TokenStringLiteral, state)
	lx.AddClass(TokenUnicodeLiteral, state)
	lx.AddClass(TokenHexLiteral, state)

	// numeric literal: decimal digits (with optional _ separators and
	// fractional/exponent parts) or 0x hex digits, each with an optional
	// Yul-style `:typeN` suffix.
	must(lx.AddPattern(`0[xX][0-9a-fA-F_]+(:[a-zA-Z][a-zA-Z0-9]*)?`, LexAs(TokenHexNumber.ID()), state))
	must(lx.AddPattern(`[0-9][0-9_]*(\.[0-9][0-9_]*)?([eE][+-]?[0-9]+)?(:[a-zA-Z][a-zA-Z0-9]*)?`, LexAs(TokenNumberLiteral.ID()), state))

	// string literals: double- or single-quoted, with escape sequences
	// validated (not decoded) by the stream's literal post-processing.
	must(lx.AddPattern(`"(?:[^"\\\n]|\\.)*"`, LexAs(TokenStringLiteral.ID()), state))
	must(lx.AddPattern(`'(?:[^'\\\n]|\\.)*'`, LexAs(TokenStringLiteral.ID()), state))

	must(lx.AddPattern(`unicode"(?:[^"\\\n]|\\.)*"`, LexAs(TokenUnicodeLiteral.ID()), state))
	must(lx.AddPattern(`hex"[0-9a-fA-F_]*"`, LexAs(TokenHexLiteral.ID()), state))
	must(lx.AddPattern(`hex'[0-9a-fA-F_]*'`, LexAs(TokenHexLiteral.ID()), state))
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("internal lexer construction error: %v", err))
	}
}
