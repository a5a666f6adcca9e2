package lex

import "strings"

// TokenClass identifies the lexical category of a Token: a keyword, an
// operator, a literal shape, or a structural marker such as end-of-text.
// The ID must uniquely identify the class among every terminal the grammar
// uses; Human is only ever used in diagnostics.
type TokenClass interface {
	ID() string
	Human() string
	Equal(o any) bool
}

type tokenClass struct {
	id    string
	human string
}

func (c tokenClass) ID() string { return c.id }
func (c tokenClass) Human() string {
	if c.human != "" {
		return c.human
	}
	return c.id
}

func (c tokenClass) Equal(o any) bool {
	other, ok := o.(TokenClass)
	if !ok {
		otherPtr, ok := o.(*TokenClass)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	return other.ID() == c.id
}

// NewTokenClass defines a new token class. id is lower-cased so that classes
// defined with varying case compare equal, matching the convention every
// other token class constant in this package follows.
func NewTokenClass(id, human string) TokenClass {
	return tokenClass{id: strings.ToLower(id), human: human}
}

// Structural classes present regardless of grammar: end of input and the
// lexer's own internal error-reporting pseudo-class.
var (
	TokenEndOfText = NewTokenClass("$", "end of input")
	TokenError     = NewTokenClass("lex-error", "lexical error")
)

// Literal classes. The lexeme carries the literal exactly as written
// (including, for NumberLiteral, any Yul-style `:type` suffix); decoding
// happens in the resolver, not the lexer, except for escape-sequence and
// hex-parity validation which the lexer performs eagerly per spec so that
// malformed escapes are reported at the point they occur.
var (
	TokenIdentifier     = NewTokenClass("identifier", "identifier")
	TokenNumberLiteral  = NewTokenClass("number-literal", "number literal")
	TokenStringLiteral  = NewTokenClass("string-literal", "string literal")
	TokenUnicodeLiteral = NewTokenClass("unicode-string-literal", "unicode string literal")
	TokenHexLiteral     = NewTokenClass("hex-string-literal", "hex string literal")
	TokenHexNumber      = NewTokenClass("hex-number-literal", "hexadecimal number literal")
	TokenAddressLiteral = NewTokenClass("address-literal", "address literal")
)

// Keywords. Declared as a table so the lexer construction code
// (BuildLexer) and the parser's keyword-vs-identifier disambiguation can
// both walk the same list instead of maintaining two.
var Keywords = []string{
	"pragma", "import", "as", "from", "using", "for",
	"contract", "interface", "library", "abstract", "is",
	"function", "modifier", "event", "error", "struct", "enum", "mapping",
	"constructor", "receive", "fallback",
	"public", "private", "internal", "external",
	"pure", "view", "payable", "nonpayable", "constant", "immutable", "override", "virtual", "anonymous", "indexed",
	"memory", "storage", "calldata",
	"if", "else", "while", "do", "break", "continue", "return", "returns", "throw", "revert", "emit",
	"try", "catch", "new", "delete", "unchecked", "assembly", "let",
	"true", "false",
	"address", "bool", "string", "bytes", "var",
}

// YulKeywords are reserved only inside an assembly block; the Yul resolver
// (internal/yul) additionally forbids redefining these and any `verbatim*`
// builtin, per spec.md §4.8.
var YulKeywords = []string{
	"let", "function", "if", "switch", "case", "default",
	"for", "break", "continue", "leave",
}

// tokenClassFor returns the keyword token class for a lower-cased keyword
// lexeme, building it on demand. Keyword classes are interned into
// keywordClasses so repeated calls return the same TokenClass value.
var keywordClasses = func() map[string]TokenClass {
	m := make(map[string]TokenClass, len(Keywords))
	for _, kw := range Keywords {
		m[kw] = NewTokenClass("kw-"+kw, kw)
	}
	return m
}()

// KeywordClass returns the TokenClass for a keyword, or (nil, false) if
// lexeme (already lower-cased) is not a reserved word.
func KeywordClass(lexeme string) (TokenClass, bool) {
	c, ok := keywordClasses[strings.ToLower(lexeme)]
	return c, ok
}

// Punctuation and operators. Grouped by arity/precedence only for
// readability; the lexer cares only about the literal text.
var punctuation = []struct{ id, text string }{
	{"lbrace", "{"}, {"rbrace", "}"},
	{"lparen", "("}, {"rparen", ")"},
	{"lbracket", "["}, {"rbracket", "]"},
	{"semi", ";"}, {"comma", ","}, {"dot", "."}, {"colon", ":"}, {"arrow", "=>"}, {"produces", "->"},
	{"question", "?"},
	{"pow", "**"},
	{"inc", "++"}, {"dec", "--"},
	{"shl", "<<"}, {"shr", ">>"},
	{"le", "<="}, {"ge", ">="}, {"eq", "=="}, {"ne", "!="},
	{"and", "&&"}, {"or", "||"},
	{"add-assign", "+="}, {"sub-assign", "-="}, {"mul-assign", "*="}, {"div-assign", "/="},
	{"mod-assign", "%="}, {"and-assign", "&="}, {"or-assign", "|="}, {"xor-assign", "^="},
	{"shl-assign", "<<="}, {"shr-assign", ">>="},
	{"lt", "<"}, {"gt", ">"},
	{"plus", "+"}, {"minus", "-"}, {"star", "*"}, {"slash", "/"}, {"percent", "%"},
	{"amp", "&"}, {"pipe", "|"}, {"caret", "^"}, {"tilde", "~"}, {"bang", "!"},
	{"assign", "="},
}

var punctuationClasses = func() map[string]TokenClass {
	m := make(map[string]TokenClass, len(punctuation))
	for _, p := range punctuation {
		m[p.id] = NewTokenClass(p.id, p.text)
	}
	return m
}()

// PunctuationClass returns the TokenClass registered under the given
// grammar-internal id (see the punctuation table above), e.g. "lbrace".
func PunctuationClass(id string) TokenClass {
	return punctuationClasses[id]
}
