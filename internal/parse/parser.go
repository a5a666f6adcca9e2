package parse

import (
	"bytes"
	"fmt"

	"github.com/dekarrin/solfront/internal/lex"
	"github.com/dekarrin/solfront/internal/source"
)

// Diagnostic is a single parser-level problem: either a syntax error that
// recovery discarded tokens to get past, or (eventually) a warning emitted
// by a later pass over the tree. Severity mirrors the one the namespace's
// diagnostic sink uses so the two can be merged into one report.
type Diagnostic struct {
	Span     source.Span
	Message  string
	Severity Severity
}

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (d Diagnostic) Error() string { return d.Message }

// Result is everything parsing a single file produces: the parse tree
// (always non-nil, even on error -- malformed parts are just missing
// children), the comments the lexer collected, and every diagnostic
// raised during lexing or parsing.
type Result struct {
	Tree        *Tree
	Comments    []lex.Comment
	Diagnostics []Diagnostic
}

// Parser consumes a lex.TokenStream and builds a concrete parse Tree. It
// never aborts on a malformed construct: spec.md §4.2 requires that a
// broken top-level declaration or statement be skipped (with a
// diagnostic) while the rest of the file is still parsed, so every entry
// point that can fail returns either a tree or nil plus at least one
// diagnostic, and the caller is expected to keep going.
type Parser struct {
	toks lex.TokenStream
	cur  lex.Token

	diags []Diagnostic
}

// New returns a Parser positioned at the first token of toks.
func New(toks lex.TokenStream) *Parser {
	p := &Parser{toks: toks}
	p.advance()
	return p
}

// Parse consumes the entire stream and returns the source-unit tree.
func Parse(fileID source.FileID, lx lex.Lexer, src []byte) (Result, error) {
	stream, err := lx.Lex(fileID, bytes.NewReader(src))
	if err != nil {
		return Result{}, err
	}
	p := New(stream)
	tree := p.parseSourceUnit()

	var diags []Diagnostic
	for _, d := range stream.Errors() {
		diags = append(diags, Diagnostic{Span: d.Span, Message: d.Message, Severity: SeverityError})
	}
	diags = append(diags, p.diags...)

	return Result{Tree: tree, Comments: stream.Comments(), Diagnostics: diags}, nil
}

func (p *Parser) advance() {
	p.cur = p.toks.Next()
}

func (p *Parser) at(classID string) bool {
	return p.cur.Class().ID() == classID
}

func (p *Parser) atKeyword(word string) bool {
	cl, ok := lex.KeywordClass(word)
	return ok && p.cur.Class().Equal(cl)
}

func (p *Parser) atEnd() bool {
	return p.cur.Class().Equal(lex.TokenEndOfText)
}

func (p *Parser) accept(classID string) (lex.Token, bool) {
	if p.at(classID) {
		t := p.cur
		p.advance()
		return t, true
	}
	return nil, false
}

func (p *Parser) acceptKeyword(word string) (lex.Token, bool) {
	if p.atKeyword(word) {
		t := p.cur
		p.advance()
		return t, true
	}
	return nil, false
}

func (p *Parser) expect(classID, human string) lex.Token {
	if t, ok := p.accept(classID); ok {
		return t
	}
	p.errorf(p.cur.Span(), "expected %s, found %s", human, p.cur.String())
	return p.cur
}

func (p *Parser) expectKeyword(word string) lex.Token {
	if t, ok := p.acceptKeyword(word); ok {
		return t
	}
	p.errorf(p.cur.Span(), "expected %q, found %s", word, p.cur.String())
	return p.cur
}

func (p *Parser) errorf(sp source.Span, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{Span: sp, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

// synchronize discards tokens (tracking brace depth so it does not stop on
// a "}" belonging to a nested block) until it finds a token in sync, or
// end of input.
func (p *Parser) synchronize(sync map[string]bool) {
	depth := 0
	for {
		if p.atEnd() {
			return
		}
		if depth == 0 && sync[p.cur.Class().ID()] {
			return
		}
		switch p.cur.Class().ID() {
		case "lbrace":
			depth++
		case "rbrace":
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

func term(tok lex.Token) *Tree { return NewTerminal(tok) }

// ---- source unit -----------------------------------------------------

func (p *Parser) parseSourceUnit() *Tree {
	start := p.cur.Span()
	var children []*Tree
	sync := declarationSyncSet()

	for !p.atEnd() {
		before := p.cur
		decl := p.parseDeclaration()
		if decl != nil {
			children = append(children, decl)
			continue
		}
		// parseDeclaration already reported a diagnostic; recover and keep
		// going so the rest of the file is still parsed (spec.md §4.2).
		if p.cur == before {
			p.advance()
		}
		p.synchronize(sync)
	}

	return NewNonTerminal("source-unit", start, children...)
}

func (p *Parser) parseDeclaration() *Tree {
	switch {
	case p.atKeyword("pragma"):
		return p.parsePragma()
	case p.atKeyword("import"):
		return p.parseImport()
	case p.atKeyword("using"):
		return p.parseUsingDirective()
	case p.atKeyword("contract"), p.atKeyword("interface"), p.atKeyword("library"), p.atKeyword("abstract"):
		return p.parseContractLike()
	case p.atKeyword("struct"):
		return p.parseStructDefinition()
	case p.atKeyword("enum"):
		return p.parseEnumDefinition()
	case p.atKeyword("error"):
		return p.parseErrorDefinition()
	case p.atKeyword("event"):
		return p.parseEventDefinition()
	case p.atKeyword("function"):
		return p.parseFunctionDefinition()
	case p.atKeyword("modifier"):
		return p.parseModifierDefinition()
	case p.atKeyword("constructor"):
		return p.parseFunctionDefinition()
	case p.atKeyword("receive"), p.atKeyword("fallback"):
		return p.parseFunctionDefinition()
	default:
		if looksLikeStateVariable(p) {
			return p.parseStateVariable()
		}
		p.errorf(p.cur.Span(), "expected a declaration, found %s", p.cur.String())
		return nil
	}
}

func (p *Parser) parsePragma() *Tree {
	start := p.cur.Span()
	kw := term(p.expectKeyword("pragma"))
	children := []*Tree{kw}
	for !p.at("semi") && !p.atEnd() {
		children = append(children, term(p.cur))
		p.advance()
	}
	if semi, ok := p.accept("semi"); ok {
		children = append(children, term(semi))
	} else {
		p.errorf(p.cur.Span(), "expected ';' to end pragma directive")
	}
	return NewNonTerminal("pragma-directive", start, children...)
}

func (p *Parser) parseImport() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("import"))}
	for !p.at("semi") && !p.atEnd() {
		children = append(children, term(p.cur))
		p.advance()
	}
	if semi, ok := p.accept("semi"); ok {
		children = append(children, term(semi))
	} else {
		p.errorf(p.cur.Span(), "expected ';' to end import directive")
	}
	return NewNonTerminal("import-directive", start, children...)
}

func (p *Parser) parseUsingDirective() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("using"))}
	for !p.at("semi") && !p.atEnd() {
		children = append(children, term(p.cur))
		p.advance()
	}
	if semi, ok := p.accept("semi"); ok {
		children = append(children, term(semi))
	} else {
		p.errorf(p.cur.Span(), "expected ';' to end using directive")
	}
	return NewNonTerminal("using-directive", start, children...)
}

// ---- contracts/interfaces/libraries -----------------------------------

func (p *Parser) parseContractLike() *Tree {
	start := p.cur.Span()
	var children []*Tree
	if abs, ok := p.acceptKeyword("abstract"); ok {
		children = append(children, term(abs))
	}

	var kindTok lex.Token
	switch {
	case p.atKeyword("contract"):
		kindTok = p.cur
		p.advance()
	case p.atKeyword("interface"):
		kindTok = p.cur
		p.advance()
	case p.atKeyword("library"):
		kindTok = p.cur
		p.advance()
	default:
		p.errorf(p.cur.Span(), "expected 'contract', 'interface', or 'library'")
		return nil
	}
	children = append(children, term(kindTok))

	name := p.expect("identifier", "a contract name")
	children = append(children, term(name))

	if _, ok := p.acceptKeyword("is"); ok {
		children = append(children, p.parseInheritanceList())
	}

	children = append(children, p.parseContractBody())
	return NewNonTerminal("contract-definition", start, children...)
}

func (p *Parser) parseInheritanceList() *Tree {
	start := p.cur.Span()
	var children []*Tree
	for {
		base := p.parseInheritanceSpecifier()
		children = append(children, base)
		if _, ok := p.accept("comma"); !ok {
			break
		}
	}
	return NewNonTerminal("inheritance-list", start, children...)
}

func (p *Parser) parseInheritanceSpecifier() *Tree {
	start := p.cur.Span()
	name := term(p.expect("identifier", "a base contract name"))
	children := []*Tree{name}
	if lp, ok := p.accept("lparen"); ok {
		children = append(children, term(lp))
		if !p.at("rparen") {
			children = append(children, p.parseArgumentList())
		}
		children = append(children, term(p.expect("rparen", "')'")))
	}
	return NewNonTerminal("inheritance-specifier", start, children...)
}

func (p *Parser) parseContractBody() *Tree {
	start := p.cur.Span()
	lb := term(p.expect("lbrace", "'{'"))
	children := []*Tree{lb}
	sync := declarationSyncSet()

	for !p.at("rbrace") && !p.atEnd() {
		before := p.cur
		member := p.parseDeclaration()
		if member != nil {
			children = append(children, member)
			continue
		}
		if p.cur == before {
			p.advance()
		}
		p.synchronize(sync)
	}

	rb := term(p.expect("rbrace", "'}'"))
	children = append(children, rb)
	return NewNonTerminal("contract-body", start, children...)
}

// ---- struct / enum / error / event ------------------------------------

func (p *Parser) parseStructDefinition() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("struct")), term(p.expect("identifier", "a struct name"))}
	children = append(children, term(p.expect("lbrace", "'{'")))
	for !p.at("rbrace") && !p.atEnd() {
		children = append(children, p.parseStructMember())
	}
	children = append(children, term(p.expect("rbrace", "'}'")))
	return NewNonTerminal("struct-definition", start, children...)
}

func (p *Parser) parseStructMember() *Tree {
	start := p.cur.Span()
	typ := p.parseTypeName()
	name := term(p.expect("identifier", "a field name"))
	semi := term(p.expect("semi", "';'"))
	return NewNonTerminal("struct-member", start, typ, name, semi)
}

func (p *Parser) parseEnumDefinition() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("enum")), term(p.expect("identifier", "an enum name"))}
	children = append(children, term(p.expect("lbrace", "'{'")))
	for !p.at("rbrace") && !p.atEnd() {
		children = append(children, term(p.expect("identifier", "an enum member")))
		if _, ok := p.accept("comma"); !ok {
			break
		}
	}
	children = append(children, term(p.expect("rbrace", "'}'")))
	return NewNonTerminal("enum-definition", start, children...)
}

func (p *Parser) parseErrorDefinition() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("error")), term(p.expect("identifier", "an error name"))}
	children = append(children, term(p.expect("lparen", "'('")))
	if !p.at("rparen") {
		children = append(children, p.parseParameterList())
	}
	children = append(children, term(p.expect("rparen", "')'")))
	children = append(children, term(p.expect("semi", "';'")))
	return NewNonTerminal("error-definition", start, children...)
}

func (p *Parser) parseEventDefinition() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("event")), term(p.expect("identifier", "an event name"))}
	children = append(children, term(p.expect("lparen", "'('")))
	if !p.at("rparen") {
		children = append(children, p.parseEventParameterList())
	}
	children = append(children, term(p.expect("rparen", "')'")))
	if anon, ok := p.acceptKeyword("anonymous"); ok {
		children = append(children, term(anon))
	}
	children = append(children, term(p.expect("semi", "';'")))
	return NewNonTerminal("event-definition", start, children...)
}

func (p *Parser) parseEventParameterList() *Tree {
	start := p.cur.Span()
	var children []*Tree
	for {
		pstart := p.cur.Span()
		pChildren := []*Tree{p.parseTypeName()}
		if idx, ok := p.acceptKeyword("indexed"); ok {
			pChildren = append(pChildren, term(idx))
		}
		if p.at("identifier") {
			pChildren = append(pChildren, term(p.cur))
			p.advance()
		}
		children = append(children, NewNonTerminal("event-parameter", pstart, pChildren...))
		if _, ok := p.accept("comma"); !ok {
			break
		}
	}
	return NewNonTerminal("event-parameter-list", start, children...)
}

// ---- state variables ---------------------------------------------------

// looksLikeStateVariable disambiguates a leading type name (which always
// starts a state-variable declaration at contract scope) from every other
// kind of declaration, by scanning ahead without consuming: a type name is
// anything that is not one of the keywords handled explicitly above.
func looksLikeStateVariable(p *Parser) bool {
	return !p.atEnd() && !p.at("rbrace")
}

func (p *Parser) parseStateVariable() *Tree {
	start := p.cur.Span()
	typ := p.parseTypeName()
	children := []*Tree{typ}

	for p.at("kw-public") || p.at("kw-private") || p.at("kw-internal") ||
		p.at("kw-constant") || p.at("kw-immutable") || p.at("kw-override") {
		children = append(children, term(p.cur))
		p.advance()
	}

	children = append(children, term(p.expect("identifier", "a variable name")))

	if eq, ok := p.accept("assign"); ok {
		children = append(children, term(eq))
		children = append(children, p.parseExpression())
	}

	children = append(children, term(p.expect("semi", "';'")))
	return NewNonTerminal("state-variable-declaration", start, children...)
}

// ---- functions and modifiers -------------------------------------------

func (p *Parser) parseFunctionDefinition() *Tree {
	start := p.cur.Span()
	var children []*Tree

	switch {
	case p.atKeyword("function"):
		children = append(children, term(p.cur))
		p.advance()
		children = append(children, term(p.expect("identifier", "a function name")))
	case p.atKeyword("constructor"), p.atKeyword("receive"), p.atKeyword("fallback"):
		children = append(children, term(p.cur))
		p.advance()
	}

	children = append(children, term(p.expect("lparen", "'('")))
	if !p.at("rparen") {
		children = append(children, p.parseParameterList())
	}
	children = append(children, term(p.expect("rparen", "')'")))

	for p.isFunctionModifierToken() {
		children = append(children, p.parseFunctionModifierInvocation())
	}

	if _, ok := p.acceptKeyword("returns"); ok {
		children = append(children, term(p.expect("lparen", "'('")))
		children = append(children, p.parseParameterList())
		children = append(children, term(p.expect("rparen", "')'")))
	}

	if p.at("lbrace") {
		children = append(children, p.parseBlock())
	} else {
		children = append(children, term(p.expect("semi", "';' or a function body")))
	}

	return NewNonTerminal("function-definition", start, children...)
}

var functionModifierKeywords = []string{
	"public", "private", "internal", "external",
	"pure", "view", "payable", "virtual", "override",
}

func (p *Parser) isFunctionModifierToken() bool {
	for _, kw := range functionModifierKeywords {
		if p.atKeyword(kw) {
			return true
		}
	}
	return p.at("identifier") && !p.atKeyword("returns")
}

func (p *Parser) parseFunctionModifierInvocation() *Tree {
	start := p.cur.Span()
	for _, kw := range functionModifierKeywords {
		if t, ok := p.acceptKeyword(kw); ok {
			return NewNonTerminal("function-attribute", start, term(t))
		}
	}
	name := term(p.expect("identifier", "a modifier name"))
	children := []*Tree{name}
	if lp, ok := p.accept("lparen"); ok {
		children = append(children, term(lp))
		if !p.at("rparen") {
			children = append(children, p.parseArgumentList())
		}
		children = append(children, term(p.expect("rparen", "')'")))
	}
	return NewNonTerminal("modifier-invocation", start, children...)
}

func (p *Parser) parseModifierDefinition() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("modifier")), term(p.expect("identifier", "a modifier name"))}
	if lp, ok := p.accept("lparen"); ok {
		children = append(children, term(lp))
		if !p.at("rparen") {
			children = append(children, p.parseParameterList())
		}
		children = append(children, term(p.expect("rparen", "')'")))
	}
	for p.atKeyword("virtual") || p.atKeyword("override") {
		children = append(children, term(p.cur))
		p.advance()
	}
	if p.at("lbrace") {
		children = append(children, p.parseBlock())
	} else {
		children = append(children, term(p.expect("semi", "';' or a modifier body")))
	}
	return NewNonTerminal("modifier-definition", start, children...)
}

func (p *Parser) parseParameterList() *Tree {
	start := p.cur.Span()
	var children []*Tree
	for {
		pstart := p.cur.Span()
		pChildren := []*Tree{p.parseTypeName()}
		for p.atKeyword("memory") || p.atKeyword("storage") || p.atKeyword("calldata") {
			pChildren = append(pChildren, term(p.cur))
			p.advance()
		}
		if p.at("identifier") {
			pChildren = append(pChildren, term(p.cur))
			p.advance()
		}
		children = append(children, NewNonTerminal("parameter", pstart, pChildren...))
		if _, ok := p.accept("comma"); !ok {
			break
		}
	}
	return NewNonTerminal("parameter-list", start, children...)
}

func (p *Parser) parseArgumentList() *Tree {
	start := p.cur.Span()
	var children []*Tree
	for {
		children = append(children, p.parseExpression())
		if _, ok := p.accept("comma"); !ok {
			break
		}
	}
	return NewNonTerminal("argument-list", start, children...)
}

// ---- types --------------------------------------------------------------

var elementaryTypeKeywords = []string{"address", "bool", "string", "var"}

func (p *Parser) parseTypeName() *Tree {
	start := p.cur.Span()
	var base *Tree

	switch {
	case p.atKeyword("mapping"):
		base = p.parseMappingType()
	case p.atKeyword("function"):
		base = p.parseFunctionType()
	default:
		matched := false
		for _, kw := range elementaryTypeKeywords {
			if t, ok := p.acceptKeyword(kw); ok {
				base = NewNonTerminal("elementary-type", start, term(t))
				matched = true
				break
			}
		}
		if !matched {
			if t, ok := p.accept("kw-bytes"); ok {
				base = NewNonTerminal("elementary-type", start, term(t))
			} else if p.at("identifier") {
				base = NewNonTerminal("user-defined-type", start, term(p.cur))
				p.advance()
			} else {
				p.errorf(p.cur.Span(), "expected a type name, found %s", p.cur.String())
				base = NewNonTerminal("user-defined-type", start)
			}
		}
	}

	for p.at("lbracket") {
		lbStart := p.cur.Span()
		lb := term(p.cur)
		p.advance()
		var size *Tree
		if !p.at("rbracket") {
			size = p.parseExpression()
		}
		rb := term(p.expect("rbracket", "']'"))
		children := []*Tree{base, lb}
		if size != nil {
			children = append(children, size)
		}
		children = append(children, rb)
		base = NewNonTerminal("array-type", lbStart, children...)
	}

	return base
}

func (p *Parser) parseMappingType() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("mapping")), term(p.expect("lparen", "'('"))}
	children = append(children, p.parseTypeName())
	children = append(children, term(p.expect("arrow", "'=>'")))
	children = append(children, p.parseTypeName())
	children = append(children, term(p.expect("rparen", "')'")))
	return NewNonTerminal("mapping-type", start, children...)
}

func (p *Parser) parseFunctionType() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("function")), term(p.expect("lparen", "'('"))}
	if !p.at("rparen") {
		children = append(children, p.parseParameterList())
	}
	children = append(children, term(p.expect("rparen", "')'")))
	for p.isFunctionModifierToken() {
		children = append(children, p.parseFunctionModifierInvocation())
	}
	if _, ok := p.acceptKeyword("returns"); ok {
		children = append(children, term(p.expect("lparen", "'('")))
		children = append(children, p.parseParameterList())
		children = append(children, term(p.expect("rparen", "')'")))
	}
	return NewNonTerminal("function-type", start, children...)
}
