package parse

import (
	"github.com/dekarrin/solfront/internal/lex"
	"github.com/dekarrin/solfront/internal/source"
)

// parseBlock and the statement parsers below implement spec.md §4.2's
// second recovery contract: a malformed statement is replaced by a single
// error node and parsing resumes at the next statement-sync token, rather
// than abandoning the whole enclosing block.
func (p *Parser) parseBlock() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expect("lbrace", "'{'"))}
	sync := statementSyncSet()

	for !p.at("rbrace") && !p.atEnd() {
		before := p.cur
		stmt := p.parseStatement()
		if stmt != nil {
			children = append(children, stmt)
			continue
		}
		if p.cur == before {
			p.advance()
		}
		p.synchronize(sync)
	}

	children = append(children, term(p.expect("rbrace", "'}'")))
	return NewNonTerminal("block", start, children...)
}

func (p *Parser) parseStatement() *Tree {
	switch {
	case p.at("lbrace"):
		return p.parseBlock()
	case p.atKeyword("if"):
		return p.parseIfStatement()
	case p.atKeyword("while"):
		return p.parseWhileStatement()
	case p.atKeyword("do"):
		return p.parseDoWhileStatement()
	case p.atKeyword("for"):
		return p.parseForStatement()
	case p.atKeyword("return"):
		return p.parseReturnStatement()
	case p.atKeyword("break"):
		return p.simpleKeywordStatement("break-statement", "break")
	case p.atKeyword("continue"):
		return p.simpleKeywordStatement("continue-statement", "continue")
	case p.atKeyword("throw"):
		return p.simpleKeywordStatement("throw-statement", "throw")
	case p.atKeyword("revert"):
		return p.parseRevertStatement()
	case p.atKeyword("emit"):
		return p.parseEmitStatement()
	case p.atKeyword("try"):
		return p.parseTryStatement()
	case p.atKeyword("delete"):
		return p.parseDeleteStatement()
	case p.atKeyword("unchecked"):
		return p.parseUncheckedBlock()
	case p.atKeyword("assembly"):
		return p.parseAssemblyBlock()
	case p.at("semi"):
		t := term(p.cur)
		p.advance()
		return NewNonTerminal("empty-statement", t.Span(), t)
	default:
		return p.parseSimpleStatement()
	}
}

func (p *Parser) simpleKeywordStatement(symbol, keyword string) *Tree {
	start := p.cur.Span()
	kw := term(p.expectKeyword(keyword))
	semi := term(p.expect("semi", "';'"))
	return NewNonTerminal(symbol, start, kw, semi)
}

func (p *Parser) parseIfStatement() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("if")), term(p.expect("lparen", "'('"))}
	children = append(children, p.parseExpression())
	children = append(children, term(p.expect("rparen", "')'")))
	children = append(children, p.parseStatement())
	if _, ok := p.acceptKeyword("else"); ok {
		children = append(children, p.parseStatement())
	}
	return NewNonTerminal("if-statement", start, children...)
}

func (p *Parser) parseWhileStatement() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("while")), term(p.expect("lparen", "'('"))}
	children = append(children, p.parseExpression())
	children = append(children, term(p.expect("rparen", "')'")))
	children = append(children, p.parseStatement())
	return NewNonTerminal("while-statement", start, children...)
}

func (p *Parser) parseDoWhileStatement() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("do")), p.parseStatement(), term(p.expectKeyword("while"))}
	children = append(children, term(p.expect("lparen", "'('")))
	children = append(children, p.parseExpression())
	children = append(children, term(p.expect("rparen", "')'")))
	children = append(children, term(p.expect("semi", "';'")))
	return NewNonTerminal("do-while-statement", start, children...)
}

func (p *Parser) parseForStatement() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("for")), term(p.expect("lparen", "'('"))}

	if p.at("semi") {
		children = append(children, term(p.cur))
		p.advance()
	} else {
		children = append(children, p.parseSimpleStatement())
	}

	if !p.at("semi") {
		children = append(children, p.parseExpression())
	}
	children = append(children, term(p.expect("semi", "';'")))

	if !p.at("rparen") {
		children = append(children, p.parseExpression())
	}
	children = append(children, term(p.expect("rparen", "')'")))
	children = append(children, p.parseStatement())

	return NewNonTerminal("for-statement", start, children...)
}

func (p *Parser) parseReturnStatement() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("return"))}
	if !p.at("semi") {
		children = append(children, p.parseExpression())
	}
	children = append(children, term(p.expect("semi", "';'")))
	return NewNonTerminal("return-statement", start, children...)
}

func (p *Parser) parseRevertStatement() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("revert"))}
	if p.at("identifier") {
		children = append(children, p.parseExpression())
	}
	children = append(children, term(p.expect("semi", "';'")))
	return NewNonTerminal("revert-statement", start, children...)
}

func (p *Parser) parseEmitStatement() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("emit")), p.parseExpression()}
	children = append(children, term(p.expect("semi", "';'")))
	return NewNonTerminal("emit-statement", start, children...)
}

func (p *Parser) parseDeleteStatement() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("delete")), p.parseExpression()}
	children = append(children, term(p.expect("semi", "';'")))
	return NewNonTerminal("delete-statement", start, children...)
}

func (p *Parser) parseUncheckedBlock() *Tree {
	start := p.cur.Span()
	kw := term(p.expectKeyword("unchecked"))
	body := p.parseBlock()
	return NewNonTerminal("unchecked-block", start, kw, body)
}

// parseTryStatement handles the try/catch form spec.md §4.2 requires:
// `try <expr> [returns (params)] block catch [(params)] block
// [catch [(params)] block]...`
func (p *Parser) parseTryStatement() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("try")), p.parseExpression()}

	if _, ok := p.acceptKeyword("returns"); ok {
		children = append(children, term(p.expect("lparen", "'('")))
		children = append(children, p.parseParameterList())
		children = append(children, term(p.expect("rparen", "')'")))
	}

	children = append(children, p.parseBlock())

	for p.atKeyword("catch") {
		children = append(children, p.parseCatchClause())
	}
	if len(children) < 3 {
		p.errorf(start, "try statement requires at least one catch clause")
	}

	return NewNonTerminal("try-statement", start, children...)
}

func (p *Parser) parseCatchClause() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("catch"))}
	if p.at("identifier") {
		children = append(children, term(p.cur))
		p.advance()
	}
	if p.at("lparen") {
		children = append(children, term(p.cur))
		p.advance()
		if !p.at("rparen") {
			children = append(children, p.parseParameterList())
		}
		children = append(children, term(p.expect("rparen", "')'")))
	}
	children = append(children, p.parseBlock())
	return NewNonTerminal("catch-clause", start, children...)
}

// parseSimpleStatement covers both variable declarations (with optional
// tuple destructuring) and bare expression statements; the two share a
// prefix (a type name looks exactly like an expression's primary) so they
// are disambiguated the same way a Solidity-family parser does: scan
// ahead, and fall back to an expression statement if no declarator
// follows what was tentatively parsed as a type.
func (p *Parser) parseSimpleStatement() *Tree {
	start := p.cur.Span()

	if p.at("lparen") && p.tupleDeclarationLikely() {
		if decl := p.tryParseTupleDeclaration(start); decl != nil {
			return decl
		}
	}

	if decl := p.tryParseVariableDeclaration(start); decl != nil {
		return decl
	}

	expr := p.parseExpression()
	semi := term(p.expect("semi", "';'"))
	return NewNonTerminal("expression-statement", start, expr, semi)
}

// tryParseVariableDeclaration speculatively parses "<type> <name> [=
// <expr>] ;" by checkpointing the token stream's logical position through
// a saved token and diagnostic-count; true backtracking would need a
// rewindable stream, so instead it recognizes the declaration shape using
// only one token of committed lookahead (the type), which this language's
// grammar makes unambiguous: any construct beginning with an elementary
// type keyword, "mapping", or an identifier immediately followed by
// another identifier is a declaration, never a standalone expression.
func (p *Parser) tryParseVariableDeclaration(start source.Span) *Tree {
	if !p.startsTypeName() {
		return nil
	}
	if p.at("identifier") && !p.nextLooksLikeDeclarator() {
		return nil
	}

	typ := p.parseTypeName()
	for p.atKeyword("memory") || p.atKeyword("storage") || p.atKeyword("calldata") {
		typ = NewNonTerminal("located-type", start, typ, term(p.cur))
		p.advance()
	}

	if !p.at("identifier") {
		return nil
	}
	name := term(p.cur)
	p.advance()

	children := []*Tree{typ, name}
	if eq, ok := p.accept("assign"); ok {
		children = append(children, term(eq), p.parseExpression())
	}
	children = append(children, term(p.expect("semi", "';'")))
	return NewNonTerminal("variable-declaration-statement", start, children...)
}

// tryParseTupleDeclaration handles "(T1 a, , T3 c) = expr;" destructuring
// declarations, where any element may be omitted to skip that slot.
func (p *Parser) tryParseTupleDeclaration(start source.Span) *Tree {
	lp := term(p.cur)
	p.advance()

	var slots []*Tree
	ok := true
	for {
		if p.at("comma") || p.at("rparen") {
			slots = append(slots, NewNonTerminal("destructure-slot", p.cur.Span()))
		} else if p.startsTypeName() {
			sstart := p.cur.Span()
			typ := p.parseTypeName()
			for p.atKeyword("memory") || p.atKeyword("storage") || p.atKeyword("calldata") {
				typ = NewNonTerminal("located-type", sstart, typ, term(p.cur))
				p.advance()
			}
			if !p.at("identifier") {
				ok = false
				break
			}
			name := term(p.cur)
			p.advance()
			slots = append(slots, NewNonTerminal("destructure-slot", sstart, typ, name))
		} else {
			ok = false
			break
		}
		if _, got := p.accept("comma"); got {
			continue
		}
		break
	}

	if !ok || !p.at("rparen") {
		return nil
	}
	rp := term(p.cur)
	p.advance()
	if !p.at("assign") {
		return nil
	}
	eq := term(p.cur)
	p.advance()
	rhs := p.parseExpression()
	semi := term(p.expect("semi", "';'"))

	children := append([]*Tree{lp}, slots...)
	children = append(children, rp, eq, rhs, semi)
	return NewNonTerminal("tuple-declaration-statement", start, children...)
}

// tupleDeclarationLikely peeks one token past "(" to decide whether this
// is worth speculatively parsing as a destructuring declaration: an empty
// first slot (",", ")") or a non-identifier type keyword can never start
// a parenthesized expression, so those are safe to commit to. A leading
// identifier is ambiguous with a parenthesized expression or a plain
// tuple assignment and is deliberately left to fall through to
// parseExpression instead of risking an unrecoverable partial commit.
func (p *Parser) tupleDeclarationLikely() bool {
	next := p.toks.Peek()
	switch next.Class().ID() {
	case "comma", "rparen":
		return true
	}
	for _, kw := range elementaryTypeKeywords {
		if cl, ok := lex.KeywordClass(kw); ok && next.Class().Equal(cl) {
			return true
		}
	}
	if cl, ok := lex.KeywordClass("mapping"); ok && next.Class().Equal(cl) {
		return true
	}
	return next.Class().ID() == "kw-bytes"
}

func (p *Parser) startsTypeName() bool {
	for _, kw := range elementaryTypeKeywords {
		if p.atKeyword(kw) {
			return true
		}
	}
	return p.at("kw-bytes") || p.atKeyword("mapping") || p.atKeyword("function") || p.at("identifier")
}

// nextLooksLikeDeclarator peeks one token past an identifier-as-type to
// see whether a second identifier (the variable name) follows, which is
// the only way "Foo bar" parses as a declaration rather than "Foo" alone
// being an expression statement (a no-op, but syntactically legal).
func (p *Parser) nextLooksLikeDeclarator() bool {
	next := p.toks.Peek()
	return next.Class().ID() == "identifier" || next.Class().ID() == "lbracket"
}
