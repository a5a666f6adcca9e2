package parse

// Yul (inline assembly) has its own, much smaller grammar than the
// surrounding language: no operator expressions, only calls, identifiers,
// and literals; statements are let/assignment/if/switch/for/block/
// function-definition/break/continue/leave. The lexer has already
// switched into StateYul for us by the time parseAssemblyBlock is
// entered, so token classes here are the same ones as everywhere else
// (lbrace, identifier, ...) plus the Yul keyword classes.
func (p *Parser) parseAssemblyBlock() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("assembly"))}

	if p.at("string-literal") {
		// the optional "evmasm" dialect marker
		children = append(children, term(p.cur))
		p.advance()
	}

	children = append(children, p.parseYulBlock())
	return NewNonTerminal("assembly-statement", start, children...)
}

func (p *Parser) parseYulBlock() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expect("lbrace", "'{'"))}
	for !p.at("rbrace") && !p.atEnd() {
		children = append(children, p.parseYulStatement())
	}
	children = append(children, term(p.expect("rbrace", "'}'")))
	return NewNonTerminal("yul-block", start, children...)
}

func (p *Parser) parseYulStatement() *Tree {
	start := p.cur.Span()
	switch {
	case p.at("lbrace"):
		return p.parseYulBlock()
	case p.atKeyword("let"):
		return p.parseYulVariableDeclaration()
	case p.atKeyword("function"):
		return p.parseYulFunctionDefinition()
	case p.atKeyword("if"):
		return p.parseYulIf()
	case p.atKeyword("switch"):
		return p.parseYulSwitch()
	case p.atKeyword("for"):
		return p.parseYulFor()
	case p.atKeyword("break"):
		t := term(p.cur)
		p.advance()
		return NewNonTerminal("yul-break", start, t)
	case p.atKeyword("continue"):
		t := term(p.cur)
		p.advance()
		return NewNonTerminal("yul-continue", start, t)
	case p.atKeyword("leave"):
		t := term(p.cur)
		p.advance()
		return NewNonTerminal("yul-leave", start, t)
	default:
		return p.parseYulExpressionOrAssignment()
	}
}

func (p *Parser) parseYulVariableDeclaration() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("let"))}
	children = append(children, term(p.expect("identifier", "a variable name")))
	for {
		if _, ok := p.accept("comma"); ok {
			children = append(children, term(p.expect("identifier", "a variable name")))
			continue
		}
		break
	}
	if _, ok := p.accept("colon"); ok {
		// `:=` is lexed as two tokens here (colon, assign) since Yul's
		// walrus operator is not in the shared punctuation table.
		children = append(children, term(p.expect("assign", "'='")))
		children = append(children, p.parseYulExpression())
	}
	return NewNonTerminal("yul-variable-declaration", start, children...)
}

func (p *Parser) parseYulExpressionOrAssignment() *Tree {
	start := p.cur.Span()
	first := p.parseYulPath()
	if p.at("colon") {
		children := []*Tree{first}
		for {
			children = append(children, term(p.expect("colon", "':'")))
			children = append(children, term(p.expect("assign", "'='")))
			children = append(children, p.parseYulExpression())
			break
		}
		return NewNonTerminal("yul-assignment", start, children...)
	}
	if p.at("comma") {
		children := []*Tree{first}
		for {
			if _, ok := p.accept("comma"); !ok {
				break
			}
			children = append(children, p.parseYulPath())
		}
		children = append(children, term(p.expect("colon", "':'")))
		children = append(children, term(p.expect("assign", "'='")))
		children = append(children, p.parseYulExpression())
		return NewNonTerminal("yul-assignment", start, children...)
	}
	return NewNonTerminal("yul-expression-statement", start, first)
}

func (p *Parser) parseYulPath() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expect("identifier", "an identifier"))}
	for p.at("dot") {
		children = append(children, term(p.cur))
		p.advance()
		children = append(children, term(p.expect("identifier", "a path segment")))
	}
	if len(children) == 1 {
		return children[0]
	}
	return NewNonTerminal("yul-path", start, children...)
}

func (p *Parser) parseYulExpression() *Tree {
	start := p.cur.Span()
	switch {
	case p.at("number-literal"), p.at("hex-number-literal"), p.at("string-literal"), p.at("hex-string-literal"):
		t := term(p.cur)
		p.advance()
		return NewNonTerminal("yul-literal", start, t)
	case p.atKeyword("true"), p.atKeyword("false"):
		t := term(p.cur)
		p.advance()
		return NewNonTerminal("yul-literal", start, t)
	default:
		path := p.parseYulPath()
		if p.at("lparen") {
			children := []*Tree{path, term(p.cur)}
			p.advance()
			for !p.at("rparen") && !p.atEnd() {
				children = append(children, p.parseYulExpression())
				if _, ok := p.accept("comma"); !ok {
					break
				}
			}
			children = append(children, term(p.expect("rparen", "')'")))
			return NewNonTerminal("yul-call", start, children...)
		}
		return path
	}
}

func (p *Parser) parseYulIf() *Tree {
	start := p.cur.Span()
	kw := term(p.expectKeyword("if"))
	cond := p.parseYulExpression()
	body := p.parseYulBlock()
	return NewNonTerminal("yul-if", start, kw, cond, body)
}

func (p *Parser) parseYulSwitch() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("switch")), p.parseYulExpression()}
	for p.atKeyword("case") {
		cstart := p.cur.Span()
		kw := term(p.cur)
		p.advance()
		val := p.parseYulExpression()
		body := p.parseYulBlock()
		children = append(children, NewNonTerminal("yul-case", cstart, kw, val, body))
	}
	if dflt, ok := p.acceptKeyword("default"); ok {
		body := p.parseYulBlock()
		children = append(children, NewNonTerminal("yul-default", dflt.Span(), term(dflt), body))
	}
	return NewNonTerminal("yul-switch", start, children...)
}

func (p *Parser) parseYulFor() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("for")), p.parseYulBlock()}
	children = append(children, p.parseYulExpression())
	children = append(children, p.parseYulBlock())
	children = append(children, p.parseYulBlock())
	return NewNonTerminal("yul-for", start, children...)
}

func (p *Parser) parseYulFunctionDefinition() *Tree {
	start := p.cur.Span()
	children := []*Tree{term(p.expectKeyword("function")), term(p.expect("identifier", "a function name"))}
	children = append(children, term(p.expect("lparen", "'('")))
	for !p.at("rparen") && !p.atEnd() {
		children = append(children, term(p.expect("identifier", "a parameter name")))
		if _, ok := p.accept("comma"); !ok {
			break
		}
	}
	children = append(children, term(p.expect("rparen", "')'")))

	if _, ok := p.accept("produces"); ok {
		for {
			children = append(children, term(p.expect("identifier", "a return variable name")))
			if _, ok := p.accept("comma"); !ok {
				break
			}
		}
	}

	children = append(children, p.parseYulBlock())
	return NewNonTerminal("yul-function-definition", start, children...)
}
