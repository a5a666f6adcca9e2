package parse

// Expression parsing is precedence climbing over a fixed table matching
// the Solidity-family operator grammar: assignment and the ternary are
// right-associative and bind loosest, exponentiation is right-associative
// and binds tightest among the binary operators, and everything else
// (logical, bitwise, relational, shift, additive, multiplicative) is
// left-associative.

var assignOps = []string{
	"assign", "add-assign", "sub-assign", "mul-assign", "div-assign",
	"mod-assign", "and-assign", "or-assign", "xor-assign",
	"shl-assign", "shr-assign",
}

func (p *Parser) parseExpression() *Tree {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() *Tree {
	start := p.cur.Span()
	left := p.parseTernary()
	for _, id := range assignOps {
		if op, ok := p.accept(id); ok {
			right := p.parseAssignment()
			left = NewNonTerminal("assignment-expression", start, left, term(op), right)
			break
		}
	}
	return left
}

func (p *Parser) parseTernary() *Tree {
	start := p.cur.Span()
	cond := p.parseLogicalOr()
	if q, ok := p.accept("question"); ok {
		whenTrue := p.parseExpression()
		colon := term(p.expect("colon", "':'"))
		whenFalse := p.parseTernary()
		return NewNonTerminal("conditional-expression", start, cond, term(q), whenTrue, colon, whenFalse)
	}
	return cond
}

func (p *Parser) parseLogicalOr() *Tree {
	return p.parseLeftAssoc([]string{"or"}, p.parseLogicalAnd)
}

func (p *Parser) parseLogicalAnd() *Tree {
	return p.parseLeftAssoc([]string{"and"}, p.parseBitOr)
}

func (p *Parser) parseBitOr() *Tree {
	return p.parseLeftAssoc([]string{"pipe"}, p.parseBitXor)
}

func (p *Parser) parseBitXor() *Tree {
	return p.parseLeftAssoc([]string{"caret"}, p.parseBitAnd)
}

func (p *Parser) parseBitAnd() *Tree {
	return p.parseLeftAssoc([]string{"amp"}, p.parseEquality)
}

func (p *Parser) parseEquality() *Tree {
	return p.parseLeftAssoc([]string{"eq", "ne"}, p.parseRelational)
}

func (p *Parser) parseRelational() *Tree {
	return p.parseLeftAssoc([]string{"lt", "gt", "le", "ge"}, p.parseShift)
}

func (p *Parser) parseShift() *Tree {
	return p.parseLeftAssoc([]string{"shl", "shr"}, p.parseAdditive)
}

func (p *Parser) parseAdditive() *Tree {
	return p.parseLeftAssoc([]string{"plus", "minus"}, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() *Tree {
	return p.parseLeftAssoc([]string{"star", "slash", "percent"}, p.parseExponent)
}

func (p *Parser) parseExponent() *Tree {
	start := p.cur.Span()
	base := p.parseUnary()
	if op, ok := p.accept("pow"); ok {
		exp := p.parseExponent()
		return NewNonTerminal("binary-expression", start, base, term(op), exp)
	}
	return base
}

func (p *Parser) parseLeftAssoc(opIDs []string, next func() *Tree) *Tree {
	start := p.cur.Span()
	left := next()
	for {
		matched := false
		for _, id := range opIDs {
			if op, ok := p.accept(id); ok {
				right := next()
				left = NewNonTerminal("binary-expression", start, left, term(op), right)
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}
	return left
}

var unaryOpIDs = []string{"bang", "tilde", "minus", "plus", "inc", "dec"}

func (p *Parser) parseUnary() *Tree {
	start := p.cur.Span()
	for _, id := range unaryOpIDs {
		if op, ok := p.accept(id); ok {
			operand := p.parseUnary()
			return NewNonTerminal("unary-expression", start, term(op), operand)
		}
	}
	if p.atKeyword("delete") {
		kw := term(p.cur)
		p.advance()
		operand := p.parseUnary()
		return NewNonTerminal("delete-expression", start, kw, operand)
	}
	if p.atKeyword("new") {
		kw := term(p.cur)
		p.advance()
		typ := p.parseTypeName()
		return NewNonTerminal("new-expression", start, kw, typ)
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() *Tree {
	start := p.cur.Span()
	expr := p.parsePrimary()

	for {
		switch {
		case p.at("dot"):
			dot := term(p.cur)
			p.advance()
			name := term(p.expect("identifier", "a member name"))
			expr = NewNonTerminal("member-access", start, expr, dot, name)
		case p.at("lbracket"):
			lb := term(p.cur)
			p.advance()
			var index *Tree
			if !p.at("rbracket") {
				index = p.parseExpression()
			}
			rb := term(p.expect("rbracket", "']'"))
			children := []*Tree{expr, lb}
			if index != nil {
				children = append(children, index)
			}
			children = append(children, rb)
			expr = NewNonTerminal("index-access", start, children...)
		case p.at("lparen"):
			lp := term(p.cur)
			p.advance()
			children := []*Tree{expr, lp}
			if !p.at("rparen") {
				children = append(children, p.parseArgumentList())
			}
			children = append(children, term(p.expect("rparen", "')'")))
			expr = NewNonTerminal("call-expression", start, children...)
		case p.at("lbrace"):
			// named-argument call: f({a: 1, b: 2})
			lb := term(p.cur)
			p.advance()
			children := []*Tree{expr, lb}
			for !p.at("rbrace") && !p.atEnd() {
				name := term(p.expect("identifier", "an argument name"))
				colon := term(p.expect("colon", "':'"))
				val := p.parseExpression()
				children = append(children, NewNonTerminal("named-argument", name.Span(), name, colon, val))
				if _, ok := p.accept("comma"); !ok {
					break
				}
			}
			children = append(children, term(p.expect("rbrace", "'}'")))
			expr = NewNonTerminal("call-expression", start, children...)
		case p.at("inc"), p.at("dec"):
			op := term(p.cur)
			p.advance()
			expr = NewNonTerminal("postfix-expression", start, expr, op)
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() *Tree {
	start := p.cur.Span()
	switch {
	case p.at("lparen"):
		lp := term(p.cur)
		p.advance()
		if p.at("rparen") {
			rp := term(p.cur)
			p.advance()
			return NewNonTerminal("tuple-expression", start, lp, rp)
		}
		var elements []*Tree
		for {
			if p.at("comma") || p.at("rparen") {
				elements = append(elements, NewNonTerminal("tuple-slot", p.cur.Span()))
			} else {
				elements = append(elements, p.parseExpression())
			}
			if _, ok := p.accept("comma"); ok {
				continue
			}
			break
		}
		rp := term(p.expect("rparen", "')'"))
		if len(elements) == 1 {
			return NewNonTerminal("paren-expression", start, lp, elements[0], rp)
		}
		children := append([]*Tree{lp}, elements...)
		children = append(children, rp)
		return NewNonTerminal("tuple-expression", start, children...)
	case p.at("identifier"):
		t := term(p.cur)
		p.advance()
		return NewNonTerminal("identifier-expression", start, t)
	case p.at("number-literal"), p.at("hex-number-literal"):
		t := term(p.cur)
		p.advance()
		return NewNonTerminal("number-literal-expression", start, t)
	case p.at("string-literal"), p.at("unicode-string-literal"), p.at("hex-string-literal"):
		t := term(p.cur)
		p.advance()
		return NewNonTerminal("string-literal-expression", start, t)
	case p.atKeyword("true"), p.atKeyword("false"):
		t := term(p.cur)
		p.advance()
		return NewNonTerminal("bool-literal-expression", start, t)
	case p.startsTypeName():
		// a type used as an expression, e.g. a cast-like "uint256(x)" or
		// "type(Foo).creationCode"; the call/member postfix handles the
		// rest once parsePostfix resumes from this node.
		return p.parseTypeName()
	default:
		p.errorf(p.cur.Span(), "expected an expression, found %s", p.cur.String())
		t := term(p.cur)
		if !p.atEnd() {
			p.advance()
		}
		return NewNonTerminal("error-expression", start, t)
	}
}
