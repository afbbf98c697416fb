package expr

// Parse parses Go-like predicate source into an expression tree.
//
// The first bare identifier names the document parameter, so
// `x.Name == "U1" && x.Age >= 21` and `doc.Name == "U1"` are both valid.
// Supported: member access, calls, indexing, list literals, string/number/
// bool/nil literals, ! - unary operators, arithmetic, comparisons, && and ||
// (also spelled AND, OR, NOT). Precedence follows Go.
func Parse(input string) (Expr, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens, pos: 0}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.match(TokEOF) {
		return nil, syntaxErrorf(p.current().Pos, "unexpected %v after expression", p.current().Kind)
	}
	return e, nil
}

// ParseLiteral parses a single constant: a string, number, bool, nil or a
// list of constants.
func ParseLiteral(input string) (any, error) {
	e, err := Parse(input)
	if err != nil {
		return nil, err
	}
	v, ok := literalValue(e)
	if !ok {
		return nil, syntaxErrorf(0, "%s is not a literal", e)
	}
	return v, nil
}

func literalValue(e Expr) (any, bool) {
	switch x := e.(type) {
	case ConstExpr:
		return x.Value, true
	case ListExpr:
		out := make([]any, 0, len(x.Elems))
		for _, el := range x.Elems {
			v, ok := literalValue(el)
			if !ok {
				return nil, false
			}
			out = append(out, v)
		}
		return out, true
	}
	return nil, false
}

type parser struct {
	tokens []Token
	pos    int
	param  string
}

func (p *parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.match(TokOr) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: OpOrElse, Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for p.match(TokAnd) {
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: OpAndAlso, Left: left, Right: right}
	}

	return left, nil
}

var comparisonOps = map[TokenKind]BinaryOp{
	TokEq:  OpEq,
	TokNe:  OpNe,
	TokLt:  OpLt,
	TokLte: OpLe,
	TokGt:  OpGt,
	TokGte: OpGe,
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	op, ok := comparisonOps[p.current().Kind]
	if !ok {
		return left, nil
	}
	p.advance()

	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if _, chained := comparisonOps[p.current().Kind]; chained {
		return nil, syntaxErrorf(p.current().Pos, "comparisons cannot be chained")
	}
	return BinaryExpr{Op: op, Left: left, Right: right}, nil
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.match(TokPlus) || p.match(TokMinus) {
		op := OpAdd
		if p.match(TokMinus) {
			op = OpSub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.match(TokStar) || p.match(TokSlash) || p.match(TokPercent) {
		var op BinaryOp
		switch p.current().Kind {
		case TokStar:
			op = OpMul
		case TokSlash:
			op = OpDiv
		default:
			op = OpMod
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	switch {
	case p.match(TokNot):
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Op: OpNot, X: inner}, nil

	case p.match(TokMinus):
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		// Fold negative literals
		if c, ok := inner.(ConstExpr); ok {
			switch n := c.Value.(type) {
			case int64:
				return ConstExpr{Value: -n}, nil
			case float64:
				return ConstExpr{Value: -n}, nil
			}
		}
		return UnaryExpr{Op: OpNeg, X: inner}, nil
	}

	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.match(TokDot):
			p.advance()
			if !p.match(TokIdent) {
				return nil, syntaxErrorf(p.current().Pos, "expected member name after '.', got %v", p.current().Kind)
			}
			name := p.current().Value
			p.advance()
			if p.match(TokLParen) {
				args, err := p.parseArgs(TokLParen, TokRParen)
				if err != nil {
					return nil, err
				}
				e = CallExpr{Receiver: e, Method: name, Args: args}
				continue
			}
			e = MemberExpr{X: e, Name: name}

		case p.match(TokLBracket):
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if !p.match(TokRBracket) {
				return nil, syntaxErrorf(p.current().Pos, "expected ']', got %v", p.current().Kind)
			}
			p.advance()
			e = IndexExpr{X: e, Index: idx}

		default:
			return e, nil
		}
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.current()
	switch tok.Kind {
	case TokLParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.match(TokRParen) {
			return nil, syntaxErrorf(p.current().Pos, "expected ')', got %v", p.current().Kind)
		}
		p.advance()
		return e, nil

	case TokString, TokNumber:
		p.advance()
		return ConstExpr{Value: tok.Lit}, nil

	case TokLBracket:
		elems, err := p.parseArgs(TokLBracket, TokRBracket)
		if err != nil {
			return nil, err
		}
		return ListExpr{Elems: elems}, nil

	case TokIdent:
		p.advance()
		switch tok.Value {
		case "true":
			return ConstExpr{Value: true}, nil
		case "false":
			return ConstExpr{Value: false}, nil
		case "nil", "null":
			return ConstExpr{Value: nil}, nil
		}
		if p.match(TokLParen) {
			args, err := p.parseArgs(TokLParen, TokRParen)
			if err != nil {
				return nil, err
			}
			return CallExpr{Method: tok.Value, Args: args}, nil
		}
		if p.param == "" {
			p.param = tok.Value
		}
		if tok.Value != p.param {
			return nil, syntaxErrorf(tok.Pos, "unknown identifier %q (the document parameter is %q)", tok.Value, p.param)
		}
		return ParamExpr{Name: tok.Value}, nil

	case TokEOF:
		return nil, syntaxErrorf(tok.Pos, "unexpected end of input")

	default:
		return nil, syntaxErrorf(tok.Pos, "unexpected %v", tok.Kind)
	}
}

// parseArgs parses a comma separated list between open and close
func (p *parser) parseArgs(open, close TokenKind) ([]Expr, error) {
	if !p.match(open) {
		return nil, syntaxErrorf(p.current().Pos, "expected %v, got %v", open, p.current().Kind)
	}
	p.advance()

	var out []Expr
	if p.match(close) {
		p.advance()
		return out, nil
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.match(TokComma) {
			p.advance()
			continue
		}
		if !p.match(close) {
			return nil, syntaxErrorf(p.current().Pos, "expected ',' or %v, got %v", close, p.current().Kind)
		}
		p.advance()
		return out, nil
	}
}

func (p *parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Kind: TokEOF}
}

func (p *parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *parser) match(kind TokenKind) bool {
	return p.current().Kind == kind
}
