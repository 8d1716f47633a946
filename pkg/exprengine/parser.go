package exprengine

import (
	"fmt"

	"github.com/cuemby/graphd/pkg/types"
)

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token  { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expectOp(op string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == op
}

// Parse compiles src into an evaluable Expr. Grammar, loosest to tightest
// binding: || then && then equality (==, !=) then relational (<, <=, >,
// >=) then additive (+, -) then multiplicative (*, /) then unary (-, !)
// then primary (name, literal, parenthesized expression).
func Parse(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("exprengine: unexpected trailing token %q", p.peek().text)
	}
	return expr, nil
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.expectOp("||") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.expectOp("&&") {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: "&&", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseEquality() (Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.expectOp("==") || p.expectOp("!=") {
		op := p.advance().text
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseRelational() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.expectOp("<") || p.expectOp("<=") || p.expectOp(">") || p.expectOp(">=") {
		op := p.advance().text
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.expectOp("+") || p.expectOp("-") {
		op := p.advance().text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.expectOp("*") || p.expectOp("/") {
		op := p.advance().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.expectOp("-") || p.expectOp("!") {
		op := p.advance().text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{op: op, operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokLParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("exprengine: expected closing paren")
		}
		p.advance()
		return inner, nil
	case tokIdent:
		p.advance()
		return &nameExpr{name: t.text}, nil
	case tokInt:
		p.advance()
		i, err := parseIntLiteral(t.text)
		if err != nil {
			return nil, fmt.Errorf("exprengine: invalid int literal %q: %w", t.text, err)
		}
		return &literalExpr{v: types.IntValue(i)}, nil
	case tokFloat:
		p.advance()
		f, err := parseFloatLiteral(t.text)
		if err != nil {
			return nil, fmt.Errorf("exprengine: invalid float literal %q: %w", t.text, err)
		}
		return &literalExpr{v: types.FloatValue(f)}, nil
	case tokString:
		p.advance()
		return &literalExpr{v: types.StringValue(t.text)}, nil
	case tokBool:
		p.advance()
		return &literalExpr{v: types.BoolValue(t.text == "true")}, nil
	default:
		return nil, fmt.Errorf("exprengine: unexpected token %q", t.text)
	}
}
