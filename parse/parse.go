package parse

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"

	levycas "github.com/ajlevy246/LevyCAS"
)

var functions = map[string]func(levycas.Expr) levycas.Expr{
	"sin":    levycas.SinOf,
	"cos":    levycas.CosOf,
	"tan":    levycas.TanOf,
	"arcsin": levycas.ArcSinOf,
	"arccos": levycas.ArcCosOf,
	"arctan": levycas.ArcTanOf,
	"exp":    levycas.ExpOf,
	"ln":     levycas.LnOf,
	"sqrt":   levycas.SqrtOf,
}

type parser struct {
	toks []token
	pos  int
}

// Expr parses input as a single expression. Decimal literals become
// exact rationals (1.5 is 3/2); there is no floating point anywhere.
func Expr(input string) (levycas.Expr, error) {
	toks, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, errors.Errorf("parse: unexpected %q at position %d", p.peek().text, p.peek().pos)
	}
	return e, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) take() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.take()
	if t.kind != kind {
		return t, errors.Errorf("parse: expected %s, got %q at position %d", what, t.text, t.pos)
	}
	return t, nil
}

func (p *parser) parseExpr() (levycas.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.take()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = levycas.AddOf(left, right)
		case tokMinus:
			p.take()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = levycas.SubOf(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (levycas.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokStar:
			p.take()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = levycas.MulOf(left, right)
		case tokSlash:
			p.take()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = levycas.Div(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (levycas.Expr, error) {
	if p.peek().kind == tokMinus {
		p.take()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return levycas.Neg(inner), nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (levycas.Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokCaret {
		return base, nil
	}
	p.take()
	// Exponentiation binds right and admits a sign: x^-2 parses.
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return levycas.PowOf(base, exp), nil
}

func (p *parser) parseAtom() (levycas.Expr, error) {
	t := p.take()
	switch t.kind {
	case tokNumber:
		return parseNumber(t)
	case tokIdent:
		if p.peek().kind == tokLParen {
			fn, ok := functions[t.text]
			if !ok {
				return nil, errors.Errorf("parse: unknown function %q at position %d", t.text, t.pos)
			}
			p.take()
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRParen, "closing parenthesis"); err != nil {
				return nil, err
			}
			return fn(arg), nil
		}
		return levycas.S(t.text), nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "closing parenthesis"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, errors.Errorf("parse: unexpected %q at position %d", t.text, t.pos)
}

func parseNumber(t token) (levycas.Expr, error) {
	if i := strings.IndexByte(t.text, '.'); i >= 0 {
		digits := t.text[:i] + t.text[i+1:]
		num, ok := new(big.Int).SetString(digits, 10)
		if !ok {
			return nil, errors.Errorf("parse: malformed number %q at position %d", t.text, t.pos)
		}
		den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(t.text)-i-1)), nil)
		return levycas.NRat(new(big.Rat).SetFrac(num, den)), nil
	}
	num, ok := new(big.Int).SetString(t.text, 10)
	if !ok {
		return nil, errors.Errorf("parse: malformed number %q at position %d", t.text, t.pos)
	}
	return levycas.NBig(num), nil
}
