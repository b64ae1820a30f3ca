package parse

import (
	"strings"

	"github.com/pkg/errors"

	levycas "github.com/ajlevy246/LevyCAS"
)

// Env holds the variable bindings of a script session. Bindings resolve
// eagerly: the right-hand side of an assignment is fully substituted
// before being stored, so later rebindings never change earlier ones.
type Env struct {
	bindings map[string]levycas.Expr
	depth    int
}

// NewEnv returns an empty session with the given integration depth
// budget; a non-positive budget selects the default.
func NewEnv(depth int) *Env {
	if depth <= 0 {
		depth = levycas.DefaultIntegrateDepth
	}
	return &Env{bindings: make(map[string]levycas.Expr), depth: depth}
}

// Lookup returns the binding for name, if any.
func (env *Env) Lookup(name string) (levycas.Expr, bool) {
	e, ok := env.bindings[name]
	return e, ok
}

// resolve substitutes every binding into e.
func (env *Env) resolve(e levycas.Expr) levycas.Expr {
	for _, name := range levycas.FreeSymbols(e) {
		if bound, ok := env.bindings[name]; ok {
			e = levycas.Substitute(e, name, bound)
		}
	}
	return e
}

// Exec runs one statement and returns its printable result. Supported
// statements:
//
//	name = expr
//	print expr
//	\derivate expr, var
//	\integrate expr, var
//	\eval expr
//	expr
//
// A bare expression or \eval prints the canonical form. Assignments
// print nothing.
func (env *Env) Exec(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil
	}
	toks, err := tokenize(line)
	if err != nil {
		return "", err
	}
	p := &parser{toks: toks}

	if toks[0].kind == tokCommand {
		return env.execCommand(p)
	}
	if toks[0].kind == tokIdent && toks[0].text == "print" && toks[1].kind != tokEquals && toks[1].kind != tokEOF {
		p.take()
		e, err := p.parseExpr()
		if err != nil {
			return "", err
		}
		if p.peek().kind != tokEOF {
			return "", errors.Errorf("parse: unexpected %q after expression", p.peek().text)
		}
		return env.resolve(e).String(), nil
	}
	if toks[0].kind == tokIdent && toks[1].kind == tokEquals {
		name := p.take().text
		p.take()
		rhs, err := p.parseExpr()
		if err != nil {
			return "", err
		}
		if p.peek().kind != tokEOF {
			return "", errors.Errorf("parse: unexpected %q after assignment", p.peek().text)
		}
		env.bindings[name] = env.resolve(rhs)
		return "", nil
	}

	e, err := p.parseExpr()
	if err != nil {
		return "", err
	}
	if p.peek().kind != tokEOF {
		return "", errors.Errorf("parse: unexpected %q after expression", p.peek().text)
	}
	return env.resolve(e).String(), nil
}

func (env *Env) execCommand(p *parser) (string, error) {
	cmd := p.take().text
	arg, err := p.parseExpr()
	if err != nil {
		return "", err
	}
	arg = env.resolve(arg)

	switch cmd {
	case "\\eval":
		if p.peek().kind != tokEOF {
			return "", errors.Errorf("parse: unexpected %q after \\eval", p.peek().text)
		}
		return arg.String(), nil
	case "\\derivate", "\\integrate":
		if _, err := p.expect(tokComma, "comma before variable"); err != nil {
			return "", err
		}
		vtok, err := p.expect(tokIdent, "variable name")
		if err != nil {
			return "", err
		}
		if p.peek().kind != tokEOF {
			return "", errors.Errorf("parse: unexpected %q after variable", p.peek().text)
		}
		var result levycas.Expr
		if cmd == "\\derivate" {
			result, err = levycas.Derivative(arg, vtok.text)
		} else {
			result, err = levycas.IntegrateDepth(arg, vtok.text, env.depth)
		}
		if err != nil {
			return "", err
		}
		return result.String(), nil
	}
	return "", errors.Errorf("parse: unknown command %q", cmd)
}
