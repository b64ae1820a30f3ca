package levycas

import "strings"

// String renders e with infix operators.
func String(e Expr) string { return e.String() }

// LaTeX renders e as LaTeX math.
func LaTeX(e Expr) string { return e.LaTeX() }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (s *Sym) String() string { return s.name }

func (a *Add) String() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (m *Mul) String() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, ok := f.(*Add); ok {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (p *Pow) String() string {
	base := p.base.String()
	if needsBaseParens(p.base) {
		base = "(" + base + ")"
	}
	exp := p.exp.String()
	if needsExpParens(p.exp) {
		exp = "(" + exp + ")"
	}
	return base + "^" + exp
}

// needsBaseParens reports whether a base is ambiguous under the caret,
// such as (x + 1)^2, (-2)^x or (1/2)^x.
func needsBaseParens(e Expr) bool {
	switch t := e.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return t.IsNegative() || !t.IsInteger()
	}
	return false
}

// needsExpParens reports whether an exponent is ambiguous without parens,
// such as x^(1/2) or x^(y + 1).
func needsExpParens(e Expr) bool {
	switch t := e.(type) {
	case *Num:
		return !t.IsInteger()
	case *Sym:
		return false
	case *Func:
		return false
	}
	return true
}

func (f *Func) String() string {
	return f.fn.String() + "(" + f.arg.String() + ")"
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	num := n.val.Num()
	if num.Sign() < 0 {
		pos := num.String()[1:]
		return "-\\frac{" + pos + "}{" + n.val.Denom().String() + "}"
	}
	return "\\frac{" + num.String() + "}{" + n.val.Denom().String() + "}"
}

func (s *Sym) LaTeX() string { return s.name }

func (a *Add) LaTeX() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.LaTeX()
	}
	return strings.Join(parts, " + ")
}

func (m *Mul) LaTeX() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, ok := f.(*Add); ok {
			parts[i] = "\\left(" + f.LaTeX() + "\\right)"
		} else {
			parts[i] = f.LaTeX()
		}
	}
	return strings.Join(parts, " \\cdot ")
}

func (p *Pow) LaTeX() string {
	base := p.base.LaTeX()
	if needsBaseParens(p.base) {
		base = "\\left(" + base + "\\right)"
	}
	return base + "^{" + p.exp.LaTeX() + "}"
}

func (f *Func) LaTeX() string {
	arg := "\\left(" + f.arg.LaTeX() + "\\right)"
	switch f.fn {
	case FuncExp:
		return "e^{" + f.arg.LaTeX() + "}"
	case FuncLn:
		return "\\ln" + arg
	default:
		return "\\" + f.fn.String() + arg
	}
}
