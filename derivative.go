package levycas

import "github.com/pkg/errors"

// Derivative differentiates e with respect to the symbol v. The result
// is canonical, so cancellations such as x * x^-1 collapse immediately.
func Derivative(e Expr, v string) (Expr, error) {
	switch t := e.(type) {
	case *Num:
		return N(0), nil

	case *Sym:
		if t.name == v {
			return N(1), nil
		}
		return N(0), nil

	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			d, err := Derivative(term, v)
			if err != nil {
				return nil, err
			}
			terms[i] = d
		}
		return AddOf(terms...), nil

	case *Mul:
		// Generalized product rule: one summand per factor.
		sum := make([]Expr, 0, len(t.factors))
		for i := range t.factors {
			d, err := Derivative(t.factors[i], v)
			if err != nil {
				return nil, err
			}
			part := make([]Expr, len(t.factors))
			copy(part, t.factors)
			part[i] = d
			sum = append(sum, MulOf(part...))
		}
		return AddOf(sum...), nil

	case *Pow:
		db, err := Derivative(t.base, v)
		if err != nil {
			return nil, err
		}
		if freeOf(t.exp, v) {
			// d/dv b^w = w * b^(w-1) * b'
			return MulOf(t.exp, PowOf(t.base, AddOf(t.exp, N(-1))), db), nil
		}
		de, err := Derivative(t.exp, v)
		if err != nil {
			return nil, err
		}
		if freeOf(t.base, v) {
			// d/dv b^w = b^w * ln(b) * w'
			return MulOf(e, LnOf(t.base), de), nil
		}
		// d/dv b^w = b^w * (w' ln(b) + w b'/b)
		return MulOf(e, AddOf(
			MulOf(de, LnOf(t.base)),
			MulOf(t.exp, db, PowOf(t.base, N(-1))),
		)), nil

	case *Func:
		da, err := Derivative(t.arg, v)
		if err != nil {
			return nil, err
		}
		var outer Expr
		switch t.fn {
		case FuncSin:
			outer = CosOf(t.arg)
		case FuncCos:
			outer = Neg(SinOf(t.arg))
		case FuncTan:
			outer = AddOf(N(1), PowOf(TanOf(t.arg), N(2)))
		case FuncExp:
			outer = e
		case FuncLn:
			outer = PowOf(t.arg, N(-1))
		case FuncArcSin:
			outer = PowOf(SubOf(N(1), PowOf(t.arg, N(2))), F(-1, 2))
		case FuncArcCos:
			outer = Neg(PowOf(SubOf(N(1), PowOf(t.arg, N(2))), F(-1, 2)))
		case FuncArcTan:
			outer = PowOf(AddOf(N(1), PowOf(t.arg, N(2))), N(-1))
		default:
			return nil, errors.Wrapf(ErrNotDifferentiable, "function %s", t.fn)
		}
		return MulOf(outer, da), nil
	}
	return nil, errors.Wrapf(ErrNotDifferentiable, "expression %s", e)
}
