package levycas

import (
	"math/big"

	"github.com/pkg/errors"
)

// DefaultIntegrateDepth bounds the recursion of the integration
// strategies. Every technique that re-enters the integrator does so with
// one budget unit less, except the by-parts recurrence, whose strictly
// decreasing polynomial degree already guarantees termination.
const DefaultIntegrateDepth = 16

// Integrate returns an antiderivative of e with respect to v, without a
// constant of integration. It tries, in order: linearity, the table of
// elementary forms, u-substitution, integration by parts, rational
// function decomposition, trigonometric power reduction, and finally
// expansion followed by a retry. ErrNonElementary is returned when every
// technique fails.
func Integrate(e Expr, v string) (Expr, error) {
	return IntegrateDepth(e, v, DefaultIntegrateDepth)
}

// IntegrateDepth is Integrate with an explicit recursion budget.
func IntegrateDepth(e Expr, v string, depth int) (Expr, error) {
	if depth <= 0 {
		return nil, errors.Wrapf(ErrNonElementary, "budget exhausted on %s", e)
	}
	if freeOf(e, v) {
		return MulOf(e, S(v)), nil
	}
	if r, ok := integrateSum(e, v, depth); ok {
		return r, nil
	}
	if r, ok := integrateConstFactor(e, v, depth); ok {
		return r, nil
	}
	if r, ok := integrateTable(e, v); ok {
		return r, nil
	}
	if r, ok := integrateSubstitution(e, v, depth); ok {
		return r, nil
	}
	if r, ok := integrateByParts(e, v, depth); ok {
		return r, nil
	}
	if r, ok := integrateRational(e, v, depth); ok {
		return r, nil
	}
	if r, ok := integrateTrigReduce(e, v, depth); ok {
		return r, nil
	}
	if ex := Expand(e); !ex.Equal(e) {
		if r, err := IntegrateDepth(ex, v, depth-1); err == nil {
			return r, nil
		}
	}
	return nil, errors.Wrapf(ErrNonElementary, "integrate %s with respect to %s", e, v)
}

// integrateSum integrates a sum term by term.
func integrateSum(e Expr, v string, depth int) (Expr, bool) {
	a, ok := e.(*Add)
	if !ok {
		return nil, false
	}
	parts := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		r, err := IntegrateDepth(t, v, depth-1)
		if err != nil {
			return nil, false
		}
		parts[i] = r
	}
	return AddOf(parts...), true
}

// integrateConstFactor pulls factors free of v out of a product.
func integrateConstFactor(e Expr, v string, depth int) (Expr, bool) {
	m, ok := e.(*Mul)
	if !ok {
		return nil, false
	}
	free := make([]Expr, 0, len(m.factors))
	dep := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		if freeOf(f, v) {
			free = append(free, f)
		} else {
			dep = append(dep, f)
		}
	}
	if len(free) == 0 {
		return nil, false
	}
	inner, err := IntegrateDepth(MulOf(dep...), v, depth-1)
	if err != nil {
		return nil, false
	}
	return MulOf(MulOf(free...), inner), true
}

// integrateTable handles the elementary forms directly: powers of a
// linear argument, constants raised to a linear exponent, and each known
// function of a linear argument.
func integrateTable(e Expr, v string) (Expr, bool) {
	x := S(v)
	switch t := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(x, N(2))), true

	case *Pow:
		if en, ok := t.exp.(*Num); ok {
			a, _, linear := linearForm(t.base, v)
			if linear {
				if en.val.Cmp(big.NewRat(-1, 1)) == 0 {
					return Div(LnOf(t.base), a), true
				}
				np1 := NRat(new(big.Rat).Add(en.val, ratOne))
				return Div(PowOf(t.base, np1), MulOf(a, np1)), true
			}
		}
		if freeOf(t.base, v) {
			if c, _, linear := linearForm(t.exp, v); linear {
				// b^(cx+d) integrates to itself over c*ln(b).
				return Div(e, MulOf(c, LnOf(t.base))), true
			}
		}

	case *Func:
		a, _, linear := linearForm(t.arg, v)
		if !linear {
			return nil, false
		}
		u := t.arg
		inv := PowOf(a, N(-1))
		switch t.fn {
		case FuncSin:
			return MulOf(N(-1), inv, CosOf(u)), true
		case FuncCos:
			return MulOf(inv, SinOf(u)), true
		case FuncTan:
			return MulOf(N(-1), inv, LnOf(CosOf(u))), true
		case FuncExp:
			return MulOf(inv, e), true
		case FuncLn:
			return MulOf(inv, SubOf(MulOf(u, LnOf(u)), u)), true
		case FuncArcSin:
			return MulOf(inv, AddOf(MulOf(u, ArcSinOf(u)), SqrtOf(SubOf(N(1), PowOf(u, N(2)))))), true
		case FuncArcCos:
			return MulOf(inv, SubOf(MulOf(u, ArcCosOf(u)), SqrtOf(SubOf(N(1), PowOf(u, N(2)))))), true
		case FuncArcTan:
			return MulOf(inv, SubOf(
				MulOf(u, ArcTanOf(u)),
				MulOf(F(1, 2), LnOf(AddOf(N(1), PowOf(u, N(2))))),
			)), true
		}
	}
	return nil, false
}

// trialSubstitutions collects the candidate inner expressions for
// u-substitution: function applications, their arguments, and the bases
// and exponents of powers, in traversal order without duplicates.
func trialSubstitutions(e Expr) []Expr {
	var out []Expr
	seen := make(map[string]struct{})
	add := func(c Expr) {
		key := c.String()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	var walk func(Expr)
	walk = func(e Expr) {
		switch t := e.(type) {
		case *Add:
			for _, term := range t.terms {
				walk(term)
			}
		case *Mul:
			for _, f := range t.factors {
				walk(f)
			}
		case *Pow:
			add(t.base)
			add(t.exp)
			walk(t.base)
			walk(t.exp)
		case *Func:
			add(t)
			add(t.arg)
			walk(t.arg)
		}
	}
	walk(e)
	return out
}

// integrateSubstitution tries u = g for each candidate g: when e / g'
// rewritten in u no longer mentions v, the inner integral is taken in u
// and g is substituted back.
func integrateSubstitution(e Expr, v string, depth int) (Expr, bool) {
	for _, g := range trialSubstitutions(e) {
		if freeOf(g, v) {
			continue
		}
		if s, ok := g.(*Sym); ok && s.name == v {
			continue
		}
		dg, err := Derivative(g, v)
		if err != nil {
			continue
		}
		if n, ok := dg.(*Num); ok && n.IsZero() {
			continue
		}
		u := freshSymbol(e, v)
		candidate := replaceExpr(MulOf(e, PowOf(dg, N(-1))), g, S(u))
		if !freeOf(candidate, v) {
			continue
		}
		inner, err := IntegrateDepth(candidate, u, depth-1)
		if err != nil {
			continue
		}
		return Substitute(inner, u, g), true
	}
	return nil, false
}

// integrateByParts reduces x^n * f(a*x+b) for f in {exp, sin, cos} by the
// standard degree-lowering recurrences, and handles x^n * ln(x) in closed
// form. Constant factors are gone by the time this runs, so only
// two-factor products are considered. The recurrence re-enters the
// integrator at the same depth: n drops by one per step, so it
// terminates regardless of the budget, and a high degree must not
// exhaust the search.
func integrateByParts(e Expr, v string, depth int) (Expr, bool) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) != 2 {
		return nil, false
	}
	var n int64
	var fn *Func
	for _, perm := range [2][2]Expr{{m.factors[0], m.factors[1]}, {m.factors[1], m.factors[0]}} {
		k, ok := polyPowerOf(perm[0], v)
		if !ok {
			continue
		}
		f, ok := perm[1].(*Func)
		if !ok {
			continue
		}
		n, fn = k, f
		break
	}
	if fn == nil {
		return nil, false
	}

	x := S(v)
	xn := PowOf(x, N(n))
	if fn.fn == FuncLn {
		if !fn.arg.Equal(x) {
			return nil, false
		}
		np1 := N(n + 1)
		lead := MulOf(PowOf(np1, N(-1)), PowOf(x, np1), LnOf(x))
		tail := MulOf(N(-1), PowOf(np1, N(-2)), PowOf(x, np1))
		return AddOf(lead, tail), true
	}

	a, _, linear := linearForm(fn.arg, v)
	if !linear {
		return nil, false
	}
	u := fn.arg
	inv := PowOf(a, N(-1))
	nOverA := MulOf(N(n), inv)
	switch fn.fn {
	case FuncExp:
		rest, err := IntegrateDepth(MulOf(PowOf(x, N(n-1)), ExpOf(u)), v, depth)
		if err != nil {
			return nil, false
		}
		return AddOf(MulOf(xn, inv, ExpOf(u)), MulOf(N(-1), nOverA, rest)), true
	case FuncSin:
		rest, err := IntegrateDepth(MulOf(PowOf(x, N(n-1)), CosOf(u)), v, depth)
		if err != nil {
			return nil, false
		}
		return AddOf(MulOf(N(-1), xn, inv, CosOf(u)), MulOf(nOverA, rest)), true
	case FuncCos:
		rest, err := IntegrateDepth(MulOf(PowOf(x, N(n-1)), SinOf(u)), v, depth)
		if err != nil {
			return nil, false
		}
		return AddOf(MulOf(xn, inv, SinOf(u)), MulOf(N(-1), nOverA, rest)), true
	}
	return nil, false
}

// polyPowerOf matches e as v^n for a positive integer n.
func polyPowerOf(e Expr, v string) (int64, bool) {
	switch t := e.(type) {
	case *Sym:
		if t.name == v {
			return 1, true
		}
	case *Pow:
		base, ok := t.base.(*Sym)
		if !ok || base.name != v {
			return 0, false
		}
		en, ok := t.exp.(*Num)
		if !ok {
			return 0, false
		}
		if k, fits := en.Int64(); fits && k >= 1 {
			return k, true
		}
	}
	return 0, false
}

// integrateRational handles quotients of polynomials: improper fractions
// are divided out first, then the proper part is decomposed into partial
// fractions over the denominator's linear factors, falling back to the
// closed quadratic forms when the denominator does not split.
func integrateRational(e Expr, v string, depth int) (Expr, bool) {
	numE, denE := NumDenom(e)
	if dn, ok := denE.(*Num); ok && dn.IsOne() {
		return nil, false
	}
	den, err := PolyFromExpr(Expand(denE), v)
	if err != nil || den.Degree() < 1 {
		return nil, false
	}
	num, err := PolyFromExpr(Expand(numE), v)
	if err != nil {
		return nil, false
	}
	if num.Degree() >= den.Degree() {
		quo, rem, err := PolyDivide(num, den)
		if err != nil {
			return nil, false
		}
		head, err := IntegrateDepth(quo.Expr(), v, depth-1)
		if err != nil {
			return nil, false
		}
		if rem.IsZero() {
			return head, true
		}
		tail, ok := integrateProperRational(rem, den, v)
		if !ok {
			return nil, false
		}
		return AddOf(head, tail), true
	}
	return integrateProperRational(num, den, v)
}

func integrateProperRational(num, den *Poly, v string) (Expr, bool) {
	if r, ok := rationalViaPartialFractions(num, den, v); ok {
		return r, true
	}
	if den.Degree() == 2 {
		return integrateOverQuadratic(num, den, v)
	}
	return nil, false
}

// rationalViaPartialFractions splits the denominator into linear factors
// and integrates each simple pole to a logarithm.
func rationalViaPartialFractions(num, den *Poly, v string) (Expr, bool) {
	k0, facs, err := FactorPoly(den)
	if err != nil || len(facs) == 0 {
		return nil, false
	}
	facExprs := make([]Expr, len(facs))
	for i, f := range facs {
		if f.Degree() != 1 {
			return nil, false
		}
		facExprs[i] = f.Expr()
	}
	consts, err := UnivariatePartialFractions(num.Expr(), facExprs, v)
	if err != nil {
		return nil, false
	}
	invK0 := PowOf(k0, N(-1))
	terms := make([]Expr, len(facs))
	for i, f := range facs {
		terms[i] = MulOf(consts[i], invK0, PowOf(f.Coeff(1), N(-1)), LnOf(facExprs[i]))
	}
	return AddOf(terms...), true
}

// integrateOverQuadratic integrates (r*x + s) / (a*x^2 + b*x + c) for
// numeric coefficients. The linear part of the numerator contributes a
// logarithm of the denominator; the constant part contributes an arctan
// (negative discriminant), a reciprocal (zero discriminant) or a
// logarithmic form (positive discriminant).
func integrateOverQuadratic(num, den *Poly, v string) (Expr, bool) {
	dc, err := den.ratCoeffs()
	if err != nil || len(dc) != 3 {
		return nil, false
	}
	nc, err := num.ratCoeffs()
	if err != nil || num.Degree() > 1 {
		return nil, false
	}
	a, b := dc[2], dc[1]
	r := new(big.Rat)
	s := new(big.Rat)
	if len(nc) > 1 {
		r.Set(nc[1])
	}
	if len(nc) > 0 {
		s.Set(nc[0])
	}

	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(new(big.Rat).Mul(big.NewRat(4, 1), a), dc[0]))

	var parts []Expr
	if r.Sign() != 0 {
		// alpha*(2ax+b) + beta reproduces r*x + s.
		alpha := new(big.Rat).Quo(r, new(big.Rat).Mul(big.NewRat(2, 1), a))
		beta := new(big.Rat).Sub(s, new(big.Rat).Mul(alpha, b))
		parts = append(parts, MulOf(NRat(alpha), LnOf(den.Expr())))
		s = beta
	}
	if s.Sign() != 0 {
		tail, ok := constOverQuadratic(s, a, b, disc, den, v)
		if !ok {
			return nil, false
		}
		parts = append(parts, tail)
	}
	if len(parts) == 0 {
		return N(0), true
	}
	return AddOf(parts...), true
}

// constOverQuadratic integrates k / (a*x^2 + b*x + c) given the
// discriminant of the denominator.
func constOverQuadratic(k, a, b, disc *big.Rat, den *Poly, v string) (Expr, bool) {
	shifted := AddOf(MulOf(NRat(new(big.Rat).Mul(big.NewRat(2, 1), a)), S(v)), NRat(b))
	switch disc.Sign() {
	case 0:
		return MulOf(NRat(k), N(-2), PowOf(shifted, N(-1))), true
	case -1:
		root := SqrtOf(NRat(new(big.Rat).Neg(disc)))
		invRoot := PowOf(root, N(-1))
		return MulOf(NRat(k), N(2), invRoot, ArcTanOf(MulOf(invRoot, shifted))), true
	default:
		root := SqrtOf(NRat(disc))
		invRoot := PowOf(root, N(-1))
		ratio := MulOf(SubOf(shifted, root), PowOf(AddOf(shifted, root), N(-1)))
		return MulOf(NRat(k), invRoot, LnOf(ratio)), true
	}
}

// integrateTrigReduce applies the power-reduction and product-to-sum
// identities for sine and cosine, then retries.
func integrateTrigReduce(e Expr, v string, depth int) (Expr, bool) {
	reduced := trigReduce(e)
	if reduced.Equal(e) {
		return nil, false
	}
	r, err := IntegrateDepth(reduced, v, depth-1)
	if err != nil {
		return nil, false
	}
	return r, true
}

// trigReduce lowers powers of sin and cos by one double-angle step and
// contracts products of sines and cosines to sums of single functions of
// the combined arguments. Repeated application, driven by the
// integrator's retry loop, reduces any power and any mixed-angle
// product.
func trigReduce(e Expr) Expr {
	switch t := e.(type) {
	case *Num, *Sym:
		return e
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			terms[i] = trigReduce(term)
		}
		return AddOf(terms...)
	case *Func:
		return FuncOf(t.fn, trigReduce(t.arg))
	case *Pow:
		base := trigReduce(t.base)
		exp := trigReduce(t.exp)
		if f, ok := base.(*Func); ok && (f.fn == FuncSin || f.fn == FuncCos) {
			if en, isNum := exp.(*Num); isNum {
				if k, fits := en.Int64(); fits && k >= 2 {
					double := CosOf(MulOf(N(2), f.arg))
					var sq Expr
					if f.fn == FuncSin {
						sq = MulOf(F(1, 2), SubOf(N(1), double))
					} else {
						sq = MulOf(F(1, 2), AddOf(N(1), double))
					}
					return MulOf(PowOf(base, N(k-2)), sq)
				}
			}
		}
		return PowOf(base, exp)
	case *Mul:
		factors := make([]Expr, len(t.factors))
		for i, f := range t.factors {
			factors[i] = trigReduce(f)
		}
		for i, fi := range factors {
			a, ok := fi.(*Func)
			if !ok || (a.fn != FuncSin && a.fn != FuncCos) {
				continue
			}
			for j := i + 1; j < len(factors); j++ {
				b, ok := factors[j].(*Func)
				if !ok || (b.fn != FuncSin && b.fn != FuncCos) {
					continue
				}
				rest := make([]Expr, 0, len(factors)-1)
				for k, f := range factors {
					if k != i && k != j {
						rest = append(rest, f)
					}
				}
				return MulOf(append(rest, trigProductToSum(a, b))...)
			}
		}
		return MulOf(factors...)
	}
	return e
}

// trigProductToSum contracts a product of two sines and/or cosines:
//
//	sin(A)*sin(B) = (cos(A-B) - cos(A+B)) / 2
//	cos(A)*cos(B) = (cos(A-B) + cos(A+B)) / 2
//	sin(A)*cos(B) = (sin(A+B) + sin(A-B)) / 2
//
// The difference argument is kept in positive leading form using the
// parity of the outer function.
func trigProductToSum(a, b *Func) Expr {
	if a.fn == FuncCos && b.fn == FuncSin {
		a, b = b, a
	}
	sum := AddOf(a.arg, b.arg)
	diff := SubOf(a.arg, b.arg)
	half := F(1, 2)
	switch {
	case a.fn == FuncSin && b.fn == FuncSin:
		return AddOf(MulOf(half, cosSigned(diff)), MulOf(F(-1, 2), CosOf(sum)))
	case a.fn == FuncCos && b.fn == FuncCos:
		return AddOf(MulOf(half, cosSigned(diff)), MulOf(half, CosOf(sum)))
	default:
		return AddOf(MulOf(half, SinOf(sum)), MulOf(half, sinSigned(diff)))
	}
}

// negatedTerm matches a term whose leading rational coefficient is
// negative and returns the term with the sign flipped.
func negatedTerm(e Expr) (Expr, bool) {
	switch t := e.(type) {
	case *Num:
		if t.IsNegative() {
			return NRat(new(big.Rat).Neg(t.val)), true
		}
	case *Mul:
		if c, ok := t.factors[0].(*Num); ok && c.IsNegative() {
			flipped := append([]Expr{NRat(new(big.Rat).Neg(c.val))}, t.factors[1:]...)
			return MulOf(flipped...), true
		}
	}
	return nil, false
}

// sinSigned is sin(e) with the odd symmetry applied to a negated
// argument, so contracted arguments come out in positive leading form.
func sinSigned(e Expr) Expr {
	if n, ok := negatedTerm(e); ok {
		return Neg(SinOf(n))
	}
	return SinOf(e)
}

// cosSigned is cos(e) with the even symmetry applied likewise.
func cosSigned(e Expr) Expr {
	if n, ok := negatedTerm(e); ok {
		return CosOf(n)
	}
	return CosOf(e)
}
