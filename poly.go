package levycas

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"
)

// Poly is a univariate polynomial in a designated variable. Coefficients
// are canonical expressions free of that variable, stored sparsely by
// degree; zero coefficients are never stored.
type Poly struct {
	v      string
	coeffs map[int]Expr
}

// NewPoly returns the zero polynomial in v.
func NewPoly(v string) *Poly {
	return &Poly{v: v, coeffs: make(map[int]Expr)}
}

// Var returns the polynomial's variable.
func (p *Poly) Var() string { return p.v }

// IsZero reports whether p is the zero polynomial.
func (p *Poly) IsZero() bool { return len(p.coeffs) == 0 }

// Degree returns the degree of p, or -1 for the zero polynomial.
func (p *Poly) Degree() int {
	deg := -1
	for d := range p.coeffs {
		if d > deg {
			deg = d
		}
	}
	return deg
}

// Coeff returns the coefficient of v^deg, zero when absent.
func (p *Poly) Coeff(deg int) Expr {
	if c, ok := p.coeffs[deg]; ok {
		return c
	}
	return N(0)
}

// LeadingCoeff returns the coefficient of the highest-degree term; it is
// zero only for the zero polynomial.
func (p *Poly) LeadingCoeff() Expr { return p.Coeff(p.Degree()) }

// Clone returns an independent copy of p.
func (p *Poly) Clone() *Poly {
	out := NewPoly(p.v)
	for d, c := range p.coeffs {
		out.coeffs[d] = c
	}
	return out
}

func (p *Poly) setCoeff(deg int, c Expr) {
	if n, ok := c.(*Num); ok && n.IsZero() {
		delete(p.coeffs, deg)
		return
	}
	p.coeffs[deg] = c
}

func (p *Poly) addCoeff(deg int, c Expr) {
	p.setCoeff(deg, AddOf(p.Coeff(deg), c))
}

// Expr rebuilds the canonical expression sum of the polynomial's terms.
func (p *Poly) Expr() Expr {
	terms := make([]Expr, 0, len(p.coeffs))
	for d, c := range p.coeffs {
		terms = append(terms, MulOf(c, PowOf(S(p.v), N(int64(d)))))
	}
	return AddOf(terms...)
}

// String renders the polynomial as its expression form.
func (p *Poly) String() string { return p.Expr().String() }

// PolyFromExpr reads a canonical expression as a polynomial in v. Every
// term must be a product of a coefficient free of v and a non-negative
// integer power of v; anything else yields ErrNotPolynomial.
func PolyFromExpr(e Expr, v string) (*Poly, error) {
	p := NewPoly(v)
	terms := []Expr{e}
	if a, ok := e.(*Add); ok {
		terms = a.terms
	}
	for _, t := range terms {
		deg, coeff, err := monomialIn(t, v)
		if err != nil {
			return nil, err
		}
		p.addCoeff(deg, coeff)
	}
	return p, nil
}

// monomialIn splits a single canonical term into (degree, coefficient).
func monomialIn(t Expr, v string) (int, Expr, error) {
	if freeOf(t, v) {
		return 0, t, nil
	}
	switch t := t.(type) {
	case *Sym:
		return 1, N(1), nil
	case *Pow:
		base, ok := t.base.(*Sym)
		if !ok || base.name != v {
			return 0, nil, errors.Wrapf(ErrNotPolynomial, "power %s", t)
		}
		en, ok := t.exp.(*Num)
		if !ok || !en.IsInteger() || en.IsNegative() {
			return 0, nil, errors.Wrapf(ErrNotPolynomial, "exponent %s", t.exp)
		}
		k, fits := en.Int64()
		if !fits {
			return 0, nil, errors.Wrapf(ErrNotPolynomial, "exponent %s too large", t.exp)
		}
		return int(k), N(1), nil
	case *Mul:
		deg := 0
		coeff := make([]Expr, 0, len(t.factors))
		for _, f := range t.factors {
			if freeOf(f, v) {
				coeff = append(coeff, f)
				continue
			}
			d, _, err := monomialIn(f, v)
			if err != nil {
				return 0, nil, err
			}
			deg += d
		}
		if len(coeff) == 0 {
			return deg, N(1), nil
		}
		return deg, MulOf(coeff...), nil
	}
	return 0, nil, errors.Wrapf(ErrNotPolynomial, "term %s", t)
}

// polyAdd returns p + q. Both must share a variable.
func polyAdd(p, q *Poly) *Poly {
	out := p.Clone()
	for d, c := range q.coeffs {
		out.addCoeff(d, c)
	}
	return out
}

// polyScaleShift returns c * v^shift * p.
func polyScaleShift(p *Poly, c Expr, shift int) *Poly {
	out := NewPoly(p.v)
	for d, pc := range p.coeffs {
		out.setCoeff(d+shift, MulOf(c, pc))
	}
	return out
}

// polyMul returns p * q.
func polyMul(p, q *Poly) *Poly {
	out := NewPoly(p.v)
	for dp, cp := range p.coeffs {
		for dq, cq := range q.coeffs {
			out.addCoeff(dp+dq, MulOf(cp, cq))
		}
	}
	return out
}

// PolyDivide performs polynomial long division of p by q, returning
// quotient and remainder with deg(rem) < deg(q). Dividing by the zero
// polynomial yields ErrDivisionByZero.
func PolyDivide(p, q *Poly) (*Poly, *Poly, error) {
	if q.IsZero() {
		return nil, nil, errors.Wrap(ErrDivisionByZero, "polynomial division")
	}
	quo := NewPoly(p.v)
	rem := p.Clone()
	dq := q.Degree()
	lcInv := PowOf(q.LeadingCoeff(), N(-1))
	for !rem.IsZero() && rem.Degree() >= dq {
		shift := rem.Degree() - dq
		c := MulOf(rem.LeadingCoeff(), lcInv)
		quo.addCoeff(shift, c)
		step := polyScaleShift(q, MulOf(N(-1), c), shift)
		rem = polyAdd(rem, step)
	}
	return quo, rem, nil
}

// PolyGcd returns the monic greatest common divisor of p and q by the
// Euclidean remainder sequence. When either input is zero the other is
// returned unchanged.
func PolyGcd(p, q *Poly) (*Poly, error) {
	if p.IsZero() {
		return q.Clone(), nil
	}
	if q.IsZero() {
		return p.Clone(), nil
	}
	a, b := p.Clone(), q.Clone()
	for !b.IsZero() {
		_, r, err := PolyDivide(a, b)
		if err != nil {
			return nil, err
		}
		a, b = b, r
	}
	return a.Monic(), nil
}

// Monic scales p so its leading coefficient is one. The zero polynomial
// is returned unchanged.
func (p *Poly) Monic() *Poly {
	if p.IsZero() {
		return p.Clone()
	}
	return polyScaleShift(p, PowOf(p.LeadingCoeff(), N(-1)), 0)
}

// ratCoeffs returns the coefficients as a dense rational vector indexed
// by degree. A symbolic coefficient yields ErrNotPolynomial.
func (p *Poly) ratCoeffs() ([]*big.Rat, error) {
	out := make([]*big.Rat, p.Degree()+1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	for d, c := range p.coeffs {
		n, ok := c.(*Num)
		if !ok {
			return nil, errors.Wrapf(ErrNotPolynomial, "symbolic coefficient %s of %s^%d", c, p.v, d)
		}
		out[d].Set(n.val)
	}
	return out, nil
}

// evalRat evaluates a dense rational coefficient vector at r by Horner's
// rule.
func evalRat(coeffs []*big.Rat, r *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Mul(acc, r)
		acc.Add(acc, coeffs[i])
	}
	return acc
}

// deflateRoot divides a dense coefficient vector by (x - r), assuming r
// is a root, and returns the quotient vector.
func deflateRoot(coeffs []*big.Rat, r *big.Rat) []*big.Rat {
	n := len(coeffs) - 1
	out := make([]*big.Rat, n)
	carry := new(big.Rat)
	for i := n; i >= 1; i-- {
		out[i-1] = new(big.Rat).Set(carry.Add(carry.Mul(carry, r), coeffs[i]))
	}
	return out
}

// FactorPoly splits a rational-coefficient polynomial into a constant and
// a list of primitive integer-coefficient factors, extracting every
// rational root by the rational root theorem. The residual factor after
// root extraction, if any, is returned unfactored; for quadratics that
// residual is irreducible over the rationals.
func FactorPoly(p *Poly) (Expr, []*Poly, error) {
	if p.IsZero() {
		return nil, nil, errors.Wrap(ErrInvalidDomain, "factor of zero polynomial")
	}
	coeffs, err := p.ratCoeffs()
	if err != nil {
		return nil, nil, err
	}
	if p.Degree() == 0 {
		return NRat(coeffs[0]), nil, nil
	}

	constant := new(big.Rat).Set(ratOne)
	var factors []*Poly

	// Pull out powers of the bare variable first.
	for len(coeffs) > 1 && coeffs[0].Sign() == 0 {
		f := NewPoly(p.v)
		f.setCoeff(1, N(1))
		factors = append(factors, f)
		coeffs = coeffs[1:]
	}

	if len(coeffs) > 1 {
		coeffs, err = extractRationalRoots(p.v, coeffs, constant, &factors)
		if err != nil {
			return nil, nil, err
		}
	}

	switch len(coeffs) {
	case 1:
		constant.Mul(constant, coeffs[0])
	default:
		residual, content := primitivePart(p.v, coeffs)
		constant.Mul(constant, content)
		factors = append(factors, residual)
	}

	sort.Slice(factors, func(i, j int) bool {
		return Compare(factors[i].Expr(), factors[j].Expr()) < 0
	})
	return NRat(constant), factors, nil
}

// extractRationalRoots repeatedly deflates roots a/b found by the
// rational root theorem, recording each as the primitive factor b*v - a
// and dividing the running constant by b.
func extractRationalRoots(v string, coeffs []*big.Rat, constant *big.Rat, factors *[]*Poly) ([]*big.Rat, error) {
	ints, content := integerCoeffs(coeffs)
	constant.Mul(constant, content)
	work := make([]*big.Rat, len(ints))
	for i, c := range ints {
		work[i] = new(big.Rat).SetInt(c)
	}

	numDivs, err := divisors(ints[0])
	if err != nil {
		return nil, err
	}
	denDivs, err := divisors(ints[len(ints)-1])
	if err != nil {
		return nil, err
	}

	for _, a := range numDivs {
		for _, b := range denDivs {
			if GCD(a, b).Cmp(bigOne) != 0 {
				continue
			}
			for _, sign := range []int64{1, -1} {
				root := new(big.Rat).SetFrac(new(big.Int).Mul(a, big.NewInt(sign)), b)
				for len(work) > 1 && evalRat(work, root).Sign() == 0 {
					work = deflateRoot(work, root)
					f := NewPoly(v)
					f.setCoeff(1, NBig(b))
					f.setCoeff(0, NBig(new(big.Int).Mul(a, big.NewInt(-sign))))
					*factors = append(*factors, f)
					constant.Quo(constant, new(big.Rat).SetInt(b))
				}
			}
		}
	}
	return work, nil
}

// integerCoeffs scales a rational vector to coprime integers with a
// positive leading entry, returning the vector and the rational content
// that was factored out.
func integerCoeffs(coeffs []*big.Rat) ([]*big.Int, *big.Rat) {
	lcm := new(big.Int).Set(bigOne)
	for _, c := range coeffs {
		g := GCD(lcm, c.Denom())
		lcm.Div(new(big.Int).Mul(lcm, c.Denom()), g)
	}
	ints := make([]*big.Int, len(coeffs))
	gcd := new(big.Int)
	for i, c := range coeffs {
		scaled := new(big.Int).Mul(c.Num(), new(big.Int).Div(lcm, c.Denom()))
		ints[i] = scaled
		gcd = GCD(gcd, scaled)
	}
	if gcd.Sign() == 0 {
		gcd.Set(bigOne)
	}
	if ints[len(ints)-1].Sign() < 0 {
		gcd.Neg(gcd)
	}
	for i := range ints {
		ints[i] = new(big.Int).Quo(ints[i], gcd)
	}
	content := new(big.Rat).SetFrac(gcd, lcm)
	return ints, content
}

// primitivePart converts a rational residual vector back into a primitive
// integer-coefficient polynomial plus its rational content.
func primitivePart(v string, coeffs []*big.Rat) (*Poly, *big.Rat) {
	ints, content := integerCoeffs(coeffs)
	poly := NewPoly(v)
	for d, c := range ints {
		poly.setCoeff(d, NBig(c))
	}
	return poly, content
}

// FactorPolynomial factors e as a polynomial in v, returning the constant
// multiplier and the factor expressions.
func FactorPolynomial(e Expr, v string) (Expr, []Expr, error) {
	p, err := PolyFromExpr(Expand(e), v)
	if err != nil {
		return nil, nil, err
	}
	constant, polys, err := FactorPoly(p)
	if err != nil {
		return nil, nil, err
	}
	out := make([]Expr, len(polys))
	for i, f := range polys {
		out[i] = f.Expr()
	}
	return constant, out, nil
}
