package levycas

import (
	"math/big"

	"github.com/pkg/errors"
)

// Integer powers up to this bound are expanded by repeated
// multiplication; larger ones are left in power form.
const maxExpandPow = 32

// Expand rewrites e with all products distributed over sums and small
// integer powers of sums multiplied out. The result is canonical.
func Expand(e Expr) Expr {
	switch t := e.(type) {
	case *Num, *Sym:
		return e
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			terms[i] = Expand(term)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(t.factors))
		for i, f := range t.factors {
			factors[i] = Expand(f)
		}
		return expandProduct(factors)
	case *Pow:
		base := Expand(t.base)
		exp := Expand(t.exp)
		if en, ok := exp.(*Num); ok {
			if k, fits := en.Int64(); fits && k >= 2 && k <= maxExpandPow {
				if _, isAdd := base.(*Add); isAdd {
					acc := base
					for i := int64(1); i < k; i++ {
						acc = expandProduct([]Expr{acc, base})
					}
					return acc
				}
			}
		}
		return PowOf(base, exp)
	case *Func:
		return FuncOf(t.fn, Expand(t.arg))
	}
	return e
}

// expandProduct distributes a product over any sum among its factors.
func expandProduct(factors []Expr) Expr {
	for i, f := range factors {
		sum, ok := f.(*Add)
		if !ok {
			continue
		}
		rest := make([]Expr, 0, len(factors)-1)
		rest = append(rest, factors[:i]...)
		rest = append(rest, factors[i+1:]...)
		terms := make([]Expr, len(sum.terms))
		for j, term := range sum.terms {
			terms[j] = expandProduct(append([]Expr{term}, rest...))
		}
		return AddOf(terms...)
	}
	return MulOf(factors...)
}

// NumDenom splits e into numerator and denominator. Factors carrying a
// negative numeric exponent and the denominators of rational constants
// move below the bar; everything else stays above it.
func NumDenom(e Expr) (Expr, Expr) {
	switch t := e.(type) {
	case *Num:
		return NBig(t.val.Num()), NBig(t.val.Denom())
	case *Pow:
		if en, ok := t.exp.(*Num); ok && en.IsNegative() {
			return N(1), PowOf(t.base, NRat(new(big.Rat).Neg(en.val)))
		}
		return e, N(1)
	case *Mul:
		nums := make([]Expr, 0, len(t.factors))
		dens := make([]Expr, 0, len(t.factors))
		for _, f := range t.factors {
			n, d := NumDenom(f)
			nums = append(nums, n)
			dens = append(dens, d)
		}
		return MulOf(nums...), MulOf(dens...)
	}
	return e, N(1)
}

// linearForm matches e as a*v + b with a and b free of v and a nonzero.
func linearForm(e Expr, v string) (a, b Expr, ok bool) {
	p, err := PolyFromExpr(e, v)
	if err != nil || p.Degree() != 1 {
		return nil, nil, false
	}
	return p.Coeff(1), p.Coeff(0), true
}

// Rationalize combines sums of quotients over a common denominator,
// recursively: m/r + n/s becomes (m*s + n*r) / (r*s) with the numerator
// expanded. Denominator factors shared between the operands appear once
// in the result, detected by polynomial gcd.
func Rationalize(e Expr) Expr {
	switch t := e.(type) {
	case *Num, *Sym:
		return e
	case *Pow:
		return PowOf(Rationalize(t.base), t.exp)
	case *Func:
		return FuncOf(t.fn, Rationalize(t.arg))
	case *Mul:
		factors := make([]Expr, len(t.factors))
		for i, f := range t.factors {
			factors[i] = Rationalize(f)
		}
		return MulOf(factors...)
	case *Add:
		acc := Rationalize(t.terms[0])
		for _, term := range t.terms[1:] {
			acc = rationalizeSum(acc, Rationalize(term))
		}
		return acc
	}
	return e
}

// rationalizeSum combines two already-rationalized operands over a common
// denominator.
func rationalizeSum(f, g Expr) Expr {
	m, r := NumDenom(f)
	n, s := NumDenom(g)
	rOne, _ := r.(*Num)
	sOne, _ := s.(*Num)
	if rOne != nil && rOne.IsOne() && sOne != nil && sOne.IsOne() {
		return AddOf(f, g)
	}
	if r.Equal(s) {
		return Div(Expand(AddOf(m, n)), r)
	}
	if num, den, ok := mergeDenominators(m, r, n, s); ok {
		return Div(num, den)
	}
	num := Expand(AddOf(MulOf(m, s), MulOf(n, r)))
	return Div(num, MulOf(r, s))
}

// mergeDenominators combines m/r + n/s over the least common denominator
// when both denominators are polynomials in the same variable and share
// a nonconstant factor: with g = gcd(r, s), the sum is
// (m*(s/g) + n*(r/g)) / (r * (s/g)), so the shared factor appears once.
func mergeDenominators(m, r, n, s Expr) (num, den Expr, ok bool) {
	syms := FreeSymbols(MulOf(r, s))
	if len(syms) != 1 {
		return nil, nil, false
	}
	v := syms[0]
	rp, err := PolyFromExpr(Expand(r), v)
	if err != nil {
		return nil, nil, false
	}
	sp, err := PolyFromExpr(Expand(s), v)
	if err != nil {
		return nil, nil, false
	}
	g, err := PolyGcd(rp, sp)
	if err != nil || g.Degree() < 1 {
		return nil, nil, false
	}
	sq, srem, err := PolyDivide(sp, g)
	if err != nil || !srem.IsZero() {
		return nil, nil, false
	}
	rq, rrem, err := PolyDivide(rp, g)
	if err != nil || !rrem.IsZero() {
		return nil, nil, false
	}
	num = Expand(AddOf(MulOf(m, sq.Expr()), MulOf(n, rq.Expr())))
	return num, MulOf(r, sq.Expr()), true
}

// UnivariatePartialFractions decomposes num / (f1 * f2 * ... * fk) into
// constants c1..ck with num/prod = sum(ci/fi). The factors must be
// nonconstant polynomials in v, pairwise coprime, and the numerator's
// degree must be strictly below the degree of the product. The constants
// are found by matching coefficients and solving the resulting linear
// system exactly.
func UnivariatePartialFractions(num Expr, factors []Expr, v string) ([]Expr, error) {
	if len(factors) == 0 {
		return nil, errors.Wrap(ErrInvalidDomain, "partial fractions: empty factor list")
	}
	numPoly, err := PolyFromExpr(Expand(num), v)
	if err != nil {
		return nil, err
	}
	polys := make([]*Poly, len(factors))
	total := 0
	for i, f := range factors {
		p, err := PolyFromExpr(Expand(f), v)
		if err != nil {
			return nil, err
		}
		if p.Degree() < 1 {
			return nil, errors.Wrapf(ErrInvalidDomain, "partial fractions: constant factor %s", f)
		}
		polys[i] = p
		total += p.Degree()
	}
	for i := 0; i < len(polys); i++ {
		for j := i + 1; j < len(polys); j++ {
			g, err := PolyGcd(polys[i], polys[j])
			if err != nil {
				return nil, err
			}
			if g.Degree() != 0 {
				return nil, errors.Wrapf(ErrNotCoprime, "factors %s and %s share %s", factors[i], factors[j], g)
			}
		}
	}
	if numPoly.Degree() >= total {
		return nil, errors.Wrapf(ErrDegreeMismatch, "numerator degree %d, denominator degree %d", numPoly.Degree(), total)
	}

	// Column i holds the coefficients of the cofactor prod_{j != i} f_j;
	// matching num = sum(ci * cofactor_i) coefficient by coefficient
	// gives a linear system in the ci.
	matrix := make([][]*big.Rat, total)
	for row := range matrix {
		matrix[row] = make([]*big.Rat, len(polys))
	}
	for i := range polys {
		cofactor := NewPoly(v)
		cofactor.setCoeff(0, N(1))
		for j, q := range polys {
			if j != i {
				cofactor = polyMul(cofactor, q)
			}
		}
		col, err := cofactor.ratCoeffs()
		if err != nil {
			return nil, err
		}
		for row := 0; row < total; row++ {
			if row < len(col) {
				matrix[row][i] = new(big.Rat).Set(col[row])
			} else {
				matrix[row][i] = new(big.Rat)
			}
		}
	}
	rhs := make([]*big.Rat, total)
	numCoeffs, err := numPoly.ratCoeffs()
	if err != nil {
		return nil, err
	}
	for row := 0; row < total; row++ {
		if row < len(numCoeffs) {
			rhs[row] = new(big.Rat).Set(numCoeffs[row])
		} else {
			rhs[row] = new(big.Rat)
		}
	}

	solution, err := solveLinearSystem(matrix, rhs)
	if err != nil {
		return nil, err
	}
	out := make([]Expr, len(solution))
	for i, c := range solution {
		out[i] = NRat(c)
	}
	return out, nil
}

// solveLinearSystem solves A x = b over the rationals by Gaussian
// elimination with partial pivoting. The system must have a unique
// solution.
func solveLinearSystem(a [][]*big.Rat, b []*big.Rat) ([]*big.Rat, error) {
	rows := len(a)
	if rows == 0 {
		return nil, errors.Wrap(ErrInvalidDomain, "empty linear system")
	}
	cols := len(a[0])
	pivotRow := 0
	pivotCols := make([]int, 0, cols)
	for col := 0; col < cols && pivotRow < rows; col++ {
		pick := -1
		for r := pivotRow; r < rows; r++ {
			if a[r][col].Sign() != 0 {
				pick = r
				break
			}
		}
		if pick < 0 {
			continue
		}
		a[pivotRow], a[pick] = a[pick], a[pivotRow]
		b[pivotRow], b[pick] = b[pick], b[pivotRow]
		inv := new(big.Rat).Inv(a[pivotRow][col])
		for c := col; c < cols; c++ {
			a[pivotRow][c].Mul(a[pivotRow][c], inv)
		}
		b[pivotRow].Mul(b[pivotRow], inv)
		for r := 0; r < rows; r++ {
			if r == pivotRow || a[r][col].Sign() == 0 {
				continue
			}
			scale := new(big.Rat).Set(a[r][col])
			for c := col; c < cols; c++ {
				tmp := new(big.Rat).Mul(scale, a[pivotRow][c])
				a[r][c].Sub(a[r][c], tmp)
			}
			tmp := new(big.Rat).Mul(scale, b[pivotRow])
			b[r].Sub(b[r], tmp)
		}
		pivotCols = append(pivotCols, col)
		pivotRow++
	}
	for r := pivotRow; r < rows; r++ {
		if b[r].Sign() != 0 {
			return nil, errors.Wrap(ErrDegreeMismatch, "inconsistent linear system")
		}
	}
	if len(pivotCols) < cols {
		return nil, errors.Wrap(ErrInvalidDomain, "underdetermined linear system")
	}
	x := make([]*big.Rat, cols)
	for i, col := range pivotCols {
		x[col] = new(big.Rat).Set(b[i])
	}
	return x, nil
}
