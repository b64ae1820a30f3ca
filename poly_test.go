package levycas_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	levycas "github.com/ajlevy246/LevyCAS"
)

// pt builds c*x^d quickly in the tests below.
func pt(c int64, x levycas.Expr, d int64) levycas.Expr {
	return levycas.MulOf(levycas.N(c), levycas.PowOf(x, levycas.N(d)))
}

func TestPolyFromExpr(t *testing.T) {
	x := levycas.S("x")
	e := levycas.AddOf(pt(3, x, 2), levycas.MulOf(levycas.N(2), x), levycas.N(7))

	p, err := levycas.PolyFromExpr(e, "x")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Degree())
	assert.True(t, p.Coeff(2).Equal(levycas.N(3)))
	assert.True(t, p.Coeff(1).Equal(levycas.N(2)))
	assert.True(t, p.Coeff(0).Equal(levycas.N(7)))
	assert.True(t, p.Coeff(5).Equal(levycas.N(0)), "absent coefficient reads zero")
	assert.True(t, p.Expr().Equal(e), "round trip through Expr")
}

func TestPolyFromExprSymbolicCoefficients(t *testing.T) {
	x, a := levycas.S("x"), levycas.S("a")
	e := levycas.AddOf(levycas.MulOf(a, levycas.PowOf(x, levycas.N(2))), levycas.N(1))

	p, err := levycas.PolyFromExpr(e, "x")
	require.NoError(t, err)
	assert.True(t, p.Coeff(2).Equal(a))
}

func TestPolyFromExprRejectsNonPolynomials(t *testing.T) {
	x := levycas.S("x")
	bad := []levycas.Expr{
		levycas.SinOf(x),
		levycas.PowOf(x, levycas.N(-1)),
		levycas.PowOf(x, levycas.S("n")),
		levycas.PowOf(x, levycas.F(1, 2)),
		levycas.MulOf(x, levycas.LnOf(x)),
	}
	for _, e := range bad {
		_, err := levycas.PolyFromExpr(e, "x")
		assert.True(t, errors.Is(err, levycas.ErrNotPolynomial), "%s", e)
	}
}

func TestZeroPolyDegree(t *testing.T) {
	p, err := levycas.PolyFromExpr(levycas.N(0), "x")
	require.NoError(t, err)
	assert.True(t, p.IsZero())
	assert.Equal(t, -1, p.Degree())
}

func TestPolyDivide(t *testing.T) {
	x := levycas.S("x")
	// x^3 - 2x^2 + x - 1 = (x - 1)(x^2 - x) - 1
	p, err := levycas.PolyFromExpr(levycas.AddOf(
		levycas.PowOf(x, levycas.N(3)), pt(-2, x, 2), x, levycas.N(-1)), "x")
	require.NoError(t, err)
	q, err := levycas.PolyFromExpr(levycas.AddOf(x, levycas.N(-1)), "x")
	require.NoError(t, err)

	quo, rem, err := levycas.PolyDivide(p, q)
	require.NoError(t, err)
	assert.True(t, quo.Expr().Equal(levycas.AddOf(levycas.PowOf(x, levycas.N(2)), levycas.Neg(x))),
		"quotient %s", quo.Expr())
	assert.True(t, rem.Expr().Equal(levycas.N(-1)), "remainder %s", rem.Expr())
}

func TestPolyDivideIdentity(t *testing.T) {
	x := levycas.S("x")
	p, err := levycas.PolyFromExpr(levycas.Expand(levycas.AddOf(
		levycas.PowOf(x, levycas.N(4)), pt(3, x, 2), levycas.MulOf(levycas.N(5), x), levycas.N(2))), "x")
	require.NoError(t, err)
	q, err := levycas.PolyFromExpr(levycas.AddOf(levycas.PowOf(x, levycas.N(2)), x, levycas.N(1)), "x")
	require.NoError(t, err)

	quo, rem, err := levycas.PolyDivide(p, q)
	require.NoError(t, err)
	// p == quo*q + rem, checked by expansion.
	recombined := levycas.Expand(levycas.AddOf(levycas.MulOf(quo.Expr(), q.Expr()), rem.Expr()))
	assert.True(t, recombined.Equal(p.Expr()), "got %s", recombined)
	assert.Less(t, rem.Degree(), q.Degree())
}

func TestPolyDivideByZero(t *testing.T) {
	x := levycas.S("x")
	p, err := levycas.PolyFromExpr(x, "x")
	require.NoError(t, err)
	zero, err := levycas.PolyFromExpr(levycas.N(0), "x")
	require.NoError(t, err)

	_, _, err = levycas.PolyDivide(p, zero)
	assert.True(t, errors.Is(err, levycas.ErrDivisionByZero))
}

func TestPolyGcd(t *testing.T) {
	x := levycas.S("x")
	// gcd(x^2 - 1, x^2 + 2x + 1) = x + 1
	a, err := levycas.PolyFromExpr(levycas.AddOf(levycas.PowOf(x, levycas.N(2)), levycas.N(-1)), "x")
	require.NoError(t, err)
	b, err := levycas.PolyFromExpr(levycas.AddOf(
		levycas.PowOf(x, levycas.N(2)), levycas.MulOf(levycas.N(2), x), levycas.N(1)), "x")
	require.NoError(t, err)

	g, err := levycas.PolyGcd(a, b)
	require.NoError(t, err)
	assert.True(t, g.Expr().Equal(levycas.AddOf(x, levycas.N(1))), "got %s", g.Expr())
}

func TestPolyGcdCoprime(t *testing.T) {
	x := levycas.S("x")
	a, err := levycas.PolyFromExpr(levycas.AddOf(x, levycas.N(2)), "x")
	require.NoError(t, err)
	b, err := levycas.PolyFromExpr(levycas.AddOf(x, levycas.N(-1)), "x")
	require.NoError(t, err)

	g, err := levycas.PolyGcd(a, b)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Degree())
	assert.True(t, g.Expr().Equal(levycas.N(1)), "monic constant gcd")
}

func TestPolyGcdWithZero(t *testing.T) {
	x := levycas.S("x")
	q, err := levycas.PolyFromExpr(levycas.AddOf(x, levycas.N(4)), "x")
	require.NoError(t, err)
	zero, err := levycas.PolyFromExpr(levycas.N(0), "x")
	require.NoError(t, err)

	g, err := levycas.PolyGcd(zero, q)
	require.NoError(t, err)
	assert.True(t, g.Expr().Equal(q.Expr()), "gcd(0, q) = q")
}

func TestMonic(t *testing.T) {
	x := levycas.S("x")
	p, err := levycas.PolyFromExpr(levycas.AddOf(levycas.MulOf(levycas.N(2), x), levycas.N(4)), "x")
	require.NoError(t, err)
	assert.True(t, p.Monic().Expr().Equal(levycas.AddOf(x, levycas.N(2))))
}

func TestFactorPolynomial(t *testing.T) {
	x := levycas.S("x")

	// x^2 + 3x + 2 = (x + 1)(x + 2)
	constant, factors, err := levycas.FactorPolynomial(levycas.AddOf(
		levycas.PowOf(x, levycas.N(2)), levycas.MulOf(levycas.N(3), x), levycas.N(2)), "x")
	require.NoError(t, err)
	assert.True(t, constant.Equal(levycas.N(1)))
	require.Len(t, factors, 2)
	assert.True(t, factors[0].Equal(levycas.AddOf(x, levycas.N(1))), "got %s", factors[0])
	assert.True(t, factors[1].Equal(levycas.AddOf(x, levycas.N(2))), "got %s", factors[1])
}

func TestFactorPolynomialContent(t *testing.T) {
	x := levycas.S("x")

	// 2x^2 - 2 = 2(x - 1)(x + 1)
	constant, factors, err := levycas.FactorPolynomial(levycas.AddOf(
		pt(2, x, 2), levycas.N(-2)), "x")
	require.NoError(t, err)
	assert.True(t, constant.Equal(levycas.N(2)), "got constant %s", constant)
	require.Len(t, factors, 2)
	assert.True(t, factors[0].Equal(levycas.AddOf(x, levycas.N(-1))))
	assert.True(t, factors[1].Equal(levycas.AddOf(x, levycas.N(1))))
}

func TestFactorPolynomialFractionalRoots(t *testing.T) {
	x := levycas.S("x")

	// 6x^2 - 5x + 1 = (2x - 1)(3x - 1)
	constant, factors, err := levycas.FactorPolynomial(levycas.AddOf(
		pt(6, x, 2), pt(-5, x, 1), levycas.N(1)), "x")
	require.NoError(t, err)
	assert.True(t, constant.Equal(levycas.N(1)), "got constant %s", constant)
	require.Len(t, factors, 2)
	assert.True(t, factors[0].Equal(levycas.AddOf(levycas.MulOf(levycas.N(2), x), levycas.N(-1))),
		"got %s", factors[0])
	assert.True(t, factors[1].Equal(levycas.AddOf(levycas.MulOf(levycas.N(3), x), levycas.N(-1))),
		"got %s", factors[1])
}

func TestFactorPolynomialIrreducible(t *testing.T) {
	x := levycas.S("x")

	constant, factors, err := levycas.FactorPolynomial(levycas.AddOf(
		levycas.PowOf(x, levycas.N(2)), levycas.N(1)), "x")
	require.NoError(t, err)
	assert.True(t, constant.Equal(levycas.N(1)))
	require.Len(t, factors, 1)
	assert.True(t, factors[0].Equal(levycas.AddOf(levycas.PowOf(x, levycas.N(2)), levycas.N(1))))
}

func TestFactorPolynomialRepeatedRoot(t *testing.T) {
	x := levycas.S("x")

	// x^2 + 2x + 1 = (x + 1)^2
	constant, factors, err := levycas.FactorPolynomial(levycas.Expand(
		levycas.PowOf(levycas.AddOf(x, levycas.N(1)), levycas.N(2))), "x")
	require.NoError(t, err)
	assert.True(t, constant.Equal(levycas.N(1)))
	require.Len(t, factors, 2)
	for _, f := range factors {
		assert.True(t, f.Equal(levycas.AddOf(x, levycas.N(1))), "got %s", f)
	}
}

func TestFactorPolynomialPullsOutVariable(t *testing.T) {
	x := levycas.S("x")

	// 3x^3 + 3x^2 = 3 * x * x * (x + 1)
	constant, factors, err := levycas.FactorPolynomial(levycas.AddOf(
		pt(3, x, 3), pt(3, x, 2)), "x")
	require.NoError(t, err)
	assert.True(t, constant.Equal(levycas.N(3)), "got constant %s", constant)
	require.Len(t, factors, 3)
	assert.True(t, factors[0].Equal(x))
	assert.True(t, factors[1].Equal(x))
	assert.True(t, factors[2].Equal(levycas.AddOf(x, levycas.N(1))))
}
