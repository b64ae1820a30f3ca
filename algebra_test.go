package levycas_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	levycas "github.com/ajlevy246/LevyCAS"
)

func TestExpand(t *testing.T) {
	x, y := levycas.S("x"), levycas.S("y")

	got := levycas.Expand(levycas.PowOf(levycas.AddOf(x, levycas.N(1)), levycas.N(2)))
	want := levycas.AddOf(levycas.PowOf(x, levycas.N(2)), levycas.MulOf(levycas.N(2), x), levycas.N(1))
	assert.True(t, got.Equal(want), "got %s", got)

	got = levycas.Expand(levycas.MulOf(levycas.AddOf(x, levycas.N(1)), levycas.AddOf(x, levycas.N(-1))))
	want = levycas.AddOf(levycas.PowOf(x, levycas.N(2)), levycas.N(-1))
	assert.True(t, got.Equal(want), "got %s", got)

	got = levycas.Expand(levycas.MulOf(levycas.N(2), levycas.AddOf(x, y)))
	want = levycas.AddOf(levycas.MulOf(levycas.N(2), x), levycas.MulOf(levycas.N(2), y))
	assert.True(t, got.Equal(want), "got %s", got)

	// Expansion reaches inside function arguments but not through them.
	got = levycas.Expand(levycas.SinOf(levycas.MulOf(levycas.N(2), levycas.AddOf(x, y))))
	want = levycas.SinOf(levycas.AddOf(levycas.MulOf(levycas.N(2), x), levycas.MulOf(levycas.N(2), y)))
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestExpandBinomialCube(t *testing.T) {
	x := levycas.S("x")
	got := levycas.Expand(levycas.PowOf(levycas.AddOf(x, levycas.N(2)), levycas.N(3)))
	want := levycas.AddOf(
		levycas.PowOf(x, levycas.N(3)),
		levycas.MulOf(levycas.N(6), levycas.PowOf(x, levycas.N(2))),
		levycas.MulOf(levycas.N(12), x),
		levycas.N(8),
	)
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestNumDenom(t *testing.T) {
	x := levycas.S("x")

	e := levycas.MulOf(
		levycas.AddOf(x, levycas.N(1)),
		levycas.PowOf(levycas.AddOf(x, levycas.N(2)), levycas.N(-1)),
	)
	num, den := levycas.NumDenom(e)
	assert.True(t, num.Equal(levycas.AddOf(x, levycas.N(1))), "num %s", num)
	assert.True(t, den.Equal(levycas.AddOf(x, levycas.N(2))), "den %s", den)

	num, den = levycas.NumDenom(levycas.F(3, 4))
	assert.True(t, num.Equal(levycas.N(3)))
	assert.True(t, den.Equal(levycas.N(4)))

	num, den = levycas.NumDenom(x)
	assert.True(t, num.Equal(x))
	assert.True(t, den.Equal(levycas.N(1)))
}

func TestRationalize(t *testing.T) {
	x := levycas.S("x")

	// 3/(x+2) + 5/(x-1) -> (8x + 7) / ((x+2)(x-1))
	e := levycas.AddOf(
		levycas.Div(levycas.N(3), levycas.AddOf(x, levycas.N(2))),
		levycas.Div(levycas.N(5), levycas.AddOf(x, levycas.N(-1))),
	)
	got := levycas.Rationalize(e)
	num, den := levycas.NumDenom(got)
	assert.True(t, num.Equal(levycas.AddOf(levycas.MulOf(levycas.N(8), x), levycas.N(7))), "num %s", num)
	assert.True(t, den.Equal(levycas.MulOf(levycas.AddOf(x, levycas.N(2)), levycas.AddOf(x, levycas.N(-1)))),
		"den %s", den)
}

func TestRationalizeSharedDenominator(t *testing.T) {
	x := levycas.S("x")
	d := levycas.AddOf(x, levycas.N(1))

	e := levycas.AddOf(levycas.Div(levycas.N(1), d), levycas.Div(x, d))
	got := levycas.Rationalize(e)
	num, den := levycas.NumDenom(got)
	assert.True(t, num.Equal(levycas.AddOf(x, levycas.N(1))), "num %s", num)
	assert.True(t, den.Equal(d), "identical denominators merge, got %s", den)
}

func TestRationalizeOverlappingDenominators(t *testing.T) {
	x := levycas.S("x")
	d1 := levycas.AddOf(x, levycas.N(1))
	d2 := levycas.MulOf(d1, levycas.AddOf(x, levycas.N(2)))

	// 1/(x+1) + 1/((x+1)(x+2)) -> (x + 3) / ((x+1)(x+2))
	e := levycas.AddOf(levycas.Div(levycas.N(1), d1), levycas.Div(levycas.N(1), d2))
	got := levycas.Rationalize(e)
	num, den := levycas.NumDenom(got)
	assert.True(t, num.Equal(levycas.AddOf(x, levycas.N(3))), "num %s", num)
	assert.True(t, den.Equal(d2), "shared factor appears once, got %s", den)
}

func TestRationalizePlainSumUntouched(t *testing.T) {
	x := levycas.S("x")
	e := levycas.AddOf(levycas.PowOf(x, levycas.N(2)), x, levycas.N(1))
	assert.True(t, levycas.Rationalize(e).Equal(e))
}

func TestUnivariatePartialFractions(t *testing.T) {
	x := levycas.S("x")

	// (8x + 7) / ((x+2)(x-1)) = 3/(x+2) + 5/(x-1)
	num := levycas.AddOf(levycas.MulOf(levycas.N(8), x), levycas.N(7))
	factors := []levycas.Expr{
		levycas.AddOf(x, levycas.N(2)),
		levycas.AddOf(x, levycas.N(-1)),
	}
	consts, err := levycas.UnivariatePartialFractions(num, factors, "x")
	require.NoError(t, err)
	require.Len(t, consts, 2)
	assert.True(t, consts[0].Equal(levycas.N(3)), "got %s", consts[0])
	assert.True(t, consts[1].Equal(levycas.N(5)), "got %s", consts[1])
}

func TestPartialFractionsRationalConstants(t *testing.T) {
	x := levycas.S("x")

	// 1 / ((x)(x+2)) = (1/2)/x - (1/2)/(x+2)
	consts, err := levycas.UnivariatePartialFractions(levycas.N(1),
		[]levycas.Expr{x, levycas.AddOf(x, levycas.N(2))}, "x")
	require.NoError(t, err)
	require.Len(t, consts, 2)
	assert.True(t, consts[0].Equal(levycas.F(1, 2)), "got %s", consts[0])
	assert.True(t, consts[1].Equal(levycas.F(-1, 2)), "got %s", consts[1])
}

func TestPartialFractionsNotCoprime(t *testing.T) {
	x := levycas.S("x")
	d := levycas.AddOf(x, levycas.N(1))

	_, err := levycas.UnivariatePartialFractions(levycas.N(1), []levycas.Expr{d, d}, "x")
	assert.True(t, errors.Is(err, levycas.ErrNotCoprime))

	// x^2 - 1 shares x - 1 with x - 1.
	_, err = levycas.UnivariatePartialFractions(levycas.N(1), []levycas.Expr{
		levycas.AddOf(levycas.PowOf(x, levycas.N(2)), levycas.N(-1)),
		levycas.AddOf(x, levycas.N(-1)),
	}, "x")
	assert.True(t, errors.Is(err, levycas.ErrNotCoprime))
}

func TestPartialFractionsDegreeMismatch(t *testing.T) {
	x := levycas.S("x")

	_, err := levycas.UnivariatePartialFractions(
		levycas.PowOf(x, levycas.N(2)),
		[]levycas.Expr{levycas.AddOf(x, levycas.N(1)), levycas.AddOf(x, levycas.N(-1))},
		"x")
	assert.True(t, errors.Is(err, levycas.ErrDegreeMismatch))
}

func TestPartialFractionsRationalizeRoundTrip(t *testing.T) {
	x := levycas.S("x")
	f1 := levycas.AddOf(x, levycas.N(2))
	f2 := levycas.AddOf(x, levycas.N(-1))

	// Build 3/(x+2) + 5/(x-1), rationalize, decompose, and expect the
	// original constants back.
	sum := levycas.AddOf(levycas.Div(levycas.N(3), f1), levycas.Div(levycas.N(5), f2))
	combined := levycas.Rationalize(sum)
	num, _ := levycas.NumDenom(combined)

	consts, err := levycas.UnivariatePartialFractions(num, []levycas.Expr{f1, f2}, "x")
	require.NoError(t, err)
	assert.True(t, consts[0].Equal(levycas.N(3)))
	assert.True(t, consts[1].Equal(levycas.N(5)))
}
