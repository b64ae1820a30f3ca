package levycas_test

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	levycas "github.com/ajlevy246/LevyCAS"
)

func TestIsPrime(t *testing.T) {
	primes := []int64{2, 3, 5, 7, 11, 13, 31, 37, 97, 7919, 2147483647}
	for _, p := range primes {
		got, err := levycas.IsPrime(big.NewInt(p))
		require.NoError(t, err)
		assert.True(t, got, "%d is prime", p)
	}

	// 561 and 1105 are Carmichael numbers, the classic Fermat-test traps.
	composites := []int64{4, 6, 9, 100, 561, 1105, 7917}
	for _, c := range composites {
		got, err := levycas.IsPrime(big.NewInt(c))
		require.NoError(t, err)
		assert.False(t, got, "%d is composite", c)
	}
}

func TestIsPrimeDomain(t *testing.T) {
	for _, n := range []int64{1, 0, -7} {
		_, err := levycas.IsPrime(big.NewInt(n))
		assert.True(t, errors.Is(err, levycas.ErrInvalidDomain), "isprime(%d)", n)
	}
}

func TestGCD(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{0, 0, 0},
		{0, 5, 5},
		{5, 0, 5},
		{12, 18, 6},
		{-12, 18, 6},
		{12, -18, 6},
		{17, 5, 1},
		{1 << 20, 3 << 20, 1 << 20},
	}
	for _, c := range cases {
		got := levycas.GCD(big.NewInt(c.a), big.NewInt(c.b))
		assert.Equal(t, c.want, got.Int64(), "gcd(%d, %d)", c.a, c.b)
	}
}

func TestGCDDivides(t *testing.T) {
	a := big.NewInt(2 * 2 * 3 * 7 * 13)
	b := big.NewInt(2 * 3 * 3 * 13 * 19)
	g := levycas.GCD(a, b)
	assert.Equal(t, int64(2*3*13), g.Int64())
	assert.Zero(t, new(big.Int).Mod(a, g).Sign())
	assert.Zero(t, new(big.Int).Mod(b, g).Sign())

	// Composites over disjoint prime supports are coprime:
	// 2^4 * 3^5 * 5^3 against 7^4 * 11^4 * 13^5.
	c := big.NewInt(16 * 243 * 125)
	d := new(big.Int).Mul(big.NewInt(2401), big.NewInt(14641))
	d.Mul(d, new(big.Int).Exp(big.NewInt(13), big.NewInt(5), nil))
	assert.Equal(t, int64(1), levycas.GCD(c, d).Int64())
}

func TestFactorInteger(t *testing.T) {
	// 2^4 * 3^5 * 5^3 * 7^9.
	n := big.NewInt(1)
	n.Mul(n, new(big.Int).Exp(big.NewInt(2), big.NewInt(4), nil))
	n.Mul(n, new(big.Int).Exp(big.NewInt(3), big.NewInt(5), nil))
	n.Mul(n, new(big.Int).Exp(big.NewInt(5), big.NewInt(3), nil))
	n.Mul(n, new(big.Int).Exp(big.NewInt(7), big.NewInt(9), nil))

	factors, err := levycas.FactorInteger(n)
	require.NoError(t, err)
	require.Len(t, factors, 4)

	want := []struct {
		prime int64
		mult  int
	}{{2, 4}, {3, 5}, {5, 3}, {7, 9}}
	for i, w := range want {
		assert.Equal(t, w.prime, factors[i].Prime.Int64())
		assert.Equal(t, w.mult, factors[i].Multiplicity)
	}
}

func TestFactorIntegerEdges(t *testing.T) {
	factors, err := levycas.FactorInteger(big.NewInt(1))
	require.NoError(t, err)
	assert.Empty(t, factors, "1 has the empty factorization")

	factors, err = levycas.FactorInteger(big.NewInt(97))
	require.NoError(t, err)
	require.Len(t, factors, 1)
	assert.Equal(t, int64(97), factors[0].Prime.Int64())
	assert.Equal(t, 1, factors[0].Multiplicity)

	for _, n := range []int64{0, -12} {
		_, err := levycas.FactorInteger(big.NewInt(n))
		assert.True(t, errors.Is(err, levycas.ErrInvalidDomain), "factorinteger(%d)", n)
	}
}

func TestFactorIntegerReconstructs(t *testing.T) {
	inputs := []int64{2, 360, 1024, 9699690, 600851475143}
	for _, in := range inputs {
		n := big.NewInt(in)
		factors, err := levycas.FactorInteger(n)
		require.NoError(t, err)
		product := big.NewInt(1)
		for _, pp := range factors {
			prime, err := levycas.IsPrime(pp.Prime)
			require.NoError(t, err)
			assert.True(t, prime, "%v must be prime", pp.Prime)
			product.Mul(product, new(big.Int).Exp(pp.Prime, big.NewInt(int64(pp.Multiplicity)), nil))
		}
		assert.Zero(t, product.Cmp(n), "factorization of %d multiplies back", in)
	}
}

func TestRadical(t *testing.T) {
	rad, err := levycas.Radical(big.NewInt(360))
	require.NoError(t, err)
	assert.Equal(t, int64(30), rad.Int64())

	rad, err = levycas.Radical(big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rad.Int64())
}
