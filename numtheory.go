package levycas

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"
)

// The Miller-Rabin witness set. Testing against the first twelve primes
// is deterministic for every n below 3.3 * 10^24, which comfortably
// covers 64-bit inputs; larger inputs get a strong probable-prime answer.
var millerRabinBases = [...]int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}

// IsPrime reports whether n is prime. n must be at least 2.
func IsPrime(n *big.Int) (bool, error) {
	if n == nil || n.Cmp(bigTwo) < 0 {
		return false, errors.Wrapf(ErrInvalidDomain, "isprime: need n >= 2, got %v", n)
	}
	for _, b := range millerRabinBases {
		base := big.NewInt(b)
		switch n.Cmp(base) {
		case 0:
			return true, nil
		case -1:
			return false, nil
		}
		if new(big.Int).Mod(n, base).Sign() == 0 {
			return false, nil
		}
	}

	// Write n-1 as d * 2^s with d odd.
	nm1 := new(big.Int).Sub(n, bigOne)
	d := new(big.Int).Set(nm1)
	s := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		s++
	}

	x := new(big.Int)
	for _, b := range millerRabinBases {
		x.Exp(big.NewInt(b), d, n)
		if x.Cmp(bigOne) == 0 || x.Cmp(nm1) == 0 {
			continue
		}
		witness := true
		for i := 1; i < s; i++ {
			x.Mul(x, x)
			x.Mod(x, n)
			if x.Cmp(nm1) == 0 {
				witness = false
				break
			}
		}
		if witness {
			return false, nil
		}
	}
	return true, nil
}

// GCD returns the greatest common divisor of a and b using the binary
// algorithm. The result is non-negative; GCD(0, 0) is 0.
func GCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)
	if x.Sign() == 0 {
		return y
	}
	if y.Sign() == 0 {
		return x
	}

	shift := 0
	for x.Bit(0) == 0 && y.Bit(0) == 0 {
		x.Rsh(x, 1)
		y.Rsh(y, 1)
		shift++
	}
	for x.Bit(0) == 0 {
		x.Rsh(x, 1)
	}
	for {
		for y.Bit(0) == 0 {
			y.Rsh(y, 1)
		}
		if x.Cmp(y) > 0 {
			x, y = y, x
		}
		y.Sub(y, x)
		if y.Sign() == 0 {
			return x.Lsh(x, uint(shift))
		}
	}
}

// PrimePower is one entry of a prime factorization.
type PrimePower struct {
	Prime        *big.Int
	Multiplicity int
}

// FactorInteger returns the prime factorization of n as prime powers in
// increasing prime order. n must be at least 1; the factorization of 1 is
// empty. Small primes are removed by trial division and the remaining
// cofactor is split recursively with Pollard's rho.
func FactorInteger(n *big.Int) ([]PrimePower, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, errors.Wrapf(ErrInvalidDomain, "factorinteger: need n >= 1, got %v", n)
	}
	m := new(big.Int).Set(n)
	counts := make(map[string]*PrimePower)

	record := func(p *big.Int) {
		key := p.String()
		if pp, ok := counts[key]; ok {
			pp.Multiplicity++
			return
		}
		counts[key] = &PrimePower{Prime: new(big.Int).Set(p), Multiplicity: 1}
	}

	for _, b := range millerRabinBases {
		p := big.NewInt(b)
		q, r := new(big.Int), new(big.Int)
		for {
			q.QuoRem(m, p, r)
			if r.Sign() != 0 {
				break
			}
			record(p)
			m.Set(q)
		}
	}

	stack := []*big.Int{m}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if v.Cmp(bigOne) == 0 {
			continue
		}
		prime, err := IsPrime(v)
		if err != nil {
			return nil, err
		}
		if prime {
			record(v)
			continue
		}
		d := pollardRho(v)
		stack = append(stack, d, new(big.Int).Quo(v, d))
	}

	factors := make([]PrimePower, 0, len(counts))
	for _, pp := range counts {
		factors = append(factors, *pp)
	}
	sort.Slice(factors, func(i, j int) bool {
		return factors[i].Prime.Cmp(factors[j].Prime) < 0
	})
	return factors, nil
}

// pollardRho finds a nontrivial divisor of an odd composite n, retrying
// with successive polynomial offsets when a cycle collapses onto n
// itself.
func pollardRho(n *big.Int) *big.Int {
	if n.Bit(0) == 0 {
		return new(big.Int).Set(bigTwo)
	}
	for c := int64(1); ; c++ {
		offset := big.NewInt(c)
		step := func(v *big.Int) *big.Int {
			r := new(big.Int).Mul(v, v)
			r.Add(r, offset)
			return r.Mod(r, n)
		}
		x := big.NewInt(2)
		y := big.NewInt(2)
		d := new(big.Int).Set(bigOne)
		for d.Cmp(bigOne) == 0 {
			x = step(x)
			y = step(step(y))
			diff := new(big.Int).Sub(x, y)
			d = GCD(diff, n)
		}
		if d.Cmp(n) != 0 {
			return d
		}
	}
}

// Radical returns the product of the distinct primes dividing n.
func Radical(n *big.Int) (*big.Int, error) {
	factors, err := FactorInteger(n)
	if err != nil {
		return nil, err
	}
	rad := big.NewInt(1)
	for _, pp := range factors {
		rad.Mul(rad, pp.Prime)
	}
	return rad, nil
}

// divisors enumerates the positive divisors of |n| in increasing order.
func divisors(n *big.Int) ([]*big.Int, error) {
	abs := new(big.Int).Abs(n)
	if abs.Sign() == 0 {
		return nil, errors.Wrap(ErrInvalidDomain, "divisors of zero")
	}
	factors, err := FactorInteger(abs)
	if err != nil {
		return nil, err
	}
	divs := []*big.Int{big.NewInt(1)}
	for _, pp := range factors {
		grown := make([]*big.Int, 0, len(divs)*(pp.Multiplicity+1))
		grown = append(grown, divs...)
		pk := new(big.Int).Set(bigOne)
		for i := 0; i < pp.Multiplicity; i++ {
			pk = new(big.Int).Mul(pk, pp.Prime)
			for _, d := range divs {
				grown = append(grown, new(big.Int).Mul(d, pk))
			}
		}
		divs = grown
	}
	sort.Slice(divs, func(i, j int) bool { return divs[i].Cmp(divs[j]) < 0 })
	return divs, nil
}
