package levycas

import "strings"

// Compare imposes a total order on canonical expressions: first by
// variant rank (numbers, symbols, functions, powers, products, sums),
// then recursively within a variant. Sums and products compare their
// children from the last element backwards, so two products differing
// only in a leading coefficient sort adjacently.
func Compare(a, b Expr) int {
	ra, rb := a.kindRank(), b.kindRank()
	if ra != rb {
		return ra - rb
	}
	switch a := a.(type) {
	case *Num:
		return a.val.Cmp(b.(*Num).val)
	case *Sym:
		return strings.Compare(a.name, b.(*Sym).name)
	case *Func:
		o := b.(*Func)
		if a.fn != o.fn {
			return int(a.fn) - int(o.fn)
		}
		return Compare(a.arg, o.arg)
	case *Pow:
		o := b.(*Pow)
		if c := Compare(a.base, o.base); c != 0 {
			return c
		}
		return Compare(a.exp, o.exp)
	case *Mul:
		return compareReversed(a.factors, b.(*Mul).factors)
	case *Add:
		return compareReversed(a.terms, b.(*Add).terms)
	}
	return 0
}

func compareReversed(xs, ys []Expr) int {
	i, j := len(xs)-1, len(ys)-1
	for i >= 0 && j >= 0 {
		if c := Compare(xs[i], ys[j]); c != 0 {
			return c
		}
		i--
		j--
	}
	return len(xs) - len(ys)
}
