// Package levycas is a small computer-algebra kernel. Expressions are
// immutable trees over exact rational numbers, and every constructor
// returns a canonical form: flattened, sorted, with like terms merged and
// numeric subterms folded. Two expressions are mathematically identical
// under the ring axioms the canonicalizer knows about exactly when their
// trees are structurally equal.
package levycas

import (
	"math/big"
	"sort"
	"strconv"
)

// Expr is a symbolic expression in canonical form. The concrete variants
// are *Num, *Sym, *Add, *Mul, *Pow and *Func; no other implementations
// exist. Expressions are never mutated after construction.
type Expr interface {
	// String renders the expression with infix operators. The output is
	// deterministic and doubles as a structural key.
	String() string

	// LaTeX renders the expression as LaTeX math.
	LaTeX() string

	// Equal reports structural equality with another expression.
	Equal(other Expr) bool

	kindRank() int
}

// Ranks impose the canonical ordering between expressions of different
// variants: numbers sort first, sums last.
const (
	rankNum = iota
	rankSym
	rankFunc
	rankPow
	rankMul
	rankAdd
)

// FuncKind enumerates the elementary functions the kernel knows. The set
// is closed: differentiation and integration switch exhaustively over it.
type FuncKind int

const (
	FuncSin FuncKind = iota
	FuncCos
	FuncTan
	FuncArcSin
	FuncArcCos
	FuncArcTan
	FuncExp
	FuncLn
)

var funcNames = [...]string{"sin", "cos", "tan", "arcsin", "arccos", "arctan", "exp", "ln"}

func (k FuncKind) String() string {
	if k < 0 || int(k) >= len(funcNames) {
		return "unknown"
	}
	return funcNames[k]
}

// Num is an exact rational constant. Integers are rationals with
// denominator one; the backing big.Rat is always reduced with a positive
// denominator, so one-half has exactly one representation.
type Num struct {
	val *big.Rat
}

// Sym is a free symbol identified by name.
type Sym struct {
	name string
}

// Add is a sum of two or more terms. No term is itself an Add, at most
// one term is numeric (and sorts last), and no two terms share a
// non-numeric part.
type Add struct {
	terms []Expr
}

// Mul is a product of two or more factors. No factor is itself a Mul, at
// most one factor is numeric (and sorts first), and no two factors share
// a base.
type Mul struct {
	factors []Expr
}

// Pow is base^exp. Integer powers of numbers, of products and of nested
// powers never survive construction.
type Pow struct {
	base Expr
	exp  Expr
}

// Func is an elementary function applied to an argument.
type Func struct {
	fn  FuncKind
	arg Expr
}

func (*Num) kindRank() int  { return rankNum }
func (*Sym) kindRank() int  { return rankSym }
func (*Func) kindRank() int { return rankFunc }
func (*Pow) kindRank() int  { return rankPow }
func (*Mul) kindRank() int  { return rankMul }
func (*Add) kindRank() int  { return rankAdd }

var (
	ratOne = big.NewRat(1, 1)
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// N builds the integer constant n.
func N(n int64) *Num {
	return &Num{val: new(big.Rat).SetInt64(n)}
}

// F builds the exact fraction p/q. It panics when q is zero; a zero
// denominator is a programmer error, not a data error.
func F(p, q int64) *Num {
	if q == 0 {
		panic("levycas: zero denominator in F")
	}
	return &Num{val: big.NewRat(p, q)}
}

// NBig builds an integer constant from a big.Int.
func NBig(n *big.Int) *Num {
	return &Num{val: new(big.Rat).SetInt(n)}
}

// NRat builds a constant from a big.Rat. The value is copied.
func NRat(r *big.Rat) *Num {
	return &Num{val: new(big.Rat).Set(r)}
}

// S builds the symbol with the given name.
func S(name string) *Sym {
	return &Sym{name: name}
}

// Rat returns a copy of the numeric value.
func (n *Num) Rat() *big.Rat { return new(big.Rat).Set(n.val) }

// IsInteger reports whether the value has denominator one.
func (n *Num) IsInteger() bool { return n.val.IsInt() }

// IsZero reports whether the value is zero.
func (n *Num) IsZero() bool { return n.val.Sign() == 0 }

// IsOne reports whether the value is one.
func (n *Num) IsOne() bool { return n.val.Cmp(ratOne) == 0 }

// IsNegative reports whether the value is strictly negative.
func (n *Num) IsNegative() bool { return n.val.Sign() < 0 }

// IsPositive reports whether the value is strictly positive.
func (n *Num) IsPositive() bool { return n.val.Sign() > 0 }

// Int64 returns the value as an int64 when it is an integer that fits.
func (n *Num) Int64() (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

// Name returns the symbol's identifier.
func (s *Sym) Name() string { return s.name }

// Terms returns the summands of a canonical sum.
func (a *Add) Terms() []Expr { return a.terms }

// Factors returns the factors of a canonical product.
func (m *Mul) Factors() []Expr { return m.factors }

// Base returns the base of a power.
func (p *Pow) Base() Expr { return p.base }

// Exp returns the exponent of a power.
func (p *Pow) Exp() Expr { return p.exp }

// Kind returns which elementary function this is.
func (f *Func) Kind() FuncKind { return f.fn }

// Arg returns the function argument.
func (f *Func) Arg() Expr { return f.arg }

// AddOf builds the canonical sum of the given terms. Nested sums are
// flattened, numeric terms fold into a single trailing constant, and
// terms sharing a non-numeric part merge by adding their rational
// coefficients. An empty or fully-cancelled sum is the constant zero.
func AddOf(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		if inner, ok := t.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, t)
		}
	}

	type group struct {
		coeff *big.Rat
		part  Expr
	}
	constant := new(big.Rat)
	groups := make(map[string]*group)
	order := make([]string, 0, len(flat))
	for _, t := range flat {
		coeff, part := splitCoeff(t)
		if part == nil {
			constant.Add(constant, coeff)
			continue
		}
		key := part.String()
		g, ok := groups[key]
		if !ok {
			g = &group{coeff: new(big.Rat), part: part}
			groups[key] = g
			order = append(order, key)
		}
		g.coeff.Add(g.coeff, coeff)
	}

	merged := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		switch {
		case g.coeff.Sign() == 0:
			// cancelled
		case g.coeff.Cmp(ratOne) == 0:
			merged = append(merged, g.part)
		default:
			merged = append(merged, MulOf(&Num{val: g.coeff}, g.part))
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return Compare(merged[i], merged[j]) < 0 })
	if constant.Sign() != 0 {
		merged = append(merged, &Num{val: constant})
	}

	switch len(merged) {
	case 0:
		return N(0)
	case 1:
		return merged[0]
	}
	return &Add{terms: merged}
}

// splitCoeff separates a canonical term into its rational coefficient and
// the remaining non-numeric part. A purely numeric term has a nil part.
func splitCoeff(t Expr) (*big.Rat, Expr) {
	switch t := t.(type) {
	case *Num:
		return new(big.Rat).Set(t.val), nil
	case *Mul:
		if lead, ok := t.factors[0].(*Num); ok {
			rest := t.factors[1:]
			if len(rest) == 1 {
				return new(big.Rat).Set(lead.val), rest[0]
			}
			return new(big.Rat).Set(lead.val), &Mul{factors: rest}
		}
	}
	return new(big.Rat).Set(ratOne), t
}

// MulOf builds the canonical product of the given factors. Nested
// products are flattened, numeric factors fold into a single leading
// constant, and factors sharing a base merge by adding their exponents.
// A zero factor annihilates the whole product.
func MulOf(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		if inner, ok := f.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, f)
		}
	}

	type entry struct {
		base Expr
		exp  Expr
	}
	coeff := new(big.Rat).Set(ratOne)
	entries := make(map[string]*entry)
	order := make([]string, 0, len(flat))
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff.Mul(coeff, n.val)
			continue
		}
		base, exp := baseExp(f)
		key := base.String()
		e, ok := entries[key]
		if !ok {
			entries[key] = &entry{base: base, exp: exp}
			order = append(order, key)
			continue
		}
		e.exp = AddOf(e.exp, exp)
	}
	if coeff.Sign() == 0 {
		return N(0)
	}

	rest := make([]Expr, 0, len(order))
	resplice := false
	for _, key := range order {
		e := entries[key]
		rebuilt := PowOf(e.base, e.exp)
		switch r := rebuilt.(type) {
		case *Num:
			coeff.Mul(coeff, r.val)
		case *Mul:
			// A power of a product base collapsed; its factors may now
			// share bases with other entries, so merge once more.
			rest = append(rest, r.factors...)
			resplice = true
		default:
			rest = append(rest, rebuilt)
		}
	}
	if coeff.Sign() == 0 {
		return N(0)
	}
	if resplice {
		return MulOf(append([]Expr{&Num{val: coeff}}, rest...)...)
	}
	sort.SliceStable(rest, func(i, j int) bool { return Compare(rest[i], rest[j]) < 0 })

	if len(rest) == 0 {
		return &Num{val: coeff}
	}
	if coeff.Cmp(ratOne) == 0 {
		if len(rest) == 1 {
			return rest[0]
		}
		return &Mul{factors: rest}
	}
	return &Mul{factors: append([]Expr{&Num{val: coeff}}, rest...)}
}

// baseExp views a non-numeric canonical factor as base^exp.
func baseExp(f Expr) (Expr, Expr) {
	if p, ok := f.(*Pow); ok {
		return p.base, p.exp
	}
	return f, N(1)
}

// Integer exponents beyond this are kept symbolic rather than folded into
// a single huge rational.
const maxFoldExp = 256

// PowOf builds the canonical power base^exp. x^0 is one, x^1 is x,
// numeric^integer folds exactly, integer powers of powers multiply
// exponents and integer powers of products distribute over the factors.
func PowOf(base, exp Expr) Expr {
	if en, ok := exp.(*Num); ok {
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() {
			return base
		}
	}
	if bn, ok := base.(*Num); ok {
		if bn.IsZero() {
			if en, ok := exp.(*Num); ok && en.IsPositive() {
				return N(0)
			}
			// 0^0 and 0^negative are left for the caller to reject.
			return &Pow{base: base, exp: exp}
		}
		if bn.IsOne() {
			return N(1)
		}
		if en, ok := exp.(*Num); ok {
			if k, fits := en.Int64(); fits && k >= -maxFoldExp && k <= maxFoldExp {
				return &Num{val: ratPow(bn.val, k)}
			}
			if r, exact := ratRoot(bn.val, en.val); exact {
				return &Num{val: r}
			}
		}
	}
	if en, ok := exp.(*Num); ok && en.IsInteger() {
		switch b := base.(type) {
		case *Pow:
			return PowOf(b.base, MulOf(b.exp, exp))
		case *Mul:
			out := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				out[i] = PowOf(f, exp)
			}
			return MulOf(out...)
		}
	}
	return &Pow{base: base, exp: exp}
}

// ratPow raises r to an integer power by repeated squaring. r must be
// nonzero when k is negative.
func ratPow(r *big.Rat, k int64) *big.Rat {
	if k < 0 {
		if r.Sign() == 0 {
			panic("levycas: zero raised to a negative power")
		}
		return ratPow(new(big.Rat).Inv(r), -k)
	}
	result := new(big.Rat).Set(ratOne)
	sq := new(big.Rat).Set(r)
	for k > 0 {
		if k&1 == 1 {
			result.Mul(result, sq)
		}
		sq.Mul(sq, sq)
		k >>= 1
	}
	return result
}

// ratRoot evaluates base^exp exactly when exp is p/q and base has a
// rational q-th root. It reports false otherwise.
func ratRoot(base, exp *big.Rat) (*big.Rat, bool) {
	if base.Sign() <= 0 || exp.IsInt() {
		return nil, false
	}
	q := exp.Denom()
	if !q.IsInt64() || q.Int64() > 8 {
		return nil, false
	}
	num, ok := intRoot(base.Num(), uint(q.Int64()))
	if !ok {
		return nil, false
	}
	den, ok := intRoot(base.Denom(), uint(q.Int64()))
	if !ok {
		return nil, false
	}
	if !exp.Num().IsInt64() {
		return nil, false
	}
	k := exp.Num().Int64()
	if k < -maxFoldExp || k > maxFoldExp {
		return nil, false
	}
	root := new(big.Rat).SetFrac(num, den)
	return ratPow(root, k), true
}

// intRoot returns the exact q-th root of n when it exists.
func intRoot(n *big.Int, q uint) (*big.Int, bool) {
	if n.Sign() < 0 {
		return nil, false
	}
	var r *big.Int
	if q == 2 {
		r = new(big.Int).Sqrt(n)
	} else {
		r = nthRootFloor(n, q)
	}
	check := new(big.Int).Exp(r, new(big.Int).SetUint64(uint64(q)), nil)
	if check.Cmp(n) != 0 {
		return nil, false
	}
	return r, true
}

// nthRootFloor computes floor(n^(1/q)) for n >= 0, q >= 1 by Newton
// iteration x <- ((q-1)x + n/x^(q-1)) / q, which converges from above.
func nthRootFloor(n *big.Int, q uint) *big.Int {
	if n.Sign() == 0 || n.Cmp(bigOne) == 0 {
		return new(big.Int).Set(n)
	}
	qInt := new(big.Int).SetUint64(uint64(q))
	qm1 := new(big.Int).SetUint64(uint64(q - 1))
	// Start above the root: 2^ceil(bitlen/q).
	x := new(big.Int).Lsh(bigOne, uint(n.BitLen()+int(q)-1)/q)
	for {
		// y = ((q-1)*x + n/x^(q-1)) / q
		pow := new(big.Int).Exp(x, qm1, nil)
		y := new(big.Int).Quo(n, pow)
		y.Add(y, new(big.Int).Mul(qm1, x))
		y.Quo(y, qInt)
		if y.Cmp(x) >= 0 {
			return x
		}
		x = y
	}
}

// FuncOf applies an elementary function, evaluating the handful of exact
// special values the kernel keeps canonical: sin 0, cos 0, tan 0, the
// inverse functions at 0, ln 1, exp 0, and the ln/exp inverse pair.
func FuncOf(kind FuncKind, arg Expr) Expr {
	if n, ok := arg.(*Num); ok && n.IsZero() {
		switch kind {
		case FuncSin, FuncTan, FuncArcSin, FuncArcTan:
			return N(0)
		case FuncCos, FuncExp:
			return N(1)
		}
	}
	switch kind {
	case FuncLn:
		if n, ok := arg.(*Num); ok && n.IsOne() {
			return N(0)
		}
		if f, ok := arg.(*Func); ok && f.fn == FuncExp {
			return f.arg
		}
	case FuncExp:
		if f, ok := arg.(*Func); ok && f.fn == FuncLn {
			return f.arg
		}
	}
	return &Func{fn: kind, arg: arg}
}

// SinOf builds sin(arg).
func SinOf(arg Expr) Expr { return FuncOf(FuncSin, arg) }

// CosOf builds cos(arg).
func CosOf(arg Expr) Expr { return FuncOf(FuncCos, arg) }

// TanOf builds tan(arg).
func TanOf(arg Expr) Expr { return FuncOf(FuncTan, arg) }

// ArcSinOf builds arcsin(arg).
func ArcSinOf(arg Expr) Expr { return FuncOf(FuncArcSin, arg) }

// ArcCosOf builds arccos(arg).
func ArcCosOf(arg Expr) Expr { return FuncOf(FuncArcCos, arg) }

// ArcTanOf builds arctan(arg).
func ArcTanOf(arg Expr) Expr { return FuncOf(FuncArcTan, arg) }

// ExpOf builds exp(arg).
func ExpOf(arg Expr) Expr { return FuncOf(FuncExp, arg) }

// LnOf builds ln(arg).
func LnOf(arg Expr) Expr { return FuncOf(FuncLn, arg) }

// Neg builds -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// SubOf builds a - b.
func SubOf(a, b Expr) Expr { return AddOf(a, Neg(b)) }

// Div builds a * b^-1.
func Div(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

// SqrtOf builds e^(1/2).
func SqrtOf(e Expr) Expr { return PowOf(e, F(1, 2)) }

func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	return ok && n.val.Cmp(o.val) == 0
}

func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && s.name == o.name
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.fn == o.fn && f.arg.Equal(o.arg)
}

// FreeSymbols collects the distinct symbol names occurring in e, sorted.
func FreeSymbols(e Expr) []string {
	set := make(map[string]struct{})
	collectSymbols(e, set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectSymbols(e Expr, set map[string]struct{}) {
	switch t := e.(type) {
	case *Sym:
		set[t.name] = struct{}{}
	case *Add:
		for _, term := range t.terms {
			collectSymbols(term, set)
		}
	case *Mul:
		for _, f := range t.factors {
			collectSymbols(f, set)
		}
	case *Pow:
		collectSymbols(t.base, set)
		collectSymbols(t.exp, set)
	case *Func:
		collectSymbols(t.arg, set)
	}
}

// freeOf reports whether the symbol v does not occur in e.
func freeOf(e Expr, v string) bool {
	switch t := e.(type) {
	case *Num:
		return true
	case *Sym:
		return t.name != v
	case *Add:
		for _, term := range t.terms {
			if !freeOf(term, v) {
				return false
			}
		}
		return true
	case *Mul:
		for _, f := range t.factors {
			if !freeOf(f, v) {
				return false
			}
		}
		return true
	case *Pow:
		return freeOf(t.base, v) && freeOf(t.exp, v)
	case *Func:
		return freeOf(t.arg, v)
	}
	return true
}

// Substitute replaces every occurrence of the symbol name with value and
// re-canonicalizes on the way back up.
func Substitute(e Expr, name string, value Expr) Expr {
	switch t := e.(type) {
	case *Num:
		return t
	case *Sym:
		if t.name == name {
			return value
		}
		return t
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			terms[i] = Substitute(term, name, value)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(t.factors))
		for i, f := range t.factors {
			factors[i] = Substitute(f, name, value)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(Substitute(t.base, name, value), Substitute(t.exp, name, value))
	case *Func:
		return FuncOf(t.fn, Substitute(t.arg, name, value))
	}
	return e
}

// replaceExpr swaps every occurrence of the subtree target for repl,
// re-canonicalizing on the way back up.
func replaceExpr(e, target, repl Expr) Expr {
	if e.Equal(target) {
		return repl
	}
	switch t := e.(type) {
	case *Num, *Sym:
		return e
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			terms[i] = replaceExpr(term, target, repl)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(t.factors))
		for i, f := range t.factors {
			factors[i] = replaceExpr(f, target, repl)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(replaceExpr(t.base, target, repl), replaceExpr(t.exp, target, repl))
	case *Func:
		return FuncOf(t.fn, replaceExpr(t.arg, target, repl))
	}
	return e
}

// freshSymbol picks a symbol name not occurring in e and distinct from v.
func freshSymbol(e Expr, v string) string {
	used := make(map[string]struct{})
	collectSymbols(e, used)
	used[v] = struct{}{}
	for _, name := range []string{"u", "w", "t"} {
		if _, taken := used[name]; !taken {
			return name
		}
	}
	for i := 0; ; i++ {
		name := "u" + strconv.Itoa(i)
		if _, taken := used[name]; !taken {
			return name
		}
	}
}
