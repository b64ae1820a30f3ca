package levycas

import "github.com/pkg/errors"

// Sentinel errors returned by the algebra operations. Callers should test
// with errors.Is; most call sites wrap these with extra context.
var (
	// ErrInvalidDomain signals an argument outside an operation's domain,
	// such as isPrime(1) or factorInteger(0).
	ErrInvalidDomain = errors.New("levycas: argument outside operation domain")

	// ErrDivisionByZero signals polynomial division by the zero polynomial.
	ErrDivisionByZero = errors.New("levycas: division by zero")

	// ErrNotPolynomial signals that an expression could not be read as a
	// polynomial in the requested variable.
	ErrNotPolynomial = errors.New("levycas: expression is not a polynomial in the given variable")

	// ErrNotCoprime signals a partial-fraction denominator list whose
	// members share a nonconstant common factor.
	ErrNotCoprime = errors.New("levycas: denominator factors are not pairwise coprime")

	// ErrDegreeMismatch signals a partial-fraction numerator whose degree is
	// not strictly below the degree of the denominator product.
	ErrDegreeMismatch = errors.New("levycas: numerator degree too large for decomposition")

	// ErrNonElementary signals that every integration technique was
	// exhausted without finding an antiderivative.
	ErrNonElementary = errors.New("levycas: no elementary antiderivative found")

	// ErrNotDifferentiable signals an expression the differentiator cannot
	// handle.
	ErrNotDifferentiable = errors.New("levycas: expression is not differentiable")
)
