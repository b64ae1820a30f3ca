package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	levycas "github.com/ajlevy246/LevyCAS"
	"github.com/ajlevy246/LevyCAS/parse"
)

func mustParse(t *testing.T, input string) levycas.Expr {
	t.Helper()
	e, err := parse.Expr(input)
	require.NoError(t, err, "parse %q", input)
	return e
}

func TestParseExpressions(t *testing.T) {
	x := levycas.S("x")

	cases := []struct {
		input string
		want  levycas.Expr
	}{
		{"42", levycas.N(42)},
		{"1.5", levycas.F(3, 2)},
		{"x", x},
		{"2*x + 1", levycas.AddOf(levycas.MulOf(levycas.N(2), x), levycas.N(1))},
		{"x - x", levycas.N(0)},
		{"x^2", levycas.PowOf(x, levycas.N(2))},
		{"x^-2", levycas.PowOf(x, levycas.N(-2))},
		{"-x", levycas.Neg(x)},
		{"2^3^2", levycas.N(512)}, // right associative
		{"(x+1)/(x-1)", levycas.Div(levycas.AddOf(x, levycas.N(1)), levycas.AddOf(x, levycas.N(-1)))},
		{"sin(x)*cos(x)", levycas.MulOf(levycas.SinOf(x), levycas.CosOf(x))},
		{"arctan(x^2)", levycas.ArcTanOf(levycas.PowOf(x, levycas.N(2)))},
		{"sqrt(x)", levycas.SqrtOf(x)},
		{"ln(exp(x))", x},
		{"1/3", levycas.F(1, 3)},
	}
	for _, c := range cases {
		got := mustParse(t, c.input)
		assert.True(t, got.Equal(c.want), "%q parsed to %s, want %s", c.input, got, c.want)
	}
}

func TestParsePrecedence(t *testing.T) {
	got := mustParse(t, "1 + 2*3^2")
	assert.True(t, got.Equal(levycas.N(19)))

	got = mustParse(t, "(1 + 2) * 3")
	assert.True(t, got.Equal(levycas.N(9)))
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"x +",
		"(x",
		"x)",
		"foo(x)",
		"1..5",
		"x ? y",
		"α + 1", // identifiers are ASCII only
	}
	for _, input := range bad {
		_, err := parse.Expr(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestEnvAssignment(t *testing.T) {
	env := parse.NewEnv(0)

	out, err := env.Exec("f = x^2 + 1")
	require.NoError(t, err)
	assert.Empty(t, out, "assignments print nothing")

	out, err = env.Exec("f + 1")
	require.NoError(t, err)
	assert.Equal(t, "x^2 + 2", out)

	// Eager resolution: rebinding x later must not change f.
	_, err = env.Exec("x = 3")
	require.NoError(t, err)
	f, ok := env.Lookup("f")
	require.True(t, ok)
	assert.Equal(t, "x^2 + 1", f.String())
}

func TestEnvCommands(t *testing.T) {
	env := parse.NewEnv(0)

	out, err := env.Exec("\\derivate x^2, x")
	require.NoError(t, err)
	assert.Equal(t, "2*x", out)

	out, err = env.Exec("\\integrate cos(x), x")
	require.NoError(t, err)
	assert.Equal(t, "sin(x)", out)

	out, err = env.Exec("\\eval 2 + 2")
	require.NoError(t, err)
	assert.Equal(t, "4", out)

	_, err = env.Exec("\\frobnicate x, x")
	assert.Error(t, err)

	_, err = env.Exec("\\derivate x^2")
	assert.Error(t, err, "missing variable")
}

func TestEnvCommandUsesBindings(t *testing.T) {
	env := parse.NewEnv(0)

	_, err := env.Exec("g = x^3")
	require.NoError(t, err)

	out, err := env.Exec("\\derivate g, x")
	require.NoError(t, err)
	assert.Equal(t, "3*x^2", out)
}

func TestEnvPrintAndComments(t *testing.T) {
	env := parse.NewEnv(0)

	out, err := env.Exec("print x + x")
	require.NoError(t, err)
	assert.Equal(t, "2*x", out)

	out, err = env.Exec("# just a comment")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = env.Exec("   ")
	require.NoError(t, err)
	assert.Empty(t, out)
}
