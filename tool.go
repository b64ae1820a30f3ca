package levycas

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
)

// ToolRequest is one operation invocation on the kernel, suitable for
// transport as JSON. Expression payloads use the same wire form as
// ToJSON; integers travel as decimal strings so they never overflow.
type ToolRequest struct {
	Op      string            `json:"op"`
	Expr    json.RawMessage   `json:"expr,omitempty"`
	Other   json.RawMessage   `json:"other,omitempty"`
	Factors []json.RawMessage `json:"factors,omitempty"`
	Var     string            `json:"var,omitempty"`
	Name    string            `json:"name,omitempty"`
	Value   json.RawMessage   `json:"value,omitempty"`
	N       string            `json:"n,omitempty"`
	M       string            `json:"m,omitempty"`
	Depth   int               `json:"depth,omitempty"`
}

// ToolResponse carries either a result or an error. Expression results
// appear both in wire form (Result) and rendered (Text).
type ToolResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Text   string          `json:"text,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ToolOpInfo describes one operation for schema listings.
type ToolOpInfo struct {
	Op     string   `json:"op"`
	Params []string `json:"params"`
	Doc    string   `json:"doc"`
}

// ToolSpec lists every operation HandleToolCall accepts.
func ToolSpec() []ToolOpInfo {
	return []ToolOpInfo{
		{"canonical", []string{"expr"}, "re-canonicalize an expression"},
		{"latex", []string{"expr"}, "render an expression as LaTeX"},
		{"free_symbols", []string{"expr"}, "list the symbols in an expression"},
		{"expand", []string{"expr"}, "distribute products and integer powers over sums"},
		{"substitute", []string{"expr", "name", "value"}, "replace a symbol with an expression"},
		{"derivative", []string{"expr", "var"}, "differentiate with respect to var"},
		{"integrate", []string{"expr", "var", "depth?"}, "antidifferentiate with respect to var"},
		{"rationalize", []string{"expr"}, "combine quotients over a common denominator"},
		{"partial_fractions", []string{"expr", "factors", "var"}, "decompose over coprime denominator factors"},
		{"degree", []string{"expr", "var"}, "polynomial degree in var"},
		{"poly_divide", []string{"expr", "other", "var"}, "polynomial quotient and remainder"},
		{"poly_gcd", []string{"expr", "other", "var"}, "monic polynomial gcd"},
		{"factor_polynomial", []string{"expr", "var"}, "split off rational roots"},
		{"is_prime", []string{"n"}, "primality of an integer >= 2"},
		{"gcd", []string{"n", "m"}, "integer greatest common divisor"},
		{"factor_integer", []string{"n"}, "prime factorization of an integer >= 1"},
		{"radical", []string{"n"}, "product of the distinct prime divisors"},
	}
}

// HandleToolCall executes one request. Failures are reported in the
// response rather than returned, so a transport can always answer.
func HandleToolCall(req ToolRequest) ToolResponse {
	resp, err := dispatchToolCall(req)
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}
	resp.OK = true
	return resp
}

func dispatchToolCall(req ToolRequest) (ToolResponse, error) {
	switch req.Op {
	case "canonical":
		e, err := requireExpr(req.Expr, "expr")
		if err != nil {
			return ToolResponse{}, err
		}
		return exprResponse(e)

	case "latex":
		e, err := requireExpr(req.Expr, "expr")
		if err != nil {
			return ToolResponse{}, err
		}
		return ToolResponse{Text: e.LaTeX()}, nil

	case "free_symbols":
		e, err := requireExpr(req.Expr, "expr")
		if err != nil {
			return ToolResponse{}, err
		}
		return jsonResponse(FreeSymbols(e))

	case "expand":
		e, err := requireExpr(req.Expr, "expr")
		if err != nil {
			return ToolResponse{}, err
		}
		return exprResponse(Expand(e))

	case "substitute":
		e, err := requireExpr(req.Expr, "expr")
		if err != nil {
			return ToolResponse{}, err
		}
		if req.Name == "" {
			return ToolResponse{}, errors.New("substitute: missing name")
		}
		value, err := requireExpr(req.Value, "value")
		if err != nil {
			return ToolResponse{}, err
		}
		return exprResponse(Substitute(e, req.Name, value))

	case "derivative":
		e, v, err := requireExprVar(req)
		if err != nil {
			return ToolResponse{}, err
		}
		d, err := Derivative(e, v)
		if err != nil {
			return ToolResponse{}, err
		}
		return exprResponse(d)

	case "integrate":
		e, v, err := requireExprVar(req)
		if err != nil {
			return ToolResponse{}, err
		}
		depth := req.Depth
		if depth <= 0 {
			depth = DefaultIntegrateDepth
		}
		r, err := IntegrateDepth(e, v, depth)
		if err != nil {
			return ToolResponse{}, err
		}
		return exprResponse(r)

	case "rationalize":
		e, err := requireExpr(req.Expr, "expr")
		if err != nil {
			return ToolResponse{}, err
		}
		return exprResponse(Rationalize(e))

	case "partial_fractions":
		e, v, err := requireExprVar(req)
		if err != nil {
			return ToolResponse{}, err
		}
		if len(req.Factors) == 0 {
			return ToolResponse{}, errors.New("partial_fractions: missing factors")
		}
		factors := make([]Expr, len(req.Factors))
		for i, raw := range req.Factors {
			f, err := FromJSON(raw)
			if err != nil {
				return ToolResponse{}, errors.Wrapf(err, "factor %d", i)
			}
			factors[i] = f
		}
		consts, err := UnivariatePartialFractions(e, factors, v)
		if err != nil {
			return ToolResponse{}, err
		}
		rendered := make([]string, len(consts))
		for i, c := range consts {
			rendered[i] = c.String()
		}
		return jsonResponse(rendered)

	case "degree":
		e, v, err := requireExprVar(req)
		if err != nil {
			return ToolResponse{}, err
		}
		p, err := PolyFromExpr(Expand(e), v)
		if err != nil {
			return ToolResponse{}, err
		}
		return jsonResponse(p.Degree())

	case "poly_divide":
		e, v, err := requireExprVar(req)
		if err != nil {
			return ToolResponse{}, err
		}
		other, err := requireExpr(req.Other, "other")
		if err != nil {
			return ToolResponse{}, err
		}
		p, err := PolyFromExpr(Expand(e), v)
		if err != nil {
			return ToolResponse{}, err
		}
		q, err := PolyFromExpr(Expand(other), v)
		if err != nil {
			return ToolResponse{}, err
		}
		quo, rem, err := PolyDivide(p, q)
		if err != nil {
			return ToolResponse{}, err
		}
		return jsonResponse(map[string]string{
			"quotient":  quo.Expr().String(),
			"remainder": rem.Expr().String(),
		})

	case "poly_gcd":
		e, v, err := requireExprVar(req)
		if err != nil {
			return ToolResponse{}, err
		}
		other, err := requireExpr(req.Other, "other")
		if err != nil {
			return ToolResponse{}, err
		}
		p, err := PolyFromExpr(Expand(e), v)
		if err != nil {
			return ToolResponse{}, err
		}
		q, err := PolyFromExpr(Expand(other), v)
		if err != nil {
			return ToolResponse{}, err
		}
		g, err := PolyGcd(p, q)
		if err != nil {
			return ToolResponse{}, err
		}
		return exprResponse(g.Expr())

	case "factor_polynomial":
		e, v, err := requireExprVar(req)
		if err != nil {
			return ToolResponse{}, err
		}
		constant, factors, err := FactorPolynomial(e, v)
		if err != nil {
			return ToolResponse{}, err
		}
		rendered := make([]string, len(factors))
		for i, f := range factors {
			rendered[i] = f.String()
		}
		return jsonResponse(map[string]interface{}{
			"constant": constant.String(),
			"factors":  rendered,
		})

	case "is_prime":
		n, err := requireInt(req.N, "n")
		if err != nil {
			return ToolResponse{}, err
		}
		prime, err := IsPrime(n)
		if err != nil {
			return ToolResponse{}, err
		}
		return jsonResponse(prime)

	case "gcd":
		n, err := requireInt(req.N, "n")
		if err != nil {
			return ToolResponse{}, err
		}
		m, err := requireInt(req.M, "m")
		if err != nil {
			return ToolResponse{}, err
		}
		return ToolResponse{Text: GCD(n, m).String()}, nil

	case "factor_integer":
		n, err := requireInt(req.N, "n")
		if err != nil {
			return ToolResponse{}, err
		}
		factors, err := FactorInteger(n)
		if err != nil {
			return ToolResponse{}, err
		}
		type entry struct {
			Prime        string `json:"prime"`
			Multiplicity int    `json:"multiplicity"`
		}
		out := make([]entry, len(factors))
		for i, pp := range factors {
			out[i] = entry{Prime: pp.Prime.String(), Multiplicity: pp.Multiplicity}
		}
		return jsonResponse(out)

	case "radical":
		n, err := requireInt(req.N, "n")
		if err != nil {
			return ToolResponse{}, err
		}
		rad, err := Radical(n)
		if err != nil {
			return ToolResponse{}, err
		}
		return ToolResponse{Text: rad.String()}, nil
	}
	return ToolResponse{}, errors.Errorf("unknown op %q", req.Op)
}

func requireExpr(raw json.RawMessage, field string) (Expr, error) {
	if len(raw) == 0 {
		return nil, errors.Errorf("missing %s", field)
	}
	return FromJSON(raw)
}

func requireExprVar(req ToolRequest) (Expr, string, error) {
	e, err := requireExpr(req.Expr, "expr")
	if err != nil {
		return nil, "", err
	}
	if req.Var == "" {
		return nil, "", errors.Errorf("%s: missing var", req.Op)
	}
	return e, req.Var, nil
}

func requireInt(s, field string) (*big.Int, error) {
	if s == "" {
		return nil, errors.Errorf("missing %s", field)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("%s: invalid integer %q", field, s)
	}
	return n, nil
}

func exprResponse(e Expr) (ToolResponse, error) {
	wire, err := ToJSON(e)
	if err != nil {
		return ToolResponse{}, err
	}
	return ToolResponse{Result: wire, Text: e.String()}, nil
}

func jsonResponse(v interface{}) (ToolResponse, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return ToolResponse{}, err
	}
	return ToolResponse{Result: data}, nil
}
