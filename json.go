package levycas

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
)

// jsonExpr is the wire form of an expression tree. Numbers carry their
// exact rational value as a string so nothing is lost to floating point.
type jsonExpr struct {
	Kind  string      `json:"kind"`
	Value string      `json:"value,omitempty"`
	Args  []*jsonExpr `json:"args,omitempty"`
}

// ToJSON serializes an expression.
func ToJSON(e Expr) ([]byte, error) {
	return json.Marshal(encodeExpr(e))
}

func encodeExpr(e Expr) *jsonExpr {
	switch t := e.(type) {
	case *Num:
		return &jsonExpr{Kind: "num", Value: t.val.RatString()}
	case *Sym:
		return &jsonExpr{Kind: "sym", Value: t.name}
	case *Add:
		return &jsonExpr{Kind: "add", Args: encodeList(t.terms)}
	case *Mul:
		return &jsonExpr{Kind: "mul", Args: encodeList(t.factors)}
	case *Pow:
		return &jsonExpr{Kind: "pow", Args: []*jsonExpr{encodeExpr(t.base), encodeExpr(t.exp)}}
	case *Func:
		return &jsonExpr{Kind: "func", Value: t.fn.String(), Args: []*jsonExpr{encodeExpr(t.arg)}}
	}
	return nil
}

func encodeList(exprs []Expr) []*jsonExpr {
	out := make([]*jsonExpr, len(exprs))
	for i, e := range exprs {
		out[i] = encodeExpr(e)
	}
	return out
}

var funcKindsByName = map[string]FuncKind{
	"sin": FuncSin, "cos": FuncCos, "tan": FuncTan,
	"arcsin": FuncArcSin, "arccos": FuncArcCos, "arctan": FuncArcTan,
	"exp": FuncExp, "ln": FuncLn,
}

// FromJSON rebuilds an expression from its wire form. The result passes
// through the canonicalizing constructors, so any well-formed tree comes
// back canonical even if it was not serialized that way.
func FromJSON(data []byte) (Expr, error) {
	var wire jsonExpr
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.Wrap(err, "decode expression")
	}
	return decodeExpr(&wire)
}

func decodeExpr(w *jsonExpr) (Expr, error) {
	switch w.Kind {
	case "num":
		r, ok := new(big.Rat).SetString(w.Value)
		if !ok {
			return nil, errors.Errorf("invalid rational %q", w.Value)
		}
		return NRat(r), nil
	case "sym":
		if w.Value == "" {
			return nil, errors.New("symbol with empty name")
		}
		return S(w.Value), nil
	case "add":
		args, err := decodeList(w.Args, 2)
		if err != nil {
			return nil, err
		}
		return AddOf(args...), nil
	case "mul":
		args, err := decodeList(w.Args, 2)
		if err != nil {
			return nil, err
		}
		return MulOf(args...), nil
	case "pow":
		args, err := decodeList(w.Args, 2)
		if err != nil {
			return nil, err
		}
		if len(args) != 2 {
			return nil, errors.Errorf("pow needs exactly 2 args, got %d", len(args))
		}
		return PowOf(args[0], args[1]), nil
	case "func":
		kind, ok := funcKindsByName[w.Value]
		if !ok {
			return nil, errors.Errorf("unknown function %q", w.Value)
		}
		args, err := decodeList(w.Args, 1)
		if err != nil {
			return nil, err
		}
		if len(args) != 1 {
			return nil, errors.Errorf("%s needs exactly 1 arg, got %d", w.Value, len(args))
		}
		return FuncOf(kind, args[0]), nil
	}
	return nil, errors.Errorf("unknown expression kind %q", w.Kind)
}

func decodeList(wires []*jsonExpr, min int) ([]Expr, error) {
	if len(wires) < min {
		return nil, errors.Errorf("need at least %d args, got %d", min, len(wires))
	}
	out := make([]Expr, len(wires))
	for i, w := range wires {
		e, err := decodeExpr(w)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
