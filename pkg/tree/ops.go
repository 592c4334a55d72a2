package tree

import (
	"fmt"

	"github.com/chazu/geonodes/pkg/graph"
)

// Op is an arithmetic operator applied to a Port.
type Op string

const (
	OpAdd    Op = "+"
	OpSub    Op = "-"
	OpMul    Op = "*"
	OpDiv    Op = "/"
	OpNeg    Op = "neg"
	OpMatMul Op = "@"
	OpPow    Op = "**"
)

// ParseOp accepts the operator symbols and their names (add, sub, ...).
func ParseOp(s string) (Op, error) {
	switch s {
	case "+", "add":
		return OpAdd, nil
	case "-", "sub":
		return OpSub, nil
	case "*", "mul":
		return OpMul, nil
	case "/", "div":
		return OpDiv, nil
	case "neg":
		return OpNeg, nil
	case "@", "matmul":
		return OpMatMul, nil
	case "**", "pow":
		return OpPow, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

type opKey struct {
	op  Op
	typ graph.SocketType
}

// opFunc builds the node for p op other, or other op p when reflected.
type opFunc func(p *Port, other any, reflected bool) (*Port, error)

var opTable = map[opKey]opFunc{
	{OpAdd, graph.TypeBoolean}: boolOp("OR"),
	{OpMul, graph.TypeBoolean}: boolOp("AND"),
	{OpNeg, graph.TypeBoolean}: boolNot,

	{OpAdd, graph.TypeInteger}:    intOp("ADD"),
	{OpSub, graph.TypeInteger}:    intOp("SUBTRACT"),
	{OpMul, graph.TypeInteger}:    scaleOr(intOp("MULTIPLY")),
	{OpDiv, graph.TypeInteger}:    floatOp("DIVIDE"),
	{OpNeg, graph.TypeInteger}:    intNeg,
	{OpMatMul, graph.TypeInteger}: multiplyAdd(true),

	{OpAdd, graph.TypeFloat}:    floatOp("ADD"),
	{OpSub, graph.TypeFloat}:    floatOp("SUBTRACT"),
	{OpMul, graph.TypeFloat}:    scaleOr(floatOp("MULTIPLY")),
	{OpDiv, graph.TypeFloat}:    floatOp("DIVIDE"),
	{OpNeg, graph.TypeFloat}:    floatNeg,
	{OpMatMul, graph.TypeFloat}: multiplyAdd(false),

	{OpAdd, graph.TypeVector}:    vecOp("ADD", "Vector"),
	{OpSub, graph.TypeVector}:    vecOp("SUBTRACT", "Vector"),
	{OpMul, graph.TypeVector}:    vecMul,
	{OpDiv, graph.TypeVector}:    vecOp("DIVIDE", "Vector"),
	{OpNeg, graph.TypeVector}:    vecNeg,
	{OpMatMul, graph.TypeVector}: vecOp("DOT_PRODUCT", "Value"),
	{OpPow, graph.TypeVector}:    vecOp("CROSS_PRODUCT", "Vector"),

	{OpAdd, graph.TypeColor}: mixOp("ADD"),
	{OpMul, graph.TypeColor}: mixOp("MULTIPLY"),
	{OpDiv, graph.TypeColor}: mixOp("DIVIDE"),

	{OpAdd, graph.TypeString}: strConcat,
	{OpMul, graph.TypeString}: strJoin,

	{OpAdd, graph.TypeGeometry}: geoJoin,
}

// opType maps a port type to its row in the operator table. Rotations use
// the vector row.
func opType(t graph.SocketType) graph.SocketType {
	if t == graph.TypeRotation {
		return graph.TypeVector
	}
	return t
}

// Supports reports whether op has a mapping for ports of type t.
func Supports(op Op, t graph.SocketType) bool {
	_, ok := opTable[opKey{op, opType(t)}]
	return ok
}

// Apply returns p op other. other may be a Socket or a literal. Neg ignores
// other.
func (p *Port) Apply(op Op, other any) (*Port, error) {
	return p.apply(op, other, false)
}

// ApplyReflected returns other op p, for a literal on the left.
func (p *Port) ApplyReflected(op Op, other any) (*Port, error) {
	return p.apply(op, other, true)
}

func (p *Port) apply(op Op, other any, reflected bool) (*Port, error) {
	f, ok := opTable[opKey{op, opType(p.typ)}]
	if !ok {
		return nil, &UnsupportedOperationError{Op: op, Type: p.typ}
	}
	if s, ok := other.(Socket); ok && s.socket() == nil {
		return nil, fmt.Errorf("operator %s: nil operand", op)
	}
	return f(p, other, reflected)
}

// InPlace applies op and jumps p to the result. The result must keep p's
// type.
func (p *Port) InPlace(op Op, other any) error {
	r, err := p.Apply(op, other)
	if err != nil {
		return err
	}
	if r.typ != p.typ {
		return &UnsupportedOperationError{
			Op: op, Type: p.typ,
			Detail: fmt.Sprintf("in-place result would be %s", r.typ),
		}
	}
	return p.Jump(r)
}

func (p *Port) Add(other any) (*Port, error)    { return p.Apply(OpAdd, other) }
func (p *Port) Sub(other any) (*Port, error)    { return p.Apply(OpSub, other) }
func (p *Port) Mul(other any) (*Port, error)    { return p.Apply(OpMul, other) }
func (p *Port) Div(other any) (*Port, error)    { return p.Apply(OpDiv, other) }
func (p *Port) MatMul(other any) (*Port, error) { return p.Apply(OpMatMul, other) }
func (p *Port) Pow(other any) (*Port, error)    { return p.Apply(OpPow, other) }
func (p *Port) Neg() (*Port, error)             { return p.Apply(OpNeg, nil) }

func (p *Port) AddInPlace(other any) error { return p.InPlace(OpAdd, other) }
func (p *Port) SubInPlace(other any) error { return p.InPlace(OpSub, other) }
func (p *Port) MulInPlace(other any) error { return p.InPlace(OpMul, other) }
func (p *Port) DivInPlace(other any) error { return p.InPlace(OpDiv, other) }

// ---------------------------------------------------------------------------
// Operand classification
// ---------------------------------------------------------------------------

func operandType(v any) (graph.SocketType, bool) {
	if s, ok := v.(Socket); ok {
		return s.socket().typ, true
	}
	return graph.LiteralType(v)
}

func isIntegral(v any) bool {
	t, ok := operandType(v)
	return ok && (t == graph.TypeInteger || t == graph.TypeBoolean)
}

func isScalar(v any) bool {
	t, ok := operandType(v)
	return ok && t.Scalar()
}

func isVector(v any) bool {
	t, ok := operandType(v)
	return ok && (t == graph.TypeVector || t == graph.TypeRotation)
}

func order(p *Port, other any, reflected bool) (any, any) {
	if reflected {
		return other, p
	}
	return p, other
}

// pair splits the right-hand side of @ on scalars: (multiplier, addend).
func pair(v any) (any, any, error) {
	switch x := v.(type) {
	case []any:
		if len(x) == 2 {
			return x[0], x[1], nil
		}
	case [2]any:
		return x[0], x[1], nil
	case []float64:
		if len(x) == 2 {
			return x[0], x[1], nil
		}
	}
	return nil, nil, fmt.Errorf("multiply-add needs a (multiplier, addend) pair, got %T", v)
}

// ---------------------------------------------------------------------------
// Table entries
// ---------------------------------------------------------------------------

func boolOp(op string) opFunc {
	return func(p *Port, other any, reflected bool) (*Port, error) {
		a, b := order(p, other, reflected)
		return p.tree.BooleanMath(op, a, b)
	}
}

func boolNot(p *Port, _ any, _ bool) (*Port, error) {
	return p.tree.BooleanMath("NOT", p, nil)
}

// intOp stays integer when the other operand is integral and falls back to
// float Math otherwise.
func intOp(op string) opFunc {
	return func(p *Port, other any, reflected bool) (*Port, error) {
		a, b := order(p, other, reflected)
		if isIntegral(other) {
			return p.tree.IntegerMath(op, a, b)
		}
		return p.tree.Math(op, a, b)
	}
}

func floatOp(op string) opFunc {
	return func(p *Port, other any, reflected bool) (*Port, error) {
		a, b := order(p, other, reflected)
		return p.tree.Math(op, a, b)
	}
}

// scaleOr turns scalar * vector into a vector SCALE.
func scaleOr(f opFunc) opFunc {
	return func(p *Port, other any, reflected bool) (*Port, error) {
		if isVector(other) {
			n, err := p.tree.VectorMath("SCALE", p, other)
			if err != nil {
				return nil, err
			}
			return n.Output("Vector")
		}
		return f(p, other, reflected)
	}
}

func intNeg(p *Port, _ any, _ bool) (*Port, error) {
	return p.tree.IntegerMath("NEGATE", p)
}

func floatNeg(p *Port, _ any, _ bool) (*Port, error) {
	return p.tree.Math("MULTIPLY", p, -1.0)
}

func multiplyAdd(integer bool) opFunc {
	return func(p *Port, other any, reflected bool) (*Port, error) {
		if reflected {
			return nil, &UnsupportedOperationError{Op: OpMatMul, Type: p.typ, Detail: "the port must be on the left"}
		}
		mul, add, err := pair(other)
		if err != nil {
			return nil, &UnsupportedOperationError{Op: OpMatMul, Type: p.typ, Detail: err.Error()}
		}
		if integer && isIntegral(mul) && isIntegral(add) {
			return p.tree.IntegerMath("MULTIPLY_ADD", p, mul, add)
		}
		return p.tree.Math("MULTIPLY_ADD", p, mul, add)
	}
}

func vecOp(op, output string) opFunc {
	return func(p *Port, other any, reflected bool) (*Port, error) {
		a, b := order(p, other, reflected)
		n, err := p.tree.VectorMath(op, nil, a, b)
		if err != nil {
			return nil, err
		}
		return n.Output(output)
	}
}

// vecMul scales by scalars and multiplies component-wise otherwise.
func vecMul(p *Port, other any, reflected bool) (*Port, error) {
	if isScalar(other) {
		n, err := p.tree.VectorMath("SCALE", other, p)
		if err != nil {
			return nil, err
		}
		return n.Output("Vector")
	}
	return vecOp("MULTIPLY", "Vector")(p, other, reflected)
}

func vecNeg(p *Port, _ any, _ bool) (*Port, error) {
	n, err := p.tree.VectorMath("SCALE", -1.0, p)
	if err != nil {
		return nil, err
	}
	return n.Output("Vector")
}

func mixOp(blend string) opFunc {
	return func(p *Port, other any, reflected bool) (*Port, error) {
		a, b := order(p, other, reflected)
		return p.tree.Mix(blend, 1.0, a, b)
	}
}

func strConcat(p *Port, other any, reflected bool) (*Port, error) {
	a, b := order(p, other, reflected)
	return p.tree.JoinStrings("", a, b)
}

// strJoin uses p as the delimiter between the strings of other.
func strJoin(p *Port, other any, _ bool) (*Port, error) {
	var items []any
	switch x := other.(type) {
	case []any:
		items = x
	case []string:
		for _, s := range x {
			items = append(items, s)
		}
	case Many:
		items = x
	default:
		return nil, &UnsupportedOperationError{Op: OpMul, Type: p.typ, Detail: fmt.Sprintf("cannot join %T", other)}
	}
	return p.tree.JoinStrings(p, items...)
}

func geoJoin(p *Port, other any, reflected bool) (*Port, error) {
	a, b := order(p, other, reflected)
	g, err := p.tree.JoinGeometry(a, b)
	if err != nil {
		return nil, err
	}
	return g.Port, nil
}
