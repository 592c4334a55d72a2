package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/geonodes/pkg/graph"
	"github.com/chazu/geonodes/pkg/tree"
	"github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites script source before zygomys sees it:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keywords never collide with user variables of the same name.
//
//  2. Kebab-case to underscore: set-field -> set_field. zygomys reads a
//     hyphen inside an identifier as subtraction.
//
//  3. ; line comments become // comments.
//
// String literals are left untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}

		case b[i] == '`':
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}

		case b[i] == ';':
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, b[i], b[i+1])
			i += 2

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j

		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++

		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPort wraps a non-geometry tree.Port.
type sexpPort struct {
	p *tree.Port
}

func (s *sexpPort) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(port %s)", s.p)
}
func (s *sexpPort) Type() *zygo.RegisteredType { return nil }

// sexpGeometry wraps a tree.Geometry. Builtins that mutate the geometry
// return the same value, so a (def geo ...) binding follows every write.
type sexpGeometry struct {
	g *tree.Geometry
}

func (s *sexpGeometry) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(geometry %s)", s.g.Ref())
}
func (s *sexpGeometry) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a vector literal.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSpan wraps an index range selector.
type sexpSpan struct {
	span tree.Span
}

func (s *sexpSpan) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(span %s)", s.span)
}
func (s *sexpSpan) Type() *zygo.RegisteredType { return nil }

// sexpNode wraps a node so its outputs can be picked with (out ...).
type sexpNode struct {
	n *tree.Node
}

func (s *sexpNode) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(node %q)", s.n.ID())
}
func (s *sexpNode) Type() *zygo.RegisteredType { return nil }

// sexpSimulation wraps an open or closed simulation zone.
type sexpSimulation struct {
	sim *tree.Simulation
}

func (s *sexpSimulation) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(simulation %q)", s.sim.Input().ID())
}
func (s *sexpSimulation) Type() *zygo.RegisteredType { return nil }

// sexpResource wraps a resolved material, object, image or collection.
type sexpResource struct {
	r graph.Resource
}

func (s *sexpResource) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", s.r.Kind, s.r.Name)
}
func (s *sexpResource) Type() *zygo.RegisteredType { return nil }

// wrapPort returns the Sexp for p: geometry ports become sexpGeometry.
func wrapPort(p *tree.Port) zygo.Sexp {
	if g, ok := tree.Wrap(p).(*tree.Geometry); ok {
		return &sexpGeometry{g: g}
	}
	return &sexpPort{p: p}
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// A keyword in last position is a flag with a nil value.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
			continue
		}
		result.positional = append(result.positional, args[i])
		i++
	}
	return result
}

// arg returns positional argument i, or nil when it is missing.
func (a kwArgs) arg(i int) zygo.Sexp {
	if i < len(a.positional) {
		return a.positional[i]
	}
	return nil
}

// value returns the converted keyword argument name, or nil.
func (a kwArgs) value(name string) (any, error) {
	s, ok := a.kw[name]
	if !ok {
		return nil, nil
	}
	return toValue(s)
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

// toInt extracts an integer from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %s", describe(s))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", describe(s))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_face) and plain strings ("face").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %s", describe(s))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toEnum turns :only-face or "only_face" into the host spelling ONLY_FACE.
func toEnum(s zygo.Sexp) (string, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_")), nil
}

// fieldName turns :material-index into material_index.
func fieldName(s zygo.Sexp) (string, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(name, "-", "_"), nil
}

// toGeometry extracts the tree.Geometry behind a sexpGeometry.
func toGeometry(s zygo.Sexp) (*tree.Geometry, error) {
	if g, ok := s.(*sexpGeometry); ok {
		return g.g, nil
	}
	return nil, fmt.Errorf("expected geometry, got %s", describe(s))
}

// toValue converts a Sexp into the Go value pkg/tree expects: int64,
// float64, bool, string, v3.Vec, tree.Span, graph.Resource, a socket, nil
// or []any for lists.
func toValue(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case nil:
		return nil, nil
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpStr:
		return strings.TrimPrefix(v.S, kwPrefix), nil
	case *sexpVec3:
		return v.vec, nil
	case *sexpSpan:
		return v.span, nil
	case *sexpResource:
		return v.r, nil
	case *sexpPort:
		return v.p, nil
	case *sexpGeometry:
		return v.g, nil
	case *zygo.SexpPair, *zygo.SexpArray:
		items, err := sexpListToSlice(s)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			if out[i], err = toValue(item); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	if s == zygo.SexpNull {
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported value %s", describe(s))
}

// portOf returns the port behind a socket value.
func portOf(v any) (*tree.Port, bool) {
	switch x := v.(type) {
	case *tree.Port:
		return x, true
	case *tree.Geometry:
		return x.Port, true
	}
	return nil, false
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

func describe(s zygo.Sexp) string {
	if s == nil {
		return "nothing"
	}
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}
