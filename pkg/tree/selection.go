package tree

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/geonodes/pkg/graph"
)

// Span is an index range with optional bounds: Lo is inclusive, Hi is
// exclusive.
type Span struct {
	Lo, Hi       int
	HasLo, HasHi bool
}

// Range selects indices lo <= i < hi.
func Range(lo, hi int) Span { return Span{Lo: lo, Hi: hi, HasLo: true, HasHi: true} }

// From selects indices i >= lo.
func From(lo int) Span { return Span{Lo: lo, HasLo: true} }

// Until selects indices i < hi.
func Until(hi int) Span { return Span{Hi: hi, HasHi: true} }

// Everything is the unbounded span; it selects every element.
func Everything() Span { return Span{} }

func (s Span) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if s.HasLo {
		fmt.Fprint(&b, s.Lo)
	}
	b.WriteByte(':')
	if s.HasHi {
		fmt.Fprint(&b, s.Hi)
	}
	b.WriteByte(']')
	return b.String()
}

// Contains reports whether index i is in the span.
func (s Span) Contains(i int) bool {
	return (!s.HasLo || i >= s.Lo) && (!s.HasHi || i < s.Hi)
}

// RangeEncoding selects how a bounded Span becomes a predicate.
type RangeEncoding int

const (
	// RangeAnd emits index >= lo AND index < hi.
	RangeAnd RangeEncoding = iota
	// RangeEpsilon emits one float equality test around the middle of the
	// range with a 0.1 margin.
	RangeEpsilon
)

func (e RangeEncoding) String() string {
	switch e {
	case RangeAnd:
		return "and"
	case RangeEpsilon:
		return "epsilon"
	default:
		return fmt.Sprintf("RangeEncoding(%d)", int(e))
	}
}

// ParseRangeEncoding parses "and" or "epsilon". Empty means RangeAnd.
func ParseRangeEncoding(s string) (RangeEncoding, error) {
	switch strings.ToLower(s) {
	case "", "and":
		return RangeAnd, nil
	case "epsilon":
		return RangeEpsilon, nil
	}
	return RangeAnd, fmt.Errorf("unknown range encoding %q", s)
}

// ---------------------------------------------------------------------------
// Selector classification
// ---------------------------------------------------------------------------

// selection combines a pending selector with an explicit one. It creates no
// node when nothing was attached.
func (t *Tree) selection(raw any, attached bool, explicit any) (*Port, error) {
	exp, err := t.Predicate(explicit)
	if err != nil {
		return nil, err
	}
	if !attached {
		return exp, nil
	}
	pred, err := t.Predicate(raw)
	if err != nil {
		return nil, err
	}
	if pred == nil {
		return exp, nil
	}
	if exp == nil {
		return pred, nil
	}
	return t.BooleanMath("AND", pred, exp)
}

// Predicate turns a selector into a Boolean port. A nil result means no
// restriction. Accepted selectors:
//
//   - nil and Everything(): no restriction
//   - Span: index comparisons
//   - integers and integral floats: index == n
//   - Integer ports: index == port
//   - Boolean ports: passed through
//   - bool: a Boolean constant
func (t *Tree) Predicate(sel any) (*Port, error) {
	switch x := sel.(type) {
	case nil:
		return nil, nil
	case Span:
		return t.spanPredicate(x)
	case bool:
		return t.Constant(x)
	case Socket:
		p, _, err := t.asPort(x)
		if err != nil {
			return nil, &InvalidSelectionError{Selector: fmt.Sprint(sel), Reason: err.Error()}
		}
		switch p.typ {
		case graph.TypeBoolean:
			return p, nil
		case graph.TypeInteger:
			return t.indexCompare("EQUAL", p)
		}
		return nil, &InvalidSelectionError{
			Selector: p.String(),
			Reason:   fmt.Sprintf("%s ports cannot select; use a Boolean or Integer port", p.typ),
		}
	}

	n, err := integerLike(sel)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &InvalidSelectionError{Selector: fmt.Sprint(sel), Reason: "negative index"}
	}
	return t.indexCompare("EQUAL", n)
}

func integerLike(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, &InvalidSelectionError{Selector: fmt.Sprint(v), Reason: "index out of range"}
		}
		return int64(x), nil
	case float32:
		return integerLike(float64(x))
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, &InvalidSelectionError{Selector: fmt.Sprint(v), Reason: "index is not an integer"}
		}
		if math.Abs(x) >= math.MaxInt64 {
			return 0, &InvalidSelectionError{Selector: fmt.Sprint(v), Reason: "index out of range"}
		}
		return int64(x), nil
	}
	return 0, &InvalidSelectionError{Selector: fmt.Sprint(v), Reason: fmt.Sprintf("unsupported selector type %T", v)}
}

func (t *Tree) spanPredicate(s Span) (*Port, error) {
	invalid := func(reason string) (*Port, error) {
		return nil, &InvalidSelectionError{Selector: s.String(), Reason: reason}
	}
	if s.HasLo && s.Lo < 0 {
		return invalid("negative start")
	}
	if s.HasHi && s.Hi < 0 {
		return invalid("negative stop")
	}
	if s.HasLo && s.HasHi && s.Lo >= s.Hi {
		return invalid("empty range")
	}

	switch {
	case !s.HasLo && !s.HasHi:
		return nil, nil
	case !s.HasLo:
		return t.indexCompare("LESS_THAN", s.Hi)
	case !s.HasHi:
		return t.indexCompare("GREATER_EQUAL", s.Lo)
	}

	idx, err := t.Index()
	if err != nil {
		return nil, err
	}
	if t.encoding == RangeEpsilon {
		// The members are lo..hi-1; the margin keeps both ends inside the
		// float tolerance and both neighbours outside.
		last := float64(s.Hi - 1)
		mid := (float64(s.Lo) + last) / 2
		half := (last-float64(s.Lo))/2 + 0.1
		return t.Compare("EQUAL", "FLOAT", idx, mid, half)
	}

	lo, err := t.Compare("GREATER_EQUAL", "INT", idx, s.Lo, nil)
	if err != nil {
		return nil, err
	}
	hi, err := t.Compare("LESS_THAN", "INT", idx, s.Hi, nil)
	if err != nil {
		return nil, err
	}
	return t.BooleanMath("AND", lo, hi)
}

// indexCompare creates an Index node and compares it with v.
func (t *Tree) indexCompare(op string, v any) (*Port, error) {
	idx, err := t.Index()
	if err != nil {
		return nil, err
	}
	return t.Compare(op, "INT", idx, v, nil)
}
