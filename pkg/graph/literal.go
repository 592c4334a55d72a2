package graph

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// LiteralType classifies a Go value that can be stored directly in an input
// socket. It reports false for values that are not literals.
func LiteralType(v any) (SocketType, bool) {
	switch x := v.(type) {
	case bool:
		return TypeBoolean, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger, true
	case float32, float64:
		return TypeFloat, true
	case string:
		return TypeString, true
	case v3.Vec, *v3.Vec, [3]float64, [3]float32:
		return TypeVector, true
	case [4]float64, [4]float32:
		return TypeColor, true
	case Resource:
		switch x.Kind {
		case ResourceMaterial:
			return TypeMaterial, true
		case ResourceObject:
			return TypeObject, true
		case ResourceImage:
			return TypeImage, true
		case ResourceCollection:
			return TypeCollection, true
		}
	case []float64:
		switch len(x) {
		case 3:
			return TypeVector, true
		case 4:
			return TypeColor, true
		case 16:
			return TypeMatrix, true
		}
	case []any:
		if len(x) == 3 {
			return TypeVector, true
		}
		if len(x) == 4 {
			return TypeColor, true
		}
	}
	return TypeInvalid, false
}

// ConvertLiteral checks that v can be stored in a socket of type want and
// returns the normalized value the host keeps: bool, int64, float64,
// []float64, string or Resource.
func ConvertLiteral(v any, want SocketType) (any, error) {
	if want == TypeGeometry {
		return nil, fmt.Errorf("geometry sockets take links, not literal %v", v)
	}
	if want.Resource() {
		r, ok := v.(Resource)
		if !ok {
			return nil, fmt.Errorf("%s socket needs a resource, got %T", want, v)
		}
		if rk, _ := ResourceKindFor(want); rk != r.Kind {
			return nil, fmt.Errorf("%s socket cannot hold %s", want, r)
		}
		return r, nil
	}

	val, err := ctyValue(v)
	if err != nil {
		return nil, err
	}
	switch want {
	case TypeBoolean, TypeInteger, TypeFloat:
		return scalarLiteral(val, want)
	case TypeVector:
		return vectorLiteral(val, want, 3)
	case TypeRotation:
		return vectorLiteral(val, want, 3, 4)
	case TypeColor:
		out, err := vectorLiteral(val, want, 4, 3)
		if err != nil {
			return nil, err
		}
		if c := out.([]float64); len(c) == 3 {
			out = append(c, 1)
		}
		return out, nil
	case TypeMatrix:
		return vectorLiteral(val, want, 16)
	case TypeString, TypeMenu:
		if !val.Type().Equals(cty.String) {
			return nil, fmt.Errorf("%s socket needs a string, got %s", want, val.Type().FriendlyName())
		}
		return val.AsString(), nil
	}
	return nil, fmt.Errorf("no literal form for %s sockets", want)
}

func scalarLiteral(val cty.Value, want SocketType) (any, error) {
	var f float64
	switch {
	case val.Type().Equals(cty.Bool):
		if val.True() {
			f = 1
		}
	case val.Type().Equals(cty.Number):
		f, _ = val.AsBigFloat().Float64()
	default:
		return nil, fmt.Errorf("%s socket needs a number or bool, got %s", want, val.Type().FriendlyName())
	}
	switch want {
	case TypeBoolean:
		return f != 0, nil
	case TypeInteger:
		return int64(f), nil
	}
	return f, nil
}

// vectorLiteral accepts a scalar (broadcast to the first width) or a list of
// numbers whose length is one of widths.
func vectorLiteral(val cty.Value, want SocketType, widths ...int) (any, error) {
	if val.Type().Equals(cty.Number) || val.Type().Equals(cty.Bool) {
		s, err := scalarLiteral(val, TypeFloat)
		if err != nil {
			return nil, err
		}
		out := make([]float64, widths[0])
		for i := range out {
			out[i] = s.(float64)
		}
		return out, nil
	}

	list, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("%s socket: %w", want, err)
	}
	n := list.LengthInt()
	ok := false
	for _, w := range widths {
		if n == w {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%s socket needs %v components, got %d", want, widths, n)
	}
	var out []float64
	if err := gocty.FromCtyValue(list, &out); err != nil {
		return nil, fmt.Errorf("%s socket: %w", want, err)
	}
	return out, nil
}

// ctyValue converts a Go literal into a cty value.
func ctyValue(v any) (cty.Value, error) {
	switch x := v.(type) {
	case v3.Vec:
		v = []float64{x.X, x.Y, x.Z}
	case *v3.Vec:
		v = []float64{x.X, x.Y, x.Z}
	case [3]float64:
		v = x[:]
	case [4]float64:
		v = x[:]
	case [3]float32:
		v = []float64{float64(x[0]), float64(x[1]), float64(x[2])}
	case [4]float32:
		v = []float64{float64(x[0]), float64(x[1]), float64(x[2]), float64(x[3])}
	case []any:
		if len(x) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(x))
		for i, e := range x {
			ev, err := ctyValue(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	}

	t, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unsupported literal %T: %w", v, err)
	}
	return gocty.ToCtyValue(v, t)
}
