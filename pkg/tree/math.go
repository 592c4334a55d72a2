package tree

import "fmt"

// Helpers for the utility kinds the tree itself relies on. Each creates one
// node (plus constant nodes for literal operands of multi inputs) and
// returns its main output.

func (t *Tree) out(kind string, output string, inputs, params map[string]any) (*Port, error) {
	n, err := t.Node(kind, inputs, params)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return n.Out(), nil
	}
	return n.Output(output)
}

// Index returns the index of the element being evaluated.
func (t *Tree) Index() (*Port, error) {
	return t.out("Index", "", nil, nil)
}

// Compare creates a Compare node. eps may be nil.
func (t *Tree) Compare(op, dataType string, a, b, eps any) (*Port, error) {
	return t.out("Compare", "Result",
		map[string]any{"A": a, "B": b, "Epsilon": eps},
		map[string]any{"operation": op, "data_type": dataType})
}

// BooleanMath creates a Boolean Math node. b is ignored by NOT.
func (t *Tree) BooleanMath(op string, a, b any) (*Port, error) {
	return t.out("Boolean Math", "Boolean",
		map[string]any{"Boolean": a, "Boolean_001": b},
		map[string]any{"operation": op})
}

// Math creates a float Math node with up to three operands.
func (t *Tree) Math(op string, values ...any) (*Port, error) {
	in, err := operands("Math", "Value", values)
	if err != nil {
		return nil, err
	}
	return t.out("Math", "Value", in, map[string]any{"operation": op})
}

// IntegerMath creates an Integer Math node with up to three operands.
func (t *Tree) IntegerMath(op string, values ...any) (*Port, error) {
	in, err := operands("Integer Math", "Value", values)
	if err != nil {
		return nil, err
	}
	return t.out("Integer Math", "Value", in, map[string]any{"operation": op})
}

// VectorMath creates a Vector Math node. Scale is only read by SCALE. The
// caller picks the Vector or Value output.
func (t *Tree) VectorMath(op string, scale any, vectors ...any) (*Node, error) {
	in, err := operands("Vector Math", "Vector", vectors)
	if err != nil {
		return nil, err
	}
	if scale != nil {
		in["Scale"] = scale
	}
	return t.Node("Vector Math", in, map[string]any{"operation": op})
}

// Mix creates a Mix node on colors with the given blend type.
func (t *Tree) Mix(blend string, factor, a, b any) (*Port, error) {
	return t.out("Mix", "Result",
		map[string]any{"Factor": factor, "A": a, "B": b},
		map[string]any{"data_type": "RGBA", "blend_type": blend})
}

// JoinStrings joins strings with a delimiter.
func (t *Tree) JoinStrings(delimiter any, strs ...any) (*Port, error) {
	return t.out("Join Strings", "String",
		map[string]any{"Delimiter": delimiter, "Strings": Many(strs)}, nil)
}

// JoinGeometry joins geometries into one.
func (t *Tree) JoinGeometry(geos ...any) (*Geometry, error) {
	p, err := t.out("Join Geometry", "Geometry", map[string]any{"Geometry": Many(geos)}, nil)
	if err != nil {
		return nil, err
	}
	return AsGeometry(p)
}

// CombineXYZ builds a vector from three floats.
func (t *Tree) CombineXYZ(x, y, z any) (*Port, error) {
	return t.out("Combine XYZ", "Vector", map[string]any{"X": x, "Y": y, "Z": z}, nil)
}

// operands names positional values the host way: Value, Value_001, Value_002.
func operands(kind, base string, values []any) (map[string]any, error) {
	if len(values) > 3 {
		return nil, fmt.Errorf("%s takes at most 3 operands, got %d", kind, len(values))
	}
	in := make(map[string]any, len(values))
	for i, v := range values {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%03d", base, i)
		}
		in[name] = v
	}
	return in, nil
}
