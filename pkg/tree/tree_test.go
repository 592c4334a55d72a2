package tree

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/geonodes/pkg/graph"
	"github.com/chazu/geonodes/pkg/host"
	"github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T, opts ...Option) (*Tree, *host.Memory) {
	t.Helper()
	m := host.New("test")
	return New("test", m, opts...), m
}

func newGeo(t *testing.T, opts ...Option) (*Geometry, *Tree, *host.Memory) {
	t.Helper()
	tr, m := newTree(t, opts...)
	g, err := tr.GeometryInput("")
	require.NoError(t, err)
	return g, tr, m
}

// source returns the node linked into input socket of node id.
func source(t *testing.T, m *host.Memory, id graph.NodeID, socket string) *host.Node {
	t.Helper()
	ref, ok := m.Source(graph.InputRef{Node: id, Socket: socket})
	if !ok {
		return nil
	}
	return m.MustGet(ref.Node)
}

// eval interprets the predicate subgraph feeding ref for element index i.
// It knows the handful of kinds selections are built from.
func eval(t *testing.T, m *host.Memory, ref graph.OutputRef, i int) any {
	t.Helper()
	n := m.MustGet(ref.Node)
	input := func(name string, def any) any {
		if src, ok := m.Source(graph.InputRef{Node: n.ID, Socket: name}); ok {
			return eval(t, m, src, i)
		}
		if v, ok := m.Literal(graph.InputRef{Node: n.ID, Socket: name}); ok {
			return v
		}
		return def
	}
	num := func(v any) float64 {
		switch x := v.(type) {
		case int64:
			return float64(x)
		case float64:
			return x
		}
		t.Fatalf("%s: not a number: %#v", n.ID, v)
		return 0
	}

	switch n.Kind {
	case "Index":
		return int64(i)
	case "Boolean":
		return n.Params["boolean"]
	case "Integer":
		return n.Params["integer"]
	case "Compare":
		a, b := num(input("A", int64(0))), num(input("B", int64(0)))
		if n.Params["data_type"] == "INT" {
			a, b = math.Round(a), math.Round(b)
		}
		switch n.Params["operation"] {
		case "EQUAL":
			if n.Params["data_type"] == "FLOAT" {
				return math.Abs(a-b) <= num(input("Epsilon", 0.001))
			}
			return a == b
		case "LESS_THAN":
			return a < b
		case "GREATER_EQUAL":
			return a >= b
		}
	case "Boolean Math":
		a, _ := input("Boolean", false).(bool)
		b, _ := input("Boolean_001", false).(bool)
		switch n.Params["operation"] {
		case "AND":
			return a && b
		case "OR":
			return a || b
		case "NOT":
			return !a
		}
	}
	t.Fatalf("eval: unsupported node %s (%s) %v", n.ID, n.Kind, n.Params)
	return nil
}

func TestNewDefaults(t *testing.T) {
	tr, m := newTree(t)
	assert.Equal(t, graph.TreeGeometry, tr.Kind)
	assert.Equal(t, RangeAnd, tr.RangeEncoding())
	assert.Same(t, m, tr.Host().(*host.Memory))
	assert.NotEqual(t, tr.ID, New("other", m).ID)
}

func TestNodeLinksSocketsAndStoresLiterals(t *testing.T) {
	tr, m := newTree(t)
	v, err := tr.Constant(2.5)
	require.NoError(t, err)

	n, err := tr.Node("Math", map[string]any{"Value": v, "Value_001": 4, "Value_002": nil},
		map[string]any{"operation": "POWER"})
	require.NoError(t, err)
	assert.Equal(t, "Math", n.Kind())

	assert.Equal(t, "Value", source(t, m, n.ID(), "Value").Kind)
	lit, ok := m.Literal(graph.InputRef{Node: n.ID(), Socket: "Value_001"})
	require.True(t, ok)
	assert.Equal(t, 4.0, lit)
	_, ok = m.Literal(graph.InputRef{Node: n.ID(), Socket: "Value_002"})
	assert.False(t, ok)
	assert.Equal(t, "POWER", m.MustGet(n.ID()).Params["operation"])
}

func TestNodeManyLinksEachItem(t *testing.T) {
	tr, m := newTree(t)
	a, err := tr.Input(graph.TypeString, "A", "x", "")
	require.NoError(t, err)

	s, err := tr.JoinStrings(", ", a, "literal")
	require.NoError(t, err)
	links := m.LinksInto(graph.InputRef{Node: s.Ref().Node, Socket: "Strings"})
	require.Len(t, links, 2)
	assert.Equal(t, graph.NodeID("String"), links[1].From.Node)
}

func TestNodeHostErrorsPassThrough(t *testing.T) {
	tr, _ := newTree(t)
	_, err := tr.Node("No Such Node", nil, nil)
	var hostErr *graph.HostGraphError
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, "create", hostErr.Op)
}

func TestNodeRejectsForeignSockets(t *testing.T) {
	a, _ := newTree(t)
	b, _ := newTree(t)
	p, err := a.Constant(1.0)
	require.NoError(t, err)
	_, err = b.Math("ADD", p, 1.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "belongs to tree")
}

func TestNodeOutputByPyName(t *testing.T) {
	tr, _ := newTree(t)
	n, err := tr.Node("Vertex Neighbors", nil, nil)
	require.NoError(t, err)
	p, err := n.Output("face_count")
	require.NoError(t, err)
	assert.Equal(t, "Face Count", p.Ref().Socket)
	assert.Equal(t, graph.TypeInteger, p.Type())

	_, err = n.Output("missing")
	assert.Error(t, err)
}

func TestConstantKinds(t *testing.T) {
	tests := []struct {
		value any
		kind  string
		typ   graph.SocketType
	}{
		{true, "Boolean", graph.TypeBoolean},
		{7, "Integer", graph.TypeInteger},
		{1.5, "Value", graph.TypeFloat},
		{v3.Vec{X: 1, Y: 2, Z: 3}, "Vector", graph.TypeVector},
		{"hi", "String", graph.TypeString},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			tr, m := newTree(t)
			p, err := tr.Constant(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, p.Type())
			assert.Equal(t, tt.kind, m.MustGet(p.Ref().Node).Kind)
		})
	}

	tr, _ := newTree(t)
	_, err := tr.Constant([4]float64{1, 0, 0, 1})
	assert.Error(t, err, "colors have no constant node")
}

func TestGroupInterface(t *testing.T) {
	tr, m := newTree(t)
	g, err := tr.GeometryInput("")
	require.NoError(t, err)
	assert.Equal(t, graph.TypeGeometry, g.Type())

	again, err := tr.GeometryInput("Geometry")
	require.NoError(t, err)
	assert.Equal(t, g.Ref(), again.Ref())
	assert.NotSame(t, g, again)

	f, err := tr.Input(graph.TypeFloat, "Scale", 2.0, "uniform scale")
	require.NoError(t, err)
	_, isGeo := f.(*Geometry)
	assert.False(t, isGeo)

	require.NoError(t, tr.Output(g, "Geometry"))
	require.NoError(t, tr.Output(3, "Count"))

	ins, outs := m.Interface()
	require.Len(t, ins, 2)
	assert.Equal(t, "uniform scale", ins[1].Description)
	require.Len(t, outs, 2)
	assert.Equal(t, graph.TypeInteger, outs[1].Type)
}

func TestGeometryInputHandlesMoveIndependently(t *testing.T) {
	tr, _ := newTree(t)
	g, err := tr.GeometryInput("")
	require.NoError(t, err)
	again, err := tr.GeometryInput("")
	require.NoError(t, err)

	require.NoError(t, g.Position().Set(v3.Vec{Z: 1}))
	assert.Equal(t, graph.NodeID("Set Position"), g.Ref().Node)
	assert.Equal(t, graph.NodeID("Group Input"), again.Ref().Node)
}

func TestResourceLookup(t *testing.T) {
	lib := graph.NewLibrary(graph.Resource{Kind: graph.ResourceObject, Name: "Cube"})
	tr, m := newTree(t, WithResources(lib))

	n, err := tr.ObjectInfo("Cube")
	require.NoError(t, err)
	lit, ok := m.Literal(graph.InputRef{Node: n.ID(), Socket: "Object"})
	require.True(t, ok)
	assert.Equal(t, graph.Resource{Kind: graph.ResourceObject, Name: "Cube"}, lit)

	_, err = tr.ObjectInfo("Sphere")
	var notFound *ResourceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Sphere", notFound.Name)

	_, err = tr.Resource(graph.ResourceObject, graph.Resource{Kind: graph.ResourceMaterial, Name: "Cube"})
	assert.Error(t, err)
}

func TestStackWith(t *testing.T) {
	s := NewStack()
	a, _ := newTree(t)
	b, _ := newTree(t)
	s.Push(a)

	err := s.With(b, func(cur *Tree) error {
		top, err := s.Current()
		require.NoError(t, err)
		assert.Same(t, b, top)
		assert.Same(t, b, cur)
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, s.Depth())

	assert.Panics(t, func() {
		_ = s.With(b, func(*Tree) error { panic("bad") })
	})
	assert.Equal(t, 1, s.Depth())

	top, err := s.Pop()
	require.NoError(t, err)
	assert.Same(t, a, top)
	_, err = s.Pop()
	assert.ErrorIs(t, err, ErrEmptyStack)
	_, err = s.Current()
	assert.ErrorIs(t, err, ErrEmptyStack)
}

func TestStackUnwind(t *testing.T) {
	s := NewStack()
	for i := 0; i < 4; i++ {
		tr, _ := newTree(t)
		s.Push(tr)
	}
	s.Unwind(1)
	assert.Equal(t, 1, s.Depth())
	s.Unwind(3)
	assert.Equal(t, 1, s.Depth())
}

func TestOnce(t *testing.T) {
	var o once[int]
	assert.False(t, o.Pending())
	o.Put(1)
	o.Put(2)
	assert.True(t, o.Pending())
	v, ok := o.Take()
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = o.Take()
	assert.False(t, ok)
}
