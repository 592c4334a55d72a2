package tree

import (
	"testing"

	"github.com/chazu/geonodes/pkg/graph"
	"github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectIndexSetPosition(t *testing.T) {
	g, _, m := newGeo(t)
	input := g.Ref()

	require.NoError(t, g.Select(3).Position().Set(v3.Vec{Z: 1}))

	sets := m.OfKind("Set Position")
	require.Len(t, sets, 1)
	set := sets[0]
	assert.Equal(t, graph.OutputRef{Node: set.ID, Socket: "Geometry"}, g.Ref())

	src, ok := m.Source(graph.InputRef{Node: set.ID, Socket: "Geometry"})
	require.True(t, ok)
	assert.Equal(t, input, src)

	pos, ok := m.Literal(graph.InputRef{Node: set.ID, Socket: "Position"})
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0, 1}, pos)

	cmp := source(t, m, set.ID, "Selection")
	require.NotNil(t, cmp)
	assert.Equal(t, "Compare", cmp.Kind)
	assert.Equal(t, "INT", cmp.Params["data_type"])
	assert.Equal(t, "EQUAL", cmp.Params["operation"])
	assert.Equal(t, "Index", source(t, m, cmp.ID, "A").Kind)
	b, _ := m.Literal(graph.InputRef{Node: cmp.ID, Socket: "B"})
	assert.Equal(t, int64(3), b)

	for i := 0; i < 6; i++ {
		ref, _ := m.Source(graph.InputRef{Node: set.ID, Socket: "Selection"})
		assert.Equal(t, i == 3, eval(t, m, ref, i))
	}
	assert.Equal(t, 3, m.CreateCount())
}

func TestSelectionIsOneShot(t *testing.T) {
	g, _, m := newGeo(t)
	require.NoError(t, g.Select(Range(0, 2)).Position().Set(v3.Vec{X: 1}))
	require.NoError(t, g.Position().Set(v3.Vec{Y: 1}))

	sets := m.OfKind("Set Position")
	require.Len(t, sets, 2)
	assert.NotNil(t, source(t, m, sets[0].ID, "Selection"))
	assert.Nil(t, source(t, m, sets[1].ID, "Selection"))
}

func TestReadDiscardsSelection(t *testing.T) {
	g, _, m := newGeo(t)
	_, err := g.Select(2).Position().Get()
	require.NoError(t, err)
	sel, _ := g.Pending()
	assert.False(t, sel)
	assert.Empty(t, m.OfKind("Compare"), "reads never build predicates")
}

func TestDomainIsOneShot(t *testing.T) {
	g, _, m := newGeo(t)
	require.NoError(t, g.Curve().Radius().Set(0.5))
	require.NoError(t, g.Radius().Set(0.25))

	assert.Len(t, m.OfKind("Set Curve Radius"), 1)
	assert.Len(t, m.OfKind("Set Point Radius"), 1)
	assert.Equal(t, "Points", g.Ref().Socket)
}

func TestUnsupportedDomain(t *testing.T) {
	g, _, m := newGeo(t)
	_, err := g.Face().Radius().Get()
	var dom *UnsupportedDomainError
	require.ErrorAs(t, err, &dom)
	assert.Equal(t, "radius", dom.Field)
	assert.Equal(t, graph.DomainFace, dom.Domain)
	assert.Equal(t, []graph.Domain{graph.DomainPoint, graph.DomainCurve}, dom.Allowed)
	assert.Contains(t, err.Error(), "allowed: Point, Curve")

	_, pending := g.Pending()
	assert.False(t, pending, "domain consumed even on failure")
	_, err = g.Radius().Get()
	require.NoError(t, err)
	assert.Len(t, m.OfKind("Radius"), 1)
}

func TestChainedWrites(t *testing.T) {
	g, _, m := newGeo(t)
	require.NoError(t, g.Position().Set(v3.Vec{X: 1}))
	require.NoError(t, g.Face().ShadeSmooth().Set(true))
	require.NoError(t, g.Select(0).MaterialIndex().Set(2))

	nodes := m.List()
	var chain []string
	for _, n := range nodes {
		if n.Kind == "Set Position" || n.Kind == "Set Shade Smooth" || n.Kind == "Set Material Index" {
			chain = append(chain, string(n.ID))
		}
	}
	require.Equal(t, []string{"Set Position", "Set Shade Smooth", "Set Material Index"}, chain)

	assert.Equal(t, "Set Position", string(source(t, m, "Set Shade Smooth", "Geometry").ID))
	assert.Equal(t, "Set Shade Smooth", string(source(t, m, "Set Material Index", "Geometry").ID))
	assert.Equal(t, graph.NodeID("Set Material Index"), g.Ref().Node)
	assert.Equal(t, "FACE", m.MustGet("Set Shade Smooth").Params["domain"])
}

func TestReadOnlyFields(t *testing.T) {
	g, _, m := newGeo(t)
	for _, f := range []*Field{g.ID(), g.Index(), g.Normal(), g.Area(), g.Neighbors(), g.Angle()} {
		t.Run(f.Name(), func(t *testing.T) {
			before := m.CreateCount()
			ref := g.Ref()
			assert.True(t, f.ReadOnly())

			err := g.Select(1).Face().field(f.Name(), nil).Set(3)
			var ro *ReadOnlyFieldError
			require.ErrorAs(t, err, &ro)
			assert.Equal(t, f.Name(), ro.Field)
			assert.Equal(t, before, m.CreateCount())
			assert.Equal(t, ref, g.Ref())

			sel, dom := g.Pending()
			assert.False(t, sel)
			assert.False(t, dom)
		})
	}
}

func TestFieldReadCache(t *testing.T) {
	g, _, m := newGeo(t)
	a, err := g.Position().Get()
	require.NoError(t, err)
	b, err := g.Point().Position().Get()
	require.NoError(t, err)
	assert.Equal(t, a.Ref(), b.Ref())
	assert.True(t, g.Cached("field:position:POINT"))

	_, err = g.Face().Position().Get()
	require.NoError(t, err)
	assert.Len(t, m.OfKind("Position"), 2, "cache is per domain")

	require.NoError(t, g.Position().Set(v3.Vec{}))
	assert.False(t, g.Cached("field:position:POINT"), "jump clears the cache")
	_, err = g.Position().Get()
	require.NoError(t, err)
	assert.Len(t, m.OfKind("Position"), 3)
}

func TestUncachedFields(t *testing.T) {
	g, _, m := newGeo(t)
	for i := 0; i < 2; i++ {
		_, err := g.IsPlanar(0.01).Get()
		require.NoError(t, err)
		_, err = g.EndpointSelection(1, nil).Get()
		require.NoError(t, err)
	}
	assert.Len(t, m.OfKind("Is Face Planar"), 2)
	assert.Len(t, m.OfKind("Endpoint Selection"), 2)

	th, ok := m.Literal(graph.InputRef{Node: "Is Face Planar", Socket: "Threshold"})
	require.True(t, ok)
	assert.Equal(t, 0.01, th)
}

func TestDomainSpecificReadKinds(t *testing.T) {
	g, _, m := newGeo(t)
	_, err := g.Edge().ShadeSmooth().Get()
	require.NoError(t, err)
	_, err = g.ShadeSmooth().Get()
	require.NoError(t, err)
	assert.Len(t, m.OfKind("Is Edge Smooth"), 1)
	assert.Len(t, m.OfKind("Is Face Smooth"), 1)

	p, err := g.Face().Neighbors().Output("Face Count")
	require.NoError(t, err)
	assert.Equal(t, graph.NodeID("Face Neighbors"), p.Ref().Node)
}

func TestNamedAttribute(t *testing.T) {
	g, tr, m := newGeo(t)

	p, err := g.Attribute("weight", "").Get()
	require.NoError(t, err)
	assert.Equal(t, graph.TypeFloat, p.Type())
	name, _ := m.Literal(graph.InputRef{Node: p.Ref().Node, Socket: "Name"})
	assert.Equal(t, "weight", name)

	v, err := g.Attribute("dir", "FLOAT_VECTOR").Get()
	require.NoError(t, err)
	assert.Equal(t, graph.TypeVector, v.Type())

	require.NoError(t, g.Face().Attribute("tag", "").Set(7))
	store := m.MustGet("Store Named Attribute")
	assert.Equal(t, "INT", store.Params["data_type"])
	assert.Equal(t, "FACE", store.Params["domain"])

	col, err := tr.Input(graph.TypeColor, "Tint", nil, "")
	require.NoError(t, err)
	require.NoError(t, g.Attribute("tint", "").Set(col))
	assert.Equal(t, "FLOAT_COLOR", m.MustGet("Store Named Attribute.001").Params["data_type"])

	require.NoError(t, g.Attribute("flag", "BOOLEAN").Set(1))
	assert.Equal(t, "BOOLEAN", m.MustGet("Store Named Attribute.002").Params["data_type"])

	err = g.Attribute("bad", "").Set(struct{}{})
	assert.Error(t, err)
}

func TestNamedAttributeBadValueLeavesNoSelection(t *testing.T) {
	g, _, m := newGeo(t)
	before := m.CreateCount()

	err := g.Select(Range(2, 6)).Attribute("bad", "").Set(struct{}{})
	require.Error(t, err)
	assert.Equal(t, before, m.CreateCount())
	assert.Empty(t, m.OfKind("Index"))
	assert.Empty(t, m.OfKind("Compare"))
	sel, _ := g.Pending()
	assert.False(t, sel, "the selector is consumed even when the write fails")
}

func TestFieldByName(t *testing.T) {
	g, _, _ := newGeo(t)
	f, err := g.Field("material_index")
	require.NoError(t, err)
	assert.False(t, f.ReadOnly())
	_, err = g.Field("attribute")
	assert.Error(t, err)
	_, err = g.Field("colour")
	assert.Error(t, err)
	assert.Contains(t, FieldNames(), "spline_parameter")
}

func TestMaterialSelectionResolvesResource(t *testing.T) {
	lib := graph.NewLibrary(graph.Resource{Kind: graph.ResourceMaterial, Name: "Steel"})
	g, _, m := newGeo(t, WithResources(lib))

	_, err := g.MaterialSelection("Steel").Get()
	require.NoError(t, err)
	mat, _ := m.Literal(graph.InputRef{Node: "Material Selection", Socket: "Material"})
	assert.Equal(t, graph.Resource{Kind: graph.ResourceMaterial, Name: "Steel"}, mat)

	_, err = g.MaterialSelection("Wood").Get()
	var nf *ResourceNotFoundError
	assert.ErrorAs(t, err, &nf)
}
