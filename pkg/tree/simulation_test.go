package tree

import (
	"errors"
	"testing"

	"github.com/chazu/geonodes/pkg/graph"
	"github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationOpen(t *testing.T) {
	g, tr, m := newGeo(t)
	sim, err := tr.Simulation(map[string]any{"Geometry": g, "Speed": v3.Vec{}})
	require.NoError(t, err)

	in, out := sim.Input().ID(), sim.Output().ID()
	paired, ok := m.Zone(in)
	require.True(t, ok)
	assert.Equal(t, out, paired)
	assert.Equal(t, []string{"Geometry", "Speed"}, sim.Names())

	// Initial values feed the input node.
	from, ok := m.Source(graph.InputRef{Node: in, Socket: "Geometry"})
	require.True(t, ok)
	assert.Equal(t, g.Ref(), from)
	assert.Equal(t, "Vector", source(t, m, in, "Speed").Kind)

	// Inside the zone the state reads from the input node.
	geo, err := sim.Geometry("geometry")
	require.NoError(t, err)
	assert.Equal(t, graph.OutputRef{Node: in, Socket: "Geometry"}, geo.Ref())
	speed, err := sim.Get("speed")
	require.NoError(t, err)
	assert.Equal(t, graph.TypeVector, speed.(*Port).Type())

	dt, err := sim.DeltaTime()
	require.NoError(t, err)
	assert.Equal(t, graph.OutputRef{Node: in, Socket: "Delta Time"}, dt.Ref())

	_, err = sim.Get("mass")
	assert.Error(t, err)
}

func TestSimulationCloseLinksAndJumps(t *testing.T) {
	g, tr, m := newGeo(t)
	sim, err := tr.Simulation(map[string]any{"Geometry": g, "Speed": v3.Vec{}})
	require.NoError(t, err)
	in, out := sim.Input().ID(), sim.Output().ID()

	geo, err := sim.Geometry("Geometry")
	require.NoError(t, err)
	s, err := sim.Get("Speed")
	require.NoError(t, err)
	speed := s.(*Port)

	// One step: move the points by the speed, then accelerate.
	pos, err := geo.Position().Get()
	require.NoError(t, err)
	moved, err := pos.Add(speed)
	require.NoError(t, err)
	require.NoError(t, geo.Position().Set(moved))
	require.NoError(t, speed.AddInPlace(v3.Vec{Z: -1}))
	stepGeo, stepSpeed := geo.Ref(), speed.Ref()
	assert.Equal(t, "Set Position", string(stepGeo.Node))

	geo.Select(0).Point()
	require.NoError(t, sim.Close())
	assert.True(t, sim.Closed())

	// The step results are linked into the output node.
	from, ok := m.Source(graph.InputRef{Node: out, Socket: "Geometry"})
	require.True(t, ok)
	assert.Equal(t, stepGeo, from)
	from, ok = m.Source(graph.InputRef{Node: out, Socket: "Speed"})
	require.True(t, ok)
	assert.Equal(t, stepSpeed, from)

	// The same sockets now carry the output node's results.
	assert.Equal(t, graph.OutputRef{Node: out, Socket: "Geometry"}, geo.Ref())
	assert.Equal(t, graph.OutputRef{Node: out, Socket: "Speed"}, speed.Ref())
	sel, dom := geo.Pending()
	assert.False(t, sel)
	assert.False(t, dom)
	assert.NotEqual(t, in, geo.Ref().Node)

	_, err = sim.DeltaTime()
	assert.Error(t, err)
	assert.Error(t, sim.Skip(true))

	// Closing twice adds nothing.
	links := len(m.Links())
	require.NoError(t, sim.Close())
	assert.Len(t, m.Links(), links)

	require.NoError(t, tr.Output(geo, "Geometry"))
	from, ok = m.Source(graph.InputRef{Node: "Group Output", Socket: "Geometry"})
	require.True(t, ok)
	assert.Equal(t, out, from.Node)
}

func TestSimulationUnchangedItem(t *testing.T) {
	_, tr, m := newGeo(t)
	sim, err := tr.Simulation(map[string]any{"Count": 3})
	require.NoError(t, err)
	require.NoError(t, sim.Close())

	in, out := sim.Input().ID(), sim.Output().ID()
	from, ok := m.Source(graph.InputRef{Node: out, Socket: "Count"})
	require.True(t, ok)
	assert.Equal(t, graph.OutputRef{Node: in, Socket: "Count"}, from)
	c, err := sim.Get("Count")
	require.NoError(t, err)
	assert.Equal(t, graph.TypeInteger, c.(*Port).Type())
	assert.Equal(t, out, c.(*Port).Ref().Node)
}

func TestSimulationSkip(t *testing.T) {
	_, tr, m := newGeo(t)
	sim, err := tr.Simulation(map[string]any{"Age": 0.0})
	require.NoError(t, err)
	dt, err := sim.DeltaTime()
	require.NoError(t, err)
	still, err := tr.Compare("EQUAL", "FLOAT", dt, 0.0, nil)
	require.NoError(t, err)
	require.NoError(t, sim.Skip(still))

	from, ok := m.Source(graph.InputRef{Node: sim.Output().ID(), Socket: "Skip"})
	require.True(t, ok)
	assert.Equal(t, still.Ref(), from)
}

func TestSimulationRejects(t *testing.T) {
	_, tr, m := newGeo(t)
	lib := graph.Resource{Kind: graph.ResourceMaterial, Name: "Steel"}

	_, err := tr.Simulation(map[string]any{"Material": lib})
	assert.Error(t, err)
	_, err = tr.Simulation(map[string]any{"Thing": struct{}{}})
	assert.Error(t, err)
	assert.Empty(t, m.OfKind("Simulation Input"))

	_, err = tr.Simulation(map[string]any{"Skip": true})
	var hg *graph.HostGraphError
	require.ErrorAs(t, err, &hg)
	assert.Equal(t, "zone", hg.Op)
}

func TestWithSimulationAlwaysCloses(t *testing.T) {
	g, tr, m := newGeo(t)
	boom := errors.New("boom")

	sim, err := tr.WithSimulation(map[string]any{"Geometry": g}, func(s *Simulation) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NotNil(t, sim)
	assert.True(t, sim.Closed())
	_, ok := m.Source(graph.InputRef{Node: sim.Output().ID(), Socket: "Geometry"})
	assert.True(t, ok)

	var inside *Simulation
	assert.Panics(t, func() {
		_, _ = tr.WithSimulation(map[string]any{"Time": 0.0}, func(s *Simulation) error {
			inside = s
			panic("step failed")
		})
	})
	require.NotNil(t, inside)
	assert.True(t, inside.Closed())

	sim, err = tr.WithSimulation(map[string]any{"Geometry": g}, func(s *Simulation) error {
		geo, err := s.Geometry("Geometry")
		if err != nil {
			return err
		}
		return geo.Face().ShadeSmooth().Set(true)
	})
	require.NoError(t, err)
	geo, err := sim.Geometry("Geometry")
	require.NoError(t, err)
	assert.Equal(t, sim.Output().ID(), geo.Ref().Node)
	assert.Equal(t, "Set Shade Smooth", source(t, m, sim.Output().ID(), "Geometry").Kind)
}
