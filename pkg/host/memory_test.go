package host

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/chazu/geonodes/pkg/graph"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestNewMemoryIsEmpty(t *testing.T) {
	m := New("empty")
	if m.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want 0", m.NodeCount())
	}
	if m.Kind != graph.TreeGeometry {
		t.Errorf("Kind = %s, want geometry", m.Kind)
	}
}

func TestCreateNodeNaming(t *testing.T) {
	m := New("t")
	var ids []graph.NodeID
	for i := 0; i < 3; i++ {
		h, err := m.CreateNode("Math", nil, nil)
		if err != nil {
			t.Fatalf("CreateNode: %v", err)
		}
		ids = append(ids, h.ID)
	}
	want := []graph.NodeID{"Math", "Math.001", "Math.002"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if m.CreateCount() != 3 {
		t.Errorf("CreateCount() = %d, want 3", m.CreateCount())
	}
}

func TestCreateNodeResolvesParamsAndLiterals(t *testing.T) {
	m := New("t")
	h, err := m.CreateNode("Compare",
		map[string]any{"B": 3, "epsilon": 0.5},
		map[string]any{"data_type": "INT", "operation": "EQUAL"})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if s, _ := h.Input("A"); s.Type != graph.TypeInteger {
		t.Errorf("A type = %s, want Integer", s.Type)
	}

	n := m.Get(h.ID)
	if n.Params["operation"] != "EQUAL" || n.Params["mode"] != "ELEMENT" {
		t.Errorf("params = %v", n.Params)
	}
	if n.Literals["B"] != int64(3) {
		t.Errorf("B literal = %#v, want int64(3)", n.Literals["B"])
	}
	if n.Literals["Epsilon"] != 0.5 {
		t.Errorf("Epsilon literal = %#v (py-name lookup)", n.Literals["Epsilon"])
	}
}

func TestCreateNodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		literals map[string]any
		params   map[string]any
		contains string
	}{
		{"unknown kind", "Frobnicate", nil, nil, "unknown node kind"},
		{"group input", GroupInput, nil, nil, "group interface"},
		{"bad param", "Math", nil, map[string]any{"operation": "CONCAT"}, "CONCAT"},
		{"unknown input", "Math", map[string]any{"Nope": 1}, nil, "no input"},
		{"bad literal", "Set Position", map[string]any{"Position": "up"}, nil, "Position"},
		{"geometry literal", "Set Position", map[string]any{"Geometry": 1}, nil, "geometry"},
		{"multi literal", "Join Strings", map[string]any{"Strings": "a"}, nil, "only takes links"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("t")
			_, err := m.CreateNode(tt.kind, tt.literals, tt.params)
			if err == nil {
				t.Fatal("expected error")
			}
			var hge *graph.HostGraphError
			if !errors.As(err, &hge) {
				t.Fatalf("error %T is not a HostGraphError", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not mention %q", err, tt.contains)
			}
			if m.NodeCount() != 0 {
				t.Errorf("failed create left %d nodes", m.NodeCount())
			}
		})
	}
}

func TestShaderTreeRejectsGeometryKinds(t *testing.T) {
	m := New("material", WithKind(graph.TreeShader))
	if _, err := m.CreateNode("Math", nil, nil); err != nil {
		t.Fatalf("Math in shader tree: %v", err)
	}
	if _, err := m.CreateNode("Set Position", nil, nil); err == nil {
		t.Fatal("Set Position should not be available in shader trees")
	}
}

func TestLinkTypeChecks(t *testing.T) {
	m := New("t")
	idx, _ := m.CreateNode("Index", nil, nil)
	pos, _ := m.CreateNode("Position", nil, nil)
	cmpNode, _ := m.CreateNode("Compare", nil, map[string]any{"data_type": "INT"})
	setPos, _ := m.CreateNode("Set Position", nil, nil)

	if err := m.Link(graph.OutputRef{Node: idx.ID, Socket: "Index"}, graph.InputRef{Node: cmpNode.ID, Socket: "A"}); err != nil {
		t.Fatalf("Index -> Compare.A: %v", err)
	}
	if err := m.Link(graph.OutputRef{Node: pos.ID, Socket: "Position"}, graph.InputRef{Node: setPos.ID, Socket: "Geometry"}); err == nil {
		t.Error("Vector -> Geometry should be rejected")
	}
	if err := m.Link(graph.OutputRef{Node: idx.ID, Socket: "Nope"}, graph.InputRef{Node: cmpNode.ID, Socket: "B"}); err == nil {
		t.Error("unknown output should be rejected")
	}
	if err := m.Link(graph.OutputRef{Node: "ghost", Socket: "X"}, graph.InputRef{Node: cmpNode.ID, Socket: "B"}); err == nil {
		t.Error("unknown node should be rejected")
	}
}

func TestLinkRejectsCycles(t *testing.T) {
	m := New("t")
	a, _ := m.CreateNode("Math", nil, nil)
	b, _ := m.CreateNode("Math", nil, nil)

	if err := m.Link(graph.OutputRef{Node: a.ID, Socket: "Value"}, graph.InputRef{Node: b.ID, Socket: "Value"}); err != nil {
		t.Fatalf("a -> b: %v", err)
	}
	if err := m.Link(graph.OutputRef{Node: b.ID, Socket: "Value"}, graph.InputRef{Node: a.ID, Socket: "Value"}); err == nil {
		t.Error("b -> a should be rejected as a cycle")
	}
	if err := m.Link(graph.OutputRef{Node: a.ID, Socket: "Value"}, graph.InputRef{Node: a.ID, Socket: "Value_001"}); err == nil {
		t.Error("self link should be rejected")
	}
}

func TestLinkReplacesSingleInput(t *testing.T) {
	m := New("t")
	a, _ := m.CreateNode("Value", nil, nil)
	b, _ := m.CreateNode("Value", nil, nil)
	sum, _ := m.CreateNode("Math", nil, nil)
	in := graph.InputRef{Node: sum.ID, Socket: "Value"}

	_ = m.Link(graph.OutputRef{Node: a.ID, Socket: "Value"}, in)
	_ = m.Link(graph.OutputRef{Node: b.ID, Socket: "Value"}, in)

	links := m.LinksInto(in)
	if len(links) != 1 || links[0].From.Node != b.ID {
		t.Errorf("LinksInto = %v, want only the link from %s", links, b.ID)
	}
}

func TestLinkAppendsMultiInput(t *testing.T) {
	m := New("t")
	a, _ := m.CreateNode("Cube", nil, nil)
	b, _ := m.CreateNode("Grid", nil, nil)
	join, _ := m.CreateNode("Join Geometry", nil, nil)
	in := graph.InputRef{Node: join.ID, Socket: "Geometry"}

	_ = m.Link(graph.OutputRef{Node: a.ID, Socket: "Mesh"}, in)
	_ = m.Link(graph.OutputRef{Node: b.ID, Socket: "Mesh"}, in)

	if got := len(m.LinksInto(in)); got != 2 {
		t.Errorf("multi input has %d links, want 2", got)
	}
}

func TestInterfaceSockets(t *testing.T) {
	m := New("t")
	geo, err := m.NewInputSocket(graph.TypeGeometry, "Geometry", nil, "")
	if err != nil {
		t.Fatalf("NewInputSocket: %v", err)
	}
	scale, err := m.NewInputSocket(graph.TypeFloat, "Scale", 2, "uniform scale")
	if err != nil {
		t.Fatalf("NewInputSocket: %v", err)
	}
	if geo.Node != GroupInput || scale.Node != GroupInput {
		t.Errorf("inputs on %s / %s, want %s", geo.Node, scale.Node, GroupInput)
	}

	again, err := m.NewInputSocket(graph.TypeGeometry, "Geometry", nil, "")
	if err != nil || again != geo {
		t.Errorf("repeat input = %v, %v", again, err)
	}
	if _, err := m.NewInputSocket(graph.TypeFloat, "Geometry", nil, ""); err == nil {
		t.Error("redeclaring with another type should fail")
	}
	if _, err := m.NewInputSocket(graph.TypeFloat, "Bad", "x", ""); err == nil {
		t.Error("bad default should fail")
	}

	out, err := m.NewOutputSocket(graph.TypeGeometry, "Geometry")
	if err != nil {
		t.Fatalf("NewOutputSocket: %v", err)
	}
	if err := m.Link(geo, out); err != nil {
		t.Fatalf("pass-through link: %v", err)
	}

	ins, outs := m.Interface()
	if len(ins) != 2 || len(outs) != 1 {
		t.Fatalf("Interface() = %d in, %d out", len(ins), len(outs))
	}
	if ins[1].Default != 2.0 || ins[1].Description != "uniform scale" {
		t.Errorf("Scale socket = %+v", ins[1])
	}
}

func TestSnapshotFormats(t *testing.T) {
	m := New("demo")
	geo, _ := m.NewInputSocket(graph.TypeGeometry, "Geometry", nil, "")
	out, _ := m.NewOutputSocket(graph.TypeGeometry, "Geometry")
	sp, _ := m.CreateNode("Set Position", map[string]any{"Offset": []float64{0, 0, 1}}, nil)
	_ = m.Link(geo, graph.InputRef{Node: sp.ID, Socket: "Geometry"})
	_ = m.Link(graph.OutputRef{Node: sp.ID, Socket: "Geometry"}, out)

	snap := m.Snapshot()
	if len(snap.Nodes) != 3 || len(snap.Links) != 2 {
		t.Fatalf("snapshot has %d nodes, %d links", len(snap.Nodes), len(snap.Links))
	}

	var buf bytes.Buffer
	if err := snap.WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	for _, want := range []string{`tree "demo" (geometry)`, "node Set Position", "Offset = [0 0 1]", "link Group Input.Geometry -> Set Position.Geometry"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("text output missing %q:\n%s", want, buf.String())
		}
	}

	js, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(string(js), `"type":"Geometry"`) {
		t.Errorf("json does not name socket types: %s", js)
	}

	ys, err := yaml.Marshal(snap)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(string(ys), "kind: Set Position") {
		t.Errorf("yaml output:\n%s", ys)
	}
}

// ---------------------------------------------------------------------------
// Zones
// ---------------------------------------------------------------------------

func newZone(t *testing.T, m *Memory) (graph.NodeID, graph.NodeID) {
	t.Helper()
	in, err := m.CreateNode("Simulation Input", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := m.CreateNode("Simulation Output", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.PairZone(in.ID, out.ID); err != nil {
		t.Fatal(err)
	}
	return in.ID, out.ID
}

func TestZoneItems(t *testing.T) {
	m := New("sim")
	in, out := newZone(t, m)

	if got, ok := m.Zone(in); !ok || got != out {
		t.Fatalf("Zone(%s) = %s, %v", in, got, ok)
	}
	if err := m.NewZoneItem(in, graph.TypeGeometry, "Geometry"); err != nil {
		t.Fatal(err)
	}
	if err := m.NewZoneItem(in, graph.TypeVector, "Speed"); err != nil {
		t.Fatal(err)
	}

	for _, id := range []graph.NodeID{in, out} {
		n := m.MustGet(id)
		if _, ok := n.input("Speed"); !ok {
			t.Errorf("%s has no Speed input", id)
		}
		if s, ok := n.output("Speed"); !ok || s.Type != graph.TypeVector {
			t.Errorf("%s Speed output = %v, %v", id, s, ok)
		}
	}

	// State flows input -> output inside the zone.
	if err := m.Link(graph.OutputRef{Node: in, Socket: "Speed"}, graph.InputRef{Node: out, Socket: "Speed"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Link(graph.OutputRef{Node: in, Socket: "Delta Time"}, graph.InputRef{Node: out, Socket: "Speed"}); err != nil {
		t.Errorf("float into vector should link: %v", err)
	}

	snap := m.Snapshot()
	if snap.Nodes[0].Zone != string(out) {
		t.Errorf("snapshot zone = %q, want %s", snap.Nodes[0].Zone, out)
	}
	var buf bytes.Buffer
	if err := snap.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "zone->"+string(out)) {
		t.Errorf("text snapshot lacks the zone pairing:\n%s", buf.String())
	}
}

func TestZoneErrors(t *testing.T) {
	m := New("sim")
	in, out := newZone(t, m)
	sp, _ := m.CreateNode("Set Position", nil, nil)
	in2, _ := m.CreateNode("Simulation Input", nil, nil)

	tests := []struct {
		name string
		err  error
	}{
		{"pair twice", m.PairZone(in, out)},
		{"output reused", m.PairZone(in2.ID, out)},
		{"not a zone kind", m.PairZone(sp.ID, out)},
		{"wrong output kind", m.PairZone(in2.ID, sp.ID)},
		{"missing node", m.PairZone("Nope", out)},
		{"unpaired input", m.NewZoneItem(in2.ID, graph.TypeFloat, "X")},
		{"resource item", m.NewZoneItem(in, graph.TypeMaterial, "Mat")},
		{"empty name", m.NewZoneItem(in, graph.TypeFloat, "")},
		{"clashes with Delta Time", m.NewZoneItem(in, graph.TypeFloat, "Delta Time")},
		{"clashes with Skip", m.NewZoneItem(in, graph.TypeBoolean, "Skip")},
	}
	for _, tt := range tests {
		var hg *graph.HostGraphError
		if !errors.As(tt.err, &hg) || hg.Op != "zone" {
			t.Errorf("%s: expected zone HostGraphError, got %v", tt.name, tt.err)
		}
	}
}
