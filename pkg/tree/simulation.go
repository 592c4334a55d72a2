package tree

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/geonodes/pkg/catalog"
	"github.com/chazu/geonodes/pkg/graph"
)

// Simulation is an open simulation zone: a paired Simulation Input and
// Simulation Output node with one state item per named value.
//
// While the zone is open, Get returns the value inside the zone, read from
// the input node. Close links each state value into the output node and
// jumps it to the matching output, so after Close the same socket carries
// the result of a simulation step.
type Simulation struct {
	tree   *Tree
	input  *Node
	output *Node
	names  []string
	state  map[string]Socket
	closed bool
}

// Simulation opens a zone carrying state. Each value may be a Socket or a
// literal, which goes through a constant node. Item sockets are named after
// the keys.
func (t *Tree) Simulation(state map[string]any) (*Simulation, error) {
	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(map[string]*Port, len(names))
	for _, name := range names {
		p, err := t.operand(state[name])
		if err != nil {
			return nil, fmt.Errorf("simulation item %s: %w", name, err)
		}
		if !p.typ.Stateful() {
			return nil, fmt.Errorf("simulation item %s: cannot carry %s values", name, p.typ)
		}
		values[name] = p
	}

	in, err := t.Node("Simulation Input", nil, nil)
	if err != nil {
		return nil, err
	}
	out, err := t.Node("Simulation Output", nil, nil)
	if err != nil {
		return nil, err
	}
	if err := t.host.PairZone(in.ID(), out.ID()); err != nil {
		return nil, err
	}

	s := &Simulation{
		tree:   t,
		input:  in,
		output: out,
		names:  names,
		state:  make(map[string]Socket, len(names)),
	}
	for _, name := range names {
		p := values[name]
		if err := t.host.NewZoneItem(in.ID(), p.typ, name); err != nil {
			return nil, err
		}
		if err := t.host.Link(p.ref, graph.InputRef{Node: in.ID(), Socket: name}); err != nil {
			return nil, err
		}
		s.state[name] = Wrap(t.port(graph.OutputRef{Node: in.ID(), Socket: name}, p.typ))
	}
	t.log.Debug("simulation opened", "tree", t.Name, "input", in.ID(), "items", len(names))
	return s, nil
}

// WithSimulation opens a zone, runs fn and closes the zone on every exit
// path, panics included. A close failure is joined to the error of fn.
func (t *Tree) WithSimulation(state map[string]any, fn func(*Simulation) error) (sim *Simulation, err error) {
	sim, err = t.Simulation(state)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := sim.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return sim, fn(sim)
}

// Input returns the Simulation Input node.
func (s *Simulation) Input() *Node { return s.input }

// Output returns the Simulation Output node.
func (s *Simulation) Output() *Node { return s.output }

// Names returns the state item names in socket order.
func (s *Simulation) Names() []string { return append([]string(nil), s.names...) }

// Closed reports whether Close has run.
func (s *Simulation) Closed() bool { return s.closed }

// Get returns the state value called name. The lookup also accepts the
// snake_case form and ignores case.
func (s *Simulation) Get(name string) (Socket, error) {
	if v, ok := s.state[name]; ok {
		return v, nil
	}
	for _, n := range s.names {
		if strings.EqualFold(n, name) || catalog.PyName(n) == name {
			return s.state[n], nil
		}
	}
	return nil, fmt.Errorf("simulation %s has no item %q", s.input.ID(), name)
}

// Geometry returns the state value called name as a Geometry.
func (s *Simulation) Geometry(name string) (*Geometry, error) {
	v, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return AsGeometry(v)
}

// DeltaTime returns the step duration. It only exists inside the zone.
func (s *Simulation) DeltaTime() (*Port, error) {
	if s.closed {
		return nil, fmt.Errorf("simulation %s is closed: delta time is only available inside the zone", s.input.ID())
	}
	return s.input.Output("Delta Time")
}

// Skip links cond into the Skip input of the output node.
func (s *Simulation) Skip(cond any) error {
	if s.closed {
		return fmt.Errorf("simulation %s is closed", s.input.ID())
	}
	p, err := s.tree.operand(cond)
	if err != nil {
		return fmt.Errorf("skip: %w", err)
	}
	return s.tree.host.Link(p.ref, graph.InputRef{Node: s.output.ID(), Socket: "Skip"})
}

// Close links every state value into the output node, then jumps each one
// to the output node's socket of the same name. Closing twice is a no-op.
func (s *Simulation) Close() error {
	if s.closed {
		return nil
	}
	out := s.output.ID()
	for _, name := range s.names {
		v := s.state[name]
		p := v.socket()
		if err := s.tree.host.Link(p.ref, graph.InputRef{Node: out, Socket: name}); err != nil {
			return fmt.Errorf("close simulation item %s: %w", name, err)
		}
		result := s.tree.port(graph.OutputRef{Node: out, Socket: name}, p.typ)
		var err error
		if g, ok := v.(*Geometry); ok {
			err = g.Jump(result)
		} else {
			err = p.Jump(result)
		}
		if err != nil {
			return err
		}
	}
	s.closed = true
	s.tree.log.Debug("simulation closed", "tree", s.tree.Name, "output", out)
	return nil
}
