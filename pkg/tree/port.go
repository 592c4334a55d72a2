package tree

import (
	"fmt"

	"github.com/chazu/geonodes/pkg/graph"
)

// Socket is anything that wraps an output port: *Port and *Geometry.
type Socket interface {
	socket() *Port
}

// Port wraps one output socket of a node in the host graph. Its type never
// changes; Jump changes which output it points at.
type Port struct {
	tree  *Tree
	ref   graph.OutputRef
	typ   graph.SocketType
	cache map[string]*Node
}

func (t *Tree) port(ref graph.OutputRef, typ graph.SocketType) *Port {
	return &Port{tree: t, ref: ref, typ: typ}
}

func (p *Port) socket() *Port { return p }

// Wrap returns the typed view of p: a *Geometry for geometry ports, p itself
// otherwise.
func Wrap(p *Port) Socket {
	if p.typ == graph.TypeGeometry {
		return &Geometry{Port: p}
	}
	return p
}

// Type returns the semantic type.
func (p *Port) Type() graph.SocketType { return p.typ }

// Ref returns the output the port currently points at.
func (p *Port) Ref() graph.OutputRef { return p.ref }

// Tree returns the tree the port belongs to.
func (p *Port) Tree() *Tree { return p.tree }

func (p *Port) String() string {
	return fmt.Sprintf("%s(%s)", p.typ, p.ref)
}

// Jump points p at the output of to and drops every cached helper node.
// Both ports must have the same type.
func (p *Port) Jump(to Socket) error {
	target := to.socket()
	if target.typ != p.typ {
		return fmt.Errorf("jump: cannot redirect %s port to %s output %s", p.typ, target.typ, target.ref)
	}
	p.ref = target.ref
	p.cache = nil
	return nil
}

// cached returns the helper node stored under key, building it on first use.
func (p *Port) cached(key string, build func() (*Node, error)) (*Node, error) {
	if n, ok := p.cache[key]; ok {
		return n, nil
	}
	n, err := build()
	if err != nil {
		return nil, err
	}
	if p.cache == nil {
		p.cache = make(map[string]*Node)
	}
	p.cache[key] = n
	return n, nil
}

// Cached reports whether a helper node is cached under key.
func (p *Port) Cached(key string) bool {
	_, ok := p.cache[key]
	return ok
}

// ---------------------------------------------------------------------------
// Component accessors
// ---------------------------------------------------------------------------

func (p *Port) separateXYZ() (*Node, error) {
	if p.typ != graph.TypeVector && p.typ != graph.TypeRotation {
		return nil, &UnsupportedOperationError{Op: "xyz", Type: p.typ}
	}
	return p.cached("xyz", func() (*Node, error) {
		return p.tree.Node("Separate XYZ", map[string]any{"Vector": p}, nil)
	})
}

func (p *Port) component(name string) (*Port, error) {
	n, err := p.separateXYZ()
	if err != nil {
		return nil, err
	}
	return n.Output(name)
}

// X returns the x component. X, Y and Z share one Separate XYZ node.
func (p *Port) X() (*Port, error) { return p.component("X") }

// Y returns the y component.
func (p *Port) Y() (*Port, error) { return p.component("Y") }

// Z returns the z component.
func (p *Port) Z() (*Port, error) { return p.component("Z") }

func (p *Port) separateColor() (*Node, error) {
	if p.typ != graph.TypeColor {
		return nil, &UnsupportedOperationError{Op: "rgb", Type: p.typ}
	}
	return p.cached("rgb", func() (*Node, error) {
		return p.tree.Node("Separate Color", map[string]any{"Color": p}, nil)
	})
}

func (p *Port) channel(name string) (*Port, error) {
	n, err := p.separateColor()
	if err != nil {
		return nil, err
	}
	return n.Output(name)
}

// R returns the red channel. R, G, B and A share one Separate Color node.
func (p *Port) R() (*Port, error) { return p.channel("Red") }

// G returns the green channel.
func (p *Port) G() (*Port, error) { return p.channel("Green") }

// B returns the blue channel.
func (p *Port) B() (*Port, error) { return p.channel("Blue") }

// A returns the alpha channel.
func (p *Port) A() (*Port, error) { return p.channel("Alpha") }

// Info returns the cached Object Info node of an Object port.
func (p *Port) Info() (*Node, error) {
	if p.typ != graph.TypeObject {
		return nil, &UnsupportedOperationError{Op: "info", Type: p.typ}
	}
	return p.cached("info", func() (*Node, error) {
		return p.tree.ObjectInfo(p)
	})
}
