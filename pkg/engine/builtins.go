package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/geonodes/pkg/catalog"
	"github.com/chazu/geonodes/pkg/graph"
	"github.com/chazu/geonodes/pkg/tree"
	"github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builtinFunc implements one builtin against the current tree.
type builtinFunc func(t *tree.Tree, a kwArgs) (zygo.Sexp, error)

// define registers fn under name. The first lead arguments are always
// positional, even when they are keywords, so (get-field geo :position)
// reads the field name instead of a :position flag.
func (s *session) define(env *zygo.Zlisp, name string, lead int, fn builtinFunc) {
	label := strings.ReplaceAll(name, "_", "-")
	env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		res, err := s.call(lead, fn, args)
		if err != nil {
			err = fmt.Errorf("%s: %w", label, err)
			s.err = err
			return zygo.SexpNull, err
		}
		return res, nil
	})
}

func (s *session) call(lead int, fn builtinFunc, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) < lead {
		return nil, fmt.Errorf("expects at least %d arguments, got %d", lead, len(args))
	}
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	a := parseArgs(args[lead:])
	a.positional = append(args[:lead:lead], a.positional...)
	return fn(t, a)
}

// registerBuiltins adds every geonodes builtin to env. Builtins create nodes
// in the session's current tree.
func registerBuiltins(env *zygo.Zlisp, s *session) {
	// -- trees and the group interface --------------------------------------

	openTree := func(kind graph.TreeKind) builtinFunc {
		return func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
			name, err := toString(a.arg(0))
			if err != nil {
				return nil, fmt.Errorf("name: %w", err)
			}
			if s.out.Find(name) != nil {
				return nil, fmt.Errorf("tree %q already exists", name)
			}
			s.open(name, kind)
			return &zygo.SexpStr{S: name}, nil
		}
	}
	s.define(env, "tree", 1, openTree(graph.TreeGeometry))
	s.define(env, "shader_tree", 1, openTree(graph.TreeShader))

	s.define(env, "end_tree", 0, func(t *tree.Tree, _ kwArgs) (zygo.Sexp, error) {
		if s.stack.Depth() <= 1 {
			return nil, errors.New("no open tree to close")
		}
		if _, err := s.stack.Pop(); err != nil {
			return nil, err
		}
		s.e.log.Debug("tree closed", "tree", t.Name, "depth", s.stack.Depth())
		return &zygo.SexpStr{S: t.Name}, nil
	})

	s.define(env, "geometry_input", 0, func(t *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		name := ""
		if len(a.positional) > 0 {
			var err error
			if name, err = toString(a.arg(0)); err != nil {
				return nil, fmt.Errorf("name: %w", err)
			}
		}
		g, err := t.GeometryInput(name)
		if err != nil {
			return nil, err
		}
		return &sexpGeometry{g: g}, nil
	})

	// (input :float "Size" :default 1.0 :description "Edge length")
	s.define(env, "input", 2, func(t *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		typeName, err := toKeywordString(a.arg(0))
		if err != nil {
			return nil, fmt.Errorf("type: %w", err)
		}
		typ, err := graph.ParseSocketType(typeName)
		if err != nil {
			return nil, err
		}
		name, err := toString(a.arg(1))
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		def, err := a.value("default")
		if err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		var desc string
		if v, ok := a.kw["description"]; ok {
			if desc, err = toString(v); err != nil {
				return nil, fmt.Errorf("description: %w", err)
			}
		}
		sock, err := t.Input(typ, name, def, desc)
		if err != nil {
			return nil, err
		}
		return sexpSocket(sock), nil
	})

	// (output value "Name")
	s.define(env, "output", 1, func(t *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		v, err := toValue(a.arg(0))
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		var name string
		if len(a.positional) > 1 {
			if name, err = toString(a.arg(1)); err != nil {
				return nil, fmt.Errorf("name: %w", err)
			}
		}
		if err := t.Output(v, name); err != nil {
			return nil, err
		}
		return a.arg(0), nil
	})

	// -- simulation zones -----------------------------------------------------

	// (simulation :geometry geo :speed (vec3 0 0 0)) opens a zone. Keywords
	// name the state items: :rest-length becomes "Rest Length".
	s.define(env, "simulation", 0, func(t *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		if len(a.positional) > 0 {
			return nil, fmt.Errorf("state items are keywords, got %s", describe(a.arg(0)))
		}
		state := make(map[string]any, len(a.kw))
		for key := range a.kw {
			v, err := a.value(key)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			state[itemName(key)] = v
		}
		sim, err := t.Simulation(state)
		if err != nil {
			return nil, err
		}
		s.sims = append(s.sims, sim)
		return &sexpSimulation{sim: sim}, nil
	})

	// (sim-get sim :speed) returns a state item. The same socket follows the
	// item out of the zone once it is closed.
	s.define(env, "sim_get", 2, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		sim, err := toSimulation(a.arg(0))
		if err != nil {
			return nil, err
		}
		name, err := toKeywordString(a.arg(1))
		if err != nil {
			return nil, fmt.Errorf("item: %w", err)
		}
		sock, err := sim.Get(itemName(name))
		if err != nil {
			return nil, err
		}
		return sexpSocket(sock), nil
	})

	s.define(env, "delta_time", 1, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		sim, err := toSimulation(a.arg(0))
		if err != nil {
			return nil, err
		}
		p, err := sim.DeltaTime()
		if err != nil {
			return nil, err
		}
		return wrapPort(p), nil
	})

	// (sim-skip sim cond)
	s.define(env, "sim_skip", 2, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		sim, err := toSimulation(a.arg(0))
		if err != nil {
			return nil, err
		}
		cond, err := toValue(a.arg(1))
		if err != nil {
			return nil, fmt.Errorf("condition: %w", err)
		}
		if err := sim.Skip(cond); err != nil {
			return nil, err
		}
		return a.arg(0), nil
	})

	// (end-simulation [sim]) closes sim, or the latest open zone.
	s.define(env, "end_simulation", 0, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		var sim *tree.Simulation
		if len(a.positional) > 0 {
			var err error
			if sim, err = toSimulation(a.arg(0)); err != nil {
				return nil, err
			}
		} else if sim = s.openSimulation(); sim == nil {
			return nil, errors.New("no open simulation to close")
		}
		if err := sim.Close(); err != nil {
			return nil, err
		}
		return &sexpSimulation{sim: sim}, nil
	})

	// -- values ---------------------------------------------------------------

	s.define(env, "vec3", 3, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(a.arg(i))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	s.define(env, "index", 0, func(t *tree.Tree, _ kwArgs) (zygo.Sexp, error) {
		p, err := t.Index()
		if err != nil {
			return nil, err
		}
		return wrapPort(p), nil
	})

	// (comp p :x) picks a vector component or color channel.
	s.define(env, "comp", 2, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		p, err := toPort(a.arg(0))
		if err != nil {
			return nil, err
		}
		which, err := toKeywordString(a.arg(1))
		if err != nil {
			return nil, fmt.Errorf("component: %w", err)
		}
		var c *tree.Port
		switch which {
		case "x":
			c, err = p.X()
		case "y":
			c, err = p.Y()
		case "z":
			c, err = p.Z()
		case "r":
			c, err = p.R()
		case "g":
			c, err = p.G()
		case "b":
			c, err = p.B()
		case "a":
			c, err = p.A()
		default:
			return nil, fmt.Errorf("unknown component %q", which)
		}
		if err != nil {
			return nil, err
		}
		return wrapPort(c), nil
	})

	// -- arithmetic -------------------------------------------------------------

	for name, op := range map[string]tree.Op{
		"add":   tree.OpAdd,
		"sub":   tree.OpSub,
		"mul":   tree.OpMul,
		"div":   tree.OpDiv,
		"dot":   tree.OpMatMul,
		"cross": tree.OpPow,
	} {
		s.define(env, name, 2, binary(op))
	}
	for name, op := range map[string]tree.Op{
		"iadd": tree.OpAdd,
		"isub": tree.OpSub,
		"imul": tree.OpMul,
		"idiv": tree.OpDiv,
	} {
		s.define(env, name, 2, inPlace(op))
	}

	s.define(env, "neg", 1, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		p, err := toPort(a.arg(0))
		if err != nil {
			return nil, err
		}
		res, err := p.Neg()
		if err != nil {
			return nil, err
		}
		return wrapPort(res), nil
	})

	// (madd a b c) is a*b + c.
	s.define(env, "madd", 3, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		p, err := toPort(a.arg(0))
		if err != nil {
			return nil, err
		}
		b, err := toValue(a.arg(1))
		if err != nil {
			return nil, err
		}
		c, err := toValue(a.arg(2))
		if err != nil {
			return nil, err
		}
		res, err := p.MatMul([]any{b, c})
		if err != nil {
			return nil, err
		}
		return wrapPort(res), nil
	})

	// -- selection and domains -------------------------------------------------

	for name, pick := range map[string]func(*tree.Geometry) *tree.Geometry{
		"point":    (*tree.Geometry).Point,
		"edge":     (*tree.Geometry).Edge,
		"face":     (*tree.Geometry).Face,
		"corner":   (*tree.Geometry).Corner,
		"curve":    (*tree.Geometry).Curve,
		"spline":   (*tree.Geometry).Spline,
		"instance": (*tree.Geometry).Instance,
	} {
		s.define(env, name, 1, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
			g, err := toGeometry(a.arg(0))
			if err != nil {
				return nil, err
			}
			pick(g)
			return a.arg(0), nil
		})
	}

	// (select geo sel) attaches a one-shot selector.
	s.define(env, "select", 2, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		g, err := toGeometry(a.arg(0))
		if err != nil {
			return nil, err
		}
		sel, err := toValue(a.arg(1))
		if err != nil {
			return nil, fmt.Errorf("selector: %w", err)
		}
		g.Select(sel)
		return a.arg(0), nil
	})

	s.define(env, "span", 2, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		lo, err := toInt(a.arg(0))
		if err != nil {
			return nil, fmt.Errorf("lo: %w", err)
		}
		hi, err := toInt(a.arg(1))
		if err != nil {
			return nil, fmt.Errorf("hi: %w", err)
		}
		return &sexpSpan{span: tree.Range(lo, hi)}, nil
	})
	s.define(env, "from", 1, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		lo, err := toInt(a.arg(0))
		if err != nil {
			return nil, fmt.Errorf("lo: %w", err)
		}
		return &sexpSpan{span: tree.From(lo)}, nil
	})
	s.define(env, "until", 1, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		hi, err := toInt(a.arg(0))
		if err != nil {
			return nil, fmt.Errorf("hi: %w", err)
		}
		return &sexpSpan{span: tree.Until(hi)}, nil
	})
	s.define(env, "everything", 0, func(_ *tree.Tree, _ kwArgs) (zygo.Sexp, error) {
		return &sexpSpan{span: tree.Everything()}, nil
	})

	// -- fields -----------------------------------------------------------------

	// (get-field geo :position) or (get-field geo :is-planar :threshold 0.01)
	s.define(env, "get_field", 2, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		f, err := fieldArg(a)
		if err != nil {
			return nil, err
		}
		var p *tree.Port
		if v, ok := a.kw["output"]; ok {
			out, err := toKeywordString(v)
			if err != nil {
				return nil, fmt.Errorf("output: %w", err)
			}
			p, err = f.Output(strings.ReplaceAll(out, "-", "_"))
			if err != nil {
				return nil, err
			}
		} else if p, err = f.Get(); err != nil {
			return nil, err
		}
		return wrapPort(p), nil
	})

	// (set-field geo :position value :where sel)
	s.define(env, "set_field", 3, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		f, err := fieldArg(a)
		if err != nil {
			return nil, err
		}
		if err := setWhere(f, a, 2); err != nil {
			return nil, err
		}
		return a.arg(0), nil
	})

	// (attr geo "temperature" :type :float)
	s.define(env, "attr", 2, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		f, err := attributeArg(a)
		if err != nil {
			return nil, err
		}
		p, err := f.Get()
		if err != nil {
			return nil, err
		}
		return wrapPort(p), nil
	})

	// (store geo "temperature" value :type :float :where sel)
	s.define(env, "store", 3, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		f, err := attributeArg(a)
		if err != nil {
			return nil, err
		}
		if err := setWhere(f, a, 2); err != nil {
			return nil, err
		}
		return a.arg(0), nil
	})

	// -- geometry operations ------------------------------------------------------

	s.define(env, "join_geometry", 1, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		g, err := toGeometry(a.arg(0))
		if err != nil {
			return nil, err
		}
		others := make([]any, 0, len(a.positional)-1)
		for _, arg := range a.positional[1:] {
			v, err := toValue(arg)
			if err != nil {
				return nil, err
			}
			others = append(others, v)
		}
		if err := g.Join(others...); err != nil {
			return nil, err
		}
		return a.arg(0), nil
	})

	s.define(env, "set_material", 2, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		g, err := toGeometry(a.arg(0))
		if err != nil {
			return nil, err
		}
		mat, err := toValue(a.arg(1))
		if err != nil {
			return nil, fmt.Errorf("material: %w", err)
		}
		if err := g.SetMaterial(mat); err != nil {
			return nil, err
		}
		return a.arg(0), nil
	})

	// (delete-geometry geo :mode :only-face)
	s.define(env, "delete_geometry", 1, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		g, err := toGeometry(a.arg(0))
		if err != nil {
			return nil, err
		}
		var mode string
		if v, ok := a.kw["mode"]; ok {
			if mode, err = toEnum(v); err != nil {
				return nil, fmt.Errorf("mode: %w", err)
			}
		}
		if err := g.Delete(mode); err != nil {
			return nil, err
		}
		return a.arg(0), nil
	})

	// -- resources and raw nodes ------------------------------------------------

	for name, kind := range map[string]graph.ResourceKind{
		"material":   graph.ResourceMaterial,
		"object":     graph.ResourceObject,
		"image":      graph.ResourceImage,
		"collection": graph.ResourceCollection,
	} {
		s.define(env, name, 1, func(t *tree.Tree, a kwArgs) (zygo.Sexp, error) {
			n, err := toString(a.arg(0))
			if err != nil {
				return nil, fmt.Errorf("name: %w", err)
			}
			r, err := t.Resource(kind, n)
			if err != nil {
				return nil, err
			}
			return &sexpResource{r: r}, nil
		})
	}

	s.define(env, "object_info", 1, func(t *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		obj, err := toValue(a.arg(0))
		if err != nil {
			return nil, fmt.Errorf("object: %w", err)
		}
		n, err := t.ObjectInfo(obj)
		if err != nil {
			return nil, err
		}
		return &sexpNode{n: n}, nil
	})

	// (make-node "Set Position" :geometry geo :offset (vec3 0 0 1))
	// Keywords name inputs or params by their snake_case form.
	s.define(env, "make_node", 1, func(t *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		kindName, err := toString(a.arg(0))
		if err != nil {
			return nil, fmt.Errorf("kind: %w", err)
		}
		k, ok := s.e.catalog.Kind(kindName)
		if !ok {
			return nil, fmt.Errorf("unknown node kind %q", kindName)
		}
		inputs, params, err := nodeArgs(k, a)
		if err != nil {
			return nil, err
		}
		n, err := t.Node(k.Name, inputs, params)
		if err != nil {
			return nil, err
		}
		return &sexpNode{n: n}, nil
	})

	// (out node "Mesh") picks a node output; without a name, the first one.
	s.define(env, "out", 1, func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		n, ok := a.arg(0).(*sexpNode)
		if !ok {
			return nil, fmt.Errorf("expected node, got %s", describe(a.arg(0)))
		}
		if len(a.positional) < 2 {
			p := n.n.Out()
			if p == nil {
				return nil, fmt.Errorf("node %s has no outputs", n.n.ID())
			}
			return wrapPort(p), nil
		}
		name, err := toKeywordString(a.arg(1))
		if err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
		p, err := n.n.Output(strings.ReplaceAll(name, "-", "_"))
		if err != nil {
			return nil, err
		}
		return wrapPort(p), nil
	})
}

// binary applies op with the first socket operand as the receiver. A literal
// on the left goes through ApplyReflected so operand order is kept.
func binary(op tree.Op) builtinFunc {
	return func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		x, err := toValue(a.arg(0))
		if err != nil {
			return nil, err
		}
		y, err := toValue(a.arg(1))
		if err != nil {
			return nil, err
		}
		var res *tree.Port
		if p, ok := portOf(x); ok {
			res, err = p.Apply(op, y)
		} else if p, ok := portOf(y); ok {
			res, err = p.ApplyReflected(op, x)
		} else {
			return nil, errors.New("at least one operand must be a socket")
		}
		if err != nil {
			return nil, err
		}
		return wrapPort(res), nil
	}
}

// inPlace applies op and moves the receiver onto the result. Geometry
// receivers also drop their pending selection and domain.
func inPlace(op tree.Op) builtinFunc {
	return func(_ *tree.Tree, a kwArgs) (zygo.Sexp, error) {
		y, err := toValue(a.arg(1))
		if err != nil {
			return nil, err
		}
		switch x := a.arg(0).(type) {
		case *sexpGeometry:
			err = x.g.InPlace(op, y)
		case *sexpPort:
			err = x.p.InPlace(op, y)
		default:
			return nil, fmt.Errorf("expected socket, got %s", describe(x))
		}
		if err != nil {
			return nil, err
		}
		return a.arg(0), nil
	}
}

// fieldArg resolves the field named by positional argument 1 on the
// geometry in argument 0. Parameterized fields read their parameters from
// keywords.
func fieldArg(a kwArgs) (*tree.Field, error) {
	g, err := toGeometry(a.arg(0))
	if err != nil {
		return nil, err
	}
	name, err := fieldName(a.arg(1))
	if err != nil {
		return nil, fmt.Errorf("field: %w", err)
	}
	switch name {
	case "is_planar":
		th, err := a.value("threshold")
		if err != nil {
			return nil, fmt.Errorf("threshold: %w", err)
		}
		return g.IsPlanar(th), nil
	case "material_selection":
		mat, err := a.value("material")
		if err != nil {
			return nil, fmt.Errorf("material: %w", err)
		}
		return g.MaterialSelection(mat), nil
	case "endpoint_selection":
		start, err := a.value("start")
		if err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		end, err := a.value("end")
		if err != nil {
			return nil, fmt.Errorf("end: %w", err)
		}
		return g.EndpointSelection(start, end), nil
	}
	return g.Field(name)
}

// attributeArg returns the named attribute field for (attr geo name ...)
// and (store geo name ...).
func attributeArg(a kwArgs) (*tree.Field, error) {
	g, err := toGeometry(a.arg(0))
	if err != nil {
		return nil, err
	}
	name, err := toString(a.arg(1))
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	var dataType string
	if v, ok := a.kw["type"]; ok {
		if dataType, err = toEnum(v); err != nil {
			return nil, fmt.Errorf("type: %w", err)
		}
	}
	return g.Attribute(name, dataType), nil
}

// setWhere writes positional argument i to f, restricted by :where.
func setWhere(f *tree.Field, a kwArgs, i int) error {
	v, err := toValue(a.arg(i))
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}
	where, err := a.value("where")
	if err != nil {
		return fmt.Errorf("where: %w", err)
	}
	return f.SetWhere(v, where)
}

// nodeArgs sorts make-node keywords into inputs and params. Keyword values
// given to params are host enums (:add -> "ADD").
func nodeArgs(k *catalog.Kind, a kwArgs) (map[string]any, map[string]any, error) {
	inputs := make(map[string]any)
	params := make(map[string]any)
	for key, raw := range a.kw {
		name := strings.ReplaceAll(key, "-", "_")
		if sock, ok := k.Input(name); ok {
			v, err := toValue(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", name, err)
			}
			if items, ok := v.([]any); ok && sock.Multi {
				v = tree.Many(items)
			}
			inputs[sock.Name] = v
			continue
		}
		if _, ok := k.Param(name); ok {
			var v any
			var err error
			if _, isKeyword := isKW(raw); isKeyword {
				v, err = toEnum(raw)
			} else {
				v, err = toValue(raw)
			}
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", name, err)
			}
			params[name] = v
			continue
		}
		return nil, nil, fmt.Errorf("%s has no input or param %q", k.Name, name)
	}
	return inputs, params, nil
}

// toPort extracts the port behind a socket Sexp.
func toPort(s zygo.Sexp) (*tree.Port, error) {
	switch v := s.(type) {
	case *sexpPort:
		return v.p, nil
	case *sexpGeometry:
		return v.g.Port, nil
	}
	return nil, fmt.Errorf("expected socket, got %s", describe(s))
}

// sexpSocket wraps a tree.Socket returned by the tree.
func sexpSocket(sock tree.Socket) zygo.Sexp {
	if g, ok := sock.(*tree.Geometry); ok {
		return &sexpGeometry{g: g}
	}
	return &sexpPort{p: sock.(*tree.Port)}
}

// toSimulation extracts the zone behind a sexpSimulation.
func toSimulation(s zygo.Sexp) (*tree.Simulation, error) {
	if v, ok := s.(*sexpSimulation); ok {
		return v.sim, nil
	}
	return nil, fmt.Errorf("expected simulation, got %s", describe(s))
}

// itemName turns a keyword such as rest-length into the socket name
// "Rest Length".
func itemName(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
