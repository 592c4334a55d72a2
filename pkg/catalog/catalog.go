// Package catalog is the read-only table of node kinds: the host identifier
// for each kind, its sockets, its enum params and the trees it can live in.
// The default table is embedded from nodes.yaml.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/chazu/geonodes/pkg/graph"
	"gopkg.in/yaml.v3"
)

//go:embed nodes.yaml
var defaultTable []byte

// Socket is one socket declaration. Type is either a socket type name or
// "$param", meaning the type follows that param's value.
type Socket struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Multi bool   `yaml:"multi,omitempty"`
}

// Derived returns the param name a derived socket follows.
func (s Socket) Derived() (string, bool) {
	if strings.HasPrefix(s.Type, "$") {
		return s.Type[1:], true
	}
	return "", false
}

// PyName is the snake_case form of the socket name, used for keyword args.
func (s Socket) PyName() string { return PyName(s.Name) }

// Param is a node property. A param with no Values accepts any value.
type Param struct {
	Name    string   `yaml:"name"`
	Values  []string `yaml:"values,omitempty"`
	Default string   `yaml:"default,omitempty"`
}

// Enum reports whether the param is restricted to Values.
func (p Param) Enum() bool { return len(p.Values) > 0 }

func (p Param) allows(v string) bool {
	for _, x := range p.Values {
		if x == v {
			return true
		}
	}
	return false
}

// Kind describes one node kind.
type Kind struct {
	Name    string   `yaml:"name"`
	ID      string   `yaml:"id"`
	Trees   []string `yaml:"trees,omitempty"`
	Inputs  []Socket `yaml:"inputs,omitempty"`
	Outputs []Socket `yaml:"outputs,omitempty"`
	Params  []Param  `yaml:"params,omitempty"`

	trees map[graph.TreeKind]bool
}

// InTree reports whether the kind is available in trees of kind t.
func (k *Kind) InTree(t graph.TreeKind) bool { return k.trees[t] }

// Param returns the named param.
func (k *Kind) Param(name string) (Param, bool) {
	for _, p := range k.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Input returns the input socket matching name, accepting either the display
// name ("Vertices X") or its snake_case form ("vertices_x").
func (k *Kind) Input(name string) (Socket, bool) {
	for _, s := range k.Inputs {
		if s.Name == name || s.PyName() == name {
			return s, true
		}
	}
	return Socket{}, false
}

// Output returns the output socket matching name, as Input does.
func (k *Kind) Output(name string) (Socket, bool) {
	for _, s := range k.Outputs {
		if s.Name == name || s.PyName() == name {
			return s, true
		}
	}
	return Socket{}, false
}

// Catalog is a set of node kinds indexed by name and host id.
type Catalog struct {
	DataTypes map[string]graph.SocketType

	kinds  []*Kind
	byName map[string]*Kind
	byID   map[string]*Kind
}

type table struct {
	DataTypes map[string]string `yaml:"data_types"`
	Kinds     []*Kind           `yaml:"kinds"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog. It panics if the embedded table is
// malformed, which is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultTable)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded table: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads a catalog table from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and checks a catalog table.
func Parse(data []byte) (*Catalog, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	c := &Catalog{
		DataTypes: make(map[string]graph.SocketType, len(t.DataTypes)),
		byName:    make(map[string]*Kind, len(t.Kinds)),
		byID:      make(map[string]*Kind, len(t.Kinds)),
	}
	for name, typ := range t.DataTypes {
		st, err := graph.ParseSocketType(typ)
		if err != nil {
			return nil, fmt.Errorf("data type %s: %w", name, err)
		}
		c.DataTypes[name] = st
	}

	for _, k := range t.Kinds {
		if err := c.add(k); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(k *Kind) error {
	if k.Name == "" || k.ID == "" {
		return fmt.Errorf("kind %q: name and id are required", k.Name)
	}
	if _, dup := c.byName[k.Name]; dup {
		return fmt.Errorf("kind %q: duplicate name", k.Name)
	}
	if _, dup := c.byID[k.ID]; dup {
		return fmt.Errorf("kind %q: duplicate id %s", k.Name, k.ID)
	}

	if len(k.Trees) == 0 {
		k.Trees = []string{graph.TreeGeometry.String()}
	}
	k.trees = make(map[graph.TreeKind]bool, len(k.Trees))
	for _, name := range k.Trees {
		tk, err := graph.ParseTreeKind(name)
		if err != nil {
			return fmt.Errorf("kind %q: %w", k.Name, err)
		}
		k.trees[tk] = true
	}

	for _, p := range k.Params {
		if p.Enum() && p.Default != "" && !p.allows(p.Default) {
			return fmt.Errorf("kind %q: param %s: default %q not in %v", k.Name, p.Name, p.Default, p.Values)
		}
	}

	check := func(sockets []Socket) error {
		for _, s := range sockets {
			if param, ok := s.Derived(); ok {
				p, found := k.Param(param)
				if !found || !p.Enum() {
					return fmt.Errorf("kind %q: socket %s follows unknown enum param %s", k.Name, s.Name, param)
				}
				for _, v := range p.Values {
					if _, ok := c.DataTypes[v]; !ok {
						return fmt.Errorf("kind %q: param %s value %s has no data type", k.Name, param, v)
					}
				}
				continue
			}
			if _, err := graph.ParseSocketType(s.Type); err != nil {
				return fmt.Errorf("kind %q: socket %s: %w", k.Name, s.Name, err)
			}
		}
		return nil
	}
	if err := check(k.Inputs); err != nil {
		return err
	}
	if err := check(k.Outputs); err != nil {
		return err
	}

	c.kinds = append(c.kinds, k)
	c.byName[k.Name] = k
	c.byID[k.ID] = k
	return nil
}

// Kind looks a kind up by display name or host id.
func (c *Catalog) Kind(name string) (*Kind, bool) {
	if k, ok := c.byName[name]; ok {
		return k, true
	}
	k, ok := c.byID[name]
	return k, ok
}

// Kinds returns all kinds in table order.
func (c *Catalog) Kinds() []*Kind {
	out := make([]*Kind, len(c.kinds))
	copy(out, c.kinds)
	return out
}

// Len returns the number of kinds.
func (c *Catalog) Len() int { return len(c.kinds) }

// Names returns the sorted display names of all kinds.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.kinds))
	for _, k := range c.kinds {
		names = append(names, k.Name)
	}
	sort.Strings(names)
	return names
}

// Resolve fills in param defaults, checks enum values and computes the
// concrete socket types of k for those params.
func (c *Catalog) Resolve(k *Kind, params map[string]any) (map[string]any, []graph.SocketDef, []graph.SocketDef, error) {
	resolved := make(map[string]any, len(k.Params))
	for name, v := range params {
		p, ok := k.Param(name)
		if !ok {
			return nil, nil, nil, fmt.Errorf("%s has no param %q", k.Name, name)
		}
		if p.Enum() {
			s, ok := v.(string)
			if !ok || !p.allows(s) {
				return nil, nil, nil, fmt.Errorf("%s param %s: %v not in %v", k.Name, name, v, p.Values)
			}
		}
		resolved[name] = v
	}
	for _, p := range k.Params {
		if _, ok := resolved[p.Name]; !ok && p.Default != "" {
			resolved[p.Name] = p.Default
		}
	}

	socketDefs := func(sockets []Socket) ([]graph.SocketDef, error) {
		defs := make([]graph.SocketDef, 0, len(sockets))
		for _, s := range sockets {
			var typ graph.SocketType
			if param, ok := s.Derived(); ok {
				v, _ := resolved[param].(string)
				dt, ok := c.DataTypes[v]
				if !ok {
					return nil, fmt.Errorf("%s socket %s: no data type for %s=%q", k.Name, s.Name, param, v)
				}
				typ = dt
			} else {
				// Checked in add.
				typ, _ = graph.ParseSocketType(s.Type)
			}
			defs = append(defs, graph.SocketDef{Name: s.Name, Type: typ, Multi: s.Multi})
		}
		return defs, nil
	}

	in, err := socketDefs(k.Inputs)
	if err != nil {
		return nil, nil, nil, err
	}
	out, err := socketDefs(k.Outputs)
	if err != nil {
		return nil, nil, nil, err
	}
	return resolved, in, out, nil
}

// DataTypeFor returns the data_type enum value used for sockets of type t,
// as the host's attribute nodes spell it.
func DataTypeFor(t graph.SocketType) (string, bool) {
	switch t {
	case graph.TypeFloat:
		return "FLOAT", true
	case graph.TypeInteger:
		return "INT", true
	case graph.TypeBoolean:
		return "BOOLEAN", true
	case graph.TypeVector:
		return "FLOAT_VECTOR", true
	case graph.TypeColor:
		return "FLOAT_COLOR", true
	case graph.TypeRotation:
		return "QUATERNION", true
	case graph.TypeMatrix:
		return "FLOAT4X4", true
	}
	return "", false
}

// PyName converts a socket display name to snake_case: "Vertices X" becomes
// "vertices_x", "Value_001" stays "value_001".
func PyName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
