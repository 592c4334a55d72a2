package host

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Snapshot is a serializable view of a Memory graph.
type Snapshot struct {
	ID      string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string            `json:"name" yaml:"name"`
	Kind    string            `json:"kind" yaml:"kind"`
	Inputs  []InterfaceSocket `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs []InterfaceSocket `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Nodes   []NodeSnapshot    `json:"nodes" yaml:"nodes"`
	Links   []Link            `json:"links" yaml:"links"`
}

// NodeSnapshot is one node in a Snapshot.
type NodeSnapshot struct {
	ID       string         `json:"id" yaml:"id"`
	Kind     string         `json:"kind" yaml:"kind"`
	Params   map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Literals map[string]any `json:"literals,omitempty" yaml:"literals,omitempty"`
	// Zone is the paired output node of a zone input node.
	Zone string `json:"zone,omitempty" yaml:"zone,omitempty"`
}

// Snapshot captures the current state of the graph. Nodes are listed in
// creation order.
func (m *Memory) Snapshot() Snapshot {
	s := Snapshot{
		Name:  m.Name,
		Kind:  m.Kind.String(),
		Links: m.Links(),
	}
	s.Inputs, s.Outputs = m.Interface()
	for _, n := range m.List() {
		ns := NodeSnapshot{ID: string(n.ID), Kind: n.Kind}
		if len(n.Params) > 0 {
			ns.Params = n.Params
		}
		if len(n.Literals) > 0 {
			ns.Literals = n.Literals
		}
		if out, ok := m.zones[n.ID]; ok {
			ns.Zone = string(out)
		}
		s.Nodes = append(s.Nodes, ns)
	}
	return s
}

// WriteText writes a human-readable listing of the snapshot.
func (s Snapshot) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "tree %q (%s)", s.Name, s.Kind)
	if s.ID != "" {
		fmt.Fprintf(&b, " %s", s.ID)
	}
	b.WriteString("\n")

	for _, in := range s.Inputs {
		fmt.Fprintf(&b, "  in  %-20s %s\n", in.Name, in.Type)
	}
	for _, out := range s.Outputs {
		fmt.Fprintf(&b, "  out %-20s %s\n", out.Name, out.Type)
	}

	for _, n := range s.Nodes {
		fmt.Fprintf(&b, "  node %s", n.ID)
		if n.ID != n.Kind {
			fmt.Fprintf(&b, " [%s]", n.Kind)
		}
		for _, k := range sortedKeys(n.Params) {
			fmt.Fprintf(&b, " %s=%v", k, n.Params[k])
		}
		if n.Zone != "" {
			fmt.Fprintf(&b, " zone->%s", n.Zone)
		}
		b.WriteString("\n")
		for _, k := range sortedKeys(n.Literals) {
			fmt.Fprintf(&b, "    %s = %v\n", k, n.Literals[k])
		}
	}
	for _, l := range s.Links {
		fmt.Fprintf(&b, "  link %s -> %s\n", l.From, l.To)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
