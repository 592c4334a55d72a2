package graph

import (
	"fmt"
	"strings"
)

// SocketType is the semantic type carried by a socket. The set is closed.
type SocketType int

const (
	TypeInvalid SocketType = iota
	TypeBoolean
	TypeInteger
	TypeFloat
	TypeVector
	TypeRotation
	TypeMatrix
	TypeColor
	TypeString
	TypeGeometry
	TypeObject
	TypeMaterial
	TypeImage
	TypeCollection
	TypeMenu
)

var socketTypeNames = map[SocketType]string{
	TypeBoolean:    "Boolean",
	TypeInteger:    "Integer",
	TypeFloat:      "Float",
	TypeVector:     "Vector",
	TypeRotation:   "Rotation",
	TypeMatrix:     "Matrix",
	TypeColor:      "Color",
	TypeString:     "String",
	TypeGeometry:   "Geometry",
	TypeObject:     "Object",
	TypeMaterial:   "Material",
	TypeImage:      "Image",
	TypeCollection: "Collection",
	TypeMenu:       "Menu",
}

// hostSocketNames maps the host's socket type identifiers onto SocketType.
var hostSocketNames = map[string]SocketType{
	"BOOLEAN":    TypeBoolean,
	"INT":        TypeInteger,
	"VALUE":      TypeFloat,
	"VECTOR":     TypeVector,
	"ROTATION":   TypeRotation,
	"MATRIX":     TypeMatrix,
	"RGBA":       TypeColor,
	"STRING":     TypeString,
	"GEOMETRY":   TypeGeometry,
	"OBJECT":     TypeObject,
	"MATERIAL":   TypeMaterial,
	"IMAGE":      TypeImage,
	"COLLECTION": TypeCollection,
	"MENU":       TypeMenu,
}

func (t SocketType) String() string {
	if s, ok := socketTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("SocketType(%d)", int(t))
}

// Valid reports whether t is one of the known socket types.
func (t SocketType) Valid() bool {
	_, ok := socketTypeNames[t]
	return ok
}

// Scalar reports whether t is Boolean, Integer or Float.
func (t SocketType) Scalar() bool {
	return t == TypeBoolean || t == TypeInteger || t == TypeFloat
}

// Resource reports whether values of t are host resources looked up by name.
func (t SocketType) Resource() bool {
	switch t {
	case TypeObject, TypeMaterial, TypeImage, TypeCollection:
		return true
	}
	return false
}

// Stateful reports whether a zone can carry values of t from one step to
// the next. Resources and menus cannot.
func (t SocketType) Stateful() bool {
	return t.Valid() && !t.Resource() && t != TypeMenu
}

// ParseSocketType accepts either the display name ("Vector") or the host
// identifier ("VECTOR", "RGBA", "VALUE").
func ParseSocketType(s string) (SocketType, error) {
	for t, name := range socketTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	if t, ok := hostSocketNames[strings.ToUpper(s)]; ok {
		return t, nil
	}
	return TypeInvalid, fmt.Errorf("unknown socket type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t SocketType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SocketType) UnmarshalText(b []byte) error {
	v, err := ParseSocketType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// CanLink reports whether the host accepts a link from an output of type
// from into an input of type to. Numeric-like types convert implicitly.
func CanLink(from, to SocketType) bool {
	if from == to {
		return true
	}
	numeric := func(t SocketType) bool {
		switch t {
		case TypeBoolean, TypeInteger, TypeFloat, TypeVector, TypeColor:
			return true
		}
		return false
	}
	if numeric(from) && numeric(to) {
		return true
	}
	if (from == TypeVector && to == TypeRotation) || (from == TypeRotation && to == TypeVector) {
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Domains
// ---------------------------------------------------------------------------

// Domain is the entity granularity an attribute lives on.
type Domain int

const (
	DomainNone Domain = iota
	DomainPoint
	DomainEdge
	DomainFace
	DomainCorner
	DomainCurve
	DomainSpline
	DomainInstance
)

// AllDomains lists every concrete domain in declaration order.
var AllDomains = []Domain{
	DomainPoint, DomainEdge, DomainFace, DomainCorner,
	DomainCurve, DomainSpline, DomainInstance,
}

var domainNames = map[Domain]string{
	DomainPoint:    "Point",
	DomainEdge:     "Edge",
	DomainFace:     "Face",
	DomainCorner:   "Corner",
	DomainCurve:    "Curve",
	DomainSpline:   "Spline",
	DomainInstance: "Instance",
}

func (d Domain) String() string {
	if s, ok := domainNames[d]; ok {
		return s
	}
	if d == DomainNone {
		return "None"
	}
	return fmt.Sprintf("Domain(%d)", int(d))
}

// HostName returns the enum value the host uses for d in "domain" params.
// The host has no separate spline domain; splines are curves.
func (d Domain) HostName() string {
	switch d {
	case DomainSpline:
		return "CURVE"
	case DomainNone:
		return ""
	}
	return strings.ToUpper(d.String())
}

// ParseDomain accepts "point", "POINT", "Point" and so on.
func ParseDomain(s string) (Domain, error) {
	for d, name := range domainNames {
		if strings.EqualFold(name, s) {
			return d, nil
		}
	}
	return DomainNone, fmt.Errorf("unknown domain %q", s)
}

// ---------------------------------------------------------------------------
// Trees, nodes and references
// ---------------------------------------------------------------------------

// TreeKind distinguishes geometry node trees from shader node trees.
type TreeKind int

const (
	TreeGeometry TreeKind = iota
	TreeShader
)

func (k TreeKind) String() string {
	switch k {
	case TreeGeometry:
		return "geometry"
	case TreeShader:
		return "shader"
	default:
		return fmt.Sprintf("TreeKind(%d)", int(k))
	}
}

// ParseTreeKind parses "geometry" or "shader".
func ParseTreeKind(s string) (TreeKind, error) {
	switch strings.ToLower(s) {
	case "geometry":
		return TreeGeometry, nil
	case "shader":
		return TreeShader, nil
	}
	return 0, fmt.Errorf("unknown tree kind %q", s)
}

// NodeID identifies a node inside one host graph.
type NodeID string

// IsZero reports whether the ID is empty.
func (id NodeID) IsZero() bool { return id == "" }

// OutputRef addresses one output socket of a node.
type OutputRef struct {
	Node   NodeID `json:"node" yaml:"node"`
	Socket string `json:"socket" yaml:"socket"`
}

func (r OutputRef) String() string { return fmt.Sprintf("%s.%s", r.Node, r.Socket) }

// InputRef addresses one input socket of a node.
type InputRef struct {
	Node   NodeID `json:"node" yaml:"node"`
	Socket string `json:"socket" yaml:"socket"`
}

func (r InputRef) String() string { return fmt.Sprintf("%s.%s", r.Node, r.Socket) }

// SocketDef describes one socket on a created node, with its type resolved.
type SocketDef struct {
	Name  string     `json:"name" yaml:"name"`
	Type  SocketType `json:"type" yaml:"type"`
	Multi bool       `json:"multi,omitempty" yaml:"multi,omitempty"`
}

// NodeHandle is what the host returns from CreateNode.
type NodeHandle struct {
	ID      NodeID
	Kind    string
	Inputs  []SocketDef
	Outputs []SocketDef
}

// Output returns the output socket named name.
func (h NodeHandle) Output(name string) (SocketDef, bool) {
	for _, s := range h.Outputs {
		if s.Name == name {
			return s, true
		}
	}
	return SocketDef{}, false
}

// Input returns the input socket named name.
func (h NodeHandle) Input(name string) (SocketDef, bool) {
	for _, s := range h.Inputs {
		if s.Name == name {
			return s, true
		}
	}
	return SocketDef{}, false
}
