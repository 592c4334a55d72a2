package tree

import (
	"fmt"
	"sort"

	"github.com/chazu/geonodes/pkg/catalog"
	"github.com/chazu/geonodes/pkg/graph"
)

// writeKind is the setter node for one domain and the name of its geometry
// input and output.
type writeKind struct {
	kind string
	geo  string
}

// fieldSpec describes one geometry attribute. read and write are keyed by
// domain; DomainNone is the entry for every domain not listed.
type fieldSpec struct {
	name    string
	domains []graph.Domain
	def     graph.Domain
	read    map[graph.Domain]string
	write   map[graph.Domain]writeKind
	value   string

	domainParam bool // pass the resolved domain to the setter's "domain" param
	cache       bool
}

func (s *fieldSpec) readKind(d graph.Domain) string {
	if k, ok := s.read[d]; ok {
		return k
	}
	return s.read[graph.DomainNone]
}

func (s *fieldSpec) writeKind(d graph.Domain) writeKind {
	if w, ok := s.write[d]; ok {
		return w
	}
	return s.write[graph.DomainNone]
}

func any1(kind string) map[graph.Domain]string {
	return map[graph.Domain]string{graph.DomainNone: kind}
}

func set1(kind, geo string) map[graph.Domain]writeKind {
	return map[graph.Domain]writeKind{graph.DomainNone: {kind: kind, geo: geo}}
}

var (
	pointOnly  = []graph.Domain{graph.DomainPoint}
	faceOnly   = []graph.Domain{graph.DomainFace}
	edgeOnly   = []graph.Domain{graph.DomainEdge}
	curveLevel = []graph.Domain{graph.DomainCurve, graph.DomainSpline}
)

var fieldSpecs = map[string]*fieldSpec{
	"position": {
		name: "position", domains: graph.AllDomains, def: graph.DomainPoint,
		read:  any1("Position"),
		write: set1("Set Position", "Geometry"), value: "Position",
		cache: true,
	},
	"radius": {
		name: "radius", domains: []graph.Domain{graph.DomainPoint, graph.DomainCurve}, def: graph.DomainPoint,
		read: any1("Radius"),
		write: map[graph.Domain]writeKind{
			graph.DomainPoint: {kind: "Set Point Radius", geo: "Points"},
			graph.DomainCurve: {kind: "Set Curve Radius", geo: "Curve"},
		},
		value: "Radius",
		cache: true,
	},
	"shade_smooth": {
		name: "shade_smooth", domains: []graph.Domain{graph.DomainEdge, graph.DomainFace}, def: graph.DomainFace,
		read: map[graph.Domain]string{
			graph.DomainEdge: "Is Edge Smooth",
			graph.DomainFace: "Is Face Smooth",
		},
		write: set1("Set Shade Smooth", "Geometry"), value: "Shade Smooth",
		domainParam: true,
		cache:       true,
	},
	"material_index": {
		name: "material_index", domains: graph.AllDomains, def: graph.DomainFace,
		read:  any1("Material Index"),
		write: set1("Set Material Index", "Geometry"), value: "Material Index",
		cache: true,
	},
	"attribute": {
		name: "attribute", domains: graph.AllDomains, def: graph.DomainPoint,
		read:  any1("Named Attribute"),
		write: set1("Store Named Attribute", "Geometry"), value: "Value",
		domainParam: true,
		cache:       true,
	},
	"id":    {name: "id", domains: graph.AllDomains, def: graph.DomainPoint, read: any1("ID"), cache: true},
	"index": {name: "index", domains: graph.AllDomains, def: graph.DomainPoint, read: any1("Index"), cache: true},
	"normal": {
		name: "normal", domains: graph.AllDomains, def: graph.DomainPoint, read: any1("Normal"), cache: true,
	},
	"neighbors": {
		name: "neighbors", domains: []graph.Domain{graph.DomainPoint, graph.DomainEdge, graph.DomainFace}, def: graph.DomainPoint,
		read: map[graph.Domain]string{
			graph.DomainPoint: "Vertex Neighbors",
			graph.DomainEdge:  "Edge Neighbors",
			graph.DomainFace:  "Face Neighbors",
		},
		cache: true,
	},
	"area":      {name: "area", domains: faceOnly, def: graph.DomainFace, read: any1("Face Area"), cache: true},
	"is_planar": {name: "is_planar", domains: faceOnly, def: graph.DomainFace, read: any1("Is Face Planar")},
	"island": {
		name: "island", domains: []graph.Domain{graph.DomainPoint, graph.DomainFace}, def: graph.DomainPoint,
		read: any1("Mesh Island"), cache: true,
	},
	"material_selection": {
		name: "material_selection", domains: faceOnly, def: graph.DomainFace, read: any1("Material Selection"),
	},
	"angle":         {name: "angle", domains: edgeOnly, def: graph.DomainEdge, read: any1("Edge Angle"), cache: true},
	"edge_vertices": {name: "edge_vertices", domains: edgeOnly, def: graph.DomainEdge, read: any1("Edge Vertices"), cache: true},
	"tangent":       {name: "tangent", domains: pointOnly, def: graph.DomainPoint, read: any1("Curve Tangent"), cache: true},
	"spline_length": {
		name: "spline_length", domains: curveLevel, def: graph.DomainCurve, read: any1("Spline Length"), cache: true,
	},
	"spline_parameter": {
		name: "spline_parameter", domains: pointOnly, def: graph.DomainPoint, read: any1("Spline Parameter"), cache: true,
	},
	"tilt": {
		name: "tilt", domains: pointOnly, def: graph.DomainPoint,
		read:  any1("Curve Tilt"),
		write: set1("Set Curve Tilt", "Curve"), value: "Tilt",
		cache: true,
	},
	"cyclic": {
		name: "cyclic", domains: curveLevel, def: graph.DomainCurve,
		read:  any1("Is Spline Cyclic"),
		write: set1("Set Spline Cyclic", "Geometry"), value: "Cyclic",
		cache: true,
	},
	"resolution": {
		name: "resolution", domains: curveLevel, def: graph.DomainCurve,
		read:  any1("Spline Resolution"),
		write: set1("Set Spline Resolution", "Geometry"), value: "Resolution",
		cache: true,
	},
	"endpoint_selection": {
		name: "endpoint_selection", domains: pointOnly, def: graph.DomainPoint, read: any1("Endpoint Selection"),
	},
}

// FieldNames lists the names accepted by Geometry.Field.
func FieldNames() []string {
	names := make([]string, 0, len(fieldSpecs))
	for n := range fieldSpecs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ---------------------------------------------------------------------------
// Field
// ---------------------------------------------------------------------------

// Field is a proxy for one attribute of a Geometry. It reads and writes
// through the geometry's pending selection and domain.
type Field struct {
	geo  *Geometry
	spec *fieldSpec

	// inputs are extra getter inputs such as Threshold or Material.
	inputs map[string]any
	// attr and dataType are set for named attributes.
	attr     string
	dataType string
}

// Field returns the field called name, such as "position" or
// "material_index". Named attributes use Attribute instead.
func (g *Geometry) Field(name string) (*Field, error) {
	spec, ok := fieldSpecs[name]
	if !ok || name == "attribute" {
		return nil, fmt.Errorf("unknown field %q", name)
	}
	return &Field{geo: g, spec: spec}, nil
}

func (g *Geometry) field(name string, inputs map[string]any) *Field {
	return &Field{geo: g, spec: fieldSpecs[name], inputs: inputs}
}

// Name returns the field name.
func (f *Field) Name() string { return f.spec.name }

// ReadOnly reports whether the field has no setter.
func (f *Field) ReadOnly() bool { return f.spec.write == nil }

func (f *Field) cacheKey(d graph.Domain) string {
	if f.attr != "" {
		return fmt.Sprintf("field:%s:%s:%s:%s", f.spec.name, f.attr, f.dataType, d.HostName())
	}
	return fmt.Sprintf("field:%s:%s", f.spec.name, d.HostName())
}

// Node returns the getter node for the field. The pending selection is
// discarded; getters are evaluated everywhere.
func (f *Field) Node() (*Node, error) {
	g := f.geo
	g.selection.Take()
	d, err := g.resolveDomain(f.spec.name, f.spec.domains, f.spec.def)
	if err != nil {
		return nil, err
	}
	kind := f.spec.readKind(d)

	build := func() (*Node, error) {
		inputs := make(map[string]any, len(f.inputs)+1)
		for k, v := range f.inputs {
			inputs[k] = v
		}
		var params map[string]any
		if f.attr != "" {
			inputs["Name"] = f.attr
			dt := f.dataType
			if dt == "" {
				dt = "FLOAT"
			}
			params = map[string]any{"data_type": dt}
		}
		if m, ok := inputs["Material"]; ok && m != nil {
			mat, err := g.tree.resourceOperand(graph.ResourceMaterial, m)
			if err != nil {
				return nil, err
			}
			inputs["Material"] = mat
		}
		return g.tree.Node(kind, inputs, params)
	}
	if !f.spec.cache {
		return build()
	}
	return g.cached(f.cacheKey(d), build)
}

// Get returns the field's main output.
func (f *Field) Get() (*Port, error) {
	n, err := f.Node()
	if err != nil {
		return nil, err
	}
	return n.Out(), nil
}

// Output returns a named output of the getter node, such as "Face Count"
// of the neighbors field.
func (f *Field) Output(name string) (*Port, error) {
	n, err := f.Node()
	if err != nil {
		return nil, err
	}
	return n.Output(name)
}

// Set writes value through the pending selection and domain.
func (f *Field) Set(value any) error {
	return f.SetWhere(value, nil)
}

// SetWhere writes value where both the pending selector and selection hold.
func (f *Field) SetWhere(value, selection any) error {
	g := f.geo
	raw, attached := g.selection.Take()
	dom, domSet := g.domain.Take()
	if f.ReadOnly() {
		return &ReadOnlyFieldError{Field: f.spec.name}
	}
	d, err := domainFor(f.spec.name, f.spec.domains, f.spec.def, dom, domSet)
	if err != nil {
		return err
	}
	var dataType string
	if f.attr != "" {
		if dataType, err = f.storeDataType(value); err != nil {
			return err
		}
	}
	sel, err := g.tree.selection(raw, attached, selection)
	if err != nil {
		return err
	}

	wk := f.spec.writeKind(d)
	inputs := map[string]any{f.spec.value: value}
	params := map[string]any{}
	if f.spec.domainParam {
		params["domain"] = d.HostName()
	}
	if f.attr != "" {
		inputs["Name"] = f.attr
		params["data_type"] = dataType
	}
	return g.mutate(wk.kind, wk.geo, sel, inputs, params)
}

// storeDataType picks the data_type of a named attribute write: the
// explicit one, else the value's socket or literal type.
func (f *Field) storeDataType(value any) (string, error) {
	if f.dataType != "" {
		return f.dataType, nil
	}
	var typ graph.SocketType
	if s, ok := value.(Socket); ok && s.socket() != nil {
		typ = s.socket().typ
	} else if t, ok := graph.LiteralType(value); ok {
		typ = t
	}
	dt, ok := catalog.DataTypeFor(typ)
	if !ok {
		return "", fmt.Errorf("attribute %s: cannot store %T values", f.attr, value)
	}
	return dt, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Position is the point position (read/write, all domains).
func (g *Geometry) Position() *Field { return g.field("position", nil) }

// Radius is the point or curve radius.
func (g *Geometry) Radius() *Field { return g.field("radius", nil) }

// ShadeSmooth is the smooth shading flag of edges or faces.
func (g *Geometry) ShadeSmooth() *Field { return g.field("shade_smooth", nil) }

// MaterialIndex is the material slot index, faces by default.
func (g *Geometry) MaterialIndex() *Field { return g.field("material_index", nil) }

// Attribute is a named attribute. An empty dataType is inferred from the
// written value, and reads default to FLOAT.
func (g *Geometry) Attribute(name, dataType string) *Field {
	f := g.field("attribute", nil)
	f.attr, f.dataType = name, dataType
	return f
}

// ID is the stable element id. Read only.
func (g *Geometry) ID() *Field { return g.field("id", nil) }

// Index is the element index. Read only.
func (g *Geometry) Index() *Field { return g.field("index", nil) }

// Normal is the element normal. Read only.
func (g *Geometry) Normal() *Field { return g.field("normal", nil) }

// Neighbors gives vertex, edge or face neighbor counts.
func (g *Geometry) Neighbors() *Field { return g.field("neighbors", nil) }

// Area is the face area.
func (g *Geometry) Area() *Field { return g.field("area", nil) }

// IsPlanar tests faces for flatness within threshold (nil leaves the
// host default). Every read creates a node.
func (g *Geometry) IsPlanar(threshold any) *Field {
	return g.field("is_planar", map[string]any{"Threshold": threshold})
}

// Island is the mesh island index.
func (g *Geometry) Island() *Field { return g.field("island", nil) }

// MaterialSelection is true on faces using material. Every read creates a
// node.
func (g *Geometry) MaterialSelection(material any) *Field {
	return g.field("material_selection", map[string]any{"Material": material})
}

// Angle is the unsigned edge angle.
func (g *Geometry) Angle() *Field { return g.field("angle", nil) }

// EdgeVertices gives the vertex indices and positions of each edge.
func (g *Geometry) EdgeVertices() *Field { return g.field("edge_vertices", nil) }

// Tangent is the curve tangent.
func (g *Geometry) Tangent() *Field { return g.field("tangent", nil) }

// SplineLength is the length of each spline.
func (g *Geometry) SplineLength() *Field { return g.field("spline_length", nil) }

// SplineParameter is the factor along each spline.
func (g *Geometry) SplineParameter() *Field { return g.field("spline_parameter", nil) }

// Tilt is the curve tilt.
func (g *Geometry) Tilt() *Field { return g.field("tilt", nil) }

// Cyclic is the spline cyclic flag.
func (g *Geometry) Cyclic() *Field { return g.field("cyclic", nil) }

// Resolution is the spline resolution.
func (g *Geometry) Resolution() *Field { return g.field("resolution", nil) }

// EndpointSelection is true on the first start and last end points of each
// spline. Every read creates a node.
func (g *Geometry) EndpointSelection(start, end any) *Field {
	return g.field("endpoint_selection", map[string]any{"Start Size": start, "End Size": end})
}
