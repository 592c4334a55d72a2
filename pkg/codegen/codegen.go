// Package codegen generates typed Go wrappers, one function per node kind,
// from a node catalog.
package codegen

import (
	"fmt"
	"go/token"
	"io"
	"strings"
	"unicode"

	"github.com/chazu/geonodes/pkg/catalog"
	"github.com/chazu/geonodes/pkg/graph"
	"github.com/dave/jennifer/jen"
)

const treePkg = "github.com/chazu/geonodes/pkg/tree"

// predeclared identifiers are kept free so generated code can still name
// its types and builtins.
var predeclared = map[string]bool{
	"any": true, "bool": true, "byte": true, "error": true, "false": true,
	"float64": true, "int": true, "nil": true, "rune": true, "string": true,
	"true": true, "len": true, "make": true, "new": true, "append": true,
	"min": true, "max": true, "clear": true, "close": true, "copy": true,
}

// pairedKinds are created through the group interface or as a zone, never
// as a single node.
var pairedKinds = map[string]bool{
	"Group Input":       true,
	"Group Output":      true,
	"Simulation Input":  true,
	"Simulation Output": true,
}

// Options controls code generation.
type Options struct {
	// Package is the package clause of the generated file. Default "nodes".
	Package string
	// Trees restricts output to kinds available in any of these tree
	// kinds. Empty means every kind.
	Trees []graph.TreeKind
}

// Result is the generated file plus the kinds it covers.
type Result struct {
	File  *jen.File
	Kinds []string
}

// Render writes the generated source to w.
func (r *Result) Render(w io.Writer) error {
	return r.File.Render(w)
}

// Generate builds the wrapper file for every kind in c.
func Generate(c *catalog.Catalog, opts Options) (*Result, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = "nodes"
	}
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by geonodes gen. DO NOT EDIT.")
	f.PackageComment(fmt.Sprintf("Package %s wraps each node kind in a typed constructor.", pkg))

	res := &Result{File: f}
	funcs := make(map[string]string)
	for _, k := range c.Kinds() {
		if pairedKinds[k.Name] || !inTrees(k, opts.Trees) {
			continue
		}
		name := exportedName(k.Name)
		if prev, dup := funcs[name]; dup {
			return nil, fmt.Errorf("codegen: kinds %q and %q both map to %s", prev, k.Name, name)
		}
		funcs[name] = k.Name
		generateKind(f, name, k)
		res.Kinds = append(res.Kinds, k.Name)
	}
	return res, nil
}

func inTrees(k *catalog.Kind, trees []graph.TreeKind) bool {
	if len(trees) == 0 {
		return true
	}
	for _, t := range trees {
		if k.InTree(t) {
			return true
		}
	}
	return false
}

// generateKind emits
//
//	func SetPosition(t *tree.Tree, geometry, selection, position, offset any) (*tree.Node, error)
//
// Inputs come first as any (a socket, a literal, a tree.Many for multi
// inputs, or nil to leave unset), then params as strings where "" keeps the
// catalog default.
func generateKind(f *jen.File, name string, k *catalog.Kind) {
	used := map[string]bool{"t": true, "inputs": true, "params": true}

	var params []jen.Code
	params = append(params, jen.Id("t").Op("*").Qual(treePkg, "Tree"))

	inputDict := jen.Dict{}
	var inputIDs []jen.Code
	for _, s := range k.Inputs {
		id := localName(s.Name, used)
		inputIDs = append(inputIDs, jen.Id(id))
		inputDict[jen.Lit(s.Name)] = jen.Id(id)
	}
	if len(inputIDs) > 0 {
		params = append(params, jen.List(inputIDs...).Any())
	}

	var paramIDs []jen.Code
	var setParams []jen.Code
	for _, p := range k.Params {
		id := localName(p.Name, used)
		paramIDs = append(paramIDs, jen.Id(id))
		setParams = append(setParams,
			jen.If(jen.Id(id).Op("!=").Lit("")).Block(
				jen.Id("params").Index(jen.Lit(p.Name)).Op("=").Id(id),
			))
	}
	if len(paramIDs) > 0 {
		params = append(params, jen.List(paramIDs...).String())
	}

	var body []jen.Code
	inputsArg := jen.Nil()
	if len(k.Inputs) > 0 {
		body = append(body, jen.Id("inputs").Op(":=").Map(jen.String()).Any().Values(inputDict))
		inputsArg = jen.Id("inputs")
	}
	paramsArg := jen.Nil()
	if len(k.Params) > 0 {
		body = append(body, jen.Id("params").Op(":=").Map(jen.String()).Any().Values())
		body = append(body, setParams...)
		paramsArg = jen.Id("params")
	}
	body = append(body, jen.Return(jen.Id("t").Dot("Node").Call(jen.Lit(k.Name), inputsArg, paramsArg)))

	for _, line := range doc(name, k) {
		f.Comment(line)
	}
	f.Func().Id(name).Params(params...).Params(
		jen.Op("*").Qual(treePkg, "Node"),
		jen.Error(),
	).Block(body...)
	f.Line()
}

// doc returns the doc comment lines. jennifer turns a multi-line Comment
// into a block comment, so each line is emitted on its own.
func doc(name string, k *catalog.Kind) []string {
	lines := []string{fmt.Sprintf("%s creates a %s node (%s).", name, k.Name, k.ID)}
	for _, p := range k.Params {
		if p.Enum() {
			lines = append(lines, fmt.Sprintf("%s: %s.", p.Name, strings.Join(p.Values, ", ")))
		}
	}
	if len(k.Outputs) > 0 {
		outs := make([]string, len(k.Outputs))
		for i, o := range k.Outputs {
			outs[i] = o.Name
		}
		lines = append(lines, fmt.Sprintf("Outputs: %s.", strings.Join(outs, ", ")))
	}
	return lines
}

// exportedName turns "Set Position" into SetPosition and "Value_001" into
// Value001.
func exportedName(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if b.Len() == 0 && unicode.IsDigit(r) {
				b.WriteRune('N')
			}
			if upper {
				r = unicode.ToUpper(r)
			}
			b.WriteRune(r)
			upper = false
		default:
			upper = true
		}
	}
	return b.String()
}

// localName returns a unique unexported identifier for a socket or param.
func localName(s string, used map[string]bool) string {
	exp := exportedName(s)
	if exp == "" {
		exp = "Arg"
	}
	runes := []rune(exp)
	id := string(unicode.ToLower(runes[0])) + string(runes[1:])
	if token.IsKeyword(id) || predeclared[id] {
		id += "_"
	}
	base := id
	for i := 2; used[id]; i++ {
		id = fmt.Sprintf("%s%d", base, i)
	}
	used[id] = true
	return id
}
