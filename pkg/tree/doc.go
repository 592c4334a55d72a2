// Package tree builds node trees by evaluating expressions.
//
// Every operation is eager: it creates nodes and links in the host graph
// immediately and returns a Port wrapping the new output. There is no
// separate compile step.
//
// A Geometry port carries two one-shot modifiers that apply to the next
// field access only: a selection, attached with Select, and a domain,
// attached with Point, Face and the other domain methods.
//
//	geo.Select(3).Position().Set(v3.Vec{Z: 1})
//
// That one statement creates an Index node, an "index == 3" Compare node and
// a Set Position node wired to both. It then redirects geo to the Set
// Position output, so the next write chains after this one.
package tree
