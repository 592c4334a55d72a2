// Package graph defines the boundary between geonodes and a host node graph.
//
// The host owns nodes, sockets and links. geonodes only sees them through
// the Handle interface and the small value types in this package: socket
// types, entity domains, output/input references and node handles. A failure
// reported by the host is always a *HostGraphError and is propagated to the
// caller unchanged.
package graph
