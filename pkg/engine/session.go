package engine

import (
	"github.com/chazu/geonodes/pkg/graph"
	"github.com/chazu/geonodes/pkg/host"
	"github.com/chazu/geonodes/pkg/tree"
)

// session is the state of one evaluation: the tree stack and every tree
// opened so far.
type session struct {
	e     *Engine
	stack *tree.Stack
	out   *Output
	sims  []*tree.Simulation
	// err is the last error a builtin returned. zygomys flattens errors to
	// strings, so it is kept here for EvalError.Err.
	err error
}

func newSession(e *Engine) *session {
	return &session{e: e, stack: tree.NewStack(), out: &Output{}}
}

// open creates a tree with a fresh host graph and makes it current.
func (s *session) open(name string, kind graph.TreeKind) *tree.Tree {
	m := host.New(name,
		host.WithKind(kind),
		host.WithCatalog(s.e.catalog),
		host.WithLogger(s.e.log))
	t := tree.New(name, m,
		tree.WithKind(kind),
		tree.WithResources(s.e.resources),
		tree.WithRangeEncoding(s.e.encoding),
		tree.WithLogger(s.e.log))
	s.out.Trees = append(s.out.Trees, &Built{Tree: t, Host: m})
	s.stack.Push(t)
	s.e.log.Debug("tree opened", "tree", name, "kind", kind.String(), "depth", s.stack.Depth())
	return t
}

// current returns the tree builtins create nodes in.
func (s *session) current() (*tree.Tree, error) {
	return s.stack.Current()
}

// openSimulation returns the most recently opened zone that is not closed.
func (s *session) openSimulation() *tree.Simulation {
	for i := len(s.sims) - 1; i >= 0; i-- {
		if !s.sims[i].Closed() {
			return s.sims[i]
		}
	}
	return nil
}

func (s *session) evalErrors(err error) []EvalError {
	errs := parseZygomysError(err)
	if s.err != nil {
		errs[0].Err = s.err
	}
	return errs
}
