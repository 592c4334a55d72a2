// Package engine evaluates geonodes scripts. It wraps zygomys in a sandboxed
// environment whose builtins drive pkg/tree, and returns the host graphs the
// script built.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/geonodes/internal/logging"
	"github.com/chazu/geonodes/pkg/catalog"
	"github.com/chazu/geonodes/pkg/graph"
	"github.com/chazu/geonodes/pkg/host"
	"github.com/chazu/geonodes/pkg/tree"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a failed builtin.
type EvalError struct {
	Line    int
	Col     int
	Message string
	// Err is the typed error returned by the failing builtin, if any.
	Err error
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func (e EvalError) Unwrap() error { return e.Err }

// Built is one tree produced by a script together with its host graph.
type Built struct {
	Tree *tree.Tree
	Host *host.Memory
}

// Snapshot returns a serializable view of the host graph.
func (b *Built) Snapshot() host.Snapshot {
	s := b.Host.Snapshot()
	s.ID = b.Tree.ID.String()
	return s
}

// Validate runs the host graph checks.
func (b *Built) Validate() host.ValidationResult {
	return host.ValidateAll(b.Host)
}

// Output is everything one evaluation built. The first tree is the implicit
// "main" geometry tree.
type Output struct {
	Trees []*Built
}

// Main returns the implicit main tree.
func (o *Output) Main() *Built {
	if len(o.Trees) == 0 {
		return nil
	}
	return o.Trees[0]
}

// Find returns the tree called name, or nil.
func (o *Output) Find(name string) *Built {
	for _, b := range o.Trees {
		if b.Tree.Name == name {
			return b
		}
	}
	return nil
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment and fresh host graphs.
type Engine struct {
	gens generations

	catalog   *catalog.Catalog
	resources graph.Resources
	encoding  tree.RangeEncoding
	timeout   time.Duration
	log       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog sets the node kind catalog. The default is catalog.Default().
func WithCatalog(c *catalog.Catalog) Option { return func(e *Engine) { e.catalog = c } }

// WithResources sets the library that resource names resolve against.
func WithResources(r graph.Resources) Option { return func(e *Engine) { e.resources = r } }

// WithRangeEncoding sets how index ranges become predicates.
func WithRangeEncoding(enc tree.RangeEncoding) Option {
	return func(e *Engine) { e.encoding = enc }
}

// WithTimeout overrides EvalTimeout.
func WithTimeout(d time.Duration) Option { return func(e *Engine) { e.timeout = d } }

// WithLogger sets the logger for evaluation and node events.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		catalog:   catalog.Default(),
		resources: graph.NewLibrary(),
		encoding:  tree.RangeAnd,
		timeout:   EvalTimeout,
		log:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs source and returns the trees it built.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns output + nil errors + nil error
//   - On parse/eval failure: returns nil output + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Output, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate that also gives up when ctx is done.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*Output, []EvalError, error) {
	gen := e.gens.next()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		out, evalErrs, err := e.evaluate(source)
		ch <- evalResult{output: out, errors: evalErrs, err: err}
	}()

	return e.gens.await(ctx, ch, gen, e.timeout)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Output, []EvalError, error) {
	s := newSession(e)
	s.open("main", graph.TreeGeometry)
	defer s.stack.Unwind(0)

	// Empty source is a valid program that produces an empty main tree.
	if strings.TrimSpace(source) == "" {
		return s.out, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, s)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, s.evalErrors(err), nil
	}
	if _, err := env.Run(); err != nil {
		evalErrs := s.evalErrors(err)
		e.log.Debug("evaluation failed", "error", evalErrs[0].Message, "line", evalErrs[0].Line)
		return nil, evalErrs, nil
	}

	if d := s.stack.Depth(); d > 1 {
		cur, _ := s.stack.Current()
		return nil, []EvalError{{Message: fmt.Sprintf("tree %q is still open; close it with (end-tree)", cur.Name)}}, nil
	}

	if sim := s.openSimulation(); sim != nil {
		return nil, []EvalError{{Message: fmt.Sprintf("simulation %s is still open; close it with (end-simulation)", sim.Input().ID())}}, nil
	}

	nodes := 0
	for _, b := range s.out.Trees {
		nodes += b.Host.NodeCount()
	}
	e.log.Info("evaluation finished", "trees", len(s.out.Trees), "nodes", nodes)
	return s.out, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
