package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation runs past its limit.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned when a newer evaluation started on the same
	// engine before this one finished.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type evalResult struct {
	output *Output
	errors []EvalError
	err    error
}

// generations numbers evaluations so a late result from an abandoned run is
// never handed back.
type generations struct {
	mu  sync.Mutex
	cur uint64
}

func (g *generations) next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cur++
	return g.cur
}

func (g *generations) current() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cur
}

// await blocks until ch delivers, the timeout fires or ctx is done. The
// evaluating goroutine keeps running after a timeout; its result is dropped
// because its generation is stale by then.
func (g *generations) await(ctx context.Context, ch <-chan evalResult, gen uint64, timeout time.Duration) (*Output, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if gen != g.current() {
			return nil, nil, ErrSuperseded
		}
		return res.output, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}
