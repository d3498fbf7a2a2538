package engine

import (
	"context"
	"sync"

	"github.com/ndavis/chesstutor/internal/logger"
)

// Pool manages a fixed set of reusable engine processes.
type Pool struct {
	path    string
	size    int
	engines chan *Engine
	mu      sync.Mutex
	closed  bool
	log     *logger.Logger
}

// NewPool starts size engine processes. Failing to start any of them tears
// the whole pool down.
func NewPool(path string, size int) (*Pool, error) {
	if size <= 0 {
		size = 2
	}
	log := logger.Default().WithPrefix("engine-pool")

	pool := &Pool{
		path:    path,
		size:    size,
		engines: make(chan *Engine, size),
		log:     log,
	}

	log.Info("starting %d engines", size)
	for i := 0; i < size; i++ {
		e, err := New(path)
		if err != nil {
			pool.Close()
			return nil, err
		}
		pool.engines <- e
	}
	log.Info("engine pool ready")
	return pool, nil
}

// Acquire takes an engine from the pool, blocking until one is free.
func (p *Pool) Acquire(ctx context.Context) (*Engine, error) {
	select {
	case e := <-p.engines:
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns an engine to the pool. Engines released after Close are
// shut down instead.
func (p *Pool) Release(e *Engine) {
	if e == nil {
		return
	}
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		e.Close()
		return
	}
	select {
	case p.engines <- e:
	default:
		e.Close()
	}
}

// AnalyzePosition runs AnalyzePosition on a pooled engine.
func (p *Pool) AnalyzePosition(ctx context.Context, fen string, depth, multipv int) ([]Line, error) {
	e, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(e)
	return e.AnalyzePosition(ctx, fen, depth, multipv)
}

// BestMove runs BestMove on a pooled engine.
func (p *Pool) BestMove(ctx context.Context, fen string, depth int) (string, error) {
	e, err := p.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer p.Release(e)
	return e.BestMove(ctx, fen, depth)
}

// EvaluateMove runs EvaluateMove on a pooled engine.
func (p *Pool) EvaluateMove(ctx context.Context, fen, moveUCI string, depth int) (MoveEvaluation, error) {
	e, err := p.Acquire(ctx)
	if err != nil {
		return MoveEvaluation{}, err
	}
	defer p.Release(e)
	return e.EvaluateMove(ctx, fen, moveUCI, depth)
}

// Close shuts down every engine in the pool.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	p.log.Info("closing engine pool")
	close(p.engines)
	for e := range p.engines {
		e.Close()
	}
}

// Available reports how many engines are currently idle.
func (p *Pool) Available() int {
	return len(p.engines)
}
