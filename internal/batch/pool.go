// Package batch provides a bounded worker pool for evaluating many
// independent boards concurrently. It is adapted from the teacher's
// StaticWorkerPool (internal/parallel/pool.go): a fixed-size goroutine
// pool pulling from a single buffered task channel, with no dynamic
// scaling. That simplification fits here for the same reason it fit
// there for single-shot goal batches: every board decision in
// pkg/mines is a pure, independent computation with no cross-task
// coordination, so the scale-up/scale-down/deadlock-detection
// machinery the teacher built for long-lived, unevenly-loaded goal
// search has nothing to react to.
//
// Each Job is completely independent: pkg/mines does no I/O and holds
// no shared mutable state (spec: "no global singletons"), so Jobs may
// run on any worker in any order and their Results may be collected in
// any order without synchronization beyond the channel itself.
package batch

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/tanobar/minesweeper-prj/pkg/mines"
)

// ErrPoolClosed is returned by Submit once the pool has been shut down.
var ErrPoolClosed = errors.New("batch: pool is closed")

// Job is one independent ChooseAction evaluation: a board, the mover's
// own move history, the mine positions already confirmed by the driver,
// an optional known total mine count, and the risk configuration to
// apply.
type Job struct {
	ID         string
	Ctx        context.Context
	Board      mines.Knowledge
	MovesMade  map[mines.Position]struct{}
	KnownMines map[mines.Position]struct{}
	TotalMines *int
	Config     mines.RiskConfig
	Observer   mines.Observer
}

// Result pairs a Job's ID with its outcome.
type Result struct {
	ID     string
	Action mines.Action
	Err    error
}

// Pool runs Jobs across a fixed number of workers.
type Pool struct {
	workers  int
	jobChan  chan Job
	outChan  chan Result
	wg       sync.WaitGroup
	once     sync.Once
	shutdown chan struct{}
}

// NewPool creates a Pool with the given number of workers. A
// non-positive count defaults to runtime.NumCPU(), mirroring the
// teacher's StaticWorkerPool default.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{
		workers:  workers,
		jobChan:  make(chan Job, workers*2),
		outChan:  make(chan Result, workers*2),
		shutdown: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobChan:
			if !ok {
				return
			}
			jobCtx := job.Ctx
			if jobCtx == nil {
				jobCtx = context.Background()
			}
			action, err := mines.ChooseAction(jobCtx, job.Board, job.MovesMade, job.KnownMines, job.TotalMines, job.Config, optionsFor(job)...)
			p.outChan <- Result{ID: job.ID, Action: action, Err: err}
		case <-p.shutdown:
			return
		}
	}
}

func optionsFor(job Job) []mines.Option {
	if job.Observer == nil {
		return nil
	}
	return []mines.Option{mines.WithTrace(job.Observer)}
}

// Submit enqueues a Job. It blocks until the queue has room, ctx is
// done, or the pool is closed.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	// Shutdown closes jobChan, so check for it before attempting the send.
	select {
	case <-p.shutdown:
		return ErrPoolClosed
	default:
	}
	select {
	case p.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.shutdown:
		return ErrPoolClosed
	}
}

// Results returns the channel Results are delivered on. A caller that
// submits N jobs should receive exactly N results, in arbitrary order.
func (p *Pool) Results() <-chan Result {
	return p.outChan
}

// Shutdown stops accepting new jobs, waits for in-flight workers to
// drain, and closes the results channel. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.shutdown)
		close(p.jobChan)
		p.wg.Wait()
		close(p.outChan)
	})
}

// Workers returns the fixed worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// RunAll is a convenience wrapper for the common case: submit every Job,
// collect every Result, then shut the pool down. The returned slice
// preserves the input order even though workers complete out of order.
func RunAll(ctx context.Context, workers int, jobs []Job) ([]Result, error) {
	p := NewPool(workers)
	defer p.Shutdown()

	index := make(map[string]int, len(jobs))
	for i, j := range jobs {
		index[j.ID] = i
	}

	go func() {
		for _, j := range jobs {
			if j.Ctx == nil {
				j.Ctx = ctx
			}
			if err := p.Submit(ctx, j); err != nil {
				return
			}
		}
	}()

	out := make([]Result, len(jobs))
	for i := 0; i < len(jobs); i++ {
		select {
		case res, ok := <-p.Results():
			if !ok {
				return out, ctx.Err()
			}
			if idx, found := index[res.ID]; found {
				out[idx] = res
			}
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}
	return out, nil
}
