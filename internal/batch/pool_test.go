package batch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tanobar/minesweeper-prj/pkg/mines"
)

func emptyBoard(rows, cols int) mines.Knowledge {
	k := mines.NewKnowledge(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			k = k.Set(mines.Position{Row: r, Col: c}, mines.Cell{Kind: mines.Unknown})
		}
	}
	return k
}

func TestPoolRunsEveryJob(t *testing.T) {
	jobs := make([]Job, 0, 8)
	for i := 0; i < 8; i++ {
		jobs = append(jobs, Job{
			ID:     fmt.Sprintf("board-%d", i),
			Board:  emptyBoard(3, 3),
			Config: mines.DefaultRiskConfig(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	results, err := RunAll(ctx, 4, jobs)
	if err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for i, res := range results {
		if res.ID != jobs[i].ID {
			t.Errorf("result %d: expected ID %q, got %q (order not preserved)", i, jobs[i].ID, res.ID)
		}
		if res.Err != nil {
			t.Errorf("job %s: unexpected error: %v", res.ID, res.Err)
		}
		if res.Action.Kind != mines.ActionReveal {
			t.Errorf("job %s: expected a Reveal action on an empty board, got %v", res.ID, res.Action.Kind)
		}
	}
}

func TestPoolSubmitAfterShutdown(t *testing.T) {
	p := NewPool(2)
	p.Shutdown()

	ctx := context.Background()
	err := p.Submit(ctx, Job{ID: "late", Board: emptyBoard(2, 2), Config: mines.DefaultRiskConfig()})
	if err != ErrPoolClosed {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPoolWorkersDefaultsOnNonPositive(t *testing.T) {
	p := NewPool(0)
	defer p.Shutdown()
	if p.Workers() <= 0 {
		t.Fatalf("expected a positive default worker count, got %d", p.Workers())
	}
}

func TestPoolSubmitRespectsContextCancellation(t *testing.T) {
	// No workers running to drain the channel, so once it is full the
	// only way Submit can return is via ctx.Done().
	p := &Pool{jobChan: make(chan Job, 1), shutdown: make(chan struct{})}
	p.jobChan <- Job{ID: "filler"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Submit(ctx, Job{ID: "cancelled", Board: emptyBoard(2, 2), Config: mines.DefaultRiskConfig()})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
