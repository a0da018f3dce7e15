package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/medfactors/internal/model"
)

// gatedEvaluator records how many evaluations overlap. When gate is set
// every evaluation blocks until it is closed.
type gatedEvaluator struct {
	mu      sync.Mutex
	active  int
	peak    int
	done    int
	gate    chan struct{}
	entered chan struct{}
	hold    time.Duration
}

func (g *gatedEvaluator) Evaluate(emp model.Employee) model.ResolutionResult {
	g.mu.Lock()
	g.active++
	if g.active > g.peak {
		g.peak = g.active
	}
	g.mu.Unlock()

	if g.entered != nil {
		select {
		case g.entered <- struct{}{}:
		default:
		}
	}
	if g.gate != nil {
		<-g.gate
	}
	time.Sleep(g.hold)

	g.mu.Lock()
	g.active--
	g.done++
	g.mu.Unlock()
	return model.ResolutionResult{Employee: emp, Method: "none"}
}

func (g *gatedEvaluator) stats() (peak, done int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.peak, g.done
}

// failingJob yields an error result without touching an evaluator
type failingJob struct{ index int }

func (j failingJob) Execute(context.Context) Result {
	return &EvaluateResult{Index: j.index, Error: errors.New("roster entry rejected")}
}

func TestNewPoolClampsWorkers(t *testing.T) {
	ctx := context.Background()
	for in, want := range map[int]int{6: 6, 0: 1, -3: 1} {
		assert.Equal(t, want, NewPool(ctx, in).workers, "workers=%d", in)
	}
}

func TestPoolEvaluatesEverySubmittedEmployee(t *testing.T) {
	eval := &gatedEvaluator{}
	pool := NewPool(context.Background(), 3)
	pool.Start()

	for i, emp := range roster(12) {
		require.True(t, pool.Submit(&EvaluateJob{Index: i, Employee: emp, Evaluator: eval}))
	}

	results := pool.Wait()
	require.Len(t, results, 12)

	seen := make(map[int]bool)
	for _, r := range results {
		er, ok := r.(*EvaluateResult)
		require.True(t, ok)
		require.NoError(t, er.GetError())
		require.NotNil(t, er.Result)
		assert.Equal(t, er.Employee.Name, er.Result.Employee.Name)
		seen[er.Index] = true
	}
	assert.Len(t, seen, 12)
	_, done := eval.stats()
	assert.Equal(t, 12, done)
}

func TestPoolSubmitNeverWaitsOnUnreadResults(t *testing.T) {
	eval := &gatedEvaluator{}
	pool := NewPool(context.Background(), 2)
	pool.Start()

	// The queue and result buffers together hold far fewer than this.
	staff := roster(300)
	for i, emp := range staff {
		pool.Submit(&EvaluateJob{Index: i, Employee: emp, Evaluator: eval})
	}
	assert.Len(t, pool.Wait(), len(staff))
}

func TestPoolBoundsConcurrentEvaluations(t *testing.T) {
	const workers = 4
	eval := &gatedEvaluator{hold: 5 * time.Millisecond}
	pool := NewPool(context.Background(), workers)
	pool.Start()

	for i, emp := range roster(40) {
		pool.Submit(&EvaluateJob{Index: i, Employee: emp, Evaluator: eval})
	}
	pool.Wait()

	peak, done := eval.stats()
	assert.Equal(t, 40, done)
	assert.LessOrEqual(t, peak, workers)
	assert.GreaterOrEqual(t, peak, 1)
}

func TestPoolKeepsFailedEntries(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(failingJob{index: 0})
	pool.Submit(&EvaluateJob{Index: 1, Employee: roster(1)[0], Evaluator: &gatedEvaluator{}})

	results := pool.Wait()
	require.Len(t, results, 2)

	var failed []int
	for _, r := range results {
		if r.GetError() != nil {
			failed = append(failed, r.(*EvaluateResult).Index)
		}
	}
	assert.Equal(t, []int{0}, failed)
}

func TestPoolRejectsSubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	accepted := make(chan bool, 1)
	go func() {
		accepted <- pool.Submit(failingJob{})
	}()

	select {
	case ok := <-accepted:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("submit blocked on a stopped pool")
	}
}

func TestPoolShutdownReturnsWhileEvaluationRuns(t *testing.T) {
	eval := &gatedEvaluator{
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	pool := NewPool(context.Background(), 1)
	pool.Start()
	pool.Submit(&EvaluateJob{Employee: roster(1)[0], Evaluator: eval})
	<-eval.entered

	stopped := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(stopped)
	}()

	// The in-flight evaluation must finish before workers exit.
	close(eval.gate)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("shutdown did not return")
	}
}

func TestPoolShutdownWithoutStart(t *testing.T) {
	assert.NotPanics(t, NewPool(context.Background(), 1).Shutdown)
}

func TestPoolStopsWithParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()
	cancel()

	assert.Eventually(t, func() bool {
		return !pool.Submit(failingJob{})
	}, time.Second, 5*time.Millisecond)
	pool.Wait()
}
