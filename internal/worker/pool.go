package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job
type Result interface {
	GetError() error
}

// Pool executes jobs on a bounded set of workers
type Pool struct {
	workers   int
	queue     chan Job
	results   chan Result
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool with the given number of workers (minimum one)
func NewPool(workers int) *Pool {
	return NewPoolContext(context.Background(), workers)
}

// NewPoolContext creates a pool whose jobs are canceled when the parent
// context is, so a dropped transport request aborts in-flight annotation
func NewPoolContext(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(parent)
	return &Pool{
		workers: workers,
		queue:   make(chan Job, workers*2),
		results: make(chan Result, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit enqueues a job; it is dropped if the pool is shut down
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.queue <- job:
	}
}

// Close marks submission complete. The results channel closes once every
// in-flight job has finished.
func (p *Pool) Close() {
	close(p.queue)
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()
}

// Results exposes the completion-order result stream. Callers submitting
// more jobs than the pool's channel capacity must drain this concurrently
// with submission, otherwise workers stall on the full results channel.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Wait closes the queue, waits for all in-flight jobs, and returns every
// result in completion order. Safe only when all submissions already
// happened and fit the channel capacity; use Close with Results otherwise.
func (p *Pool) Wait() []Result {
	p.Close()

	var results []Result
	for result := range p.results {
		results = append(results, result)
	}
	return results
}

// Shutdown cancels outstanding work immediately
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
