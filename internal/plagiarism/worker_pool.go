package plagiarism

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

var ErrPoolClosed = errors.New("worker pool closed")

type Job interface {
	Execute(ctx context.Context) error
}

// WorkerPool runs Jobs on a fixed set of goroutines. It is shared by every
// analysis of the process, so one large request cannot spawn unbounded work.
type WorkerPool struct {
	workers int
	jobs    chan Job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// defaultPoolSize leaves a quarter of the cores to the rest of the process
func defaultPoolSize() int {
	cpus := runtime.NumCPU()
	return max(1, cpus-cpus/4)
}

// NewWorkerPool starts size workers; a non-positive size uses defaultPoolSize.
// Cancelling ctx stops the pool like Close does.
func NewWorkerPool(ctx context.Context, size int) *WorkerPool {
	if size <= 0 {
		size = defaultPoolSize()
	}
	poolCtx, cancel := context.WithCancel(ctx)

	p := &WorkerPool{
		workers: size,
		jobs:    make(chan Job, size*2),
		ctx:     poolCtx,
		cancel:  cancel,
	}

	p.wg.Add(size)
	for id := 0; id < size; id++ {
		go p.run(id)
	}

	log.Debug().Int("workers", size).Int("cpus", runtime.NumCPU()).Msg("Worker pool started")
	return p
}

func (p *WorkerPool) run(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			err := job.Execute(p.ctx)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				log.Error().Err(err).Int("worker", id).Msg("Job failed")
			}
		}
	}
}

// Submit queues a job, blocking while the queue is full
func (p *WorkerPool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

// Close stops the workers and waits for them. Queued jobs that have not
// started are dropped. Close may be called more than once.
func (p *WorkerPool) Close() {
	p.cancel()

	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *WorkerPool) Size() int {
	return p.workers
}
