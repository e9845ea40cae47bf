// Package workerpool provides a bounded goroutine pool with backpressure.
// The image checker uses it to probe a whole catalogue without opening one
// connection per product.
//
//	pool := workerpool.New(config.ImageWorkers())
//	defer pool.Shutdown()
//
//	if err := pool.SubmitCtx(ctx, probe); err != nil {
//	    // ctx cancelled or pool closed
//	}
package workerpool

import (
	"context"
	"errors"
	"sync"

	"github.com/shashiranjanraj/bloomthread/pkg/logger"
)

// ErrPoolClosed is returned once Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	size    int
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closeCh chan struct{}
}

// New starts size workers. The queue holds 2×size tasks.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		size:    size,
		tasks:   make(chan func(), size*2),
		closeCh: make(chan struct{}),
	}
	for range size {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Size is the number of workers.
func (p *Pool) Size() int { return p.size }

// SubmitCtx blocks until the task is queued, ctx is done or the pool is
// closed.
func (p *Pool) SubmitCtx(ctx context.Context, task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.tasks <- task:
		return nil
	}
}

// Shutdown stops accepting tasks, runs what is already queued and waits
// for the workers to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closeCh)
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			safeRun(task)
		case <-p.closeCh:
			for {
				select {
				case task := <-p.tasks:
					safeRun(task)
				default:
					return
				}
			}
		}
	}
}

// safeRun keeps a panicking task from killing its worker.
func safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", r)
		}
	}()
	task()
}
