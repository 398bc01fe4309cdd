// Package workpool provides a fixed-size goroutine pool for per-element
// batch work.
package workpool

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("workpool: closed")

// Pool runs submitted closures on a fixed set of goroutines.
type Pool struct {
	size     int
	workCh   chan func()
	stopCh   chan struct{}
	wg       sync.WaitGroup
	closed   atomic.Bool
	submitMu sync.RWMutex
}

// New starts a pool with size workers. size <= 0 selects GOMAXPROCS.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		size:   size,
		workCh: make(chan func(), size*2),
		stopCh: make(chan struct{}),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			// Drain whatever was queued before Close.
			for {
				select {
				case fn, ok := <-p.workCh:
					if !ok {
						return
					}
					fn()
				default:
					return
				}
			}
		case fn, ok := <-p.workCh:
			if !ok {
				return
			}
			fn()
		}
	}
}

// Submit enqueues task, blocking while the queue is full.
//
// It returns ErrClosed once the pool is closed and ctx.Err() if ctx ends
// before the task is queued.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.submitMu.RLock()
	defer p.submitMu.RUnlock()

	if p.closed.Load() {
		return ErrClosed
	}

	select {
	case p.workCh <- task:
		return nil
	case <-p.stopCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, runs what is already queued and waits for
// the workers to exit. Safe to call more than once.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	p.submitMu.Lock()
	close(p.stopCh)
	close(p.workCh)
	p.submitMu.Unlock()

	p.wg.Wait()
}
