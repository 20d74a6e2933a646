// Package loader loads images and glTF assets off the frame goroutine. Results are never applied to the scene graph
// from the loading goroutine; they're handed to a Queue and applied when the frame loop calls Queue.Drain.
package loader

import (
	"context"
	"sync"
	"sync/atomic"
)

// Queue collects completions from loading goroutines and runs them on the goroutine that calls Drain.
type Queue struct {
	mu        sync.Mutex
	completed []func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	inFlight atomic.Int64
	closed   atomic.Bool
}

// NewQueue returns a new, empty Queue.
func NewQueue() *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the Queue's context, which is cancelled when the Queue is closed.
func (q *Queue) Context() context.Context {
	return q.ctx
}

// InFlight returns the number of loads that have been started but whose completions haven't been drained yet.
func (q *Queue) InFlight() int {
	return int(q.inFlight.Load())
}

func (q *Queue) post(fn func()) {
	q.mu.Lock()
	q.completed = append(q.completed, fn)
	q.mu.Unlock()
}

// Drain runs every completion posted since the last call, in the order they were posted, and returns how many ran.
// Drain must be called from the frame goroutine, between frames.
func (q *Queue) Drain() int {

	q.mu.Lock()
	completed := q.completed
	q.completed = nil
	q.mu.Unlock()

	for _, fn := range completed {
		fn()
	}

	return len(completed)

}

// Close cancels all in-flight loads and waits for their goroutines to exit. Completions that haven't been drained
// are discarded.
func (q *Queue) Close() {

	if !q.closed.CompareAndSwap(false, true) {
		return
	}

	q.cancel()
	q.wg.Wait()

	q.mu.Lock()
	q.completed = nil
	q.mu.Unlock()

	q.inFlight.Store(0)

}

// Pending is the handle of one asynchronous load.
type Pending[T any] struct {
	done      chan struct{}
	result    T
	err       error
	cancelled atomic.Bool
}

// Done returns a channel closed once the load has finished, successfully or not.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Result returns the load's result. It is only meaningful after Done is closed.
func (p *Pending[T]) Result() (T, error) {
	return p.result, p.err
}

// Cancel stops the load's completion from running. The loading goroutine itself may still finish.
func (p *Pending[T]) Cancel() {
	p.cancelled.Store(true)
}

// Cancelled returns true if Cancel was called.
func (p *Pending[T]) Cancelled() bool {
	return p.cancelled.Load()
}

// Go runs load on a new goroutine. When it returns, complete is posted to the Queue and runs on the next Drain,
// unless the Pending handle was cancelled or the Queue closed first. complete may be nil.
func Go[T any](q *Queue, load func(ctx context.Context) (T, error), complete func(T, error)) *Pending[T] {

	p := &Pending[T]{done: make(chan struct{})}

	if q.closed.Load() {
		p.err = context.Canceled
		close(p.done)
		return p
	}

	q.inFlight.Add(1)
	q.wg.Add(1)

	go func() {

		defer q.wg.Done()

		result, err := load(q.ctx)
		p.result, p.err = result, err

		// Posted before Done closes so a Drain after Done always sees it
		if q.ctx.Err() != nil {
			q.inFlight.Add(-1)
		} else {
			q.post(func() {
				q.inFlight.Add(-1)
				if complete != nil && !p.cancelled.Load() {
					complete(result, err)
				}
			})
		}

		close(p.done)

	}()

	return p

}
