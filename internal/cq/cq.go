// Package cq provides the unbounded concurrent queues that carry
// protocol events and posted payloads to the loop goroutine.
package cq

import (
	"sync"

	"deedles.dev/xsync/cq"
)

// Flush runs every function in queue in order, collecting the errors
// that they return.
func Flush(queue []func() error) (errs []error) {
	for _, ev := range queue {
		err := ev()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Queue is an unbounded FIFO queue. Values are added one at a time and
// retrieved in batches of everything that has accumulated since the
// last retrieval.
type Queue[T any] struct {
	bulk *cq.BulkQueue[T, []T]

	done chan struct{}
	stop sync.Once
}

func New[T any]() *Queue[T] {
	return &Queue[T]{
		bulk: cq.New(func(v []T) []T { return v }),
		done: make(chan struct{}),
	}
}

// Stop stops the queue. Values that have not been retrieved are
// discarded.
func (q *Queue[T]) Stop() {
	q.stop.Do(func() {
		close(q.done)
		q.bulk.Stop()
	})
}

// Done returns a channel that is closed when the queue is stopped.
func (q *Queue[T]) Done() <-chan struct{} {
	return q.done
}

// Push adds v to the queue. It returns false if the queue has been
// stopped.
func (q *Queue[T]) Push(v T) bool {
	select {
	case <-q.done:
		return false
	default:
	}

	select {
	case <-q.done:
		return false
	case q.bulk.Add() <- v:
		return true
	}
}

// Get returns a channel that yields everything queued since the last
// receive. It only becomes ready when at least one value is queued.
func (q *Queue[T]) Get() <-chan []T {
	return q.bulk.Get()
}
