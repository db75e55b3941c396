// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package queue implements the bounded FIFO used between pipeline
// stages: blocking Push when full, blocking Pop when empty, and a
// single Close that drains remaining items before reporting closed.
package queue

import (
	"context"
	"errors"
)

// ErrClosed is returned by Pop once the queue has been closed and
// fully drained. It is a clean end-of-stream signal, not a failure.
var ErrClosed = errors.New("queue: closed")

// Queue is a bounded FIFO of interface{} items, safe for one producer
// and one consumer (or many of either) to share.
type Queue struct {
	ch chan interface{}
}

// New creates a queue with the given fixed capacity.
func New(capacity int) *Queue {
	return &Queue{ch: make(chan interface{}, capacity)}
}

// Push enqueues item, blocking while the queue is full. It returns
// ctx.Err() if ctx is canceled first. Push must not be called after
// Close (it panics on the closed channel); the queue has exactly one
// producer, which closes it when done.
func (q *Queue) Push(ctx context.Context, item interface{}) error {
	select {
	case q.ch <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop dequeues the next item, blocking while the queue is empty. Once
// Close has been called and the queue drained, Pop returns ErrClosed.
func (q *Queue) Pop(ctx context.Context) (interface{}, error) {
	select {
	case item, ok := <-q.ch:
		if !ok {
			return nil, ErrClosed
		}
		return item, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close signals that no more items will be pushed. Items already
// buffered are still returned by Pop before it reports ErrClosed.
// Producers must call Close exactly once.
func (q *Queue) Close() {
	close(q.ch)
}
