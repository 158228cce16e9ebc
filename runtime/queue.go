// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 THL A29 Limited, a Tencent company.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

// Package runtime implements the task-stream coordination core: the event
// queue, task store, builders, execution context, task stream, stream
// consumer/manager, and dispatcher that sit between the transport layer and
// an agent executor.
package runtime

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize bounds an EventQueue when no explicit size is given.
const DefaultQueueSize = 256

// endOfStream is the sentinel enqueued once a Task Stream terminates. It is
// never surfaced to protocol clients.
type endOfStream struct{}

// EndOfStream is the queue value that signals a Stream Consumer to exit.
var EndOfStream = endOfStream{}

// EventQueue is an ordered, multi-producer/single-consumer FIFO. In this
// runtime there is exactly one producer per task, so FIFO is total: the
// elements are protocol.StreamingMessageResult values or EndOfStream.
type EventQueue struct {
	events    chan interface{}
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewEventQueue creates an EventQueue with the given capacity. A size of 0
// selects DefaultQueueSize.
func NewEventQueue(size int) *EventQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &EventQueue{
		events: make(chan interface{}, size),
		done:   make(chan struct{}),
	}
}

// Enqueue adds an event to the queue. It never blocks: a full queue drops
// the event rather than back-pressuring the producer, and an enqueue on a
// closed queue is silently dropped. Producers observe closure only through
// external signals, never through an enqueue error.
func (q *EventQueue) Enqueue(event interface{}) {
	if q.closed.Load() {
		return
	}
	select {
	case q.events <- event:
	default:
	}
}

// Dequeue blocks until an event arrives, the queue closes, or ctx is
// canceled. ok is false when the queue closed (or ctx ended) before an
// event arrived; any event already buffered at close time is still
// delivered first.
func (q *EventQueue) Dequeue(ctx context.Context) (event interface{}, ok bool) {
	select {
	case ev := <-q.events:
		return ev, true
	case <-ctx.Done():
		return nil, false
	case <-q.done:
		select {
		case ev := <-q.events:
			return ev, true
		default:
			return nil, false
		}
	}
}

// Close is idempotent. Future Enqueue calls are dropped and any blocked
// Dequeue resolves with ok == false once its buffer is drained.
func (q *EventQueue) Close() {
	q.closeOnce.Do(func() {
		q.closed.Store(true)
		close(q.done)
	})
}

// IsClosed reports whether Close has been called.
func (q *EventQueue) IsClosed() bool {
	return q.closed.Load()
}

// Size reports the number of events currently buffered.
func (q *EventQueue) Size() int {
	return len(q.events)
}
