// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 THL A29 Limited, a Tencent company.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package runtime

import (
	"context"
	"errors"
	"sync"
)

// tapperBufferSize bounds a late subscriber's backlog of unread events.
// A tapper that falls this far behind drops further events rather than
// blocking the Consumer's broadcast loop.
const tapperBufferSize = 64

// ErrConsumerExists is returned by Manager.CreateConsumer when a Stream
// Consumer is already registered for the task, enforcing the
// at-most-one-producer-per-task invariant.
var ErrConsumerExists = errors.New("runtime: stream consumer already exists for task")

// Consumer owns a task's event queue and fans each event out to the
// primary consumer plus any number of live tappers. It is created lazily
// and serves exactly one task.
type Consumer struct {
	queue *EventQueue

	mu        sync.Mutex
	tappers   map[chan interface{}]struct{}
	consuming bool
	finished  bool
}

func newConsumer(queue *EventQueue) *Consumer {
	return &Consumer{queue: queue, tappers: make(map[chan interface{}]struct{})}
}

// Consume starts the consume loop if it has not already started and
// returns a channel of events (the end-of-stream sentinel is never sent
// on it). The channel closes when the queue is exhausted, the sentinel is
// reached, or ctx is canceled. Once the loop has started or finished, a
// further call starts no second loop and returns an already-closed channel.
func (c *Consumer) Consume(ctx context.Context) <-chan interface{} {
	out := make(chan interface{}, tapperBufferSize)
	c.mu.Lock()
	if c.consuming || c.finished {
		c.mu.Unlock()
		close(out)
		return out
	}
	c.consuming = true
	c.mu.Unlock()

	go func() {
		defer close(out)
		for {
			event, ok := c.queue.Dequeue(ctx)
			if !ok {
				c.finish()
				return
			}
			if _, isEnd := event.(endOfStream); isEnd {
				c.finish()
				return
			}
			select {
			case out <- event:
			case <-ctx.Done():
				c.finish()
				return
			}
			c.broadcast(event)
		}
	}()
	return out
}

// Tap registers a late subscriber and returns a channel carrying events
// that arrive after this call; there is no replay of events already
// consumed. The channel closes when the Consumer finishes.
func (c *Consumer) Tap() <-chan interface{} {
	ch := make(chan interface{}, tapperBufferSize)
	c.mu.Lock()
	if c.finished {
		c.mu.Unlock()
		close(ch)
		return ch
	}
	c.tappers[ch] = struct{}{}
	c.mu.Unlock()
	return ch
}

// Untap removes a tapper registered via Tap, e.g. when its reader gives up
// early. It is safe to call after the Consumer has already finished.
func (c *Consumer) Untap(ch <-chan interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for tapCh := range c.tappers {
		if (<-chan interface{})(tapCh) == ch {
			delete(c.tappers, tapCh)
			return
		}
	}
}

func (c *Consumer) broadcast(event interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.tappers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (c *Consumer) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return
	}
	c.finished = true
	for ch := range c.tappers {
		close(ch)
	}
	c.tappers = make(map[chan interface{}]struct{})
}

// Manager maps task id to Consumer, enforcing that at most one Stream
// Consumer ever exists per task. It must be safe for concurrent use since
// handlers may run in parallel.
type Manager struct {
	mu        sync.Mutex
	consumers map[string]*Consumer
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{consumers: make(map[string]*Consumer)}
}

// CreateConsumer registers a new Consumer for taskID, or fails with
// ErrConsumerExists if one is already registered.
func (m *Manager) CreateConsumer(taskID string, queue *EventQueue) (*Consumer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.consumers[taskID]; exists {
		return nil, ErrConsumerExists
	}
	c := newConsumer(queue)
	m.consumers[taskID] = c
	return c, nil
}

// TapOrConsume returns consumer.Tap() if a Consumer already exists for
// taskID, otherwise creates one bound to queue and returns consume().
func (m *Manager) TapOrConsume(ctx context.Context, taskID string, queue *EventQueue) <-chan interface{} {
	m.mu.Lock()
	existing, exists := m.consumers[taskID]
	if !exists {
		existing = newConsumer(queue)
		m.consumers[taskID] = existing
	}
	m.mu.Unlock()

	if exists {
		return existing.Tap()
	}
	return existing.Consume(ctx)
}

// Get fetches the Consumer registered for taskID, if any.
func (m *Manager) Get(taskID string) (*Consumer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.consumers[taskID]
	return c, ok
}

// Remove evicts the Consumer registered for taskID.
func (m *Manager) Remove(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.consumers, taskID)
}
