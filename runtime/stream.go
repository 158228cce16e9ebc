// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 THL A29 Limited, a Tencent company.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package runtime

import (
	"sync"
	"sync/atomic"

	"github.com/a2arun/a2a-go/protocol"
)

// TaskStream is the producer-side handle an agent uses inside an
// ExecutionContext.Stream callback to publish status and artifact updates
// for exactly one task. Producer calls are serialized by the caller: the
// callback that owns a TaskStream is expected to drive it from a single
// goroutine, per the at-most-one-producer-per-task invariant enforced by
// the Stream Manager.
type TaskStream struct {
	Queue *EventQueue

	ctx    *ExecutionContext
	closed atomic.Bool
	mu     sync.Mutex
}

func newTaskStream(ctx *ExecutionContext, queue *EventQueue) *TaskStream {
	return &TaskStream{ctx: ctx, Queue: queue}
}

// Closed reports whether the stream has terminated.
func (s *TaskStream) Closed() bool {
	return s.closed.Load()
}

// WriteArtifact publishes a new or continued artifact chunk. If the
// current task is not already working, it transitions to working first
// and, unless sendStatus is false, emits a status-update ahead of the
// artifact-update. The artifact is also recorded on the current task: an
// artifact with a new ArtifactID is added, and one with an existing
// ArtifactID has its parts appended when appendParts is true or replaces
// the prior artifact otherwise.
func (s *TaskStream) WriteArtifact(artifact protocol.Artifact, appendParts, lastChunk, sendStatus bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ErrStreamAlreadyTerminated
	}
	if s.ctx.CurrentTask == nil {
		return ErrNoCurrentTask
	}

	if s.ctx.CurrentTask.Status.State != protocol.TaskStateWorking {
		if _, err := s.ctx.setOrUpdate(protocol.TaskStateWorking, UpdateParams{}); err != nil {
			return err
		}
		if sendStatus {
			s.emitStatus()
		}
	}

	task := s.ctx.CurrentTask
	idx := -1
	for i := range task.Artifacts {
		if task.Artifacts[i].ArtifactID == artifact.ArtifactID {
			idx = i
		}
	}
	switch {
	case idx < 0:
		task.Artifacts = append(task.Artifacts, artifact)
	case appendParts:
		task.Artifacts[idx].Parts = append(task.Artifacts[idx].Parts, artifact.Parts...)
	default:
		task.Artifacts[idx] = artifact
	}
	event := protocol.NewTaskArtifactUpdateEvent(task.ID, task.ContextID, artifact, appendParts, lastChunk)
	s.Queue.Enqueue(event)

	return s.terminateCheck()
}

// Start transitions the current task to working (if it is not already)
// and emits a status-update, then applies the terminate check.
func (s *TaskStream) Start(params UpdateParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ErrStreamAlreadyTerminated
	}
	if s.ctx.CurrentTask.Status.State != protocol.TaskStateWorking {
		if _, err := s.ctx.setOrUpdate(protocol.TaskStateWorking, params); err != nil {
			return err
		}
		s.emitStatus()
	}
	return s.terminateCheck()
}

// Complete transitions to completed, emits a final status-update, and
// closes the stream.
func (s *TaskStream) Complete(params UpdateParams) error {
	return s.transition(protocol.TaskStateCompleted, params)
}

// Reject transitions to rejected, emits a final status-update, and closes
// the stream.
func (s *TaskStream) Reject(params UpdateParams) error {
	return s.transition(protocol.TaskStateRejected, params)
}

// AuthRequired transitions to auth-required, emits a status-update, and
// closes the stream.
func (s *TaskStream) AuthRequired(params UpdateParams) error {
	return s.transition(protocol.TaskStateAuthRequired, params)
}

// InputRequired transitions to input-required, emits a status-update, and
// closes the stream.
func (s *TaskStream) InputRequired(params UpdateParams) error {
	return s.transition(protocol.TaskStateInputRequired, params)
}

func (s *TaskStream) transition(state protocol.TaskState, params UpdateParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ErrStreamAlreadyTerminated
	}
	if _, err := s.ctx.setOrUpdate(state, params); err != nil {
		return err
	}
	s.emitStatus()
	return s.terminateCheck()
}

// emitStatus enqueues a status-update reflecting the current task state.
// Final is set whenever the state is terminal, matching the producer
// contract even for transitions reached via Start/WriteArtifact.
func (s *TaskStream) emitStatus() {
	task := s.ctx.CurrentTask
	event := protocol.NewTaskStatusUpdateEvent(task.ID, task.ContextID, task.Status, task.Status.State.IsTerminal())
	s.Queue.Enqueue(event)
}

// terminateCheck closes the stream and enqueues the end-of-stream sentinel
// once the current task reaches a terminal or pending state.
func (s *TaskStream) terminateCheck() error {
	state := s.ctx.CurrentTask.Status.State
	if state.IsTerminal() || state.IsPending() {
		s.closed.Store(true)
		s.Queue.Enqueue(EndOfStream)
		s.Queue.Close()
	}
	return nil
}
