// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 THL A29 Limited, a Tencent company.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package runtime

import (
	"errors"
	"time"

	"github.com/a2arun/a2a-go/protocol"
)

// ErrStreamAlreadyTerminated is returned by a TaskStream producer operation
// called after the stream has closed.
var ErrStreamAlreadyTerminated = errors.New("runtime: task stream already terminated")

// ErrNoCurrentTask is returned by a producer operation on the Execution
// Context that requires a current task but none has been materialized.
var ErrNoCurrentTask = errors.New("runtime: no current task")

// AgentRequest is what a handler hands to an agent executor: the inbound
// RPC params plus an opaque extension map for transport-specific metadata
// (auth claims, trace context, and similar).
type AgentRequest struct {
	Params    interface{}
	Extension map[string]interface{}
}

// MessageParams is the content an agent supplies when materializing a
// Message through the Execution Context.
type MessageParams struct {
	Parts    []protocol.Part
	Metadata map[string]interface{}
}

// UpdateParams is the content an agent supplies when transitioning the
// current task to a new state through the Execution Context.
type UpdateParams struct {
	// Message, if set, is materialized with the task's id and becomes
	// status.Message.
	Message *MessageParams
	// Artifacts are concatenated onto the task's existing artifacts,
	// order preserved.
	Artifacts []protocol.Artifact
	Metadata  map[string]interface{}
}

// ResolveContextID implements the Execution Context's contextId rule:
// task.contextId, else message.contextId, else suppliedID, else a fresh id.
func ResolveContextID(task *protocol.Task, message *protocol.Message, suppliedID string) string {
	if task != nil && task.ContextID != "" {
		return task.ContextID
	}
	if message != nil && message.ContextID != "" {
		return message.ContextID
	}
	if suppliedID != "" {
		return suppliedID
	}
	return protocol.GenerateContextID()
}

// ExecutionContext is the per-request handle an agent executor receives.
// It exposes the inbound request, the resolved current task and reference
// tasks, and the producer operations that let the agent publish results;
// every producer operation that touches a task writes through to the
// configured TaskStore, never leaving the agent to mutate the store
// directly.
type ExecutionContext struct {
	Request        AgentRequest
	CurrentTask    *protocol.Task
	ReferenceTasks []protocol.Task
	ContextID      string

	store         TaskStore
	ttl           time.Duration
	queueCapacity int
}

// WithQueueCapacity overrides the capacity of the EventQueue a subsequent
// Stream call creates; 0 (the zero value) selects DefaultQueueSize. It
// returns c for chaining.
func (c *ExecutionContext) WithQueueCapacity(capacity int) *ExecutionContext {
	c.queueCapacity = capacity
	return c
}

// NewExecutionContext builds an ExecutionContext for one inbound request.
func NewExecutionContext(
	request AgentRequest,
	currentTask *protocol.Task,
	referenceTasks []protocol.Task,
	contextID string,
	store TaskStore,
	ttl time.Duration,
) *ExecutionContext {
	return &ExecutionContext{
		Request:        request,
		CurrentTask:    currentTask,
		ReferenceTasks: referenceTasks,
		ContextID:      contextID,
		store:          store,
		ttl:            ttl,
	}
}

// Message materializes a fresh agent-authored Message scoped to this
// context's contextId.
func (c *ExecutionContext) Message(params MessageParams) protocol.Message {
	b := NewMessageBuilder(protocol.MessageRoleAgent).
		WithParts(params.Parts...).
		WithContextID(c.ContextID).
		WithMetadata(params.Metadata)
	if c.CurrentTask != nil {
		b = b.WithTaskID(c.CurrentTask.ID)
	}
	return b.Build()
}

// Complete transitions the current task to completed.
func (c *ExecutionContext) Complete(params UpdateParams) (*protocol.Task, error) {
	return c.setOrUpdate(protocol.TaskStateCompleted, params)
}

// Reject transitions the current task to rejected.
func (c *ExecutionContext) Reject(params UpdateParams) (*protocol.Task, error) {
	return c.setOrUpdate(protocol.TaskStateRejected, params)
}

// AuthRequired transitions the current task to auth-required.
func (c *ExecutionContext) AuthRequired(params UpdateParams) (*protocol.Task, error) {
	return c.setOrUpdate(protocol.TaskStateAuthRequired, params)
}

// InputRequired transitions the current task to input-required.
func (c *ExecutionContext) InputRequired(params UpdateParams) (*protocol.Task, error) {
	return c.setOrUpdate(protocol.TaskStateInputRequired, params)
}

// setOrUpdate applies one state transition to the current task, creating
// it if this is the first transition observed by this context, merges
// artifacts by concatenation, replaces status wholesale, refreshes the
// status timestamp, and persists the result.
func (c *ExecutionContext) setOrUpdate(state protocol.TaskState, params UpdateParams) (*protocol.Task, error) {
	task := c.CurrentTask
	if task == nil {
		built, err := NewTaskBuilder().WithContextID(c.ContextID).Build()
		if err != nil {
			return nil, err
		}
		task = built
	}

	var statusMessage *protocol.Message
	if params.Message != nil {
		msg := NewMessageBuilder(protocol.MessageRoleAgent).
			WithParts(params.Message.Parts...).
			WithContextID(c.ContextID).
			WithTaskID(task.ID).
			WithMetadata(params.Message.Metadata).
			Build()
		statusMessage = &msg
		task.History = append(task.History, msg)
	}

	task.Status = protocol.NewTaskStatus(state, statusMessage)
	if len(params.Artifacts) > 0 {
		task.Artifacts = append(task.Artifacts, params.Artifacts...)
	}
	if params.Metadata != nil {
		task.Metadata = params.Metadata
	}

	c.CurrentTask = task
	if err := c.store.Set(task.ID, *task, c.ttl); err != nil {
		return nil, err
	}
	return task, nil
}

// Stream sets the current task (creating it if there is none yet) to
// initialState, submitted when empty, creates a Task Stream bound to this context, and invokes
// callback with it without awaiting: callback runs on its own goroutine
// and Stream returns as soon as it has been launched.
func (c *ExecutionContext) Stream(callback func(*TaskStream), initialState protocol.TaskState) (*TaskStream, *protocol.Task, error) {
	if initialState == "" {
		initialState = protocol.TaskStateSubmitted
	}
	task := c.CurrentTask
	if task == nil {
		built, err := NewTaskBuilder().WithContextID(c.ContextID).WithStatus(protocol.NewTaskStatus(initialState, nil)).Build()
		if err != nil {
			return nil, nil, err
		}
		task = built
	} else {
		task.Status = protocol.NewTaskStatus(initialState, nil)
	}
	c.CurrentTask = task
	if err := c.store.Set(task.ID, *task, c.ttl); err != nil {
		return nil, nil, err
	}

	stream := newTaskStream(c, NewEventQueue(c.queueCapacity))
	go callback(stream)
	return stream, task, nil
}
