// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package protocol

import (
	"encoding/json"
	"time"

	"github.com/tidwall/sjson"
)

// TaskState is the lifecycle state of a Task.
type TaskState string

const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateAuthRequired  TaskState = "auth-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateFailed        TaskState = "failed"
	TaskStateRejected      TaskState = "rejected"
	TaskStateUnknown       TaskState = "unknown"
)

// IsTerminal reports whether state is absorbing: no further transitions.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed, TaskStateRejected:
		return true
	default:
		return false
	}
}

// IsPending reports whether the stream for this state must close, with the
// task resumable only by a fresh request that references its id.
func (s TaskState) IsPending() bool {
	switch s {
	case TaskStateInputRequired, TaskStateAuthRequired:
		return true
	default:
		return false
	}
}

// IsActive reports whether the task is still being actively driven by its
// producer (submitted or working).
func (s TaskState) IsActive() bool {
	switch s {
	case TaskStateSubmitted, TaskStateWorking:
		return true
	default:
		return false
	}
}

// TaskStatus is the current state of a task plus the timestamp of the last
// transition and, optionally, the message associated with that transition
// (e.g. the prompt accompanying an input-required state).
type TaskStatus struct {
	State     TaskState  `json:"state"`
	Timestamp time.Time  `json:"timestamp"`
	Message   *Message   `json:"message,omitempty"`
}

// NewTaskStatus builds a TaskStatus stamped with the current time.
func NewTaskStatus(state TaskState, message *Message) TaskStatus {
	return TaskStatus{State: state, Timestamp: time.Now().UTC(), Message: message}
}

// Task is a server-tracked unit of agent work. Identity is ID; ContextID
// groups related tasks and messages into one logical session.
type Task struct {
	ID        string                 `json:"id"`
	ContextID string                 `json:"contextId"`
	Status    TaskStatus             `json:"status"`
	Artifacts []Artifact             `json:"artifacts,omitempty"`
	History   []Message              `json:"history,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// GetKind returns the kind discriminator of a Task.
func (Task) GetKind() string { return KindTask }

func (Task) unaryMessageResultMarker()     {}
func (Task) streamingMessageResultMarker() {}

// MarshalJSON injects the "kind" discriminator alongside the struct fields.
func (t Task) MarshalJSON() ([]byte, error) {
	type alias Task
	raw, err := json.Marshal(alias(t))
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(raw, "kind", []byte(KindTask))
}

// NewTask creates a new Task in the submitted state. contextID must be
// non-empty: a Task without a contextId violates the data model's first
// invariant.
func NewTask(id, contextID string) *Task {
	return &Task{
		ID:        id,
		ContextID: contextID,
		Status:    NewTaskStatus(TaskStateSubmitted, nil),
	}
}
