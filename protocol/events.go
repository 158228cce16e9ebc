// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"
)

// Event is satisfied by every value that carries a "kind" discriminator.
type Event interface {
	GetKind() string
}

// UnaryMessageResult is the result of message/send: either a Message or a
// Task.
type UnaryMessageResult interface {
	Event
	unaryMessageResultMarker()
}

// StreamingMessageResult is a frame of message/stream or
// tasks/resubscribe: a Message, a Task, or a StreamEvent.
type StreamingMessageResult interface {
	Event
	streamingMessageResultMarker()
}

// TaskStatusUpdateEvent reports a change in a task's lifecycle state.
// Final is true iff Status.State is a terminal state; no event for this
// task id follows one with Final == true.
type TaskStatusUpdateEvent struct {
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Final     bool       `json:"final"`
}

// GetKind returns the kind discriminator of a TaskStatusUpdateEvent.
func (TaskStatusUpdateEvent) GetKind() string { return KindTaskStatusUpdate }

func (TaskStatusUpdateEvent) streamingMessageResultMarker() {}

// IsFinal reports whether this is the last status-update for its task.
func (e TaskStatusUpdateEvent) IsFinal() bool { return e.Final }

func (e TaskStatusUpdateEvent) MarshalJSON() ([]byte, error) {
	type alias TaskStatusUpdateEvent
	raw, err := json.Marshal(alias(e))
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(raw, "kind", []byte(KindTaskStatusUpdate))
}

// NewTaskStatusUpdateEvent creates a new TaskStatusUpdateEvent.
func NewTaskStatusUpdateEvent(taskID, contextID string, status TaskStatus, final bool) TaskStatusUpdateEvent {
	return TaskStatusUpdateEvent{TaskID: taskID, ContextID: contextID, Status: status, Final: final}
}

// TaskArtifactUpdateEvent reports a new or updated artifact chunk.
type TaskArtifactUpdateEvent struct {
	TaskID    string                 `json:"taskId"`
	ContextID string                 `json:"contextId"`
	Artifact  Artifact               `json:"artifact"`
	Append    bool                   `json:"append,omitempty"`
	LastChunk bool                   `json:"lastChunk,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// GetKind returns the kind discriminator of a TaskArtifactUpdateEvent.
func (TaskArtifactUpdateEvent) GetKind() string { return KindTaskArtifactUpdate }

func (TaskArtifactUpdateEvent) streamingMessageResultMarker() {}

// IsFinal reports whether this is the last chunk of its artifact.
func (e TaskArtifactUpdateEvent) IsFinal() bool { return e.LastChunk }

func (e TaskArtifactUpdateEvent) MarshalJSON() ([]byte, error) {
	type alias TaskArtifactUpdateEvent
	raw, err := json.Marshal(alias(e))
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(raw, "kind", []byte(KindTaskArtifactUpdate))
}

// NewTaskArtifactUpdateEvent creates a new TaskArtifactUpdateEvent.
func NewTaskArtifactUpdateEvent(taskID, contextID string, artifact Artifact, append, lastChunk bool) TaskArtifactUpdateEvent {
	return TaskArtifactUpdateEvent{
		TaskID:    taskID,
		ContextID: contextID,
		Artifact:  artifact,
		Append:    append,
		LastChunk: lastChunk,
	}
}

// MessageResult is the envelope for a message/send response: a Message or
// a Task, discriminated by "kind" on the wire.
type MessageResult struct {
	Result UnaryMessageResult
}

func (r *MessageResult) UnmarshalJSON(data []byte) error {
	result, err := unmarshalByKind(data)
	if err != nil {
		return err
	}
	unary, ok := result.(UnaryMessageResult)
	if !ok {
		return fmt.Errorf("unsupported message result kind: %s", result.GetKind())
	}
	r.Result = unary
	return nil
}

func (r MessageResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Result)
}

// StreamingMessageEvent is the envelope for one frame of message/stream or
// tasks/resubscribe: a Message, a Task, a TaskStatusUpdateEvent, or a
// TaskArtifactUpdateEvent, discriminated by "kind" on the wire.
type StreamingMessageEvent struct {
	Result StreamingMessageResult
}

func (r *StreamingMessageEvent) UnmarshalJSON(data []byte) error {
	result, err := unmarshalByKind(data)
	if err != nil {
		return err
	}
	streaming, ok := result.(StreamingMessageResult)
	if !ok {
		return fmt.Errorf("unsupported streaming result kind: %s", result.GetKind())
	}
	r.Result = streaming
	return nil
}

func (r StreamingMessageEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Result)
}

// unmarshalByKind inspects the "kind" field of raw and unmarshals into the
// matching concrete Event type.
func unmarshalByKind(raw json.RawMessage) (Event, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result kind: %w", err)
	}
	switch probe.Kind {
	case KindMessage:
		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		return &m, nil
	case KindTask:
		var t Task
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task: %w", err)
		}
		return &t, nil
	case KindTaskStatusUpdate:
		var e TaskStatusUpdateEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task status update event: %w", err)
		}
		return &e, nil
	case KindTaskArtifactUpdate:
		var e TaskArtifactUpdateEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task artifact update event: %w", err)
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("unsupported result kind: %q", probe.Kind)
	}
}
