// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 THL A29 Limited, a Tencent company.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package runtime

import (
	"errors"

	"github.com/a2arun/a2a-go/protocol"
)

// ErrMissingContextID is returned by TaskBuilder.Build when no context id
// was ever set.
var ErrMissingContextID = errors.New("runtime: task builder requires a contextId")

// MessageBuilder is a fluent, validate-at-build constructor for
// protocol.Message. It performs no I/O and every setter returns the
// receiver for chaining.
type MessageBuilder struct {
	role      protocol.MessageRole
	parts     []protocol.Part
	contextID string
	taskID    string
	refTasks  []string
	metadata  map[string]interface{}
}

// NewMessageBuilder starts a MessageBuilder for the given role.
func NewMessageBuilder(role protocol.MessageRole) *MessageBuilder {
	return &MessageBuilder{role: role}
}

// WithParts sets the message's content parts.
func (b *MessageBuilder) WithParts(parts ...protocol.Part) *MessageBuilder {
	b.parts = parts
	return b
}

// WithContextID sets the owning context.
func (b *MessageBuilder) WithContextID(contextID string) *MessageBuilder {
	b.contextID = contextID
	return b
}

// WithTaskID associates the message with a task.
func (b *MessageBuilder) WithTaskID(taskID string) *MessageBuilder {
	b.taskID = taskID
	return b
}

// WithReferenceTaskIDs records related tasks.
func (b *MessageBuilder) WithReferenceTaskIDs(ids ...string) *MessageBuilder {
	b.refTasks = ids
	return b
}

// WithMetadata attaches opaque metadata.
func (b *MessageBuilder) WithMetadata(metadata map[string]interface{}) *MessageBuilder {
	b.metadata = metadata
	return b
}

// Build materializes the Message, assigning a fresh MessageID. A Message
// has no required fields beyond role, so Build never fails.
func (b *MessageBuilder) Build() protocol.Message {
	return protocol.Message{
		MessageID:        protocol.GenerateMessageID(),
		Role:             b.role,
		Parts:            b.parts,
		ContextID:        b.contextID,
		TaskID:           b.taskID,
		ReferenceTaskIDs: b.refTasks,
		Metadata:         b.metadata,
	}
}

// ArtifactBuilder is a fluent constructor for protocol.Artifact. If no
// artifact id is supplied, Build auto-assigns one.
type ArtifactBuilder struct {
	artifactID  string
	name        *string
	description *string
	parts       []protocol.Part
	metadata    map[string]interface{}
}

// NewArtifactBuilder starts an ArtifactBuilder.
func NewArtifactBuilder() *ArtifactBuilder {
	return &ArtifactBuilder{}
}

// WithArtifactID sets an explicit artifact id.
func (b *ArtifactBuilder) WithArtifactID(id string) *ArtifactBuilder {
	b.artifactID = id
	return b
}

// WithName sets the artifact's display name.
func (b *ArtifactBuilder) WithName(name string) *ArtifactBuilder {
	b.name = &name
	return b
}

// WithDescription sets the artifact's description.
func (b *ArtifactBuilder) WithDescription(description string) *ArtifactBuilder {
	b.description = &description
	return b
}

// WithParts sets the artifact's content parts.
func (b *ArtifactBuilder) WithParts(parts ...protocol.Part) *ArtifactBuilder {
	b.parts = parts
	return b
}

// WithMetadata attaches opaque metadata.
func (b *ArtifactBuilder) WithMetadata(metadata map[string]interface{}) *ArtifactBuilder {
	b.metadata = metadata
	return b
}

// Build materializes the Artifact, generating an id if one was never set.
func (b *ArtifactBuilder) Build() protocol.Artifact {
	id := b.artifactID
	if id == "" {
		id = protocol.GenerateArtifactID()
	}
	return protocol.Artifact{
		ArtifactID:  id,
		Name:        b.name,
		Description: b.description,
		Parts:       b.parts,
		Metadata:    b.metadata,
	}
}

// TaskBuilder is a fluent constructor for protocol.Task. Build fails if no
// contextId was ever supplied.
type TaskBuilder struct {
	id        string
	contextID string
	status    protocol.TaskStatus
	artifacts []protocol.Artifact
	history   []protocol.Message
	metadata  map[string]interface{}
}

// NewTaskBuilder starts a TaskBuilder, assigning a fresh task id.
func NewTaskBuilder() *TaskBuilder {
	return &TaskBuilder{
		id:     protocol.GenerateTaskID(),
		status: protocol.NewTaskStatus(protocol.TaskStateSubmitted, nil),
	}
}

// WithID overrides the generated task id.
func (b *TaskBuilder) WithID(id string) *TaskBuilder {
	b.id = id
	return b
}

// WithContextID sets the owning context. Required for Build to succeed.
func (b *TaskBuilder) WithContextID(contextID string) *TaskBuilder {
	b.contextID = contextID
	return b
}

// WithStatus sets the initial task status.
func (b *TaskBuilder) WithStatus(status protocol.TaskStatus) *TaskBuilder {
	b.status = status
	return b
}

// WithArtifacts sets the task's initial artifacts.
func (b *TaskBuilder) WithArtifacts(artifacts ...protocol.Artifact) *TaskBuilder {
	b.artifacts = artifacts
	return b
}

// WithHistory sets the task's initial message history.
func (b *TaskBuilder) WithHistory(history ...protocol.Message) *TaskBuilder {
	b.history = history
	return b
}

// WithMetadata attaches opaque metadata.
func (b *TaskBuilder) WithMetadata(metadata map[string]interface{}) *TaskBuilder {
	b.metadata = metadata
	return b
}

// Build materializes the Task, or fails if contextId was never set.
func (b *TaskBuilder) Build() (*protocol.Task, error) {
	if b.contextID == "" {
		return nil, ErrMissingContextID
	}
	return &protocol.Task{
		ID:        b.id,
		ContextID: b.contextID,
		Status:    b.status,
		Artifacts: b.artifacts,
		History:   b.history,
		Metadata:  b.metadata,
	}, nil
}
