// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package protocol

import (
	"encoding/json"

	"github.com/tidwall/sjson"
)

// MessageRole indicates the originator of a message (user or agent).
type MessageRole string

const (
	MessageRoleUser  MessageRole = "user"
	MessageRoleAgent MessageRole = "agent"
)

// Message represents a single exchange between a user and an agent.
// Identity is MessageID; messages are immutable once published.
type Message struct {
	MessageID        string                 `json:"messageId"`
	Role             MessageRole            `json:"role"`
	Parts            []Part                 `json:"parts"`
	ContextID        string                 `json:"contextId,omitempty"`
	TaskID           string                 `json:"taskId,omitempty"`
	ReferenceTaskIDs []string               `json:"referenceTaskIds,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// GetKind returns the kind discriminator of a Message.
func (Message) GetKind() string { return KindMessage }

func (Message) unaryMessageResultMarker()      {}
func (Message) streamingMessageResultMarker()  {}

// MarshalJSON injects the "kind" discriminator alongside the struct fields.
func (m Message) MarshalJSON() ([]byte, error) {
	type alias Message
	raw, err := json.Marshal(alias(m))
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(raw, "kind", []byte(KindMessage))
}

// UnmarshalJSON resolves each Part's concrete type from its "kind" tag.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire struct {
		MessageID        string                 `json:"messageId"`
		Role             MessageRole            `json:"role"`
		Parts            []json.RawMessage      `json:"parts"`
		ContextID        string                 `json:"contextId,omitempty"`
		TaskID           string                 `json:"taskId,omitempty"`
		ReferenceTaskIDs []string               `json:"referenceTaskIds,omitempty"`
		Metadata         map[string]interface{} `json:"metadata,omitempty"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	parts, err := unmarshalParts(wire.Parts)
	if err != nil {
		return err
	}
	m.MessageID = wire.MessageID
	m.Role = wire.Role
	m.Parts = parts
	m.ContextID = wire.ContextID
	m.TaskID = wire.TaskID
	m.ReferenceTaskIDs = wire.ReferenceTaskIDs
	m.Metadata = wire.Metadata
	return nil
}

// NewMessage creates a new Message with the specified role and parts,
// assigning it a fresh MessageID.
func NewMessage(role MessageRole, parts []Part) Message {
	return Message{
		MessageID: GenerateMessageID(),
		Role:      role,
		Parts:     parts,
	}
}

// NewMessageWithContext creates a new Message scoped to a context and,
// optionally, a task.
func NewMessageWithContext(role MessageRole, parts []Part, taskID, contextID string) Message {
	msg := NewMessage(role, parts)
	msg.TaskID = taskID
	msg.ContextID = contextID
	return msg
}
