// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

// Package protocol defines the core types and interfaces based on the A2A specification.
package protocol

// Kind constants identify the concrete case of a tagged-union wire value.
// They are injected into JSON as the "kind" field by each type's
// MarshalJSON rather than carried as a struct field, so the Go value
// itself never has to stay in sync with a redundant tag.
const (
	KindMessage            = "message"
	KindTask               = "task"
	KindTaskStatusUpdate   = "status-update"
	KindTaskArtifactUpdate = "artifact-update"
	KindData               = "data"
	KindFile               = "file"
	KindText               = "text"
)

// RPC method names, one per JSON-RPC method this runtime exposes.
const (
	MethodMessageSend                    = "message/send"
	MethodMessageStream                  = "message/stream"
	MethodTasksGet                       = "tasks/get"
	MethodTasksCancel                    = "tasks/cancel"
	MethodTasksResubscribe               = "tasks/resubscribe"
	MethodTasksPushNotificationConfigSet = "tasks/pushNotificationConfig/set"
	MethodTasksPushNotificationConfigGet = "tasks/pushNotificationConfig/get"
	MethodAgentAuthenticatedExtendedCard = "agent/getAuthenticatedExtendedCard"
)

// SSE event type names used in the "event:" field of each frame. These are
// distinct from the Kind* constants above: Kind* tags the JSON payload,
// Event* tags the SSE envelope around it.
const (
	EventStatusUpdate   = "task_status_update"
	EventArtifactUpdate = "task_artifact_update"
	EventMessage        = "message"
	EventTask           = "task"
	EventClose          = "close"
)

// HTTP endpoint paths.
const (
	// AgentCardPath is the current well-known location of the agent card.
	AgentCardPath = "/.well-known/agent-card.json"
	// OldAgentCardPath is served alongside AgentCardPath for callers built
	// against earlier drafts of the well-known location.
	OldAgentCardPath = "/.well-known/agent.json"
	// JWKSPath is the well-known location of the push-notification signing
	// keys, served when an A2AServer is configured WithJWKSEndpoint.
	JWKSPath = "/.well-known/jwks.json"
	// DefaultJSONRPCPath is the default path for the JSON-RPC endpoint.
	DefaultJSONRPCPath = "/"
)
