// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package protocol

import "github.com/google/uuid"

// GenerateMessageID generates a new unique message ID.
func GenerateMessageID() string {
	return "msg-" + uuid.New().String()
}

// GenerateContextID generates a new unique context ID for a task.
func GenerateContextID() string {
	return "ctx-" + uuid.New().String()
}

// GenerateTaskID generates a new unique task ID.
func GenerateTaskID() string {
	return "task-" + uuid.New().String()
}

// GenerateArtifactID generates a new unique artifact ID.
func GenerateArtifactID() string {
	return "artifact-" + uuid.New().String()
}

// GenerateRPCID generates a new unique RPC ID.
func GenerateRPCID() string {
	return uuid.New().String()
}
