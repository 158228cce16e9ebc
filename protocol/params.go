// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package protocol

// TaskIDParams identifies a task for tasks/cancel, tasks/resubscribe, and
// the push-notification-config operations.
type TaskIDParams struct {
	// RPCID, when set, is used by client.A2AClient as the JSON-RPC request
	// ID instead of an auto-generated one. Never sent as part of params.
	RPCID    interface{}            `json:"-"`
	ID       string                 `json:"id"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// TaskQueryParams identifies a task for tasks/get, with an optional cap on
// the number of history messages returned.
type TaskQueryParams struct {
	RPCID         interface{}            `json:"-"`
	ID            string                 `json:"id"`
	HistoryLength *int                   `json:"historyLength,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// SendMessageConfiguration tunes how message/send and message/stream
// requests are handled.
type SendMessageConfiguration struct {
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
	Blocking            *bool    `json:"blocking,omitempty"`
	HistoryLength       *int     `json:"historyLength,omitempty"`
}

// SendMessageParams is the request body of message/send and
// message/stream.
type SendMessageParams struct {
	RPCID         interface{}               `json:"-"`
	Message       Message                   `json:"message"`
	Configuration *SendMessageConfiguration `json:"configuration,omitempty"`
	Metadata      map[string]interface{}    `json:"metadata,omitempty"`
}

// TaskPushNotificationConfigParams identifies a specific push notification
// config for tasks/pushNotificationConfig/get, when a task has more than
// one registered.
type TaskPushNotificationConfigParams struct {
	ID       string                 `json:"id"`
	ConfigID string                 `json:"pushNotificationConfigId,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
