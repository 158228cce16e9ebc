// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package taskmanager

import (
	"context"

	"github.com/a2arun/a2a-go/protocol"
	"github.com/a2arun/a2a-go/runtime"
)

// AgentExecutor is the boundary between the protocol runtime and agent
// logic. Execute is invoked once per message/send or message/stream
// request; it either returns a unary result (a Message or a Task) or
// starts a Task Stream via execCtx.Stream and returns the stream handle,
// never both. Cancel is invoked for tasks/cancel.
type AgentExecutor interface {
	Execute(ctx context.Context, execCtx *runtime.ExecutionContext) (protocol.UnaryMessageResult, *runtime.TaskStream, error)
	Cancel(ctx context.Context, task protocol.Task) (*protocol.Task, error)
}
