// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package taskmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/a2arun/a2a-go/internal/jsonrpc"
	"github.com/a2arun/a2a-go/log"
	"github.com/a2arun/a2a-go/protocol"
	"github.com/a2arun/a2a-go/runtime"
)

const defaultTaskTTL = 24 * time.Hour

// TaskManager wires the seven A2A request handlers to a TaskStore, a
// Stream Manager, and an AgentExecutor, and registers them on a
// runtime.Dispatcher.
type TaskManager struct {
	executor      AgentExecutor
	store         runtime.TaskStore
	streams       *runtime.Manager
	ttl           time.Duration
	queueCapacity int
}

// Option configures a TaskManager.
type Option func(*TaskManager)

// WithTaskStore overrides the default in-memory TaskStore.
func WithTaskStore(store runtime.TaskStore) Option {
	return func(m *TaskManager) { m.store = store }
}

// WithTaskStoreTTL overrides how long a persisted task is retained before
// its store entry expires.
func WithTaskStoreTTL(ttl time.Duration) Option {
	return func(m *TaskManager) { m.ttl = ttl }
}

// WithEventQueueCapacity overrides the buffer size of the EventQueue created
// for each streaming task; 0 selects runtime.DefaultQueueSize.
func WithEventQueueCapacity(capacity int) Option {
	return func(m *TaskManager) { m.queueCapacity = capacity }
}

// NewTaskManager creates a TaskManager backed by executor.
func NewTaskManager(executor AgentExecutor, opts ...Option) *TaskManager {
	m := &TaskManager{
		executor: executor,
		store:    runtime.NewMemoryTaskStore(),
		streams:  runtime.NewManager(),
		ttl:      defaultTaskTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RegisterHandlers binds all seven A2A methods to d.
func (m *TaskManager) RegisterHandlers(d *runtime.Dispatcher) {
	d.Register(protocol.MethodMessageSend, m.handleMessageSend)
	d.Register(protocol.MethodMessageStream, m.handleMessageStream)
	d.Register(protocol.MethodTasksGet, m.handleTasksGet)
	d.Register(protocol.MethodTasksCancel, m.handleTasksCancel)
	d.Register(protocol.MethodTasksResubscribe, m.handleTasksResubscribe)
	d.Register(protocol.MethodTasksPushNotificationConfigSet, m.handleTasksPushNotificationConfigSet)
	d.Register(protocol.MethodTasksPushNotificationConfigGet, m.handleTasksPushNotificationConfigGet)
}

// resolveExecutionContext loads the task referenced by message.TaskID (if
// any), drops missing entries from referenceTaskIds, and resolves the
// contextId per the Execution Context rule.
func (m *TaskManager) resolveExecutionContext(
	ctx context.Context,
	message protocol.Message,
	extension map[string]interface{},
	rawParams interface{},
) (*runtime.ExecutionContext, error) {
	var currentTask *protocol.Task
	if message.TaskID != "" {
		task, found, err := m.store.Get(message.TaskID)
		if err != nil {
			return nil, err
		}
		if !found {
			log.Warnf("resolveExecutionContext: task %s referenced by message %s not found", message.TaskID, message.MessageID)
			return nil, ErrTaskNotFound(message.TaskID)
		}
		currentTask = &task
	}

	var referenceTasks []protocol.Task
	for _, refID := range message.ReferenceTaskIDs {
		task, found, err := m.store.Get(refID)
		if err != nil {
			return nil, err
		}
		if found {
			referenceTasks = append(referenceTasks, task)
		}
	}

	contextID := runtime.ResolveContextID(currentTask, &message, message.ContextID)
	execCtx := runtime.NewExecutionContext(
		runtime.AgentRequest{Params: rawParams, Extension: extension},
		currentTask,
		referenceTasks,
		contextID,
		m.store,
		m.ttl,
	).WithQueueCapacity(m.queueCapacity)
	return execCtx, nil
}

// interpretUnaryResult applies message/send's result interpretation: a
// Message is returned as-is, a Task is persisted and returned.
func (m *TaskManager) interpretUnaryResult(result protocol.UnaryMessageResult) (interface{}, error) {
	switch v := result.(type) {
	case protocol.Message:
		return v, nil
	case protocol.Task:
		if err := m.store.Set(v.ID, v, m.ttl); err != nil {
			return nil, err
		}
		log.Debugf("interpretUnaryResult: persisted task %s in state %s", v.ID, v.Status.State)
		return v, nil
	default:
		log.Errorf("interpretUnaryResult: unsupported executor result type %T", result)
		return nil, ErrInvalidAgentResponse(fmt.Sprintf("unsupported executor result type %T", result))
	}
}

// wireStream ensures exactly one Stream Consumer exists for the stream's
// task and, if this call created it, starts draining it in the background
// so the end-of-stream sentinel is always reached even with no tapper.
func (m *TaskManager) wireStream(expectedTaskID string, stream *runtime.TaskStream, initialTask *protocol.Task) error {
	if initialTask.ID != expectedTaskID && expectedTaskID != "" {
		return ErrInvalidAgentResponse("stream task id does not match the resolved current task")
	}
	if _, exists := m.streams.Get(initialTask.ID); exists {
		return nil
	}
	consumer, err := m.streams.CreateConsumer(initialTask.ID, stream.Queue)
	if err != nil {
		return err
	}
	log.Debugf("wireStream: created stream consumer for task %s", initialTask.ID)
	go func() {
		for range consumer.Consume(context.Background()) {
			// drained so the sentinel is always reached; tappers, if any,
			// received their own copy via broadcast.
		}
		m.streams.Remove(initialTask.ID)
		log.Debugf("wireStream: stream for task %s drained, consumer removed", initialTask.ID)
	}()
	return nil
}

func (m *TaskManager) handleMessageSend(ctx context.Context, rawParams json.RawMessage, extension map[string]interface{}) (*runtime.HandlerResult, error) {
	var params protocol.SendMessageParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return nil, jsonrpc.ErrInvalidParams(err.Error())
	}
	log.Debugf("handleMessageSend: message %s", params.Message.MessageID)

	var expectedTaskID string
	if params.Message.TaskID != "" {
		expectedTaskID = params.Message.TaskID
	}

	execCtx, err := m.resolveExecutionContext(ctx, params.Message, extension, params)
	if err != nil {
		return nil, err
	}

	result, stream, err := m.executor.Execute(ctx, execCtx)
	if err != nil {
		return nil, err
	}

	if stream != nil {
		if err := m.wireStream(expectedTaskID, stream, execCtx.CurrentTask); err != nil {
			return nil, err
		}
		return &runtime.HandlerResult{Response: *execCtx.CurrentTask}, nil
	}

	response, err := m.interpretUnaryResult(result)
	if err != nil {
		return nil, err
	}
	return &runtime.HandlerResult{Response: response}, nil
}

func (m *TaskManager) handleMessageStream(ctx context.Context, rawParams json.RawMessage, extension map[string]interface{}) (*runtime.HandlerResult, error) {
	var params protocol.SendMessageParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return nil, jsonrpc.ErrInvalidParams(err.Error())
	}
	log.Debugf("handleMessageStream: message %s", params.Message.MessageID)

	var expectedTaskID string
	if params.Message.TaskID != "" {
		expectedTaskID = params.Message.TaskID
	}

	execCtx, err := m.resolveExecutionContext(ctx, params.Message, extension, params)
	if err != nil {
		return nil, err
	}

	result, stream, err := m.executor.Execute(ctx, execCtx)
	if err != nil {
		return nil, err
	}

	if stream == nil {
		response, err := m.interpretUnaryResult(result)
		if err != nil {
			return nil, err
		}
		return &runtime.HandlerResult{Stream: oneShotStream(response)}, nil
	}

	if err := m.wireStream(expectedTaskID, stream, execCtx.CurrentTask); err != nil {
		return nil, err
	}
	events := m.streams.TapOrConsume(ctx, execCtx.CurrentTask.ID, stream.Queue)
	return &runtime.HandlerResult{Stream: prependEvent(*execCtx.CurrentTask, events)}, nil
}

func (m *TaskManager) handleTasksGet(ctx context.Context, rawParams json.RawMessage, extension map[string]interface{}) (*runtime.HandlerResult, error) {
	var params protocol.TaskQueryParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return nil, jsonrpc.ErrInvalidParams(err.Error())
	}
	task, found, err := m.store.Get(params.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrTaskNotFound(params.ID)
	}
	if params.HistoryLength != nil && *params.HistoryLength >= 0 && *params.HistoryLength < len(task.History) {
		task.History = task.History[len(task.History)-*params.HistoryLength:]
	}
	return &runtime.HandlerResult{Response: task}, nil
}

func (m *TaskManager) handleTasksCancel(ctx context.Context, rawParams json.RawMessage, extension map[string]interface{}) (*runtime.HandlerResult, error) {
	var params protocol.TaskIDParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return nil, jsonrpc.ErrInvalidParams(err.Error())
	}
	task, found, err := m.store.Get(params.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrTaskNotFound(params.ID)
	}
	updated, err := m.executor.Cancel(ctx, task)
	if err != nil {
		log.Errorf("handleTasksCancel: executor.Cancel failed for task %s: %v", params.ID, err)
		return nil, err
	}
	if err := m.store.Set(updated.ID, *updated, m.ttl); err != nil {
		return nil, err
	}
	log.Infof("handleTasksCancel: task %s canceled, state now %s", updated.ID, updated.Status.State)
	return &runtime.HandlerResult{Response: *updated}, nil
}

func (m *TaskManager) handleTasksResubscribe(ctx context.Context, rawParams json.RawMessage, extension map[string]interface{}) (*runtime.HandlerResult, error) {
	var params protocol.TaskIDParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return nil, jsonrpc.ErrInvalidParams(err.Error())
	}
	if _, found, err := m.store.Get(params.ID); err != nil {
		return nil, err
	} else if !found {
		return nil, ErrTaskNotFound(params.ID)
	}
	consumer, exists := m.streams.Get(params.ID)
	if !exists {
		log.Warnf("handleTasksResubscribe: task %s has no active stream consumer", params.ID)
		return nil, ErrTaskNotFoundNotActive(params.ID)
	}
	log.Debugf("handleTasksResubscribe: new tap attached to task %s", params.ID)
	return &runtime.HandlerResult{Stream: consumer.Tap()}, nil
}

func (m *TaskManager) handleTasksPushNotificationConfigSet(ctx context.Context, rawParams json.RawMessage, extension map[string]interface{}) (*runtime.HandlerResult, error) {
	var params protocol.TaskPushNotificationConfig
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return nil, jsonrpc.ErrInvalidParams(err.Error())
	}
	if _, found, err := m.store.Get(params.TaskID); err != nil {
		return nil, err
	} else if !found {
		return nil, ErrTaskNotFound(params.TaskID)
	}
	masked := params
	if masked.PushNotificationConfig.Authentication != nil {
		schemes := masked.PushNotificationConfig.Authentication.Schemes
		masked.PushNotificationConfig.Authentication = &protocol.AuthenticationInfo{Schemes: schemes}
	}
	masked.PushNotificationConfig.Token = nil
	return &runtime.HandlerResult{Response: masked}, nil
}

func (m *TaskManager) handleTasksPushNotificationConfigGet(ctx context.Context, rawParams json.RawMessage, extension map[string]interface{}) (*runtime.HandlerResult, error) {
	var params protocol.TaskIDParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return nil, jsonrpc.ErrInvalidParams(err.Error())
	}
	if _, found, err := m.store.Get(params.ID); err != nil {
		return nil, err
	} else if !found {
		return nil, ErrTaskNotFound(params.ID)
	}
	return nil, ErrPushNotificationNotSupported()
}

// oneShotStream adapts a unary response into a single-frame stream, for an
// executor that answered message/stream without ever calling
// execCtx.Stream.
func oneShotStream(response interface{}) <-chan interface{} {
	out := make(chan interface{}, 1)
	out <- response
	close(out)
	return out
}

// prependEvent yields initial ahead of every value from events.
func prependEvent(initial interface{}, events <-chan interface{}) <-chan interface{} {
	out := make(chan interface{}, 1)
	go func() {
		defer close(out)
		out <- initial
		for ev := range events {
			out <- ev
		}
	}()
	return out
}

