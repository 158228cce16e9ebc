// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package taskmanager_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a2arun/a2a-go/internal/jsonrpc"
	"github.com/a2arun/a2a-go/protocol"
	"github.com/a2arun/a2a-go/runtime"
	"github.com/a2arun/a2a-go/taskmanager"
)

// echoExecutor answers message/send with a completed Message, or, when
// stream is set, drives a task through submitted -> working -> completed
// with one artifact chunk in between.
type echoExecutor struct {
	stream bool
}

func (e *echoExecutor) Execute(ctx context.Context, execCtx *runtime.ExecutionContext) (protocol.UnaryMessageResult, *runtime.TaskStream, error) {
	if !e.stream {
		return execCtx.Message(runtime.MessageParams{Parts: []protocol.Part{protocol.NewTextPart("ok")}}), nil, nil
	}
	stream, _, err := execCtx.Stream(func(s *runtime.TaskStream) {
		_ = s.Start(runtime.UpdateParams{})
		artifact := runtime.NewArtifactBuilder().WithParts(protocol.NewTextPart("chunk")).Build()
		_ = s.WriteArtifact(artifact, false, true, true)
		_ = s.Complete(runtime.UpdateParams{})
	}, protocol.TaskStateSubmitted)
	return nil, stream, err
}

func (e *echoExecutor) Cancel(ctx context.Context, task protocol.Task) (*protocol.Task, error) {
	task.Status = protocol.NewTaskStatus(protocol.TaskStateCanceled, nil)
	return &task, nil
}

func newRequest(t *testing.T, method string, params interface{}) *jsonrpc.Request {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return &jsonrpc.Request{
		Message: jsonrpc.Message{JSONRPC: jsonrpc.Version, ID: "1"},
		Method:  method,
		Params:  raw,
	}
}

func TestMessageSendReturnsMessage(t *testing.T) {
	d := runtime.NewDispatcher()
	taskmanager.NewTaskManager(&echoExecutor{}).RegisterHandlers(d)

	msg := protocol.NewMessage(protocol.MessageRoleUser, []protocol.Part{protocol.NewTextPart("hi")})
	req := newRequest(t, protocol.MethodMessageSend, protocol.SendMessageParams{Message: msg})

	result := d.Dispatch(context.Background(), req, nil)
	require.NotNil(t, result.Response)
	require.Nil(t, result.Stream)
	assert.Nil(t, result.Response.Error)
}

func TestMessageSendStreamPersistsAndCompletes(t *testing.T) {
	d := runtime.NewDispatcher()
	tm := taskmanager.NewTaskManager(&echoExecutor{stream: true})
	tm.RegisterHandlers(d)

	msg := protocol.NewMessage(protocol.MessageRoleUser, []protocol.Part{protocol.NewTextPart("go")})
	req := newRequest(t, protocol.MethodMessageSend, protocol.SendMessageParams{Message: msg})

	result := d.Dispatch(context.Background(), req, nil)
	require.NotNil(t, result.Response)
	require.Nil(t, result.Response.Error)

	var task protocol.Task
	require.NoError(t, json.Unmarshal(result.Response.Result, &task))

	var final protocol.Task
	require.Eventually(t, func() bool {
		getReq := newRequest(t, protocol.MethodTasksGet, protocol.TaskQueryParams{ID: task.ID})
		getResult := d.Dispatch(context.Background(), getReq, nil)
		if getResult.Response.Error != nil {
			return false
		}
		require.NoError(t, json.Unmarshal(getResult.Response.Result, &final))
		return final.Status.State == protocol.TaskStateCompleted
	}, time.Second, 5*time.Millisecond, "task never reached completed")

	require.Len(t, final.Artifacts, 1)
	require.Len(t, final.Artifacts[0].Parts, 1)
	textPart, ok := final.Artifacts[0].Parts[0].(*protocol.TextPart)
	require.True(t, ok)
	assert.Equal(t, "chunk", textPart.Text)
}

// gatedMultiTurnExecutor drives message/send across two turns: the first
// turn puts the task in input-required, the second resumes it to
// completed, exercising context inheritance via message.taskId.
type gatedMultiTurnExecutor struct{}

func (e *gatedMultiTurnExecutor) Execute(ctx context.Context, execCtx *runtime.ExecutionContext) (protocol.UnaryMessageResult, *runtime.TaskStream, error) {
	if execCtx.CurrentTask == nil {
		task, err := execCtx.InputRequired(runtime.UpdateParams{
			Message: &runtime.MessageParams{Parts: []protocol.Part{protocol.NewTextPart("need more info")}},
		})
		if err != nil {
			return nil, nil, err
		}
		return *task, nil, nil
	}
	task, err := execCtx.Complete(runtime.UpdateParams{
		Artifacts: []protocol.Artifact{runtime.NewArtifactBuilder().WithParts(protocol.NewTextPart("done")).Build()},
	})
	if err != nil {
		return nil, nil, err
	}
	return *task, nil, nil
}

func (e *gatedMultiTurnExecutor) Cancel(ctx context.Context, task protocol.Task) (*protocol.Task, error) {
	task.Status = protocol.NewTaskStatus(protocol.TaskStateCanceled, nil)
	return &task, nil
}

func TestMultiTurnInputRequiredResumesByTaskID(t *testing.T) {
	d := runtime.NewDispatcher()
	taskmanager.NewTaskManager(&gatedMultiTurnExecutor{}).RegisterHandlers(d)

	first := protocol.NewMessage(protocol.MessageRoleUser, []protocol.Part{protocol.NewTextPart("start")})
	req1 := newRequest(t, protocol.MethodMessageSend, protocol.SendMessageParams{Message: first})
	res1 := d.Dispatch(context.Background(), req1, nil)
	require.Nil(t, res1.Response.Error)

	var task1 protocol.Task
	require.NoError(t, json.Unmarshal(res1.Response.Result, &task1))
	assert.Equal(t, protocol.TaskStateInputRequired, task1.Status.State)

	second := protocol.NewMessage(protocol.MessageRoleUser, []protocol.Part{protocol.NewTextPart("here is the info")})
	second.TaskID = task1.ID
	second.ContextID = task1.ContextID
	req2 := newRequest(t, protocol.MethodMessageSend, protocol.SendMessageParams{Message: second})
	res2 := d.Dispatch(context.Background(), req2, nil)
	require.Nil(t, res2.Response.Error)

	var task2 protocol.Task
	require.NoError(t, json.Unmarshal(res2.Response.Result, &task2))
	assert.Equal(t, task1.ID, task2.ID)
	assert.Equal(t, protocol.TaskStateCompleted, task2.Status.State)
	require.Len(t, task2.Artifacts, 1)

	// The input-required question from turn one is the only entry on the
	// task's history; resuming by taskId never duplicates or loses it.
	require.Len(t, task2.History, 1)
	assert.Equal(t, task1.ID, task2.History[0].TaskID)
}

// gatedStreamExecutor drives one streaming task in three steps, each
// released by a signal on advance so a test can attach a second subscriber
// at an exact point mid-stream.
type gatedStreamExecutor struct {
	advance chan struct{}
}

func (e *gatedStreamExecutor) Execute(ctx context.Context, execCtx *runtime.ExecutionContext) (protocol.UnaryMessageResult, *runtime.TaskStream, error) {
	stream, _, err := execCtx.Stream(func(s *runtime.TaskStream) {
		_ = s.Start(runtime.UpdateParams{})
		<-e.advance
		artifact := runtime.NewArtifactBuilder().WithParts(protocol.NewTextPart("chunk")).Build()
		_ = s.WriteArtifact(artifact, false, true, true)
		_ = s.Complete(runtime.UpdateParams{})
	}, protocol.TaskStateSubmitted)
	return nil, stream, err
}

func (e *gatedStreamExecutor) Cancel(ctx context.Context, task protocol.Task) (*protocol.Task, error) {
	task.Status = protocol.NewTaskStatus(protocol.TaskStateCanceled, nil)
	return &task, nil
}

func TestResubscribeSeesOnlyLiveEvents(t *testing.T) {
	exec := &gatedStreamExecutor{advance: make(chan struct{})}
	d := runtime.NewDispatcher()
	taskmanager.NewTaskManager(exec).RegisterHandlers(d)

	msg := protocol.NewMessage(protocol.MessageRoleUser, []protocol.Part{protocol.NewTextPart("go")})
	req := newRequest(t, protocol.MethodMessageStream, protocol.SendMessageParams{Message: msg})
	result := d.Dispatch(context.Background(), req, nil)
	require.NotNil(t, result.Stream)

	// Drain the initial task frame and the status-update emitted by Start.
	initial, ok := <-result.Stream
	require.True(t, ok)
	task := initial.(protocol.Task)

	startEvent, ok := <-result.Stream
	require.True(t, ok)
	_, isStatus := startEvent.(protocol.TaskStatusUpdateEvent)
	require.True(t, isStatus)

	// At this point the primary subscriber has already observed the start
	// event; a second subscriber joining now must not see it.
	resubReq := newRequest(t, protocol.MethodTasksResubscribe, protocol.TaskIDParams{ID: task.ID})
	resubResult := d.Dispatch(context.Background(), resubReq, nil)
	require.NotNil(t, resubResult.Stream)

	close(exec.advance)

	var lateEvents []interface{}
	for ev := range resubResult.Stream {
		lateEvents = append(lateEvents, ev)
	}

	require.Len(t, lateEvents, 2)
	_, isArtifact := lateEvents[0].(protocol.TaskArtifactUpdateEvent)
	assert.True(t, isArtifact)
	finalStatus, isStatus := lateEvents[1].(protocol.TaskStatusUpdateEvent)
	require.True(t, isStatus)
	assert.Equal(t, protocol.TaskStateCompleted, finalStatus.Status.State)

	// Drain the primary subscriber to completion too.
	var primaryTail []interface{}
	for ev := range result.Stream {
		primaryTail = append(primaryTail, ev)
	}
	assert.Len(t, primaryTail, 2)
}

func TestResubscribeUnknownTaskFails(t *testing.T) {
	d := runtime.NewDispatcher()
	taskmanager.NewTaskManager(&echoExecutor{}).RegisterHandlers(d)

	req := newRequest(t, protocol.MethodTasksResubscribe, protocol.TaskIDParams{ID: "missing"})
	result := d.Dispatch(context.Background(), req, nil)
	require.NotNil(t, result.Response.Error)
	assert.Equal(t, taskmanager.ErrCodeTaskNotFound, result.Response.Error.Code)
}

func TestTasksGetNotFound(t *testing.T) {
	d := runtime.NewDispatcher()
	taskmanager.NewTaskManager(&echoExecutor{}).RegisterHandlers(d)

	req := newRequest(t, protocol.MethodTasksGet, protocol.TaskQueryParams{ID: "missing"})
	result := d.Dispatch(context.Background(), req, nil)
	require.NotNil(t, result.Response.Error)
	assert.Equal(t, taskmanager.ErrCodeTaskNotFound, result.Response.Error.Code)
}

func TestUnknownMethodIsMethodNotFound(t *testing.T) {
	d := runtime.NewDispatcher()
	taskmanager.NewTaskManager(&echoExecutor{}).RegisterHandlers(d)

	req := newRequest(t, "bogus/method", map[string]interface{}{})
	result := d.Dispatch(context.Background(), req, nil)
	require.NotNil(t, result.Response.Error)
	assert.Equal(t, jsonrpc.CodeMethodNotFound, result.Response.Error.Code)
}
