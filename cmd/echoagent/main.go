// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

// Package main implements a minimal blocking A2A agent: it echoes back
// whatever text it receives and completes the task on the same turn.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/a2arun/a2a-go/log"
	"github.com/a2arun/a2a-go/protocol"
	"github.com/a2arun/a2a-go/runtime"
	"github.com/a2arun/a2a-go/server"
	"github.com/a2arun/a2a-go/taskmanager"
)

// echoExecutor implements taskmanager.AgentExecutor. Every call completes
// synchronously: there is no streaming, no multi-turn resume, nothing to
// cancel.
type echoExecutor struct{}

func (echoExecutor) Execute(
	_ context.Context, execCtx *runtime.ExecutionContext,
) (protocol.UnaryMessageResult, *runtime.TaskStream, error) {
	params, ok := execCtx.Request.Params.(protocol.SendMessageParams)
	if !ok {
		return nil, nil, fmt.Errorf("echoagent: unexpected params type %T", execCtx.Request.Params)
	}

	text := extractText(params.Message)
	if text == "" {
		text = "(empty message)"
	}

	task, err := execCtx.Complete(runtime.UpdateParams{
		Message: &runtime.MessageParams{
			Parts: []protocol.Part{protocol.NewTextPart("Echo: " + text)},
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return *task, nil, nil
}

func (echoExecutor) Cancel(context.Context, protocol.Task) (*protocol.Task, error) {
	return nil, errors.New("echoagent: tasks complete synchronously and cannot be canceled")
}

func extractText(message protocol.Message) string {
	for _, part := range message.Parts {
		if textPart, ok := part.(*protocol.TextPart); ok {
			return textPart.Text
		}
	}
	return ""
}

func boolPtr(b bool) *bool { return &b }

func main() {
	host := "localhost"
	port := 8080

	agentCard := server.AgentCard{
		Name:        "Echo Agent",
		Description: "An agent that echoes back whatever text it is sent.",
		URL:         fmt.Sprintf("http://%s:%d/", host, port),
		Version:     "1.0.0",
		Provider: &server.AgentProvider{
			Organization: "a2a-go Examples",
		},
		Capabilities: server.AgentCapabilities{
			Streaming:              boolPtr(false),
			PushNotifications:      boolPtr(false),
			StateTransitionHistory: boolPtr(false),
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []server.AgentSkill{
			{
				ID:          "echo",
				Name:        "Echo",
				Description: func(s string) *string { return &s }("Repeats back the text it is given."),
				Tags:        []string{"echo", "demo"},
				Examples:    []string{"hello there"},
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
			},
		},
	}

	taskManager := taskmanager.NewTaskManager(echoExecutor{})

	srv, err := server.NewA2AServer(agentCard, taskManager)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Infof("starting echo agent on %s...", addr)
		if err := srv.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sig := <-sigChan
	log.Infof("received signal %v, shutting down", sig)
}
