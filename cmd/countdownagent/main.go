// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

// Package main implements a streaming A2A agent: given a positive integer
// it counts down to zero, publishing one artifact per tick, and asks for a
// number via input-required if none was given yet.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/a2arun/a2a-go/log"
	"github.com/a2arun/a2a-go/protocol"
	"github.com/a2arun/a2a-go/runtime"
	"github.com/a2arun/a2a-go/server"
	"github.com/a2arun/a2a-go/taskmanager"
)

const tickInterval = 300 * time.Millisecond

// countdownExecutor implements taskmanager.AgentExecutor. The first turn
// without a usable number parks the task in input-required; any turn that
// does carry one (the first or a resumed one) starts a Task Stream that
// writes one artifact per tick down to zero, then completes.
type countdownExecutor struct{}

func (countdownExecutor) Execute(
	_ context.Context, execCtx *runtime.ExecutionContext,
) (protocol.UnaryMessageResult, *runtime.TaskStream, error) {
	params, ok := execCtx.Request.Params.(protocol.SendMessageParams)
	if !ok {
		return nil, nil, fmt.Errorf("countdownagent: unexpected params type %T", execCtx.Request.Params)
	}

	n, ok := extractNumber(params.Message)
	if !ok || n <= 0 {
		task, err := execCtx.InputRequired(runtime.UpdateParams{
			Message: &runtime.MessageParams{
				Parts: []protocol.Part{protocol.NewTextPart("Send a positive integer to count down from.")},
			},
		})
		if err != nil {
			return nil, nil, err
		}
		return *task, nil, nil
	}

	stream, _, err := execCtx.Stream(func(s *runtime.TaskStream) { runCountdown(s, n) }, protocol.TaskStateSubmitted)
	if err != nil {
		return nil, nil, err
	}
	return nil, stream, nil
}

func runCountdown(s *runtime.TaskStream, n int) {
	for i := n; i >= 0; i-- {
		artifact := runtime.NewArtifactBuilder().
			WithName("countdown").
			WithParts(protocol.NewTextPart(strconv.Itoa(i))).
			Build()
		if err := s.WriteArtifact(artifact, i < n, i == 0, i == n); err != nil {
			log.Warnf("countdownagent: write artifact %d: %v", i, err)
			return
		}
		if i > 0 {
			time.Sleep(tickInterval)
		}
	}
	if err := s.Complete(runtime.UpdateParams{
		Message: &runtime.MessageParams{
			Parts: []protocol.Part{protocol.NewTextPart("Countdown complete.")},
		},
	}); err != nil {
		log.Warnf("countdownagent: complete: %v", err)
	}
}

// Cancel marks task as canceled. It does not interrupt an in-flight
// runCountdown goroutine, which keeps working on its own copy of the task;
// its closing Complete stores the task as completed, replacing the canceled
// state.
func (countdownExecutor) Cancel(_ context.Context, task protocol.Task) (*protocol.Task, error) {
	task.Status = protocol.NewTaskStatus(protocol.TaskStateCanceled, nil)
	return &task, nil
}

func extractNumber(message protocol.Message) (int, bool) {
	for _, part := range message.Parts {
		textPart, ok := part.(*protocol.TextPart)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(textPart.Text)
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

func boolPtr(b bool) *bool { return &b }

func main() {
	host := "localhost"
	port := 8081

	agentCard := server.AgentCard{
		Name:        "Countdown Agent",
		Description: "An agent that counts down from a number you give it, one artifact per tick.",
		URL:         fmt.Sprintf("http://%s:%d/", host, port),
		Version:     "1.0.0",
		Provider: &server.AgentProvider{
			Organization: "a2a-go Examples",
		},
		Capabilities: server.AgentCapabilities{
			Streaming:              boolPtr(true),
			PushNotifications:      boolPtr(false),
			StateTransitionHistory: boolPtr(true),
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []server.AgentSkill{
			{
				ID:          "countdown",
				Name:        "Countdown",
				Description: func(s string) *string { return &s }("Counts down from a given positive integer to zero."),
				Tags:        []string{"countdown", "demo", "streaming"},
				Examples:    []string{"5", "10"},
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
			},
		},
	}

	taskManager := taskmanager.NewTaskManager(countdownExecutor{})

	srv, err := server.NewA2AServer(agentCard, taskManager)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Infof("starting countdown agent on %s...", addr)
		if err := srv.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sig := <-sigChan
	log.Infof("received signal %v, shutting down", sig)
}
