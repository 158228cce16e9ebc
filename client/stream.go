// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a2arun/a2a-go/internal/sse"
	"github.com/a2arun/a2a-go/log"
	"github.com/a2arun/a2a-go/protocol"
)

// StreamMessage sends a message to the agent and streams back every frame of
// the resulting task's lifecycle (status updates, artifacts) as it happens.
func (a *A2AClient) StreamMessage(
	ctx context.Context, params protocol.SendMessageParams, opts ...RequestOption,
) (<-chan protocol.StreamingMessageEvent, error) {
	return a.streamCall(ctx, protocol.MethodMessageStream, rpcID(params.RPCID), params, opts...)
}

// ResubscribeTask reattaches to the event stream of a task that is still
// active. It receives only the status updates and artifacts published after
// it attaches; earlier events are not replayed.
func (a *A2AClient) ResubscribeTask(
	ctx context.Context, params protocol.TaskIDParams, opts ...RequestOption,
) (<-chan protocol.StreamingMessageEvent, error) {
	return a.streamCall(ctx, protocol.MethodTasksResubscribe, rpcID(params.RPCID), params, opts...)
}

func (a *A2AClient) streamCall(
	ctx context.Context, method string, id interface{}, params interface{}, opts ...RequestOption,
) (<-chan protocol.StreamingMessageEvent, error) {
	httpReq, err := a.newRequest(ctx, method, "text/event-stream", id, params, opts...)
	if err != nil {
		return nil, err
	}

	resp, err := a.reqHandler.Handle(ctx, a.httpClient, httpReq)
	if err != nil {
		return nil, fmt.Errorf("send %s request: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected http status %d calling %s: %s", resp.StatusCode, method, string(body))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		resp.Body.Close()
		return nil, fmt.Errorf(
			"server did not respond with Content-Type 'text/event-stream' for %s, got %q", method, ct,
		)
	}

	ch := make(chan protocol.StreamingMessageEvent, a.channelSize)
	go a.pumpStream(ctx, method, resp.Body, ch)
	return ch, nil
}

// pumpStream reads frames off body until EOF, context cancellation, or a
// malformed frame, decoding each into a StreamingMessageEvent and forwarding
// it to ch before closing both the channel and the response body.
func (a *A2AClient) pumpStream(
	ctx context.Context, method string, body io.ReadCloser, ch chan<- protocol.StreamingMessageEvent,
) {
	defer close(ch)
	defer body.Close()

	reader := sse.NewEventReader(body)
	for {
		data, _, err := reader.ReadEvent()
		if len(data) > 0 {
			event, decodeErr := decodeStreamingEvent(data)
			if decodeErr != nil {
				log.Warnf("%s: discarding malformed SSE frame: %v", method, decodeErr)
			} else {
				select {
				case ch <- event:
				case <-ctx.Done():
					return
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				log.Warnf("%s: SSE stream ended with error: %v", method, err)
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// decodeStreamingEvent accepts either a raw StreamingMessageResult payload
// or one wrapped in a JSON-RPC response envelope (the shape an A2AServer's
// SSE tunnel actually sends), unwrapping the latter before decoding.
func decodeStreamingEvent(data []byte) (protocol.StreamingMessageEvent, error) {
	var envelope struct {
		JSONRPC string          `json:"jsonrpc"`
		Result  json.RawMessage `json:"result"`
	}
	payload := data
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.JSONRPC != "" && len(envelope.Result) > 0 {
		payload = envelope.Result
	}

	var event protocol.StreamingMessageEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return protocol.StreamingMessageEvent{}, fmt.Errorf("unmarshal streaming event: %w", err)
	}
	return event, nil
}
