// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

// Package client implements an HTTP/JSON-RPC client for the A2A protocol,
// covering the seven message and task methods an A2AServer exposes plus
// agent card discovery; agent/getAuthenticatedExtendedCard has no client
// method.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/a2arun/a2a-go/auth"
	"github.com/a2arun/a2a-go/internal/jsonrpc"
	"github.com/a2arun/a2a-go/protocol"
	"github.com/a2arun/a2a-go/server"
)

// A2AClient talks JSON-RPC 2.0 over HTTP to a single A2A agent endpoint.
type A2AClient struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	authProvider auth.ClientProvider
	reqHandler   HTTPReqHandler
	channelSize  int
}

// NewA2AClient builds a client targeting baseURL, the agent's JSON-RPC
// endpoint (and the default location to resolve its agent card against).
func NewA2AClient(baseURL string, opts ...Option) (*A2AClient, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	a := &A2AClient{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		userAgent:   "a2a-go-client",
		reqHandler:  defaultHTTPReqHandler{},
		channelSize: defaultChannelSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// rpcID picks the id to stamp on the outgoing envelope: explicit if given,
// otherwise a fresh one.
func rpcID(explicit interface{}) interface{} {
	if explicit != nil {
		return explicit
	}
	return protocol.GenerateRPCID()
}

func (a *A2AClient) newRequest(
	ctx context.Context, method string, accept string, id interface{}, params interface{}, opts ...RequestOption,
) (*http.Request, error) {
	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal %s params: %w", method, err)
	}
	rpcReq := &jsonrpc.Request{
		Message: jsonrpc.Message{JSONRPC: jsonrpc.Version, ID: id},
		Method:  method,
		Params:  paramsBytes,
	}
	body, err := json.Marshal(rpcReq)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("User-Agent", a.userAgent)
	ro := applyRequestOptions(opts...)
	for k, v := range ro.headers {
		httpReq.Header.Set(k, v)
	}
	if a.authProvider != nil {
		if _, err := a.authProvider.Authenticate(httpReq); err != nil {
			return nil, fmt.Errorf("authenticate %s request: %w", method, err)
		}
	}
	return httpReq, nil
}

// call performs one non-streaming JSON-RPC round trip and unmarshals the
// result into out (out must be a pointer, or nil to discard the result).
func (a *A2AClient) call(
	ctx context.Context, method string, id interface{}, params interface{}, out interface{}, opts ...RequestOption,
) error {
	httpReq, err := a.newRequest(ctx, method, "application/json", id, params, opts...)
	if err != nil {
		return err
	}
	resp, err := a.reqHandler.Handle(ctx, a.httpClient, httpReq)
	if err != nil {
		return fmt.Errorf("send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected http status %d calling %s: %s", resp.StatusCode, method, string(respBody))
	}

	var rpcResp jsonrpc.Response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out == nil || len(rpcResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("unmarshal %s result: %w", method, err)
	}
	return nil
}

// SendMessage sends a message to the agent and waits for a single result:
// either a Message (a direct reply) or a Task (the work item the message
// started), discriminated by the result's "kind" field on the wire.
func (a *A2AClient) SendMessage(
	ctx context.Context, params protocol.SendMessageParams, opts ...RequestOption,
) (*protocol.MessageResult, error) {
	var result protocol.MessageResult
	if err := a.call(ctx, protocol.MethodMessageSend, rpcID(params.RPCID), params, &result, opts...); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTasks retrieves a task's current state and history.
func (a *A2AClient) GetTasks(
	ctx context.Context, params protocol.TaskQueryParams, opts ...RequestOption,
) (*protocol.Task, error) {
	var task protocol.Task
	if err := a.call(ctx, protocol.MethodTasksGet, rpcID(params.RPCID), params, &task, opts...); err != nil {
		return nil, err
	}
	return &task, nil
}

// CancelTasks requests cancellation of a running task.
func (a *A2AClient) CancelTasks(
	ctx context.Context, params protocol.TaskIDParams, opts ...RequestOption,
) (*protocol.Task, error) {
	var task protocol.Task
	if err := a.call(ctx, protocol.MethodTasksCancel, rpcID(params.RPCID), params, &task, opts...); err != nil {
		return nil, err
	}
	return &task, nil
}

// SetPushNotification registers or replaces a task's push notification config.
func (a *A2AClient) SetPushNotification(
	ctx context.Context, params protocol.TaskPushNotificationConfig, opts ...RequestOption,
) (*protocol.TaskPushNotificationConfig, error) {
	var cfg protocol.TaskPushNotificationConfig
	if err := a.call(
		ctx, protocol.MethodTasksPushNotificationConfigSet, rpcID(params.RPCID), params, &cfg, opts...,
	); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetPushNotification retrieves a task's push notification config.
func (a *A2AClient) GetPushNotification(
	ctx context.Context, params protocol.TaskIDParams, opts ...RequestOption,
) (*protocol.TaskPushNotificationConfig, error) {
	var cfg protocol.TaskPushNotificationConfig
	if err := a.call(
		ctx, protocol.MethodTasksPushNotificationConfigGet, rpcID(params.RPCID), params, &cfg, opts...,
	); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetAgentCard fetches an agent card. An empty cardURL resolves to the
// client's base URL with protocol.AgentCardPath; a relative cardURL resolves
// against the base URL; an absolute cardURL is fetched verbatim.
func (a *A2AClient) GetAgentCard(ctx context.Context, cardURL string) (*server.AgentCard, error) {
	resolved, err := a.resolveCardURL(cardURL)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, fmt.Errorf("build agent card request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", a.userAgent)

	resp, err := a.reqHandler.Handle(ctx, a.httpClient, httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch agent card: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read agent card response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch agent card: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var card server.AgentCard
	if err := json.Unmarshal(body, &card); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agent card: %w", err)
	}
	return &card, nil
}

func (a *A2AClient) resolveCardURL(cardURL string) (string, error) {
	if cardURL == "" {
		cardURL = protocol.AgentCardPath
	}
	parsed, err := url.Parse(cardURL)
	if err != nil {
		return "", fmt.Errorf("invalid agent card URL %q: %w", cardURL, err)
	}
	if parsed.IsAbs() {
		return cardURL, nil
	}
	base, err := url.Parse(a.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid agent card URL: client base URL %q: %w", a.baseURL, err)
	}
	return base.ResolveReference(&url.URL{Path: ensureLeadingSlash(parsed.Path)}).String(), nil
}

func ensureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
