// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 THL A29 Limited, a Tencent company.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package runtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/a2arun/a2a-go/internal/jsonrpc"
)

// HandlerResult is what a registered method handler returns to the
// Dispatcher: either a single Response payload, or a Stream of frames to
// forward as they arrive. Exactly one should be set.
type HandlerResult struct {
	Response interface{}
	Stream   <-chan interface{}
}

// HandlerFunc implements one JSON-RPC method. extension carries
// transport-level context (auth claims, trace metadata) that does not
// belong in params.
type HandlerFunc func(ctx context.Context, params json.RawMessage, extension map[string]interface{}) (*HandlerResult, error)

// DispatchResult is the outcome of one Dispatch call: Response is set for
// a unary method, Stream for a streaming one.
type DispatchResult struct {
	Response *jsonrpc.Response
	Stream   <-chan interface{}
}

// Dispatcher performs pure JSON-RPC method routing. It never parses
// envelopes itself; it is always given an already-validated request.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	tracer   trace.Tracer
}

// NewDispatcher creates an empty Dispatcher, tracing every Dispatch call
// through the global otel TracerProvider unless overridden by WithTracer.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		tracer:   otel.GetTracerProvider().Tracer("github.com/a2arun/a2a-go/runtime"),
	}
}

// WithTracer overrides the Dispatcher's tracer.
func (d *Dispatcher) WithTracer(tracer trace.Tracer) *Dispatcher {
	d.tracer = tracer
	return d
}

// Register binds a method name to a handler, replacing any prior handler
// for the same name.
func (d *Dispatcher) Register(method string, handler HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[method] = handler
}

// Dispatch routes request to its registered handler. An unknown method
// yields a MethodNotFound response; a handler error yields an InternalError
// response unless the error is already a *jsonrpc.Error, in which case it
// is passed through verbatim.
func (d *Dispatcher) Dispatch(ctx context.Context, request *jsonrpc.Request, extension map[string]interface{}) DispatchResult {
	ctx, span := d.tracer.Start(ctx, "a2a.dispatch",
		trace.WithAttributes(attribute.String("a2a.method", request.Method)))
	defer span.End()

	d.mu.RLock()
	handler, ok := d.handlers[request.Method]
	d.mu.RUnlock()
	if !ok {
		err := jsonrpc.ErrMethodNotFound(request.Method)
		span.SetStatus(codes.Error, err.Error())
		return DispatchResult{Response: jsonrpc.NewErrorResponse(request.ID, err)}
	}

	result, err := handler(ctx, request.Params, extension)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DispatchResult{Response: jsonrpc.NewErrorResponse(request.ID, err)}
	}
	if result.Stream != nil {
		return DispatchResult{Stream: result.Stream}
	}
	return DispatchResult{Response: jsonrpc.NewResponse(request.ID, result.Response)}
}
