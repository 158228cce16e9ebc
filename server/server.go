// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

// Package server provides the A2A server implementation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a2arun/a2a-go/auth"
	"github.com/a2arun/a2a-go/internal/jsonrpc"
	"github.com/a2arun/a2a-go/log"
	"github.com/a2arun/a2a-go/protocol"
	"github.com/a2arun/a2a-go/runtime"
	"github.com/a2arun/a2a-go/taskmanager"
)

var errUnknownEvent = errors.New("unknown event type")

// A2AServer implements the HTTP server for the A2A protocol.
// It serves the agent card and routes JSON-RPC calls to a runtime.Dispatcher
// wired up by a taskmanager.TaskManager.
type A2AServer struct {
	agentCard        AgentCard          // Metadata for this agent.
	dispatcher       *runtime.Dispatcher // Routes JSON-RPC methods to their handlers.
	httpServer       *http.Server        // Underlying HTTP server.
	corsEnabled      bool                // Flag to enable/disable CORS headers.
	jsonRPCEndpoint  string              // Path for the JSON-RPC endpoint.
	agentCardPath    string              // Path for the agent card endpoint.
	oldAgentCardPath string              // Path for the old agent card endpoint.
	readTimeout      time.Duration       // HTTP server read timeout.
	writeTimeout     time.Duration       // HTTP server write timeout.
	idleTimeout      time.Duration       // HTTP server idle timeout.
	agentCardHandler http.Handler        // Handler for agent card endpoint.
	customRouter     HTTPRouter          // Custom router for advanced routing (e.g., Gorilla Mux).

	// Authentication related fields
	middleWare         []Middleware                         // Authentication middlewares.
	pushAuth            *auth.PushNotificationAuthenticator // Push notification authenticator.
	jwksEnabled         bool                                 // Flag to enable/disable JWKS endpoint.
	jwksEndpoint        string                               // Path for the JWKS endpoint.
	extensionExtractor  func(*http.Request) map[string]interface{} // Builds the opaque extension map for a request.

	// Extended card related fields
	authenticatedCardHandler func(ctx context.Context, baseCard AgentCard) (AgentCard, error) // Dynamic card modifier function.
}

// NewA2AServer creates a new A2AServer instance with the given agent card
// and task manager. taskManager's seven A2A handlers are registered onto a
// fresh runtime.Dispatcher that the server routes every JSON-RPC call through.
// Exported function.
func NewA2AServer(agentCard AgentCard, taskManager *taskmanager.TaskManager, opts ...Option) (*A2AServer, error) {
	if taskManager == nil {
		return nil, errors.New("NewA2AServer requires a non-nil taskManager")
	}
	dispatcher := runtime.NewDispatcher()
	taskManager.RegisterHandlers(dispatcher)

	server := &A2AServer{
		agentCard:        agentCard,
		dispatcher:       dispatcher,
		corsEnabled:      true, // Enable CORS by default for easier development.
		jsonRPCEndpoint:  protocol.DefaultJSONRPCPath,
		agentCardPath:    protocol.AgentCardPath,
		oldAgentCardPath: protocol.OldAgentCardPath,
		readTimeout:      defaultReadTimeout,
		writeTimeout:     defaultWriteTimeout,
		idleTimeout:      defaultIdleTimeout,
		jwksEnabled:      false,
		jwksEndpoint:     protocol.JWKSPath,
	}

	// Store the original paths before applying options.
	originalJSONRPCEndpoint := server.jsonRPCEndpoint
	originalAgentCardPath := server.agentCardPath
	originalJWKSEndpoint := server.jwksEndpoint

	// Apply options first (WithBasePath has higher priority).
	for _, opt := range opts {
		opt(server)
	}

	// If paths haven't been changed by options (e.g., WithBasePath),
	// then extract base path from agent card URL as fallback.
	if server.jsonRPCEndpoint == originalJSONRPCEndpoint &&
		server.agentCardPath == originalAgentCardPath &&
		server.jwksEndpoint == originalJWKSEndpoint {

		basePath := extractBasePathFromURL(agentCard.URL)
		if basePath != "" {
			// Configure endpoints with the extracted base path.
			server.jsonRPCEndpoint = basePath + "/"
			server.agentCardPath = basePath + protocol.AgentCardPath
			server.jwksEndpoint = basePath + protocol.JWKSPath
			server.oldAgentCardPath = basePath + protocol.OldAgentCardPath
		}
	}

	// Initialize push notification authenticator.
	if server.jwksEnabled {
		if server.pushAuth == nil {
			// Only generate a new authenticator if one wasn't supplied
			server.pushAuth = auth.NewPushNotificationAuthenticator()
			if err := server.pushAuth.GenerateKeyPair(); err != nil {
				return nil, fmt.Errorf("failed to generate JWKS key pair: %w", err)
			}
		}
	}
	return server, nil
}

// Start begins listening for HTTP requests on the specified network address.
// It blocks until the server is stopped via Stop() or an error occurs.
func (s *A2AServer) Start(address string) error {
	s.httpServer = &http.Server{
		Addr:         address,
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
	}

	log.Infof("Starting A2A server listening on %s...", address)
	// ListenAndServe blocks. It returns http.ErrServerClosed on graceful shutdown.
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server ListenAndServe error: %w", err)
	}
	log.Info("A2A server stopped.")
	return nil
}

// Stop gracefully shuts down the running HTTP server.
// It waits for active connections to finish within the provided context's deadline.
func (s *A2AServer) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return errors.New("A2A server not running")
	}
	log.Info("Attempting graceful shutdown of A2A server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	log.Info("A2A server shutdown complete.")
	return nil
}

// Handler returns an http.Handler for the server.
// This can be used to integrate the A2A server into existing HTTP servers.
func (s *A2AServer) Handler() http.Handler {
	// If custom router is provided, use it; otherwise, use default router.
	// Mainly used for provide multi endpoints support.
	var router HTTPRouter
	if s.customRouter != nil {
		router = s.customRouter
	} else {
		router = http.NewServeMux()
	}

	// Endpoint for agent metadata (.well-known convention).
	if s.agentCardHandler != nil {
		router.Handle(s.agentCardPath, s.agentCardHandler)
		router.Handle(s.oldAgentCardPath, s.agentCardHandler)
	} else {
		router.Handle(s.agentCardPath, http.HandlerFunc(s.handleAgentCard))
		router.Handle(s.oldAgentCardPath, http.HandlerFunc(s.handleAgentCard))
	}

	// JWKS endpoint for JWT authentication if enabled.
	if s.jwksEnabled && s.pushAuth != nil {
		router.Handle(s.jwksEndpoint, http.HandlerFunc(s.pushAuth.HandleJWKS))
	}

	// Main JSON-RPC endpoint (configurable path) with optional authentication.
	if len(s.middleWare) > 0 {
		// Apply authentication middleware chain to JSON-RPC endpoint.
		chain := MiddlewareChain(s.middleWare)
		router.Handle(s.jsonRPCEndpoint, chain.Wrap(http.HandlerFunc(s.handleJSONRPC)))
	} else {
		// No authentication required.
		router.Handle(s.jsonRPCEndpoint, http.HandlerFunc(s.handleJSONRPC))
	}
	return router
}

// handleAgentCard serves the agent's metadata card as JSON.
// Corresponds to GET /.well-known/agent-card.json in A2A Spec.
func (s *A2AServer) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	if s.corsEnabled {
		setCORSHeaders(w)
	}
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(s.agentCard); err != nil {
		log.Errorf("Failed to encode agent card: %v", err)
		// Avoid writing JSON-RPC error here; it's a standard HTTP endpoint.
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// handleJSONRPC is the main handler for all JSON-RPC 2.0 requests.
// Routes methods like message/send, tasks/get, etc., as defined in A2A Spec.
func (s *A2AServer) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	// --- CORS Handling ---
	if s.corsEnabled {
		setCORSHeaders(w)
		// Handle browser preflight requests.
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	// Validate request basics
	if !s.validateJSONRPCRequest(w, r) {
		return
	}

	// Read and parse JSON-RPC request
	request, err := s.parseJSONRPCRequest(w, r.Body)
	if err != nil {
		return
	}

	// Route to appropriate handler based on method
	ctx := context.WithValue(r.Context(), httpRequestContextKey{}, r)
	s.routeJSONRPCMethod(ctx, w, request)
}

// validateJSONRPCRequest validates basic HTTP requirements for JSON-RPC.
// Returns true if valid, writes error and returns false if invalid.
func (s *A2AServer) validateJSONRPCRequest(w http.ResponseWriter, r *http.Request) bool {
	// Check HTTP method
	if r.Method != http.MethodPost {
		s.writeJSONRPCError(w, nil,
			jsonrpc.ErrMethodNotFound(fmt.Sprintf("HTTP method %s not allowed, use POST", r.Method)))
		return false
	}

	// Check Content-Type using mime parsing
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		log.Warnf("Rejecting request due to invalid Content-Type: '%s' (Parse Err: %v)", contentType, err)
		s.writeJSONRPCError(w, nil,
			jsonrpc.ErrInvalidRequest(
				fmt.Sprintf("Content-Type header must be application/json, got: %s", contentType)))
		return false
	}

	return true
}

// parseJSONRPCRequest reads the request body and parses it into a JSON-RPC request.
// Returns the request and nil if successful, or nil and error if parsing failed.
func (s *A2AServer) parseJSONRPCRequest(w http.ResponseWriter, body io.ReadCloser) (jsonrpc.Request, error) {
	var request jsonrpc.Request

	// Read the request body
	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		s.writeJSONRPCError(w, nil,
			jsonrpc.ErrParseError(fmt.Sprintf("failed to read request body: %v", err)))
		return request, err
	}

	// It's important to close the body, even though ReadAll consumes it
	defer body.Close()

	// Parse the JSON request
	if err := json.Unmarshal(bodyBytes, &request); err != nil {
		s.writeJSONRPCError(w, nil,
			jsonrpc.ErrParseError(fmt.Sprintf("failed to parse JSON request: %v", err)))
		return request, err
	}

	// Validate JSON-RPC version
	if request.JSONRPC != jsonrpc.Version {
		s.writeJSONRPCError(w, request.ID,
			jsonrpc.ErrInvalidRequest(fmt.Sprintf("jsonrpc field must be '%s'", jsonrpc.Version)))
		return request, fmt.Errorf("invalid JSON-RPC version")
	}

	return request, nil
}

// routeJSONRPCMethod routes the request to the appropriate handler based on the method.
// agent/getAuthenticatedExtendedCard is served directly (it is not one of the
// seven methods a TaskManager registers); everything else is handed to the
// runtime.Dispatcher, which may answer with a single response or a stream.
func (s *A2AServer) routeJSONRPCMethod(ctx context.Context, w http.ResponseWriter, request jsonrpc.Request) {
	log.Debugf("Received JSON-RPC request (ID: %v, Method: %s)", request.ID, request.Method)

	if request.Method == protocol.MethodAgentAuthenticatedExtendedCard {
		s.handleAgentGetAuthenticatedExtendedCard(ctx, w, request)
		return
	}

	var extension map[string]interface{}
	if s.extensionExtractor != nil {
		if httpReq, ok := ctx.Value(httpRequestContextKey{}).(*http.Request); ok {
			extension = s.extensionExtractor(httpReq)
		}
	}

	result := s.dispatcher.Dispatch(ctx, &request, extension)
	if result.Stream != nil {
		s.serveStream(ctx, w, request, result.Stream)
		return
	}
	s.writeRawResponse(w, result.Response)
}

// serveStream drains a runtime event stream over Server-Sent Events.
// Each value off events must implement protocol.StreamingMessageResult.
func (s *A2AServer) serveStream(ctx context.Context, w http.ResponseWriter, request jsonrpc.Request, events <-chan interface{}) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("Streaming is not supported by the underlying http responseWriter")
		s.writeJSONRPCError(w, request.ID, jsonrpc.ErrInternalError("server does not support streaming"))
		return
	}
	log.Debugf("SSE stream opened for request ID: %v)", request.ID)
	handleSSEStream(ctx, s.corsEnabled, w, flusher, toStreamingEvents(events), fmt.Sprintf("%v", request.ID))
}

// toStreamingEvents wraps a runtime event channel's values as
// protocol.StreamingMessageEvent, skipping any value that does not carry a
// StreamingMessageResult (defensive; the taskmanager package never emits
// one).
func toStreamingEvents(events <-chan interface{}) <-chan protocol.StreamingMessageEvent {
	out := make(chan protocol.StreamingMessageEvent)
	go func() {
		defer close(out)
		for raw := range events {
			result, ok := raw.(protocol.StreamingMessageResult)
			if !ok {
				log.Warnf("Dropping stream value of unexpected type %T", raw)
				continue
			}
			out <- protocol.StreamingMessageEvent{Result: result}
		}
	}()
	return out
}

// httpRequestContextKey is the context key under which the inbound
// *http.Request is stashed so extensionExtractor can inspect headers.
type httpRequestContextKey struct{}

// writeRawResponse encodes and writes an already-built JSON-RPC response,
// mapping its error code (if any) to an HTTP status.
func (s *A2AServer) writeRawResponse(w http.ResponseWriter, response *jsonrpc.Response) {
	if response == nil {
		s.writeJSONRPCError(w, nil, jsonrpc.ErrInternalError("dispatcher returned no response"))
		return
	}
	if response.Error != nil {
		s.writeJSONRPCError(w, response.ID, response.Error)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Errorf("Failed to write JSON-RPC success response (ID: %v): %v", response.ID, err)
	}
}

// writeJSONRPCResponse encodes and writes a successful JSON-RPC response.
func (s *A2AServer) writeJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := jsonrpc.NewResponse(id, result)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK) // Success is always 200 OK for JSON-RPC itself.
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Log error, but can't change response if headers are already sent.
		log.Errorf("Failed to write JSON-RPC success response (ID: %v): %v", id, err)
	}
}

// writeJSONRPCError encodes and writes a JSON-RPC error response.
// It attempts to set an appropriate HTTP status code based on the JSON-RPC error code.
func (s *A2AServer) writeJSONRPCError(w http.ResponseWriter, id interface{}, err *jsonrpc.Error) {
	if err == nil {
		// Should not happen, but handle defensively.
		err = jsonrpc.ErrInternalError("writeJSONRPCError called with nil error")
		log.Errorf("Programming ERROR: writeJSONRPCError called with nil error (Request ID: %v)", id)
	}
	response := jsonrpc.NewErrorResponse(id, err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	// Map JSON-RPC error codes to HTTP status codes where appropriate.
	httpStatus := http.StatusInternalServerError // Default for Internal errors.
	switch err.Code {
	case jsonrpc.CodeParseError:
		httpStatus = http.StatusBadRequest
	case jsonrpc.CodeInvalidRequest:
		httpStatus = http.StatusBadRequest
	case jsonrpc.CodeMethodNotFound:
		httpStatus = http.StatusNotFound
	case jsonrpc.CodeInvalidParams:
		httpStatus = http.StatusBadRequest
		// Add other mappings for custom server errors (-32000 to -32099) if desired.
	}
	w.WriteHeader(httpStatus)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		// Log error, but can't change response now.
		log.Errorf("Failed to write JSON-RPC error response (ID: %v, Code: %d): %v", id, err.Code, encodeErr)
	}
}

// setCORSHeaders adds permissive CORS headers for development/testing.
// WARNING: This is insecure for production. Configure origins explicitly.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*") // INSECURE
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	// Max-Age might be useful but not strictly necessary here.
}

// handleSSEStream handles an SSE stream for a task, including setup and event forwarding.
// It sets the appropriate headers, logs connection status, and forwards events to the client.
func handleSSEStream(
	ctx context.Context,
	corsEnabled bool,
	w http.ResponseWriter,
	flusher http.Flusher,
	eventsChan <-chan protocol.StreamingMessageEvent,
	rpcID string) {
	// Set headers for SSE.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	if corsEnabled {
		setCORSHeaders(w)
	}

	// Indicate successful subscription setup.
	w.WriteHeader(http.StatusOK)
	flusher.Flush() // Send headers immediately.

	// Use request context to detect client disconnection.
	clientClosed := ctx.Done()

	// Use optimized tunnel for batching events
	tunnel := newSSETunnel(w, flusher, rpcID)
	tunnel.start(ctx, eventsChan, clientClosed)
}

// extractBasePathFromURL extracts the base path from an agent card URL.
// For example, "http://localhost:8080/agent/api/v2/myagent" returns "/agent/api/v2/myagent".
func extractBasePathFromURL(agentURL string) string {
	if agentURL == "" {
		return ""
	}

	// Parse the URL.
	parsedURL, err := url.Parse(agentURL)
	if err != nil {
		log.Warnf("Failed to parse agent card URL '%s': %v", agentURL, err)
		return ""
	}

	// Validate that it's a proper absolute URL (has scheme and host)
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		log.Warnf("Invalid agent card URL '%s': missing scheme or host", agentURL)
		return ""
	}

	// Extract the path and clean it.
	basePath := parsedURL.Path

	// Remove trailing slash unless it's the root path.
	if len(basePath) > 1 && strings.HasSuffix(basePath, "/") {
		basePath = strings.TrimSuffix(basePath, "/")
	}

	// If the path is empty or just "/", return empty string (no base path).
	if basePath == "" || basePath == "/" {
		return ""
	}

	return basePath
}

// handleAgentGetAuthenticatedExtendedCard handles the agent/getAuthenticatedExtendedCard JSON-RPC method.
// This method returns an extended version of the agent card for authenticated users.
func (s *A2AServer) handleAgentGetAuthenticatedExtendedCard(
	ctx context.Context,
	w http.ResponseWriter,
	request jsonrpc.Request,
) {
	// Check if the agent supports authenticated extended cards
	if s.agentCard.SupportsAuthenticatedExtendedCard == nil || !*s.agentCard.SupportsAuthenticatedExtendedCard {
		log.Warnf("Authenticated extended card not configured (Request ID: %v)", request.ID)
		s.writeJSONRPCError(w, request.ID, taskmanager.ErrAuthenticatedExtendedCardNotConfigured())
		return
	}

	baseCard := s.agentCard

	// Apply dynamic modifications if a card modifier is configured
	var cardToServe AgentCard
	if s.authenticatedCardHandler != nil {
		modifiedCard, err := s.authenticatedCardHandler(ctx, baseCard)
		if err != nil {
			log.Errorf("Error applying authenticated card handler: %v", err)
			s.writeJSONRPCError(w, request.ID,
				jsonrpc.ErrInternalError(fmt.Sprintf("failed to handle extended card: %v", err)))
			return
		}
		cardToServe = modifiedCard
	} else {
		cardToServe = baseCard
	}

	log.Debugf("Serving authenticated extended card (Request ID: %v)", request.ID)
	s.writeJSONRPCResponse(w, request.ID, cardToServe)
}
