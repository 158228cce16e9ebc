// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package client

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/a2arun/a2a-go/auth"
)

// defaultTimeout is applied to the client's underlying *http.Client when no
// WithHTTPClient/WithTimeout option overrides it.
const defaultTimeout = 30 * time.Second

// defaultChannelSize is the buffer capacity of the channel returned by
// StreamMessage and ResubscribeTask when WithChannelSize is not supplied.
const defaultChannelSize = 1024

// HTTPReqHandler lets a caller intercept every outbound HTTP request an
// A2AClient sends, e.g. to add tracing, retries, or request logging around
// the default client.Do(req) behavior.
type HTTPReqHandler interface {
	Handle(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error)
}

// defaultHTTPReqHandler issues req through client with no added behavior.
type defaultHTTPReqHandler struct{}

func (defaultHTTPReqHandler) Handle(_ context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	return client.Do(req)
}

// Option configures an A2AClient at construction time.
type Option func(*A2AClient)

// WithHTTPClient overrides the underlying *http.Client. A nil client leaves
// the default in place.
func WithHTTPClient(c *http.Client) Option {
	return func(a *A2AClient) {
		if c != nil {
			a.httpClient = c
		}
	}
}

// WithTimeout sets the underlying *http.Client's timeout. A zero duration
// leaves defaultTimeout in place.
func WithTimeout(d time.Duration) Option {
	return func(a *A2AClient) {
		if d > 0 {
			a.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(a *A2AClient) {
		a.userAgent = ua
	}
}

// WithHTTPReqHandler replaces the default request-issuing behavior.
func WithHTTPReqHandler(h HTTPReqHandler) Option {
	return func(a *A2AClient) {
		if h != nil {
			a.reqHandler = h
		}
	}
}

// WithChannelSize sets the buffer capacity of channels returned by
// StreamMessage and ResubscribeTask.
func WithChannelSize(n int) Option {
	return func(a *A2AClient) {
		if n > 0 {
			a.channelSize = n
		}
	}
}

// WithAuthProvider attaches a custom credential provider, applied to every
// outbound request and given a chance to wrap the underlying transport.
func WithAuthProvider(p auth.ClientProvider) Option {
	return func(a *A2AClient) {
		a.authProvider = p
		if p != nil {
			a.httpClient = p.ConfigureClient(a.httpClient)
		}
	}
}

// WithJWTAuth authenticates every request with a freshly signed HS256 JWT.
func WithJWTAuth(secret []byte, audience, issuer string, lifetime time.Duration) Option {
	return WithAuthProvider(auth.NewJWTAuthProvider(secret, audience, issuer, lifetime))
}

// WithAPIKeyAuth authenticates every request with a static API key header.
func WithAPIKeyAuth(apiKey, headerName string) Option {
	return WithAuthProvider(auth.NewAPIKeyAuthProvider(apiKey, headerName))
}

// WithOAuth2ClientCredentials authenticates every request with a token
// obtained via the OAuth2 client-credentials grant.
func WithOAuth2ClientCredentials(clientID, clientSecret, tokenURL string, scopes []string) Option {
	return WithAuthProvider(auth.NewOAuth2AuthProvider(clientID, clientSecret, tokenURL, scopes))
}

// WithOAuth2TokenSource authenticates every request using an
// already-configured oauth2.Config and token source, for grants
// client-credentials can't express.
func WithOAuth2TokenSource(config *oauth2.Config, tokenSource oauth2.TokenSource) Option {
	return WithAuthProvider(auth.NewOAuth2AuthProviderWithTokenSource(config, tokenSource))
}

// requestOptions accumulates per-call overrides built from RequestOption.
type requestOptions struct {
	headers map[string]string
}

// RequestOption configures a single client call without affecting the
// A2AClient's shared configuration.
type RequestOption func(*requestOptions)

// WithRequestHeader adds a single extra header to one request.
func WithRequestHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithRequestHeaders adds a batch of extra headers to one request.
func WithRequestHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

func applyRequestOptions(opts ...RequestOption) requestOptions {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
