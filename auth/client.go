// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// User identifies the caller a ClientProvider authenticated a request as.
// Unrelated to Identity: Identity is what a server-side Provider attaches to
// an inbound request's context, User is what a client-side ClientProvider
// hands back after decorating an outbound one.
type User struct {
	ID string
}

// ClientProvider decorates outbound requests with credentials. Authenticate
// attaches credentials to a single request and reports the identity they
// assert; ConfigureClient optionally wraps the underlying *http.Client's
// transport (e.g. to refresh an OAuth2 token automatically).
type ClientProvider interface {
	Authenticate(r *http.Request) (*User, error)
	ConfigureClient(client *http.Client) *http.Client
}

// JWTAuthProvider signs a fresh JWT for every outbound request using a
// shared HMAC secret, matching the counterpart JWTProvider on the server
// side when it verifies via StaticSecret rather than a JWKS endpoint.
type JWTAuthProvider struct {
	Secret        []byte
	Audience      string
	Issuer        string
	TokenLifetime time.Duration
	Subject       string
}

// NewJWTAuthProvider returns a JWTAuthProvider signing HS256 tokens with secret.
func NewJWTAuthProvider(secret []byte, audience, issuer string, lifetime time.Duration) *JWTAuthProvider {
	return &JWTAuthProvider{Secret: secret, Audience: audience, Issuer: issuer, TokenLifetime: lifetime, Subject: "a2a-client"}
}

// Authenticate mints a bearer token and attaches it to r's Authorization header.
func (p *JWTAuthProvider) Authenticate(r *http.Request) (*User, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": p.Subject,
		"iat": now.Unix(),
		"exp": now.Add(p.TokenLifetime).Unix(),
	}
	if p.Issuer != "" {
		claims["iss"] = p.Issuer
	}
	if p.Audience != "" {
		claims["aud"] = p.Audience
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign JWT: %w", err)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return &User{ID: p.Subject}, nil
}

// ConfigureClient returns client unchanged; JWTAuthProvider attaches its
// token per-request in Authenticate rather than via a wrapped transport.
func (p *JWTAuthProvider) ConfigureClient(client *http.Client) *http.Client {
	return client
}

// APIKeyAuthProvider attaches a static API key header to every outbound request.
type APIKeyAuthProvider struct {
	APIKey     string
	HeaderName string
}

// NewAPIKeyAuthProvider returns an APIKeyAuthProvider sending apiKey in headerName.
func NewAPIKeyAuthProvider(apiKey, headerName string) *APIKeyAuthProvider {
	if headerName == "" {
		headerName = "X-API-Key"
	}
	return &APIKeyAuthProvider{APIKey: apiKey, HeaderName: headerName}
}

// Authenticate sets r's API key header.
func (p *APIKeyAuthProvider) Authenticate(r *http.Request) (*User, error) {
	r.Header.Set(p.HeaderName, p.APIKey)
	return &User{ID: "api-key"}, nil
}

// ConfigureClient returns client unchanged.
func (p *APIKeyAuthProvider) ConfigureClient(client *http.Client) *http.Client {
	return client
}

// OAuth2AuthProvider attaches an OAuth2 bearer token sourced either from a
// client-credentials flow or a caller-supplied oauth2.TokenSource.
type OAuth2AuthProvider struct {
	config      *oauth2.Config
	tokenSource oauth2.TokenSource
}

// NewOAuth2AuthProvider builds an OAuth2AuthProvider that fetches tokens via
// the client-credentials grant.
func NewOAuth2AuthProvider(clientID, clientSecret, tokenURL string, scopes []string) *OAuth2AuthProvider {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	return &OAuth2AuthProvider{tokenSource: cfg.TokenSource(context.Background())}
}

// NewOAuth2AuthProviderWithTokenSource builds an OAuth2AuthProvider around an
// existing oauth2.Config and TokenSource, for flows client-credentials can't
// express (authorization code, device code, a statically refreshed token).
func NewOAuth2AuthProviderWithTokenSource(config *oauth2.Config, tokenSource oauth2.TokenSource) *OAuth2AuthProvider {
	return &OAuth2AuthProvider{config: config, tokenSource: tokenSource}
}

// Authenticate attaches the current OAuth2 token to r's Authorization header.
func (p *OAuth2AuthProvider) Authenticate(r *http.Request) (*User, error) {
	token, err := p.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("fetch OAuth2 token: %w", err)
	}
	token.SetAuthHeader(r)
	return &User{ID: "oauth2-client"}, nil
}

// ConfigureClient wraps client's transport so every request it sends carries
// a valid, auto-refreshed OAuth2 token without each call site needing to call
// Authenticate explicitly.
func (p *OAuth2AuthProvider) ConfigureClient(client *http.Client) *http.Client {
	if client == nil {
		client = &http.Client{}
	}
	transport := client.Transport
	wrapped := *client
	wrapped.Transport = &oauth2.Transport{Source: p.tokenSource, Base: transport}
	return &wrapped
}
