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

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// JWTProvider authenticates bearer tokens signed by an external identity
// provider. Verification uses either a JWKS endpoint (the common case for an
// OAuth2/OIDC issuer) or a static HMAC secret.
type JWTProvider struct {
	Issuer   string
	Audience string

	// JWKSURL, when set, is fetched on every request to resolve the
	// token's "kid" to a verification key.
	JWKSURL string

	// StaticSecret, when JWKSURL is empty, verifies HS256 tokens against
	// a shared secret instead of a JWKS endpoint.
	StaticSecret []byte
}

// Authenticate verifies the request's bearer token and stores its subject
// and claims as an Identity on the returned context.
func (p *JWTProvider) Authenticate(r *http.Request) (context.Context, error) {
	token, ok := bearerToken(r)
	if !ok {
		return nil, fmt.Errorf("missing bearer token")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, p.keyFunc, jwt.WithIssuer(p.Issuer), jwt.WithAudience(p.Audience))
	if err != nil {
		return nil, fmt.Errorf("invalid bearer token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid bearer token")
	}

	subject, _ := claims.GetSubject()
	id := Identity{
		Subject:   subject,
		Scheme:    "bearer",
		Extension: map[string]interface{}{"claims": claims},
	}
	return WithIdentity(r.Context(), id), nil
}

func (p *JWTProvider) keyFunc(token *jwt.Token) (interface{}, error) {
	if p.JWKSURL != "" {
		return p.keyFromJWKS(token)
	}
	if len(p.StaticSecret) == 0 {
		return nil, fmt.Errorf("no JWKS URL or static secret configured")
	}
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v for static secret", token.Method.Alg())
	}
	return p.StaticSecret, nil
}

func (p *JWTProvider) keyFromJWKS(token *jwt.Token) (interface{}, error) {
	kid, ok := token.Header["kid"].(string)
	if !ok || kid == "" {
		return nil, fmt.Errorf("token header has no kid")
	}
	set, err := jwk.Fetch(context.Background(), p.JWKSURL)
	if err != nil {
		return nil, fmt.Errorf("fetch JWKS from %s: %w", p.JWKSURL, err)
	}
	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("kid %q not found in JWKS", kid)
	}
	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("decode JWKS key %q: %w", kid, err)
	}
	return raw, nil
}

// APIKeyProvider authenticates requests by comparing a static header value
// against a set of known keys, matching protocol.APIKeyAuthInfo's scheme.
type APIKeyProvider struct {
	HeaderName string
	ValidKeys  map[string]string // key value -> subject name
}

// Authenticate checks r's APIKeyProvider.HeaderName header against ValidKeys.
func (p *APIKeyProvider) Authenticate(r *http.Request) (context.Context, error) {
	key := r.Header.Get(p.HeaderName)
	if key == "" {
		return nil, fmt.Errorf("missing %s header", p.HeaderName)
	}
	subject, ok := p.ValidKeys[key]
	if !ok {
		return nil, fmt.Errorf("unrecognized API key")
	}
	return WithIdentity(r.Context(), Identity{Subject: subject, Scheme: "apiKey"}), nil
}
