// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package auth

import (
	"net/http"

	"github.com/a2arun/a2a-go/log"
)

// authMiddleware wraps a Provider as an HTTP middleware. It satisfies
// server.Middleware structurally (Wrap(http.Handler) http.Handler) without
// this package importing server.
type authMiddleware struct {
	provider Provider
}

// NewMiddleware adapts provider into an HTTP middleware that rejects
// unauthenticated requests with 401 before they reach the JSON-RPC handler.
func NewMiddleware(provider Provider) *authMiddleware {
	return &authMiddleware{provider: provider}
}

// Wrap authenticates r via the wrapped Provider before calling next.
func (m *authMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := m.provider.Authenticate(r)
		if err != nil {
			log.Warnf("Authentication failed for %s %s: %v", r.Method, r.URL.Path, err)
			w.Header().Set("WWW-Authenticate", `Bearer realm="a2a"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
