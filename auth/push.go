// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// PushNotificationAuthenticator signs a bearer token the server attaches to
// outbound push notifications, and serves the matching public key at the
// JWKS endpoint so receivers can verify it without a shared secret.
type PushNotificationAuthenticator struct {
	mu         sync.RWMutex
	privateKey *ecdsa.PrivateKey
	publicJWK  jwk.Key
	kid        string
}

// NewPushNotificationAuthenticator returns an authenticator with no key pair
// yet generated; call GenerateKeyPair before use.
func NewPushNotificationAuthenticator() *PushNotificationAuthenticator {
	return &PushNotificationAuthenticator{}
}

// GenerateKeyPair creates a fresh ES256 key pair for signing push
// notification tokens and publishing the JWKS.
func (a *PushNotificationAuthenticator) GenerateKeyPair() error {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate ECDSA key: %w", err)
	}
	pub, err := jwk.FromRaw(&key.PublicKey)
	if err != nil {
		return fmt.Errorf("convert public key to JWK: %w", err)
	}
	kid := uuid.NewString()
	if err := pub.Set(jwk.KeyIDKey, kid); err != nil {
		return fmt.Errorf("set kid: %w", err)
	}
	if err := pub.Set(jwk.AlgorithmKey, "ES256"); err != nil {
		return fmt.Errorf("set alg: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.privateKey = key
	a.publicJWK = pub
	a.kid = kid
	return nil
}

// HandleJWKS serves the authenticator's public key as a JWKS document.
func (a *PushNotificationAuthenticator) HandleJWKS(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	pub := a.publicJWK
	a.mu.RUnlock()

	if pub == nil {
		http.Error(w, "JWKS not initialized", http.StatusServiceUnavailable)
		return
	}
	set := jwk.NewSet()
	if err := set.AddKey(pub); err != nil {
		http.Error(w, "failed to build JWKS", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(set)
}

// SignNotificationToken signs a short-lived ES256 token identifying taskID,
// for a receiver to verify via HandleJWKS before trusting a push notification.
func (a *PushNotificationAuthenticator) SignNotificationToken(taskID string) (string, error) {
	a.mu.RLock()
	key, kid := a.privateKey, a.kid
	a.mu.RUnlock()

	if key == nil {
		return "", fmt.Errorf("push notification authenticator has no key pair; call GenerateKeyPair first")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"sub": taskID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	})
	token.Header["kid"] = kid
	return token.SignedString(key)
}
