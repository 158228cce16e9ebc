// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package auth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/a2arun/a2a-go/protocol"
)

// NewOAuth2PushSender returns an *http.Client that fetches and attaches a
// client-credentials bearer token to every request, matching
// protocol.OAuth2AuthInfo's scheme for outbound push notification delivery.
func NewOAuth2PushSender(ctx context.Context, info protocol.OAuth2AuthInfo) *http.Client {
	cfg := &clientcredentials.Config{
		ClientID:     info.ClientID,
		ClientSecret: info.ClientSecret,
		TokenURL:     info.TokenURL,
		Scopes:       info.Scopes,
	}
	return cfg.Client(ctx)
}
