// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package protocol

// AuthenticationInfo describes how a client wants an agent to authenticate
// itself when delivering a push notification.
type AuthenticationInfo struct {
	Schemes     []string `json:"schemes"`
	Credentials *string  `json:"credentials,omitempty"`
}

// OAuth2AuthInfo carries OAuth2 client-credentials parameters for a push
// notification callback.
type OAuth2AuthInfo struct {
	TokenURL     string   `json:"tokenUrl"`
	ClientID     string   `json:"clientId"`
	ClientSecret string   `json:"clientSecret,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
}

// JWTAuthInfo carries the expected JWKS location for a bearer-JWT-secured
// push notification callback.
type JWTAuthInfo struct {
	JWKSURL  string `json:"jwksUrl"`
	Issuer   string `json:"issuer,omitempty"`
	Audience string `json:"audience,omitempty"`
}

// APIKeyAuthInfo carries a static API key header for a push notification
// callback.
type APIKeyAuthInfo struct {
	HeaderName string `json:"headerName"`
	APIKey     string `json:"apiKey"`
}

// PushNotificationConfig describes where and how a server should deliver
// out-of-band updates for a task.
type PushNotificationConfig struct {
	ID             string               `json:"id,omitempty"`
	URL            string               `json:"url"`
	Token          *string              `json:"token,omitempty"`
	Authentication *AuthenticationInfo  `json:"authentication,omitempty"`
}

// TaskPushNotificationConfig binds a PushNotificationConfig to a task.
type TaskPushNotificationConfig struct {
	RPCID                  interface{}             `json:"-"`
	TaskID                 string                  `json:"taskId"`
	PushNotificationConfig PushNotificationConfig  `json:"pushNotificationConfig"`
}
