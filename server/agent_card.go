// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package server

// AgentCard is the self-describing manifest an agent publishes at
// protocol.AgentCardPath: identity, capabilities, skills, and the
// transports a client may use to reach it.
type AgentCard struct {
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	URL                string             `json:"url"`
	IconURL            string             `json:"iconUrl,omitempty"`
	DocumentationURL   string             `json:"documentationUrl,omitempty"`
	Version            string             `json:"version"`
	ProtocolVersion    string             `json:"protocolVersion,omitempty"`
	Provider           *AgentProvider     `json:"provider,omitempty"`
	Capabilities       AgentCapabilities  `json:"capabilities"`
	DefaultInputModes  []string           `json:"defaultInputModes"`
	DefaultOutputModes []string           `json:"defaultOutputModes"`
	Skills             []AgentSkill       `json:"skills"`
	SecuritySchemes    map[string]SecurityScheme `json:"securitySchemes,omitempty"`
	Security           []map[string][]string     `json:"security,omitempty"`
	AdditionalInterfaces []AgentInterface `json:"additionalInterfaces,omitempty"`
	// SupportsAuthenticatedExtendedCard advertises agent/getAuthenticatedExtendedCard.
	// Defaults to false when nil.
	SupportsAuthenticatedExtendedCard *bool `json:"supportsAuthenticatedExtendedCard,omitempty"`
}

// AgentCapabilities declares optional features. Every field is a pointer
// so a server can distinguish "explicitly unsupported" from "unspecified".
type AgentCapabilities struct {
	Streaming              *bool            `json:"streaming,omitempty"`
	PushNotifications      *bool            `json:"pushNotifications,omitempty"`
	StateTransitionHistory *bool            `json:"stateTransitionHistory,omitempty"`
	Extensions             []AgentExtension `json:"extensions,omitempty"`
}

// AgentProvider identifies the organization that operates an agent.
type AgentProvider struct {
	Organization string `json:"organization"`
	URL          string `json:"url,omitempty"`
}

// AgentSkill is one distinct capability an agent performs.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	InputModes  []string `json:"inputModes,omitempty"`
	OutputModes []string `json:"outputModes,omitempty"`
}

// AgentExtension declares a protocol extension an agent supports.
type AgentExtension struct {
	URI         string         `json:"uri"`
	Description string         `json:"description,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
}

// AgentInterface pairs a transport protocol with the URL that serves it.
type AgentInterface struct {
	Transport string `json:"transport"`
	URL       string `json:"url"`
}

// SecurityScheme follows the OpenAPI 3.0 Security Scheme Object shape; only
// the fields this runtime's auth package understands are modeled.
type SecurityScheme struct {
	Type         string `json:"type"`
	Scheme       string `json:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty"`
	OpenIDConnectURL string `json:"openIdConnectUrl,omitempty"`
}

func boolPtr(b bool) *bool { return &b }
