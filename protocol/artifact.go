// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package protocol

import "encoding/json"

// Artifact represents a structured output produced by a task. Identity is
// ArtifactID; an update bearing an existing ArtifactID is appended to or
// replaces the prior artifact's parts depending on the caller's Append flag.
type Artifact struct {
	ArtifactID  string                 `json:"artifactId"`
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Parts       []Part                 `json:"parts"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// UnmarshalJSON resolves each Part's concrete type from its "kind" tag.
func (a *Artifact) UnmarshalJSON(data []byte) error {
	var wire struct {
		ArtifactID  string                 `json:"artifactId"`
		Name        *string                `json:"name,omitempty"`
		Description *string                `json:"description,omitempty"`
		Parts       []json.RawMessage      `json:"parts"`
		Metadata    map[string]interface{} `json:"metadata,omitempty"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	parts, err := unmarshalParts(wire.Parts)
	if err != nil {
		return err
	}
	a.ArtifactID = wire.ArtifactID
	a.Name = wire.Name
	a.Description = wire.Description
	a.Parts = parts
	a.Metadata = wire.Metadata
	return nil
}

// NewArtifactWithID creates a new Artifact with a generated ID.
func NewArtifactWithID(name, description *string, parts []Part) *Artifact {
	return &Artifact{
		ArtifactID:  GenerateArtifactID(),
		Name:        name,
		Description: description,
		Parts:       parts,
	}
}
