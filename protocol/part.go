// Tencent is pleased to support the open source community by making trpc-a2a-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-a2a-go is licensed under the Apache License Version 2.0.

package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"
)

// Part is a segment of content within a Message or Artifact: text, a file
// (by inline bytes or URI), or a structured data blob. Concrete
// implementations are TextPart, FilePart, and DataPart; an unexported
// method on each keeps the set closed.
type Part interface {
	partMarker()
	GetKind() string
}

// TextPart carries a plain-text segment.
type TextPart struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (TextPart) partMarker()      {}
func (TextPart) GetKind() string  { return KindText }
func (p TextPart) MarshalJSON() ([]byte, error) {
	type alias TextPart
	raw, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(raw, "kind", []byte(KindText))
}

// FileUnion is either FileWithBytes (inline, base64) or FileWithURI
// (by reference). Exactly one of the two ever appears on a FilePart.
type FileUnion interface {
	fileUnionMarker()
}

// FileWithBytes carries inline, base64-encoded file content.
type FileWithBytes struct {
	Name     *string `json:"name,omitempty"`
	MimeType *string `json:"mimeType,omitempty"`
	Bytes    string  `json:"bytes"`
}

func (FileWithBytes) fileUnionMarker() {}

// FileWithURI references file content stored elsewhere.
type FileWithURI struct {
	Name     *string `json:"name,omitempty"`
	MimeType *string `json:"mimeType,omitempty"`
	URI      string  `json:"uri"`
}

func (FileWithURI) fileUnionMarker() {}

// FilePart carries a file segment, either inline or by reference.
type FilePart struct {
	File     FileUnion              `json:"file"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (FilePart) partMarker()     {}
func (FilePart) GetKind() string { return KindFile }

func (p FilePart) MarshalJSON() ([]byte, error) {
	type wire struct {
		File     interface{}            `json:"file"`
		Metadata map[string]interface{} `json:"metadata,omitempty"`
	}
	raw, err := json.Marshal(wire{File: p.File, Metadata: p.Metadata})
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(raw, "kind", []byte(KindFile))
}

func (p *FilePart) UnmarshalJSON(data []byte) error {
	var wire struct {
		File     json.RawMessage        `json:"file"`
		Metadata map[string]interface{} `json:"metadata,omitempty"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.Metadata = wire.Metadata
	var probe struct {
		URI   string `json:"uri"`
		Bytes string `json:"bytes"`
	}
	if err := json.Unmarshal(wire.File, &probe); err != nil {
		return fmt.Errorf("failed to unmarshal file union: %w", err)
	}
	if probe.URI != "" {
		var f FileWithURI
		if err := json.Unmarshal(wire.File, &f); err != nil {
			return err
		}
		p.File = f
		return nil
	}
	var f FileWithBytes
	if err := json.Unmarshal(wire.File, &f); err != nil {
		return err
	}
	p.File = f
	return nil
}

// DataPart carries a structured data blob (arbitrary JSON object).
type DataPart struct {
	Data     map[string]interface{} `json:"data"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (DataPart) partMarker()     {}
func (DataPart) GetKind() string { return KindData }

func (p DataPart) MarshalJSON() ([]byte, error) {
	type alias DataPart
	raw, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(raw, "kind", []byte(KindData))
}

// NewTextPart creates a new TextPart containing the given text.
func NewTextPart(text string) *TextPart {
	return &TextPart{Text: text}
}

// NewFilePartWithBytes creates a new FilePart with embedded bytes content.
func NewFilePartWithBytes(name, mimeType, base64Bytes string) *FilePart {
	return &FilePart{File: FileWithBytes{Name: &name, MimeType: &mimeType, Bytes: base64Bytes}}
}

// NewFilePartWithURI creates a new FilePart with a URI reference.
func NewFilePartWithURI(name, mimeType, uri string) *FilePart {
	return &FilePart{File: FileWithURI{Name: &name, MimeType: &mimeType, URI: uri}}
}

// NewDataPart creates a new DataPart with the given data.
func NewDataPart(data map[string]interface{}) *DataPart {
	return &DataPart{Data: data}
}

// unmarshalPart determines the concrete type of a Part from raw JSON based
// on its "kind" field and unmarshals into that concrete type.
func unmarshalPart(raw json.RawMessage) (Part, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal part kind: %w", err)
	}
	switch probe.Kind {
	case KindText:
		var p TextPart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case KindFile:
		var p FilePart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case KindData:
		var p DataPart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("unknown part kind: %q", probe.Kind)
	}
}

// unmarshalParts unmarshals an ordered list of tagged-union Parts.
func unmarshalParts(raw []json.RawMessage) ([]Part, error) {
	parts := make([]Part, len(raw))
	for i, r := range raw {
		p, err := unmarshalPart(r)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		parts[i] = p
	}
	return parts, nil
}
