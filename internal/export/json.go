// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/kiann/seraa-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// jsonDocument is the shape of a JSON export.
type jsonDocument struct {
	Name         string               `json:"name"`
	CreatedAt    time.Time            `json:"created_at"`
	ExportedAt   time.Time            `json:"exported_at"`
	Interactions []*model.Interaction `json:"interactions"`
}

// JSONExporter renders a transcript as an indented JSON document.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export converts the session to JSON.
func (e *JSONExporter) Export(sess *model.Session) ([]byte, error) {
	if sess == nil || len(sess.Interactions) == 0 {
		return nil, ErrEmptySession
	}
	doc := jsonDocument{
		Name:         sess.Name,
		CreatedAt:    sess.CreatedAt,
		ExportedAt:   time.Now(),
		Interactions: sess.Interactions,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
