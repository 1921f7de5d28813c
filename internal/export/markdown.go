// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/kiann/seraa-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a transcript as a markdown document. Response
// text is carried over verbatim, including any <CODE> tags, so the export
// stays faithful to what the model produced.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts the session to markdown.
func (e *MarkdownExporter) Export(sess *model.Session) ([]byte, error) {
	if sess == nil || len(sess.Interactions) == 0 {
		return nil, ErrEmptySession
	}

	var sb strings.Builder
	sb.WriteString("# " + sess.Name + "\n\n")

	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", sess.CreatedAt.Format("January 2, 2006 3:04 PM")))
		sb.WriteString(fmt.Sprintf("- **Interactions**: %d\n", len(sess.Interactions)))
		sb.WriteString(fmt.Sprintf("- **Exported**: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("\n---\n\n")
	}

	for _, interaction := range sess.Interactions {
		sb.WriteString("## User\n\n")
		sb.WriteString(interaction.Input + "\n\n")
		sb.WriteString("## AI\n\n")
		sb.WriteString(interaction.Response + "\n\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}
