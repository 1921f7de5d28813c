// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/kiann/seraa-tui/internal/ui/styles"
)

// =============================================================================
// RENDERER
// =============================================================================

// Renderer formats model responses for a terminal of a given width.
type Renderer struct {
	width    int
	markdown *glamour.TermRenderer
}

// NewRenderer creates a renderer wrapping at the given width. A markdown
// renderer that fails to initialize degrades to plain prose output.
func NewRenderer(width int) *Renderer {
	if width < 20 {
		width = 20
	}
	markdown, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		markdown = nil
	}
	return &Renderer{width: width, markdown: markdown}
}

// Message renders a full model response: prose segments as markdown, code
// segments as highlighted blocks.
func (r *Renderer) Message(text string) string {
	segments := ParseSegments(text)
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg.Kind {
		case KindCode:
			parts = append(parts, r.codeBlock(seg.Language, seg.Content))
		default:
			parts = append(parts, r.prose(seg.Content))
		}
	}
	return strings.Join(parts, "\n")
}

// prose renders a text segment as markdown, falling back to the raw text.
func (r *Renderer) prose(text string) string {
	text = strings.TrimSpace(text)
	if r.markdown == nil {
		return text
	}
	out, err := r.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// codeBlock renders a code segment as a bordered, highlighted block with a
// language badge.
func (r *Renderer) codeBlock(language, code string) string {
	code = strings.Trim(code, "\n")

	var header string
	if language != "" {
		header = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Background(styles.OverlayDim).
			Padding(0, 1).
			Bold(true).
			Render(language) + "\n"
	}

	maxWidth := r.width - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 2).
		MaxWidth(maxWidth).
		Render(header + Highlight(code, language))
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// Highlight applies ANSI syntax highlighting to code. An empty language
// triggers content-based detection; any highlighting failure returns the
// code unchanged.
func Highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
