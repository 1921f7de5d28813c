// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kiann/seraa-tui/internal/model"
	"github.com/kiann/seraa-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a session transcript to one output format.
type Exporter interface {
	// Export renders the session to the target format.
	Export(sess *model.Session) ([]byte, error)

	// FileExtension returns the format's extension, dot included.
	FileExtension() string
}

// ErrEmptySession rejects exporting a session with no interactions.
var ErrEmptySession = errors.New("session has no interactions to export")

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written (default: current directory).
	OutputDir string

	// IncludeMetadata adds a header with session name, creation time, and
	// interaction count.
	IncludeMetadata bool
}

// DefaultOptions returns the default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		IncludeMetadata: true,
	}
}

// =============================================================================
// FILE EXPORT
// =============================================================================

// ToFile renders the session with the given exporter and writes it to a
// timestamped file in the output directory. Returns the written path.
func ToFile(sess *model.Session, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(sess)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	filename := fmt.Sprintf("seraa_%s_%s%s",
		sanitizeFilename(sess.Name),
		time.Now().Format("20060102_150405"),
		exporter.FileExtension(),
	)
	path := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}

// Markdown exports the session as a markdown transcript.
func Markdown(sess *model.Session, opts *Options) (string, error) {
	return ToFile(sess, NewMarkdownExporter(opts), opts)
}

// JSON exports the session as a JSON document.
func JSON(sess *model.Session, opts *Options) (string, error) {
	return ToFile(sess, NewJSONExporter(), opts)
}

// sanitizeFilename reduces a session name to a safe filename fragment.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	s := b.String()
	if s == "" {
		s = "session"
	}
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
