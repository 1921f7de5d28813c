// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kiann/seraa-tui/internal/export"
	"github.com/kiann/seraa-tui/internal/store"
)

// =============================================================================
// EXPORT COMMAND
// =============================================================================

// HandleExport implements `seraa export <id> [--dir path] [--format md|json]`.
func HandleExport(args Args) error {
	if len(args.Positional) == 0 {
		return errors.New("usage: seraa export <session id> [--dir path] [--format md|json]")
	}
	id, err := strconv.ParseInt(args.Positional[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q", args.Positional[0])
	}

	st, err := openStore(args)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := st.Session(context.Background(), id)
	if errors.Is(err, store.ErrSessionNotFound) {
		return fmt.Errorf("no session with id %d (see `seraa sessions`)", id)
	}
	if err != nil {
		return err
	}

	opts := export.DefaultOptions()
	if args.OutputDir != "" {
		opts.OutputDir = args.OutputDir
	}

	var path string
	switch args.Format {
	case "", "md", "markdown":
		path, err = export.Markdown(sess, opts)
	case "json":
		path, err = export.JSON(sess, opts)
	default:
		return fmt.Errorf("unknown format %q (md or json)", args.Format)
	}
	if err != nil {
		return err
	}

	fmt.Println("Exported to", path)
	return nil
}
