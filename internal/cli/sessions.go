// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kiann/seraa-tui/internal/model"
	"github.com/kiann/seraa-tui/internal/store"
	"github.com/kiann/seraa-tui/internal/util"
)

// =============================================================================
// SESSIONS COMMAND
// =============================================================================

// HandleSessions lists stored sessions in selection order.
func HandleSessions(args Args) error {
	st, err := openStore(args)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.Sessions(context.Background())
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions yet. Run `seraa` to start chatting.")
		return nil
	}
	model.SortSessions(sessions)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPINNED\tTURNS\tCREATED\tNAME")
	for _, sess := range sessions {
		pinned := ""
		if sess.IsPinned {
			pinned = "●"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			sess.ID,
			pinned,
			len(sess.Interactions),
			sess.CreatedAt.Format("2006-01-02 15:04"),
			util.TruncateWidth(sess.Name, 48),
		)
	}
	return w.Flush()
}

// openStore opens the database honoring the --db flag.
func openStore(args Args) (*store.Store, error) {
	path := args.DBPath
	if path == "" {
		var err error
		path, err = store.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(path)
}
