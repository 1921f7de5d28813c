// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kiann/seraa-tui/internal/keystore"
)

// =============================================================================
// KEY COMMAND
// =============================================================================

// HandleKey implements `seraa key set|show|clear`.
func HandleKey(args Args) error {
	ks, err := keystore.New()
	if err != nil {
		return fmt.Errorf("opening keystore: %w", err)
	}

	switch args.Subcommand {
	case "set":
		return keySet(ks)
	case "show":
		return keyShow(ks)
	case "clear":
		if err := ks.Clear(); err != nil {
			return err
		}
		fmt.Println("API key removed.")
		return nil
	default:
		return fmt.Errorf("usage: seraa key set|show|clear")
	}
}

// keySet prompts for the key without echoing it.
func keySet(ks *keystore.Keystore) error {
	fmt.Print("API key: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading key: %w", err)
	}

	credential := strings.TrimSpace(string(raw))
	if credential == "" {
		return errors.New("no key entered")
	}
	if err := ks.Set(credential); err != nil {
		return err
	}
	fmt.Println("API key stored.")
	return nil
}

// keyShow reports whether a key exists without printing it.
func keyShow(ks *keystore.Keystore) error {
	credential, err := ks.Get()
	switch {
	case errors.Is(err, keystore.ErrNoCredential):
		fmt.Println("No API key stored. Run: seraa key set")
		return nil
	case err != nil:
		return err
	}
	fmt.Printf("API key stored (%d characters, ends in %s).\n", len(credential), tail(credential))
	return nil
}

// tail returns the last few characters for identification.
func tail(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "…" + s[len(s)-4:]
}
