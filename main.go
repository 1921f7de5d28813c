// Seraa TUI - an offline-capable AI chat companion for the terminal.
//
// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kiann/seraa-tui/internal/cli"
	"github.com/kiann/seraa-tui/internal/config"
	"github.com/kiann/seraa-tui/internal/gemini"
	"github.com/kiann/seraa-tui/internal/keystore"
	"github.com/kiann/seraa-tui/internal/prompt"
	"github.com/kiann/seraa-tui/internal/session"
	"github.com/kiann/seraa-tui/internal/store"
	"github.com/kiann/seraa-tui/internal/ui/chat"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdSessions:
		err = cli.HandleSessions(args)
	case cli.CmdKey:
		err = cli.HandleKey(args)
	case cli.CmdExport:
		err = cli.HandleExport(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runTUI boots the full stack and hands control to Bubble Tea.
func runTUI(args cli.Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	dbPath := args.DBPath
	if dbPath == "" {
		dbPath, err = store.DefaultPath()
		if err != nil {
			return err
		}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	ks, err := keystore.New()
	if err != nil {
		return fmt.Errorf("opening keystore: %w", err)
	}
	credential, err := ks.Get()
	if err != nil && !errors.Is(err, keystore.ErrNoCredential) {
		return fmt.Errorf("reading credential: %w", err)
	}

	client := gemini.NewClientWithConfig(&gemini.ClientConfig{
		BaseURL:           cfg.API.BaseURL,
		Model:             cfg.API.Model,
		Timeout:           cfg.Timeout(),
		StreamTimeout:     cfg.StreamTimeout(),
		RequestsPerMinute: cfg.API.RequestsPerMinute,
	})

	builder := prompt.NewBuilder(cfg.Prompt.TimeZone, cfg.Prompt.TimeZoneLabel)
	mgr := session.NewManager(st, client, builder, session.Config{
		ReflectionWindow: cfg.Memory.ReflectionWindow,
	})

	ctx := context.Background()
	gc, err := st.GlobalContext(ctx)
	if err != nil {
		return fmt.Errorf("loading global context: %w", err)
	}
	active, err := mgr.ActiveSession(ctx)
	if err != nil {
		return fmt.Errorf("selecting session: %w", err)
	}

	program := tea.NewProgram(
		chat.New(mgr, active, gc, credential, cfg.API.Model),
		tea.WithAltScreen(),
	)
	_, err = program.Run()
	return err
}

// loadConfig loads configuration, applies environment and flag overrides,
// and validates the result.
func loadConfig(args cli.Args) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg.ApplyEnvOverrides()
	if args.Model != "" {
		cfg.API.Model = args.Model
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
