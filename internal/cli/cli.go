// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command identifies which top-level command was requested.
type Command int

const (
	CmdTUI Command = iota
	CmdSessions
	CmdKey
	CmdExport
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Model      string // --model: override the configured generation model
	ConfigPath string // --config: alternate config file
	DBPath     string // --db: alternate database file

	// Command-specific
	Subcommand string   // e.g. "set" for `key set`
	Positional []string // remaining positional args
	OutputDir  string   // --dir for export
	Format     string   // --format for export (md or json)
}

// Parse reads os.Args and returns the command with its arguments.
func Parse() (Command, Args) {
	raw := os.Args[1:]
	var args Args
	var positional []string

	i := 0
	for i < len(raw) {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		value := ""
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value = name[:eq], name[eq+1:]
		} else if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			value = raw[i+1]
			i++
		}
		switch name {
		case "model":
			args.Model = value
		case "config":
			args.ConfigPath = value
		case "db":
			args.DBPath = value
		case "dir":
			args.OutputDir = value
		case "format":
			args.Format = value
		case "help", "h":
			return CmdHelp, args
		case "version", "v":
			return CmdVersion, args
		default:
			fmt.Fprintf(os.Stderr, "Unknown flag --%s (see `seraa help`)\n", name)
		}
		i++
	}

	if len(positional) == 0 {
		return CmdTUI, args
	}

	cmd := positional[0]
	rest := positional[1:]
	if len(rest) > 0 {
		args.Subcommand = rest[0]
		args.Positional = rest[1:]
	}

	switch cmd {
	case "chat":
		return CmdTUI, args
	case "sessions":
		return CmdSessions, args
	case "key":
		return CmdKey, args
	case "export":
		// `export <id>` has no subcommand layer; the id is positional.
		args.Positional = rest
		args.Subcommand = ""
		return CmdExport, args
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		return CmdHelp, args
	}
}

// =============================================================================
// HELP
// =============================================================================

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("seraa %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(`seraa - offline-capable AI chat for the terminal

Usage:
  seraa [chat]             Open the chat TUI (default)
  seraa sessions           List stored sessions
  seraa key set            Store the API key (prompted, hidden input)
  seraa key show           Show whether a key is stored
  seraa key clear          Delete the stored key
  seraa export <id>        Export a session transcript
  seraa version            Print version information
  seraa help               Show this help

Flags:
  --model <name>           Override the generation model
  --config <path>          Alternate config file
  --db <path>              Alternate database file
  --dir <path>             Output directory for export
  --format <md|json>       Export format (default: md)

Environment:
  SERAA_MODEL, SERAA_API_BASE_URL, SERAA_TIMEZONE, SERAA_TIMEZONE_LABEL,
  SERAA_THEME, SERAA_REQUESTS_PER_MINUTE override config file values.
`)
}
