// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for seraa.
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (SERAA_*)
//   - ~/.seraa/config.toml
//   - Built-in defaults
//
// The file format is TOML. Partial files are fine: any field left unset takes
// its default, and the result is validated before use.
package config
