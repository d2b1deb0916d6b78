// Package config loads linkboard's TOML configuration.
//
// # Configuration Discovery
//
// Load resolves the file in this order:
//
//  1. An explicitly provided path
//  2. ~/.config/linkboard/config.toml
//  3. Built-in defaults when the file does not exist
//
// A missing file is not an error. Blank fields fall back to their defaults.
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:8000/api/"
//	request_timeout = "5s"
//	log_file = "~/.local/state/linkboard/linkboard.log"
//	log_level = "info"
//	poll_interval = "30s"   # omit or "0s" to disable background refresh
//
// Durations use Go syntax. Paths accept a leading "~".
//
// # Error Handling
//
// Load returns errors for unreadable files, invalid TOML and values that do
// not parse (durations, log levels). Defaults are never silently substituted
// for a malformed value.
package config
