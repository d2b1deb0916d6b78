// Package app is the composition root for linkboard.
//
// # Overview
//
// It loads configuration, builds the zap file logger, the API client and the
// view-state controller, and then hands control to one of the entry points:
//
//   - Run: the interactive TUI
//   - List: a one-shot fetch printed as a tree or JSON
//   - Logs: the tail of the client log file
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read ~/.config/linkboard/config.toml
//	       ├─────> NewLogger()          JSON log file, ISO8601 "ts"
//	       ├─────> api.NewClient()      HTTP client for the posts API
//	       ├─────> viewstate.New()      Controller owning all view state
//	       ├─────> Controller.Reload()  First load, failure is not fatal
//	       ├─────> RunPoller()          Optional background reloads
//	       └─────> ui.Run()             Start TUI (blocks)
//
// The poller and the UI run in one errgroup. Quitting the UI cancels the
// group's context, which stops the poller; cancelling the parent context
// stops both.
//
// # Polling Behavior
//
// Polling is off unless poll_interval (or --poll) is set. Each tick performs
// a full reload, which also hides any open edit forms. Consecutive failures
// double the wait, capped at 30 seconds, and the first success resets it.
//
// # Error Handling
//
// Fatal (returned from Run, List and Logs):
//   - invalid configuration
//   - log file that cannot be created
//   - malformed api_url
//
// Recoverable (logged, shown in the UI):
//   - failed initial load
//   - failed background reloads
package app
