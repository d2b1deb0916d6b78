// Package ui provides the terminal interface for linkboard.
//
// # Architecture Overview
//
// The interface is a Bubble Tea model styled with lipgloss. It renders every
// post followed by its comments as one flat list of selectable rows and lets
// the operator add, edit and delete entries. All state that matters lives in
// a viewstate.Controller; the model only keeps the cursor, the input line and
// a copy of the last snapshot it rendered.
//
// # Package Structure
//
//   - app.go: Model, Options, key handling and the Run entry point
//   - commands.go: tea.Cmd wrappers around controller calls and their messages
//   - rows.go: flattening posts into rows and keeping the cursor stable
//   - view.go: header, board, inline forms, prompt and footer rendering
//   - keys.go: key bindings shared with the help overlay
//   - theme.go: color palettes and lipgloss styles
//
// # Event Flow
//
//  1. Run builds the model from the controller's current snapshot
//  2. Keys either move the cursor or start an input mode
//  3. Submissions run in a tea.Cmd; the controller mutates then reloads
//  4. The resulting message installs the fresh snapshot and rebuilds rows
//  5. When polling is on, a tick re-reads the controller so background
//     reloads show up
//
// Errors from the API are shown in the status line. They never change what is
// on screen beyond that line, because the controller leaves its state alone
// when a call fails.
//
// # Key Bindings
//
//   - j/k, g/G: Move, jump to top/bottom
//   - a: Add post
//   - c: Comment on the selected post
//   - e: Toggle the edit form of the selected row; enter submits it
//   - x: Delete (y/n confirmation)
//   - t: Show/hide comments
//   - r: Reload
//   - T: Cycle theme (saved to prefs)
//   - h or ?: Help
//   - esc: Cancel input
//   - q or Ctrl+C: Exit
package ui
