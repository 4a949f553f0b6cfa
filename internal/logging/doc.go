// Package logging configures log/slog for the preflight tool.
//
// Logs always go to stderr: human-readable text on a terminal, JSON when
// stderr is redirected. A log file, when configured, receives JSON through a
// size-rotating writer.
package logging
