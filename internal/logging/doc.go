// Package logging constructs slog loggers for the CLI.
//
// Console output uses the text handler; json emits structured records for
// machine consumption. Component loggers are derived with WithComponent so
// records carry the owning subsystem.
package logging
