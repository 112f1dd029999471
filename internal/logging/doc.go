// Package logging assembles the structured slog loggers used across subman.
//
// It owns the console/JSON handlers, level parsing, and output plumbing, and
// exposes context helpers so a whole download or quiz run carries one run_id.
// Logs are written to the log file by default because stdout belongs to the
// interactive prompts. A no-op logger is provided for tests and wiring code
// that cannot fail.
package logging
