// Package logging assembles the structured slog loggers used across
// storyreel components.
//
// It centralizes level and output plumbing for the console/JSON handlers and
// exposes context-aware helpers so orchestration code can automatically tag
// log lines with project IDs, segment indexes, and correlation IDs. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
