// Package logging provides a thin, subsystem-tagged logging facade over
// log/slog. Call sites pass a subsystem name ("OAuth", "Gateway", ...) so
// log output can be filtered per component without each package owning a
// logger instance.
package logging
