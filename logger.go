package weather

import "log/slog"

// Logger receives the diagnostics of the server loop and the client
// session as a message plus alternating key/value args. *slog.Logger
// satisfies it, and the binaries pass a zerolog-backed adapter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// defaultLogger is used when no LoggerOption or ServerLoggerOption is given.
func defaultLogger() Logger {
	return slog.Default()
}
