package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// InitLogger builds the console logger used by the binaries. All output
// goes to w, which the binaries set to stdout.
func InitLogger(app string, w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", app).Logger()
}

// ParseLevel maps a level name to a zerolog level. The second result is
// false for an empty or unknown name.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

// Logger adapts a zerolog.Logger to the key/value logging interface of
// the weather package.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger wraps zl.
func NewLogger(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

// Debug logs msg at debug level; args alternate keys and values.
func (l *Logger) Debug(msg string, args ...any) { l.emit(l.zl.Debug(), msg, args) }

// Info logs msg at info level.
func (l *Logger) Info(msg string, args ...any) { l.emit(l.zl.Info(), msg, args) }

// Warn logs msg at warn level.
func (l *Logger) Warn(msg string, args ...any) { l.emit(l.zl.Warn(), msg, args) }

// Error logs msg at error level.
func (l *Logger) Error(msg string, args ...any) { l.emit(l.zl.Error(), msg, args) }

func (l *Logger) emit(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	e.Fields(normalizeFields(args)).Msg(msg)
}

// normalizeFields renders errors and Stringers (addresses, statuses) as
// strings so they do not get JSON-marshaled field by field. A trailing key
// without a value is kept with an empty value.
func normalizeFields(args []any) []any {
	n := len(args)
	if n == 0 {
		return nil
	}
	if n%2 == 1 {
		n++
	}
	out := make([]any, n)
	out[n-1] = ""
	for i, v := range args {
		if i%2 == 0 {
			out[i] = fmt.Sprint(v)
			continue
		}
		switch val := v.(type) {
		case time.Duration:
			out[i] = val
		case error:
			out[i] = val.Error()
		case fmt.Stringer:
			out[i] = val.String()
		default:
			out[i] = v
		}
	}
	return out
}
