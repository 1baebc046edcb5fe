package weather

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// defaultReplyBufferSize is larger than ResponseSize so that oversized
// replies are seen at their real size instead of being cut to fit.
const defaultReplyBufferSize = 512

// options holds the configuration for a client session.
type options struct {
	logger          Logger
	resolver        Resolver
	tracer          trace.Tracer
	replyBufferSize int
}

// Option is a function that configures a client session.
type Option func(*options)

// LoggerOption returns an Option that sets the logger.
// If not set, the default slog logger will be used.
func LoggerOption(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// ResolverOption returns an Option that sets the resolver used to find
// the server and to name it for display.
func ResolverOption(r Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// TracerOption returns an Option that sets the tracer for query spans.
func TracerOption(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// ReplyBufferOption returns an Option that sets the receive buffer size.
// Values not larger than ResponseSize are ignored.
func ReplyBufferOption(size int) Option {
	return func(o *options) {
		o.replyBufferSize = size
	}
}

// checkOptions sets default values for client options.
func checkOptions(opts *options) {
	if opts.logger == nil {
		opts.logger = defaultLogger()
	}
	if opts.resolver == nil {
		opts.resolver = defaultResolver()
	}
	if opts.tracer == nil {
		opts.tracer = otel.Tracer(tracerName)
	}
	if opts.replyBufferSize <= ResponseSize {
		opts.replyBufferSize = defaultReplyBufferSize
	}
}
