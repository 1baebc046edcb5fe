package weather

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	reuseport "github.com/kavu/go_reuseport"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies spans created by this package.
const tracerName = "github.com/Zereker/weather"

// defaultLookupTimeout bounds the reverse lookup of a sender's name.
const defaultLookupTimeout = time.Second

// Recorder receives per-datagram events from the server loop.
type Recorder interface {
	// Received is called for every datagram read from the socket.
	Received(size int)
	// Dropped is called when a datagram or a receive produces no response.
	Dropped(reason string)
	// Responded is called after a response has been sent.
	Responded(status Status, t Type, elapsed time.Duration)
}

// Reasons passed to Recorder.Dropped.
const (
	DropShort        = "short"
	DropReceiveError = "receive_error"
	DropSendError    = "send_error"
)

type nopRecorder struct{}

func (nopRecorder) Received(int) {}
func (nopRecorder) Dropped(string) {}
func (nopRecorder) Responded(Status, Type, time.Duration) {}

// Server answers weather requests on a datagram socket. It handles one
// datagram at a time and keeps no state between them.
type Server struct {
	conn          net.PacketConn
	handler       Handler
	logger        Logger
	resolver      Resolver
	reverseLookup bool
	lookupTimeout time.Duration
	reusePort     bool
	recorder      Recorder
	tracer        trace.Tracer

	mu       sync.Mutex
	shutdown bool
	closed   bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// ServerLoggerOption sets the logger for the server.
func ServerLoggerOption(logger Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// ServerHandlerOption replaces the default Service handler.
func ServerHandlerOption(handler Handler) ServerOption {
	return func(s *Server) {
		s.handler = handler
	}
}

// ServerResolverOption sets the resolver used to name senders in logs.
func ServerResolverOption(r Resolver) ServerOption {
	return func(s *Server) {
		s.resolver = r
	}
}

// ReverseLookupOption enables or disables reverse lookup of senders.
// A non-positive timeout keeps the default of one second.
func ReverseLookupOption(enabled bool, timeout time.Duration) ServerOption {
	return func(s *Server) {
		s.reverseLookup = enabled
		if timeout > 0 {
			s.lookupTimeout = timeout
		}
	}
}

// ReusePortOption makes New open the socket with SO_REUSEPORT so that
// several server processes can share one port.
func ReusePortOption(enabled bool) ServerOption {
	return func(s *Server) {
		s.reusePort = enabled
	}
}

// ServerRecorderOption sets the metrics recorder.
func ServerRecorderOption(r Recorder) ServerOption {
	return func(s *Server) {
		s.recorder = r
	}
}

// ServerTracerOption sets the tracer used for per-datagram spans.
func ServerTracerOption(t trace.Tracer) ServerOption {
	return func(s *Server) {
		s.tracer = t
	}
}

func newServer(opts []ServerOption) *Server {
	s := &Server{
		logger:        defaultLogger(),
		resolver:      defaultResolver(),
		reverseLookup: true,
		lookupTimeout: defaultLookupTimeout,
		recorder:      nopRecorder{},
		tracer:        otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.handler == nil {
		s.handler = NewService(NewSynthesizer(time.Now().UnixNano()))
	}
	return s
}

// New opens a datagram socket on address (e.g. ":56700") and returns a
// Server bound to it. network is "udp", "udp4" or "udp6".
func New(network, address string, opts ...ServerOption) (*Server, error) {
	s := newServer(opts)

	var (
		conn net.PacketConn
		err  error
	)
	if s.reusePort {
		conn, err = reuseport.ListenPacket(network, address)
	} else {
		conn, err = net.ListenPacket(network, address)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s %s", network, address)
	}

	s.conn = conn
	return s, nil
}

// NewServer returns a Server using an already open socket.
func NewServer(conn net.PacketConn, opts ...ServerOption) *Server {
	s := newServer(opts)
	s.conn = conn
	return s
}

// Serve reads and answers datagrams until ctx is canceled or Close is
// called. A failed receive is logged and skipped; it never stops the loop.
// Serve returns ctx.Err() on cancellation and ErrServerClosed after Close.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("server started", "addr", s.conn.LocalAddr())

	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		// Unblock the pending ReadFrom.
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, RequestMaxSize)
	for {
		n, from, err := s.conn.ReadFrom(buf)
		if err != nil {
			shutdown, closed := s.state()
			if closed {
				s.logger.Info("server stopped", "addr", s.conn.LocalAddr())
				return ErrServerClosed
			}
			if shutdown {
				s.logger.Info("server stopped", "addr", s.conn.LocalAddr())
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			s.logger.Error("receive failed", "error", err)
			s.recorder.Dropped(DropReceiveError)
			continue
		}

		s.serveDatagram(ctx, buf[:n], from)
	}
}

// serveDatagram decodes, answers and replies to a single datagram.
func (s *Server) serveDatagram(ctx context.Context, b []byte, from net.Addr) {
	start := time.Now()
	s.recorder.Received(len(b))

	req, err := DecodeRequest(b)
	if err != nil {
		s.logger.Warn("request too short", "ip", hostOf(from), "size", len(b))
		s.recorder.Dropped(DropShort)
		return
	}

	requestID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "weather.request",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("weather.request_id", requestID),
			attribute.String("weather.type", req.Type.String()),
			attribute.String("weather.city", req.City),
			attribute.String("net.peer.ip", hostOf(from)),
		),
	)
	defer span.End()

	s.logger.Info("request received",
		"request_id", requestID,
		"from", s.peerName(ctx, from),
		"ip", hostOf(from),
		"type", req.Type.String(),
		"city", req.City)

	resp := s.handler.Handle(ctx, req)
	span.SetAttributes(attribute.String("weather.status", resp.Status.String()))

	if _, err := s.conn.WriteTo(EncodeResponse(resp), from); err != nil {
		s.logger.Error("send failed", "request_id", requestID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		s.recorder.Dropped(DropSendError)
		return
	}

	elapsed := time.Since(start)
	s.recorder.Responded(resp.Status, resp.Type, elapsed)
	s.logger.Debug("response sent",
		"request_id", requestID,
		"status", resp.Status.String(),
		"value", resp.Value,
		"elapsed", elapsed)
}

// peerName returns a display name for a sender. Lookup failures fall back
// to the numeric address.
func (s *Server) peerName(ctx context.Context, from net.Addr) string {
	if !s.reverseLookup {
		return hostOf(from)
	}
	ap, ok := addrPortOf(from)
	if !ok {
		return hostOf(from)
	}

	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()
	return ReverseName(ctx, s.resolver, ap.Addr())
}

func (s *Server) state() (shutdown, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown, s.closed
}

// Close stops the server by closing the underlying socket. A blocked
// Serve returns ErrServerClosed.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return s.conn.Close()
}

// Addr returns the socket's local address.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}
