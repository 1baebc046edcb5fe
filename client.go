package weather

import (
	"context"
	"net"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client is a weather client session: one resolved server and one local
// datagram socket. Each Query sends one request and waits for one reply;
// nothing is retransmitted.
type Client struct {
	conn   *net.UDPConn
	server Endpoint
	logger Logger
	opts   options
	closed atomic.Bool
}

// NewClient resolves host and opens a local IPv4 datagram socket.
// Resolution failures are returned as ErrResolve.
func NewClient(ctx context.Context, host string, port int, opt ...Option) (*Client, error) {
	var opts options
	for _, o := range opt {
		o(&opts)
	}
	checkOptions(&opts)

	server, err := Resolve(ctx, opts.resolver, host, port)
	if err != nil {
		return nil, err
	}

	// Unconnected, so that replies from any source are seen and checked.
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, errors.Wrap(err, "open socket")
	}

	return &Client{
		conn:   conn,
		server: server,
		logger: opts.logger,
		opts:   opts,
	}, nil
}

// Server returns the resolved server endpoint.
func (c *Client) Server() Endpoint {
	return c.server
}

// Query sends req and blocks until one datagram arrives. There is no
// timeout: only canceling ctx unblocks the wait.
//
// Returns:
//   - ErrInvalidInput: req cannot be encoded
//   - ErrUnexpectedSource: the reply did not come from the server
//   - ErrTruncatedReply: the reply is not ResponseSize bytes
//   - ctx.Err(): ctx was canceled while waiting
//
// A response with a non-OK status is not an error.
func (c *Client) Query(ctx context.Context, req Request) (Response, error) {
	payload, err := EncodeRequest(req)
	if err != nil {
		return Response{}, err
	}

	ctx, span := c.opts.tracer.Start(ctx, "weather.query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("weather.type", req.Type.String()),
			attribute.String("weather.city", req.City),
			attribute.String("net.peer.name", c.server.Name),
		),
	)
	defer span.End()

	resp, err := c.roundTrip(ctx, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Response{}, err
	}
	span.SetAttributes(attribute.String("weather.status", resp.Status.String()))
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, payload []byte) (Response, error) {
	if c.closed.Load() {
		return Response{}, net.ErrClosed
	}

	c.logger.Debug("sending request", "server", c.server.String(), "size", len(payload))
	if _, err := c.conn.WriteToUDPAddrPort(payload, c.server.Addr); err != nil {
		return Response{}, errors.Wrap(err, "send request")
	}

	// Clear a deadline left by an earlier canceled query.
	_ = c.conn.SetReadDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, c.opts.replyBufferSize)
	n, from, err := c.conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		return Response{}, errors.Wrap(err, "receive reply")
	}

	// The reply must come from the exact address the request went to:
	// same IP and same port.
	from = netip.AddrPortFrom(from.Addr().Unmap(), from.Port())
	if from != c.server.Addr {
		c.logger.Warn("reply from unexpected source", "want", c.server.Addr, "got", from)
		return Response{}, &UnexpectedSourceError{Want: c.server.Addr.String(), Got: from.String()}
	}

	if n != ResponseSize {
		return Response{}, &ReplySizeError{Got: n}
	}

	return DecodeResponse(buf[:n])
}

// Close closes the local socket. Safe to call multiple times.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

// LocalAddr returns the client's local socket address.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}
