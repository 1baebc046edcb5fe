package weather

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errors returned by the codec, the client session and the server loop.
var (
	// ErrInvalidInput is returned when a request cannot be encoded.
	ErrInvalidInput = errors.New("weather: invalid input")
	// ErrTruncated is returned when a request datagram is shorter than RequestMinSize.
	ErrTruncated = errors.New("weather: truncated request")
	// ErrMalformed is returned when a response buffer is not exactly ResponseSize bytes.
	ErrMalformed = errors.New("weather: malformed response")
	// ErrBadRequestSyntax is returned when a request string is not "<type> <city>".
	ErrBadRequestSyntax = errors.New("weather: bad request syntax")
	// ErrUnexpectedSource is returned when a reply comes from an address other than the server's.
	ErrUnexpectedSource = errors.New("weather: reply from unexpected source")
	// ErrTruncatedReply is returned when a reply is not exactly ResponseSize bytes.
	ErrTruncatedReply = errors.New("weather: truncated reply")
	// ErrResolve is returned when the server name cannot be resolved.
	ErrResolve = errors.New("weather: cannot resolve server")
)

// ErrServerClosed is returned by Serve after Close has been called.
var ErrServerClosed = errors.New("weather: server closed")

// UnexpectedSourceError reports the address a stray reply came from.
type UnexpectedSourceError struct {
	Want string
	Got  string
}

func (e *UnexpectedSourceError) Error() string {
	return fmt.Sprintf("%v: want %s, got %s", ErrUnexpectedSource, e.Want, e.Got)
}

// Is lets errors.Is match ErrUnexpectedSource.
func (e *UnexpectedSourceError) Is(target error) bool {
	return target == ErrUnexpectedSource
}

// ReplySizeError reports the size of a reply that is not ResponseSize bytes.
type ReplySizeError struct {
	Got int
}

func (e *ReplySizeError) Error() string {
	return fmt.Sprintf("%v: %d bytes instead of %d", ErrTruncatedReply, e.Got, ResponseSize)
}

// Is lets errors.Is match ErrTruncatedReply.
func (e *ReplySizeError) Is(target error) bool {
	return target == ErrTruncatedReply
}
