package weather

import "context"

// Handler turns a decoded request into the response to send back.
type Handler interface {
	Handle(ctx context.Context, req Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req Request) Response

// Handle calls f(ctx, req).
func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Service is the default Handler: it validates the request against the
// known-city set and synthesizes a measurement for valid ones.
type Service struct {
	synth *Synthesizer
}

// NewService returns a Service drawing measurements from synth.
func NewService(synth *Synthesizer) *Service {
	return &Service{synth: synth}
}

// Handle implements Handler.
func (s *Service) Handle(_ context.Context, req Request) Response {
	req.Type = req.Type.Lower()

	status := Classify(req)
	if status != StatusOK {
		return errorResponse(status)
	}

	value, ok := s.synth.Measure(req.Type)
	if !ok {
		return errorResponse(StatusInvalidRequest)
	}
	return Response{Status: StatusOK, Type: req.Type, Value: value}
}
