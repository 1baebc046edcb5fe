package weather

import "fmt"

// Wire sizes of the two datagrams.
const (
	// MaxCityLen is the largest city name carried by a request.
	MaxCityLen = 63
	// RequestMinSize is a type byte plus at least one city byte.
	RequestMinSize = 2
	// RequestMaxSize is a type byte plus MaxCityLen city bytes.
	RequestMaxSize = 1 + MaxCityLen
	// ResponseSize is status (4) + type (1) + value (4), regardless of status.
	ResponseSize = 4 + 1 + 4
)

// Type is the single ASCII character selecting the measurement.
type Type byte

// Measurement types understood by the server.
const (
	TypeTemperature Type = 't'
	TypeHumidity    Type = 'h'
	TypeWind        Type = 'w'
	TypePressure    Type = 'p'

	// TypeNone is echoed in responses whose status is not StatusOK.
	TypeNone Type = 0
)

// Lower returns the ASCII lowercase form of t.
func (t Type) Lower() Type {
	if t >= 'A' && t <= 'Z' {
		return t + ('a' - 'A')
	}
	return t
}

// Label returns the human-readable name of the measurement, or "" when
// t is not one of the lowercase measurement types.
func (t Type) Label() string {
	switch t {
	case TypeTemperature:
		return "Temperature"
	case TypeHumidity:
		return "Humidity"
	case TypeWind:
		return "Wind"
	case TypePressure:
		return "Pressure"
	default:
		return ""
	}
}

// Unit returns the display unit of the measurement.
func (t Type) Unit() string {
	switch t {
	case TypeTemperature:
		return "°C"
	case TypeHumidity:
		return "%"
	case TypeWind:
		return " km/h"
	case TypePressure:
		return " hPa"
	default:
		return ""
	}
}

func (t Type) String() string {
	if t == TypeNone {
		return "none"
	}
	return string(rune(t))
}

// Status is the outcome code carried in every response.
type Status uint32

const (
	StatusOK             Status = 0
	StatusCityNotFound   Status = 1
	StatusInvalidRequest Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusCityNotFound:
		return "city_not_found"
	case StatusInvalidRequest:
		return "invalid_request"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(s))
	}
}

// Request is what the client sends: a measurement type and a city name.
type Request struct {
	Type Type
	City string
}

// Response is what the server sends back. Type and Value are only
// meaningful when Status is StatusOK.
type Response struct {
	Status Status
	Type   Type
	Value  float32
}

// errorResponse builds a non-OK response with zeroed type and value.
func errorResponse(status Status) Response {
	return Response{Status: status, Type: TypeNone, Value: 0}
}
