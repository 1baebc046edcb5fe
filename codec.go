package weather

import (
	"encoding/binary"
	"math"
	"strings"
)

// EncodeRequest writes the type byte followed by the raw city bytes.
// There is no length prefix and no terminator: the datagram boundary
// delimits the city.
func EncodeRequest(req Request) ([]byte, error) {
	if len(req.City) == 0 || len(req.City) > MaxCityLen || strings.IndexByte(req.City, 0) >= 0 {
		return nil, ErrInvalidInput
	}
	buf := make([]byte, 1+len(req.City))
	buf[0] = byte(req.Type)
	copy(buf[1:], req.City)
	return buf, nil
}

// DecodeRequest parses a request datagram. City bytes beyond MaxCityLen
// are silently dropped, and the city ends at the first NUL byte if any.
func DecodeRequest(b []byte) (Request, error) {
	if len(b) < RequestMinSize {
		return Request{}, ErrTruncated
	}
	city := b[1:]
	if len(city) > MaxCityLen {
		city = city[:MaxCityLen]
	}
	for i, c := range city {
		if c == 0 {
			city = city[:i]
			break
		}
	}
	return Request{Type: Type(b[0]), City: string(city)}, nil
}

// EncodeResponse lays the response out as
//
//	offset 0  status  uint32, big-endian
//	offset 4  type    one byte
//	offset 5  value   IEEE-754 bits of a float32, big-endian
//
// The output is always ResponseSize bytes.
func EncodeResponse(resp Response) []byte {
	buf := make([]byte, ResponseSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(resp.Status))
	buf[4] = byte(resp.Type)
	binary.BigEndian.PutUint32(buf[5:9], math.Float32bits(resp.Value))
	return buf
}

// DecodeResponse is the inverse of EncodeResponse. The status value is
// not checked here; unknown statuses are a display concern.
func DecodeResponse(b []byte) (Response, error) {
	if len(b) != ResponseSize {
		return Response{}, ErrMalformed
	}
	return Response{
		Status: Status(binary.BigEndian.Uint32(b[0:4])),
		Type:   Type(b[4]),
		Value:  math.Float32frombits(binary.BigEndian.Uint32(b[5:9])),
	}, nil
}
