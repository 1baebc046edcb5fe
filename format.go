package weather

import (
	"fmt"
	"strings"
)

// ParseRequest parses a "<type> <city>" command string. The type must be
// a single character followed by exactly one space; extra spaces before
// the city are skipped. The city must be 1 to MaxCityLen bytes.
// The type is not validated here: that is the server's decision.
func ParseRequest(s string) (Request, error) {
	if strings.IndexByte(s, ' ') != 1 {
		return Request{}, ErrBadRequestSyntax
	}

	city := strings.TrimLeft(s[2:], " ")
	if city == "" || len(city) > MaxCityLen || strings.IndexByte(city, 0) >= 0 {
		return Request{}, ErrBadRequestSyntax
	}

	return Request{Type: Type(s[0]), City: city}, nil
}

// TitleCase upper-cases the first byte of city and every byte following
// a space. Only ASCII letters change.
func TitleCase(city string) string {
	b := []byte(city)
	for i := range b {
		if i == 0 || b[i-1] == ' ' {
			if b[i] >= 'a' && b[i] <= 'z' {
				b[i] -= 'a' - 'A'
			}
		}
	}
	return string(b)
}

// Render formats resp for display to the user who asked about city.
func Render(city string, resp Response) string {
	switch resp.Status {
	case StatusOK:
		label := resp.Type.Label()
		if label == "" {
			return "Unknown response type"
		}
		return fmt.Sprintf("%s: %s = %.1f%s", TitleCase(city), label, resp.Value, resp.Type.Unit())
	case StatusCityNotFound:
		return "City not available"
	case StatusInvalidRequest:
		return "Invalid request"
	default:
		return "Unknown error"
	}
}
