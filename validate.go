package weather

import "strings"

// knownCities is the fixed set of cities the server has data for.
var knownCities = []string{
	"bari", "roma", "milano", "napoli", "torino",
	"palermo", "genova", "bologna", "firenze", "venezia",
}

// KnownCities returns a copy of the supported city names.
func KnownCities() []string {
	out := make([]string, len(knownCities))
	copy(out, knownCities)
	return out
}

// IsValidType reports whether c, lowercased, is one of t, h, w, p.
func IsValidType(c Type) bool {
	switch c.Lower() {
	case TypeTemperature, TypeHumidity, TypeWind, TypePressure:
		return true
	default:
		return false
	}
}

// IsValidCity reports whether city matches a known city, ignoring case.
// Only exact matches count.
func IsValidCity(city string) bool {
	for _, known := range knownCities {
		if strings.EqualFold(city, known) {
			return true
		}
	}
	return false
}

// Classify returns the status a request deserves. The type is checked
// before the city, so an invalid type always yields StatusInvalidRequest.
func Classify(req Request) Status {
	if !IsValidType(req.Type) {
		return StatusInvalidRequest
	}
	if !IsValidCity(req.City) {
		return StatusCityNotFound
	}
	return StatusOK
}
