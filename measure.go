package weather

import (
	"math/rand"
)

// measureRange is the inclusive range a measurement type is drawn from.
type measureRange struct {
	min, max float32
}

var measureRanges = map[Type]measureRange{
	TypeTemperature: {min: -10, max: 40},
	TypeHumidity:    {min: 20, max: 100},
	TypeWind:        {min: 0, max: 100},
	TypePressure:    {min: 950, max: 1050},
}

// Synthesizer produces random measurements from a single seeded source.
// It is not safe for concurrent use; the server loop owns one.
type Synthesizer struct {
	rnd *rand.Rand
}

// NewSynthesizer creates a Synthesizer seeded with seed.
func NewSynthesizer(seed int64) *Synthesizer {
	return &Synthesizer{rnd: rand.New(rand.NewSource(seed))}
}

// Measure returns a uniformly distributed value for t. The second result
// is false when t is not a measurement type.
func (s *Synthesizer) Measure(t Type) (float32, bool) {
	r, ok := measureRanges[t.Lower()]
	if !ok {
		return 0, false
	}
	return r.min + s.rnd.Float32()*(r.max-r.min), true
}
