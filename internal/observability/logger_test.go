package observability

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zereker/weather"
)

func TestLogger_ImplementsWeatherLogger(t *testing.T) {
	var _ weather.Logger = NewLogger(zerolog.Nop())
}

func TestLogger_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	logger := NewLogger(zl)

	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 56700}
	logger.Info("request received", "from", addr, "city", "bari", "status", weather.StatusOK)
	logger.Error("send failed", "error", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{
		`"message":"request received"`,
		`"from":"127.0.0.1:56700"`,
		`"city":"bari"`,
		`"status":"ok"`,
		`"error":"boom"`,
		`"level":"error"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn message missing: %q", buf.String())
	}
}

func TestNormalizeFields(t *testing.T) {
	if got := normalizeFields(nil); got != nil {
		t.Errorf("normalizeFields(nil) = %v, want nil", got)
	}

	got := normalizeFields([]any{"elapsed", time.Second, "dangling"})
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[1] != time.Second {
		t.Errorf("duration rendered as %v (%T), want time.Duration", got[1], got[1])
	}
	if got[2] != "dangling" || got[3] != "" {
		t.Errorf("dangling key = %v/%v", got[2], got[3])
	}
}

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger("weather-test", &buf, zerolog.InfoLevel)

	logger.Info().Msg("hello")
	logger.Debug().Msg("below level")

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "weather-test") {
		t.Errorf("unexpected output: %q", out)
	}
	if strings.Contains(out, "below level") {
		t.Errorf("debug message should be filtered: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, true},
		{" WARN ", zerolog.WarnLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}
