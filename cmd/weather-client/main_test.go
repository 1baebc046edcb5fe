package main

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Zereker/weather"
)

// startServer runs a weather server on a loopback port for the test.
func startServer(t *testing.T) int {
	t.Helper()

	server, err := weather.New("udp4", "127.0.0.1:0",
		weather.ReverseLookupOption(false, 0),
		weather.ServerHandlerOption(weather.NewService(weather.NewSynthesizer(7))),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		server.Close()
	})
	return server.Addr().(*net.UDPAddr).Port
}

func runClient(t *testing.T, args ...string) (int, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	code := run(ctx, args, &out)
	return code, out.String()
}

func TestRun_Success(t *testing.T) {
	t.Setenv("WEATHER_LOG_LEVEL", "")
	port := strconv.Itoa(startServer(t))

	code, out := runClient(t, "-s", "127.0.0.1", "-p", port, "-r", "t bari")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0; output:\n%s", code, out)
	}
	if !strings.Contains(out, "Result from server ") || !strings.Contains(out, "(ip 127.0.0.1). Bari: Temperature = ") {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.HasSuffix(out, "°C\n") {
		t.Errorf("missing unit: %q", out)
	}
}

func TestRun_SemanticStatusesExitZero(t *testing.T) {
	t.Setenv("WEATHER_LOG_LEVEL", "")
	port := strconv.Itoa(startServer(t))

	tests := []struct {
		request string
		want    string
	}{
		{"t atlantide", "City not available"},
		{"x bari", "Invalid request"},
		{"P reggio calabria", "City not available"},
	}
	for _, tt := range tests {
		code, out := runClient(t, "-s", "127.0.0.1", "-p", port, "-r", tt.request)
		if code != 0 {
			t.Errorf("%q: exit code = %d, want 0", tt.request, code)
		}
		if !strings.HasSuffix(out, tt.want+"\n") {
			t.Errorf("%q: output = %q, want suffix %q", tt.request, out, tt.want)
		}
	}
}

func TestRun_UsageErrors(t *testing.T) {
	t.Setenv("WEATHER_LOG_LEVEL", "")

	tests := []struct {
		name string
		args []string
	}{
		{"missing request", []string{"-s", "127.0.0.1"}},
		{"no space", []string{"-r", "tbari"}},
		{"long type", []string{"-r", "tt bari"}},
		{"empty city", []string{"-r", "t "}},
		{"city too long", []string{"-r", "t " + strings.Repeat("a", weather.MaxCityLen+1)}},
		{"port zero", []string{"-p", "0", "-r", "t bari"}},
		{"port too large", []string{"-p", "65536", "-r", "t bari"}},
		{"unknown flag", []string{"-z"}},
		{"extra argument", []string{"-r", "t bari", "extra"}},
		{"missing config", []string{"-c", filepath.Join(t.TempDir(), "none.toml"), "-r", "t bari"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := runClient(t, tt.args...)
			if code != 1 {
				t.Errorf("exit code = %d, want 1 (output: %s)", code, out)
			}
			if strings.Contains(out, "Result from server") {
				t.Errorf("unexpected result line: %s", out)
			}
		})
	}
}

func TestRun_TruncatedReplyExitsOne(t *testing.T) {
	t.Setenv("WEATHER_LOG_LEVEL", "")

	peer, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer peer.Close()

	go func() {
		buf := make([]byte, weather.RequestMaxSize)
		_ = peer.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, from, err := peer.ReadFromUDP(buf)
		if err != nil {
			return
		}
		_, _ = peer.WriteToUDP([]byte{0, 0, 0, 0}, from)
	}()

	port := strconv.Itoa(peer.LocalAddr().(*net.UDPAddr).Port)
	code, out := runClient(t, "-s", "127.0.0.1", "-p", port, "-r", "w roma")
	if code != 1 {
		t.Errorf("exit code = %d, want 1; output:\n%s", code, out)
	}
	if !strings.Contains(out, "query failed") {
		t.Errorf("missing diagnostic: %s", out)
	}
}
