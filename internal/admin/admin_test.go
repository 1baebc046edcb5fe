package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, logs *bytes.Buffer, origins ...string) *gin.Engine {
	t.Helper()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "weather",
		Subsystem: "server",
		Name:      "test_total",
		Help:      "Test counter.",
	})
	reg.MustRegister(counter)
	counter.Add(3)

	return NewRouter(Options{
		Logger:      zerolog.New(logs),
		Gatherer:    reg,
		CORSOrigins: origins,
		Started:     time.Now().Add(-time.Minute),
	})
}

func TestHealth(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" || body["service"] != serviceName {
		t.Fatalf("unexpected response body: %#v", body)
	}
	if uptime, _ := body["uptime"].(string); uptime == "" {
		t.Fatalf("missing uptime: %#v", body)
	}
	if !strings.Contains(logs.String(), `"path":"/health"`) {
		t.Fatalf("request was not logged: %s", logs.String())
	}
}

func TestCities(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/cities", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var body struct {
		Cities []string `json:"cities"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Cities) != 10 {
		t.Fatalf("expected 10 cities, got %v", body.Cities)
	}
	if body.Cities[0] != "bari" {
		t.Fatalf("unexpected first city: %q", body.Cities[0])
	}
}

func TestMetrics(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "weather_server_test_total 3") {
		t.Fatalf("metric missing from output:\n%s", rr.Body.String())
	}
}

func TestNotFoundIsLoggedAsWarning(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if !strings.Contains(logs.String(), `"level":"warn"`) {
		t.Fatalf("expected warn log, got %s", logs.String())
	}
}

func TestCORS(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs, "http://dashboard.local")

	req := httptest.NewRequest(http.MethodGet, "/cities", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://dashboard.local" {
		t.Fatalf("unexpected allow origin header: %q", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, ln, r)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for Run to return")
	}
}
