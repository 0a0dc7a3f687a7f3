package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_HealthEndpoints(t *testing.T) {
	registry := prometheus.NewRegistry()
	s := NewServer("127.0.0.1:0", registry, testLogger())

	for _, path := range []string{"/health", "/healthz", "/ready", "/readyz"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			s.server.Handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if body := strings.TrimSpace(rec.Body.String()); body != "ok" {
				t.Errorf("body = %q, want ok", body)
			}
		})
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewCollectorWithRegistry(CollectorConfig{Version: "test", ConfiguredProcesses: 4}, registry)
	s := NewServer("127.0.0.1:0", registry, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "demo_stack_configured_processes 4") {
		t.Errorf("metrics output missing configured processes gauge:\n%s", body)
	}
	if !strings.Contains(body, `demo_stack_info{version="test"} 1`) {
		t.Errorf("metrics output missing info gauge:\n%s", body)
	}
}

func TestServer_Addr(t *testing.T) {
	s := NewServer("0.0.0.0:17092", nil, testLogger())
	if s.Addr() != "0.0.0.0:17092" {
		t.Errorf("Addr() = %q", s.Addr())
	}
}
