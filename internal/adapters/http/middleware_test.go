package httpadapter

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/legal-intake/internal/config"
	"github.com/kirillkom/legal-intake/internal/infrastructure/catalog"
	"github.com/kirillkom/legal-intake/internal/observability/logging"
)

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	handler := newTestHandler(config.Config{
		APIRateLimitRPS:   1,
		APIRateLimitBurst: 1,
	}, nil, sessionsFake{}, filesFake{})

	res1 := httptest.NewRecorder()
	handler.ServeHTTP(res1, httptest.NewRequest(http.MethodGet, "/v1/templates", nil))
	if res1.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", res1.Code)
	}

	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, httptest.NewRequest(http.MethodGet, "/v1/templates", nil))
	if res2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", res2.Code)
	}
	if res2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header for 429 response")
	}
}

func TestBackpressureMiddlewareReturns503WhenSaturated(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int, 1)
	var rejected []string

	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		w.WriteHeader(http.StatusNoContent)
	})
	handler := backpressureMiddleware(base, 1, 20*time.Millisecond, func(reason string) {
		rejected = append(rejected, reason)
	})

	go func() {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))
		done <- res.Code
	}()

	<-started

	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))
	if res2.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for saturated backpressure gate, got %d", res2.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(bytes.NewReader(res2.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("decode overload response: %v", err)
	}
	if resp["error"] == "" {
		t.Fatalf("expected overload error message in response")
	}
	if len(rejected) != 1 || rejected[0] != "overloaded" {
		t.Fatalf("expected one overloaded rejection, got %v", rejected)
	}

	close(release)

	select {
	case code := <-done:
		if code != http.StatusNoContent {
			t.Fatalf("first request expected 204, got %d", code)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("timed out waiting for first request completion")
	}
}

func TestTrafficControlDisabledByDefault(t *testing.T) {
	base := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := rateLimitMiddleware(backpressureMiddleware(base, 0, 0, nil), 0, 0, nil)

	for i := 0; i < 5; i++ {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/files", nil))
		if res.Code != http.StatusNoContent {
			t.Fatalf("request %d expected 204, got %d", i, res.Code)
		}
	}
}

func TestRequestIDMiddlewareKeepsWellFormedID(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "gw-42.a_b")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if seen != "gw-42.a_b" || res.Header().Get(requestIDHeader) != "gw-42.a_b" {
		t.Fatalf("expected caller id to be kept, got ctx=%q header=%q", seen, res.Header().Get(requestIDHeader))
	}
}

func TestRequestIDMiddlewareReplacesUnsafeID(t *testing.T) {
	for _, id := range []string{"", "line\nbreak", "with space", strings.Repeat("a", maxRequestIDLen+1)} {
		var seen string
		handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestIDFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(requestIDHeader, id)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if seen == id || len(seen) != 36 {
			t.Fatalf("expected generated uuid for %q, got %q", id, seen)
		}
	}
}

func TestAccessLogLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLoggerTo(&buf, "api", "info")
	handler := NewRouter(config.Config{}, &intakeFake{}, sessionsFake{}, catalog.NewStore(catalog.Builtin()), filesFake{}, WithLogger(logger)).Handler()

	for _, path := range []string{"/healthz", "/v1/templates", "/v1/templates/missing"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if rec["msg"] == "http_access" {
			records = append(records, rec)
		}
	}
	if len(records) != 2 {
		t.Fatalf("expected health check to be below info level, got %d access records", len(records))
	}
	if records[0]["path"] != "/v1/templates" || records[0]["level"] != "INFO" || records[0]["status"] != float64(http.StatusOK) {
		t.Fatalf("unexpected first record: %v", records[0])
	}
	if records[1]["status"] != float64(http.StatusNotFound) || records[1]["level"] != "WARN" {
		t.Fatalf("unexpected second record: %v", records[1])
	}
	if records[1]["request_id"] == "" {
		t.Fatalf("expected request id in access record")
	}
}

func TestResponseRecorderKeepsFirstStatus(t *testing.T) {
	rec := &responseRecorder{ResponseWriter: httptest.NewRecorder()}
	if rec.statusCode() != http.StatusOK {
		t.Fatalf("expected implicit 200")
	}
	rec.WriteHeader(http.StatusCreated)
	rec.WriteHeader(http.StatusInternalServerError)
	if _, err := rec.Write([]byte("ok")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rec.statusCode() != http.StatusCreated || rec.written != 2 {
		t.Fatalf("unexpected recorder state: status=%d written=%d", rec.statusCode(), rec.written)
	}
}
