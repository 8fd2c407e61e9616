package request

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registro/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	capture := func(dst *string) http.Handler {
		return RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*dst = requestcontext.RequestID(r.Context())
		}))
	}

	t.Run("generates UUID when header is absent", func(t *testing.T) {
		var id string
		w := httptest.NewRecorder()
		capture(&id).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Header().Get("X-Request-ID"))
	})

	t.Run("propagates a valid client id", func(t *testing.T) {
		var id string
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		req.Header.Set("X-Request-ID", "trace.span_1234")
		w := httptest.NewRecorder()
		capture(&id).ServeHTTP(w, req)

		assert.Equal(t, "trace.span_1234", id)
		assert.Equal(t, "trace.span_1234", w.Header().Get("X-Request-ID"))
	})

	t.Run("replaces unsafe client ids", func(t *testing.T) {
		for _, bad := range []string{
			strings.Repeat("a", MaxRequestIDLength+1),
			"valid\ninjected-log-line",
			"request id",
			`request"id`,
			"request\x00id",
		} {
			var id string
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			req.Header.Set("X-Request-ID", bad)
			capture(&id).ServeHTTP(httptest.NewRecorder(), req)

			assert.NotEqual(t, bad, id)
			assert.Len(t, id, 36)
		}
	})
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestID(Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("store exploded")
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/registro", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "store exploded")
}

func TestLogger(t *testing.T) {
	t.Run("logs request with anonymized client address", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		req := httptest.NewRequest(http.MethodPost, "/registro", nil)
		req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), "203.0.113.77", "curl"))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "http request", entry["msg"])
		assert.Equal(t, float64(http.StatusCreated), entry["status"])
		assert.Equal(t, "203.0.113.0", entry["remote_addr_prefix"])
	})

	t.Run("skips healthy probes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		for _, path := range []string{"/health", "/health/ready", "/metrics"} {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		}
		assert.Empty(t, buf.String())
	})

	t.Run("logs failing probes at error level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Contains(t, buf.String(), `"level":"ERROR"`)
	})
}

func TestTimeout(t *testing.T) {
	handler := Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "timeout")
}

func TestContentTypeJSON(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{name: "json post", method: http.MethodPost, contentType: "application/json; charset=utf-8", want: http.StatusOK},
		{name: "missing content type", method: http.MethodPost, want: http.StatusOK},
		{name: "form post", method: http.MethodPost, contentType: "application/x-www-form-urlencoded", want: http.StatusUnsupportedMediaType},
		{name: "get ignores header", method: http.MethodGet, contentType: "text/plain", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/registro", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			ContentTypeJSON(ok).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestLatencyMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(LatencyMiddleware(m))
	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stats", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/stats", http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("unmatched", http.MethodGet, "404")))
}
