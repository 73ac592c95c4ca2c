package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	apperrors "github.com/kbukum/pullfeed/errors"
	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/observability"
	"github.com/kbukum/pullfeed/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	e := gin.New()
	e.Use(mw...)
	return e
}

func do(e *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func jsonLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", buf)
}

func TestRecovery_NoPanic(t *testing.T) {
	e := newEngine(middleware.Recovery(logger.Nop()))
	e.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	rr := do(e, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRecovery_Panic(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(middleware.Recovery(jsonLogger(&buf)))
	e.GET("/test", func(*gin.Context) { panic("test panic") })

	rr := do(e, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body.Error.Code != apperrors.ErrCodeInternal {
		t.Errorf("code = %s", body.Error.Code)
	}
	if !strings.Contains(buf.String(), "test panic") {
		t.Errorf("panic not logged: %q", buf.String())
	}
}

func TestRequestID(t *testing.T) {
	existing := uuid.NewString()
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generates when absent", "", false},
		{"keeps valid uuid", existing, true},
		{"replaces non-uuid", "<script>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seenCtx, seenGin string
			e := newEngine(middleware.RequestID())
			e.GET("/", func(c *gin.Context) {
				seenCtx, _ = c.Request.Context().Value(logger.RequestIDKey).(string)
				seenGin = c.GetString(logger.FieldRequestID)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.incoming != "" {
				req.Header.Set(middleware.HeaderRequestID, tt.incoming)
			}
			rr := do(e, req)

			got := rr.Header().Get(middleware.HeaderRequestID)
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("response id %q is not a uuid", got)
			}
			if tt.keep && got != tt.incoming {
				t.Errorf("id = %q, want %q", got, tt.incoming)
			}
			if !tt.keep && got == tt.incoming {
				t.Errorf("id %q should have been replaced", got)
			}
			if seenCtx != got || seenGin != got {
				t.Errorf("handler saw ctx=%q gin=%q, header=%q", seenCtx, seenGin, got)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins:   []string{"http://example.com"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}
	e := newEngine(middleware.CORS(cfg))
	e.GET("/feed", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/feed", http.NoBody)
		req.Header.Set("Origin", "http://example.com")
		rr := do(e, req)
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
			t.Errorf("Allow-Methods = %q", got)
		}
		if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("expected credentials header")
		}
	})

	t.Run("disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/feed", http.NoBody)
		req.Header.Set("Origin", "http://evil.com")
		rr := do(e, req)
		if rr.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("expected no CORS headers")
		}
		if rr.Code != http.StatusOK {
			t.Errorf("status = %d", rr.Code)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/feed", http.NoBody)
		req.Header.Set("Origin", "http://example.com")
		rr := do(e, req)
		if rr.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rr.Code)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		status  int
		logged  bool
		wantLvl string
	}{
		{"success at debug", "/feed", http.StatusOK, true, "debug"},
		{"client error at warn", "/feed", http.StatusBadRequest, true, "warn"},
		{"server error at error", "/feed", http.StatusInternalServerError, true, "error"},
		{"health skipped", "/healthz", http.StatusOK, false, ""},
		{"version skipped", "/version", http.StatusOK, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := newEngine(middleware.RequestLogger(jsonLogger(&buf)))
			e.GET(tt.path, func(c *gin.Context) { c.Status(tt.status) })

			do(e, httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			if !tt.logged {
				if buf.Len() != 0 {
					t.Errorf("expected no log, got %q", buf.String())
				}
				return
			}
			var m map[string]interface{}
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
				t.Fatalf("decode %q: %v", buf.String(), err)
			}
			if m["level"] != tt.wantLvl {
				t.Errorf("level = %v, want %s", m["level"], tt.wantLvl)
			}
			if m["status"] != float64(tt.status) {
				t.Errorf("status = %v", m["status"])
			}
			if _, ok := m[logger.FieldDuration]; !ok {
				t.Error("missing duration")
			}
		})
	}
}

func TestBodySizeLimit(t *testing.T) {
	e := newEngine(middleware.BodySizeLimit(8))
	e.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	rr := do(e, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	if rr.Code != http.StatusOK {
		t.Errorf("small body status = %d", rr.Code)
	}
	rr = do(e, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("definitely too long")))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body status = %d", rr.Code)
	}
}

func TestMetrics_NilIsPassThrough(t *testing.T) {
	e := newEngine(middleware.Metrics(nil))
	e.GET("/", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	if rr := do(e, httptest.NewRequest(http.MethodGet, "/", http.NoBody)); rr.Code != http.StatusTeapot {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestMetrics_LabelsMatchedRoute(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := observability.NewHTTPMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	if err != nil {
		t.Fatalf("NewHTTPMetrics: %v", err)
	}
	e := newEngine(middleware.Metrics(m))
	e.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	do(e, httptest.NewRequest(http.MethodGet, "/items/1", http.NoBody))
	do(e, httptest.NewRequest(http.MethodGet, "/items/2", http.NoBody))
	do(e, httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	routes := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != "http.server.requests" {
				continue
			}
			for _, dp := range metric.Data.(metricdata.Sum[int64]).DataPoints {
				v, _ := dp.Attributes.Value("route")
				routes[v.AsString()] += dp.Value
			}
		}
	}
	if routes["/items/:id"] != 2 {
		t.Errorf("/items/:id = %d, want 2 (%v)", routes["/items/:id"], routes)
	}
	if routes["unmatched"] != 1 {
		t.Errorf("unmatched = %d, want 1 (%v)", routes["unmatched"], routes)
	}
}
