package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactingLogger_ScrubsQueryAndHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-API-Key"}}))
	r.GET("/status", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/status?to=3069455512&ref=123e4567-e89b-12d3-a456-426614174000", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("X-API-Key", "k-12345")
	req.Header.Set("X-Contact", "ana@example.com")
	req.Header.Set("X-Callback", "call 555-1212 back")
	r.ServeHTTP(w, req)

	out := buf.String()

	for _, leak := range []string{"3069455512", "ana@example.com", "123e4567-e89b-12d3-a456-426614174000", "secret-token", "k-12345", "555-1212"} {
		if strings.Contains(out, leak) {
			t.Fatalf("log leaked %q:\n%s", leak, out)
		}
	}
	for _, marker := range []string{"[REDACTED:phone]", "[REDACTED:email]", "[REDACTED:id]", "[REDACTED]"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("expected marker %q in log:\n%s", marker, out)
		}
	}
}

func TestRedactingLogger_LevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("5xx must log at error level:\n%s", buf.String())
	}
}

func TestRedactingLogger_PathFallbackOnNoRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if !strings.Contains(buf.String(), `"path":"/nowhere"`) {
		t.Fatalf("raw path fallback missing:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("404 must log at warn level:\n%s", buf.String())
	}
}
