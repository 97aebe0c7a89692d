package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-wa-gateway/internal/config"
	"github.com/tbourn/go-wa-gateway/internal/domain"
	"github.com/tbourn/go-wa-gateway/internal/media"
	"github.com/tbourn/go-wa-gateway/internal/repo"
	"github.com/tbourn/go-wa-gateway/internal/session"
)

// testConfig returns a minimal, valid config for router tests: observability
// off, generous rate limit, legacy defaults for the messaging surface.
func testConfig() config.Config {
	return config.Config{
		Port:           "0",
		MaxUploadBytes: 8 << 20,
		MaxHeaderBytes: 1 << 20,
		DBPath:         "unused",
		MediaDir:       "unused",
		PublicBaseURL:  "http://gw.test",
		SessionID:      "client2",
		AddressSuffix:  "@c.us",
		SendTimeout:    5 * time.Second,
		RateRPS:        1000,
		RateBurst:      1000,
	}
}

type routerFixture struct {
	engine   *gin.Engine
	db       *gorm.DB
	registry *session.Registry
	store    *media.Store
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "router.db"), false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store, err := media.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	registry := session.NewRegistry(session.NewSimFactory(5*time.Millisecond, zerolog.Nop()), zerolog.Nop())
	registry.CreateSession(context.Background(), "client2")

	r := gin.New()
	RegisterRoutes(context.Background(), r, db, registry, store, testConfig())

	return &routerFixture{engine: r, db: db, registry: registry, store: store}
}

func (f *routerFixture) waitReady(t *testing.T, id string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ready := f.registry.Status(id); ready {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %q never became ready", id)
}

func (f *routerFixture) do(method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndFallbacks(t *testing.T) {
	f := newRouterFixture(t)

	if w := f.do(http.MethodGet, "/health", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("/health -> %d", w.Code)
	}

	w := f.do(http.MethodGet, "/definitely-not-a-route", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route -> %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("NoRoute body not JSON: %v", err)
	}
	if body["code"] != "not_found" {
		t.Fatalf("NoRoute code = %q", body["code"])
	}

	if w := f.do(http.MethodDelete, "/health", nil, ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("method fallback -> %d", w.Code)
	}
}

func TestRouter_CommonResponseHeaders(t *testing.T) {
	f := newRouterFixture(t)
	w := f.do(http.MethodGet, "/health", nil, "")

	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("default CORS posture missing")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing")
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	f := newRouterFixture(t)
	w := f.do(http.MethodGet, "/metrics", nil, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("/metrics -> %d", w.Code)
	}
}

func TestRouter_ClientStatusLifecycle(t *testing.T) {
	f := newRouterFixture(t)

	if w := f.do(http.MethodGet, "/clientstatus/ghost", nil, ""); w.Code != http.StatusNotFound || w.Body.String() != "Client not found" {
		t.Fatalf("unknown client -> %d %q", w.Code, w.Body.String())
	}

	f.waitReady(t, "client2")
	w := f.do(http.MethodGet, "/clientstatus/client2", nil, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"isReady":true`) {
		t.Fatalf("ready client -> %d %q", w.Code, w.Body.String())
	}
}

func TestRouter_SessionRegistrationEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	if w := f.do(http.MethodPost, "/sessions/kiosk", nil, ""); w.Code != http.StatusAccepted {
		t.Fatalf("create session -> %d", w.Code)
	}
	if found, _ := f.registry.Status("kiosk"); !found {
		t.Fatalf("session not registered through the endpoint")
	}
}

func TestRouter_SendMessageEndToEnd(t *testing.T) {
	f := newRouterFixture(t)
	f.waitReady(t, "client2")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("fromNumber", "100")
	_ = mw.WriteField("toNumber", "555")
	_ = mw.WriteField("text", "Hello <name>")
	fw, err := mw.CreateFormFile("image", "pic.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	_ = mw.Close()

	w := f.do(http.MethodPost, "/sendmessage", &buf, mw.FormDataContentType())
	if w.Code != http.StatusOK || w.Body.String() != "Message sent successfully" {
		t.Fatalf("send -> %d %q", w.Code, w.Body.String())
	}

	// One audit row with the fallback name and the public image URL.
	var rec domain.SendRecord
	if err := f.db.First(&rec).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.Message != "Hello User" || rec.ToNumber != "555" {
		t.Fatalf("record unexpected: %+v", rec)
	}
	if !strings.HasPrefix(rec.AttachmentURL, "http://gw.test/uploaded-media/") {
		t.Fatalf("attachment URL unexpected: %q", rec.AttachmentURL)
	}

	// The logged URL must be fetchable back through the static route.
	path := strings.TrimPrefix(rec.AttachmentURL, "http://gw.test")
	got := f.do(http.MethodGet, path, nil, "")
	if got.Code != http.StatusOK || got.Body.String() != "png-bytes" {
		t.Fatalf("static media -> %d", got.Code)
	}

	// And the listing endpoint reports it.
	list := f.do(http.MethodGet, "/sendrecords", nil, "")
	if list.Code != http.StatusOK {
		t.Fatalf("/sendrecords -> %d", list.Code)
	}
	if !strings.Contains(list.Body.String(), "Hello User") {
		t.Fatalf("listing missing the record: %s", list.Body.String())
	}
}

func TestRouter_SendMessageUnknownSession(t *testing.T) {
	f := newRouterFixture(t)
	f.waitReady(t, "client2")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("toNumber", "555")
	_ = mw.WriteField("sessionId", "nobody")
	_ = mw.Close()

	w := f.do(http.MethodPost, "/sendmessage", &buf, mw.FormDataContentType())
	if w.Code != http.StatusNotFound || w.Body.String() != "Client not found" {
		t.Fatalf("send to unknown session -> %d %q", w.Code, w.Body.String())
	}
}

func TestRouter_BodyLimitRejectsOversizedUpload(t *testing.T) {
	f := newRouterFixture(t)
	f.waitReady(t, "client2")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("toNumber", "555")
	fw, _ := mw.CreateFormFile("document", "big.bin")
	_, _ = fw.Write(bytes.Repeat([]byte("x"), 9<<20)) // over the 8 MiB cap
	_ = mw.Close()

	w := f.do(http.MethodPost, "/sendmessage", &buf, mw.FormDataContentType())
	if w.Code == http.StatusOK {
		t.Fatalf("oversized upload must not succeed")
	}
}

func TestRouter_SendRecordsGzip(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/sendrecords", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("/sendrecords -> %d", w.Code)
	}
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("listing should honor Accept-Encoding: gzip")
	}
}
