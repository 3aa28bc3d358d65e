package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"codepair/internal/gateway"
	"codepair/internal/models"
	"codepair/internal/presence"
	"codepair/internal/registry"
)

func newTestServer(t *testing.T) (*gin.Engine, *registry.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := registry.NewStore(time.Hour, zap.NewNop())
	gw := gateway.New(gateway.Config{
		Store:          store,
		Presence:       presence.NewTracker(),
		AllowedOrigins: []string{"*"},
		Logger:         zap.NewNop(),
	})
	router := gin.New()
	NewHandler(store, gw, zap.NewNop()).RegisterRoutes(router)
	return router, store
}

func doJSONRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode json: %v", err)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("unexpected status %d, body: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateAndFetchSession(t *testing.T) {
	router, _ := newTestServer(t)

	createResp := doJSONRequest(t, router, http.MethodPost, "/api/sessions", nil)
	assertStatus(t, createResp, http.StatusCreated)
	var created struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	decodeJSON(t, createResp.Body.Bytes(), &created)
	if _, err := uuid.Parse(created.ID); err != nil {
		t.Fatalf("expected uuid session id, got %q", created.ID)
	}
	if created.Message != "Session created successfully" {
		t.Fatalf("message = %q, want %q", created.Message, "Session created successfully")
	}

	getResp := doJSONRequest(t, router, http.MethodGet, "/api/sessions/"+created.ID, nil)
	assertStatus(t, getResp, http.StatusOK)
	var fetched struct {
		ID       string `json:"id"`
		Code     string `json:"code"`
		Language string `json:"language"`
	}
	decodeJSON(t, getResp.Body.Bytes(), &fetched)
	if fetched.ID != created.ID {
		t.Fatalf("fetched id = %q, want %q", fetched.ID, created.ID)
	}
	if fetched.Code != models.DefaultCode {
		t.Fatalf("fetched code = %q, want the default buffer", fetched.Code)
	}
	if fetched.Language != string(models.DefaultLanguage) {
		t.Fatalf("fetched language = %q, want %q", fetched.Language, models.DefaultLanguage)
	}
}

func TestCreatedSessionsAreDistinct(t *testing.T) {
	router, store := newTestServer(t)

	first := doJSONRequest(t, router, http.MethodPost, "/api/sessions", nil)
	second := doJSONRequest(t, router, http.MethodPost, "/api/sessions", nil)
	assertStatus(t, first, http.StatusCreated)
	assertStatus(t, second, http.StatusCreated)

	var a, b struct {
		ID string `json:"id"`
	}
	decodeJSON(t, first.Body.Bytes(), &a)
	decodeJSON(t, second.Body.Bytes(), &b)
	if a.ID == b.ID {
		t.Fatalf("expected distinct session ids, both %q", a.ID)
	}
	if store.Count() != 2 {
		t.Fatalf("store count = %d, want 2", store.Count())
	}
}

func TestGetSessionNotFound(t *testing.T) {
	router, _ := newTestServer(t)

	resp := doJSONRequest(t, router, http.MethodGet, "/api/sessions/ghost", nil)
	assertStatus(t, resp, http.StatusNotFound)
	var body struct {
		Error string `json:"error"`
	}
	decodeJSON(t, resp.Body.Bytes(), &body)
	if body.Error != "Session not found" {
		t.Fatalf("error = %q, want %q", body.Error, "Session not found")
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	resp := doJSONRequest(t, router, http.MethodGet, "/health", nil)
	assertStatus(t, resp, http.StatusOK)
	var body struct {
		Status string `json:"status"`
	}
	decodeJSON(t, resp.Body.Bytes(), &body)
	if body.Status != "ok" {
		t.Fatalf("status = %q, want %q", body.Status, "ok")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	resp := doJSONRequest(t, router, http.MethodGet, "/metrics", nil)
	assertStatus(t, resp, http.StatusOK)
	if !strings.Contains(resp.Body.String(), "codepair_connections_active") {
		t.Fatalf("metrics exposition missing gauge, body: %s", resp.Body.String())
	}
}

func TestAPIMiddlewareScope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := registry.NewStore(time.Hour, zap.NewNop())
	gw := gateway.New(gateway.Config{
		Store:    store,
		Presence: presence.NewTracker(),
		Logger:   zap.NewNop(),
	})
	router := gin.New()
	reject := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "limited"})
	}
	NewHandler(store, gw, zap.NewNop()).RegisterRoutes(router, reject)

	blocked := doJSONRequest(t, router, http.MethodPost, "/api/sessions", nil)
	assertStatus(t, blocked, http.StatusTooManyRequests)

	// Routes outside the /api group bypass the group middleware.
	open := doJSONRequest(t, router, http.MethodGet, "/health", nil)
	assertStatus(t, open, http.StatusOK)
}
