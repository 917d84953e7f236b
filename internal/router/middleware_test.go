package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/neighborwang/roastery/internal/config"
	"github.com/neighborwang/roastery/internal/service"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

func TestSessionMiddlewareIssuesAndReusesCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	signer := service.NewSessionSigner(testSessionSecret, time.Hour)
	r := gin.New()
	r.Use(SessionMiddleware(signer, config.SessionConfig{CookieName: "nw_session"}))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"session_id": getSessionID(c)})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "nw_session" || !cookies[0].HttpOnly {
		t.Fatalf("expected http-only session cookie, got %+v", cookies)
	}
	var first map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &first)
	if first["session_id"] == "" {
		t.Fatalf("session id should be set on first visit")
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookies[0])
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	var second map[string]string
	_ = json.Unmarshal(w2.Body.Bytes(), &second)
	if second["session_id"] != first["session_id"] {
		t.Fatalf("session should be reused, want %s got %s", first["session_id"], second["session_id"])
	}
	if len(w2.Result().Cookies()) != 0 {
		t.Fatalf("valid cookie should not be reissued")
	}
}

func TestSessionMiddlewareReplacesForgedCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	forged, err := service.NewSessionSigner("another-secret-for-forgery", time.Hour).Sign("victim-session")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	r := gin.New()
	r.Use(SessionMiddleware(service.NewSessionSigner(testSessionSecret, time.Hour), config.SessionConfig{}))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"session_id": getSessionID(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: defaultSessionCookie, Value: forged})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["session_id"] == "" || resp["session_id"] == "victim-session" {
		t.Fatalf("forged session must not be accepted, got %q", resp["session_id"])
	}
	if len(w.Result().Cookies()) != 1 {
		t.Fatalf("fresh cookie should be issued")
	}
}
