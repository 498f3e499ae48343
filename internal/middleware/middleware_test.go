package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString(ContextRole)})
	})
	r.GET("/", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	userToken, _ := jwtService.GenerateToken(uuid.New(), "u@example.com", "user")
	adminToken, _ := jwtService.GenerateToken(uuid.New(), "a@example.com", "admin")

	tests := []struct {
		name   string
		header string
		query  string
		admin  bool
		want   int
	}{
		{"missing token", "", "", false, http.StatusUnauthorized},
		{"malformed header", "Token " + userToken, "", false, http.StatusUnauthorized},
		{"bad token", "Bearer nope", "", false, http.StatusUnauthorized},
		{"valid user", "Bearer " + userToken, "", false, http.StatusOK},
		{"query token", "", userToken, false, http.StatusOK},
		{"user on admin route", "Bearer " + userToken, "", true, http.StatusForbidden},
		{"admin on admin route", "Bearer " + adminToken, "", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := []gin.HandlerFunc{AuthMiddleware(jwtService)}
			if tt.admin {
				chain = append(chain, AdminMiddleware())
			}
			r := newRouter(chain...)

			url := "/"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected allowed origin header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no CORS header for unknown origin, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected preflight 204, got %d", w.Code)
	}
}

type stubShared struct {
	allow bool
	err   error
	calls int
}

func (s *stubShared) AllowAction(context.Context, uuid.UUID, string, float64, int) (bool, error) {
	s.calls++
	return s.allow, s.err
}

func TestRateLimiter_Local(t *testing.T) {
	rl := NewRateLimiter(1, nil)
	userID := uuid.New()

	// burst is 2x the rate
	for i := 0; i < 2; i++ {
		if !rl.Allow(context.Background(), userID, "comment") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.Allow(context.Background(), userID, "comment") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow(context.Background(), uuid.New(), "comment") {
		t.Fatal("other users have their own bucket")
	}
}

func TestRateLimiter_SharedAndFallback(t *testing.T) {
	shared := &stubShared{allow: false}
	rl := NewRateLimiter(5, shared)
	if rl.Allow(context.Background(), uuid.New(), "report") {
		t.Fatal("shared limiter decision should win")
	}

	shared.err = errors.New("redis down")
	if !rl.Allow(context.Background(), uuid.New(), "report") {
		t.Fatal("expected local fallback to allow")
	}
	if shared.calls != 2 {
		t.Fatalf("expected 2 shared calls, got %d", shared.calls)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, nil)
	userID := uuid.New()
	setUser := func(c *gin.Context) { c.Set(ContextUserID, userID) }
	r := newRouter(setUser, RateLimitMiddleware(rl, "project"))

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}
