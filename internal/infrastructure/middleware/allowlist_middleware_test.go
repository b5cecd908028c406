package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

func allowlistRouter(t *testing.T, hosts []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(NewAllowlistMiddleware(hosts, zaptest.NewLogger(t).Sugar()))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestAllowlistMiddleware_EmptyListAllowsAll(t *testing.T) {
	router := allowlistRouter(t, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "203.0.113.7:9999"
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestAllowlistMiddleware_AllowsListedIP(t *testing.T) {
	router := allowlistRouter(t, []string{"192.168.1.10"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "192.168.1.10:5123"
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestAllowlistMiddleware_RejectsUnlistedIP(t *testing.T) {
	router := allowlistRouter(t, []string{"192.168.1.10"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "203.0.113.7:9999"
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not allowed") {
		t.Errorf("body = %q", w.Body.String())
	}
}
