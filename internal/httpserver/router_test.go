package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"postro/internal/domain"
	"postro/internal/session"
	"github.com/gin-gonic/gin"
)

func TestSessionMiddlewareIssuesCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var resolved string
	router := gin.New()
	router.Use(sessionMiddleware())
	router.GET("/test", func(c *gin.Context) {
		resolved = sessionID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if resolved == "" || !strings.HasPrefix(resolved, "session_") {
		t.Fatalf("unexpected session id %q", resolved)
	}
	cookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, session.StorageKey+"="+resolved) {
		t.Fatalf("expected session cookie, got %q", cookie)
	}
}

func TestSessionMiddlewareReusesCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var resolved string
	router := gin.New()
	router.Use(sessionMiddleware())
	router.GET("/test", func(c *gin.Context) {
		resolved = sessionID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: session.StorageKey, Value: "session_123_abc"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if resolved != "session_123_abc" {
		t.Fatalf("expected cookie id reused, got %q", resolved)
	}
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/healthz", healthHandler)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

// closeNotifyRecorder adds the http.CloseNotifier method that gin's
// Context.Stream requires but httptest.ResponseRecorder lacks.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (c *closeNotifyRecorder) CloseNotify() <-chan bool { return c.closed }

type stubWatcher struct {
	cart *domain.Cart
}

func (s *stubWatcher) Watch(_ context.Context, _ string, onChange func(*domain.Cart)) (func(), error) {
	onChange(s.cart)
	return func() {}, nil
}

func TestWatchStreamsInitialSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	watcher := &stubWatcher{cart: &domain.Cart{
		SessionID: "s1",
		Items:     []domain.CartItem{{ProductID: "p1", Quantity: 1}},
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	router := gin.New()
	router.Use(sessionMiddleware())
	router.GET("/api/cart/watch", watchCartHandler(watcher, nil))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/cart/watch", nil).WithContext(ctx)
	rec := &closeNotifyRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool)}

	timer := time.AfterFunc(200*time.Millisecond, cancel)
	defer timer.Stop()
	router.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "event:cart") {
		t.Fatalf("expected cart event in stream, got %q", body)
	}
	if !strings.Contains(body, "p1") {
		t.Fatalf("expected snapshot payload in stream, got %q", body)
	}
}
