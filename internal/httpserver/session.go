package httpserver

import (
	"errors"
	"net/http"

	"postro/internal/session"
	"github.com/gin-gonic/gin"
)

const sessionCtxKey = "postro.sessionID"

// cookieMaxAge keeps the session cookie effectively permanent; the id only
// rotates when the client clears its cookies.
const cookieMaxAge = 10 * 365 * 24 * 3600

// cookieStorage adapts the request's cookie jar to session.ClientStorage.
type cookieStorage struct {
	c *gin.Context
}

func (s cookieStorage) Get(key string) (string, error) {
	value, err := s.c.Cookie(key)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	return value, err
}

func (s cookieStorage) Set(key, value string) error {
	s.c.SetCookie(key, value, cookieMaxAge, "/", "", false, true)
	return nil
}

// sessionMiddleware resolves the durable session id once per request and
// makes it available to handlers. The core never reads ambient storage; it
// receives this value explicitly.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionCtxKey, session.Resolve(cookieStorage{c: c}))
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionCtxKey)
}
