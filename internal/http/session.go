package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"auth-blog/internal/domain"
)

const callerKey = "caller"

// sessionMiddleware resolves the session once per request. Handlers read it
// back with callerFrom and hand it to the services explicitly.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := h.sessions.Resolve(c.Request.Context(), h.credential(c))
		c.Set(callerKey, domain.Caller{Session: sess, Err: err})
		c.Next()
	}
}

func callerFrom(c *gin.Context) domain.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(domain.Caller); ok {
			return caller
		}
	}
	return domain.Caller{Session: domain.Anonymous}
}

// credential prefers the session cookie and falls back to a bearer token.
func (h *Handler) credential(c *gin.Context) string {
	if raw, err := c.Cookie(h.cookie.Name); err == nil && raw != "" {
		return raw
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func (h *Handler) setSessionCookie(c *gin.Context, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type userResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) currentSession(c *gin.Context) {
	caller := callerFrom(c)
	if caller.Err != nil {
		h.logger.WithField("auth_error", caller.Err.Error()).Warn("session lookup failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session could not be verified"})
		return
	}
	if caller.Session.IsAnonymous() {
		c.JSON(http.StatusOK, gin.H{"authenticated": false, "user": nil})
		return
	}
	user := userResponse{ID: caller.Session.UserID, Name: caller.Session.DisplayName}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
}
