package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"auth-blog/internal/domain"
	"auth-blog/internal/identity"
	"auth-blog/internal/service"
)

// FeedReader serves the feed, possibly from a cache.
type FeedReader interface {
	List(ctx context.Context) ([]domain.Post, error)
}

// SessionManager resolves session tokens, issues them at sign-in and revokes
// them at sign-out.
type SessionManager interface {
	service.SessionResolver
	Issue(ctx context.Context, user *domain.User) (string, time.Time, error)
	Revoke(ctx context.Context, credential string) error
}

// SignIn drives the external provider's login flow.
type SignIn interface {
	LoginURL(env identity.Env) (string, error)
	Exchange(ctx context.Context, env identity.Env, code, state string) (domain.Identity, error)
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	posts    service.PostService
	feed     FeedReader
	sessions SessionManager
	users    service.UserService
	signIn   SignIn
	cookie   CookieConfig
	logger   logrus.FieldLogger
}

func NewHandler(posts service.PostService, feed FeedReader, sessions SessionManager, users service.UserService, signIn SignIn, cookie CookieConfig, logger logrus.FieldLogger) *Handler {
	if cookie.Name == "" {
		cookie.Name = "blog_session"
	}
	return &Handler{
		posts:    posts,
		feed:     feed,
		sessions: sessions,
		users:    users,
		signIn:   signIn,
		cookie:   cookie,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware(), h.sessionMiddleware())

	router.GET("/", h.listFeed)
	router.GET("/posts/new", h.newPost)
	router.POST("/posts", h.createPost)
	router.GET("/session", h.currentSession)
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	auth := router.Group("/auth")
	{
		auth.GET("/signin", h.signInRedirect)
		auth.GET("/callback", h.signInCallback)
		auth.POST("/signout", h.signOut)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}
