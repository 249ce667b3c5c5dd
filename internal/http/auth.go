package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auth-blog/internal/identity"
)

const stateScope = "blog-auth"

func (h *Handler) env(c *gin.Context) identity.Env {
	return identity.NewHTTPEnv(stateScope, h.cookie.Secure, c.Writer, c.Request)
}

func (h *Handler) signInRedirect(c *gin.Context) {
	url, err := h.signIn.LoginURL(h.env(c))
	if err != nil {
		h.logger.WithError(err).Error("build login url")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start sign-in"})
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *Handler) signInCallback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		h.logger.WithField("reason", reason).Info("sign-in declined at provider")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign-in failed"})
		return
	}

	ctx := c.Request.Context()
	id, err := h.signIn.Exchange(ctx, h.env(c), c.Query("code"), c.Query("state"))
	if err != nil {
		if errors.Is(err, identity.ErrAuthFailed) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "sign-in failed"})
			return
		}
		h.logger.WithError(err).Error("sign-in exchange")
		c.JSON(http.StatusBadGateway, gin.H{"error": "identity provider unavailable"})
		return
	}

	user, err := h.users.Provision(ctx, id)
	if err != nil {
		h.logger.WithError(err).WithField("provider", id.Provider).Error("provision user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign in"})
		return
	}

	token, expires, err := h.sessions.Issue(ctx, user)
	if err != nil {
		h.logger.WithError(err).Error("issue session token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign in"})
		return
	}

	h.setSessionCookie(c, token, expires)
	h.logger.WithField("user_id", user.ID).Info("signed in")
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) signOut(c *gin.Context) {
	h.clearSessionCookie(c)
	if err := h.sessions.Revoke(c.Request.Context(), h.credential(c)); err != nil {
		h.logger.WithError(err).Error("revoke session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign out"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
