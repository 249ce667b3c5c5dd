package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"auth-blog/internal/domain"
	"auth-blog/internal/feed"
	"auth-blog/internal/service"
)

const signInPath = "/auth/signin"

type createPostRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

type fieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (h *Handler) listFeed(c *gin.Context) {
	posts, err := h.feed.List(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("list feed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load feed"})
		return
	}
	c.JSON(http.StatusOK, feed.Entries(posts))
}

func (h *Handler) newPost(c *gin.Context) {
	caller := callerFrom(c)
	if caller.Err != nil || caller.Session.IsAnonymous() {
		c.Redirect(http.StatusSeeOther, signInPath)
		return
	}

	user := userResponse{ID: caller.Session.UserID, Name: caller.Session.DisplayName}
	c.JSON(http.StatusOK, gin.H{"user": user, "fields": []string{"title", "content"}})
}

func (h *Handler) createPost(c *gin.Context) {
	asJSON := wantsJSON(c)

	var req createPostRequest
	var err error
	if c.ContentType() == binding.MIMEJSON {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindWith(&req, binding.Form)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	outcome, err := h.posts.CreatePost(c.Request.Context(), callerFrom(c), service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.writeCreateError(c, err, asJSON)
		return
	}

	if asJSON {
		c.JSON(http.StatusCreated, gin.H{"post": feed.NewEntry(outcome.Post), "next": outcome.Next})
		return
	}
	c.Redirect(http.StatusSeeOther, outcome.Next)
}

func (h *Handler) writeCreateError(c *gin.Context, err error, asJSON bool) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		if asJSON {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in to post"})
			return
		}
		c.Redirect(http.StatusSeeOther, signInPath)
	case errors.As(err, &verr):
		fields := make([]fieldErrorResponse, len(verr.Fields))
		for i, f := range verr.Fields {
			fields[i] = fieldErrorResponse{Field: f.Field, Message: f.Message}
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error(), "fields": fields})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create post"})
	}
}

// wantsJSON reports whether the client is an API caller rather than a browser form.
func wantsJSON(c *gin.Context) bool {
	if c.ContentType() == binding.MIMEJSON {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), binding.MIMEJSON)
}
