package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/wrenhq/wren/model"
)

// CreatePost accepts a multipart form with "text" and an optional "image"
// file. A post needs text, an image, or both.
func (s *Server) CreatePost(c *gin.Context) {
	text := strings.TrimSpace(c.PostForm("text"))
	if len(text) > model.MaxPostTextLen {
		writeError(c, errors.Wrapf(model.ErrValidation, "text exceeds %d characters", model.MaxPostTextLen))
		return
	}

	imageURL, err := imageFromForm(c, "image")
	if err != nil {
		writeError(c, err)
		return
	}
	if text == "" && imageURL == "" {
		writeError(c, errors.Wrap(model.ErrValidation, "post needs text or an image"))
		return
	}

	post := &model.Post{
		UserID:   currentUserID(c),
		Text:     text,
		ImageURL: imageURL,
	}
	if err := s.store.CreatePost(c.Request.Context(), post); err != nil {
		writeError(c, err)
		return
	}
	if author, err := s.store.GetUser(c.Request.Context(), post.UserID); err == nil {
		summary := author.Summary()
		post.Author = &summary
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) GetFeed(c *gin.Context) {
	posts, err := s.store.GetFeed(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) GetExploreFeed(c *gin.Context) {
	posts, err := s.store.GetExploreFeed(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) GetUserPosts(c *gin.Context) {
	authorID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	posts, err := s.store.GetUserPosts(c.Request.Context(), authorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeletePost(c.Request.Context(), id, currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (s *Server) LikePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	post, err := s.store.ToggleLike(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

type reactRequest struct {
	Kind model.ReactionKind `json:"kind"`
}

func (s *Server) ReactToPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.Wrap(model.ErrValidation, "malformed request body"))
		return
	}
	if !req.Kind.Valid() {
		writeError(c, errors.Wrap(model.ErrValidation, "unknown reaction kind"))
		return
	}

	post, err := s.store.React(c.Request.Context(), id, currentUserID(c), req.Kind)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) RemoveReaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	post, err := s.store.RemoveReaction(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

type repostRequest struct {
	Text string `json:"text"`
}

func (s *Server) RepostPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req repostRequest
	// A body is optional for reposts without commentary.
	c.ShouldBindJSON(&req)

	repost, err := s.store.Repost(c.Request.Context(), id, currentUserID(c), strings.TrimSpace(req.Text))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, repost)
}
