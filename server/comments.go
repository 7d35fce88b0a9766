package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/wrenhq/wren/model"
)

type commentRequest struct {
	Text string `json:"text"`
}

func (s *Server) CreateComment(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.Wrap(model.ErrValidation, "malformed request body"))
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(c, errors.Wrap(model.ErrValidation, "comment text is required"))
		return
	}

	comment := &model.Comment{
		PostID: postID,
		UserID: currentUserID(c),
		Text:   req.Text,
	}
	if err := s.store.CreateComment(c.Request.Context(), comment); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) GetComments(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	comments, err := s.store.GetComments(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (s *Server) DeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteComment(c.Request.Context(), id, currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
