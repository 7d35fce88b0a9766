package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/wrenhq/wren/model"
)

// CreateStory accepts a multipart form with a required "image" file.
func (s *Server) CreateStory(c *gin.Context) {
	imageURL, err := imageFromForm(c, "image")
	if err != nil {
		writeError(c, err)
		return
	}
	if imageURL == "" {
		writeError(c, errors.Wrap(model.ErrValidation, "image is required"))
		return
	}

	story := &model.Story{
		UserID:   currentUserID(c),
		ImageURL: imageURL,
	}
	if err := s.store.CreateStory(c.Request.Context(), story); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}

// GetStories lists the viewer's visible stories grouped by author. Expired
// stories never show up; retention is enforced by the store.
func (s *Server) GetStories(c *gin.Context) {
	groups, err := s.store.ListStories(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (s *Server) DeleteStory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteStory(c.Request.Context(), id, currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "story deleted"})
}
