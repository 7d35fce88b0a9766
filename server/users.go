package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := s.store.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile accepts a multipart form with optional "bio" and "image"
// fields; only the supplied fields change.
func (s *Server) UpdateProfile(c *gin.Context) {
	viewerID := currentUserID(c)

	var bio *string
	if value, ok := c.GetPostForm("bio"); ok {
		bio = &value
	}

	var pictureURL *string
	if ref, err := imageFromForm(c, "image"); err != nil {
		writeError(c, err)
		return
	} else if ref != "" {
		pictureURL = &ref
	}

	user, err := s.store.UpdateProfile(c.Request.Context(), viewerID, bio, pictureURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) SearchUsers(c *gin.Context) {
	users, err := s.store.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) GetSuggestedUsers(c *gin.Context) {
	users, err := s.store.SuggestUsers(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) FollowUser(c *gin.Context) {
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	viewerID := currentUserID(c)
	if targetID == viewerID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "cannot follow yourself"})
		return
	}
	if err := s.store.FollowUser(c.Request.Context(), viewerID, targetID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user followed"})
}

func (s *Server) UnfollowUser(c *gin.Context) {
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.UnfollowUser(c.Request.Context(), currentUserID(c), targetID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user unfollowed"})
}
