package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wrenhq/wren/model"
)

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

func (s *Server) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.Wrap(model.ErrValidation, "malformed request body"))
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
	if err != nil {
		writeError(c, errors.Wrap(model.ErrValidation, "invalid receiver id"))
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(c, errors.Wrap(model.ErrValidation, "message text is required"))
		return
	}

	message := &model.Message{
		SenderID:   currentUserID(c),
		ReceiverID: receiverID,
		Text:       req.Text,
	}
	if err := s.store.SendMessage(c.Request.Context(), message); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// GetConversation returns the two-way thread with the partner, oldest first
// so clients render top to bottom. Opening the conversation marks the
// partner's messages as read.
func (s *Server) GetConversation(c *gin.Context) {
	partnerID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	messages, err := s.store.GetConversation(c.Request.Context(), currentUserID(c), partnerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (s *Server) GetConversations(c *gin.Context) {
	conversations, err := s.store.GetConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

func (s *Server) GetUnreadCount(c *gin.Context) {
	count, err := s.store.GetUnreadCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
