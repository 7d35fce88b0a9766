package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wrenhq/wren/model"
)

func msgAt(sender, receiver primitive.ObjectID, text string, at time.Time, read bool) model.Message {
	return model.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		Read:       read,
		CreatedAt:  at,
	}
}

func TestGroupConversationsBothDirections(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	c := primitive.NewObjectID()
	base := time.Now()

	// Scan order is newest first, as the store queries deliver it.
	messages := []model.Message{
		msgAt(b, a, "from b", base.Add(3*time.Second), false),
		msgAt(c, a, "from c", base.Add(2*time.Second), false),
		msgAt(a, b, "to b", base.Add(1*time.Second), false),
	}

	conversations := groupConversations(a, messages)
	assert.Len(t, conversations, 2)

	assert.Equal(t, b, conversations[0].User.ID)
	assert.Equal(t, "from b", conversations[0].LastMessage.Text)
	assert.Equal(t, 1, conversations[0].UnreadCount)

	assert.Equal(t, c, conversations[1].User.ID)
	assert.Equal(t, "from c", conversations[1].LastMessage.Text)
	assert.Equal(t, 1, conversations[1].UnreadCount)
}

func TestGroupConversationsUnreadOnlyCountsPartnerToViewer(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	base := time.Now()

	messages := []model.Message{
		msgAt(a, b, "mine unread on their side", base.Add(4*time.Second), false),
		msgAt(b, a, "unread", base.Add(3*time.Second), false),
		msgAt(b, a, "already read", base.Add(2*time.Second), true),
		msgAt(b, a, "unread too", base.Add(1*time.Second), false),
	}

	conversations := groupConversations(a, messages)
	assert.Len(t, conversations, 1)
	// Viewer's own outbound message is the latest but never counts as
	// unread for the viewer.
	assert.Equal(t, "mine unread on their side", conversations[0].LastMessage.Text)
	assert.Equal(t, 2, conversations[0].UnreadCount)
}

func TestGroupConversationsTieBreakKeepsScanOrder(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	c := primitive.NewObjectID()
	at := time.Now()

	messages := []model.Message{
		msgAt(b, a, "first in scan", at, false),
		msgAt(c, a, "second in scan", at, false),
	}

	conversations := groupConversations(a, messages)
	assert.Len(t, conversations, 2)
	assert.Equal(t, b, conversations[0].User.ID)
	assert.Equal(t, c, conversations[1].User.ID)
}

func TestGroupConversationsEmpty(t *testing.T) {
	assert.Empty(t, groupConversations(primitive.NewObjectID(), nil))
}
