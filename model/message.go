package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a direct message between two users. Documents are immutable
// after insert except for Read, which only ever flips false -> true when
// the receiver opens the conversation.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID   primitive.ObjectID `bson:"senderId" json:"senderId"`
	ReceiverID primitive.ObjectID `bson:"receiverId" json:"receiverId"`
	Text       string             `bson:"text" json:"text"`
	Read       bool               `bson:"read" json:"read"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`

	Sender   *AuthorSummary `bson:"-" json:"sender,omitempty"`
	Receiver *AuthorSummary `bson:"-" json:"receiver,omitempty"`
}

// PartnerID returns the other side of the message relative to viewer.
func (m *Message) PartnerID(viewer primitive.ObjectID) primitive.ObjectID {
	if m.SenderID == viewer {
		return m.ReceiverID
	}
	return m.SenderID
}

// Conversation is the derived per-partner summary of a viewer's messages.
// It is recomputed on demand and never stored.
type Conversation struct {
	User        AuthorSummary `json:"user"`
	LastMessage *Message      `json:"lastMessage"`
	UnreadCount int           `json:"unreadCount"`
}
