package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story is an ephemeral image. The stories collection carries a TTL index on
// createdAt (StoryTTL), so expired documents drop out of every query without
// any per-request filtering.
type Story struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ImageURL  string             `bson:"imageURL" json:"imageURL"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	Author *AuthorSummary `bson:"-" json:"author,omitempty"`
}

// StoryTTL is the retention window enforced by the store.
const StoryTTL = 24 * time.Hour

// StoryGroup bundles one author's visible stories for display.
type StoryGroup struct {
	User    AuthorSummary `json:"user"`
	Stories []Story       `json:"stories"`
}
