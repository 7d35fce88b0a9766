package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

/*

Post is a single piece of published content.

UserID: author, always set
Text: plain text body, at most MaxPostTextLen characters
ImageURL: reference to an uploaded image (data URI or URL), empty when none
Likes: ids of users who liked the post, unique membership
Reactions: at most one entry per user; reacting again replaces the previous
	entry. Reacting also inserts the user into Likes, so Likes stays a
	superset of the reacting users.

OriginalPostID / OriginalUserID:
	set when the post is a repost. A repost is a lightweight record: Text
	carries optional commentary and the image is never copied. The original
	post and its author are resolved at read time and attached to Original /
	OriginalAuthor.

Author, OriginalAuthor, Original are populated after querying and never
written back to the collection.
*/
type Post struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID   `bson:"userId" json:"userId"`
	Text           string               `bson:"text" json:"text"`
	ImageURL       string               `bson:"imageURL" json:"imageURL"`
	Likes          []primitive.ObjectID `bson:"likes" json:"likes"`
	Reactions      []Reaction           `bson:"reactions" json:"reactions"`
	OriginalPostID *primitive.ObjectID  `bson:"originalPostId,omitempty" json:"originalPostId,omitempty"`
	OriginalUserID *primitive.ObjectID  `bson:"originalUserId,omitempty" json:"originalUserId,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`

	Author         *AuthorSummary `bson:"-" json:"author,omitempty"`
	OriginalAuthor *AuthorSummary `bson:"-" json:"originalAuthor,omitempty"`
	Original       *Post          `bson:"-" json:"original,omitempty"`
}

// MaxPostTextLen bounds the post body.
const MaxPostTextLen = 500

// Reaction is one user's reaction on a post.
type Reaction struct {
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Kind   ReactionKind       `bson:"kind" json:"kind"`
}

// ReactionKind is the fixed set of reaction tags.
type ReactionKind string

const (
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionLaugh ReactionKind = "laugh"
	ReactionWow   ReactionKind = "wow"
	ReactionSad   ReactionKind = "sad"
	ReactionAngry ReactionKind = "angry"
)

// Valid reports whether k is one of the enumerated reaction kinds.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad, ReactionAngry:
		return true
	}
	return false
}

// IsRepost reports whether the post re-shares another post.
func (p *Post) IsRepost() bool {
	return p.OriginalPostID != nil
}

// LikedBy reports whether userID is in the like set.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
