package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReactionKindValid(t *testing.T) {
	for _, kind := range []ReactionKind{ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad, ReactionAngry} {
		assert.True(t, kind.Valid(), string(kind))
	}
	assert.False(t, ReactionKind("sparkle").Valid())
	assert.False(t, ReactionKind("").Valid())
}

func TestMessagePartnerID(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	m := Message{SenderID: a, ReceiverID: b}
	assert.Equal(t, b, m.PartnerID(a))
	assert.Equal(t, a, m.PartnerID(b))
}

func TestUserIsFollowing(t *testing.T) {
	target := primitive.NewObjectID()
	u := User{Following: []primitive.ObjectID{target}}
	assert.True(t, u.IsFollowing(target))
	assert.False(t, u.IsFollowing(primitive.NewObjectID()))
}

func TestPostIsRepost(t *testing.T) {
	original := primitive.NewObjectID()
	assert.False(t, (&Post{}).IsRepost())
	assert.True(t, (&Post{OriginalPostID: &original}).IsRepost())
}

func TestPostLikedBy(t *testing.T) {
	viewer := primitive.NewObjectID()
	p := Post{Likes: []primitive.ObjectID{viewer}}
	assert.True(t, p.LikedBy(viewer))
	assert.False(t, p.LikedBy(primitive.NewObjectID()))
}
