package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. Following/Followers hold the two directions
// of the follow graph; keeping them symmetric is the writer's job (see
// store.FollowUser), the collection itself does not enforce it.
type User struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username          string               `bson:"username" json:"username"`
	Email             string               `bson:"email" json:"email"`
	PasswordHash      string               `bson:"passwordHash" json:"-"`
	Bio               string               `bson:"bio" json:"bio"`
	ProfilePictureURL string               `bson:"profilePictureURL" json:"profilePictureURL"`
	Following         []primitive.ObjectID `bson:"following" json:"following"`
	Followers         []primitive.ObjectID `bson:"followers" json:"followers"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
}

// AuthorSummary is the denormalized user snapshot attached to posts,
// comments, messages and stories at read time. Never persisted.
type AuthorSummary struct {
	ID                primitive.ObjectID `json:"id"`
	Username          string             `json:"username"`
	ProfilePictureURL string             `json:"profilePictureURL"`
}

// Summary strips a full user document down to the fields clients render
// next to content.
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{
		ID:                u.ID,
		Username:          u.Username,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

// IsFollowing reports whether target is in the user's following set.
func (u *User) IsFollowing(target primitive.ObjectID) bool {
	for _, id := range u.Following {
		if id == target {
			return true
		}
	}
	return false
}
