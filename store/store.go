// Package store owns persistence for users, posts, comments, messages and
// stories. The canonical implementation is MongoStore; MemoryStore is the
// in-process fake used by tests.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wrenhq/wren/model"
)

const (
	// FeedLimit is the hard cap on feed and explore queries. It is not a
	// page boundary, there is no cursor.
	FeedLimit = 50

	// SearchLimit / SuggestLimit bound the user discovery queries.
	SearchLimit  = 20
	SuggestLimit = 10
)

// UserStore holds identities and the follow graph.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, bio *string, pictureURL *string) (*model.User, error)
	SearchUsers(ctx context.Context, query string) ([]model.User, error)
	SuggestUsers(ctx context.Context, viewerID primitive.ObjectID) ([]model.User, error)

	// FollowUser updates both sides of the graph: target into viewer's
	// following, viewer into target's followers. The viewer-side write goes
	// first; if the target-side write fails the viewer-side write is
	// reverted and ErrStoreUnavailable surfaced, so the graph never stays
	// asymmetric silently. Fails with ErrAlreadyFollowing when the edge
	// already exists.
	FollowUser(ctx context.Context, viewerID, targetID primitive.ObjectID) error

	// UnfollowUser removes both sides of the edge with the same
	// compensation rule. Unfollowing someone not followed is a no-op.
	UnfollowUser(ctx context.Context, viewerID, targetID primitive.ObjectID) error
}

// PostStore holds posts, likes and reactions.
type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	DeletePost(ctx context.Context, id, actorID primitive.ObjectID) error

	// GetFeed returns posts authored by the viewer or anyone the viewer
	// follows, newest first, capped at FeedLimit, with author snapshots
	// attached.
	GetFeed(ctx context.Context, viewerID primitive.ObjectID) ([]model.Post, error)
	// GetExploreFeed is the unfiltered variant, same ordering and cap.
	GetExploreFeed(ctx context.Context) ([]model.Post, error)
	// GetUserPosts returns one author's posts, newest first, uncapped.
	GetUserPosts(ctx context.Context, authorID primitive.ObjectID) ([]model.Post, error)

	// ToggleLike adds userID to the post's likes if absent, removes it if
	// present, and returns the updated post.
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*model.Post, error)
	// React replaces any prior reaction by userID with kind and ensures
	// userID is in the like set.
	React(ctx context.Context, postID, userID primitive.ObjectID, kind model.ReactionKind) (*model.Post, error)
	// RemoveReaction drops userID's reaction entry and its like membership.
	RemoveReaction(ctx context.Context, postID, userID primitive.ObjectID) (*model.Post, error)

	// Repost creates a lightweight record referencing the original post.
	// Text carries optional commentary; the original's text and image are
	// not copied.
	Repost(ctx context.Context, postID, userID primitive.ObjectID, text string) (*model.Post, error)
}

// CommentStore holds flat per-post comments.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComments(ctx context.Context, postID primitive.ObjectID) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id, actorID primitive.ObjectID) error
}

// MessageStore holds direct messages and derives conversation views.
type MessageStore interface {
	SendMessage(ctx context.Context, message *model.Message) error

	// GetConversation returns every message between viewer and partner in
	// either direction, oldest first. Side effect: unread partner->viewer
	// messages are marked read. Idempotent, repeating the call is safe.
	GetConversation(ctx context.Context, viewerID, partnerID primitive.ObjectID) ([]model.Message, error)

	// GetConversations groups the viewer's messages by partner, keeping the
	// most recent message per partner, ordered by that message's time
	// descending, with per-partner unread counts.
	GetConversations(ctx context.Context, viewerID primitive.ObjectID) ([]model.Conversation, error)

	// GetUnreadCount is the viewer's total unread messages across partners.
	GetUnreadCount(ctx context.Context, viewerID primitive.ObjectID) (int64, error)
}

// StoryStore holds ephemeral stories. Retention is the store's concern:
// anything older than model.StoryTTL is invisible to every query.
type StoryStore interface {
	CreateStory(ctx context.Context, story *model.Story) error
	ListStories(ctx context.Context, viewerID primitive.ObjectID) ([]model.StoryGroup, error)
	DeleteStory(ctx context.Context, id, actorID primitive.ObjectID) error
}

// Store is the full persistence surface consumed by the API server.
type Store interface {
	UserStore
	PostStore
	CommentStore
	MessageStore
	StoryStore
}
