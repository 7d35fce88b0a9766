package store

import (
	"context"

	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wrenhq/wren/model"
)

// userLookup resolves a batch of user ids to documents. Ids with no matching
// user are simply absent from the result map.
type userLookup func(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.User, error)

// postLookup resolves a batch of post ids to documents.
type postLookup func(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.Post, error)

func summaryOf(u model.User) *model.AuthorSummary {
	s := &model.AuthorSummary{}
	copier.Copy(s, &u)
	return s
}

// populatePosts attaches author snapshots to posts after the primary query,
// and for reposts resolves the original post and its author. Posts whose
// author no longer exists are dropped from the result rather than returned
// headless.
func populatePosts(ctx context.Context, posts []model.Post, users userLookup, originals postLookup) ([]model.Post, error) {
	var userIDs, postIDs []primitive.ObjectID
	for _, p := range posts {
		userIDs = append(userIDs, p.UserID)
		if p.OriginalUserID != nil {
			userIDs = append(userIDs, *p.OriginalUserID)
		}
		if p.OriginalPostID != nil {
			postIDs = append(postIDs, *p.OriginalPostID)
		}
	}

	byID, err := users(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	originalByID := map[primitive.ObjectID]model.Post{}
	if len(postIDs) > 0 {
		if originalByID, err = originals(ctx, postIDs); err != nil {
			return nil, err
		}
	}

	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		author, ok := byID[p.UserID]
		if !ok {
			continue
		}
		p.Author = summaryOf(author)
		if p.OriginalUserID != nil {
			if origAuthor, ok := byID[*p.OriginalUserID]; ok {
				p.OriginalAuthor = summaryOf(origAuthor)
			}
		}
		if p.OriginalPostID != nil {
			if orig, ok := originalByID[*p.OriginalPostID]; ok {
				orig.Author = p.OriginalAuthor
				p.Original = &orig
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// populateComments attaches author snapshots, dropping orphaned comments.
func populateComments(ctx context.Context, comments []model.Comment, users userLookup) ([]model.Comment, error) {
	var ids []primitive.ObjectID
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	byID, err := users(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.Comment, 0, len(comments))
	for _, c := range comments {
		author, ok := byID[c.UserID]
		if !ok {
			continue
		}
		c.Author = summaryOf(author)
		out = append(out, c)
	}
	return out, nil
}

// populateConversations resolves partner snapshots for grouped
// conversations. Conversations whose partner no longer resolves are dropped.
func populateConversations(ctx context.Context, conversations []model.Conversation, users userLookup) ([]model.Conversation, error) {
	var ids []primitive.ObjectID
	for _, c := range conversations {
		ids = append(ids, c.User.ID)
		if c.LastMessage != nil {
			ids = append(ids, c.LastMessage.SenderID, c.LastMessage.ReceiverID)
		}
	}
	byID, err := users(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.Conversation, 0, len(conversations))
	for _, c := range conversations {
		partner, ok := byID[c.User.ID]
		if !ok {
			continue
		}
		c.User = *summaryOf(partner)
		if c.LastMessage != nil {
			if sender, ok := byID[c.LastMessage.SenderID]; ok {
				c.LastMessage.Sender = summaryOf(sender)
			}
			if receiver, ok := byID[c.LastMessage.ReceiverID]; ok {
				c.LastMessage.Receiver = summaryOf(receiver)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// groupStories buckets stories by author for display, preserving the input
// order both across groups (authors appear in order of their most recent
// story) and within each group. Groups whose author no longer resolves are
// dropped.
func groupStories(ctx context.Context, stories []model.Story, users userLookup) ([]model.StoryGroup, error) {
	var ids []primitive.ObjectID
	for _, s := range stories {
		ids = append(ids, s.UserID)
	}
	byID, err := users(ctx, ids)
	if err != nil {
		return nil, err
	}

	var order []primitive.ObjectID
	grouped := map[primitive.ObjectID]*model.StoryGroup{}
	for _, s := range stories {
		author, ok := byID[s.UserID]
		if !ok {
			continue
		}
		group, seen := grouped[s.UserID]
		if !seen {
			group = &model.StoryGroup{User: *summaryOf(author)}
			grouped[s.UserID] = group
			order = append(order, s.UserID)
		}
		s.Author = summaryOf(author)
		group.Stories = append(group.Stories, s)
	}

	out := make([]model.StoryGroup, 0, len(order))
	for _, id := range order {
		out = append(out, *grouped[id])
	}
	return out, nil
}

// populateMessages attaches sender and receiver snapshots in place.
func populateMessages(ctx context.Context, messages []model.Message, users userLookup) error {
	var ids []primitive.ObjectID
	for _, m := range messages {
		ids = append(ids, m.SenderID, m.ReceiverID)
	}
	byID, err := users(ctx, ids)
	if err != nil {
		return err
	}
	for i := range messages {
		if sender, ok := byID[messages[i].SenderID]; ok {
			messages[i].Sender = summaryOf(sender)
		}
		if receiver, ok := byID[messages[i].ReceiverID]; ok {
			messages[i].Receiver = summaryOf(receiver)
		}
	}
	return nil
}
