package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wrenhq/wren/model"
	"github.com/wrenhq/wren/utils"
)

// MemoryStore is an in-process Store used by tests, mirroring MongoStore's
// semantics: same ordering, same error taxonomy, and the same store-enforced
// story retention (simulated by filtering on Now at query time, standing in
// for the TTL index).
type MemoryStore struct {
	mu sync.RWMutex

	// Now is the clock used for creation timestamps and story expiry. Tests
	// override it to move time around.
	Now func() time.Time

	users    []model.User
	posts    []model.Post
	comments []model.Comment
	messages []model.Message
	stories  []model.Story
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Now: time.Now}
}

// newestFirst returns the index order that sorts times descending; for
// equal timestamps the later insertion wins, matching the _id secondary
// sort in MongoStore.
func newestFirst(times []time.Time) []int {
	idx := make([]int, len(times))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		ta, tb := times[idx[a]], times[idx[b]]
		if ta.Equal(tb) {
			return idx[a] > idx[b]
		}
		return ta.After(tb)
	})
	return idx
}

func (s *MemoryStore) userByID(id primitive.ObjectID) (*model.User, int) {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i], i
		}
	}
	return nil, -1
}

func (s *MemoryStore) usersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[primitive.ObjectID]model.User{}
	for _, id := range ids {
		if u, _ := s.userByID(id); u != nil {
			out[id] = *u
		}
	}
	return out, nil
}

func (s *MemoryStore) postsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[primitive.ObjectID]model.Post{}
	for _, id := range ids {
		for i := range s.posts {
			if s.posts[i].ID == id {
				out[id] = s.posts[i]
			}
		}
	}
	return out, nil
}

// --- users ---

func (s *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return errors.Wrap(model.ErrValidation, "already taken")
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = s.Now()
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	s.users = append(s.users, *user)
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, _ := s.userByID(id)
	if u == nil {
		return nil, model.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		if s.users[i].Username == username {
			cp := s.users[i]
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, bio *string, pictureURL *string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, _ := s.userByID(id)
	if u == nil {
		return nil, model.ErrNotFound
	}
	if bio != nil {
		u.Bio = *bio
	}
	if pictureURL != nil {
		u.ProfilePictureURL = *pictureURL
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) SearchUsers(ctx context.Context, query string) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.User
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			out = append(out, u)
			if len(out) == SearchLimit {
				break
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) SuggestUsers(ctx context.Context, viewerID primitive.ObjectID) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	viewer, _ := s.userByID(viewerID)
	if viewer == nil {
		return nil, model.ErrNotFound
	}
	var out []model.User
	for _, u := range s.users {
		if u.ID == viewerID || viewer.IsFollowing(u.ID) {
			continue
		}
		out = append(out, u)
		if len(out) == SuggestLimit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) FollowUser(ctx context.Context, viewerID, targetID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, _ := s.userByID(targetID)
	if target == nil {
		return model.ErrNotFound
	}
	viewer, _ := s.userByID(viewerID)
	if viewer == nil {
		return model.ErrNotFound
	}
	if viewer.IsFollowing(targetID) {
		return model.ErrAlreadyFollowing
	}
	viewer.Following = append(viewer.Following, targetID)
	target.Followers = append(target.Followers, viewerID)
	return nil
}

func (s *MemoryStore) UnfollowUser(ctx context.Context, viewerID, targetID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, _ := s.userByID(targetID)
	if target == nil {
		return model.ErrNotFound
	}
	viewer, _ := s.userByID(viewerID)
	if viewer == nil {
		return model.ErrNotFound
	}
	viewer.Following = utils.RemoveObjectID(viewer.Following, targetID)
	target.Followers = utils.RemoveObjectID(target.Followers, viewerID)
	return nil
}

// --- posts ---

func (s *MemoryStore) CreatePost(ctx context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = s.Now()
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Reactions == nil {
		post.Reactions = []model.Reaction{}
	}
	s.posts = append(s.posts, *post)
	return nil
}

func (s *MemoryStore) postByID(id primitive.ObjectID) (*model.Post, int) {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return &s.posts[i], i
		}
	}
	return nil, -1
}

func (s *MemoryStore) GetPost(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, _ := s.postByID(id)
	if p == nil {
		return nil, model.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id, actorID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, idx := s.postByID(id)
	if p == nil {
		return model.ErrNotFound
	}
	if p.UserID != actorID {
		return model.ErrForbidden
	}
	s.posts = append(s.posts[:idx], s.posts[idx+1:]...)
	return nil
}

func (s *MemoryStore) selectPosts(keep func(*model.Post) bool, limit int) []model.Post {
	var out []model.Post
	for i := range s.posts {
		if keep(&s.posts[i]) {
			out = append(out, s.posts[i])
		}
	}
	times := make([]time.Time, len(out))
	for i := range out {
		times[i] = out[i].CreatedAt
	}
	sorted := make([]model.Post, 0, len(out))
	for _, i := range newestFirst(times) {
		sorted = append(sorted, out[i])
	}
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func (s *MemoryStore) GetFeed(ctx context.Context, viewerID primitive.ObjectID) ([]model.Post, error) {
	s.mu.RLock()
	viewer, _ := s.userByID(viewerID)
	if viewer == nil {
		s.mu.RUnlock()
		return nil, model.ErrNotFound
	}
	authors := append([]primitive.ObjectID{viewerID}, viewer.Following...)
	posts := s.selectPosts(func(p *model.Post) bool {
		return utils.ContainsObjectID(authors, p.UserID)
	}, FeedLimit)
	s.mu.RUnlock()
	return populatePosts(ctx, posts, s.usersByIDs, s.postsByIDs)
}

func (s *MemoryStore) GetExploreFeed(ctx context.Context) ([]model.Post, error) {
	s.mu.RLock()
	posts := s.selectPosts(func(*model.Post) bool { return true }, FeedLimit)
	s.mu.RUnlock()
	return populatePosts(ctx, posts, s.usersByIDs, s.postsByIDs)
}

func (s *MemoryStore) GetUserPosts(ctx context.Context, authorID primitive.ObjectID) ([]model.Post, error) {
	s.mu.RLock()
	posts := s.selectPosts(func(p *model.Post) bool { return p.UserID == authorID }, 0)
	s.mu.RUnlock()
	return populatePosts(ctx, posts, s.usersByIDs, s.postsByIDs)
}

func (s *MemoryStore) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := s.postByID(postID)
	if p == nil {
		return nil, model.ErrNotFound
	}
	if p.LikedBy(userID) {
		p.Likes = utils.RemoveObjectID(p.Likes, userID)
	} else {
		p.Likes = append(p.Likes, userID)
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) React(ctx context.Context, postID, userID primitive.ObjectID, kind model.ReactionKind) (*model.Post, error) {
	if !kind.Valid() {
		return nil, model.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := s.postByID(postID)
	if p == nil {
		return nil, model.ErrNotFound
	}
	kept := p.Reactions[:0]
	for _, r := range p.Reactions {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	p.Reactions = append(kept, model.Reaction{UserID: userID, Kind: kind})
	if !p.LikedBy(userID) {
		p.Likes = append(p.Likes, userID)
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) RemoveReaction(ctx context.Context, postID, userID primitive.ObjectID) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := s.postByID(postID)
	if p == nil {
		return nil, model.ErrNotFound
	}
	kept := p.Reactions[:0]
	for _, r := range p.Reactions {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	p.Reactions = kept
	p.Likes = utils.RemoveObjectID(p.Likes, userID)
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) Repost(ctx context.Context, postID, userID primitive.ObjectID, text string) (*model.Post, error) {
	original, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	repost := &model.Post{
		UserID:         userID,
		Text:           text,
		OriginalPostID: &original.ID,
		OriginalUserID: &original.UserID,
	}
	if err := s.CreatePost(ctx, repost); err != nil {
		return nil, err
	}
	populated, err := populatePosts(ctx, []model.Post{*repost}, s.usersByIDs, s.postsByIDs)
	if err != nil || len(populated) == 0 {
		return repost, err
	}
	return &populated[0], nil
}

// --- comments ---

func (s *MemoryStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	if _, err := s.GetPost(ctx, comment.PostID); err != nil {
		return err
	}
	s.mu.Lock()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = s.Now()
	s.comments = append(s.comments, *comment)
	s.mu.Unlock()

	populated, err := populateComments(ctx, []model.Comment{*comment}, s.usersByIDs)
	if err == nil && len(populated) == 1 {
		*comment = populated[0]
	}
	return nil
}

func (s *MemoryStore) GetComments(ctx context.Context, postID primitive.ObjectID) ([]model.Comment, error) {
	s.mu.RLock()
	var out []model.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	times := make([]time.Time, len(out))
	for i := range out {
		times[i] = out[i].CreatedAt
	}
	sorted := make([]model.Comment, 0, len(out))
	for _, i := range newestFirst(times) {
		sorted = append(sorted, out[i])
	}
	s.mu.RUnlock()
	return populateComments(ctx, sorted, s.usersByIDs)
}

func (s *MemoryStore) DeleteComment(ctx context.Context, id, actorID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.comments {
		if s.comments[i].ID == id {
			if s.comments[i].UserID != actorID {
				return model.ErrForbidden
			}
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

// --- messages ---

func (s *MemoryStore) SendMessage(ctx context.Context, message *model.Message) error {
	if _, err := s.GetUser(ctx, message.ReceiverID); err != nil {
		return err
	}
	s.mu.Lock()
	message.ID = primitive.NewObjectID()
	message.Read = false
	message.CreatedAt = s.Now()
	s.messages = append(s.messages, *message)
	s.mu.Unlock()

	msgs := []model.Message{*message}
	if err := populateMessages(ctx, msgs, s.usersByIDs); err == nil {
		*message = msgs[0]
	}
	return nil
}

func (s *MemoryStore) GetConversation(ctx context.Context, viewerID, partnerID primitive.ObjectID) ([]model.Message, error) {
	if _, err := s.GetUser(ctx, partnerID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	var out []model.Message
	for i := range s.messages {
		m := &s.messages[i]
		between := (m.SenderID == viewerID && m.ReceiverID == partnerID) ||
			(m.SenderID == partnerID && m.ReceiverID == viewerID)
		if !between {
			continue
		}
		out = append(out, *m)
		if m.SenderID == partnerID && m.ReceiverID == viewerID {
			m.Read = true
		}
	}
	s.mu.Unlock()

	// Slice order is insertion order; creation times are non-decreasing per
	// clock, so a stable ascending sort matches the mongo query.
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	if err := populateMessages(ctx, out, s.usersByIDs); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MemoryStore) GetConversations(ctx context.Context, viewerID primitive.ObjectID) ([]model.Conversation, error) {
	s.mu.RLock()
	var mine []model.Message
	for _, m := range s.messages {
		if m.SenderID == viewerID || m.ReceiverID == viewerID {
			mine = append(mine, m)
		}
	}
	times := make([]time.Time, len(mine))
	for i := range mine {
		times[i] = mine[i].CreatedAt
	}
	sorted := make([]model.Message, 0, len(mine))
	for _, i := range newestFirst(times) {
		sorted = append(sorted, mine[i])
	}
	s.mu.RUnlock()

	conversations := groupConversations(viewerID, sorted)
	return populateConversations(ctx, conversations, s.usersByIDs)
}

func (s *MemoryStore) GetUnreadCount(ctx context.Context, viewerID primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, m := range s.messages {
		if m.ReceiverID == viewerID && !m.Read {
			count++
		}
	}
	return count, nil
}

// --- stories ---

func (s *MemoryStore) CreateStory(ctx context.Context, story *model.Story) error {
	if story.ImageURL == "" {
		return model.ErrValidation
	}
	s.mu.Lock()
	story.ID = primitive.NewObjectID()
	story.CreatedAt = s.Now()
	s.stories = append(s.stories, *story)
	s.mu.Unlock()

	if author, err := s.GetUser(ctx, story.UserID); err == nil {
		story.Author = summaryOf(*author)
	}
	return nil
}

func (s *MemoryStore) ListStories(ctx context.Context, viewerID primitive.ObjectID) ([]model.StoryGroup, error) {
	s.mu.RLock()
	viewer, _ := s.userByID(viewerID)
	if viewer == nil {
		s.mu.RUnlock()
		return nil, model.ErrNotFound
	}
	authors := append([]primitive.ObjectID{viewerID}, viewer.Following...)
	cutoff := s.Now().Add(-model.StoryTTL)

	var visible []model.Story
	for _, st := range s.stories {
		// Stand-in for the TTL index: expired documents are invisible.
		if !st.CreatedAt.After(cutoff) {
			continue
		}
		if utils.ContainsObjectID(authors, st.UserID) {
			visible = append(visible, st)
		}
	}
	times := make([]time.Time, len(visible))
	for i := range visible {
		times[i] = visible[i].CreatedAt
	}
	sorted := make([]model.Story, 0, len(visible))
	for _, i := range newestFirst(times) {
		sorted = append(sorted, visible[i])
	}
	s.mu.RUnlock()

	return groupStories(ctx, sorted, s.usersByIDs)
}

func (s *MemoryStore) DeleteStory(ctx context.Context, id, actorID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.stories {
		if s.stories[i].ID == id {
			if s.stories[i].UserID != actorID {
				return model.ErrForbidden
			}
			s.stories = append(s.stories[:i], s.stories[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}
