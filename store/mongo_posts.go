package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wrenhq/wren/model"
)

// postSort keeps feeds newest first; _id breaks creation-time ties in
// insertion order.
var postSort = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (s *MongoStore) CreatePost(ctx context.Context, post *model.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Reactions == nil {
		post.Reactions = []model.Reaction{}
	}
	_, err := s.db.Collection(postsCollection).InsertOne(ctx, post)
	return storeErr(err)
}

func (s *MongoStore) GetPost(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	var post model.Post
	err := s.db.Collection(postsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		return nil, storeErr(err)
	}
	return &post, nil
}

func (s *MongoStore) DeletePost(ctx context.Context, id, actorID primitive.ObjectID) error {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return model.ErrForbidden
	}
	_, err = s.db.Collection(postsCollection).DeleteOne(ctx, bson.M{"_id": id})
	return storeErr(err)
}

func (s *MongoStore) findPosts(ctx context.Context, filter bson.M, limit int64) ([]model.Post, error) {
	opts := options.Find().SetSort(postSort)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.db.Collection(postsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr(err)
	}
	var posts []model.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, storeErr(err)
	}
	return populatePosts(ctx, posts, s.usersByIDs, s.postsByIDs)
}

func (s *MongoStore) GetFeed(ctx context.Context, viewerID primitive.ObjectID) ([]model.Post, error) {
	viewer, err := s.GetUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authors := append([]primitive.ObjectID{viewerID}, viewer.Following...)
	return s.findPosts(ctx, bson.M{"userId": bson.M{"$in": authors}}, FeedLimit)
}

func (s *MongoStore) GetExploreFeed(ctx context.Context) ([]model.Post, error) {
	return s.findPosts(ctx, bson.M{}, FeedLimit)
}

func (s *MongoStore) GetUserPosts(ctx context.Context, authorID primitive.ObjectID) ([]model.Post, error) {
	return s.findPosts(ctx, bson.M{"userId": authorID}, 0)
}

func (s *MongoStore) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*model.Post, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$addToSet": bson.M{"likes": userID}}
	if post.LikedBy(userID) {
		update = bson.M{"$pull": bson.M{"likes": userID}}
	}
	return s.updatePost(ctx, postID, update)
}

// React keeps the at-most-one-reaction-per-user invariant by pulling any
// prior entry before pushing the new one. Reacting also adds the user to
// the like set; it never removes it.
func (s *MongoStore) React(ctx context.Context, postID, userID primitive.ObjectID, kind model.ReactionKind) (*model.Post, error) {
	if !kind.Valid() {
		return nil, model.ErrValidation
	}
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	posts := s.db.Collection(postsCollection)
	if _, err := posts.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"reactions": bson.M{"userId": userID}}}); err != nil {
		return nil, storeErr(err)
	}
	return s.updatePost(ctx, postID, bson.M{
		"$push":     bson.M{"reactions": model.Reaction{UserID: userID, Kind: kind}},
		"$addToSet": bson.M{"likes": userID},
	})
}

func (s *MongoStore) RemoveReaction(ctx context.Context, postID, userID primitive.ObjectID) (*model.Post, error) {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.updatePost(ctx, postID, bson.M{"$pull": bson.M{
		"reactions": bson.M{"userId": userID},
		"likes":     userID,
	}})
}

// Repost records a lightweight reference to the original post. The
// original's text and image stay in one place; readers get them through the
// populate step.
func (s *MongoStore) Repost(ctx context.Context, postID, userID primitive.ObjectID, text string) (*model.Post, error) {
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
	if err != nil {
		return nil, err
	}
	if len(populated) == 0 {
		return repost, nil
	}
	return &populated[0], nil
}

func (s *MongoStore) updatePost(ctx context.Context, id primitive.ObjectID, update bson.M) (*model.Post, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post model.Post
	err := s.db.Collection(postsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, update, after).
		Decode(&post)
	if err != nil {
		return nil, storeErr(err)
	}
	return &post, nil
}
