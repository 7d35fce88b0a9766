package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wrenhq/wren/model"
)

func (s *MongoStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	if _, err := s.GetPost(ctx, comment.PostID); err != nil {
		return err
	}
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	if _, err := s.db.Collection(commentsCollection).InsertOne(ctx, comment); err != nil {
		return storeErr(err)
	}

	populated, err := populateComments(ctx, []model.Comment{*comment}, s.usersByIDs)
	if err == nil && len(populated) == 1 {
		*comment = populated[0]
	}
	return nil
}

func (s *MongoStore) GetComments(ctx context.Context, postID primitive.ObjectID) ([]model.Comment, error) {
	cur, err := s.db.Collection(commentsCollection).Find(ctx,
		bson.M{"postId": postID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, storeErr(err)
	}
	var comments []model.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, storeErr(err)
	}
	return populateComments(ctx, comments, s.usersByIDs)
}

func (s *MongoStore) DeleteComment(ctx context.Context, id, actorID primitive.ObjectID) error {
	var comment model.Comment
	err := s.db.Collection(commentsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		return storeErr(err)
	}
	if comment.UserID != actorID {
		return model.ErrForbidden
	}
	_, err = s.db.Collection(commentsCollection).DeleteOne(ctx, bson.M{"_id": id})
	return storeErr(err)
}
