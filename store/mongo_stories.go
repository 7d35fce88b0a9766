package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wrenhq/wren/model"
)

func (s *MongoStore) CreateStory(ctx context.Context, story *model.Story) error {
	if story.ImageURL == "" {
		return model.ErrValidation
	}
	story.ID = primitive.NewObjectID()
	story.CreatedAt = time.Now()
	if _, err := s.db.Collection(storiesCollection).InsertOne(ctx, story); err != nil {
		return storeErr(err)
	}

	if author, err := s.GetUser(ctx, story.UserID); err == nil {
		story.Author = summaryOf(*author)
	}
	return nil
}

// ListStories reads stories from the viewer and everyone the viewer
// follows. Expiry never shows up here: the TTL index removes documents past
// model.StoryTTL, so the query only ever sees live stories.
func (s *MongoStore) ListStories(ctx context.Context, viewerID primitive.ObjectID) ([]model.StoryGroup, error) {
	viewer, err := s.GetUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authors := append([]primitive.ObjectID{viewerID}, viewer.Following...)

	cur, err := s.db.Collection(storiesCollection).Find(ctx,
		bson.M{"userId": bson.M{"$in": authors}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, storeErr(err)
	}
	var stories []model.Story
	if err := cur.All(ctx, &stories); err != nil {
		return nil, storeErr(err)
	}
	return groupStories(ctx, stories, s.usersByIDs)
}

func (s *MongoStore) DeleteStory(ctx context.Context, id, actorID primitive.ObjectID) error {
	var story model.Story
	err := s.db.Collection(storiesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&story)
	if err != nil {
		return storeErr(err)
	}
	if story.UserID != actorID {
		return model.ErrForbidden
	}
	_, err = s.db.Collection(storiesCollection).DeleteOne(ctx, bson.M{"_id": id})
	return storeErr(err)
}
