package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wrenhq/wren/model"
	. "github.com/wrenhq/wren/utils/log"
)

func (s *MongoStore) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	_, err := s.db.Collection(usersCollection).InsertOne(ctx, user)
	return storeErr(err)
}

func (s *MongoStore) GetUser(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var user model.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}

func (s *MongoStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, bio *string, pictureURL *string) (*model.User, error) {
	set := bson.M{}
	if bio != nil {
		set["bio"] = *bio
	}
	if pictureURL != nil {
		set["profilePictureURL"] = *pictureURL
	}
	if len(set) == 0 {
		return s.GetUser(ctx, id)
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user model.User
	err := s.db.Collection(usersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after).
		Decode(&user)
	if err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}

func (s *MongoStore) SearchUsers(ctx context.Context, query string) ([]model.User, error) {
	filter := bson.M{"username": bson.M{"$regex": query, "$options": "i"}}
	cur, err := s.db.Collection(usersCollection).Find(ctx, filter,
		options.Find().SetLimit(SearchLimit))
	if err != nil {
		return nil, storeErr(err)
	}
	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, storeErr(err)
	}
	return users, nil
}

func (s *MongoStore) SuggestUsers(ctx context.Context, viewerID primitive.ObjectID) ([]model.User, error) {
	viewer, err := s.GetUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	exclude := append([]primitive.ObjectID{viewerID}, viewer.Following...)
	cur, err := s.db.Collection(usersCollection).Find(ctx,
		bson.M{"_id": bson.M{"$nin": exclude}},
		options.Find().SetLimit(SuggestLimit))
	if err != nil {
		return nil, storeErr(err)
	}
	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, storeErr(err)
	}
	return users, nil
}

// FollowUser writes the viewer-side edge first, guarded so a duplicate
// follow never matches, then the target-side edge. A target-side failure
// reverts the viewer-side write before reporting, keeping the graph
// symmetric either way.
func (s *MongoStore) FollowUser(ctx context.Context, viewerID, targetID primitive.ObjectID) error {
	users := s.db.Collection(usersCollection)

	if n, err := users.CountDocuments(ctx, bson.M{"_id": targetID}); err != nil {
		return storeErr(err)
	} else if n == 0 {
		return model.ErrNotFound
	}

	res, err := users.UpdateOne(ctx,
		bson.M{"_id": viewerID, "following": bson.M{"$ne": targetID}},
		bson.M{"$addToSet": bson.M{"following": targetID}})
	if err != nil {
		return storeErr(err)
	}
	if res.MatchedCount == 0 {
		// Either the viewer is gone or the edge already exists.
		viewer, err := s.GetUser(ctx, viewerID)
		if err != nil {
			return err
		}
		if viewer.IsFollowing(targetID) {
			return model.ErrAlreadyFollowing
		}
		return model.ErrNotFound
	}

	_, err = users.UpdateOne(ctx,
		bson.M{"_id": targetID},
		bson.M{"$addToSet": bson.M{"followers": viewerID}})
	if err != nil {
		// Compensate the viewer-side write so the graph does not stay
		// asymmetric.
		if _, rollbackErr := users.UpdateOne(ctx,
			bson.M{"_id": viewerID},
			bson.M{"$pull": bson.M{"following": targetID}}); rollbackErr != nil {
			Log.Error("follow rollback failed, graph asymmetric: viewer=",
				viewerID.Hex(), " target=", targetID.Hex(), " err=", rollbackErr)
		}
		return errors.Wrap(model.ErrStoreUnavailable, err.Error())
	}
	return nil
}

// UnfollowUser mirrors FollowUser. Removing an edge that does not exist is
// a no-op.
func (s *MongoStore) UnfollowUser(ctx context.Context, viewerID, targetID primitive.ObjectID) error {
	users := s.db.Collection(usersCollection)

	if n, err := users.CountDocuments(ctx, bson.M{"_id": targetID}); err != nil {
		return storeErr(err)
	} else if n == 0 {
		return model.ErrNotFound
	}

	res, err := users.UpdateOne(ctx,
		bson.M{"_id": viewerID},
		bson.M{"$pull": bson.M{"following": targetID}})
	if err != nil {
		return storeErr(err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}

	_, err = users.UpdateOne(ctx,
		bson.M{"_id": targetID},
		bson.M{"$pull": bson.M{"followers": viewerID}})
	if err != nil {
		if res.ModifiedCount > 0 {
			if _, rollbackErr := users.UpdateOne(ctx,
				bson.M{"_id": viewerID},
				bson.M{"$addToSet": bson.M{"following": targetID}}); rollbackErr != nil {
				Log.Error("unfollow rollback failed, graph asymmetric: viewer=",
					viewerID.Hex(), " target=", targetID.Hex(), " err=", rollbackErr)
			}
		}
		return errors.Wrap(model.ErrStoreUnavailable, err.Error())
	}
	return nil
}
