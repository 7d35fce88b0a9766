package store

import (
	"context"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wrenhq/wren/model"
	. "github.com/wrenhq/wren/utils/log"
)

const (
	usersCollection    = "users"
	postsCollection    = "posts"
	commentsCollection = "comments"
	messagesCollection = "messages"
	storiesCollection  = "stories"
)

// MongoStore is the canonical Store backed by MongoDB, with an optional
// redis cache in front of the unread message counter.
type MongoStore struct {
	db    *mongo.Database
	redis *redis.Client
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to the MongoDB specified by MONGO_URI / MONGO_DB
// and verifies the connection with a ping. The redis client may be nil, in
// which case unread counts are always computed from the messages collection.
func NewMongoStore(ctx context.Context, redisClient *redis.Client) (*MongoStore, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "wren"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "mongodb cannot be reached after connecting")
	}

	s := &MongoStore{db: client.Database(dbName), redis: redisClient}
	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	Log.Info("connected to mongodb: ", uri, " db: ", dbName)
	return s, nil
}

// EnsureIndexes creates the indexes the queries depend on. Unique keys on
// username and email, creation-time sort indexes, and the TTL index that
// implements story retention: once createdAt is more than model.StoryTTL in
// the past the document is gone from every query, no application-level
// filtering involved.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	_, err := s.db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
	})
	if err != nil {
		return errors.Wrap(err, "creating user indexes")
	}

	_, err = s.db.Collection(postsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return errors.Wrap(err, "creating post indexes")
	}

	_, err = s.db.Collection(messagesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}}},
		{Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "read", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return errors.Wrap(err, "creating message indexes")
	}

	_, err = s.db.Collection(commentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return errors.Wrap(err, "creating comment indexes")
	}

	_, err = s.db.Collection(storiesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(model.StoryTTL.Seconds())),
		},
	})
	return errors.Wrap(err, "creating story indexes")
}

// storeErr folds driver errors into the domain taxonomy: missing documents
// become ErrNotFound, duplicate keys ErrValidation, everything else
// ErrStoreUnavailable.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(model.ErrValidation, "already taken")
	}
	return errors.Wrap(model.ErrStoreUnavailable, err.Error())
}

// usersByIDs is the userLookup used by the populate steps.
func (s *MongoStore) usersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.User, error) {
	out := map[primitive.ObjectID]model.User{}
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.db.Collection(usersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeErr(err)
	}
	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, storeErr(err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// postsByIDs is the postLookup used when populating reposts.
func (s *MongoStore) postsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.Post, error) {
	out := map[primitive.ObjectID]model.Post{}
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.db.Collection(postsCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeErr(err)
	}
	var posts []model.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, storeErr(err)
	}
	for _, p := range posts {
		out[p.ID] = p
	}
	return out, nil
}
