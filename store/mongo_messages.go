package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wrenhq/wren/model"
)

// pairFilter matches every message between a and b, either direction.
func pairFilter(a, b primitive.ObjectID) bson.M {
	return bson.M{"$or": []bson.M{
		{"senderId": a, "receiverId": b},
		{"senderId": b, "receiverId": a},
	}}
}

func (s *MongoStore) SendMessage(ctx context.Context, message *model.Message) error {
	// Referential check on the receiver; a dangling receiver would only show
	// up at read time otherwise.
	if _, err := s.GetUser(ctx, message.ReceiverID); err != nil {
		return err
	}

	message.ID = primitive.NewObjectID()
	message.Read = false
	message.CreatedAt = time.Now()
	if _, err := s.db.Collection(messagesCollection).InsertOne(ctx, message); err != nil {
		return storeErr(err)
	}
	s.invalidateUnreadCount(ctx, message.ReceiverID.Hex())

	msgs := []model.Message{*message}
	if err := populateMessages(ctx, msgs, s.usersByIDs); err == nil {
		*message = msgs[0]
	}
	return nil
}

// GetConversation returns the full two-way thread oldest first, then flips
// every unread partner->viewer message to read. Re-running the mark is
// harmless, the filter only matches unread documents.
func (s *MongoStore) GetConversation(ctx context.Context, viewerID, partnerID primitive.ObjectID) ([]model.Message, error) {
	if _, err := s.GetUser(ctx, partnerID); err != nil {
		return nil, err
	}

	cur, err := s.db.Collection(messagesCollection).Find(ctx,
		pairFilter(viewerID, partnerID),
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storeErr(err)
	}
	var messages []model.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, storeErr(err)
	}

	_, err = s.db.Collection(messagesCollection).UpdateMany(ctx,
		bson.M{"senderId": partnerID, "receiverId": viewerID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return nil, storeErr(err)
	}
	s.invalidateUnreadCount(ctx, viewerID.Hex())

	if err := populateMessages(ctx, messages, s.usersByIDs); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MongoStore) GetConversations(ctx context.Context, viewerID primitive.ObjectID) ([]model.Conversation, error) {
	cur, err := s.db.Collection(messagesCollection).Find(ctx,
		bson.M{"$or": []bson.M{{"senderId": viewerID}, {"receiverId": viewerID}}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, storeErr(err)
	}
	var messages []model.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, storeErr(err)
	}

	conversations := groupConversations(viewerID, messages)
	return populateConversations(ctx, conversations, s.usersByIDs)
}

func (s *MongoStore) GetUnreadCount(ctx context.Context, viewerID primitive.ObjectID) (int64, error) {
	if count, ok := s.cachedUnreadCount(ctx, viewerID.Hex()); ok {
		return count, nil
	}
	count, err := s.db.Collection(messagesCollection).CountDocuments(ctx,
		bson.M{"receiverId": viewerID, "read": false})
	if err != nil {
		return 0, storeErr(err)
	}
	s.setUnreadCount(ctx, viewerID.Hex(), count)
	return count, nil
}
