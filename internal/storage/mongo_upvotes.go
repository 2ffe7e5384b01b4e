package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sting421/Navigram-API/internal/models"
)

func (s *MongoStore) HasUpvoted(ctx context.Context, memoryID, userID string) (bool, error) {
	n, err := s.upvotes.CountDocuments(ctx, bson.M{"memory_id": memoryID, "user_id": userID},
		options.Count().SetLimit(1))
	return n > 0, err
}

func (s *MongoStore) SaveUpvote(ctx context.Context, u *models.Upvote) error {
	// The unique (memory_id, user_id) index turns a racing double-insert
	// into ErrDuplicate instead of a double count.
	_, err := s.upvotes.InsertOne(ctx, u)
	return mapMongoErr(err)
}

func (s *MongoStore) DeleteUpvote(ctx context.Context, memoryID, userID string) error {
	res, err := s.upvotes.DeleteOne(ctx, bson.M{"memory_id": memoryID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) AdjustUpvoteCount(ctx context.Context, memoryID string, delta int) error {
	filter := bson.M{"_id": memoryID}
	if delta < 0 {
		// Keeps the counter from going below zero under racing removals.
		filter["upvote_count"] = bson.M{"$gte": -delta}
	}
	_, err := s.memories.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"upvote_count": delta}})
	return err
}
