package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sting421/Navigram-API/internal/models"
)

var newestFirst = options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

func (s *MongoStore) GetMemory(ctx context.Context, id string) (*models.Memory, error) {
	var m models.Memory
	if err := s.memories.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, mapMongoErr(err)
	}
	return &m, nil
}

func (s *MongoStore) findMemories(ctx context.Context, filter bson.M) ([]models.Memory, error) {
	cur, err := s.memories.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Memory, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) ListMemories(ctx context.Context) ([]models.Memory, error) {
	return s.findMemories(ctx, bson.M{})
}

func (s *MongoStore) ListMemoriesByOwner(ctx context.Context, userID string) ([]models.Memory, error) {
	return s.findMemories(ctx, bson.M{"user_id": userID})
}

func (s *MongoStore) ListMemoriesByVisibility(ctx context.Context, v models.Visibility) ([]models.Memory, error) {
	return s.findMemories(ctx, bson.M{"visibility": v})
}

func (s *MongoStore) ListMemoriesInBounds(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]models.Memory, error) {
	return s.findMemories(ctx, bson.M{
		"latitude":  bson.M{"$gte": minLat, "$lte": maxLat},
		"longitude": bson.M{"$gte": minLng, "$lte": maxLng},
	})
}

func (s *MongoStore) ListFlaggedMemories(ctx context.Context) ([]models.Memory, error) {
	return s.findMemories(ctx, bson.M{"is_flagged": true})
}

func (s *MongoStore) SaveMemory(ctx context.Context, m *models.Memory) error {
	_, err := s.memories.ReplaceOne(ctx, bson.M{"_id": m.ID}, m, options.Replace().SetUpsert(true))
	return mapMongoErr(err)
}

func (s *MongoStore) DeleteMemory(ctx context.Context, id string) error {
	res, err := s.memories.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	// Cascade to owned children.
	_, _ = s.flags.DeleteMany(ctx, bson.M{"memory_id": id})
	_, _ = s.comments.DeleteMany(ctx, bson.M{"memory_id": id})
	_, _ = s.upvotes.DeleteMany(ctx, bson.M{"memory_id": id})
	return nil
}

func (s *MongoStore) CountMemories(ctx context.Context) (int64, error) {
	return s.memories.CountDocuments(ctx, bson.M{})
}

func (s *MongoStore) CountMemoriesCreatedAfter(ctx context.Context, t time.Time) (int64, error) {
	return s.memories.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gt": t}})
}

func (s *MongoStore) CountFlaggedMemories(ctx context.Context) (int64, error) {
	return s.memories.CountDocuments(ctx, bson.M{"is_flagged": true})
}
