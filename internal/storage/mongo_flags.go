package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sting421/Navigram-API/internal/models"
)

func (s *MongoStore) GetFlag(ctx context.Context, id string) (*models.Flag, error) {
	var f models.Flag
	if err := s.flags.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, mapMongoErr(err)
	}
	return &f, nil
}

func (s *MongoStore) ListFlags(ctx context.Context) ([]models.Flag, error) {
	return s.findFlags(ctx, bson.M{})
}

func (s *MongoStore) ListFlagsByMemory(ctx context.Context, memoryID string) ([]models.Flag, error) {
	return s.findFlags(ctx, bson.M{"memory_id": memoryID})
}

func (s *MongoStore) findFlags(ctx context.Context, filter bson.M) ([]models.Flag, error) {
	cur, err := s.flags.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Flag, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) CountFlagsByMemory(ctx context.Context, memoryID string) (int64, error) {
	return s.flags.CountDocuments(ctx, bson.M{"memory_id": memoryID})
}

func (s *MongoStore) HasUnresolvedFlags(ctx context.Context, memoryID string) (bool, error) {
	n, err := s.flags.CountDocuments(ctx, bson.M{"memory_id": memoryID, "resolved": false},
		options.Count().SetLimit(1))
	return n > 0, err
}

func (s *MongoStore) SaveFlag(ctx context.Context, f *models.Flag) error {
	_, err := s.flags.ReplaceOne(ctx, bson.M{"_id": f.ID}, f, options.Replace().SetUpsert(true))
	return mapMongoErr(err)
}

func (s *MongoStore) CountFlags(ctx context.Context) (int64, error) {
	return s.flags.CountDocuments(ctx, bson.M{})
}

func (s *MongoStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	if err := s.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, mapMongoErr(err)
	}
	return &c, nil
}

func (s *MongoStore) ListCommentsByMemory(ctx context.Context, memoryID string) ([]models.Comment, error) {
	cur, err := s.comments.Find(ctx, bson.M{"memory_id": memoryID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Comment, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) SaveComment(ctx context.Context, c *models.Comment) error {
	_, err := s.comments.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	return mapMongoErr(err)
}

func (s *MongoStore) DeleteComment(ctx context.Context, id string) error {
	res, err := s.comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
