package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type followEdge struct {
	FollowerID string `bson:"follower_id"`
	FolloweeID string `bson:"followee_id"`
}

func (s *MongoStore) AddFollow(ctx context.Context, followerID, followeeID string) error {
	_, err := s.follows.UpdateOne(ctx,
		bson.M{"follower_id": followerID, "followee_id": followeeID},
		bson.M{"$setOnInsert": followEdge{FollowerID: followerID, FolloweeID: followeeID}},
		options.Update().SetUpsert(true))
	if isDuplicateErr(err) {
		// Concurrent upsert of the same edge; set semantics make it a no-op.
		return nil
	}
	return err
}

func (s *MongoStore) RemoveFollow(ctx context.Context, followerID, followeeID string) error {
	_, err := s.follows.DeleteOne(ctx, bson.M{"follower_id": followerID, "followee_id": followeeID})
	return err
}

func (s *MongoStore) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	n, err := s.follows.CountDocuments(ctx,
		bson.M{"follower_id": followerID, "followee_id": followeeID},
		options.Count().SetLimit(1))
	return n > 0, err
}

func (s *MongoStore) ListFollowers(ctx context.Context, userID string) ([]string, error) {
	return s.listEdgeSide(ctx, bson.M{"followee_id": userID}, func(e followEdge) string { return e.FollowerID })
}

func (s *MongoStore) ListFollowing(ctx context.Context, userID string) ([]string, error) {
	return s.listEdgeSide(ctx, bson.M{"follower_id": userID}, func(e followEdge) string { return e.FolloweeID })
}

func (s *MongoStore) listEdgeSide(ctx context.Context, filter bson.M, side func(followEdge) string) ([]string, error) {
	cur, err := s.follows.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]string, 0)
	for cur.Next(ctx) {
		var e followEdge
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, side(e))
	}
	return out, cur.Err()
}

func (s *MongoStore) RemoveFollowsForUser(ctx context.Context, userID string) error {
	_, err := s.follows.DeleteMany(ctx, bson.M{
		"$or": []bson.M{
			{"follower_id": userID},
			{"followee_id": userID},
		},
	})
	return err
}

func isDuplicateErr(err error) bool {
	return err != nil && mapMongoErr(err) == ErrDuplicate
}
