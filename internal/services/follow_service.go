package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/storage"
)

// FollowService maintains the directed follow edge set. Followers and
// following are two views over the same edges; nothing mutates them
// independently.
type FollowService struct {
	store storage.Store
	log   *zap.Logger
}

func NewFollowService(store storage.Store, log *zap.Logger) *FollowService {
	return &FollowService{store: store, log: log}
}

// Follow adds the edge follower -> followee. Following an already-followed
// user is a no-op.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}
	if err := s.ensureUser(ctx, followerID); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, followeeID); err != nil {
		return err
	}
	if err := s.store.AddFollow(ctx, followerID, followeeID); err != nil {
		return fmt.Errorf("add follow edge: %w", err)
	}
	s.log.Info("user followed", zap.String("follower", followerID), zap.String("followee", followeeID))
	return nil
}

// Unfollow removes the edge follower -> followee. Unfollowing a non-followed
// user is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	if err := s.ensureUser(ctx, followerID); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, followeeID); err != nil {
		return err
	}
	if err := s.store.RemoveFollow(ctx, followerID, followeeID); err != nil {
		return fmt.Errorf("remove follow edge: %w", err)
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	return s.store.IsFollowing(ctx, followerID, followeeID)
}

// Followers returns the users following userID.
func (s *FollowService) Followers(ctx context.Context, userID string) ([]models.User, error) {
	ids, err := s.store.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolveUsers(ctx, ids), nil
}

// Following returns the users userID follows.
func (s *FollowService) Following(ctx context.Context, userID string) ([]models.User, error) {
	ids, err := s.store.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolveUsers(ctx, ids), nil
}

func (s *FollowService) FollowCounts(ctx context.Context, userID string) (*models.FollowCounts, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	followers, err := s.store.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.store.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.FollowCounts{Followers: len(followers), Following: len(following)}, nil
}

// checker returns the FollowChecker the visibility policy evaluates with.
// Lookup failures read as not-following; a denied read is the safe default.
func (s *FollowService) checker(ctx context.Context) FollowChecker {
	return func(viewerID, ownerID string) bool {
		ok, err := s.store.IsFollowing(ctx, viewerID, ownerID)
		if err != nil {
			s.log.Warn("follow lookup failed", zap.String("viewer", viewerID), zap.Error(err))
			return false
		}
		return ok
	}
}

func (s *FollowService) ensureUser(ctx context.Context, id string) error {
	if _, err := s.store.GetUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// resolveUsers maps edge endpoints to user records, skipping dangling ids.
func (s *FollowService) resolveUsers(ctx context.Context, ids []string) []models.User {
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.store.GetUser(ctx, id)
		if err != nil {
			s.log.Warn("skipping unresolvable follow edge", zap.String("user_id", id), zap.Error(err))
			continue
		}
		out = append(out, *u)
	}
	return out
}
