// Package storage defines the persistence interface the services operate
// through, with a Mongo-backed implementation for production and a
// mutex-guarded in-memory implementation for tests and local development.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Sting421/Navigram-API/internal/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness
	// constraint (username, email, or one upvote per memory and user).
	ErrDuplicate = errors.New("duplicate record")
)

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// SaveUser inserts or replaces by ID.
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	CountEnabledUsers(ctx context.Context) (int64, error)
	CountUsersCreatedAfter(ctx context.Context, t time.Time) (int64, error)
}

type MemoryStore interface {
	GetMemory(ctx context.Context, id string) (*models.Memory, error)
	ListMemories(ctx context.Context) ([]models.Memory, error)
	ListMemoriesByOwner(ctx context.Context, userID string) ([]models.Memory, error)
	ListMemoriesByVisibility(ctx context.Context, v models.Visibility) ([]models.Memory, error)
	// ListMemoriesInBounds returns memories inside the given lat/lng box.
	// Used only as a prefilter; exact distance checks stay with the caller.
	ListMemoriesInBounds(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]models.Memory, error)
	ListFlaggedMemories(ctx context.Context) ([]models.Memory, error)
	SaveMemory(ctx context.Context, m *models.Memory) error
	// DeleteMemory removes the memory and cascades to its flags, comments
	// and upvotes.
	DeleteMemory(ctx context.Context, id string) error
	CountMemories(ctx context.Context) (int64, error)
	CountMemoriesCreatedAfter(ctx context.Context, t time.Time) (int64, error)
	CountFlaggedMemories(ctx context.Context) (int64, error)
}

type FlagStore interface {
	GetFlag(ctx context.Context, id string) (*models.Flag, error)
	ListFlags(ctx context.Context) ([]models.Flag, error)
	ListFlagsByMemory(ctx context.Context, memoryID string) ([]models.Flag, error)
	CountFlagsByMemory(ctx context.Context, memoryID string) (int64, error)
	HasUnresolvedFlags(ctx context.Context, memoryID string) (bool, error)
	SaveFlag(ctx context.Context, f *models.Flag) error
	CountFlags(ctx context.Context) (int64, error)
}

type CommentStore interface {
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	ListCommentsByMemory(ctx context.Context, memoryID string) ([]models.Comment, error)
	SaveComment(ctx context.Context, c *models.Comment) error
	DeleteComment(ctx context.Context, id string) error
}

type UpvoteStore interface {
	HasUpvoted(ctx context.Context, memoryID, userID string) (bool, error)
	// SaveUpvote fails with ErrDuplicate if this user already upvoted the
	// memory. The uniqueness constraint is the concurrency guard.
	SaveUpvote(ctx context.Context, u *models.Upvote) error
	DeleteUpvote(ctx context.Context, memoryID, userID string) error
	// AdjustUpvoteCount moves the memory's counter by delta in place,
	// atomically with respect to concurrent adjustments and other memory
	// writes. The count never goes below zero; adjusting a memory that no
	// longer exists is a no-op.
	AdjustUpvoteCount(ctx context.Context, memoryID string, delta int) error
}

// FollowStore holds the directed follow edge set. Follower and following
// views are both derived from the same edges.
type FollowStore interface {
	// AddFollow is a no-op if the edge already exists.
	AddFollow(ctx context.Context, followerID, followeeID string) error
	// RemoveFollow is a no-op if the edge does not exist.
	RemoveFollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowers(ctx context.Context, userID string) ([]string, error)
	ListFollowing(ctx context.Context, userID string) ([]string, error)
	// RemoveFollowsForUser drops every edge touching the user.
	RemoveFollowsForUser(ctx context.Context, userID string) error
}

// Store is the full persistence surface consumed by the services.
type Store interface {
	UserStore
	MemoryStore
	FlagStore
	CommentStore
	UpvoteStore
	FollowStore
}
