package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/storage"
)

func newMemoryFixture(t *testing.T) (*MemoryService, *FollowService, storage.Store) {
	t.Helper()
	store := storage.NewMemStore()
	follows := NewFollowService(store, testLogger())
	return NewMemoryService(store, follows, testLogger()), follows, store
}

func TestCreateMemoryDefaultsToPublic(t *testing.T) {
	svc, _, store := newMemoryFixture(t)
	owner := seedUser(t, store, "owner", models.RoleUser)

	dto, err := svc.Create(context.Background(), owner.ID, &models.CreateMemoryRequest{
		Title:     "sunset",
		MediaURL:  "https://cdn.example.com/sunset.jpg",
		MediaType: "IMAGE",
		Latitude:  40.0,
		Longitude: -75.0,
	})
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPublic, dto.Visibility)
	assert.Equal(t, "owner", dto.Username)
	assert.Zero(t, dto.UpvoteCount)
}

func TestCreateMemoryRejectsBadCoordinates(t *testing.T) {
	svc, _, store := newMemoryFixture(t)
	owner := seedUser(t, store, "owner", models.RoleUser)

	_, err := svc.Create(context.Background(), owner.ID, &models.CreateMemoryRequest{
		MediaURL:  "https://cdn.example.com/x.jpg",
		Latitude:  91.0,
		Longitude: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = svc.Create(context.Background(), owner.ID, &models.CreateMemoryRequest{
		MediaURL:  "https://cdn.example.com/x.jpg",
		Latitude:  0,
		Longitude: -181.0,
	})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestGetAppliesVisibility(t *testing.T) {
	svc, follows, store := newMemoryFixture(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner", models.RoleUser)
	follower := seedUser(t, store, "follower", models.RoleUser)
	stranger := seedUser(t, store, "stranger", models.RoleUser)
	require.NoError(t, follows.Follow(ctx, follower.ID, owner.ID))

	private := seedMemory(t, store, owner.ID, models.VisibilityPrivate, 40.0, -75.0)
	followersOnly := seedMemory(t, store, owner.ID, models.VisibilityFollowers, 40.0, -75.0)

	// Private reads as not found for everyone but the owner.
	_, err := svc.Get(ctx, private.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrMemoryNotFound)
	_, err = svc.Get(ctx, private.ID, owner.ID)
	assert.NoError(t, err)

	// Followers-only depends on the follow edge.
	_, err = svc.Get(ctx, followersOnly.ID, follower.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, followersOnly.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrMemoryNotFound)
	_, err = svc.Get(ctx, followersOnly.ID, "")
	assert.ErrorIs(t, err, ErrMemoryNotFound)
}

func TestUpdateOwnershipRules(t *testing.T) {
	svc, _, store := newMemoryFixture(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner", models.RoleUser)
	stranger := seedUser(t, store, "stranger", models.RoleUser)
	moderator := seedUser(t, store, "mod", models.RoleModerator)
	memory := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.0, -75.0)

	newTitle := "renamed"
	_, err := svc.Update(ctx, memory.ID, stranger, &models.UpdateMemoryRequest{Title: &newTitle})
	assert.ErrorIs(t, err, ErrForbidden)

	dto, err := svc.Update(ctx, memory.ID, owner, &models.UpdateMemoryRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "renamed", dto.Title)

	modTitle := "moderated"
	dto, err = svc.Update(ctx, memory.ID, moderator, &models.UpdateMemoryRequest{Title: &modTitle})
	require.NoError(t, err)
	assert.Equal(t, "moderated", dto.Title)
}

func TestDeleteMemoryCascades(t *testing.T) {
	svc, _, store := newMemoryFixture(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner", models.RoleUser)
	voter := seedUser(t, store, "voter", models.RoleUser)
	memory := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.0, -75.0)

	require.NoError(t, svc.Upvote(ctx, memory.ID, voter.ID))
	require.NoError(t, svc.Delete(ctx, memory.ID, owner))

	_, err := store.GetMemory(ctx, memory.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	has, err := store.HasUpvoted(ctx, memory.ID, voter.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestUpvoteRoundTrip(t *testing.T) {
	svc, _, store := newMemoryFixture(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner", models.RoleUser)
	voter := seedUser(t, store, "voter", models.RoleUser)
	memory := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.0, -75.0)

	require.NoError(t, svc.Upvote(ctx, memory.ID, voter.ID))
	got, err := store.GetMemory(ctx, memory.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UpvoteCount)

	// Upvoting again conflicts and never double counts.
	assert.ErrorIs(t, svc.Upvote(ctx, memory.ID, voter.ID), ErrDuplicateUpvote)
	got, err = store.GetMemory(ctx, memory.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UpvoteCount)

	has, err := svc.HasUpvoted(ctx, memory.ID, voter.ID)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, svc.RemoveUpvote(ctx, memory.ID, voter.ID))
	got, err = store.GetMemory(ctx, memory.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UpvoteCount)
	has, err = svc.HasUpvoted(ctx, memory.ID, voter.ID)
	require.NoError(t, err)
	assert.False(t, has)

	// Removing again is equally harmless and never goes negative.
	require.NoError(t, svc.RemoveUpvote(ctx, memory.ID, voter.ID))
	got, err = store.GetMemory(ctx, memory.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UpvoteCount)
}

func TestConcurrentUpvotesCountEveryVoter(t *testing.T) {
	svc, _, store := newMemoryFixture(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner", models.RoleUser)
	memory := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.0, -75.0)

	const voters = 64
	ids := make([]string, 0, voters)
	for i := 0; i < voters; i++ {
		u := seedUser(t, store, fmt.Sprintf("voter-%d", i), models.RoleUser)
		ids = append(ids, u.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(voterID string) {
			defer wg.Done()
			assert.NoError(t, svc.Upvote(ctx, memory.ID, voterID))
		}(id)
	}
	wg.Wait()

	got, err := store.GetMemory(ctx, memory.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, got.UpvoteCount)

	// Concurrent removals land just as exactly, back to zero.
	for _, id := range ids {
		wg.Add(1)
		go func(voterID string) {
			defer wg.Done()
			assert.NoError(t, svc.RemoveUpvote(ctx, memory.ID, voterID))
		}(id)
	}
	wg.Wait()

	got, err = store.GetMemory(ctx, memory.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UpvoteCount)
}

func TestNearbyFiltersByRadiusAndSortsByDistance(t *testing.T) {
	svc, _, store := newMemoryFixture(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner", models.RoleUser)

	// Roughly 111m, 333m and 2.2km north of the center.
	near := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.001, -75.0)
	mid := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.003, -75.0)
	far := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.02, -75.0)

	results, err := svc.Nearby(ctx, 40.0, -75.0, 500, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, near.ID, results[0].ID)
	assert.Equal(t, mid.ID, results[1].ID)
	for _, dto := range results {
		require.NotNil(t, dto.DistanceInMeters)
		assert.LessOrEqual(t, *dto.DistanceInMeters, 500.0)
		assert.NotEqual(t, far.ID, dto.ID)
	}
	assert.Less(t, *results[0].DistanceInMeters, *results[1].DistanceInMeters)
}

func TestNearbyBreaksDistanceTiesNewestFirst(t *testing.T) {
	svc, _, store := newMemoryFixture(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner", models.RoleUser)

	older := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.001, -75.0)
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, store.SaveMemory(ctx, older))
	newer := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.001, -75.0)

	results, err := svc.Nearby(ctx, 40.0, -75.0, 500, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, newer.ID, results[0].ID)
	assert.Equal(t, older.ID, results[1].ID)
}

func TestNearbyAppliesVisibility(t *testing.T) {
	svc, follows, store := newMemoryFixture(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner", models.RoleUser)
	follower := seedUser(t, store, "follower", models.RoleUser)
	require.NoError(t, follows.Follow(ctx, follower.ID, owner.ID))

	public := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.001, -75.0)
	followersOnly := seedMemory(t, store, owner.ID, models.VisibilityFollowers, 40.001, -75.0)
	seedMemory(t, store, owner.ID, models.VisibilityPrivate, 40.001, -75.0)

	anonymous, err := svc.Nearby(ctx, 40.0, -75.0, 500, "")
	require.NoError(t, err)
	require.Len(t, anonymous, 1)
	assert.Equal(t, public.ID, anonymous[0].ID)

	asFollower, err := svc.Nearby(ctx, 40.0, -75.0, 500, follower.ID)
	require.NoError(t, err)
	ids := []string{asFollower[0].ID, asFollower[1].ID}
	assert.ElementsMatch(t, []string{public.ID, followersOnly.ID}, ids)
	require.Len(t, asFollower, 2)

	asOwner, err := svc.Nearby(ctx, 40.0, -75.0, 500, owner.ID)
	require.NoError(t, err)
	assert.Len(t, asOwner, 3)
}

func TestNearbyRejectsBadArguments(t *testing.T) {
	svc, _, _ := newMemoryFixture(t)
	_, err := svc.Nearby(context.Background(), 120.0, 0, 500, "")
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	_, err = svc.Nearby(context.Background(), 40.0, -75.0, 0, "")
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestFeedAppliesVisibility(t *testing.T) {
	svc, follows, store := newMemoryFixture(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner", models.RoleUser)
	follower := seedUser(t, store, "follower", models.RoleUser)
	require.NoError(t, follows.Follow(ctx, follower.ID, owner.ID))

	seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.0, -75.0)
	seedMemory(t, store, owner.ID, models.VisibilityFollowers, 40.0, -75.0)
	seedMemory(t, store, owner.ID, models.VisibilityPrivate, 40.0, -75.0)

	anonymous, err := svc.Feed(ctx, "")
	require.NoError(t, err)
	assert.Len(t, anonymous, 1)

	asFollower, err := svc.Feed(ctx, follower.ID)
	require.NoError(t, err)
	assert.Len(t, asFollower, 2)

	asOwner, err := svc.Feed(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, asOwner, 3)
}

func TestListByOwnerAppliesVisibility(t *testing.T) {
	svc, _, store := newMemoryFixture(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner", models.RoleUser)
	stranger := seedUser(t, store, "stranger", models.RoleUser)

	seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.0, -75.0)
	seedMemory(t, store, owner.ID, models.VisibilityPrivate, 40.0, -75.0)

	asStranger, err := svc.ListByOwner(ctx, owner.ID, stranger.ID)
	require.NoError(t, err)
	assert.Len(t, asStranger, 1)

	asOwner, err := svc.ListByOwner(ctx, owner.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, asOwner, 2)

	_, err = svc.ListByOwner(ctx, "no-such-user", stranger.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryStats(t *testing.T) {
	svc, _, store := newMemoryFixture(t)
	ctx := context.Background()
	owner := seedUser(t, store, "owner", models.RoleUser)

	seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.0, -75.0)
	flagged := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.0, -75.0)
	flagged.IsFlagged = true
	require.NoError(t, store.SaveMemory(ctx, flagged))

	total, newToday, flaggedCount, err := svc.MemoryStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.EqualValues(t, 2, newToday)
	assert.EqualValues(t, 1, flaggedCount)
}
