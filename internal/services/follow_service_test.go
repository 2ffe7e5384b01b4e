package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/storage"
)

func newFollowFixture(t *testing.T) (*FollowService, storage.Store, *models.User, *models.User) {
	t.Helper()
	store := storage.NewMemStore()
	svc := NewFollowService(store, testLogger())
	alice := seedUser(t, store, "alice", models.RoleUser)
	bob := seedUser(t, store, "bob", models.RoleUser)
	return svc, store, alice, bob
}

func TestFollowAndUnfollow(t *testing.T) {
	svc, _, alice, bob := newFollowFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	following, err := svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// The edge is directed.
	reverse, err := svc.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, reverse)

	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
	following, err = svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowIsIdempotent(t *testing.T) {
	svc, _, alice, bob := newFollowFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))

	counts, err := svc.FollowCounts(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts.Followers)

	// Unfollowing twice is equally harmless.
	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
}

func TestFollowSelfRejected(t *testing.T) {
	svc, _, alice, _ := newFollowFixture(t)
	err := svc.Follow(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
}

func TestFollowUnknownUser(t *testing.T) {
	svc, _, alice, _ := newFollowFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, "no-such-user"), ErrUserNotFound)
	assert.ErrorIs(t, svc.Follow(ctx, "no-such-user", alice.ID), ErrUserNotFound)
}

func TestFollowersAndFollowingViews(t *testing.T) {
	svc, store, alice, bob := newFollowFixture(t)
	carol := seedUser(t, store, "carol", models.RoleUser)
	ctx := context.Background()

	// alice and carol both follow bob; bob follows carol.
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Follow(ctx, carol.ID, bob.ID))
	require.NoError(t, svc.Follow(ctx, bob.ID, carol.ID))

	followers, err := svc.Followers(ctx, bob.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(followers))
	for _, u := range followers {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"alice", "carol"}, names)

	following, err := svc.Following(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "carol", following[0].Username)

	counts, err := svc.FollowCounts(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts.Followers)
	assert.EqualValues(t, 1, counts.Following)
}

func TestFollowersSkipsDanglingEdges(t *testing.T) {
	svc, store, alice, bob := newFollowFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, store.DeleteUser(ctx, alice.ID))

	followers, err := svc.Followers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)
}
