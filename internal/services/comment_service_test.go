package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/storage"
)

func TestCommentLifecycle(t *testing.T) {
	store := storage.NewMemStore()
	svc := NewCommentService(store, testLogger())
	ctx := context.Background()

	owner := seedUser(t, store, "owner", models.RoleUser)
	author := seedUser(t, store, "author", models.RoleUser)
	stranger := seedUser(t, store, "stranger", models.RoleUser)
	moderator := seedUser(t, store, "mod", models.RoleModerator)
	memory := seedMemory(t, store, owner.ID, models.VisibilityPublic, 40.0, -75.0)

	first, err := svc.Add(ctx, memory.ID, author.ID, "first!")
	require.NoError(t, err)
	second, err := svc.Add(ctx, memory.ID, author.ID, "and another")
	require.NoError(t, err)

	comments, err := svc.ListByMemory(ctx, memory.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID, "comments list oldest first")

	// Only the author or a moderator may delete.
	assert.ErrorIs(t, svc.Delete(ctx, first.ID, stranger), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, first.ID, author))
	require.NoError(t, svc.Delete(ctx, second.ID, moderator))

	comments, err = svc.ListByMemory(ctx, memory.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentOnMissingMemory(t *testing.T) {
	store := storage.NewMemStore()
	svc := NewCommentService(store, testLogger())
	author := seedUser(t, store, "author", models.RoleUser)

	_, err := svc.Add(context.Background(), "no-such-memory", author.ID, "hello")
	assert.ErrorIs(t, err, ErrMemoryNotFound)
}
