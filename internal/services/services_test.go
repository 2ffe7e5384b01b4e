package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/storage"
)

// plainHasher keeps passwords readable in tests. Bcrypt rounds add nothing
// to service-level assertions.
type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (plainHasher) Verify(plaintext, hashed string) bool  { return "hashed:"+plaintext == hashed }

func seedUser(t *testing.T, store storage.Store, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     username + "@example.com",
		Name:      username,
		Role:      role,
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveUser(context.Background(), user))
	return user
}

func seedMemory(t *testing.T, store storage.Store, ownerID string, visibility models.Visibility, lat, lng float64) *models.Memory {
	t.Helper()
	memory := &models.Memory{
		ID:         uuid.New().String(),
		UserID:     ownerID,
		Title:      "memory by " + ownerID,
		MediaURL:   "https://cdn.example.com/" + uuid.New().String() + ".jpg",
		MediaType:  "IMAGE",
		Latitude:   lat,
		Longitude:  lng,
		Visibility: visibility,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.SaveMemory(context.Background(), memory))
	return memory
}

func testLogger() *zap.Logger { return zap.NewNop() }
