package main

import (
	"context"
	"errors"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Sting421/Navigram-API/internal/config"
	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/services"
	"github.com/Sting421/Navigram-API/internal/storage"
)

// seed-admin provisions the initial administrator account. Run once against
// a fresh database:
//
//	ADMIN_USERNAME=admin ADMIN_EMAIL=admin@example.com ADMIN_PASSWORD=... go run ./cmd/seed-admin
//
// Existing accounts with the same username are promoted to ADMIN rather
// than duplicated.
func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	username := getRequired(logger, "ADMIN_USERNAME")
	email := getRequired(logger, "ADMIN_EMAIL")
	password := getRequired(logger, "ADMIN_PASSWORD")

	if cfg.MongoURI == "" {
		logger.Fatal("MONGODB_URI is required, seeding an in-memory store is pointless")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB, logger)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer store.Close(context.Background())

	userService := services.NewUserService(store, services.BcryptHasher{}, email, logger)

	if existing, err := userService.GetByUsername(ctx, username); err == nil {
		if existing.Role == models.RoleAdmin {
			logger.Info("admin account already present", zap.String("username", username))
			return
		}
		if _, err := userService.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			logger.Fatal("failed to promote existing account", zap.Error(err))
		}
		logger.Info("existing account promoted to admin", zap.String("username", username))
		return
	} else if !errors.Is(err, services.ErrUserNotFound) {
		logger.Fatal("failed to look up admin account", zap.Error(err))
	}

	user, err := userService.Register(ctx, &models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
		Name:     "Administrator",
	})
	if err != nil {
		logger.Fatal("failed to create admin account", zap.Error(err))
	}
	if _, err := userService.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
		logger.Fatal("failed to assign admin role", zap.Error(err))
	}

	logger.Info("admin account created", zap.String("username", username), zap.String("user_id", user.ID))
}

func getRequired(logger *zap.Logger, key string) string {
	value := os.Getenv(key)
	if value == "" {
		logger.Fatal("required environment variable missing", zap.String("key", key))
	}
	return value
}
