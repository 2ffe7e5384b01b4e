package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Sting421/Navigram-API/internal/config"
	"github.com/Sting421/Navigram-API/internal/handlers"
	appmiddleware "github.com/Sting421/Navigram-API/internal/middleware"
	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/services"
	"github.com/Sting421/Navigram-API/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Storage: Mongo when configured, in-memory otherwise.
	var store storage.Store
	if cfg.MongoURI != "" {
		mongoStore, err := storage.NewMongoStore(context.Background(), cfg.MongoURI, cfg.MongoDB, logger)
		if err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer mongoStore.Close(context.Background())
		store = mongoStore
		logger.Info("using MongoDB storage", zap.String("database", cfg.MongoDB))
	} else {
		store = storage.NewMemStore()
		logger.Warn("MONGODB_URI not set, using in-memory storage")
	}

	// Services
	userService := services.NewUserService(store, services.BcryptHasher{}, cfg.AdminEmail, logger)
	followService := services.NewFollowService(store, logger)
	memoryService := services.NewMemoryService(store, followService, logger)
	moderationService := services.NewModerationService(store, logger)
	if cfg.FlagThreshold > 0 {
		moderationService.SetThreshold(cfg.FlagThreshold)
	}
	commentService := services.NewCommentService(store, logger)

	// Firebase-backed social login is optional; the route still mounts and
	// answers 401 when the provider is unavailable.
	var identityProvider services.IdentityProvider
	if cfg.FirebaseProjectID != "" {
		identityProvider, err = services.NewFirebaseIdentityProvider(
			context.Background(), cfg.FirebaseProjectID, cfg.FirebaseCredentialsJSON, logger)
		if err != nil {
			logger.Warn("failed to initialize Firebase identity provider", zap.Error(err))
			identityProvider = nil
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, cfg.JWTSecret, cfg.JWTExpiration)
	memoryHandler := handlers.NewMemoryHandler(memoryService, userService)
	flagHandler := handlers.NewFlagHandler(moderationService)
	commentHandler := handlers.NewCommentHandler(commentService, userService)
	userHandler := handlers.NewUserHandler(userService, followService)
	adminHandler := handlers.NewAdminHandler(userService, memoryService, moderationService)

	requireAuth := appmiddleware.JWTAuth(cfg.JWTSecret)
	optionalAuth := appmiddleware.OptionalJWTAuth(cfg.JWTSecret)
	requireModerator := appmiddleware.RequireCapability(userService.GetByID, models.CapModerateContent)
	requireUserAdmin := appmiddleware.RequireCapability(userService.GetByID, models.CapManageUsers)
	requireStats := appmiddleware.RequireCapability(userService.GetByID, models.CapViewAdminStats)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		// Auth
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/guest", authHandler.Guest)
			if identityProvider != nil {
				socialHandler := handlers.NewSocialAuthHandler(userService, identityProvider, cfg.JWTSecret, cfg.JWTExpiration)
				r.Post("/social", socialHandler.Login)
			}
			r.With(requireAuth).Get("/me", authHandler.Me)
		})

		// Discovery works anonymously; a token widens what is visible.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/memories", memoryHandler.Feed)
			r.Get("/memories/nearby", memoryHandler.Nearby)
			r.Get("/memories/{memoryId}", memoryHandler.Get)
			r.Get("/memories/{memoryId}/comments", commentHandler.ListForMemory)
			r.Get("/users/{userId}/memories", memoryHandler.ListByUser)
		})

		// Public profile lookups
		r.Get("/users/by-username/{username}", userHandler.GetByUsername)
		r.Get("/users/{userId}/followers", userHandler.Followers)
		r.Get("/users/{userId}/following", userHandler.Following)
		r.Get("/users/{userId}/follow-counts", userHandler.FollowCounts)
		r.Get("/users/{userId}/ban-status", userHandler.BanStatus)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/memories", func(r chi.Router) {
				r.Post("/", memoryHandler.Create)
				r.Put("/{memoryId}", memoryHandler.Update)
				r.Delete("/{memoryId}", memoryHandler.Delete)
				r.Post("/{memoryId}/upvote", memoryHandler.Upvote)
				r.Delete("/{memoryId}/upvote", memoryHandler.RemoveUpvote)
			})

			r.Post("/comments", commentHandler.Create)
			r.Delete("/comments/{commentId}", commentHandler.Delete)

			r.Post("/flags", flagHandler.Report)

			r.Put("/profile", userHandler.UpdateProfile)
			r.Delete("/profile", userHandler.DeleteAccount)

			r.Post("/users/{userId}/follow", userHandler.Follow)
			r.Delete("/users/{userId}/follow", userHandler.Unfollow)
			r.Get("/users/{userId}/follow", userHandler.IsFollowing)
		})

		// Moderation routes
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireModerator)

			r.Get("/flags", flagHandler.ListAll)
			r.Get("/flags/memory/{memoryId}", flagHandler.ListForMemory)
			r.Get("/flags/memory/{memoryId}/status", flagHandler.Status)
			r.Post("/flags/{flagId}/resolve", flagHandler.Resolve)
			r.Post("/moderation/memories/{memoryId}/approve", flagHandler.Approve)
			r.Post("/moderation/memories/{memoryId}/hide", flagHandler.Hide)
			r.Get("/moderation/memories", adminHandler.FlaggedMemories)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireUserAdmin)

			r.Get("/admin/users", adminHandler.ListUsers)
			r.Put("/admin/users/{userId}/role", adminHandler.UpdateRole)
			r.Post("/admin/users/{userId}/ban", adminHandler.Ban)
			r.Post("/admin/users/{userId}/suspend", adminHandler.Suspend)
			r.Delete("/admin/users/{userId}", adminHandler.DeleteUser)
		})

		r.With(requireAuth, requireStats).Get("/admin/stats", adminHandler.Stats)
	})

	logger.Info("Navigram API server starting", zap.String("address", cfg.ServerAddress))
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
