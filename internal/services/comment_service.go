package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/storage"
)

// CommentService manages comments attached to memories.
type CommentService struct {
	store storage.Store
	log   *zap.Logger
}

func NewCommentService(store storage.Store, log *zap.Logger) *CommentService {
	return &CommentService{store: store, log: log}
}

func (s *CommentService) Add(ctx context.Context, memoryID, authorID, content string) (*models.Comment, error) {
	if _, err := s.store.GetMemory(ctx, memoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, authorID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		MemoryID:  memoryID,
		UserID:    authorID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) ListByMemory(ctx context.Context, memoryID string) ([]models.Comment, error) {
	if _, err := s.store.GetMemory(ctx, memoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, err
	}
	return s.store.ListCommentsByMemory(ctx, memoryID)
}

// Delete removes a comment. Authors may delete their own; moderators may
// delete any.
func (s *CommentService) Delete(ctx context.Context, commentID string, actor *models.User) error {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.UserID != actor.ID && !models.HasCapability(actor.Role, models.CapModerateContent) {
		return ErrForbidden
	}
	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	s.log.Info("comment deleted", zap.String("comment_id", commentID), zap.String("actor_id", actor.ID))
	return nil
}
