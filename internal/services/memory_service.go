package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sting421/Navigram-API/internal/geo"
	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/storage"
)

// metersPerLatDegree approximates one degree of latitude, used only to size
// the bounding-box prefilter for proximity queries.
const metersPerLatDegree = 111320.0

// MemoryService orchestrates memory CRUD, upvote toggling and the
// visibility-filtered listing and proximity paths.
type MemoryService struct {
	store   storage.Store
	follows *FollowService
	log     *zap.Logger
}

func NewMemoryService(store storage.Store, follows *FollowService, log *zap.Logger) *MemoryService {
	return &MemoryService{store: store, follows: follows, log: log}
}

func (s *MemoryService) Create(ctx context.Context, ownerID string, req *models.CreateMemoryRequest) (*models.MemoryDTO, error) {
	owner, err := s.store.GetUser(ctx, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !models.ValidCoordinates(req.Latitude, req.Longitude) {
		return nil, ErrInvalidCoordinates
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !models.ValidVisibility(visibility) {
		return nil, ErrInvalidVisibility
	}

	memory := &models.Memory{
		ID:          uuid.New().String(),
		UserID:      owner.ID,
		Title:       req.Title,
		Description: req.Description,
		MediaURL:    req.MediaURL,
		MediaType:   req.MediaType,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Visibility:  visibility,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.SaveMemory(ctx, memory); err != nil {
		return nil, fmt.Errorf("save memory: %w", err)
	}

	s.log.Info("memory created", zap.String("memory_id", memory.ID), zap.String("user_id", owner.ID))
	return s.toDTO(ctx, memory, ownerID, nil)
}

// Get returns a single memory if the viewer may see it. Invisible memories
// read as not found so their existence is not leaked.
func (s *MemoryService) Get(ctx context.Context, id, viewerID string) (*models.MemoryDTO, error) {
	memory, err := s.getMemory(ctx, id)
	if err != nil {
		return nil, err
	}
	if !IsVisible(memory, viewerID, s.follows.checker(ctx)) {
		return nil, ErrMemoryNotFound
	}
	return s.toDTO(ctx, memory, viewerID, nil)
}

// Update applies edits by the owner or a moderator.
func (s *MemoryService) Update(ctx context.Context, id string, actor *models.User, req *models.UpdateMemoryRequest) (*models.MemoryDTO, error) {
	memory, err := s.getMemory(ctx, id)
	if err != nil {
		return nil, err
	}
	if memory.UserID != actor.ID && !models.HasCapability(actor.Role, models.CapModerateContent) {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		memory.Title = *req.Title
	}
	if req.Description != nil {
		memory.Description = *req.Description
	}
	if req.MediaURL != nil {
		memory.MediaURL = *req.MediaURL
	}
	if req.Latitude != nil && req.Longitude != nil {
		if !models.ValidCoordinates(*req.Latitude, *req.Longitude) {
			return nil, ErrInvalidCoordinates
		}
		memory.Latitude = *req.Latitude
		memory.Longitude = *req.Longitude
	}
	if req.Visibility != nil {
		if !models.ValidVisibility(*req.Visibility) {
			return nil, ErrInvalidVisibility
		}
		memory.Visibility = *req.Visibility
	}

	if err := s.store.SaveMemory(ctx, memory); err != nil {
		return nil, fmt.Errorf("save memory: %w", err)
	}
	return s.toDTO(ctx, memory, actor.ID, nil)
}

// Delete removes a memory and its children. Owners and moderators only.
func (s *MemoryService) Delete(ctx context.Context, id string, actor *models.User) error {
	memory, err := s.getMemory(ctx, id)
	if err != nil {
		return err
	}
	if memory.UserID != actor.ID && !models.HasCapability(actor.Role, models.CapModerateContent) {
		return ErrForbidden
	}
	if err := s.store.DeleteMemory(ctx, id); err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	s.log.Info("memory deleted", zap.String("memory_id", id), zap.String("actor_id", actor.ID))
	return nil
}

// Upvote records one upvote per (memory, user). The store's uniqueness
// constraint is the race guard; a duplicate surfaces as ErrDuplicateUpvote
// and never touches the count. The count itself moves through the store's
// atomic adjustment so racing upvoters cannot lose each other's increments.
func (s *MemoryService) Upvote(ctx context.Context, memoryID, userID string) error {
	if _, err := s.getMemory(ctx, memoryID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	upvote := &models.Upvote{
		ID:        uuid.New().String(),
		MemoryID:  memoryID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveUpvote(ctx, upvote); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return ErrDuplicateUpvote
		}
		return fmt.Errorf("save upvote: %w", err)
	}

	if err := s.store.AdjustUpvoteCount(ctx, memoryID, 1); err != nil {
		return fmt.Errorf("adjust upvote count: %w", err)
	}
	return nil
}

// RemoveUpvote undoes an upvote. Removing a non-existent upvote is a no-op.
func (s *MemoryService) RemoveUpvote(ctx context.Context, memoryID, userID string) error {
	if _, err := s.getMemory(ctx, memoryID); err != nil {
		return err
	}
	if err := s.store.DeleteUpvote(ctx, memoryID, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete upvote: %w", err)
	}
	if err := s.store.AdjustUpvoteCount(ctx, memoryID, -1); err != nil {
		return fmt.Errorf("adjust upvote count: %w", err)
	}
	return nil
}

func (s *MemoryService) HasUpvoted(ctx context.Context, memoryID, userID string) (bool, error) {
	if _, err := s.getMemory(ctx, memoryID); err != nil {
		return false, err
	}
	return s.store.HasUpvoted(ctx, memoryID, userID)
}

// Feed lists every memory the viewer may see, newest first. Anonymous
// viewers can only ever see PUBLIC, so their scan is narrowed up front.
func (s *MemoryService) Feed(ctx context.Context, viewerID string) ([]models.MemoryDTO, error) {
	var memories []models.Memory
	var err error
	if viewerID == "" {
		memories, err = s.store.ListMemoriesByVisibility(ctx, models.VisibilityPublic)
	} else {
		memories, err = s.store.ListMemories(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.visibleDTOs(ctx, memories, viewerID), nil
}

// ListByOwner lists a profile's memories, filtered by what the viewer may
// see.
func (s *MemoryService) ListByOwner(ctx context.Context, ownerID, viewerID string) ([]models.MemoryDTO, error) {
	if _, err := s.store.GetUser(ctx, ownerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	memories, err := s.store.ListMemoriesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.visibleDTOs(ctx, memories, viewerID), nil
}

// Nearby returns the memories visible to the viewer within radiusMeters of
// the center, sorted by ascending distance with creation-time recency
// breaking ties. The bounding-box prefilter only narrows the candidate
// scan; the Haversine check decides membership.
func (s *MemoryService) Nearby(ctx context.Context, lat, lng, radiusMeters float64, viewerID string) ([]models.MemoryDTO, error) {
	if !models.ValidCoordinates(lat, lng) || radiusMeters <= 0 {
		return nil, ErrInvalidCoordinates
	}

	candidates, err := s.candidatesNear(ctx, lat, lng, radiusMeters)
	if err != nil {
		return nil, err
	}

	checker := s.follows.checker(ctx)
	type scored struct {
		memory   models.Memory
		distance float64
	}
	within := make([]scored, 0, len(candidates))
	for _, m := range candidates {
		if !IsVisible(&m, viewerID, checker) {
			continue
		}
		d := geo.DistanceMeters(lat, lng, m.Latitude, m.Longitude)
		if d > radiusMeters {
			continue
		}
		within = append(within, scored{memory: m, distance: d})
	}

	sort.Slice(within, func(i, j int) bool {
		if within[i].distance != within[j].distance {
			return within[i].distance < within[j].distance
		}
		return within[i].memory.CreatedAt.After(within[j].memory.CreatedAt)
	})

	out := make([]models.MemoryDTO, 0, len(within))
	for _, sc := range within {
		sc := sc
		dto, err := s.toDTO(ctx, &sc.memory, viewerID, &sc.distance)
		if err != nil {
			s.log.Warn("skipping memory in nearby listing",
				zap.String("memory_id", sc.memory.ID), zap.Error(err))
			continue
		}
		out = append(out, *dto)
	}
	return out, nil
}

// candidatesNear fetches the bounding-box candidate set, falling back to a
// full scan near the poles or across the antimeridian where the box math
// stops being a superset of the radius.
func (s *MemoryService) candidatesNear(ctx context.Context, lat, lng, radiusMeters float64) ([]models.Memory, error) {
	latDelta := radiusMeters / metersPerLatDegree
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		return s.store.ListMemories(ctx)
	}
	lngDelta := radiusMeters / (metersPerLatDegree * cosLat)

	minLat, maxLat := lat-latDelta, lat+latDelta
	minLng, maxLng := lng-lngDelta, lng+lngDelta
	if minLat < -90 || maxLat > 90 || minLng < -180 || maxLng > 180 {
		return s.store.ListMemories(ctx)
	}
	return s.store.ListMemoriesInBounds(ctx, minLat, maxLat, minLng, maxLng)
}

// ListFlagged returns the memories currently carrying unresolved flags.
func (s *MemoryService) ListFlagged(ctx context.Context) ([]models.MemoryDTO, error) {
	memories, err := s.store.ListFlaggedMemories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.MemoryDTO, 0, len(memories))
	for _, m := range memories {
		m := m
		dto, err := s.toDTO(ctx, &m, "", nil)
		if err != nil {
			s.log.Warn("skipping memory in flagged listing", zap.String("memory_id", m.ID), zap.Error(err))
			continue
		}
		out = append(out, *dto)
	}
	return out, nil
}

// MemoryStats covers the memory rows of the admin dashboard.
func (s *MemoryService) MemoryStats(ctx context.Context) (total, newToday, flagged int64, err error) {
	if total, err = s.store.CountMemories(ctx); err != nil {
		return
	}
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if newToday, err = s.store.CountMemoriesCreatedAfter(ctx, startOfDay); err != nil {
		return
	}
	flagged, err = s.store.CountFlaggedMemories(ctx)
	return
}

func (s *MemoryService) getMemory(ctx context.Context, id string) (*models.Memory, error) {
	memory, err := s.store.GetMemory(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, err
	}
	return memory, nil
}

// visibleDTOs policy-filters memories and converts them. A record that
// fails conversion is skipped and logged rather than failing the listing.
func (s *MemoryService) visibleDTOs(ctx context.Context, memories []models.Memory, viewerID string) []models.MemoryDTO {
	checker := s.follows.checker(ctx)
	out := make([]models.MemoryDTO, 0, len(memories))
	for _, m := range memories {
		m := m
		if !IsVisible(&m, viewerID, checker) {
			continue
		}
		dto, err := s.toDTO(ctx, &m, viewerID, nil)
		if err != nil {
			s.log.Warn("skipping memory in listing", zap.String("memory_id", m.ID), zap.Error(err))
			continue
		}
		out = append(out, *dto)
	}
	return out
}

// toDTO attaches the owner's username and, when the viewer is known,
// whether they upvoted the memory.
func (s *MemoryService) toDTO(ctx context.Context, m *models.Memory, viewerID string, distance *float64) (*models.MemoryDTO, error) {
	owner, err := s.store.GetUser(ctx, m.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve owner %s: %w", m.UserID, err)
	}

	dto := &models.MemoryDTO{
		Memory:           *m,
		Username:         owner.Username,
		DistanceInMeters: distance,
	}
	if viewerID != "" {
		upvoted, err := s.store.HasUpvoted(ctx, m.ID, viewerID)
		if err != nil {
			return nil, fmt.Errorf("resolve upvote state: %w", err)
		}
		dto.HasUserUpvoted = upvoted
	}
	return dto, nil
}
