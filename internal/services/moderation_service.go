package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/storage"
)

// DefaultFlagThreshold is the flag count at which a memory is forced hidden.
const DefaultFlagThreshold = 5

// ModerationService runs the per-memory flag lifecycle: accumulate reports,
// force-hide past the threshold, resolve, and the explicit moderator
// overrides (approve, hide).
type ModerationService struct {
	store     storage.Store
	log       *zap.Logger
	threshold int64

	// locks serializes the count-check-then-write in Report per memory so
	// concurrent reporters cannot jointly slip past the threshold.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewModerationService(store storage.Store, log *zap.Logger) *ModerationService {
	return &ModerationService{
		store:     store,
		log:       log,
		threshold: DefaultFlagThreshold,
		locks:     make(map[string]*sync.Mutex),
	}
}

// SetThreshold overrides the flag threshold. Values below 1 are ignored.
func (s *ModerationService) SetThreshold(t int64) {
	if t >= 1 {
		s.threshold = t
	}
}

func (s *ModerationService) memoryLock(memoryID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[memoryID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[memoryID] = l
	}
	return l
}

// Report files a flag against a memory. The report that brings the total
// count (resolved or not) up to the threshold hides the memory by forcing
// visibility to PRIVATE. Once the count has reached the threshold, any
// further report is rejected with
// ErrFlagLimitExceeded and the memory is forced hidden: visibility PRIVATE,
// is-flagged true. That forced transition is re-asserted on every over-limit
// attempt and is committed even though the call errors.
func (s *ModerationService) Report(ctx context.Context, memoryID, reporterID, reason string) (*models.Flag, error) {
	reporter, err := s.store.GetUser(ctx, reporterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	l := s.memoryLock(memoryID)
	l.Lock()
	defer l.Unlock()

	memory, err := s.store.GetMemory(ctx, memoryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, err
	}

	count, err := s.store.CountFlagsByMemory(ctx, memoryID)
	if err != nil {
		return nil, fmt.Errorf("count flags: %w", err)
	}
	if count >= s.threshold {
		memory.Visibility = models.VisibilityPrivate
		memory.IsFlagged = true
		if err := s.store.SaveMemory(ctx, memory); err != nil {
			return nil, fmt.Errorf("force hide memory: %w", err)
		}
		s.log.Warn("memory over flag threshold, forced hidden",
			zap.String("memory_id", memoryID),
			zap.Int64("flag_count", count))
		return nil, ErrFlagLimitExceeded
	}

	flag := &models.Flag{
		ID:         uuid.New().String(),
		MemoryID:   memoryID,
		ReporterID: reporter.ID,
		Reason:     reason,
		Resolved:   false,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.SaveFlag(ctx, flag); err != nil {
		return nil, fmt.Errorf("save flag: %w", err)
	}

	memory.IsFlagged = true
	if count+1 >= s.threshold {
		memory.Visibility = models.VisibilityPrivate
		s.log.Warn("memory reached flag threshold, hidden",
			zap.String("memory_id", memoryID),
			zap.Int64("flag_count", count+1))
	}
	if err := s.store.SaveMemory(ctx, memory); err != nil {
		return nil, fmt.Errorf("mark memory flagged: %w", err)
	}

	s.log.Info("memory reported",
		zap.String("memory_id", memoryID),
		zap.String("reporter_id", reporterID),
		zap.Int64("flag_count", count+1))
	return flag, nil
}

// Resolve marks a flag resolved and recomputes the memory's is-flagged bit.
// Visibility is never restored here; un-hiding takes an explicit Approve.
func (s *ModerationService) Resolve(ctx context.Context, flagID string) error {
	flag, err := s.store.GetFlag(ctx, flagID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrFlagNotFound
		}
		return err
	}

	flag.Resolved = true
	if err := s.store.SaveFlag(ctx, flag); err != nil {
		return fmt.Errorf("save flag: %w", err)
	}

	unresolved, err := s.store.HasUnresolvedFlags(ctx, flag.MemoryID)
	if err != nil {
		return fmt.Errorf("check unresolved flags: %w", err)
	}
	if !unresolved {
		memory, err := s.store.GetMemory(ctx, flag.MemoryID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Memory removed under the flag; nothing left to update.
				return nil
			}
			return err
		}
		memory.IsFlagged = false
		if err := s.store.SaveMemory(ctx, memory); err != nil {
			return fmt.Errorf("clear flagged state: %w", err)
		}
	}

	s.log.Info("flag resolved", zap.String("flag_id", flagID), zap.String("memory_id", flag.MemoryID))
	return nil
}

// Approve clears the is-flagged bit without requiring flag resolution. It is
// the moderator override, and the only way a hidden memory's flag state is
// cleared administratively.
func (s *ModerationService) Approve(ctx context.Context, memoryID string) error {
	memory, err := s.store.GetMemory(ctx, memoryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrMemoryNotFound
		}
		return err
	}
	memory.IsFlagged = false
	if err := s.store.SaveMemory(ctx, memory); err != nil {
		return fmt.Errorf("approve memory: %w", err)
	}
	s.log.Info("memory approved", zap.String("memory_id", memoryID))
	return nil
}

// Hide forces a memory PRIVATE regardless of flag state.
func (s *ModerationService) Hide(ctx context.Context, memoryID string) error {
	memory, err := s.store.GetMemory(ctx, memoryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrMemoryNotFound
		}
		return err
	}
	memory.Visibility = models.VisibilityPrivate
	if err := s.store.SaveMemory(ctx, memory); err != nil {
		return fmt.Errorf("hide memory: %w", err)
	}
	s.log.Info("memory hidden", zap.String("memory_id", memoryID))
	return nil
}

// FlagsForMemory lists all flags on a memory, newest first.
func (s *ModerationService) FlagsForMemory(ctx context.Context, memoryID string) ([]models.Flag, error) {
	if _, err := s.store.GetMemory(ctx, memoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, err
	}
	return s.store.ListFlagsByMemory(ctx, memoryID)
}

// FlagStatus reports the moderation summary for a memory.
func (s *ModerationService) FlagStatus(ctx context.Context, memoryID string) (*models.FlagStatus, error) {
	memory, err := s.store.GetMemory(ctx, memoryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, err
	}
	count, err := s.store.CountFlagsByMemory(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	return &models.FlagStatus{
		MemoryID:  memoryID,
		IsFlagged: memory.IsFlagged,
		FlagCount: count,
	}, nil
}

// AllFlags lists every flag in the system, newest first.
func (s *ModerationService) AllFlags(ctx context.Context) ([]models.Flag, error) {
	return s.store.ListFlags(ctx)
}

// FlagCount is the lifetime number of flags across all memories.
func (s *ModerationService) FlagCount(ctx context.Context) (int64, error) {
	return s.store.CountFlags(ctx)
}
