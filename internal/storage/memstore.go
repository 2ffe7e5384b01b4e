package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Sting421/Navigram-API/internal/models"
)

// MemStore is an in-memory Store guarded by a single RWMutex. It backs the
// service tests and the no-Mongo development mode.
type MemStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	memories map[string]models.Memory
	flags    map[string]models.Flag
	comments map[string]models.Comment
	upvotes  map[string]models.Upvote            // key: memoryID + "/" + userID
	follows  map[string]map[string]struct{}      // followerID -> set of followeeIDs
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		users:    make(map[string]models.User),
		memories: make(map[string]models.Memory),
		flags:    make(map[string]models.Flag),
		comments: make(map[string]models.Comment),
		upvotes:  make(map[string]models.Upvote),
		follows:  make(map[string]map[string]struct{}),
	}
}

func upvoteKey(memoryID, userID string) string {
	return memoryID + "/" + userID
}

// --- users ---

func (s *MemStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email != "" && u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.GetUserByUsername(ctx, username)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *MemStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetUserByEmail(ctx, email)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *MemStore) SaveUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, other := range s.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username {
			return ErrDuplicate
		}
		if u.Email != "" && other.Email == u.Email {
			return ErrDuplicate
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *MemStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *MemStore) CountEnabledUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.users {
		if u.Enabled {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) CountUsersCreatedAfter(_ context.Context, t time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.users {
		if u.CreatedAt.After(t) {
			n++
		}
	}
	return n, nil
}

// --- memories ---

func (s *MemStore) GetMemory(_ context.Context, id string) (*models.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemStore) listMemories(filter func(models.Memory) bool) []models.Memory {
	out := make([]models.Memory, 0)
	for _, m := range s.memories {
		if filter == nil || filter(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *MemStore) ListMemories(_ context.Context) ([]models.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listMemories(nil), nil
}

func (s *MemStore) ListMemoriesByOwner(_ context.Context, userID string) ([]models.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listMemories(func(m models.Memory) bool { return m.UserID == userID }), nil
}

func (s *MemStore) ListMemoriesByVisibility(_ context.Context, v models.Visibility) ([]models.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listMemories(func(m models.Memory) bool { return m.Visibility == v }), nil
}

func (s *MemStore) ListMemoriesInBounds(_ context.Context, minLat, maxLat, minLng, maxLng float64) ([]models.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listMemories(func(m models.Memory) bool {
		return m.Latitude >= minLat && m.Latitude <= maxLat &&
			m.Longitude >= minLng && m.Longitude <= maxLng
	}), nil
}

func (s *MemStore) ListFlaggedMemories(_ context.Context) ([]models.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listMemories(func(m models.Memory) bool { return m.IsFlagged }), nil
}

func (s *MemStore) SaveMemory(_ context.Context, m *models.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories[m.ID] = *m
	return nil
}

func (s *MemStore) DeleteMemory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memories[id]; !ok {
		return ErrNotFound
	}
	delete(s.memories, id)
	for fid, f := range s.flags {
		if f.MemoryID == id {
			delete(s.flags, fid)
		}
	}
	for cid, c := range s.comments {
		if c.MemoryID == id {
			delete(s.comments, cid)
		}
	}
	for key, u := range s.upvotes {
		if u.MemoryID == id {
			delete(s.upvotes, key)
		}
	}
	return nil
}

func (s *MemStore) CountMemories(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.memories)), nil
}

func (s *MemStore) CountMemoriesCreatedAfter(_ context.Context, t time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, m := range s.memories {
		if m.CreatedAt.After(t) {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) CountFlaggedMemories(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, m := range s.memories {
		if m.IsFlagged {
			n++
		}
	}
	return n, nil
}

// --- flags ---

func (s *MemStore) GetFlag(_ context.Context, id string) (*models.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flags[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (s *MemStore) ListFlags(_ context.Context) ([]models.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Flag, 0, len(s.flags))
	for _, f := range s.flags {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) ListFlagsByMemory(_ context.Context, memoryID string) ([]models.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Flag, 0)
	for _, f := range s.flags {
		if f.MemoryID == memoryID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) CountFlagsByMemory(_ context.Context, memoryID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, f := range s.flags {
		if f.MemoryID == memoryID {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) HasUnresolvedFlags(_ context.Context, memoryID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.flags {
		if f.MemoryID == memoryID && !f.Resolved {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStore) SaveFlag(_ context.Context, f *models.Flag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[f.ID] = *f
	return nil
}

func (s *MemStore) CountFlags(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.flags)), nil
}

// --- comments ---

func (s *MemStore) GetComment(_ context.Context, id string) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemStore) ListCommentsByMemory(_ context.Context, memoryID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Comment, 0)
	for _, c := range s.comments {
		if c.MemoryID == memoryID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) SaveComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[c.ID] = *c
	return nil
}

func (s *MemStore) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

// --- upvotes ---

func (s *MemStore) HasUpvoted(_ context.Context, memoryID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.upvotes[upvoteKey(memoryID, userID)]
	return ok, nil
}

func (s *MemStore) SaveUpvote(_ context.Context, u *models.Upvote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := upvoteKey(u.MemoryID, u.UserID)
	if _, ok := s.upvotes[key]; ok {
		return ErrDuplicate
	}
	s.upvotes[key] = *u
	return nil
}

func (s *MemStore) DeleteUpvote(_ context.Context, memoryID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := upvoteKey(memoryID, userID)
	if _, ok := s.upvotes[key]; !ok {
		return ErrNotFound
	}
	delete(s.upvotes, key)
	return nil
}

func (s *MemStore) AdjustUpvoteCount(_ context.Context, memoryID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memories[memoryID]
	if !ok {
		return nil
	}
	m.UpvoteCount += delta
	if m.UpvoteCount < 0 {
		m.UpvoteCount = 0
	}
	s.memories[memoryID] = m
	return nil
}

// --- follow edges ---

func (s *MemStore) AddFollow(_ context.Context, followerID, followeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.follows[followerID] == nil {
		s.follows[followerID] = make(map[string]struct{})
	}
	s.follows[followerID][followeeID] = struct{}{}
	return nil
}

func (s *MemStore) RemoveFollow(_ context.Context, followerID, followeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.follows[followerID]; ok {
		delete(set, followeeID)
	}
	return nil
}

func (s *MemStore) IsFollowing(_ context.Context, followerID, followeeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.follows[followerID][followeeID]
	return ok, nil
}

func (s *MemStore) ListFollowers(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0)
	for follower, set := range s.follows {
		if _, ok := set[userID]; ok {
			out = append(out, follower)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemStore) ListFollowing(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.follows[userID]))
	for followee := range s.follows[userID] {
		out = append(out, followee)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemStore) RemoveFollowsForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.follows, userID)
	for _, set := range s.follows {
		delete(set, userID)
	}
	return nil
}
