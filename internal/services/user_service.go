package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/storage"
)

// PasswordHasher is the credential hashing collaborator. The service never
// stores or compares plaintext directly.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// BcryptHasher hashes with bcrypt at the default cost.
type BcryptHasher struct{}

func (BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (BcryptHasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

// UserService owns accounts: registration, login, guest and social accounts,
// the ban/suspension lifecycle, role changes and deletion.
type UserService struct {
	store      storage.Store
	hasher     PasswordHasher
	log        *zap.Logger
	adminEmail string
	now        func() time.Time
}

func NewUserService(store storage.Store, hasher PasswordHasher, adminEmail string, log *zap.Logger) *UserService {
	return &UserService{
		store:      store,
		hasher:     hasher,
		log:        log,
		adminEmail: adminEmail,
		now:        time.Now,
	}
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if taken, err := s.store.UsernameExists(ctx, req.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameExists
	}
	if taken, err := s.store.EmailExists(ctx, req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailExists
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		Enabled:      true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.saveNewUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and the account's usability. A banned account
// whose ban has expired is reactivated here, durably, before the decision
// returns.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	usable, err := s.IsUsable(ctx, user)
	if err != nil {
		return nil, err
	}
	if !usable {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// IsUsable evaluates the account lifecycle at authentication time and
// mutates user in place when a temporary ban has lapsed:
//
//   - enabled accounts are usable;
//   - disabled with no ban end date is a permanent ban;
//   - disabled with a lapsed ban end date is reactivated (enabled set,
//     date cleared) and the write is committed before returning;
//   - disabled with a future ban end date stays unusable.
func (s *UserService) IsUsable(ctx context.Context, user *models.User) (bool, error) {
	if user.Enabled {
		return true, nil
	}
	if user.BanEndDate == nil {
		return false, nil
	}
	if user.BanEndDate.After(s.now()) {
		return false, nil
	}

	user.Enabled = true
	user.BanEndDate = nil
	if err := s.store.SaveUser(ctx, user); err != nil {
		return false, fmt.Errorf("persist ban expiry: %w", err)
	}
	s.log.Info("ban expired, account reactivated", zap.String("user_id", user.ID))
	return true, nil
}

// BanFor disables the account until now plus the duration. Unit must be
// days, weeks or months.
func (s *UserService) BanFor(ctx context.Context, userID string, duration int, unit string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	now := s.now()
	var end time.Time
	switch strings.ToLower(unit) {
	case "days":
		end = now.AddDate(0, 0, duration)
	case "weeks":
		end = now.AddDate(0, 0, 7*duration)
	case "months":
		end = now.AddDate(0, duration, 0)
	default:
		return ErrInvalidBanUnit
	}

	user.Enabled = false
	user.BanEndDate = &end
	if err := s.store.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("save ban: %w", err)
	}
	s.log.Info("user banned",
		zap.String("user_id", userID),
		zap.Int("duration", duration),
		zap.String("unit", unit),
		zap.Time("ban_end", end))
	return nil
}

// BanPermanently disables the account with no end date.
func (s *UserService) BanPermanently(ctx context.Context, userID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	user.Enabled = false
	user.BanEndDate = nil
	if err := s.store.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("save permanent ban: %w", err)
	}
	s.log.Info("user banned permanently", zap.String("user_id", userID))
	return nil
}

// Suspend disables the account without touching the ban end date.
func (s *UserService) Suspend(ctx context.Context, userID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	user.Enabled = false
	if err := s.store.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("save suspension: %w", err)
	}
	s.log.Info("user suspended", zap.String("user_id", userID))
	return nil
}

// BanStatus reports the current ban state without side effects.
func (s *UserService) BanStatus(ctx context.Context, userID string) (*models.BanStatus, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Enabled {
		return &models.BanStatus{}, nil
	}
	return &models.BanStatus{
		Banned:     true,
		Permanent:  user.BanEndDate == nil,
		BanEndDate: user.BanEndDate,
	}, nil
}

// CreateGuest provisions a throwaway GUEST account. The generated password
// is returned once and never stored in plaintext.
func (s *UserService) CreateGuest(ctx context.Context) (*models.User, string, error) {
	shortID := uuid.New().String()[:8]
	username := "guest_" + shortID
	password := uuid.New().String()

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash guest password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        username + "@guest.navigram.local",
		PasswordHash: hashed,
		Role:         models.RoleGuest,
		Enabled:      true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.saveNewUser(ctx, user); err != nil {
		return nil, "", err
	}

	s.log.Info("guest user created", zap.String("user_id", user.ID), zap.String("username", username))
	return user, password, nil
}

// FindOrCreateSocialUser matches on the provider's stable subject id, used
// as the username. First-seen subjects whose email equals the configured
// administrator address get the ADMIN role; everyone else gets USER.
func (s *UserService) FindOrCreateSocialUser(ctx context.Context, info *SocialUserInfo) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, info.SubjectID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	role := models.RoleUser
	if s.adminEmail != "" && info.Email == s.adminEmail {
		role = models.RoleAdmin
	}

	hashed, err := s.hasher.Hash(uuid.New().String())
	if err != nil {
		return nil, fmt.Errorf("hash social placeholder password: %w", err)
	}

	user = &models.User{
		ID:             uuid.New().String(),
		Username:       info.SubjectID,
		Email:          info.Email,
		Name:           info.Name,
		ProfilePicture: info.AvatarURL,
		PasswordHash:   hashed,
		Role:           role,
		SocialLogin:    true,
		SocialProvider: info.Provider,
		Enabled:        true,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.saveNewUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("social user created",
		zap.String("user_id", user.ID),
		zap.String("provider", info.Provider),
		zap.String("role", string(role)))
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListAll(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// Update applies profile changes. Social-login accounts keep their
// provider-owned username, email and password.
func (s *UserService) Update(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if !user.SocialLogin {
		if req.Username != nil {
			user.Username = *req.Username
		}
		if req.Email != nil {
			user.Email = *req.Email
		}
		if req.Password != nil {
			hashed, err := s.hasher.Hash(*req.Password)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			user.PasswordHash = hashed
		}
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.ProfilePicture != nil {
		user.ProfilePicture = *req.ProfilePicture
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

func (s *UserService) UpdateRole(ctx context.Context, userID string, role models.Role) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("save role change: %w", err)
	}
	s.log.Info("user role updated", zap.String("user_id", userID), zap.String("role", string(role)))
	return user, nil
}

// Delete removes the account, its memories (with their flags, comments and
// upvotes) and every follow edge touching it.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if _, err := s.getUser(ctx, userID); err != nil {
		return err
	}

	memories, err := s.store.ListMemoriesByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("list owned memories: %w", err)
	}
	for _, m := range memories {
		if err := s.store.DeleteMemory(ctx, m.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("cascade delete memory %s: %w", m.ID, err)
		}
	}
	if err := s.store.RemoveFollowsForUser(ctx, userID); err != nil {
		return fmt.Errorf("remove follow edges: %w", err)
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info("user deleted", zap.String("user_id", userID), zap.Int("memories_removed", len(memories)))
	return nil
}

// UserStats covers the user rows of the admin dashboard.
func (s *UserService) UserStats(ctx context.Context) (total, active, newToday int64, err error) {
	if total, err = s.store.CountUsers(ctx); err != nil {
		return
	}
	if active, err = s.store.CountEnabledUsers(ctx); err != nil {
		return
	}
	startOfDay := s.startOfToday()
	newToday, err = s.store.CountUsersCreatedAfter(ctx, startOfDay)
	return
}

func (s *UserService) startOfToday() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *UserService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) saveNewUser(ctx context.Context, user *models.User) error {
	if err := s.store.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return ErrUsernameExists
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
