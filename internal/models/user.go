package models

import (
	"time"
)

// User is an account identity. BanEndDate semantics: when Enabled is false,
// a nil BanEndDate means a permanent ban; a non-nil date is a temporary ban
// that expires at that instant.
type User struct {
	ID             string     `json:"id" bson:"_id"`
	Username       string     `json:"username" bson:"username"`
	Email          string     `json:"email,omitempty" bson:"email,omitempty"`
	Name           string     `json:"name,omitempty" bson:"name,omitempty"`
	PasswordHash   string     `json:"-" bson:"password_hash"`
	ProfilePicture string     `json:"profile_picture,omitempty" bson:"profile_picture,omitempty"`
	Role           Role       `json:"role" bson:"role"`
	SocialLogin    bool       `json:"social_login" bson:"social_login"`
	SocialProvider string     `json:"social_provider,omitempty" bson:"social_provider,omitempty"`
	Enabled        bool       `json:"enabled" bson:"enabled"`
	BanEndDate     *time.Time `json:"ban_end_date,omitempty" bson:"ban_end_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateUserRequest carries optional profile changes. Nil fields are left
// untouched. Username, email and password changes are ignored for
// social-login accounts, whose identity is owned by the provider.
type UpdateUserRequest struct {
	Username       *string `json:"username,omitempty"`
	Email          *string `json:"email,omitempty"`
	Name           *string `json:"name,omitempty"`
	Password       *string `json:"password,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

type BanRequest struct {
	Permanent bool   `json:"permanent"`
	Duration  int    `json:"duration"`
	Unit      string `json:"unit"` // days, weeks or months
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// GuestAuthResponse additionally carries the generated password, returned
// exactly once at creation time.
type GuestAuthResponse struct {
	Token    string `json:"token"`
	User     User   `json:"user"`
	Password string `json:"password"`
}

type BanStatus struct {
	Banned     bool       `json:"banned"`
	Permanent  bool       `json:"permanent"`
	BanEndDate *time.Time `json:"ban_end_date,omitempty"`
}

type FollowCounts struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Username == "" {
		errors["username"] = "Username is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 6 {
		errors["password"] = "Password must be at least 6 characters"
	}

	return errors
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Username == "" {
		errors["username"] = "Username is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}
