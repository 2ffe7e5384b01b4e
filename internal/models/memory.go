package models

import (
	"time"
)

// Visibility is the per-memory access tier.
type Visibility string

const (
	VisibilityPublic    Visibility = "PUBLIC"
	VisibilityPrivate   Visibility = "PRIVATE"
	VisibilityFollowers Visibility = "FOLLOWERS"
)

// ValidVisibility reports whether v is a defined tier.
func ValidVisibility(v Visibility) bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityFollowers:
		return true
	}
	return false
}

// Memory is a single geotagged post. IsFlagged is true iff at least one
// unresolved flag exists for it; UpvoteCount only moves by one at a time
// through the upvote/remove-upvote pair.
type Memory struct {
	ID          string     `json:"id" bson:"_id"`
	UserID      string     `json:"user_id" bson:"user_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	MediaURL    string     `json:"media_url" bson:"media_url"`
	MediaType   string     `json:"media_type,omitempty" bson:"media_type,omitempty"`
	Latitude    float64    `json:"latitude" bson:"latitude"`
	Longitude   float64    `json:"longitude" bson:"longitude"`
	Visibility  Visibility `json:"visibility" bson:"visibility"`
	UpvoteCount int        `json:"upvote_count" bson:"upvote_count"`
	IsFlagged   bool       `json:"is_flagged" bson:"is_flagged"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}

// MemoryDTO is the listing/read shape: the memory plus owner context and,
// for proximity queries, the distance from the query point.
type MemoryDTO struct {
	Memory
	Username         string   `json:"username"`
	DistanceInMeters *float64 `json:"distance_in_meters,omitempty"`
	HasUserUpvoted   bool     `json:"has_user_upvoted"`
}

type CreateMemoryRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	MediaURL    string     `json:"media_url"`
	MediaType   string     `json:"media_type"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Visibility  Visibility `json:"visibility"`
}

// UpdateMemoryRequest carries optional edits; nil fields are untouched.
// Latitude and longitude must be set together.
type UpdateMemoryRequest struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	MediaURL    *string     `json:"media_url,omitempty"`
	Latitude    *float64    `json:"latitude,omitempty"`
	Longitude   *float64    `json:"longitude,omitempty"`
	Visibility  *Visibility `json:"visibility,omitempty"`
}

// ValidCoordinates reports whether lat/lng are in range: [-90,90] and
// [-180,180] degrees.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func (r *CreateMemoryRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.MediaURL == "" {
		errors["media_url"] = "Media URL is required"
	}
	if !ValidCoordinates(r.Latitude, r.Longitude) {
		errors["location"] = "Coordinates out of range"
	}
	if r.Visibility != "" && !ValidVisibility(r.Visibility) {
		errors["visibility"] = "Visibility must be PUBLIC, PRIVATE or FOLLOWERS"
	}

	return errors
}
