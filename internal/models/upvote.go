package models

import "time"

// Upvote is the join record behind a memory's upvote count. At most one
// exists per (memory, user) pair; the store enforces that uniqueness.
type Upvote struct {
	ID        string    `json:"id" bson:"_id"`
	MemoryID  string    `json:"memory_id" bson:"memory_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
