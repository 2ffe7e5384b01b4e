package models

import "time"

// Comment is an append-only child of a memory.
type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	MemoryID  string    `json:"memory_id" bson:"memory_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type CreateCommentRequest struct {
	MemoryID string `json:"memory_id"`
	Content  string `json:"content"`
}

func (r *CreateCommentRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.MemoryID == "" {
		errors["memory_id"] = "Memory ID is required"
	}
	if r.Content == "" {
		errors["content"] = "Content is required"
	}

	return errors
}
