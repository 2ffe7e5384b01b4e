package models

import "time"

// Flag is a report filed against a memory. It is only ever mutated by
// resolution and is deleted together with its memory.
type Flag struct {
	ID         string    `json:"id" bson:"_id"`
	MemoryID   string    `json:"memory_id" bson:"memory_id"`
	ReporterID string    `json:"reporter_id" bson:"reporter_id"`
	Reason     string    `json:"reason" bson:"reason"`
	Resolved   bool      `json:"resolved" bson:"resolved"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

type CreateFlagRequest struct {
	MemoryID string `json:"memory_id"`
	Reason   string `json:"reason"`
}

func (r *CreateFlagRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.MemoryID == "" {
		errors["memory_id"] = "Memory ID is required"
	}
	if r.Reason == "" {
		errors["reason"] = "Reason is required"
	}

	return errors
}

// FlagStatus is the per-memory moderation summary.
type FlagStatus struct {
	MemoryID  string `json:"memory_id"`
	IsFlagged bool   `json:"is_flagged"`
	FlagCount int64  `json:"flag_count"`
}
