package services

import (
	"github.com/Sting421/Navigram-API/internal/models"
)

// FollowChecker reports whether viewerID follows ownerID. It lets the
// visibility policy stay a pure function over the social graph.
type FollowChecker func(viewerID, ownerID string) bool

// IsVisible decides whether a viewer may see a memory. viewerID is empty
// for anonymous reads. The rules apply in order:
//
//  1. PUBLIC memories are visible to everyone, including anonymous viewers.
//  2. Anonymous viewers see nothing else.
//  3. Owners always see their own memories.
//  4. FOLLOWERS memories are visible iff the viewer follows the owner.
//  5. Everything else (PRIVATE, non-owner) is not visible.
//
// Every listing and read path goes through this predicate; there is no
// separate raw visibility-enum filtering.
func IsVisible(m *models.Memory, viewerID string, follows FollowChecker) bool {
	if m.Visibility == models.VisibilityPublic {
		return true
	}
	if viewerID == "" {
		return false
	}
	if m.UserID == viewerID {
		return true
	}
	if m.Visibility == models.VisibilityFollowers {
		return follows != nil && follows(viewerID, m.UserID)
	}
	return false
}
