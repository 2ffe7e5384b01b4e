package models

// Role determines what a user is allowed to do. Stored as its string name.
type Role string

const (
	RoleUser      Role = "USER"
	RoleSuperUser Role = "SUPER_USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
	RoleGuest     Role = "GUEST"
)

// Capability is a single permitted action. Checks are a pure table lookup
// rather than role comparisons scattered through handlers.
type Capability string

const (
	CapPostMemories    Capability = "post_memories"
	CapComment         Capability = "comment"
	CapUpvote          Capability = "upvote"
	CapReportContent   Capability = "report_content"
	CapModerateContent Capability = "moderate_content"
	CapManageUsers     Capability = "manage_users"
	CapViewAdminStats  Capability = "view_admin_stats"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleUser: {
		CapPostMemories:  true,
		CapComment:       true,
		CapUpvote:        true,
		CapReportContent: true,
	},
	RoleSuperUser: {
		CapPostMemories:  true,
		CapComment:       true,
		CapUpvote:        true,
		CapReportContent: true,
	},
	RoleModerator: {
		CapPostMemories:    true,
		CapComment:         true,
		CapUpvote:          true,
		CapReportContent:   true,
		CapModerateContent: true,
	},
	RoleAdmin: {
		CapPostMemories:    true,
		CapComment:         true,
		CapUpvote:          true,
		CapReportContent:   true,
		CapModerateContent: true,
		CapManageUsers:     true,
		CapViewAdminStats:  true,
	},
	RoleGuest: {
		CapUpvote:        true,
		CapReportContent: true,
	},
}

// HasCapability reports whether role may perform action. Unknown roles have
// no capabilities.
func HasCapability(role Role, action Capability) bool {
	return roleCapabilities[role][action]
}

// ValidRole reports whether r is one of the defined roles.
func ValidRole(r Role) bool {
	_, ok := roleCapabilities[r]
	return ok
}
