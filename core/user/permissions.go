package user

// Permissions is the capability set of a role. It is derived, never stored.
type Permissions struct {
	CanCreateArticles  bool `json:"can_create_articles"`
	CanModerateContent bool `json:"can_moderate_content"`
	CanManageUsers     bool `json:"can_manage_users"`
	CanAccessAnalytics bool `json:"can_access_analytics"`
	CanDeleteContent   bool `json:"can_delete_content"`
	CanBanUsers        bool `json:"can_ban_users"`
}

var permissionMatrix = map[string]Permissions{
	RoleAdmin: {
		CanCreateArticles:  true,
		CanModerateContent: true,
		CanManageUsers:     true,
		CanAccessAnalytics: true,
		CanDeleteContent:   true,
		CanBanUsers:        true,
	},
	RoleModerator: {
		CanModerateContent: true,
		CanDeleteContent:   true,
	},
	RoleTeacher: {
		CanCreateArticles: true,
	},
	RoleStudent: {},
}

// PermissionsFor maps a role to its capabilities. Unknown roles get none.
func PermissionsFor(role string) Permissions {
	return permissionMatrix[role]
}

// Policies
//
// Every create/update/delete decision goes through one of these.
// Inactive users are denied everything.

func CanCreateArticle(u User) bool {
	return u.IsActive && u.Permissions().CanCreateArticles
}

// CanCreateConfession restricts confessions to teachers and admins.
func CanCreateConfession(u User) bool {
	return u.IsActive && (u.Role == RoleTeacher || u.Role == RoleAdmin)
}

func CanComment(u User) bool {
	return u.IsActive
}

func CanReport(u User) bool {
	return u.IsActive
}

func CanReact(u User) bool {
	return u.IsActive
}

// CanEditContent allows the author or an admin to edit an article, confession or comment.
func CanEditContent(u User, authorID string) bool {
	return u.IsActive && (u.ID == authorID || u.IsAdmin())
}

func CanDeleteArticle(u User, authorID string) bool {
	return u.IsActive && (u.ID == authorID || u.IsAdmin())
}

// CanDeleteConfession allows the author or anyone who can delete content (admins & moderators).
func CanDeleteConfession(u User, authorID string) bool {
	return u.IsActive && (u.ID == authorID || u.Permissions().CanDeleteContent)
}

func CanDeleteComment(u User, authorID string) bool {
	return u.IsActive && (u.ID == authorID || u.IsAdmin())
}

func CanModerate(u User) bool {
	return u.IsActive && u.Permissions().CanModerateContent
}

func CanResolveReports(u User) bool {
	return u.IsActive && u.Permissions().CanModerateContent
}

func CanManageUsers(u User) bool {
	return u.IsActive && u.Permissions().CanManageUsers
}

func CanAccessAnalytics(u User) bool {
	return u.IsActive && u.Permissions().CanAccessAnalytics
}

// CanAssignRole prevents users from granting a role above their own.
func CanAssignRole(u User, role string) bool {
	return CanManageUsers(u) && RolePriority(role) > 0 && RolePriority(role) <= RolePriority(u.Role)
}

// IsPrivileged reports whether the user acts with admin rights, in which case their mutations are audited.
func IsPrivileged(u User) bool {
	return u.IsAdmin() || u.IsModerator()
}
