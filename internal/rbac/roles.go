// Package rbac resolves a user's roles and permissions from the database and
// enforces them at request time.
package rbac

// Role names as stored in the roles table.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

// Permission names as stored in the permissions table.
const (
	PermAdminAccess   = "admin_access"
	PermManageUsers   = "manage_users"
	PermEditProfile   = "edit_profile"
	PermViewDashboard = "view_dashboard"
)

// RolesFromPermissions derives effective role names from a permission set.
// Every authenticated user holds the base user role; admin and manager are
// implied by their marker permissions. The mapping is pure and ignores
// unknown permission names.
func RolesFromPermissions(perms []string) []string {
	roles := []string{RoleUser}
	for _, p := range perms {
		switch p {
		case PermAdminAccess:
			roles = append(roles, RoleAdmin)
		case PermManageUsers:
			roles = append(roles, RoleManager)
		}
	}
	return roles
}

// HasRole reports whether name is in roles.
func HasRole(roles []string, name string) bool {
	for _, r := range roles {
		if r == name {
			return true
		}
	}
	return false
}

// HasPermission reports whether name is in perms.
func HasPermission(perms []string, name string) bool {
	for _, p := range perms {
		if p == name {
			return true
		}
	}
	return false
}
