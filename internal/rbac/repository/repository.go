package repository

import "context"

// Repository defines persistence for role and permission lookups.
type Repository interface {
	// RoleIDsForUser returns the ids of roles assigned to the user.
	RoleIDsForUser(ctx context.Context, userID string) ([]string, error)
	// PermissionIDsForRoles returns the distinct permission ids granted by the roles.
	PermissionIDsForRoles(ctx context.Context, roleIDs []string) ([]string, error)
	// PermissionNames returns the names for the permission ids.
	PermissionNames(ctx context.Context, permissionIDs []string) ([]string, error)
}
