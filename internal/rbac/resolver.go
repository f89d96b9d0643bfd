package rbac

import (
	"context"

	"member-portal/internal/rbac/repository"
)

// Grant is a user's resolved authorization set.
type Grant struct {
	Roles       []string
	Permissions []string
}

// Resolver walks the user -> roles -> permissions join tables. Lookups are
// per request; nothing is cached, so grants and revocations take effect on
// the next request.
type Resolver struct {
	repo repository.Repository
}

// NewResolver returns a resolver backed by the given repository.
func NewResolver(repo repository.Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the user's roles and permission names. A user with no role
// assignments gets an empty grant, not an error; errors are lookup failures
// and must be treated as faults, never as denials.
func (r *Resolver) Resolve(ctx context.Context, userID string) (Grant, error) {
	roleIDs, err := r.repo.RoleIDsForUser(ctx, userID)
	if err != nil {
		return Grant{}, err
	}
	if len(roleIDs) == 0 {
		return Grant{Roles: RolesFromPermissions(nil)}, nil
	}

	permIDs, err := r.repo.PermissionIDsForRoles(ctx, roleIDs)
	if err != nil {
		return Grant{}, err
	}
	names, err := r.repo.PermissionNames(ctx, permIDs)
	if err != nil {
		return Grant{}, err
	}

	return Grant{
		Roles:       RolesFromPermissions(names),
		Permissions: names,
	}, nil
}
