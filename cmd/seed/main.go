// seed inserts the role and permission catalog plus a development admin
// account. Idempotent: catalog rows upsert on name, and the admin user is
// skipped when it already exists.
package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"

	"member-portal/internal/config"
	"member-portal/internal/db"
	"member-portal/internal/rbac"
	"member-portal/internal/security"
)

const (
	adminUsername = "admin"
	adminEmail    = "admin@example.com"
	adminPassword = "changeme-admin"
)

// rolePermissions is the seeded grant matrix.
var rolePermissions = map[string][]string{
	rbac.RoleAdmin:   {rbac.PermAdminAccess, rbac.PermManageUsers, rbac.PermEditProfile, rbac.PermViewDashboard},
	rbac.RoleManager: {rbac.PermManageUsers, rbac.PermEditProfile, rbac.PermViewDashboard},
	rbac.RoleUser:    {rbac.PermEditProfile, rbac.PermViewDashboard},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()

	roleIDs, err := seedCatalog(ctx, conn)
	if err != nil {
		log.Fatalf("seed catalog: %v", err)
	}

	if err := seedAdmin(ctx, conn, cfg.BcryptCost, roleIDs[rbac.RoleAdmin]); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	log.Println("seed complete")
}

// seedCatalog upserts roles, permissions, and the grant matrix. Returns role
// name to id.
func seedCatalog(ctx context.Context, conn *sql.DB) (map[string]string, error) {
	permIDs := make(map[string]string)
	for _, perms := range rolePermissions {
		for _, p := range perms {
			if _, ok := permIDs[p]; ok {
				continue
			}
			id, err := upsertNamed(ctx, conn, "permissions", p)
			if err != nil {
				return nil, err
			}
			permIDs[p] = id
		}
	}

	roleIDs := make(map[string]string)
	for role, perms := range rolePermissions {
		roleID, err := upsertNamed(ctx, conn, "roles", role)
		if err != nil {
			return nil, err
		}
		roleIDs[role] = roleID
		for _, p := range perms {
			_, err := conn.ExecContext(ctx,
				`INSERT INTO role_permissions (role_id, permission_id)
				 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				roleID, permIDs[p])
			if err != nil {
				return nil, err
			}
		}
	}
	return roleIDs, nil
}

// upsertNamed inserts a named row if missing and returns its id either way.
// The table must have (id, name UNIQUE) columns.
func upsertNamed(ctx context.Context, conn *sql.DB, table, name string) (string, error) {
	var id string
	err := conn.QueryRowContext(ctx,
		`SELECT id FROM `+table+` WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	id = uuid.New().String()
	_, err = conn.ExecContext(ctx,
		`INSERT INTO `+table+` (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, id, name)
	if err != nil {
		return "", err
	}
	// Re-read in case a concurrent seed won the insert.
	err = conn.QueryRowContext(ctx,
		`SELECT id FROM `+table+` WHERE name = $1`, name).Scan(&id)
	return id, err
}

func seedAdmin(ctx context.Context, conn *sql.DB, bcryptCost int, adminRoleID string) error {
	var existing string
	err := conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = $1`, adminUsername).Scan(&existing)
	if err == nil {
		log.Printf("admin user already exists (%s); skipping", existing)
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	hasher := security.NewHasher(bcryptCost)
	hash, err := hasher.Hash([]byte(adminPassword))
	if err != nil {
		return err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, display_name, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, adminUsername, adminEmail, "Administrator", hash, now, now)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		id, adminRoleID)
	if err != nil {
		return err
	}
	log.Printf("seeded admin user %s (password %q; change it)", adminUsername, adminPassword)
	return nil
}
