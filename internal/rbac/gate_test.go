package rbac

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"member-portal/internal/security"
	"member-portal/internal/session"
)

func testGate(t *testing.T) (*Gate, *session.Manager, *memRBACRepo) {
	t.Helper()
	tokens := security.NewTestTokenProvider()
	sessions := session.NewManager(tokens, session.NewMemoryWatermark(), time.Hour, 5*time.Minute)
	repo := testRepo()
	gate := NewGate(sessions, NewResolver(repo))
	return gate, sessions, repo
}

func loginAs(t *testing.T, sessions *session.Manager, userID string) string {
	t.Helper()
	token, err := sessions.Create(session.Identity{ID: userID, Username: userID}, session.ClientContext{})
	if err != nil {
		t.Fatalf("Create session: %v", err)
	}
	return token
}

func TestGate_NoToken(t *testing.T) {
	gate, _, _ := testGate(t)
	_, denial := gate.Authorize(context.Background(), "")
	if denial == nil || denial.Status != http.StatusUnauthorized {
		t.Errorf("empty token: want 401 denial, got %+v", denial)
	}
}

func TestGate_BadToken(t *testing.T) {
	gate, _, _ := testGate(t)
	_, denial := gate.Authorize(context.Background(), "not.a.token")
	if denial == nil || denial.Status != http.StatusUnauthorized {
		t.Errorf("bad token: want 401 denial, got %+v", denial)
	}
}

func TestGate_ValidTokenNoChecks(t *testing.T) {
	gate, sessions, _ := testGate(t)
	token := loginAs(t, sessions, "plain-user")

	subject, denial := gate.Authorize(context.Background(), token)
	if denial != nil {
		t.Fatalf("Authorize: %+v", denial)
	}
	if subject.Identity.ID != "plain-user" {
		t.Errorf("subject: got %q", subject.Identity.ID)
	}
}

func TestGate_RoleCheck(t *testing.T) {
	gate, sessions, _ := testGate(t)

	admin := loginAs(t, sessions, "admin-user")
	if _, denial := gate.Authorize(context.Background(), admin, RequireRole(RoleAdmin)); denial != nil {
		t.Errorf("admin denied admin role: %+v", denial)
	}

	plain := loginAs(t, sessions, "plain-user")
	_, denial := gate.Authorize(context.Background(), plain, RequireRole(RoleAdmin))
	if denial == nil || denial.Status != http.StatusForbidden {
		t.Errorf("plain user as admin: want 403 denial, got %+v", denial)
	}
}

func TestGate_PermissionCheck(t *testing.T) {
	gate, sessions, _ := testGate(t)

	manager := loginAs(t, sessions, "manager-user")
	if _, denial := gate.Authorize(context.Background(), manager, RequirePermission(PermManageUsers)); denial != nil {
		t.Errorf("manager denied manage_users: %+v", denial)
	}
	_, denial := gate.Authorize(context.Background(), manager, RequirePermission(PermAdminAccess))
	if denial == nil || denial.Status != http.StatusForbidden {
		t.Errorf("manager with admin_access: want 403 denial, got %+v", denial)
	}
}

func TestGate_ChecksShortCircuitInOrder(t *testing.T) {
	gate, sessions, _ := testGate(t)
	plain := loginAs(t, sessions, "plain-user")

	secondRan := false
	probe := func(s *Subject) *Denial {
		secondRan = true
		return nil
	}

	_, denial := gate.Authorize(context.Background(), plain, RequireRole(RoleAdmin), probe)
	if denial == nil {
		t.Fatal("expected denial")
	}
	if secondRan {
		t.Error("check after a failing check still ran")
	}
}

func TestGate_ResolverFaultIs500(t *testing.T) {
	gate, sessions, repo := testGate(t)
	token := loginAs(t, sessions, "admin-user")

	repo.failWith = errors.New("db down")
	_, denial := gate.Authorize(context.Background(), token, RequireRole(RoleAdmin))
	if denial == nil || denial.Status != http.StatusInternalServerError {
		t.Errorf("resolver fault: want 500 denial, got %+v", denial)
	}
}

func TestGate_UnauthenticatedBeatsForbidden(t *testing.T) {
	gate, _, _ := testGate(t)
	// A garbage token with checks attached must still yield 401, not 403.
	_, denial := gate.Authorize(context.Background(), "garbage", RequireRole(RoleAdmin))
	if denial == nil || denial.Status != http.StatusUnauthorized {
		t.Errorf("want 401, got %+v", denial)
	}
}
