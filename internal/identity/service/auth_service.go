// Package service implements authentication: credential verification, session
// issuance, logout, and registration.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"member-portal/internal/security"
	"member-portal/internal/session"
	userdomain "member-portal/internal/user/domain"
)

// Sentinel errors for the auth service; handlers map them to HTTP statuses.
// ErrInvalidCredentials carries the only message ever shown for a failed
// login, whatever the underlying reason.
var (
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrUsernameAlreadyTaken   = errors.New("username already taken")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
)

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// AuthService implements password login, registration, and logout-everywhere.
type AuthService struct {
	userRepo UserRepo
	verifier *security.Verifier
	hasher   *security.Hasher
	sessions *session.Manager
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(userRepo UserRepo, verifier *security.Verifier, hasher *security.Hasher, sessions *session.Manager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		verifier: verifier,
		hasher:   hasher,
		sessions: sessions,
	}
}

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *userdomain.User
}

// Login verifies the credentials and issues a session token. The identifier
// may be a username or an email address. Unknown identifier and wrong
// password both return ErrInvalidCredentials; the verifier is invoked either
// way so the two cases cost the same.
func (s *AuthService) Login(ctx context.Context, identifier, password string, client session.ClientContext) (*LoginResult, error) {
	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	var storedHash string
	if user != nil {
		storedHash = user.PasswordHash
	}

	// Runs against a dummy hash when the user is unknown.
	matched := s.verifier.Verify(password, storedHash)
	if user == nil || !matched {
		return nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(session.Identity{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, client)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.sessions.Timeout()),
		User:      user,
	}, nil
}

// findByIdentifier resolves a login identifier to a user. Identifiers with an
// "@" are emails, matching the registration rule that usernames never contain
// one. Returns (nil, nil) for unknown identifiers.
func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*userdomain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	}
	return s.userRepo.GetByUsername(ctx, identifier)
}

// Register creates a user with the given credentials and returns it.
func (s *AuthService) Register(ctx context.Context, username, email, password, displayName string) (*userdomain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameAlreadyTaken
	}
	existing, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LogoutEverywhere revokes all sessions issued before now.
func (s *AuthService) LogoutEverywhere() {
	s.sessions.LogoutEverywhere()
}

func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 64 {
		return errors.New("username must be between 3 and 64 characters")
	}
	const pattern = `^[a-zA-Z0-9._-]+$`
	ok, _ := regexp.MatchString(pattern, username)
	if !ok {
		return errors.New("username may contain letters, digits, dot, underscore, and hyphen")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
