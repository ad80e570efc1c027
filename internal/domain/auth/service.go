// Package auth implements credential flows: registration, login with
// forced-password-change handling, and password updates.
package auth

import (
	"errors"
	"strings"

	"github.com/recordspro/api/internal/domain/user"
	platformauth "github.com/recordspro/api/internal/platform/auth"
)

var (
	// ErrInvalidCredentials is returned for unknown emails and bad
	// passwords alike, so login failures do not reveal which part
	// was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWrongPassword is returned when the current password supplied
	// to a password change does not match.
	ErrWrongPassword = errors.New("current password is incorrect")
)

// LoginResult carries the outcome of a successful credential check.
type LoginResult struct {
	Token                  string
	User                   *user.User
	RequiresPasswordChange bool
}

// Service implements the credential flows on top of the user store.
type Service struct {
	users  user.Repository
	tokens *platformauth.TokenManager
}

func NewService(users user.Repository, tokens *platformauth.TokenManager) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates an account and logs it straight in.
func (s *Service) Register(name, email, password, role string) (string, *user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.FindByEmail(email); err == nil {
		return "", nil, user.ErrEmailTaken
	}
	hash, err := user.HashPassword(password)
	if err != nil {
		return "", nil, err
	}
	u := user.New(name, email, hash, role)
	if err := s.users.Insert(u); err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(u.ID, u.Role, platformauth.DefaultTokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, u.Public(), nil
}

// Login checks credentials and issues a token. Accounts flagged for a
// forced password change get a short-lived token good only for the
// change itself.
func (s *Service) Login(email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	ttl := platformauth.DefaultTokenTTL
	if u.ForcePasswordChange {
		ttl = platformauth.TempTokenTTL
	}
	token, err := s.tokens.Issue(u.ID, u.Role, ttl)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:                  token,
		User:                   u.Public(),
		RequiresPasswordChange: u.ForcePasswordChange,
	}, nil
}

// ChangePassword verifies the current password before storing a new
// hash and clearing any temporary-password flags.
func (s *Service) ChangePassword(userID, current, next string) error {
	u, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	hash, err := user.HashPassword(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.IsTemporaryPassword = false
	u.ForcePasswordChange = false
	u.Touch()
	return s.users.Update(u)
}

// ForcePasswordChange completes the forced-change flow: the caller is
// already authenticated with a temporary token, so no current password
// is required. A fresh full-length token is issued.
func (s *Service) ForcePasswordChange(userID, next string) (string, *user.User, error) {
	u, err := s.users.FindByID(userID)
	if err != nil {
		return "", nil, err
	}
	hash, err := user.HashPassword(next)
	if err != nil {
		return "", nil, err
	}
	u.PasswordHash = hash
	u.IsTemporaryPassword = false
	u.ForcePasswordChange = false
	u.Touch()
	if err := s.users.Update(u); err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(u.ID, u.Role, platformauth.DefaultTokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, u.Public(), nil
}
