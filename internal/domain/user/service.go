package user

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmailTaken is returned when an account already exists for the
// requested email address.
var ErrEmailTaken = errors.New("email already in use")

// Notifier receives change events for broadcast to connected clients.
type Notifier interface {
	Notify(event string, payload interface{})
}

// Service implements account management on top of a Repository.
type Service struct {
	repo     Repository
	notifier Notifier
}

// NewService builds a Service. notifier may be nil.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) notify(event string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Notify(event, payload)
	}
}

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// List returns every account with password hashes stripped.
func (s *Service) List() ([]*User, error) {
	users, err := s.repo.FindAll()
	if err != nil {
		return nil, err
	}
	out := make([]*User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// Get returns a single account with the password hash stripped.
func (s *Service) Get(id string) (*User, error) {
	u, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

// Create registers a new account. The email is lowercased and must be
// unique.
func (s *Service) Create(name, email, password, role string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.repo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := New(name, email, hash, role)
	if err := s.repo.Insert(u); err != nil {
		return nil, err
	}
	s.notify("user:created", u.Public())
	return u.Public(), nil
}

// AdminUpdate lets an administrator change an account's name, email and
// role. Empty fields are left untouched.
func (s *Service) AdminUpdate(id, name, email, role string) (*User, error) {
	u, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = strings.ToLower(email)
	}
	if role != "" {
		u.Role = role
	}
	u.Touch()
	if err := s.repo.Update(u); err != nil {
		return nil, err
	}
	s.notify("user:updated", u.Public())
	return u.Public(), nil
}

// UpdateProfile lets a user change their own contact details.
func (s *Service) UpdateProfile(id, name, email, phone, department string) (*User, error) {
	u, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = strings.ToLower(email)
	}
	if phone != "" {
		u.Phone = phone
	}
	if department != "" {
		u.Department = department
	}
	u.Touch()
	if err := s.repo.Update(u); err != nil {
		return nil, err
	}
	return u.Public(), nil
}

// UpdateSettings merges the patch into the user's settings. Groups
// present in the patch replace the stored group wholesale.
func (s *Service) UpdateSettings(id string, patch map[string]interface{}) (Settings, error) {
	u, err := s.repo.FindByID(id)
	if err != nil {
		return Settings{}, err
	}
	u.MergeSettings(patch)
	u.Touch()
	if err := s.repo.Update(u); err != nil {
		return Settings{}, err
	}
	return u.Settings, nil
}

// ResetPassword assigns a generated temporary password and flags the
// account so the next login forces a change. The plaintext temporary
// password is returned for relay to the user.
func (s *Service) ResetPassword(id string) (*User, string, error) {
	u, err := s.repo.FindByID(id)
	if err != nil {
		return nil, "", err
	}
	temp := strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
	hash, err := HashPassword(temp)
	if err != nil {
		return nil, "", err
	}
	u.PasswordHash = hash
	u.IsTemporaryPassword = true
	u.ForcePasswordChange = true
	u.Touch()
	if err := s.repo.Update(u); err != nil {
		return nil, "", err
	}
	s.notify("user:updated", u.Public())
	return u.Public(), temp, nil
}

// Delete removes an account, returning the removed record.
func (s *Service) Delete(id string) (*User, error) {
	u, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(id); err != nil {
		return nil, err
	}
	s.notify("user:deleted", map[string]interface{}{"id": id})
	return u.Public(), nil
}
