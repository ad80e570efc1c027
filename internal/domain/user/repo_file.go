package user

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/recordspro/api/internal/platform/store"
)

// Bcrypt hash of the default administrator password. The account is
// seeded on first start so a fresh install is never locked out.
const defaultAdminHash = "$2a$10$EU1J7R0X5tN9VfACxuMUl./CpM7RG3VOVPc8RFtCMX0ga9gVceHHG"

// DefaultAdmin returns the administrator account seeded into an empty
// user store, timestamped at seed time like any other account.
func DefaultAdmin() *User {
	now := time.Now().UTC().Format(time.RFC3339)
	return &User{
		ID:           "admin_default",
		Name:         "System Administrator",
		Email:        "admin@hospital.com",
		PasswordHash: defaultAdminHash,
		Role:         RoleAdmin,
		Phone:        "1234567890",
		Department:   "IT Administration",
		Settings:     DefaultSettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// FileRepository persists users as a JSON document on disk.
type FileRepository struct {
	col *store.Collection[*User]
}

// NewFileRepository opens the user store at path, seeding the default
// administrator when the file does not exist yet.
func NewFileRepository(path string, logger zerolog.Logger) *FileRepository {
	return &FileRepository{col: store.NewCollection[*User](path, logger)}
}

func (r *FileRepository) load() []*User {
	return r.col.Load([]*User{DefaultAdmin()})
}

// FindAll returns every account.
func (r *FileRepository) FindAll() ([]*User, error) {
	return r.load(), nil
}

// FindByID returns the account with the given id.
func (r *FileRepository) FindByID(id string) (*User, error) {
	for _, u := range r.load() {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

// FindByEmail returns the account with the given email. Matching is
// case-insensitive since emails are stored lowercased.
func (r *FileRepository) FindByEmail(email string) (*User, error) {
	email = strings.ToLower(email)
	for _, u := range r.load() {
		if strings.ToLower(u.Email) == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

// Insert appends a new account and rewrites the store.
func (r *FileRepository) Insert(u *User) error {
	users := r.load()
	users = append(users, u)
	return r.col.SaveAll(users)
}

// Update replaces the account with the same id.
func (r *FileRepository) Update(u *User) error {
	users := r.load()
	for i, existing := range users {
		if existing.ID == u.ID {
			users[i] = u
			return r.col.SaveAll(users)
		}
	}
	return ErrNotFound
}

// Delete removes the account with the given id.
func (r *FileRepository) Delete(id string) error {
	users := r.load()
	for i, existing := range users {
		if existing.ID == id {
			users = append(users[:i], users[i+1:]...)
			return r.col.SaveAll(users)
		}
	}
	return ErrNotFound
}
