package user

import "errors"

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// Repository is the persistence contract for user accounts.
type Repository interface {
	FindAll() ([]*User, error)
	FindByID(id string) (*User, error)
	FindByEmail(email string) (*User, error)
	Insert(u *User) error
	Update(u *User) error
	Delete(id string) error
}
