package patient

import "errors"

var ErrNotFound = errors.New("patient not found")

// Repository is the persistence contract for patients.
type Repository interface {
	FindAll() ([]*Patient, error)
	FindByID(id string) (*Patient, error)
	Insert(p *Patient) error
	Update(p *Patient) error
	Delete(id string) error
}
