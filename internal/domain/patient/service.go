package patient

import (
	"github.com/recordspro/api/pkg/pagination"
)

// Notifier receives post-mutation events, fire-and-forget.
type Notifier interface {
	Notify(event string, payload interface{})
}

// Service implements the role-gated patient operations. Every write
// checks permissions, merges through the canonical normalization
// boundary, persists the full collection, and emits a change event.
type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) notify(event string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Notify(event, payload)
	}
}

// List returns one page of patients matching the search term.
func (s *Service) List(search string, p pagination.Params) (QueryResult, error) {
	all, err := s.repo.FindAll()
	if err != nil {
		return QueryResult{}, err
	}
	return Query(all, search, p), nil
}

// Get returns a single patient by ID.
func (s *Service) Get(id string) (*Patient, error) {
	return s.repo.FindByID(id)
}

// Create builds a canonical patient from the payload and persists it.
// Only clerks may create records.
func (s *Service) Create(role string, payload map[string]interface{}) (*Patient, error) {
	if err := CheckCreate(role); err != nil {
		return nil, err
	}

	p := Normalize(payload)
	if err := s.repo.Insert(p); err != nil {
		return nil, err
	}

	s.notify("patient:created", p)
	return p, nil
}

// Update applies a full-update patch, lifting flat legacy fields into
// the nested form.
func (s *Service) Update(role, id string, patch map[string]interface{}) (*Patient, error) {
	if err := CheckFullUpdate(role, patch); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	updated := ApplyUpdate(existing, patch)
	if err := s.repo.Update(updated); err != nil {
		return nil, err
	}

	s.notify("patient:updated", updated)
	return updated, nil
}

// UpdateDetails replaces patientDetails wholesale.
func (s *Service) UpdateDetails(role, id string, details map[string]interface{}) (*Patient, error) {
	if err := CheckDetailsUpdate(role); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	updated := ApplyDetails(existing, details)
	if err := s.repo.Update(updated); err != nil {
		return nil, err
	}

	s.notify("patient:updated", updated)
	return updated, nil
}

// UpdateMedical merges clinical fields onto medicalRecords. Nurses are
// limited to vitals and admission status.
func (s *Service) UpdateMedical(role, id string, fields map[string]interface{}) (*Patient, error) {
	if err := CheckMedicalUpdate(role, fields); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	updated := ApplyMedical(existing, fields)
	if err := s.repo.Update(updated); err != nil {
		return nil, err
	}

	s.notify("patient:medical-updated", updated)
	return updated, nil
}

// UpdateVitals replaces only medicalRecords.vitals.
func (s *Service) UpdateVitals(role, id string, vitals []VitalReading) (*Patient, error) {
	if err := CheckVitalsUpdate(role); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	updated := ApplyVitals(existing, vitals)
	if err := s.repo.Update(updated); err != nil {
		return nil, err
	}

	s.notify("patient:vitals-updated", updated)
	return updated, nil
}

// UpdateStatus replaces only medicalRecords.patientStatus.
func (s *Service) UpdateStatus(role, id, status string) (*Patient, error) {
	if err := CheckStatusUpdate(role); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	updated := ApplyStatus(existing, status)
	if err := s.repo.Update(updated); err != nil {
		return nil, err
	}

	s.notify("patient:status-updated", updated)
	return updated, nil
}

// Delete removes a patient permanently. Admin only.
func (s *Service) Delete(role, id string) error {
	if err := CheckDelete(role); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.notify("patient:deleted", map[string]string{"id": id})
	return nil
}
