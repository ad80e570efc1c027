package patient

import (
	"github.com/rs/zerolog"

	"github.com/recordspro/api/internal/platform/store"
)

// FileRepository persists patients in a single JSON array file. Every
// record read from disk passes through Normalize, so older flat-only
// records are upgraded to the canonical shape on load. Writes rewrite
// the whole file; concurrent writers race and the last save wins.
type FileRepository struct {
	coll *store.Collection[map[string]interface{}]
}

// NewFileRepository binds a repository to the given file path.
func NewFileRepository(path string, logger zerolog.Logger) *FileRepository {
	return &FileRepository{
		coll: store.NewCollection[map[string]interface{}](path, logger),
	}
}

func (r *FileRepository) load() []*Patient {
	raws := r.coll.Load(nil)
	patients := make([]*Patient, 0, len(raws))
	for _, raw := range raws {
		patients = append(patients, Normalize(raw))
	}
	return patients
}

func (r *FileRepository) save(patients []*Patient) error {
	raws := make([]map[string]interface{}, 0, len(patients))
	for _, p := range patients {
		raws = append(raws, p.ToMap())
	}
	return r.coll.SaveAll(raws)
}

func (r *FileRepository) FindAll() ([]*Patient, error) {
	return r.load(), nil
}

func (r *FileRepository) FindByID(id string) (*Patient, error) {
	for _, p := range r.load() {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *FileRepository) Insert(p *Patient) error {
	patients := r.load()
	patients = append(patients, p)
	return r.save(patients)
}

func (r *FileRepository) Update(p *Patient) error {
	patients := r.load()
	for i, existing := range patients {
		if existing.ID == p.ID {
			patients[i] = p
			return r.save(patients)
		}
	}
	return ErrNotFound
}

func (r *FileRepository) Delete(id string) error {
	patients := r.load()
	for i, existing := range patients {
		if existing.ID == id {
			patients = append(patients[:i], patients[i+1:]...)
			return r.save(patients)
		}
	}
	return ErrNotFound
}
