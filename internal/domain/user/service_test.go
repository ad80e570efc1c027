package user

import (
	"errors"
	"strings"
	"testing"
)

type memoryRepo struct {
	users []*User
}

func (r *memoryRepo) FindAll() ([]*User, error) {
	return r.users, nil
}

func (r *memoryRepo) FindByID(id string) (*User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) FindByEmail(email string) (*User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) Insert(u *User) error {
	r.users = append(r.users, u)
	return nil
}

func (r *memoryRepo) Update(u *User) error {
	for i, existing := range r.users {
		if existing.ID == u.ID {
			r.users[i] = u
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepo) Delete(id string) error {
	for i, existing := range r.users {
		if existing.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func newTestService() (*Service, *memoryRepo) {
	repo := &memoryRepo{}
	return NewService(repo, nil), repo
}

func TestServiceCreateDefaults(t *testing.T) {
	svc, repo := newTestService()

	u, err := svc.Create("Ada Park", "Ada@Hospital.com", "s3cret", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "ada@hospital.com" {
		t.Fatalf("email should be lowercased, got %q", u.Email)
	}
	if u.Role != RoleClerk {
		t.Fatalf("missing role should default to clerk, got %q", u.Role)
	}
	if u.PasswordHash != "" {
		t.Fatal("Create must not expose the password hash")
	}
	if !u.Settings.Notifications.EmailNotifications {
		t.Fatalf("default settings not applied: %+v", u.Settings)
	}

	stored := repo.users[0]
	if stored.PasswordHash == "" || stored.PasswordHash == "s3cret" {
		t.Fatal("stored password must be hashed")
	}
	if !CheckPassword(stored.PasswordHash, "s3cret") {
		t.Fatal("stored hash should verify against the plaintext")
	}
}

func TestServiceCreateDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create("A", "a@x.com", "pw", RoleDoctor); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create("B", "A@X.COM", "pw", RoleNurse); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for case-variant duplicate, got %v", err)
	}
}

func TestServiceAdminUpdate(t *testing.T) {
	svc, repo := newTestService()
	repo.users = append(repo.users, New("Old Name", "old@x.com", "hash", RoleClerk))
	id := repo.users[0].ID

	u, err := svc.AdminUpdate(id, "New Name", "New@X.com", RoleNurse)
	if err != nil {
		t.Fatalf("AdminUpdate: %v", err)
	}
	if u.Name != "New Name" || u.Email != "new@x.com" || u.Role != RoleNurse {
		t.Fatalf("update not applied: %+v", u)
	}

	// Empty fields leave the stored values alone.
	u, err = svc.AdminUpdate(id, "", "", "")
	if err != nil {
		t.Fatalf("AdminUpdate: %v", err)
	}
	if u.Name != "New Name" || u.Role != RoleNurse {
		t.Fatalf("empty patch must not clear fields: %+v", u)
	}
}

func TestServiceUpdateSettingsGroupMerge(t *testing.T) {
	svc, repo := newTestService()
	repo.users = append(repo.users, New("A", "a@x.com", "hash", RoleDoctor))
	id := repo.users[0].ID

	settings, err := svc.UpdateSettings(id, map[string]interface{}{
		"system": map[string]interface{}{
			"theme":      "dark",
			"language":   "en",
			"timezone":   "UTC",
			"dateFormat": "MM/dd/yyyy",
		},
	})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if settings.System.Theme != "dark" {
		t.Fatalf("system group not replaced: %+v", settings.System)
	}
	if !settings.Notifications.PatientUpdates {
		t.Fatalf("untouched groups must keep defaults: %+v", settings.Notifications)
	}
}

func TestServiceResetPassword(t *testing.T) {
	svc, repo := newTestService()
	repo.users = append(repo.users, New("A", "a@x.com", "hash", RoleDoctor))
	id := repo.users[0].ID

	u, temp, err := svc.ResetPassword(id)
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if temp == "" {
		t.Fatal("temporary password must be returned")
	}
	if !u.IsTemporaryPassword || !u.ForcePasswordChange {
		t.Fatalf("reset must flag the account: %+v", u)
	}
	if !CheckPassword(repo.users[0].PasswordHash, temp) {
		t.Fatal("stored hash should verify against the temporary password")
	}
}

func TestServiceDeleteReturnsUser(t *testing.T) {
	svc, repo := newTestService()
	repo.users = append(repo.users, New("A", "a@x.com", "hash", RoleDoctor))
	id := repo.users[0].ID

	u, err := svc.Delete(id)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if u.Name != "A" {
		t.Fatalf("deleted record should be returned: %+v", u)
	}
	if len(repo.users) != 0 {
		t.Fatal("user should be removed")
	}
	if _, err := svc.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestDefaultAdminSeed(t *testing.T) {
	admin := DefaultAdmin()
	if admin.ID != "admin_default" || admin.Role != RoleAdmin {
		t.Fatalf("unexpected seed account: %+v", admin)
	}
	if admin.Email != "admin@hospital.com" {
		t.Fatalf("unexpected seed email: %q", admin.Email)
	}
	if admin.PasswordHash == "" {
		t.Fatal("seed account must carry a password hash")
	}
	if admin.CreatedAt == "" || admin.UpdatedAt == "" {
		t.Fatal("seed account must be timestamped")
	}
	if admin.CreatedTime().IsZero() {
		t.Fatalf("seed createdAt should parse: %q", admin.CreatedAt)
	}
}
