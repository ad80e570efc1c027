package main

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/recordspro/api/internal/domain/user"
)

func TestSeedDemoUsersIdempotent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)

	if err := seedDemoUsers(); err != nil {
		t.Fatalf("seedDemoUsers: %v", err)
	}
	// A second run must skip existing accounts rather than duplicate
	// or overwrite them.
	if err := seedDemoUsers(); err != nil {
		t.Fatalf("second seedDemoUsers: %v", err)
	}

	repo := user.NewFileRepository(filepath.Join(dir, "users.json"), zerolog.Nop())
	all, err := repo.FindAll()
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	// The default admin seed already owns admin@hospital.com, so the
	// demo admin is skipped: seed plus doctor, nurse and clerk.
	if len(all) != 4 {
		t.Fatalf("expected 4 accounts, got %d", len(all))
	}

	doctor, err := repo.FindByEmail("doctor@hospital.com")
	if err != nil {
		t.Fatalf("demo doctor missing: %v", err)
	}
	if doctor.Role != user.RoleDoctor {
		t.Fatalf("unexpected role: %q", doctor.Role)
	}
	if !user.CheckPassword(doctor.PasswordHash, "doctor123") {
		t.Fatal("demo password should verify")
	}
}
