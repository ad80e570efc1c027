package patient

import (
	"errors"
	"strings"
	"testing"
)

var allRoles = []string{"admin", "doctor", "nurse", "clerk"}

func TestRoleTable(t *testing.T) {
	cases := []struct {
		name    string
		check   func(role string) bool
		allowed map[string]bool
	}{
		{"create", CanCreate, map[string]bool{"clerk": true}},
		{"manage details", CanManageDetails, map[string]bool{"clerk": true, "doctor": true, "nurse": true}},
		{"manage medical records", CanManageMedicalRecords, map[string]bool{"doctor": true}},
		{"manage vital signs", CanManageVitalSigns, map[string]bool{"admin": true, "doctor": true, "nurse": true}},
		{"manage patient status", CanManagePatientStatus, map[string]bool{"admin": true, "doctor": true}},
		{"view medical records", CanViewMedicalRecords, map[string]bool{"admin": true, "doctor": true, "nurse": true}},
		{"delete", CanDelete, map[string]bool{"admin": true}},
	}

	for _, tc := range cases {
		for _, role := range allRoles {
			if got := tc.check(role); got != tc.allowed[role] {
				t.Errorf("%s: role %s: got %v, want %v", tc.name, role, got, tc.allowed[role])
			}
		}
	}
}

func TestCheckFullUpdateClerkAlwaysAllowed(t *testing.T) {
	patch := map[string]interface{}{
		"firstName":      "X",
		"medicalRecords": map[string]interface{}{},
	}
	if err := CheckFullUpdate("clerk", patch); err != nil {
		t.Fatalf("clerk full update should pass, got %v", err)
	}
}

func TestCheckFullUpdateAdminCannotTouchDetails(t *testing.T) {
	err := CheckFullUpdate("admin", map[string]interface{}{"firstName": "X"})
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("admin touching details should be rejected, got %v", err)
	}
}

func TestCheckFullUpdateNurseCannotTouchMedical(t *testing.T) {
	err := CheckFullUpdate("nurse", map[string]interface{}{"diagnoses": []interface{}{"x"}})
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("nurse touching medical fields in full update should be rejected, got %v", err)
	}
}

func TestCheckFullUpdateDoctorFullAccess(t *testing.T) {
	patch := map[string]interface{}{
		"firstName": "X",
		"diagnoses": []interface{}{"flu"},
	}
	if err := CheckFullUpdate("doctor", patch); err != nil {
		t.Fatalf("doctor full update should pass, got %v", err)
	}
}

func TestCheckMedicalUpdateNurseAllowedFields(t *testing.T) {
	fields := map[string]interface{}{
		"vitals":          []interface{}{},
		"admissionStatus": "Admitted",
	}
	if err := CheckMedicalUpdate("nurse", fields); err != nil {
		t.Fatalf("nurse vitals/admissionStatus update should pass, got %v", err)
	}
}

func TestCheckMedicalUpdateNurseOffendingFieldsNamed(t *testing.T) {
	fields := map[string]interface{}{
		"vitals":    []interface{}{},
		"diagnoses": []interface{}{"x"},
		"allergies": []interface{}{"y"},
	}

	err := CheckMedicalUpdate("nurse", fields)
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
	if len(permErr.Fields) != 2 {
		t.Fatalf("expected 2 offending fields, got %v", permErr.Fields)
	}
	if !strings.Contains(permErr.Message, "allergies") || !strings.Contains(permErr.Message, "diagnoses") {
		t.Fatalf("message should name the offending fields, got %q", permErr.Message)
	}
	if strings.Contains(permErr.Message, "vitals") {
		t.Fatalf("message should not name permitted fields, got %q", permErr.Message)
	}
}

func TestCheckMedicalUpdateClerkRejected(t *testing.T) {
	err := CheckMedicalUpdate("clerk", map[string]interface{}{"vitals": []interface{}{}})
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("clerk medical update should be rejected, got %v", err)
	}
}

func TestNarrowGates(t *testing.T) {
	if err := CheckVitalsUpdate("clerk"); err == nil {
		t.Error("clerk vitals update should be rejected")
	}
	if err := CheckVitalsUpdate("nurse"); err != nil {
		t.Errorf("nurse vitals update should pass, got %v", err)
	}
	if err := CheckStatusUpdate("nurse"); err == nil {
		t.Error("nurse status update should be rejected")
	}
	if err := CheckStatusUpdate("admin"); err != nil {
		t.Errorf("admin status update should pass, got %v", err)
	}
	if err := CheckDelete("doctor"); err == nil {
		t.Error("doctor delete should be rejected")
	}
	if err := CheckDelete("admin"); err != nil {
		t.Errorf("admin delete should pass, got %v", err)
	}
	if err := CheckCreate("admin"); err == nil {
		t.Error("admin create should be rejected; creation is clerk-only")
	}
	if err := CheckCreate("clerk"); err != nil {
		t.Errorf("clerk create should pass, got %v", err)
	}
}
