package patient

import (
	"reflect"
	"testing"
)

func samplePatient() *Patient {
	return Normalize(map[string]interface{}{
		"id":        "p-1",
		"firstName": "Jane",
		"lastName":  "Doe",
		"dob":       "1990-01-01",
		"sex":       "F",
		"phone":     "555-0100",
		"email":     "jane@example.com",
		"address":   "1 Elm St",
		"emergencyContact": map[string]interface{}{
			"name": "John", "phone": "555-0101", "relationship": "spouse",
		},
		"insurance": map[string]interface{}{
			"provider": "Acme", "policyNumber": "P1", "groupNumber": "G1",
		},
		"allergies":   []interface{}{"penicillin"},
		"medications": []interface{}{"aspirin"},
		"createdAt":   "2024-01-01T00:00:00Z",
		"updatedAt":   "2024-01-01T00:00:00Z",
	})
}

func TestApplyUpdateLiftsFlatDetailFields(t *testing.T) {
	existing := samplePatient()

	updated := ApplyUpdate(existing, map[string]interface{}{
		"firstName": "Janet",
		"status":    "Discharged",
	})

	if updated.PatientDetails.FirstName != "Janet" {
		t.Fatalf("firstName not lifted, got %q", updated.PatientDetails.FirstName)
	}
	if updated.PatientDetails.RecordStatus != "Discharged" {
		t.Fatalf("status should rename to recordStatus, got %q", updated.PatientDetails.RecordStatus)
	}
	if updated.PatientDetails.LastName != "Doe" {
		t.Fatalf("untouched detail fields must survive, got %q", updated.PatientDetails.LastName)
	}
	if updated.Status != "Discharged" {
		t.Fatalf("flat mirror should follow, got %q", updated.Status)
	}
	assertMirror(t, updated)
}

func TestApplyUpdateDeepMergesEmergencyContact(t *testing.T) {
	existing := samplePatient()

	updated := ApplyUpdate(existing, map[string]interface{}{
		"emergencyContact": map[string]interface{}{"phone": "555-9999"},
	})

	ec := updated.PatientDetails.EmergencyContact
	if ec.Phone != "555-9999" {
		t.Fatalf("patched sub-field not applied, got %q", ec.Phone)
	}
	if ec.Name != "John" || ec.Relationship != "spouse" {
		t.Fatalf("omitted sub-fields must survive the deep merge, got %+v", ec)
	}
}

func TestApplyUpdateLiftsFlatMedicalFields(t *testing.T) {
	existing := samplePatient()

	updated := ApplyUpdate(existing, map[string]interface{}{
		"diagnoses": []interface{}{"hypertension"},
	})

	if len(updated.MedicalRecords.Diagnoses) != 1 || updated.MedicalRecords.Diagnoses[0] != "hypertension" {
		t.Fatalf("flat medical field not lifted: %+v", updated.MedicalRecords.Diagnoses)
	}
	if len(updated.MedicalRecords.Allergies) != 1 || updated.MedicalRecords.Allergies[0] != "penicillin" {
		t.Fatalf("untouched medical fields must survive: %+v", updated.MedicalRecords.Allergies)
	}
}

func TestApplyUpdateBumpsUpdatedAt(t *testing.T) {
	existing := samplePatient()
	updated := ApplyUpdate(existing, map[string]interface{}{"firstName": "Janet"})

	if updated.UpdatedAt == existing.UpdatedAt {
		t.Fatal("updatedAt should be bumped on merge")
	}
	if updated.CreatedAt != existing.CreatedAt {
		t.Fatal("createdAt must never change on merge")
	}
	if updated.ID != existing.ID {
		t.Fatal("id must never change on merge")
	}
}

func TestApplyDetailsReplacesWholesale(t *testing.T) {
	existing := samplePatient()

	updated := ApplyDetails(existing, map[string]interface{}{
		"firstName": "Only",
		"lastName":  "Name",
	})

	if updated.PatientDetails.FirstName != "Only" || updated.PatientDetails.LastName != "Name" {
		t.Fatalf("details not replaced: %+v", updated.PatientDetails)
	}
	// Wholesale replace: omitted fields fall back to defaults, not old values.
	if updated.PatientDetails.Phone != "" {
		t.Fatalf("wholesale replace should drop omitted phone, got %q", updated.PatientDetails.Phone)
	}
	if updated.PatientDetails.Sex != "M" {
		t.Fatalf("omitted sex should take the default, got %q", updated.PatientDetails.Sex)
	}
	// Clinical data untouched.
	if len(updated.MedicalRecords.Allergies) != 1 {
		t.Fatalf("medical records must survive a details update: %+v", updated.MedicalRecords)
	}
	assertMirror(t, updated)
}

func TestApplyMedicalPreservesUntouchedFields(t *testing.T) {
	existing := samplePatient()

	updated := ApplyMedical(existing, map[string]interface{}{
		"diagnoses": []interface{}{"asthma"},
	})

	if len(updated.MedicalRecords.Diagnoses) != 1 || updated.MedicalRecords.Diagnoses[0] != "asthma" {
		t.Fatalf("patched field not applied: %+v", updated.MedicalRecords.Diagnoses)
	}
	if !reflect.DeepEqual(updated.MedicalRecords.Allergies, existing.MedicalRecords.Allergies) {
		t.Fatalf("allergies must be untouched: %+v", updated.MedicalRecords.Allergies)
	}
	if !reflect.DeepEqual(updated.MedicalRecords.Medications, existing.MedicalRecords.Medications) {
		t.Fatalf("medications must be untouched: %+v", updated.MedicalRecords.Medications)
	}
}

func TestApplyVitalsTouchesOnlyVitals(t *testing.T) {
	existing := samplePatient()

	updated := ApplyVitals(existing, []VitalReading{
		{Timestamp: "2024-03-01T08:00:00Z", Temperature: "37.2", HeartRate: "72"},
	})

	if len(updated.MedicalRecords.Vitals) != 1 || updated.MedicalRecords.Vitals[0].HeartRate != "72" {
		t.Fatalf("vitals not replaced: %+v", updated.MedicalRecords.Vitals)
	}
	if !reflect.DeepEqual(updated.MedicalRecords.Allergies, existing.MedicalRecords.Allergies) {
		t.Fatalf("allergies must be byte-identical after a vitals update: %+v", updated.MedicalRecords.Allergies)
	}
	if !reflect.DeepEqual(updated.MedicalRecords.Medications, existing.MedicalRecords.Medications) {
		t.Fatalf("medications must be byte-identical after a vitals update: %+v", updated.MedicalRecords.Medications)
	}
	if updated.MedicalRecords.PatientStatus != existing.MedicalRecords.PatientStatus {
		t.Fatal("patientStatus must be untouched by a vitals update")
	}
}

func TestApplyStatusTouchesOnlyPatientStatus(t *testing.T) {
	existing := samplePatient()

	updated := ApplyStatus(existing, "Discharged")

	if updated.MedicalRecords.PatientStatus != "Discharged" {
		t.Fatalf("patientStatus not replaced, got %q", updated.MedicalRecords.PatientStatus)
	}
	if updated.MedicalRecords.AdmissionStatus != existing.MedicalRecords.AdmissionStatus {
		t.Fatal("admissionStatus must be untouched by a status update")
	}
	if updated.PatientDetails.RecordStatus != existing.PatientDetails.RecordStatus {
		t.Fatal("recordStatus must be untouched by a status update")
	}
}

func TestApplyUpdateNestedPatchWinsOverLifting(t *testing.T) {
	existing := samplePatient()

	updated := ApplyUpdate(existing, map[string]interface{}{
		"patientDetails": map[string]interface{}{
			"firstName": "Nested",
		},
		"firstName": "Flat",
	})

	// With patientDetails supplied, flat fields are not lifted.
	if updated.PatientDetails.FirstName != "Nested" {
		t.Fatalf("nested patch should win, got %q", updated.PatientDetails.FirstName)
	}
}
