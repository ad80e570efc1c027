package patient

import "time"

// detailFieldNames are the legacy flat spellings of patient-detail
// fields recognized during update lifting. The legacy "status" key is
// handled separately: it renames to recordStatus.
var detailFieldNames = []string{
	"firstName", "lastName", "dob", "sex", "phone", "email", "address",
	"emergencyContact", "insurance", "recordStatus", "folderNumber",
}

// medicalFieldNames are the legacy flat spellings of clinical fields
// recognized during update lifting.
var medicalFieldNames = []string{
	"medicalHistory", "allergies", "medications", "vitals", "diagnoses",
	"treatments", "labResults", "prescriptions", "patientStatus", "admissionStatus",
}

// ApplyUpdate merges a full-update patch onto an existing patient.
// Flat detail fields in the patch are lifted into a patientDetails
// patch merged onto the existing details, with deep merge for the
// emergencyContact and insurance sub-objects and the status to
// recordStatus rename. Flat clinical fields are lifted into a
// medicalRecords patch the same way. A patch that already carries the
// nested object supplies it wholesale. The result passes back through
// Normalize so the flat mirror is re-derived, and updatedAt is bumped.
func ApplyUpdate(existing *Patient, patch map[string]interface{}) *Patient {
	processed := make(map[string]interface{}, len(patch))
	for k, v := range patch {
		processed[k] = v
	}

	liftDetailFields(existing, processed)
	liftMedicalFields(existing, processed)

	merged := existing.ToMap()
	for k, v := range processed {
		merged[k] = v
	}
	merged["updatedAt"] = time.Now().UTC().Format(time.RFC3339)

	return Normalize(merged)
}

// liftDetailFields moves flat detail fields into a synthesized
// patientDetails patch based on the existing record. No-op when the
// patch already supplies patientDetails.
func liftDetailFields(existing *Patient, patch map[string]interface{}) {
	if _, ok := patch["patientDetails"]; ok {
		return
	}

	_, hasStatus := patch["status"]
	if !hasStatus && !hasAnyField(patch, detailFieldNames) {
		return
	}

	details := existing.ToMap()["patientDetails"].(map[string]interface{})

	for _, field := range detailFieldNames {
		v, ok := patch[field]
		if !ok {
			continue
		}
		if field == "emergencyContact" || field == "insurance" {
			details[field] = mergeShallow(details[field], v)
		} else {
			details[field] = v
		}
		delete(patch, field)
	}

	if hasStatus {
		details["recordStatus"] = patch["status"]
		delete(patch, "status")
	}

	patch["patientDetails"] = details
}

// liftMedicalFields moves flat clinical fields into a synthesized
// medicalRecords patch based on the existing record. No-op when the
// patch already supplies medicalRecords.
func liftMedicalFields(existing *Patient, patch map[string]interface{}) {
	if _, ok := patch["medicalRecords"]; ok {
		return
	}
	if !hasAnyField(patch, medicalFieldNames) {
		return
	}

	records := existing.ToMap()["medicalRecords"].(map[string]interface{})

	for _, field := range medicalFieldNames {
		if v, ok := patch[field]; ok {
			records[field] = v
			delete(patch, field)
		}
	}

	patch["medicalRecords"] = records
}

// ApplyDetails replaces patientDetails wholesale with the given body.
func ApplyDetails(existing *Patient, details map[string]interface{}) *Patient {
	return ApplyUpdate(existing, map[string]interface{}{"patientDetails": details})
}

// ApplyMedical merges the given fields onto the existing
// medicalRecords, preserving fields absent from the patch.
func ApplyMedical(existing *Patient, fields map[string]interface{}) *Patient {
	records := existing.ToMap()["medicalRecords"].(map[string]interface{})
	for k, v := range fields {
		records[k] = v
	}
	return ApplyUpdate(existing, map[string]interface{}{"medicalRecords": records})
}

// ApplyVitals replaces only medicalRecords.vitals.
func ApplyVitals(existing *Patient, vitals interface{}) *Patient {
	return ApplyMedical(existing, map[string]interface{}{"vitals": vitals})
}

// ApplyStatus replaces only medicalRecords.patientStatus.
func ApplyStatus(existing *Patient, status string) *Patient {
	return ApplyMedical(existing, map[string]interface{}{"patientStatus": status})
}

func hasAnyField(patch map[string]interface{}, fields []string) bool {
	for _, f := range fields {
		if _, ok := patch[f]; ok {
			return true
		}
	}
	return false
}

// mergeShallow overlays patch keys onto a base object, keeping base
// keys the patch omits. Non-object operands fall back to the patch.
func mergeShallow(base, patch interface{}) interface{} {
	baseMap, bok := base.(map[string]interface{})
	patchMap, pok := patch.(map[string]interface{})
	if !bok || !pok {
		return patch
	}
	out := make(map[string]interface{}, len(baseMap)+len(patchMap))
	for k, v := range baseMap {
		out[k] = v
	}
	for k, v := range patchMap {
		out[k] = v
	}
	return out
}
