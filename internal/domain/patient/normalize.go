package patient

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Normalize builds a canonical Patient from arbitrarily shaped input:
// already-nested records, legacy flat records, or a mixture. The nested
// form wins when both are present; missing pieces are synthesized from
// the flat fields with documented defaults, and the flat mirror is
// re-derived at the end. Identity and createdAt are assigned once;
// updatedAt is preserved when present so that normalization of a stored
// record is idempotent. Mutation paths bump updatedAt themselves.
func Normalize(raw map[string]interface{}) *Patient {
	p := &Patient{}
	now := time.Now().UTC().Format(time.RFC3339)

	if nested, ok := raw["patientDetails"].(map[string]interface{}); ok {
		decodeInto(nested, &p.PatientDetails)
	} else {
		p.PatientDetails = detailsFromFlat(raw)
	}
	applyDetailDefaults(&p.PatientDetails, raw, now)
	p.PatientDetails.Email = strings.ToLower(p.PatientDetails.Email)

	if nested, ok := raw["medicalRecords"].(map[string]interface{}); ok {
		decodeInto(nested, &p.MedicalRecords)
	} else {
		p.MedicalRecords = medicalFromFlat(raw)
	}
	applyMedicalDefaults(&p.MedicalRecords)

	p.ID = stringField(raw, "id")
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = stringField(raw, "createdAt")
	if p.CreatedAt == "" {
		p.CreatedAt = now
	}
	p.UpdatedAt = stringField(raw, "updatedAt")
	if p.UpdatedAt == "" {
		p.UpdatedAt = now
	}

	p.syncMirror()
	return p
}

// detailsFromFlat synthesizes the nested details block from legacy
// top-level fields.
func detailsFromFlat(raw map[string]interface{}) Details {
	d := Details{
		FirstName:    stringField(raw, "firstName"),
		LastName:     stringField(raw, "lastName"),
		DOB:          stringField(raw, "dob"),
		Sex:          stringField(raw, "sex"),
		Phone:        stringField(raw, "phone"),
		Email:        stringField(raw, "email"),
		Address:      stringField(raw, "address"),
		RecordStatus: stringField(raw, "recordStatus"),
		FolderNumber: stringField(raw, "folderNumber"),
	}
	if ec, ok := raw["emergencyContact"].(map[string]interface{}); ok {
		decodeInto(ec, &d.EmergencyContact)
	}
	if ins, ok := raw["insurance"].(map[string]interface{}); ok {
		decodeInto(ins, &d.Insurance)
	}
	return d
}

// medicalFromFlat synthesizes the nested clinical block from legacy
// top-level fields.
func medicalFromFlat(raw map[string]interface{}) MedicalRecords {
	m := MedicalRecords{
		PatientStatus:   stringField(raw, "patientStatus"),
		AdmissionStatus: stringField(raw, "admissionStatus"),
	}
	decodeField(raw, "medicalHistory", &m.MedicalHistory)
	decodeField(raw, "allergies", &m.Allergies)
	decodeField(raw, "medications", &m.Medications)
	decodeField(raw, "vitals", &m.Vitals)
	decodeField(raw, "diagnoses", &m.Diagnoses)
	decodeField(raw, "treatments", &m.Treatments)
	decodeField(raw, "labResults", &m.LabResults)
	decodeField(raw, "prescriptions", &m.Prescriptions)
	return m
}

func applyDetailDefaults(d *Details, raw map[string]interface{}, now string) {
	if d.Sex == "" {
		d.Sex = "M"
	}
	if d.DOB == "" {
		d.DOB = now
	}
	if d.RecordStatus == "" {
		if s := stringField(raw, "status"); s != "" {
			d.RecordStatus = s
		} else {
			d.RecordStatus = "Active"
		}
	}
}

func applyMedicalDefaults(m *MedicalRecords) {
	if m.PatientStatus == "" {
		m.PatientStatus = "Admitted"
	}
	if m.AdmissionStatus == "" {
		m.AdmissionStatus = "Admitted"
	}
	if m.MedicalHistory == nil {
		m.MedicalHistory = []HistoryEntry{}
	}
	if m.Allergies == nil {
		m.Allergies = []string{}
	}
	if m.Medications == nil {
		m.Medications = []string{}
	}
	if m.Vitals == nil {
		m.Vitals = []VitalReading{}
	}
	if m.Diagnoses == nil {
		m.Diagnoses = []string{}
	}
	if m.Treatments == nil {
		m.Treatments = []string{}
	}
	if m.LabResults == nil {
		m.LabResults = []LabResult{}
	}
	if m.Prescriptions == nil {
		m.Prescriptions = []string{}
	}
}

func stringField(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return s
}

// decodeInto converts a generic JSON value into a typed target,
// dropping unknown keys at the normalization boundary.
func decodeInto(src interface{}, target interface{}) {
	data, err := json.Marshal(src)
	if err != nil {
		return
	}
	_ = json.Unmarshal(data, target)
}

func decodeField(raw map[string]interface{}, key string, target interface{}) {
	if v, ok := raw[key]; ok && v != nil {
		decodeInto(v, target)
	}
}
