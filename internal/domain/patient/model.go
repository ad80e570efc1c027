// Package patient implements hospital patient records: the canonical
// nested representation, the normalization and update-merge rules that
// keep the legacy flat fields in sync, role-based permissions, and the
// in-memory query engine over the file-backed collection.
package patient

import (
	"encoding/json"
	"time"
)

// EmergencyContact is the next-of-kin block inside patient details.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// Insurance is the coverage block inside patient details.
type Insurance struct {
	Provider     string `json:"provider"`
	PolicyNumber string `json:"policyNumber"`
	GroupNumber  string `json:"groupNumber"`
}

// Details is the canonical demographic record.
type Details struct {
	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName"`
	DOB              string           `json:"dob"`
	Sex              string           `json:"sex"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email"`
	Address          string           `json:"address"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	Insurance        Insurance        `json:"insurance"`
	RecordStatus     string           `json:"recordStatus"`
	FolderNumber     string           `json:"folderNumber"`
}

// HistoryEntry is one dated item of medical history.
type HistoryEntry struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// VitalReading is one timestamped set of vital signs.
type VitalReading struct {
	Timestamp        string `json:"timestamp"`
	Temperature      string `json:"temperature,omitempty"`
	BloodPressure    string `json:"bloodPressure,omitempty"`
	HeartRate        string `json:"heartRate,omitempty"`
	RespiratoryRate  string `json:"respiratoryRate,omitempty"`
	OxygenSaturation string `json:"oxygenSaturation,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// LabResult is one laboratory test outcome.
type LabResult struct {
	Date   string `json:"date"`
	Test   string `json:"test"`
	Result string `json:"result"`
	Notes  string `json:"notes,omitempty"`
}

// MedicalRecords is the canonical clinical record.
type MedicalRecords struct {
	MedicalHistory  []HistoryEntry `json:"medicalHistory"`
	Allergies       []string       `json:"allergies"`
	Medications     []string       `json:"medications"`
	Vitals          []VitalReading `json:"vitals"`
	Diagnoses       []string       `json:"diagnoses"`
	Treatments      []string       `json:"treatments"`
	LabResults      []LabResult    `json:"labResults"`
	Prescriptions   []string       `json:"prescriptions"`
	PatientStatus   string         `json:"patientStatus"`
	AdmissionStatus string         `json:"admissionStatus"`
}

// Patient is the central entity. The nested patientDetails and
// medicalRecords objects are the source of truth; the top-level flat
// fields are a legacy mirror re-derived on every normalization pass and
// never independently authoritative.
type Patient struct {
	ID             string         `json:"id"`
	PatientDetails Details        `json:"patientDetails"`
	MedicalRecords MedicalRecords `json:"medicalRecords"`

	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName"`
	DOB              string           `json:"dob"`
	Sex              string           `json:"sex"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email"`
	Address          string           `json:"address"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	Insurance        Insurance        `json:"insurance"`
	Status           string           `json:"status"`
	FolderNumber     string           `json:"folderNumber"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// FullName returns the patient's display name.
func (p *Patient) FullName() string {
	return p.PatientDetails.FirstName + " " + p.PatientDetails.LastName
}

// CreatedTime parses createdAt, returning the zero time when unparseable.
func (p *Patient) CreatedTime() time.Time {
	t, _ := time.Parse(time.RFC3339, p.CreatedAt)
	return t
}

// syncMirror re-derives every flat legacy field from the nested form.
func (p *Patient) syncMirror() {
	p.FirstName = p.PatientDetails.FirstName
	p.LastName = p.PatientDetails.LastName
	p.DOB = p.PatientDetails.DOB
	p.Sex = p.PatientDetails.Sex
	p.Phone = p.PatientDetails.Phone
	p.Email = p.PatientDetails.Email
	p.Address = p.PatientDetails.Address
	p.EmergencyContact = p.PatientDetails.EmergencyContact
	p.Insurance = p.PatientDetails.Insurance
	p.Status = p.PatientDetails.RecordStatus
	p.FolderNumber = p.PatientDetails.FolderNumber
}

// ToMap serializes the patient to the generic map form used by the
// merge rules and the file store.
func (p *Patient) ToMap() map[string]interface{} {
	data, err := json.Marshal(p)
	if err != nil {
		return map[string]interface{}{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

// Redacted returns a copy without clinical data, for callers not
// permitted to view medical records.
func (p *Patient) Redacted() *Patient {
	out := *p
	out.MedicalRecords = MedicalRecords{
		MedicalHistory: []HistoryEntry{},
		Allergies:      []string{},
		Medications:    []string{},
		Vitals:         []VitalReading{},
		Diagnoses:      []string{},
		Treatments:     []string{},
		LabResults:     []LabResult{},
		Prescriptions:  []string{},
	}
	return &out
}
