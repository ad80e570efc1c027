package patient

import (
	"fmt"
	"sort"
	"strings"
)

// PermissionError reports a role/operation mismatch. For the nurse
// medical-records case it names the offending fields.
type PermissionError struct {
	Message string
	Fields  []string
}

func (e *PermissionError) Error() string {
	return e.Message
}

// NurseAllowedMedicalFields are the only clinical fields a nurse may
// touch through the medical-records update.
var NurseAllowedMedicalFields = []string{"vitals", "admissionStatus"}

func CanCreate(role string) bool {
	return role == "clerk"
}

func CanManageDetails(role string) bool {
	return role == "clerk" || role == "doctor" || role == "nurse"
}

func CanManageMedicalRecords(role string) bool {
	return role == "doctor"
}

func CanManageVitalSigns(role string) bool {
	return role == "admin" || role == "doctor" || role == "nurse"
}

func CanManagePatientStatus(role string) bool {
	return role == "admin" || role == "doctor"
}

func CanViewMedicalRecords(role string) bool {
	return role == "admin" || role == "doctor" || role == "nurse"
}

func CanDelete(role string) bool {
	return role == "admin"
}

// CheckCreate gates patient creation.
func CheckCreate(role string) error {
	if !CanCreate(role) {
		return &PermissionError{Message: "Only clerks can create patient records"}
	}
	return nil
}

// CheckFullUpdate gates the full-update operation by inspecting which
// field groups the patch touches. Clerks manage patient details and may
// send a full payload; other roles are checked per group.
func CheckFullUpdate(role string, patch map[string]interface{}) error {
	if role == "clerk" {
		return nil
	}

	_, hasDetails := patch["patientDetails"]
	_, hasStatus := patch["status"]
	touchesDetails := hasDetails || hasStatus || hasAnyField(patch, detailFieldNames)
	if touchesDetails && !CanManageDetails(role) {
		return &PermissionError{Message: "You do not have permission to update patient details"}
	}

	_, hasMedical := patch["medicalRecords"]
	touchesMedical := hasMedical || hasAnyField(patch, medicalFieldNames)
	if touchesMedical && !CanManageMedicalRecords(role) {
		return &PermissionError{Message: "Only doctors can update medical records"}
	}

	return nil
}

// CheckDetailsUpdate gates the narrow details operation.
func CheckDetailsUpdate(role string) error {
	if !CanManageDetails(role) {
		return &PermissionError{Message: "You do not have permission to update patient details"}
	}
	return nil
}

// CheckMedicalUpdate gates the narrow medical-records operation.
// Doctors have full access; nurses are limited to vitals and admission
// status and the rejection names every field outside that set.
func CheckMedicalUpdate(role string, fields map[string]interface{}) error {
	if !CanManageMedicalRecords(role) && !CanManageVitalSigns(role) {
		return &PermissionError{Message: "You do not have permission to update medical records"}
	}

	if role == "nurse" {
		allowed := make(map[string]bool, len(NurseAllowedMedicalFields))
		for _, f := range NurseAllowedMedicalFields {
			allowed[f] = true
		}
		var unauthorized []string
		for f := range fields {
			if !allowed[f] {
				unauthorized = append(unauthorized, f)
			}
		}
		if len(unauthorized) > 0 {
			sort.Strings(unauthorized)
			return &PermissionError{
				Message: fmt.Sprintf(
					"Nurses can only update vital signs and admission status. Unauthorized fields: %s",
					strings.Join(unauthorized, ", ")),
				Fields: unauthorized,
			}
		}
	}

	return nil
}

// CheckVitalsUpdate gates the narrow vitals operation.
func CheckVitalsUpdate(role string) error {
	if !CanManageVitalSigns(role) {
		return &PermissionError{Message: "You do not have permission to update vital signs"}
	}
	return nil
}

// CheckStatusUpdate gates the narrow status operation.
func CheckStatusUpdate(role string) error {
	if !CanManagePatientStatus(role) {
		return &PermissionError{Message: "You do not have permission to update patient status"}
	}
	return nil
}

// CheckDelete gates deletion.
func CheckDelete(role string) error {
	if !CanDelete(role) {
		return &PermissionError{Message: "Only admins can delete patient records"}
	}
	return nil
}
