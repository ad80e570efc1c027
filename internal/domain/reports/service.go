// Package reports computes aggregate statistics over the patient and
// user stores: dashboard counters, filtered patient reports, staff
// activity, and bulk export.
package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/recordspro/api/internal/domain/patient"
	"github.com/recordspro/api/internal/domain/user"
)

// CountBucket is one labeled count in a distribution. The _id key is
// the shape the dashboard frontend consumes.
type CountBucket struct {
	ID    string `json:"_id"`
	Count int    `json:"count"`
}

// YearMonth identifies one month in a registration trend.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// MonthBucket is one month's registration count.
type MonthBucket struct {
	ID    YearMonth `json:"_id"`
	Count int       `json:"count"`
}

// DashboardStats is the aggregate view behind the dashboard page.
type DashboardStats struct {
	TotalPatients      int           `json:"totalPatients"`
	TotalUsers         int           `json:"totalUsers"`
	RecentPatients     int           `json:"recentPatients"`
	GenderDistribution []CountBucket `json:"genderDistribution"`
	AgeDistribution    []CountBucket `json:"ageDistribution"`
	MonthlyTrends      []MonthBucket `json:"monthlyTrends"`
}

// ReportPatient is the slim patient row included in reports.
type ReportPatient struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	DOB       string `json:"dob"`
	Sex       string `json:"sex"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	CreatedAt string `json:"createdAt"`
}

// PatientReportStats summarizes a filtered patient set.
type PatientReportStats struct {
	Total           int            `json:"total"`
	GenderBreakdown map[string]int `json:"genderBreakdown"`
	AverageAge      int            `json:"averageAge"`
}

// PatientReportFilters echoes the filters a report was built with.
type PatientReportFilters struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Gender    string `json:"gender"`
}

// PatientReport is the filtered report response.
type PatientReport struct {
	Patients   []ReportPatient      `json:"patients"`
	Statistics PatientReportStats   `json:"statistics"`
	Filters    PatientReportFilters `json:"filters"`
}

// RecentUser is the slim account row in the user activity report.
type RecentUser struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// UserActivityReport summarizes the staff accounts.
type UserActivityReport struct {
	RoleDistribution []CountBucket `json:"roleDistribution"`
	RecentUsers      []RecentUser  `json:"recentUsers"`
}

// ExportPatient is the patient row in bulk exports, clinical list
// fields included.
type ExportPatient struct {
	FirstName      string                 `json:"firstName"`
	LastName       string                 `json:"lastName"`
	DOB            string                 `json:"dob"`
	Sex            string                 `json:"sex"`
	Phone          string                 `json:"phone"`
	Address        string                 `json:"address"`
	Allergies      []string               `json:"allergies"`
	MedicalHistory []patient.HistoryEntry `json:"medicalHistory"`
	CreatedAt      string                 `json:"createdAt"`
}

// Service computes the reports. now is injectable for tests.
type Service struct {
	patients patient.Repository
	users    user.Repository
	now      func() time.Time
}

func NewService(patients patient.Repository, users user.Repository) *Service {
	return &Service{patients: patients, users: users, now: time.Now}
}

// parseDate accepts both full timestamps and bare dates.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ageAt computes whole years between dob and now using the average
// year length, matching how the dashboard has always bucketed ages.
func ageAt(dob string, now time.Time) (int, bool) {
	t, ok := parseDate(dob)
	if !ok {
		return 0, false
	}
	return int(now.Sub(t).Hours() / (365.25 * 24)), true
}

func normalizeSex(sex string) string {
	switch sex {
	case "M", "Male":
		return "M"
	case "F", "Female":
		return "F"
	default:
		return "Other"
	}
}

func sortNewestFirst(patients []*patient.Patient) {
	sort.SliceStable(patients, func(i, j int) bool {
		return patients[i].CreatedTime().After(patients[j].CreatedTime())
	})
}

// Dashboard aggregates the counters and distributions shown on the
// dashboard page.
func (s *Service) Dashboard() (*DashboardStats, error) {
	allPatients, err := s.patients.FindAll()
	if err != nil {
		return nil, err
	}
	allUsers, err := s.users.FindAll()
	if err != nil {
		return nil, err
	}
	now := s.now()

	stats := &DashboardStats{
		TotalPatients: len(allPatients),
		TotalUsers:    len(allUsers),
	}

	thirtyDaysAgo := now.AddDate(0, 0, -30)
	genderCount := map[string]int{}
	ageGroups := map[string]int{}
	for _, p := range allPatients {
		if p.CreatedTime().After(thirtyDaysAgo) {
			stats.RecentPatients++
		}
		genderCount[normalizeSex(p.PatientDetails.Sex)]++
		if age, ok := ageAt(p.PatientDetails.DOB, now); ok {
			switch {
			case age < 18:
				ageGroups["0-17"]++
			case age < 30:
				ageGroups["18-29"]++
			case age < 50:
				ageGroups["30-49"]++
			case age < 70:
				ageGroups["50-69"]++
			default:
				ageGroups["70+"]++
			}
		}
	}

	stats.GenderDistribution = bucketize(genderCount)
	stats.AgeDistribution = bucketize(ageGroups)

	twelveMonthsAgo := now.AddDate(0, -12, 0)
	monthly := map[YearMonth]int{}
	for _, p := range allPatients {
		created := p.CreatedTime()
		if created.Before(twelveMonthsAgo) {
			continue
		}
		monthly[YearMonth{Year: created.Year(), Month: int(created.Month())}]++
	}
	stats.MonthlyTrends = make([]MonthBucket, 0, len(monthly))
	for ym, count := range monthly {
		stats.MonthlyTrends = append(stats.MonthlyTrends, MonthBucket{ID: ym, Count: count})
	}
	sort.Slice(stats.MonthlyTrends, func(i, j int) bool {
		a, b := stats.MonthlyTrends[i].ID, stats.MonthlyTrends[j].ID
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	return stats, nil
}

// bucketize converts a count map into sorted labeled buckets, dropping
// empty labels.
func bucketize(counts map[string]int) []CountBucket {
	out := make([]CountBucket, 0, len(counts))
	for label, count := range counts {
		if count > 0 {
			out = append(out, CountBucket{ID: label, Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Patients builds a report over patients filtered by registration date
// range and sex.
func (s *Service) Patients(startDate, endDate, gender string) (*PatientReport, error) {
	all, err := s.patients.FindAll()
	if err != nil {
		return nil, err
	}
	now := s.now()

	filtered := make([]*patient.Patient, 0, len(all))
	start, hasStart := parseDate(startDate)
	end, hasEnd := parseDate(endDate)
	for _, p := range all {
		if hasStart && hasEnd {
			created := p.CreatedTime()
			if created.Before(start) || created.After(end) {
				continue
			}
		}
		if gender != "" && p.PatientDetails.Sex != gender {
			continue
		}
		filtered = append(filtered, p)
	}
	sortNewestFirst(filtered)

	stats := PatientReportStats{
		Total:           len(filtered),
		GenderBreakdown: map[string]int{},
	}
	totalAge := 0
	rows := make([]ReportPatient, 0, len(filtered))
	for _, p := range filtered {
		stats.GenderBreakdown[p.PatientDetails.Sex]++
		if age, ok := ageAt(p.PatientDetails.DOB, now); ok {
			totalAge += age
		}
		rows = append(rows, ReportPatient{
			FirstName: p.PatientDetails.FirstName,
			LastName:  p.PatientDetails.LastName,
			DOB:       p.PatientDetails.DOB,
			Sex:       p.PatientDetails.Sex,
			Phone:     p.PatientDetails.Phone,
			Address:   p.PatientDetails.Address,
			CreatedAt: p.CreatedAt,
		})
	}
	if len(filtered) > 0 {
		stats.AverageAge = int(float64(totalAge)/float64(len(filtered)) + 0.5)
	}

	return &PatientReport{
		Patients:   rows,
		Statistics: stats,
		Filters:    PatientReportFilters{StartDate: startDate, EndDate: endDate, Gender: gender},
	}, nil
}

// UserActivity summarizes the role distribution and the ten most
// recently created accounts.
func (s *Service) UserActivity() (*UserActivityReport, error) {
	users, err := s.users.FindAll()
	if err != nil {
		return nil, err
	}

	roleCount := map[string]int{}
	for _, u := range users {
		roleCount[u.Role]++
	}

	sorted := make([]*user.User, len(users))
	copy(sorted, users)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedTime().After(sorted[j].CreatedTime())
	})
	if len(sorted) > 10 {
		sorted = sorted[:10]
	}
	recent := make([]RecentUser, 0, len(sorted))
	for _, u := range sorted {
		recent = append(recent, RecentUser{
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}

	return &UserActivityReport{
		RoleDistribution: bucketize(roleCount),
		RecentUsers:      recent,
	}, nil
}

// Export returns every patient as slim export rows, newest first.
func (s *Service) Export() ([]ExportPatient, error) {
	all, err := s.patients.FindAll()
	if err != nil {
		return nil, err
	}
	sorted := make([]*patient.Patient, len(all))
	copy(sorted, all)
	sortNewestFirst(sorted)

	out := make([]ExportPatient, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, ExportPatient{
			FirstName:      p.PatientDetails.FirstName,
			LastName:       p.PatientDetails.LastName,
			DOB:            p.PatientDetails.DOB,
			Sex:            p.PatientDetails.Sex,
			Phone:          p.PatientDetails.Phone,
			Address:        p.PatientDetails.Address,
			Allergies:      p.MedicalRecords.Allergies,
			MedicalHistory: p.MedicalRecords.MedicalHistory,
			CreatedAt:      p.CreatedAt,
		})
	}
	return out, nil
}

// ExportCSV renders the export rows as CSV. Every field is quoted and
// list fields are joined with "; ".
func (s *Service) ExportCSV() (string, error) {
	rows, err := s.Export()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("First Name,Last Name,Date of Birth,Gender,Phone,Address,Allergies,Medical History,Created At\n")
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		history := make([]string, 0, len(r.MedicalHistory))
		for _, h := range r.MedicalHistory {
			history = append(history, fmt.Sprintf("%s: %s", h.Date, h.Description))
		}
		fields := []string{
			r.FirstName,
			r.LastName,
			dateOnly(r.DOB),
			r.Sex,
			r.Phone,
			r.Address,
			strings.Join(r.Allergies, "; "),
			strings.Join(history, "; "),
			dateOnly(r.CreatedAt),
		}
		for j, f := range fields {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`)
		}
	}
	return b.String(), nil
}

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}
