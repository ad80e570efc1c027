package patient

import (
	"sort"
	"strings"

	"github.com/recordspro/api/pkg/pagination"
)

// QueryResult is one page of patients plus pagination metadata.
type QueryResult struct {
	Patients   []*Patient
	Total      int
	TotalPages int
	Page       int
}

// Query filters, sorts, and paginates an in-memory collection. The
// search term matches as a case-insensitive substring against first
// name, last name, or phone (OR across fields). Results are ordered by
// createdAt descending before the page is sliced.
func Query(all []*Patient, search string, p pagination.Params) QueryResult {
	matched := all
	if search != "" {
		needle := strings.ToLower(search)
		matched = make([]*Patient, 0, len(all))
		for _, pt := range all {
			if matchesSearch(pt, needle) {
				matched = append(matched, pt)
			}
		}
	}

	sorted := make([]*Patient, len(matched))
	copy(sorted, matched)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedTime().After(sorted[j].CreatedTime())
	})

	total := len(sorted)
	start, end := p.Slice(total)

	return QueryResult{
		Patients:   sorted[start:end],
		Total:      total,
		TotalPages: p.TotalPages(total),
		Page:       p.Page,
	}
}

func matchesSearch(p *Patient, needle string) bool {
	return strings.Contains(strings.ToLower(p.PatientDetails.FirstName), needle) ||
		strings.Contains(strings.ToLower(p.PatientDetails.LastName), needle) ||
		strings.Contains(strings.ToLower(p.PatientDetails.Phone), needle)
}
