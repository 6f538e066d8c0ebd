// Package query filters, paginates and summarizes medicine sequences.
// Every function is a pure transformation of its input.
package query

import (
	"strings"

	"medicine-inventory-service/internal/domain"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Filter selects and pages medicines. Nil predicates impose no constraint.
type Filter struct {
	Search   *string // case-insensitive substring of name or manufacturer
	Category *string // exact category name
	Expired  *bool
	Skip     int
	Limit    int // zero yields an empty page
}

// NewFilter returns a filter with no predicates and the default page size.
func NewFilter() Filter {
	return Filter{Limit: DefaultLimit}
}

// Page is one slice of a filtered medicine sequence.
type Page struct {
	Items []domain.Medicine
	Total int // number of medicines matching the filter before pagination
	Skip  int
	Limit int
}

// Stats are derived counts over a medicine sequence.
type Stats struct {
	Total    int `json:"total"`
	Expired  int `json:"expired"`
	LowStock int `json:"low_stock"`
}

// Match reports whether m satisfies every predicate of f.
func (f Filter) Match(m *domain.Medicine, today domain.Date) bool {
	if f.Search != nil {
		needle := strings.ToLower(*f.Search)
		if !strings.Contains(strings.ToLower(m.Name), needle) &&
			!strings.Contains(strings.ToLower(m.Manufacturer), needle) {
			return false
		}
	}
	if f.Category != nil && m.Category != *f.Category {
		return false
	}
	if f.Expired != nil && m.IsExpired(today) != *f.Expired {
		return false
	}
	return true
}

// Select returns the medicines matching f in input order, ignoring pagination.
func Select(medicines []domain.Medicine, f Filter, today domain.Date) []domain.Medicine {
	out := make([]domain.Medicine, 0, len(medicines))
	for i := range medicines {
		if f.Match(&medicines[i], today) {
			out = append(out, medicines[i])
		}
	}
	return out
}

// Apply filters medicines and returns the page selected by f.Skip and f.Limit.
// Limits above MaxLimit are capped; a negative skip is treated as zero.
func Apply(medicines []domain.Medicine, f Filter, today domain.Date) Page {
	matched := Select(medicines, f, today)

	skip, limit := f.Skip, f.Limit
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	page := Page{Items: []domain.Medicine{}, Total: len(matched), Skip: skip, Limit: limit}
	if skip >= len(matched) || limit == 0 {
		return page
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	page.Items = matched[skip:end]
	return page
}

// Summarize counts total, expired and low-stock medicines with a single scan.
func Summarize(medicines []domain.Medicine, today domain.Date) Stats {
	var s Stats
	for i := range medicines {
		s.Total++
		if medicines[i].IsExpired(today) {
			s.Expired++
		}
		if medicines[i].IsLowStock() {
			s.LowStock++
		}
	}
	return s
}
