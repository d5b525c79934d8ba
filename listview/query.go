package listview

import (
	"net/url"
	"strconv"
	"strings"
)

// Date range buckets
const (
	DateAll   = "all"
	DateToday = "today"
	DateWeek  = "this-week"
	DateMonth = "this-month"
)

// Sort keys
const (
	SortDate    = "date"
	SortStudent = "student"
	SortType    = "type"
	SortStatus  = "status"
)

// Sort directions
const (
	Asc  = "asc"
	Desc = "desc"
)

// Pagination limits
const (
	DefaultPerPage = 25
	MaxPerPage     = 200
)

// Query is the set of predicates a list view applies to its collection
type Query struct {
	Search        string
	Status        string
	DateRange     string
	Type          string
	SortBy        string
	SortDir       string
	CompletedOnly bool
	Page          int
	PerPage       int
}

// DefaultQuery shows everything, newest first
func DefaultQuery() Query {
	return Query{
		Status:    DateAll,
		DateRange: DateAll,
		Type:      DateAll,
		SortBy:    SortDate,
		SortDir:   Desc,
		Page:      1,
		PerPage:   DefaultPerPage,
	}
}

// ParseQuery reads a query from URL values. Missing or invalid entries keep
// the values of defaults.
func ParseQuery(v url.Values, defaults Query) Query {
	q := defaults

	if s, ok := v["search"]; ok {
		q.Search = strings.TrimSpace(first(s))
	}
	if s := strings.ToLower(strings.TrimSpace(v.Get("status"))); s != "" {
		q.Status = s
	}
	if s := normaliseDateRange(v.Get("date")); s != "" {
		q.DateRange = s
	}
	if s := strings.TrimSpace(v.Get("type")); s != "" {
		q.Type = s
	}

	switch s := strings.ToLower(v.Get("sort_by")); s {
	case SortDate, SortStudent, SortType, SortStatus:
		q.SortBy = s
	}
	switch s := strings.ToLower(v.Get("sort_order")); s {
	case Asc, Desc:
		q.SortDir = s
	}

	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 0 {
		q.Page = n
	}
	if n, err := strconv.Atoi(v.Get("per_page")); err == nil && n > 0 {
		q.PerPage = n
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.Page < 1 {
		q.Page = 1
	}

	return q
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func normaliseDateRange(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case DateAll:
		return DateAll
	case DateToday:
		return DateToday
	case DateWeek, "week":
		return DateWeek
	case DateMonth, "month":
		return DateMonth
	}
	return ""
}

// Values encodes the query for links and saved filters. Page is left out.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" && q.Status != DateAll {
		v.Set("status", q.Status)
	}
	if q.DateRange != "" && q.DateRange != DateAll {
		v.Set("date", q.DateRange)
	}
	if q.Type != "" && q.Type != DateAll {
		v.Set("type", q.Type)
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.SortDir != "" {
		v.Set("sort_order", q.SortDir)
	}
	if q.PerPage != 0 && q.PerPage != DefaultPerPage {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

// PageURL returns the query string for another page of the same view
func (q Query) PageURL(page int) string {
	v := q.Values()
	v.Set("page", strconv.Itoa(page))
	return "?" + v.Encode()
}
