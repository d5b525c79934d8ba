package listview

import (
	"sort"
	"strings"
	"time"

	"clearance/portal/models"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the timestamps the API sends. Zones missing from the
// value are taken from loc. Unparseable values report false.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Apply filters and sorts items for display. The input slice is never
// modified and the result is a new slice; equal keys keep input order.
func Apply(items []models.ClearanceRequest, q Query, now time.Time) []models.ClearanceRequest {
	out := make([]models.ClearanceRequest, 0, len(items))
	for i := range items {
		if q.matches(&items[i], now) {
			out = append(out, items[i])
		}
	}

	Sort(out, q.SortBy, q.SortDir, now.Location())
	return out
}

func (q Query) matches(r *models.ClearanceRequest, now time.Time) bool {
	if q.CompletedOnly && !r.IsCompleted() {
		return false
	}

	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(r.Student.Name), needle) &&
			!strings.Contains(strings.ToLower(r.Student.IDNumber), needle) &&
			!strings.Contains(strings.ToLower(r.Type), needle) {
			return false
		}
	}

	if q.Status != "" && q.Status != DateAll && r.Status != q.Status {
		return false
	}

	if q.Type != "" && q.Type != DateAll && !strings.EqualFold(r.Type, q.Type) {
		return false
	}

	return inRange(r.Date, q.DateRange, now)
}

func inRange(date, bucket string, now time.Time) bool {
	if bucket == "" || bucket == DateAll {
		return true
	}

	t, ok := ParseDate(date, now.Location())
	if !ok {
		return false
	}

	switch bucket {
	case DateToday:
		ty, tm, td := t.In(now.Location()).Date()
		ny, nm, nd := now.Date()
		return ty == ny && tm == nm && td == nd
	case DateWeek:
		return !t.Before(now.AddDate(0, 0, -7))
	case DateMonth:
		return !t.Before(now.AddDate(0, 0, -30))
	}
	return true
}

// Sort orders items in place by key and direction with a stable sort.
// Dates compare as parsed instants; unparseable dates sort as the zero time.
func Sort(items []models.ClearanceRequest, key, dir string, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}

	var less func(a, b *models.ClearanceRequest) bool
	switch key {
	case SortStudent:
		less = func(a, b *models.ClearanceRequest) bool {
			return strings.ToLower(a.Student.Name) < strings.ToLower(b.Student.Name)
		}
	case SortType:
		less = func(a, b *models.ClearanceRequest) bool {
			return strings.ToLower(a.Type) < strings.ToLower(b.Type)
		}
	case SortStatus:
		less = func(a, b *models.ClearanceRequest) bool {
			return a.Status < b.Status
		}
	default:
		times := make(map[string]time.Time, len(items))
		at := func(s string) time.Time {
			if t, ok := times[s]; ok {
				return t
			}
			t, _ := ParseDate(s, loc)
			times[s] = t
			return t
		}
		less = func(a, b *models.ClearanceRequest) bool {
			return at(a.Date).Before(at(b.Date))
		}
	}

	if dir == Desc {
		sort.SliceStable(items, func(i, j int) bool { return less(&items[j], &items[i]) })
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(&items[i], &items[j]) })
}

// ScopeToClearanceType keeps requests of one clearance category. An empty
// type or "all" keeps everything.
func ScopeToClearanceType(items []models.ClearanceRequest, clearanceType string) []models.ClearanceRequest {
	want := strings.ToLower(strings.TrimSpace(clearanceType))
	if want == "" || want == DateAll {
		return items
	}
	wantKind, wantKnown := models.ParseClearanceKind(want)

	out := make([]models.ClearanceRequest, 0, len(items))
	for _, r := range items {
		kind, ok := r.Kind()
		if ok && wantKnown && kind == wantKind {
			out = append(out, r)
			continue
		}
		if strings.TrimSpace(strings.TrimSuffix(strings.ToLower(r.Type), " clearance")) == want {
			out = append(out, r)
		}
	}
	return out
}

// Types lists the distinct request types in first-seen order
func Types(items []models.ClearanceRequest) []string {
	seen := make(map[string]bool)
	var types []string
	for _, r := range items {
		if r.Type != "" && !seen[r.Type] {
			seen[r.Type] = true
			types = append(types, r.Type)
		}
	}
	return types
}
