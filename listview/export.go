package listview

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"clearance/portal/models"
)

// CSVHeader is the first row of a history export
var CSVHeader = []string{"Student Name", "ID Number", "Type", "Date", "Status"}

// WriteCSV writes items as a history export. Dates are rendered as
// YYYY-MM-DD when they parse and verbatim otherwise.
func WriteCSV(w io.Writer, items []models.ClearanceRequest, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range items {
		date := r.Date
		if t, ok := ParseDate(r.Date, loc); ok {
			date = t.In(loc).Format("2006-01-02")
		}
		row := []string{r.Student.Name, r.Student.IDNumber, r.Type, date, r.Status}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename names a history export for the given day
func ExportFilename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", prefix, now.Format("2006-01-02"))
}
