package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoRows means a class worksheet has no attendance rows to export.
var ErrNoRows = errors.New("no attendance rows")

// WriteCSV writes the header plus one row per event. Exporting an empty
// event list returns ErrNoRows so callers can answer 404 instead of
// shipping a header-only file.
func WriteCSV(w io.Writer, events []Event) error {
	if len(events) == 0 {
		return ErrNoRows
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, e := range events {
		record := []string{
			e.Timestamp.Format(TimestampLayout),
			e.Name,
			e.StudentID,
			e.Email,
			e.Phone,
			e.Class,
			e.Status,
			e.ImageURL,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename names a class CSV download covering [from, to].
func ExportFilename(class, from, to string) string {
	safe := strings.ReplaceAll(class, " ", "_")
	return fmt.Sprintf("%s_attendance_%s_to_%s.csv", safe, from, to)
}

// StudentReportFilename names a single student's CSV download.
func StudentReportFilename(class, studentID string) string {
	safe := strings.ReplaceAll(class, " ", "_")
	return fmt.Sprintf("%s_%s_attendance.csv", safe, studentID)
}
