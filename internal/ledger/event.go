// Package ledger defines attendance events and their spreadsheet row form.
//
// The durable ledger is a spreadsheet with one worksheet per class; every
// attendance submission appends one row. This package owns the row layout
// and the caching used in front of worksheet reads.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the wall-clock format written into ledger rows.
const TimestampLayout = "2006-01-02 15:04:05"

// StatusPresent is the only status the system writes today.
const StatusPresent = "Present"

// Header is the first row of every class worksheet, in column order.
var Header = []string{
	"Timestamp",
	"Name",
	"Student ID",
	"Email",
	"Phone",
	"Class",
	"Status",
	"Image URL",
}

// Event is one attendance record.
type Event struct {
	Timestamp time.Time
	Name      string
	StudentID string
	Email     string
	Phone     string
	Class     string
	Status    string
	ImageURL  string
}

// Row converts the event to a worksheet row in Header order.
func (e Event) Row() []interface{} {
	return []interface{}{
		e.Timestamp.Format(TimestampLayout),
		e.Name,
		e.StudentID,
		e.Email,
		e.Phone,
		e.Class,
		e.Status,
		e.ImageURL,
	}
}

// ParseRow converts a worksheet row back into an event. Short rows are
// padded with empty cells; a row whose timestamp cell does not parse is
// rejected.
func ParseRow(cells []string) (Event, error) {
	padded := make([]string, len(Header))
	copy(padded, cells)

	ts, err := time.Parse(TimestampLayout, padded[0])
	if err != nil {
		return Event{}, fmt.Errorf("parsing ledger timestamp %q: %w", padded[0], err)
	}

	return Event{
		Timestamp: ts,
		Name:      padded[1],
		StudentID: padded[2],
		Email:     padded[3],
		Phone:     padded[4],
		Class:     padded[5],
		Status:    padded[6],
		ImageURL:  padded[7],
	}, nil
}

// Day returns the event's calendar day in the event's own location.
func (e Event) Day() string {
	return e.Timestamp.Format("2006-01-02")
}

// DayBounds returns the earliest and latest calendar day across the
// events. Empty strings for an empty slice.
func DayBounds(events []Event) (string, string) {
	if len(events) == 0 {
		return "", ""
	}

	first, last := events[0].Timestamp, events[0].Timestamp
	for _, e := range events[1:] {
		if e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}

// ImageFilename builds the archive filename for an attendance photo,
// derived from identity and timestamp. Colons in the timestamp become
// dashes so the name is safe on every filesystem.
func ImageFilename(name, studentID, class string, ts time.Time) string {
	stamp := strings.ReplaceAll(ts.Format(TimestampLayout), ":", "-")
	return fmt.Sprintf("%s_%s_%s_%s.jpg", name, studentID, class, stamp)
}

// Repository reads and appends ledger rows for a class.
type Repository interface {
	// Append writes one event to the class worksheet, creating the
	// worksheet with a header row first if it does not exist.
	Append(ctx context.Context, class string, event Event) error
	// Rows returns all events of a class worksheet in sheet order,
	// header excluded. An unknown class returns an empty slice.
	Rows(ctx context.Context, class string) ([]Event, error)
}
