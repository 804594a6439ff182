// Package analytics computes attendance statistics from ledger rows.
//
// The class calendar is inferred from the rows themselves: the span from
// the earliest to the latest row, inclusive, counts as the days the class
// was held. All functions are pure over an event slice, so recomputing a
// report never changes the answer.
package analytics

import (
	"errors"
	"math"
	"time"

	"github.com/kozaktomas/face-attendance/internal/ledger"
)

// ErrNoData means the worksheet has no rows to compute over.
var ErrNoData = errors.New("no attendance data")

// BelowThresholdPct is the attendance percentage under which a student is
// flagged in reports.
const BelowThresholdPct = 75.0

// CountMode selects the attendance numerator.
type CountMode int

const (
	// CountRows counts every ledger row, so a student who submits twice
	// in one day gets credit twice.
	CountRows CountMode = iota
	// CountDistinctDays counts each calendar day at most once.
	CountDistinctDays
)

// StudentReport is one student's attendance summary for a class.
type StudentReport struct {
	StudentID      string  `json:"student_id"`
	Name           string  `json:"name"`
	DaysHeld       int     `json:"days_held"`
	Attended       int     `json:"attended"`
	Percentage     float64 `json:"percentage"`
	ClassAverage   float64 `json:"class_average"`
	BelowThreshold bool    `json:"below_threshold"`
}

// round2 rounds to two decimal places, the precision reports display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DaysHeld returns the inclusive calendar-day span from the earliest to
// the latest row. Zero for an empty worksheet.
func DaysHeld(events []ledger.Event) int {
	if len(events) == 0 {
		return 0
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

	firstDay := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, last.Location())
	return int(lastDay.Sub(firstDay).Hours()/24) + 1
}

// attendedCount returns a student's numerator under the given mode.
func attendedCount(events []ledger.Event, studentID string, mode CountMode) int {
	if mode == CountRows {
		n := 0
		for _, e := range events {
			if e.StudentID == studentID {
				n++
			}
		}
		return n
	}

	days := make(map[string]struct{})
	for _, e := range events {
		if e.StudentID == studentID {
			days[e.Day()] = struct{}{}
		}
	}
	return len(days)
}

// percentage computes attended/daysHeld as a rounded percentage.
func percentage(attended, daysHeld int) float64 {
	if daysHeld == 0 {
		return 0
	}
	return round2(float64(attended) / float64(daysHeld) * 100)
}

// ReportForStudent summarizes one student's attendance against the whole
// class ledger. Returns ErrNoData when the class has no rows at all.
func ReportForStudent(events []ledger.Event, studentID string, mode CountMode) (StudentReport, error) {
	daysHeld := DaysHeld(events)
	if daysHeld == 0 {
		return StudentReport{}, ErrNoData
	}

	name := ""
	for _, e := range events {
		if e.StudentID == studentID {
			name = e.Name
			break
		}
	}

	attended := attendedCount(events, studentID, mode)
	pct := percentage(attended, daysHeld)

	return StudentReport{
		StudentID:      studentID,
		Name:           name,
		DaysHeld:       daysHeld,
		Attended:       attended,
		Percentage:     pct,
		ClassAverage:   ClassAverage(events, mode),
		BelowThreshold: pct < BelowThresholdPct,
	}, nil
}

// ClassAverage returns the mean attendance percentage over every student
// that appears in the ledger, rounded once at the end. Zero for an empty
// worksheet.
func ClassAverage(events []ledger.Event, mode CountMode) float64 {
	daysHeld := DaysHeld(events)
	if daysHeld == 0 {
		return 0
	}

	students := distinctStudents(events)
	if len(students) == 0 {
		return 0
	}

	total := 0
	for _, id := range students {
		total += attendedCount(events, id, mode)
	}
	mean := float64(total) / float64(len(students))
	return round2(mean / float64(daysHeld) * 100)
}

// distinctStudents returns student IDs in first-seen order.
func distinctStudents(events []ledger.Event) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range events {
		if _, ok := seen[e.StudentID]; ok {
			continue
		}
		seen[e.StudentID] = struct{}{}
		ids = append(ids, e.StudentID)
	}
	return ids
}
