package analytics

import "github.com/kozaktomas/face-attendance/internal/ledger"

// StudentCount is one student's submission count within a date range.
type StudentCount struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
}

// Dashboard summarizes a class over a date range for the admin panel.
type Dashboard struct {
	Students     []StudentCount `json:"students"`
	AverageCount float64        `json:"average_count"`
	BelowAverage []StudentCount `json:"below_average"`
	Top          []StudentCount `json:"top"`
}

// BuildDashboard counts submissions per student within [from, to],
// inclusive on both calendar days. Students are listed in first-seen
// order; Top holds the three highest counts with ties kept in first-seen
// order. Returns ErrNoData when no rows fall inside the range.
func BuildDashboard(events []ledger.Event, from, to string) (Dashboard, error) {
	inRange := FilterRange(events, from, to)
	if len(inRange) == 0 {
		return Dashboard{}, ErrNoData
	}

	counts := make(map[string]int)
	names := make(map[string]string)
	order := distinctStudents(inRange)
	for _, e := range inRange {
		counts[e.StudentID]++
		if _, ok := names[e.StudentID]; !ok {
			names[e.StudentID] = e.Name
		}
	}

	students := make([]StudentCount, 0, len(order))
	total := 0
	for _, id := range order {
		students = append(students, StudentCount{
			StudentID: id,
			Name:      names[id],
			Count:     counts[id],
		})
		total += counts[id]
	}

	avg := round2(float64(total) / float64(len(students)))

	var below []StudentCount
	for _, s := range students {
		if float64(s.Count) < avg {
			below = append(below, s)
		}
	}

	return Dashboard{
		Students:     students,
		AverageCount: avg,
		BelowAverage: below,
		Top:          topThree(students),
	}, nil
}

// FilterRange keeps events whose calendar day falls within [from, to],
// inclusive. An empty bound leaves that side of the range open. Bounds
// use the "2006-01-02" day format.
func FilterRange(events []ledger.Event, from, to string) []ledger.Event {
	var inRange []ledger.Event
	for _, e := range events {
		day := e.Day()
		if (from == "" || day >= from) && (to == "" || day <= to) {
			inRange = append(inRange, e)
		}
	}
	return inRange
}

// topThree picks the three largest counts with a stable sort, so equal
// counts keep their first-seen order.
func topThree(students []StudentCount) []StudentCount {
	ranked := make([]StudentCount, len(students))
	copy(ranked, students)

	// Insertion sort by count descending; stable and tiny inputs.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].Count > ranked[j-1].Count; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	return ranked
}
