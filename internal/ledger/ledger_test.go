package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

func testEvent(day int) Event {
	return Event{
		Timestamp: time.Date(2026, 3, day, 9, 15, 0, 0, time.UTC),
		Name:      "Alice Tan",
		StudentID: "TB21001",
		Email:     "alice@example.com",
		Phone:     "0123456789",
		Class:     "Database System",
		Status:    StatusPresent,
		ImageURL:  "https://drive.google.com/file/d/abc123/view",
	}
}

func TestEvent_RowAndParseRoundTrip(t *testing.T) {
	e := testEvent(5)

	row := e.Row()
	if len(row) != len(Header) {
		t.Fatalf("row has %d cells, header has %d columns", len(row), len(Header))
	}
	if row[0] != "2026-03-05 09:15:00" {
		t.Errorf("unexpected timestamp cell %v", row[0])
	}

	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = v.(string)
	}

	parsed, err := ParseRow(cells)
	if err != nil {
		t.Fatalf("ParseRow failed: %v", err)
	}
	if !reflect.DeepEqual(parsed, e) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, e)
	}
}

func TestParseRow_ShortRowPadded(t *testing.T) {
	e, err := ParseRow([]string{"2026-03-05 09:15:00", "Alice Tan"})
	if err != nil {
		t.Fatalf("ParseRow failed: %v", err)
	}
	if e.Name != "Alice Tan" || e.ImageURL != "" {
		t.Errorf("unexpected event %+v", e)
	}
}

func TestParseRow_BadTimestamp(t *testing.T) {
	if _, err := ParseRow([]string{"yesterday", "Alice"}); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestImageFilename(t *testing.T) {
	ts := time.Date(2026, 3, 5, 9, 15, 30, 0, time.UTC)

	got := ImageFilename("Alice Tan", "TB21001", "Database System", ts)
	want := "Alice Tan_TB21001_Database System_2026-03-05 09-15-30.jpg"
	if got != want {
		t.Errorf("ImageFilename = %q, want %q", got, want)
	}

	if strings.Contains(got, ":") {
		t.Error("filename must not contain colons")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	events := []Event{testEvent(5), testEvent(6)}

	if err := WriteCSV(&buf, events); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(Header, ",") {
		t.Errorf("unexpected header line %q", lines[0])
	}
	if !strings.Contains(lines[1], "2026-03-05 09:15:00") {
		t.Errorf("unexpected first row %q", lines[1])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); !errors.Is(err, ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written for an empty export")
	}
}

func TestExportFilename(t *testing.T) {
	got := ExportFilename("Database System", "2026-03-01", "2026-03-05")
	if got != "Database_System_attendance_2026-03-01_to_2026-03-05.csv" {
		t.Errorf("unexpected filename %q", got)
	}
}

func TestStudentReportFilename(t *testing.T) {
	got := StudentReportFilename("Database System", "TB21001")
	if got != "Database_System_TB21001_attendance.csv" {
		t.Errorf("unexpected filename %q", got)
	}
}

func TestDayBounds(t *testing.T) {
	events := []Event{
		{Timestamp: time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)},
	}

	from, to := DayBounds(events)
	if from != "2026-03-02" || to != "2026-03-07" {
		t.Errorf("DayBounds = %q, %q", from, to)
	}

	if from, to := DayBounds(nil); from != "" || to != "" {
		t.Errorf("empty slice must give empty bounds, got %q, %q", from, to)
	}
}

// fakeRepository counts reads so cache hits are observable.
type fakeRepository struct {
	rows      map[string][]Event
	reads     int
	appendErr error
}

func (f *fakeRepository) Append(_ context.Context, class string, event Event) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows[class] = append(f.rows[class], event)
	return nil
}

func (f *fakeRepository) Rows(_ context.Context, class string) ([]Event, error) {
	f.reads++
	return f.rows[class], nil
}

func TestCachedRepository_ServesFromCache(t *testing.T) {
	inner := &fakeRepository{rows: map[string][]Event{"Database System": {testEvent(5)}}}
	repo := NewCachedRepository(inner, NewMemoryCache(time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		events, err := repo.Rows(ctx, "Database System")
		if err != nil {
			t.Fatalf("Rows failed: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
	}

	if inner.reads != 1 {
		t.Errorf("expected 1 worksheet read, got %d", inner.reads)
	}
}

func TestCachedRepository_AppendInvalidates(t *testing.T) {
	inner := &fakeRepository{rows: map[string][]Event{"Database System": {testEvent(5)}}}
	repo := NewCachedRepository(inner, NewMemoryCache(time.Minute))
	ctx := context.Background()

	if _, err := repo.Rows(ctx, "Database System"); err != nil {
		t.Fatal(err)
	}

	if err := repo.Append(ctx, "Database System", testEvent(6)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err := repo.Rows(ctx, "Database System")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Errorf("expected appended row to be visible, got %d events", len(events))
	}
}

func TestCachedRepository_FailedAppendKeepsCache(t *testing.T) {
	inner := &fakeRepository{
		rows:      map[string][]Event{"Database System": {testEvent(5)}},
		appendErr: fmt.Errorf("sheets quota exceeded"),
	}
	repo := NewCachedRepository(inner, NewMemoryCache(time.Minute))
	ctx := context.Background()

	if _, err := repo.Rows(ctx, "Database System"); err != nil {
		t.Fatal(err)
	}

	if err := repo.Append(ctx, "Database System", testEvent(6)); err == nil {
		t.Fatal("expected append error")
	}

	if _, err := repo.Rows(ctx, "Database System"); err != nil {
		t.Fatal(err)
	}
	if inner.reads != 1 {
		t.Errorf("failed append must not invalidate the cache, got %d reads", inner.reads)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := NewMemoryCache(30 * time.Second)
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	cache.Set(ctx, "Database System", []Event{testEvent(5)})

	if _, ok := cache.Get(ctx, "Database System"); !ok {
		t.Fatal("expected cache hit before expiry")
	}

	now = now.Add(31 * time.Second)
	if _, ok := cache.Get(ctx, "Database System"); ok {
		t.Error("expected cache miss after TTL")
	}
}
