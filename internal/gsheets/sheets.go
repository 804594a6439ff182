// Package gsheets is the spreadsheet-backed attendance ledger.
//
// One spreadsheet holds the whole ledger, one worksheet per class. The
// worksheet is created with a header row the first time a class sees an
// attendance submission.
package gsheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/kozaktomas/face-attendance/internal/ledger"
)

// Ledger implements ledger.Repository on a Google spreadsheet.
type Ledger struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewLedger builds a Sheets client from a service account key file.
func NewLedger(ctx context.Context, credentialsFile, spreadsheetID string) (*Ledger, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading sheets credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing sheets credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &Ledger{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// worksheetExists reports whether the spreadsheet has a sheet titled class.
func (l *Ledger) worksheetExists(ctx context.Context, class string) (bool, error) {
	ss, err := l.svc.Spreadsheets.Get(l.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("listing worksheets: %w", err)
	}

	for _, sheet := range ss.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == class {
			return true, nil
		}
	}
	return false, nil
}

// ensureWorksheet creates the class worksheet with its header row if it
// does not exist yet.
func (l *Ledger) ensureWorksheet(ctx context.Context, class string) error {
	exists, err := l.worksheetExists(ctx, class)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: class},
			},
		}},
	}
	if _, err := l.svc.Spreadsheets.BatchUpdate(l.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("creating worksheet %q: %w", class, err)
	}

	header := make([]interface{}, len(ledger.Header))
	for i, col := range ledger.Header {
		header[i] = col
	}
	values := &sheets.ValueRange{Values: [][]interface{}{header}}
	_, err = l.svc.Spreadsheets.Values.Append(l.spreadsheetID, rangeRef(class), values).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("writing header for %q: %w", class, err)
	}
	return nil
}

// Append writes one attendance row, creating the worksheet first if needed.
func (l *Ledger) Append(ctx context.Context, class string, event ledger.Event) error {
	if err := l.ensureWorksheet(ctx, class); err != nil {
		return err
	}

	values := &sheets.ValueRange{Values: [][]interface{}{event.Row()}}
	_, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, rangeRef(class), values).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending attendance row to %q: %w", class, err)
	}
	return nil
}

// Rows returns every attendance event of a class in sheet order. A class
// without a worksheet yet has no rows.
func (l *Ledger) Rows(ctx context.Context, class string) ([]ledger.Event, error) {
	exists, err := l.worksheetExists(ctx, class)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, rangeRef(class)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", class, err)
	}

	var events []ledger.Event
	for i, row := range resp.Values {
		if i == 0 {
			continue // header
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		event, err := ledger.ParseRow(cells)
		if err != nil {
			// Skip rows edited by hand into an unreadable state.
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// rangeRef quotes a worksheet title for use in an A1 range.
func rangeRef(class string) string {
	return fmt.Sprintf("'%s'!A1", class)
}
