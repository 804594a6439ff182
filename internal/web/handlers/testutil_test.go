package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/faceclient"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/store"
)

// testFaceStore creates an empty face store in a temp dir
func testFaceStore(t *testing.T, dim int) *store.FaceStore {
	t.Helper()
	return store.NewFaceStore(filepath.Join(t.TempDir(), "faces.gob"), dim)
}

// testRegistry creates a registry preloaded with one class
func testRegistry(t *testing.T, classes ...string) *store.ClassRegistry {
	t.Helper()
	r := store.NewClassRegistry(filepath.Join(t.TempDir(), "classes.gob"))
	folders := &fakeFolders{}
	for _, class := range classes {
		if _, err := r.Add(context.Background(), class, folders); err != nil {
			t.Fatalf("adding test class %q: %v", class, err)
		}
	}
	return r
}

// testImage returns a tiny valid PNG
func testImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// multipartRequest builds a multipart form request with an optional image
// part and form fields
func multipartRequest(t *testing.T, path string, image []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if image != nil {
		part, err := mw.CreateFormFile("image", "frame.png")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatal(err)
		}
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// errServiceDown stands in for any upstream failure
var errServiceDown = errors.New("service down")

// fakeEmbedder returns a fixed encoding or a configured error
type fakeEmbedder struct {
	encoding []float32
	err      error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ []byte, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.encoding, nil
}

// fakeFolders creates predictable folder IDs
type fakeFolders struct {
	err error
}

func (f *fakeFolders) CreateFolder(_ context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "folder-" + name, nil
}

// fakeUploader records uploads and returns a fixed file ID
type fakeUploader struct {
	uploads  []string
	folderID string
	err      error
}

func (f *fakeUploader) UploadImage(_ context.Context, folderID, filename string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.folderID = folderID
	f.uploads = append(f.uploads, filename)
	return "file-123", nil
}

// fakeLedger is an in-memory ledger.Repository with error injection
type fakeLedger struct {
	rows      map[string][]ledger.Event
	appendErr error
	rowsErr   error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: make(map[string][]ledger.Event)}
}

func (f *fakeLedger) Append(_ context.Context, class string, event ledger.Event) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows[class] = append(f.rows[class], event)
	return nil
}

func (f *fakeLedger) Rows(_ context.Context, class string) ([]ledger.Event, error) {
	if f.rowsErr != nil {
		return nil, f.rowsErr
	}
	return f.rows[class], nil
}

// ledgerEvent builds a test event on the given March 2026 day
func ledgerEvent(studentID, name string, day int) ledger.Event {
	return ledger.Event{
		Timestamp: time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC),
		Name:      name,
		StudentID: studentID,
		Class:     "Database System",
		Status:    ledger.StatusPresent,
		ImageURL:  "https://drive.google.com/file/d/x/view",
	}
}

var (
	_ faceclient.Embedder = (*fakeEmbedder)(nil)
	_ Uploader            = (*fakeUploader)(nil)
	_ ledger.Repository   = (*fakeLedger)(nil)
	_ store.FolderCreator = (*fakeFolders)(nil)
)
