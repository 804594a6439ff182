package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/analytics"
	"github.com/kozaktomas/face-attendance/internal/faceclient"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/store"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// ErrEmptyStore means attendance was attempted before anyone registered.
var ErrEmptyStore = errors.New("no registered faces")

// Uploader archives an attendance snapshot and returns the file ID.
type Uploader interface {
	UploadImage(ctx context.Context, folderID, filename string, data []byte) (string, error)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps domain errors onto HTTP statuses. Anything
// unrecognized is treated as an upstream service failure.
func respondDomainError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, faceclient.ErrNoFaceDetected):
		respondError(w, http.StatusBadRequest, "no face detected in image")
	case errors.Is(err, ErrEmptyStore):
		respondError(w, http.StatusUnprocessableEntity, "no faces registered yet")
	case errors.Is(err, store.ErrClassNotFound):
		respondError(w, http.StatusNotFound, "class not found")
	case errors.Is(err, store.ErrClassExists):
		respondError(w, http.StatusConflict, "class already exists")
	case errors.Is(err, ledger.ErrNoRows), errors.Is(err, analytics.ErrNoData):
		respondError(w, http.StatusNotFound, "no attendance data")
	case errors.Is(err, store.ErrCorruptStore):
		respondError(w, http.StatusServiceUnavailable, "face store unavailable")
	default:
		respondError(w, http.StatusBadGateway, "upstream service failed")
	}
}

// dayBound validates an optional date query value. Empty means the bound
// is open.
func dayBound(field, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return "", &store.ValidationError{Field: field, Reason: "must be a YYYY-MM-DD date"}
	}
	return value, nil
}

// parseDayRange reads the optional from/to query parameters, rejecting
// malformed dates and inverted ranges.
func parseDayRange(r *http.Request) (string, string, error) {
	from, err := dayBound("from", r.URL.Query().Get("from"))
	if err != nil {
		return "", "", err
	}
	to, err := dayBound("to", r.URL.Query().Get("to"))
	if err != nil {
		return "", "", err
	}
	if from != "" && to != "" && from > to {
		return "", "", &store.ValidationError{Field: "from", Reason: "must not be after to"}
	}
	return from, to, nil
}

// readImagePart pulls the uploaded image out of a multipart form and
// validates that it is a decodable photo.
func readImagePart(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, "", &store.ValidationError{Field: "image", Reason: "required"}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, faceclient.MaxImageBytes+1))
	if err != nil {
		return nil, "", &store.ValidationError{Field: "image", Reason: "unreadable upload"}
	}

	if _, err := faceclient.ValidateImage(data); err != nil {
		return nil, "", &store.ValidationError{Field: "image", Reason: err.Error()}
	}
	return data, header.Filename, nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
