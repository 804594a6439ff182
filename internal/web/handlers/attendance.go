package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/face-attendance/internal/faceclient"
	"github.com/kozaktomas/face-attendance/internal/gdrive"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/matcher"
	"github.com/kozaktomas/face-attendance/internal/store"
)

// AttendanceHandler handles attendance submissions
type AttendanceHandler struct {
	store    *store.FaceStore
	registry *store.ClassRegistry
	embedder faceclient.Embedder
	matcher  *matcher.Matcher
	archive  Uploader
	repo     ledger.Repository
	now      func() time.Time
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(
	faces *store.FaceStore,
	registry *store.ClassRegistry,
	embedder faceclient.Embedder,
	m *matcher.Matcher,
	archive Uploader,
	repo ledger.Repository,
) *AttendanceHandler {
	return &AttendanceHandler{
		store:    faces,
		registry: registry,
		embedder: embedder,
		matcher:  m,
		archive:  archive,
		repo:     repo,
		now:      time.Now,
	}
}

// AttendanceResponse is the payload for a recorded attendance
type AttendanceResponse struct {
	Success   bool    `json:"success"`
	Name      string  `json:"name"`
	StudentID string  `json:"student_id"`
	Class     string  `json:"class"`
	Distance  float64 `json:"distance"`
	Timestamp string  `json:"timestamp"`
	ImageURL  string  `json:"image_url"`
}

// Submit handles POST /api/v1/attendance. The request is a multipart form
// with an image part and a class field. The captured frame is archived and
// a ledger row appended only when the face matches a registered identity.
func (h *AttendanceHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(faceclient.MaxImageBytes); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	class, err := h.registry.Resolve(r.FormValue("class"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	image, filename, err := readImagePart(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	encodings, metadata := h.store.Snapshot()
	if len(encodings) == 0 {
		respondDomainError(w, ErrEmptyStore)
		return
	}

	probe, err := h.embedder.Embed(r.Context(), image, filename)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	match, ok := h.matcher.Match(probe, encodings)
	if !ok {
		respondError(w, http.StatusConflict, "face does not match any registered student")
		return
	}
	identity := metadata[match.Index]

	folderID, err := h.registry.FolderID(class)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	ts := h.now()
	imageName := ledger.ImageFilename(identity.Name, identity.StudentID, class, ts)
	fileID, err := h.archive.UploadImage(r.Context(), folderID, imageName, image)
	if err != nil {
		log.Printf("archiving attendance image failed: %v", err)
		respondDomainError(w, err)
		return
	}
	imageURL := gdrive.FileURL(fileID)

	event := ledger.Event{
		Timestamp: ts,
		Name:      identity.Name,
		StudentID: identity.StudentID,
		Email:     identity.Email,
		Phone:     identity.Phone,
		Class:     class,
		Status:    ledger.StatusPresent,
		ImageURL:  imageURL,
	}
	if err := h.repo.Append(r.Context(), class, event); err != nil {
		log.Printf("appending ledger row failed: %v", err)
		respondDomainError(w, err)
		return
	}

	log.Printf("attendance recorded for %s (%s) in %s, distance %.4f",
		sanitizeForLog(identity.Name), sanitizeForLog(identity.StudentID), sanitizeForLog(class), match.Distance)

	respondJSON(w, http.StatusOK, AttendanceResponse{
		Success:   true,
		Name:      identity.Name,
		StudentID: identity.StudentID,
		Class:     class,
		Distance:  match.Distance,
		Timestamp: ts.Format(ledger.TimestampLayout),
		ImageURL:  imageURL,
	})
}
