package handlers

import (
	"log"
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/faceclient"
	"github.com/kozaktomas/face-attendance/internal/store"
)

// RegisterHandler handles face registration
type RegisterHandler struct {
	store    *store.FaceStore
	embedder faceclient.Embedder
}

// NewRegisterHandler creates a new registration handler
func NewRegisterHandler(faces *store.FaceStore, embedder faceclient.Embedder) *RegisterHandler {
	return &RegisterHandler{store: faces, embedder: embedder}
}

// RegisterResponse is the payload for a successful registration
type RegisterResponse struct {
	Success    bool   `json:"success"`
	Name       string `json:"name"`
	StudentID  string `json:"student_id"`
	Registered int    `json:"registered"`
}

// Register handles POST /api/v1/register. The request is a multipart form
// with an image part plus name, student_id, email, and phone fields.
// Identity and photo are validated before the store is touched; a rejected
// registration changes nothing.
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(faceclient.MaxImageBytes); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	identity := store.Identity{
		Name:      r.FormValue("name"),
		StudentID: r.FormValue("student_id"),
		Email:     r.FormValue("email"),
		Phone:     r.FormValue("phone"),
	}
	if err := store.ValidateIdentity(identity); err != nil {
		respondDomainError(w, err)
		return
	}

	image, filename, err := readImagePart(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	encoding, err := h.embedder.Embed(r.Context(), image, filename)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if err := h.store.Append(encoding, identity); err != nil {
		respondDomainError(w, err)
		return
	}

	log.Printf("registered face for %s (%s)", sanitizeForLog(identity.Name), sanitizeForLog(identity.StudentID))

	respondJSON(w, http.StatusCreated, RegisterResponse{
		Success:    true,
		Name:       identity.Name,
		StudentID:  identity.StudentID,
		Registered: h.store.Count(),
	})
}
