package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/store"
)

// ClassesHandler serves the public class list
type ClassesHandler struct {
	registry *store.ClassRegistry
}

// NewClassesHandler creates a new classes handler
func NewClassesHandler(registry *store.ClassRegistry) *ClassesHandler {
	return &ClassesHandler{registry: registry}
}

// List handles GET /api/v1/classes
func (h *ClassesHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{
		"classes": h.registry.Names(),
	})
}
