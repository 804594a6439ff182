package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/analytics"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/store"
	"github.com/kozaktomas/face-attendance/internal/web/middleware"
)

// AdminHandler handles the admin panel endpoints
type AdminHandler struct {
	auth     middleware.Authenticator
	sessions *middleware.SessionManager
	registry *store.ClassRegistry
	folders  store.FolderCreator
	repo     ledger.Repository
	audit    *AuditLog
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	auth middleware.Authenticator,
	sessions *middleware.SessionManager,
	registry *store.ClassRegistry,
	folders store.FolderCreator,
	repo ledger.Repository,
	audit *AuditLog,
) *AdminHandler {
	return &AdminHandler{
		auth:     auth,
		sessions: sessions,
		registry: registry,
		folders:  folders,
		repo:     repo,
		audit:    audit,
	}
}

// LoginResponse represents a login response
type LoginResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Login handles POST /api/v1/admin/login with an admin code
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if !h.auth.Authenticate(req.Code) {
		respondJSON(w, http.StatusUnauthorized, LoginResponse{
			Success: false,
			Error:   "invalid admin code",
		})
		return
	}

	session, err := h.sessions.CreateSession()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.sessions.SetSessionCookie(w, session)
	h.audit.Record("login", "")

	respondJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt.Format("2006-01-02T15:04:05Z"),
	})
}

// Logout handles POST /api/v1/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetSessionFromRequest(r); session != nil {
		h.sessions.DeleteSession(session.ID)
		h.audit.Record("logout", "")
	}

	h.sessions.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// StatusResponse represents the auth status response
type StatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

// Status handles GET /api/v1/admin/status
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetSessionFromRequest(r)
	if session == nil {
		respondJSON(w, http.StatusOK, StatusResponse{Authenticated: false})
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{
		Authenticated: true,
		ExpiresAt:     session.ExpiresAt.Format("2006-01-02T15:04:05Z"),
	})
}

// AddClass handles POST /api/v1/admin/classes
func (h *AdminHandler) AddClass(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	folderID, err := h.registry.Add(r.Context(), req.Name, h.folders)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.audit.Record("class_added", req.Name)

	respondJSON(w, http.StatusCreated, map[string]string{
		"name":      req.Name,
		"folder_id": folderID,
	})
}

// RemoveClass handles DELETE /api/v1/admin/classes/{class}
func (h *AdminHandler) RemoveClass(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "class")
	if err := h.registry.Remove(name); err != nil {
		respondDomainError(w, err)
		return
	}
	h.audit.Record("class_removed", name)

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Dashboard handles GET /api/v1/admin/dashboard?class=...&from=...&to=...
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	class, err := h.registry.Resolve(r.URL.Query().Get("class"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	from, to, err := parseDayRange(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	events, err := h.repo.Rows(r.Context(), class)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	dashboard, err := analytics.BuildDashboard(events, from, to)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}

// Log handles GET /api/v1/admin/log?class=... and returns the raw ledger rows
func (h *AdminHandler) Log(w http.ResponseWriter, r *http.Request) {
	class, err := h.registry.Resolve(r.URL.Query().Get("class"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	events, err := h.repo.Rows(r.Context(), class)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	type row struct {
		Timestamp string `json:"timestamp"`
		Name      string `json:"name"`
		StudentID string `json:"student_id"`
		Class     string `json:"class"`
		Status    string `json:"status"`
		ImageURL  string `json:"image_url"`
	}
	rows := make([]row, len(events))
	for i, e := range events {
		rows[i] = row{
			Timestamp: e.Timestamp.Format(ledger.TimestampLayout),
			Name:      e.Name,
			StudentID: e.StudentID,
			Class:     e.Class,
			Status:    e.Status,
			ImageURL:  e.ImageURL,
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"class": class,
		"rows":  rows,
	})
}

// Export handles GET /api/v1/admin/export?class=...&from=...&to=... as
// a CSV download. from and to are optional day bounds; the filename
// carries the covered range.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	class, err := h.registry.Resolve(r.URL.Query().Get("class"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	from, to, err := parseDayRange(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	events, err := h.repo.Rows(r.Context(), class)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	events = analytics.FilterRange(events, from, to)
	if len(events) == 0 {
		respondDomainError(w, ledger.ErrNoRows)
		return
	}

	// Open bounds fall back to the days actually exported.
	lo, hi := ledger.DayBounds(events)
	if from == "" {
		from = lo
	}
	if to == "" {
		to = hi
	}

	h.audit.Record("export", class)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+ledger.ExportFilename(class, from, to)+"\"")
	_ = ledger.WriteCSV(w, events)
}

// Audit handles GET /api/v1/admin/audit
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"entries": h.audit.Entries(),
	})
}
