package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/web/handlers"
	"github.com/kozaktomas/face-attendance/internal/web/middleware"
)

func (s *Server) setupRoutes(sessionManager *middleware.SessionManager) {
	// Create handlers
	auditLog := handlers.NewAuditLog()
	authenticator := middleware.NewSecretAuthenticator(s.deps.Config.Admin.Secret)

	registerHandler := handlers.NewRegisterHandler(s.deps.Faces, s.deps.Embedder)
	attendanceHandler := handlers.NewAttendanceHandler(
		s.deps.Faces, s.deps.Registry, s.deps.Embedder, s.deps.Matcher, s.deps.Archive, s.deps.Ledger)
	classesHandler := handlers.NewClassesHandler(s.deps.Registry)
	reportHandler := handlers.NewReportHandler(s.deps.Registry, s.deps.Ledger)
	adminHandler := handlers.NewAdminHandler(
		authenticator, sessionManager, s.deps.Registry, s.deps.Folders, s.deps.Ledger, auditLog)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Public kiosk routes
		r.Post("/register", registerHandler.Register)
		r.Post("/attendance", attendanceHandler.Submit)
		r.Get("/classes", classesHandler.List)
		r.Get("/classes/{class}/report", reportHandler.Student)
		r.Get("/classes/{class}/report/csv", reportHandler.CSV)

		// Admin session routes (no session needed to log in)
		r.Post("/admin/login", adminHandler.Login)
		r.Post("/admin/logout", adminHandler.Logout)
		r.Get("/admin/status", adminHandler.Status)

		// All other admin routes require a session
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessionManager))

			r.Post("/admin/classes", adminHandler.AddClass)
			r.Delete("/admin/classes/{class}", adminHandler.RemoveClass)
			r.Get("/admin/dashboard", adminHandler.Dashboard)
			r.Get("/admin/log", adminHandler.Log)
			r.Get("/admin/export", adminHandler.Export)
			r.Get("/admin/audit", adminHandler.Audit)
		})
	})

	// Placeholder page until a frontend ships
	s.router.Get("/", s.serveIndex)
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("<!DOCTYPE html>\n<html><head><title>Face Attendance</title></head>" +
		"<body><h1>Face Attendance</h1><p>API is running. See /api/v1/health.</p></body></html>\n"))
}
