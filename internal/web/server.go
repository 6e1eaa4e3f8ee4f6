// Package web is the HTTP surface: a JSON API over the meeting service,
// the suggestion matcher, the bulk importer, and a websocket live feed.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"visitbook/internal/bulkimport"
	"visitbook/internal/service"
	"visitbook/internal/suggest"
)

type Server struct {
	service   *service.MeetingService
	suggester *suggest.Matcher
	importer  *bulkimport.Importer
	// suggestWait bounds how long a suggestion request waits for its
	// debounced lookup before reporting itself superseded.
	suggestWait time.Duration
	mux         *http.ServeMux
	logger      *slog.Logger
}

func NewServer(
	svc *service.MeetingService,
	suggester *suggest.Matcher,
	importer *bulkimport.Importer,
	suggestWindow time.Duration,
	logger *slog.Logger,
) *Server {
	s := &Server{
		service:     svc,
		suggester:   suggester,
		importer:    importer,
		suggestWait: 2*suggestWindow + 100*time.Millisecond,
		mux:         http.NewServeMux(),
		logger:      logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/meetings", s.handleListMeetings)
	s.mux.HandleFunc("POST /api/meetings", s.handleCreateMeeting)
	s.mux.HandleFunc("GET /api/meetings/{id}", s.handleGetMeeting)
	s.mux.HandleFunc("PATCH /api/meetings/{id}", s.handleUpdateMeeting)
	s.mux.HandleFunc("DELETE /api/meetings/{id}", s.handleDeleteMeeting)
	s.mux.HandleFunc("GET /api/meetings/watch", s.handleWatchMeetings)
	s.mux.HandleFunc("GET /api/meetings/{id}/report", s.handleReport)
	s.mux.HandleFunc("POST /api/meetings/{id}/properties/{idx}/photos", s.handleUploadPhoto)
	s.mux.HandleFunc("DELETE /api/meetings/{id}/properties/{idx}/photos/{locator...}", s.handleDeletePhoto)
	s.mux.HandleFunc("GET /api/suggest", s.handleSuggest)
	s.mux.HandleFunc("POST /api/import", s.handleImport)
	s.mux.HandleFunc("GET /api/sms-templates", s.handleSmsTemplates)
	s.mux.HandleFunc("GET /media/{locator...}", s.handleGetPhoto)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// respondJSON writes v as a JSON response body.
func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// respondError writes a JSON error body with a user-facing message.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// readJSON decodes the request body into v, rejecting unknown fields.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
