package web

import (
	"errors"
	"fmt"
	"net/http"

	"visitbook/internal/meeting"
)

// handleReport renders the meeting into a shareable PNG.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	data, err := s.service.BuildReport(r.Context(), id)
	if errors.Is(err, meeting.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "meeting not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to render report")
		s.logger.Error("render report failed", "meeting_id", id, "error", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "meeting-"+id+".png"))
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write report", "meeting_id", id, "error", err)
	}
}
