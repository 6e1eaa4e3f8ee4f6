package web

import (
	"net/http"
	"time"

	"visitbook/internal/domain"
)

// handleSuggest bridges the debounced matcher to a request/response cycle.
// A request whose lookup is superseded by a newer one (or dropped on a store
// error) never receives a result; it answers 204 after suggestWait so the
// client knows to keep the newer response instead.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results := make(chan []domain.Building, 1)
	s.suggester.Search(query, func(matches []domain.Building) {
		results <- matches
	})

	select {
	case matches := <-results:
		if matches == nil {
			matches = []domain.Building{}
		}
		s.respondJSON(w, http.StatusOK, matches)
	case <-time.After(s.suggestWait):
		w.WriteHeader(http.StatusNoContent)
	case <-r.Context().Done():
		w.WriteHeader(http.StatusNoContent)
	}
}
