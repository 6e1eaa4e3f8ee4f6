package web

import (
	"errors"
	"net/http"
	"strings"

	"visitbook/internal/domain"
	"visitbook/internal/meeting"
	"visitbook/internal/sms"
)

const maxCustomerNameLen = 200

var validPurposes = map[string]bool{
	domain.PurposeLease: true,
	domain.PurposeRent:  true,
	domain.PurposeSale:  true,
}

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	meetings, err := s.service.ListMeetings(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list meetings")
		s.logger.Error("list meetings failed", "error", err)
		return
	}
	if meetings == nil {
		meetings = []domain.Meeting{}
	}
	s.respondJSON(w, http.StatusOK, meetings)
}

type createMeetingRequest struct {
	CustomerName string                 `json:"customerName"`
	Date         string                 `json:"date"`
	Purpose      string                 `json:"purpose"`
	Properties   []domain.PropertyVisit `json:"properties"`
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req createMeetingRequest
	if err := readJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		s.respondError(w, http.StatusBadRequest, "customer name required")
		return
	}
	if len(req.CustomerName) > maxCustomerNameLen {
		s.respondError(w, http.StatusBadRequest, "customer name too long")
		return
	}
	if req.Purpose == "" {
		req.Purpose = domain.PurposeLease
	}
	if !validPurposes[req.Purpose] {
		s.respondError(w, http.StatusBadRequest, "unknown purpose")
		return
	}

	created, err := s.service.CreateMeeting(r.Context(), domain.Meeting{
		CustomerName: req.CustomerName,
		Date:         req.Date,
		Purpose:      req.Purpose,
		Properties:   req.Properties,
	})
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to create meeting")
		s.logger.Error("create meeting failed", "error", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetMeeting(w http.ResponseWriter, r *http.Request) {
	m, err := s.service.GetMeeting(r.Context(), r.PathValue("id"))
	if errors.Is(err, meeting.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "meeting not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to get meeting")
		s.logger.Error("get meeting failed", "id", r.PathValue("id"), "error", err)
		return
	}
	s.respondJSON(w, http.StatusOK, m)
}

type updateMeetingRequest struct {
	CustomerName *string                 `json:"customerName"`
	Date         *string                 `json:"date"`
	Purpose      *string                 `json:"purpose"`
	Status       *string                 `json:"status"`
	Properties   *[]domain.PropertyVisit `json:"properties"`
}

func (s *Server) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	var req updateMeetingRequest
	if err := readJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Purpose != nil && !validPurposes[*req.Purpose] {
		s.respondError(w, http.StatusBadRequest, "unknown purpose")
		return
	}

	updated, err := s.service.UpdateMeeting(r.Context(), r.PathValue("id"), meeting.Patch{
		CustomerName: req.CustomerName,
		Date:         req.Date,
		Purpose:      req.Purpose,
		Status:       req.Status,
		Properties:   req.Properties,
	})
	if errors.Is(err, meeting.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "meeting not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to update meeting")
		s.logger.Error("update meeting failed", "id", r.PathValue("id"), "error", err)
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMeeting(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteMeeting(r.Context(), r.PathValue("id"))
	if errors.Is(err, meeting.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "meeting not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to delete meeting")
		s.logger.Error("delete meeting failed", "id", r.PathValue("id"), "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSmsTemplates(w http.ResponseWriter, r *http.Request) {
	customer := r.URL.Query().Get("customer")
	contact := r.URL.Query().Get("contact")
	s.respondJSON(w, http.StatusOK, sms.Render(customer, contact))
}
