package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"visitbook/internal/meeting"
	"visitbook/internal/mediastore"
	"visitbook/internal/service"
)

// maxPhotoSize limits a single uploaded photo to 10MB.
const maxPhotoSize = 10 << 20

var allowedImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(r.PathValue("idx"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid property index")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing photo field")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read photo")
		return
	}

	mimeType := http.DetectContentType(data)
	if !allowedImageMIME[mimeType] {
		s.respondError(w, http.StatusUnsupportedMediaType, "unsupported image type")
		return
	}

	updated, locator, err := s.service.AttachPhoto(r.Context(), r.PathValue("id"), idx, mimeType, data)
	switch {
	case errors.Is(err, meeting.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "meeting not found")
		return
	case errors.Is(err, service.ErrNoSuchProperty):
		s.respondError(w, http.StatusNotFound, "no such property")
		return
	case errors.Is(err, service.ErrPhotoLimit):
		s.respondError(w, http.StatusConflict, "photo limit reached")
		return
	case err != nil:
		s.respondError(w, http.StatusInternalServerError, "failed to attach photo")
		s.logger.Error("attach photo failed", "meeting_id", r.PathValue("id"), "error", err)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"locator": locator,
		"meeting": updated,
	})
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(r.PathValue("idx"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid property index")
		return
	}

	updated, err := s.service.RemovePhoto(r.Context(), r.PathValue("id"), idx, r.PathValue("locator"))
	switch {
	case errors.Is(err, meeting.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "meeting not found")
		return
	case errors.Is(err, service.ErrNoSuchProperty):
		s.respondError(w, http.StatusNotFound, "no such property")
		return
	case err != nil:
		s.respondError(w, http.StatusInternalServerError, "failed to remove photo")
		s.logger.Error("remove photo failed", "meeting_id", r.PathValue("id"), "error", err)
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	reader, mimeType, err := s.service.OpenPhoto(r.Context(), r.PathValue("locator"))
	if errors.Is(err, mediastore.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "photo not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to open photo")
		s.logger.Error("open photo failed", "locator", r.PathValue("locator"), "error", err)
		return
	}
	defer func() { _ = reader.Close() }()

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("failed to stream photo", "locator", r.PathValue("locator"), "error", err)
	}
}
