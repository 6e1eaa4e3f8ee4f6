package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"visitbook/internal/bulkimport"
	"visitbook/internal/refstore"
)

// maxImportSize limits an uploaded CSV to 20MB.
const maxImportSize = 20 << 20

// handleImport accepts a CSV upload, either as a multipart form with a
// "file" field or as a raw text/csv body, and replaces the reference store
// contents with it.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := s.importBody(w, r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer func() { _ = body.Close() }()

	result, err := s.importer.Import(r.Context(), body)
	var parseErr *bulkimport.ParseError
	switch {
	case errors.Is(err, bulkimport.ErrEmptyDataset):
		s.respondError(w, http.StatusBadRequest, "no data rows in file")
		return
	case errors.As(err, &parseErr):
		s.respondError(w, http.StatusBadRequest, parseErr.Error())
		return
	case errors.Is(err, refstore.ErrImportAborted):
		s.respondError(w, http.StatusInternalServerError, "import aborted, previous data kept")
		s.logger.Error("import aborted", "error", err)
		return
	case err != nil:
		s.respondError(w, http.StatusInternalServerError, "import failed")
		s.logger.Error("import failed", "error", err)
		return
	}

	s.logger.Info("reference data imported", "count", result.Count)
	s.respondJSON(w, http.StatusOK, map[string]int{"imported": result.Count})
}

func (s *Server) importBody(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return r.Body, nil
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		return nil, fmt.Errorf("invalid multipart form")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing file field")
	}
	return file, nil
}
