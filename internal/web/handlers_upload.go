package web

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Achyut2001/Data-provider-Service/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// multipartOverhead allows for form boundaries and fields around the file.
const multipartOverhead = 1 << 20

// handleUpload ingests one .xlsx workbook and returns the upload summary.
// The multipart form carries the workbook in "file" and an optional
// "uploadedBy" submitter name.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, errFileTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	switch {
	case header.Size == 0:
		respondError(w, r, errEmptyFile, http.StatusBadRequest)
		return
	case header.Size > maxSize:
		respondError(w, r, errFileTooLarge, http.StatusRequestEntityTooLarge)
		return
	case !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx"):
		respondError(w, r, errNotXLSX, http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	submitter := strings.TrimSpace(r.FormValue("uploadedBy"))
	if submitter == "" {
		submitter = s.cfg.Upload.DefaultSubmitter
	}

	ctx := withRequestMetadata(r.Context(), r)
	summary, err := s.service.ProcessUpload(ctx, core.UploadRequest{
		FileName:    filepath.Base(header.Filename),
		SubmittedBy: submitter,
		Data:        data,
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleUploadStatus returns the full audit of one upload.
func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadID")
	if _, err := uuid.Parse(uploadID); err != nil {
		respondError(w, r, core.ErrUploadNotFound, http.StatusNotFound)
		return
	}

	audit, err := s.service.GetUploadStatus(r.Context(), uploadID)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, audit)
}

// handleListUploads lists audits in the state named by ?status=.
func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	state, ok := core.ParseAuditState(r.URL.Query().Get("status"))
	if !ok {
		respondError(w, r, errInvalidUploadState, http.StatusBadRequest)
		return
	}

	audits, err := s.service.ListUploads(r.Context(), state)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, audits)
}
