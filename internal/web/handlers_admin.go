package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// statusUpdate is the body of a property status change.
type statusUpdate struct {
	Status string `json:"status"`
}

// handleUpdatePropertyStatus moves a property to another lifecycle status.
func (s *Server) handleUpdatePropertyStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, r, errInvalidPropertyID, http.StatusBadRequest)
		return
	}

	var body statusUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		respondError(w, r, errInvalidBody, http.StatusBadRequest)
		return
	}

	prop, err := s.service.UpdatePropertyStatus(r.Context(), id, body.Status)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, prop)
}

// handleRejectedProperties lists properties in the REJECTED status.
func (s *Server) handleRejectedProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.service.RejectedProperties(r.Context())
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, props)
}
