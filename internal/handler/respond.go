package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"studentdash/internal/report"
	"studentdash/internal/service"
	"studentdash/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service failures to status codes. Unknown errors are
// logged and reported without detail.
func writeServiceError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	if fields := validation.FieldErrors(err); fields != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": fields,
		})
		return
	}

	switch errors.Cause(err) {
	case service.ErrStudentNotFound, report.ErrNoRecords:
		writeError(w, http.StatusNotFound, err.Error())
	case service.ErrInvalidQuery:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
