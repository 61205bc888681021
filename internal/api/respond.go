// Package api exposes the rideshare services over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wayfare/backend/internal/logger"
	"github.com/wayfare/backend/internal/models"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDeleted(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Value   any    `json:"value,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInUse), errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrMissingField),
		errors.Is(err, models.ErrInvalidFormat),
		errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, models.ErrInvalidCapacity),
		errors.Is(err, models.ErrInvalidReference):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError renders err as an error body. Anything that is not a known kind
// is logged and reported as a generic 500.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", err)
		writeJSON(w, status, errorBody{Message: "internal server error", Reason: "internal"})
		return
	}

	body := errorBody{Message: err.Error()}
	var fe *models.FieldError
	if errors.As(err, &fe) {
		body.Message = fe.Error()
		body.Reason = fe.Reason()
		if fe.Kind != models.ErrNotFound && fe.Kind != models.ErrInUse && fe.Kind != models.ErrAlreadyExists {
			body.Field = fe.Field
			body.Value = fe.Value
		}
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &models.FieldError{Kind: models.ErrInvalidFormat, Field: typeErr.Field, Value: typeErr.Value}
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &models.FieldError{Kind: models.ErrInvalidFormat, Field: "body", Value: "too large"}
	}
	return &models.FieldError{Kind: models.ErrInvalidFormat, Field: "body", Value: "malformed JSON"}
}

// pathID parses a positive integer URL parameter. Anything else cannot name a row.
func pathID(r *http.Request, param, entity string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, models.NotFoundError(entity, raw)
	}
	return id, nil
}
