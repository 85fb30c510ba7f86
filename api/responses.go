package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"reelspin/service"

	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func decode[T any](r *http.Request) (T, error) {
	var payload T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return payload, fmt.Errorf("invalid request body: %w", err)
	}
	return payload, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps service errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSpinInProgress), errors.Is(err, service.ErrStaleRequest):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidBet), errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrDecisionUnavailable), errors.Is(err, service.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	entry := log.WithFields(log.Fields{
		"path":      r.URL.Path,
		"accountID": accountFrom(r.Context()),
		"status":    status,
		"error":     err,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
		writeError(w, status, http.StatusText(status))
		return
	}
	entry.Debug("Request rejected")
	writeError(w, status, err.Error())
}
