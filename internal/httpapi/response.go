package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// errorBody — единый формат ошибок API.
type errorBody struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError переводит доменную ошибку в HTTP-статус на краю системы;
// ядро о статусах ничего не знает.
func writeError(w http.ResponseWriter, logger *log.Entry, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
	}
	writeJSON(w, status, errorBody{
		Message:    err.Error(),
		StatusCode: status,
		Error:      http.StatusText(status),
	})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
