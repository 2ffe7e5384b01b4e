package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeServiceError translates domain errors to HTTP responses. Every
// handler funnels service failures through here so the taxonomy maps to
// status codes in exactly one place.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrMemoryNotFound),
		errors.Is(err, services.ErrFlagNotFound),
		errors.Is(err, services.ErrCommentNotFound):
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse(err.Error()))
	case errors.Is(err, services.ErrUsernameExists),
		errors.Is(err, services.ErrEmailExists),
		errors.Is(err, services.ErrDuplicateUpvote),
		errors.Is(err, services.ErrFlagLimitExceeded):
		writeJSON(w, http.StatusConflict, models.NewErrorResponse(err.Error()))
	case errors.Is(err, services.ErrInvalidBanUnit),
		errors.Is(err, services.ErrInvalidCoordinates),
		errors.Is(err, services.ErrInvalidVisibility),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrSelfFollow):
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse(err.Error()))
	case errors.Is(err, services.ErrAccountDisabled),
		errors.Is(err, services.ErrForbidden):
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Internal server error"))
	}
}
