package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Sting421/Navigram-API/internal/middleware"
	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/services"
)

const defaultNearbyRadiusMeters = 1000.0

type MemoryHandler struct {
	memoryService *services.MemoryService
	userService   *services.UserService
}

func NewMemoryHandler(memoryService *services.MemoryService, userService *services.UserService) *MemoryHandler {
	return &MemoryHandler{memoryService: memoryService, userService: userService}
}

func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	dto, err := h.memoryService.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(dto))
}

func (h *MemoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryId")
	viewerID := middleware.GetUserID(r.Context())

	dto, err := h.memoryService.Get(r.Context(), memoryID, viewerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(dto))
}

func (h *MemoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryId")
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req models.UpdateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	dto, err := h.memoryService.Update(r.Context(), memoryID, actor, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(dto))
}

func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryId")
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.memoryService.Delete(r.Context(), memoryID, actor); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Memory deleted"}))
}

// Nearby serves the proximity feed. Anonymous callers get public memories
// only; authenticated callers additionally see their own and followed
// content.
func (h *MemoryHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lat, err1 := strconv.ParseFloat(query.Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(query.Get("lng"), 64)
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("lat and lng are required"))
		return
	}
	radius := defaultNearbyRadiusMeters
	if raw := query.Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid radius"))
			return
		}
		radius = parsed
	}

	viewerID := middleware.GetUserID(r.Context())
	results, err := h.memoryService.Nearby(r.Context(), lat, lng, radius, viewerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(results))
}

func (h *MemoryHandler) Feed(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	results, err := h.memoryService.Feed(r.Context(), viewerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(results))
}

func (h *MemoryHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "userId")
	viewerID := middleware.GetUserID(r.Context())

	results, err := h.memoryService.ListByOwner(r.Context(), ownerID, viewerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(results))
}

func (h *MemoryHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryId")
	userID := middleware.GetUserID(r.Context())

	if err := h.memoryService.Upvote(r.Context(), memoryID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Upvoted"}))
}

func (h *MemoryHandler) RemoveUpvote(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryId")
	userID := middleware.GetUserID(r.Context())

	if err := h.memoryService.RemoveUpvote(r.Context(), memoryID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Upvote removed"}))
}

func (h *MemoryHandler) actor(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return nil, false
	}
	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return user, true
}
