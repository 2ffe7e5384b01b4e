package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/services"
)

// AdminHandler serves the management surface: user administration, ban
// control, moderation queue and dashboard stats. Routes mounting it are
// capability-gated.
type AdminHandler struct {
	userService       *services.UserService
	memoryService     *services.MemoryService
	moderationService *services.ModerationService
}

func NewAdminHandler(userService *services.UserService, memoryService *services.MemoryService, moderationService *services.ModerationService) *AdminHandler {
	return &AdminHandler{
		userService:       userService,
		memoryService:     memoryService,
		moderationService: moderationService,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(users))
}

type updateRoleRequest struct {
	Role models.Role `json:"role"`
}

func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if !models.ValidRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid role"))
		return
	}

	user, err := h.userService.UpdateRole(r.Context(), userID, req.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(user))
}

// Ban applies a permanent or timed ban depending on the request body.
func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req models.BanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	var err error
	if req.Permanent {
		err = h.userService.BanPermanently(r.Context(), userID)
	} else {
		if req.Duration <= 0 {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Duration must be positive"))
			return
		}
		err = h.userService.BanFor(r.Context(), userID, req.Duration, req.Unit)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "User banned"}))
}

func (h *AdminHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if err := h.userService.Suspend(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "User suspended"}))
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if err := h.userService.Delete(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "User deleted"}))
}

func (h *AdminHandler) FlaggedMemories(w http.ResponseWriter, r *http.Request) {
	memories, err := h.memoryService.ListFlagged(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(memories))
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	totalUsers, activeUsers, newUsersToday, err := h.userService.UserStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	totalMemories, newMemoriesToday, flaggedMemories, err := h.memoryService.MemoryStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	totalFlags, err := h.moderationService.FlagCount(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.AdminStats{
		TotalUsers:       totalUsers,
		ActiveUsers:      activeUsers,
		NewUsersToday:    newUsersToday,
		TotalMemories:    totalMemories,
		NewMemoriesToday: newMemoriesToday,
		FlaggedMemories:  flaggedMemories,
		TotalFlags:       totalFlags,
	}))
}
