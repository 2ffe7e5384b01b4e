package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sting421/Navigram-API/internal/middleware"
	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/services"
)

type FlagHandler struct {
	moderationService *services.ModerationService
}

func NewFlagHandler(moderationService *services.ModerationService) *FlagHandler {
	return &FlagHandler{moderationService: moderationService}
}

// Report files a flag. An over-limit report still returns the conflict
// status after the forced hide has been committed.
func (h *FlagHandler) Report(w http.ResponseWriter, r *http.Request) {
	reporterID := middleware.GetUserID(r.Context())

	var req models.CreateFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	flag, err := h.moderationService.Report(r.Context(), req.MemoryID, reporterID, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(flag))
}

func (h *FlagHandler) Status(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryId")
	status, err := h.moderationService.FlagStatus(r.Context(), memoryID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(status))
}

func (h *FlagHandler) ListForMemory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryId")
	flags, err := h.moderationService.FlagsForMemory(r.Context(), memoryID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(flags))
}

func (h *FlagHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	flags, err := h.moderationService.AllFlags(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(flags))
}

func (h *FlagHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	flagID := chi.URLParam(r, "flagId")
	if err := h.moderationService.Resolve(r.Context(), flagID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Flag resolved"}))
}

// Approve clears the flagged state of a memory without touching its
// visibility history.
func (h *FlagHandler) Approve(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryId")
	if err := h.moderationService.Approve(r.Context(), memoryID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Memory approved"}))
}

// Hide forces a memory private regardless of flag count.
func (h *FlagHandler) Hide(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryId")
	if err := h.moderationService.Hide(r.Context(), memoryID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Memory hidden"}))
}
