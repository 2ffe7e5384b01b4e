package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sting421/Navigram-API/internal/middleware"
	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/services"
)

type CommentHandler struct {
	commentService *services.CommentService
	userService    *services.UserService
}

func NewCommentHandler(commentService *services.CommentService, userService *services.UserService) *CommentHandler {
	return &CommentHandler{commentService: commentService, userService: userService}
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.GetUserID(r.Context())

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	comment, err := h.commentService.Add(r.Context(), req.MemoryID, authorID, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(comment))
}

func (h *CommentHandler) ListForMemory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryId")
	comments, err := h.commentService.ListByMemory(r.Context(), memoryID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(comments))
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentId")
	userID := middleware.GetUserID(r.Context())

	actor, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.commentService.Delete(r.Context(), commentID, actor); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Comment deleted"}))
}
