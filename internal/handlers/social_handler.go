package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Sting421/Navigram-API/internal/models"
	"github.com/Sting421/Navigram-API/internal/services"
)

// SocialAuthHandler exchanges a provider-issued ID token for an API token,
// creating the account on first sight.
type SocialAuthHandler struct {
	userService   *services.UserService
	provider      services.IdentityProvider
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewSocialAuthHandler(userService *services.UserService, provider services.IdentityProvider, jwtSecret string, jwtExpiration time.Duration) *SocialAuthHandler {
	return &SocialAuthHandler{
		userService:   userService,
		provider:      provider,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

type socialLoginRequest struct {
	IDToken string `json:"id_token"`
}

func (h *SocialAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req socialLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("ID token is required"))
		return
	}

	info, err := h.provider.Verify(r.Context(), req.IDToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := h.userService.FindOrCreateSocialUser(r.Context(), info)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Social accounts are subject to the same ban lifecycle as password
	// accounts.
	usable, err := h.userService.IsUsable(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !usable {
		writeServiceError(w, services.ErrAccountDisabled)
		return
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(h.jwtExpiration).Unix(),
		"iat":     time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate token"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.AuthResponse{
		Token: token,
		User:  *user,
	}))
}
