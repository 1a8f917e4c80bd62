package handler

import (
	"encoding/json"
	"net/http"

	"private-scribe-server/internal/domain"
	"private-scribe-server/internal/middleware"
	"private-scribe-server/internal/service"
	"private-scribe-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	authService *service.AuthService
	validator   *validator.Validate
	logger      zerolog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   newValidator(),
		logger:      logger,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Created(w, user.Summary())
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	loginResp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, loginResp)
}

// refreshToken takes the token from the JSON body, falling back to the
// Authorization header.
func refreshToken(r *http.Request) string {
	var req domain.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	token, _ := middleware.BearerToken(r)
	return token
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := refreshToken(r)
	if token == "" {
		response.ValidationError(w, "Validation failed", map[string]string{"refresh_token": "required"})
		return
	}

	tokenResp, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, tokenResp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := refreshToken(r); token != "" {
		if err := h.authService.Logout(r.Context(), token); err != nil {
			h.logger.Error().Err(err).Msg("failed to revoke refresh session")
		}
	}

	response.Message(w, http.StatusOK, "Logged out successfully")
}

// ValidateToken answers 200 for a live access token; the auth middleware has
// already rejected anything else.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.BearerToken(r)
	identity, err := h.authService.ValidateToken(token)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, identity)
}
