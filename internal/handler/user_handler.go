package handler

import (
	"net/http"

	"private-scribe-server/internal/service"
	"private-scribe-server/pkg/response"

	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService *service.UserService
	logger      zerolog.Logger
}

func NewUserHandler(userService *service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, users)
}
