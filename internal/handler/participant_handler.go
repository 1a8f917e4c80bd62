package handler

import (
	"net/http"

	"private-scribe-server/internal/domain"
	"private-scribe-server/internal/middleware"
	"private-scribe-server/internal/service"
	"private-scribe-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type ParticipantHandler struct {
	service  *service.ParticipantService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewParticipantHandler(service *service.ParticipantService, logger zerolog.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

func (h *ParticipantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateParticipantRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	participant, err := h.service.Create(r.Context(), middleware.GetUserID(r), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Created(w, participant)
}

func (h *ParticipantHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	participants, err := h.service.ListByUser(r.Context(), mux.Vars(r)["userId"], middleware.GetUserID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, participants)
}
