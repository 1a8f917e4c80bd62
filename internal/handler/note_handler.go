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

type NoteHandler struct {
	service  *service.NoteService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewNoteHandler(service *service.NoteService, logger zerolog.Logger) *NoteHandler {
	return &NoteHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	note, err := h.service.Create(r.Context(), middleware.GetUserID(r), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Created(w, note)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.service.GetByID(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.ListByUser(r.Context(), mux.Vars(r)["userId"], middleware.GetUserID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, notes)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateNoteRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	note, err := h.service.Update(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	note, err := h.service.Delete(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Restore(w http.ResponseWriter, r *http.Request) {
	note, err := h.service.Restore(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, note)
}
