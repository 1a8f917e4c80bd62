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

type TemplateHandler struct {
	service  *service.TemplateService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewTemplateHandler(service *service.TemplateService, logger zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTemplateRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	template, err := h.service.Create(r.Context(), middleware.GetUserID(r), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Created(w, template)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	template, err := h.service.GetByID(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, template)
}

func (h *TemplateHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.ListByUser(r.Context(), mux.Vars(r)["userId"], middleware.GetUserID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, templates)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateTemplateRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	template, err := h.service.Update(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, template)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	template, err := h.service.Delete(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, template)
}

func (h *TemplateHandler) Restore(w http.ResponseWriter, r *http.Request) {
	template, err := h.service.Restore(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, template)
}
