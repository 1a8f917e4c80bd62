package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"private-scribe-server/internal/domain"
	"private-scribe-server/internal/middleware"
	"private-scribe-server/internal/service"
	"private-scribe-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ScribeHandler serves the two model-backed steps: audio to transcript and
// transcript to Markdown.
type ScribeHandler struct {
	transcription  *service.TranscriptionService
	formatting     *service.FormattingService
	validate       *validator.Validate
	maxUploadBytes int64
	logger         zerolog.Logger
}

func NewScribeHandler(
	transcription *service.TranscriptionService,
	formatting *service.FormattingService,
	maxUploadBytes int64,
	logger zerolog.Logger,
) *ScribeHandler {
	return &ScribeHandler{
		transcription:  transcription,
		formatting:     formatting,
		validate:       newValidator(),
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *ScribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		response.BadRequest(w, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.ValidationError(w, "Validation failed", map[string]string{"file": "required"})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "Could not read upload")
		return
	}

	text, err := h.transcription.Transcribe(r.Context(), audio, filepath.Ext(header.Filename))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, domain.TranscriptionResponse{RawNote: text})
}

func (h *ScribeHandler) GetMarkdown(w http.ResponseWriter, r *http.Request) {
	var req domain.MarkdownRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	markdown, err := h.formatting.Format(r.Context(), middleware.GetUserID(r), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.Success(w, domain.MarkdownResponse{FormattedMarkdown: markdown})
}
