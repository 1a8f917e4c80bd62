package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"private-scribe-server/internal/service"
	"private-scribe-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it. It writes the 400 itself
// and reports false on failure.
func decode(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.ValidationError(w, "Validation failed", fieldErrors(verrs))
			return false
		}
		response.BadRequest(w, err.Error())
		return false
	}
	return true
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		// drop the struct name prefix
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		details[field] = msg
	}
	return details
}

// writeServiceError maps a service error onto the response taxonomy.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(w, "Validation failed", verr.Fields)
	case errors.Is(err, service.ErrNoteNotFound),
		errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrParticipantNotFound),
		errors.Is(err, service.ErrUserNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		response.Forbidden(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(w, err.Error())
	case errors.Is(err, service.ErrTranscriptionFailed):
		logger.Error().Err(err).Msg("transcription failed")
		response.BadGateway(w, service.ErrTranscriptionFailed.Error())
	case errors.Is(err, service.ErrFormattingFailed):
		logger.Error().Err(err).Msg("formatting failed")
		response.BadGateway(w, service.ErrFormattingFailed.Error())
	default:
		logger.Error().Err(err).Msg("request failed")
		response.InternalError(w, "Internal server error")
	}
}
