package service

import (
	"context"
	"fmt"
	"strings"

	"private-scribe-server/internal/transcription"

	"github.com/rs/zerolog"
)

const canonicalFormat = "wav"

type TranscriptionService struct {
	transcriber transcription.Transcriber
	transcoder  transcription.Transcoder
	logger      zerolog.Logger
}

func NewTranscriptionService(transcriber transcription.Transcriber, transcoder transcription.Transcoder, logger zerolog.Logger) *TranscriptionService {
	return &TranscriptionService{
		transcriber: transcriber,
		transcoder:  transcoder,
		logger:      logger.With().Str("component", "transcription").Logger(),
	}
}

// Transcribe returns the text spoken in audio. Anything other than WAV is
// converted first; an empty string means no speech was recognized.
func (s *TranscriptionService) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	if len(audio) == 0 {
		return "", NewValidationError("file", "empty upload")
	}

	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if format == "" {
		format = canonicalFormat
	}

	if format != canonicalFormat {
		wav, err := s.transcoder.ToWAV(ctx, audio, format)
		if err != nil {
			s.logger.Error().Err(err).Str("format", format).Msg("transcode failed")
			return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
		}
		audio = wav
	}

	text, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		s.logger.Error().Err(err).Msg("speech-to-text failed")
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	text = strings.TrimSpace(text)
	s.logger.Debug().Str("format", format).Int("bytes", len(audio)).Int("chars", len(text)).Msg("transcribed")
	return text, nil
}
