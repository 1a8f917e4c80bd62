package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"private-scribe-server/internal/domain"
	"private-scribe-server/internal/formatting"
	"private-scribe-server/internal/repository"

	"github.com/rs/zerolog"
)

type FormattingService struct {
	uow       repository.UnitOfWork
	formatter formatting.Formatter
	logger    zerolog.Logger
}

func NewFormattingService(uow repository.UnitOfWork, formatter formatting.Formatter, logger zerolog.Logger) *FormattingService {
	return &FormattingService{
		uow:       uow,
		formatter: formatter,
		logger:    logger.With().Str("component", "formatting").Logger(),
	}
}

// Format renders the transcript into the requester's template, or the default
// clinical layout when no template is named. The model is called once.
func (s *FormattingService) Format(ctx context.Context, requesterID string, req *domain.MarkdownRequest) (string, error) {
	details := req.NoteDetails

	meta := formatting.Metadata{AuthorName: strings.TrimSpace(details.AuthorName)}
	if strings.TrimSpace(details.NoteDate) != "" {
		date, err := ParseNoteDate(details.NoteDate)
		if err != nil {
			return "", NewValidationError("note_details.note_date", err.Error())
		}
		meta.NoteDate = date
	}
	for _, p := range details.Participants {
		if name := strings.TrimSpace(p.FirstName + " " + p.LastName); name != "" {
			meta.Participants = append(meta.Participants, name)
		}
	}

	content := formatting.DefaultTemplate
	if id := strings.TrimSpace(details.TemplateID); id != "" {
		err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
			template, err := ownedTemplate(repos, requesterID, id)
			if err != nil {
				return err
			}
			// deleted templates are out of service, as on note create
			if template.IsDeleted {
				return ErrTemplateNotFound
			}
			content = template.Content
			return nil
		})
		if err != nil {
			return "", err
		}
	}

	prompt := formatting.BuildPrompt(content, req.RawNote, meta)

	start := time.Now()
	out, err := s.formatter.Format(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Msg("formatting call failed")
		return "", fmt.Errorf("%w: %w", ErrFormattingFailed, err)
	}
	s.logger.Debug().Dur("took", time.Since(start)).Str("dialect", string(formatting.DetectDialect(content))).Msg("formatted")

	markdown := formatting.StripCodeFence(out)
	if formatting.DetectDialect(content) == formatting.PlaceholderDialect {
		markdown = formatting.ClearPlaceholders(markdown)
	}
	return markdown, nil
}
