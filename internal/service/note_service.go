package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"private-scribe-server/internal/domain"
	"private-scribe-server/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NoteService struct {
	uow repository.UnitOfWork
}

func NewNoteService(uow repository.UnitOfWork) *NoteService {
	return &NoteService{uow: uow}
}

// ParseNoteDate accepts a calendar date or an RFC 3339 timestamp, keeping
// only the date part.
func ParseNoteDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("must be YYYY-MM-DD or RFC 3339")
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Create persists a note and its participant links in one transaction; any
// failure leaves no note, participant or link rows behind.
func (s *NoteService) Create(ctx context.Context, ownerID string, req *domain.CreateNoteRequest) (*domain.Note, error) {
	noteDate, err := ParseNoteDate(req.NoteDate)
	if err != nil {
		return nil, NewValidationError("noteDate", err.Error())
	}

	noteType := strings.TrimSpace(req.NoteType)
	if noteType == "" {
		noteType = domain.DefaultNoteType
	}

	var templateID *string
	if req.TemplateID != nil && strings.TrimSpace(*req.TemplateID) != "" {
		id := strings.TrimSpace(*req.TemplateID)
		templateID = &id
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	note := &domain.Note{
		ID:                  uuid.New().String(),
		AuthorName:          strings.TrimSpace(req.AuthorName),
		NoteDate:            datatypes.Date(noteDate),
		NoteContentRaw:      req.NoteContentRaw,
		NoteContentMarkdown: req.NoteContentMarkdown,
		NoteType:            noteType,
		Version:             1,
		TemplateID:          templateID,
		AuthorID:            ownerID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = s.uow.Do(ctx, func(repos *repository.Repositories) error {
		if templateID != nil {
			template, err := repos.Templates.FindByID(*templateID)
			if err != nil {
				return notFoundAs(err, ErrTemplateNotFound)
			}
			// other users' and deleted templates cannot be bound
			if template.AuthorID != ownerID || template.IsDeleted {
				return ErrTemplateNotFound
			}
		}

		if err := repos.Notes.Create(note); err != nil {
			return err
		}

		participants, err := upsertParticipants(repos, ownerID, req.Participants, now)
		if err != nil {
			return err
		}
		if err := linkParticipants(repos, note.ID, participants); err != nil {
			return err
		}
		note.Participants = participants
		return nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) GetByID(ctx context.Context, requesterID, noteID string) (*domain.Note, error) {
	var note *domain.Note
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		note, err = ownedNote(repos, requesterID, noteID)
		if err != nil {
			return err
		}
		note.Participants, err = loadParticipants(repos, note.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// ListByUser returns the list projection, which carries participant ids only.
func (s *NoteService) ListByUser(ctx context.Context, userID, requesterID string) ([]*domain.NoteSummary, error) {
	if userID != requesterID {
		return nil, ErrAccessDenied
	}

	var summaries []*domain.NoteSummary
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		notes, err := repos.Notes.ListByAuthor(userID)
		if err != nil {
			return err
		}

		noteIDs := make([]string, 0, len(notes))
		for _, n := range notes {
			noteIDs = append(noteIDs, n.ID)
		}
		links, err := repos.NoteParticipants.ParticipantIDsByNotes(noteIDs)
		if err != nil {
			return err
		}

		summaries = make([]*domain.NoteSummary, 0, len(notes))
		for _, n := range notes {
			summaries = append(summaries, n.Summary(links[n.ID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// Update changes the markdown, the note type and, when given, replaces the
// whole participant list. Every call bumps the version by one.
func (s *NoteService) Update(ctx context.Context, requesterID, noteID string, req *domain.UpdateNoteRequest) (*domain.Note, error) {
	var note *domain.Note
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		note, err = ownedNote(repos, requesterID, noteID)
		if err != nil {
			return err
		}

		if req.NoteContentMarkdown != nil {
			note.NoteContentMarkdown = *req.NoteContentMarkdown
		}
		if req.NoteType != nil {
			note.NoteType = strings.TrimSpace(*req.NoteType)
			if note.NoteType == "" {
				note.NoteType = domain.DefaultNoteType
			}
		}

		note.Version++
		note.UpdatedAt = nextUpdate(note.UpdatedAt)

		if req.Participants != nil {
			participants, err := upsertParticipants(repos, requesterID, *req.Participants, note.UpdatedAt)
			if err != nil {
				return err
			}
			if err := linkParticipants(repos, note.ID, participants); err != nil {
				return err
			}
			note.Participants = participants
		} else {
			note.Participants, err = loadParticipants(repos, note.ID)
			if err != nil {
				return err
			}
		}

		return repos.Notes.Update(note)
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, requesterID, noteID string) (*domain.Note, error) {
	return s.toggle(ctx, requesterID, noteID, func(n *domain.Note) bool {
		return n.MarkDeleted(time.Now().UTC())
	})
}

func (s *NoteService) Restore(ctx context.Context, requesterID, noteID string) (*domain.Note, error) {
	return s.toggle(ctx, requesterID, noteID, func(n *domain.Note) bool {
		return n.Restore()
	})
}

func (s *NoteService) toggle(ctx context.Context, requesterID, noteID string, apply func(*domain.Note) bool) (*domain.Note, error) {
	var note *domain.Note
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		note, err = ownedNote(repos, requesterID, noteID)
		if err != nil {
			return err
		}
		note.Participants, err = loadParticipants(repos, note.ID)
		if err != nil {
			return err
		}
		if !apply(note) {
			return nil
		}
		note.UpdatedAt = nextUpdate(note.UpdatedAt)
		return repos.Notes.Update(note)
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

func ownedNote(repos *repository.Repositories, requesterID, noteID string) (*domain.Note, error) {
	note, err := repos.Notes.FindByID(noteID)
	if err != nil {
		return nil, notFoundAs(err, ErrNoteNotFound)
	}
	if note.AuthorID != requesterID {
		return nil, ErrAccessDenied
	}
	return note, nil
}
