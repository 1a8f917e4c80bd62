package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"private-scribe-server/internal/domain"
	"private-scribe-server/internal/repository"

	"github.com/google/uuid"
)

type ParticipantService struct {
	uow repository.UnitOfWork
}

func NewParticipantService(uow repository.UnitOfWork) *ParticipantService {
	return &ParticipantService{uow: uow}
}

func (s *ParticipantService) Create(ctx context.Context, ownerID string, req *domain.CreateParticipantRequest) (*domain.Participant, error) {
	now := time.Now().UTC()
	participant := &domain.Participant{
		ID:        uuid.New().String(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		AuthorID:  ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		return repos.Participants.Create(participant)
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *ParticipantService) ListByUser(ctx context.Context, userID, requesterID string) ([]*domain.Participant, error) {
	if userID != requesterID {
		return nil, ErrAccessDenied
	}

	var participants []*domain.Participant
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		participants, err = repos.Participants.ListByAuthor(userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return participants, nil
}

// upsertParticipants resolves a note's participant list inside the caller's
// transaction. Bare {id} entries must name a participant the owner already
// has; full entries overwrite the participant with that id in place or create
// it. Repeated ids keep their first position.
func upsertParticipants(repos *repository.Repositories, ownerID string, inputs []domain.ParticipantInput, now time.Time) ([]domain.Participant, error) {
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if in.ID != "" {
			ids = append(ids, in.ID)
		}
	}
	existing, err := repos.Participants.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	resolved := make([]domain.Participant, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	invalid := make(map[string]string)

	for i, in := range inputs {
		field := fmt.Sprintf("participants[%d]", i)
		if in.ID != "" {
			if seen[in.ID] {
				continue
			}
			seen[in.ID] = true
		}

		current := existing[in.ID]

		if in.IsReference() {
			if current == nil {
				invalid[field+".id"] = "unknown participant"
				continue
			}
			if current.AuthorID != ownerID {
				return nil, ErrAccessDenied
			}
			resolved = append(resolved, *current)
			continue
		}

		firstName := strings.TrimSpace(in.FirstName)
		if firstName == "" {
			invalid[field+".firstName"] = "required"
			continue
		}

		if current != nil {
			if current.AuthorID != ownerID {
				return nil, ErrAccessDenied
			}
			current.FirstName = firstName
			current.LastName = strings.TrimSpace(in.LastName)
			current.Email = strings.TrimSpace(in.Email)
			current.UpdatedAt = now
			if err := repos.Participants.Update(current); err != nil {
				return nil, err
			}
			resolved = append(resolved, *current)
			continue
		}

		id := in.ID
		if id == "" {
			id = uuid.New().String()
		}
		created := &domain.Participant{
			ID:        id,
			FirstName: firstName,
			LastName:  strings.TrimSpace(in.LastName),
			Email:     strings.TrimSpace(in.Email),
			AuthorID:  ownerID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.Participants.Create(created); err != nil {
			return nil, err
		}
		resolved = append(resolved, *created)
	}

	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}
	return resolved, nil
}

// linkParticipants replaces a note's join rows with participants in order.
func linkParticipants(repos *repository.Repositories, noteID string, participants []domain.Participant) error {
	if err := repos.NoteParticipants.UnlinkAll(noteID); err != nil {
		return err
	}
	for pos, p := range participants {
		if err := repos.NoteParticipants.Link(noteID, p.ID, pos); err != nil {
			return err
		}
	}
	return nil
}

// loadParticipants returns a note's participants in link order.
func loadParticipants(repos *repository.Repositories, noteID string) ([]domain.Participant, error) {
	ids, err := repos.NoteParticipants.ParticipantIDs(noteID)
	if err != nil {
		return nil, err
	}
	byID, err := repos.Participants.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	participants := make([]domain.Participant, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			participants = append(participants, *p)
		}
	}
	return participants, nil
}
