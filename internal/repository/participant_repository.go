package repository

import (
	"fmt"

	"private-scribe-server/internal/domain"

	"gorm.io/gorm"
)

type ParticipantRepository interface {
	Create(participant *domain.Participant) error
	FindByID(id string) (*domain.Participant, error)
	FindByIDs(ids []string) (map[string]*domain.Participant, error)
	Update(participant *domain.Participant) error
	ListByAuthor(authorID string) ([]*domain.Participant, error)
}

type participantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(participant *domain.Participant) error {
	if err := r.db.Create(participant).Error; err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *participantRepository) FindByID(id string) (*domain.Participant, error) {
	var participant domain.Participant
	if err := r.db.Where("id = ?", id).First(&participant).Error; err != nil {
		return nil, findErr(err, "participant", id)
	}
	return &participant, nil
}

func (r *participantRepository) FindByIDs(ids []string) (map[string]*domain.Participant, error) {
	found := make(map[string]*domain.Participant, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var participants []*domain.Participant
	if err := r.db.Where("id IN ?", ids).Find(&participants).Error; err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	for _, p := range participants {
		found[p.ID] = p
	}
	return found, nil
}

func (r *participantRepository) Update(participant *domain.Participant) error {
	err := r.db.Model(participant).Select("first_name", "last_name", "email", "updated_at").Updates(participant).Error
	if err != nil {
		return fmt.Errorf("failed to update participant %s: %w", participant.ID, err)
	}
	return nil
}

func (r *participantRepository) ListByAuthor(authorID string) ([]*domain.Participant, error) {
	var participants []*domain.Participant
	err := r.db.Where("author_id = ?", authorID).
		Order("last_name ASC, first_name ASC").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}
