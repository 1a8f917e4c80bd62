package repository

import (
	"fmt"

	"private-scribe-server/internal/domain"

	"gorm.io/gorm"
)

// NoteParticipantRepository owns the note/participant join table. Links are
// only ever written through it.
type NoteParticipantRepository interface {
	Link(noteID, participantID string, position int) error
	Unlink(noteID, participantID string) error
	UnlinkAll(noteID string) error
	ParticipantIDs(noteID string) ([]string, error)
	ParticipantIDsByNotes(noteIDs []string) (map[string][]string, error)
}

type noteParticipantRepository struct {
	db *gorm.DB
}

func NewNoteParticipantRepository(db *gorm.DB) NoteParticipantRepository {
	return &noteParticipantRepository{db: db}
}

func (r *noteParticipantRepository) Link(noteID, participantID string, position int) error {
	link := &domain.NoteParticipant{
		NoteID:        noteID,
		ParticipantID: participantID,
		Position:      position,
	}
	if err := r.db.Create(link).Error; err != nil {
		return fmt.Errorf("failed to link participant %s to note %s: %w", participantID, noteID, err)
	}
	return nil
}

func (r *noteParticipantRepository) Unlink(noteID, participantID string) error {
	err := r.db.Where("note_id = ? AND participant_id = ?", noteID, participantID).
		Delete(&domain.NoteParticipant{}).Error
	if err != nil {
		return fmt.Errorf("failed to unlink participant %s from note %s: %w", participantID, noteID, err)
	}
	return nil
}

func (r *noteParticipantRepository) UnlinkAll(noteID string) error {
	if err := r.db.Where("note_id = ?", noteID).Delete(&domain.NoteParticipant{}).Error; err != nil {
		return fmt.Errorf("failed to unlink participants from note %s: %w", noteID, err)
	}
	return nil
}

func (r *noteParticipantRepository) ParticipantIDs(noteID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&domain.NoteParticipant{}).
		Where("note_id = ?", noteID).
		Order("position ASC").
		Pluck("participant_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load participants of note %s: %w", noteID, err)
	}
	return ids, nil
}

func (r *noteParticipantRepository) ParticipantIDsByNotes(noteIDs []string) (map[string][]string, error) {
	byNote := make(map[string][]string, len(noteIDs))
	if len(noteIDs) == 0 {
		return byNote, nil
	}

	var links []domain.NoteParticipant
	err := r.db.Where("note_id IN ?", noteIDs).
		Order("note_id ASC, position ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load note participants: %w", err)
	}
	for _, l := range links {
		byNote[l.NoteID] = append(byNote[l.NoteID], l.ParticipantID)
	}
	return byNote, nil
}
