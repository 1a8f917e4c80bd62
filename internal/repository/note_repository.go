package repository

import (
	"fmt"

	"private-scribe-server/internal/domain"

	"gorm.io/gorm"
)

type NoteRepository interface {
	Create(note *domain.Note) error
	FindByID(id string) (*domain.Note, error)
	Update(note *domain.Note) error
	ListByAuthor(authorID string) ([]*domain.Note, error)
}

type noteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(note *domain.Note) error {
	if err := r.db.Create(note).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (r *noteRepository) FindByID(id string) (*domain.Note, error) {
	var note domain.Note
	if err := r.db.Where("id = ?", id).First(&note).Error; err != nil {
		return nil, findErr(err, "note", id)
	}
	return &note, nil
}

// Update writes every column; the caller owns version and timestamps.
func (r *noteRepository) Update(note *domain.Note) error {
	if err := r.db.Save(note).Error; err != nil {
		return fmt.Errorf("failed to update note %s: %w", note.ID, err)
	}
	return nil
}

func (r *noteRepository) ListByAuthor(authorID string) ([]*domain.Note, error) {
	var notes []*domain.Note
	err := r.db.Where("author_id = ?", authorID).
		Order("note_date DESC, created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}
