package repository

import (
	"fmt"

	"private-scribe-server/internal/domain"

	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(template *domain.Template) error
	FindByID(id string) (*domain.Template, error)
	Update(template *domain.Template) error
	ListByAuthor(authorID string) ([]*domain.Template, error)
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(template *domain.Template) error {
	if err := r.db.Create(template).Error; err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (r *templateRepository) FindByID(id string) (*domain.Template, error) {
	var template domain.Template
	if err := r.db.Where("id = ?", id).First(&template).Error; err != nil {
		return nil, findErr(err, "template", id)
	}
	return &template, nil
}

// Update writes every column; the caller owns version and timestamps.
func (r *templateRepository) Update(template *domain.Template) error {
	if err := r.db.Save(template).Error; err != nil {
		return fmt.Errorf("failed to update template %s: %w", template.ID, err)
	}
	return nil
}

func (r *templateRepository) ListByAuthor(authorID string) ([]*domain.Template, error) {
	var templates []*domain.Template
	err := r.db.Where("author_id = ?", authorID).
		Order("updated_at DESC").
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}
