package service

import (
	"context"
	"strings"
	"time"

	"private-scribe-server/internal/domain"
	"private-scribe-server/internal/repository"

	"github.com/google/uuid"
)

type TemplateService struct {
	uow repository.UnitOfWork
}

func NewTemplateService(uow repository.UnitOfWork) *TemplateService {
	return &TemplateService{uow: uow}
}

func (s *TemplateService) Create(ctx context.Context, ownerID string, req *domain.CreateTemplateRequest) (*domain.Template, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	template := &domain.Template{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Content:   req.Content,
		Version:   1,
		AuthorID:  ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		return repos.Templates.Create(template)
	})
	if err != nil {
		return nil, err
	}
	return template, nil
}

func (s *TemplateService) GetByID(ctx context.Context, requesterID, templateID string) (*domain.Template, error) {
	var template *domain.Template
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		template, err = ownedTemplate(repos, requesterID, templateID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return template, nil
}

func (s *TemplateService) ListByUser(ctx context.Context, userID, requesterID string) ([]*domain.Template, error) {
	if userID != requesterID {
		return nil, ErrAccessDenied
	}

	var templates []*domain.Template
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		templates, err = repos.Templates.ListByAuthor(userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// Update overwrites the fields present in req and bumps the version, even
// when req carries no fields.
func (s *TemplateService) Update(ctx context.Context, requesterID, templateID string, req *domain.UpdateTemplateRequest) (*domain.Template, error) {
	var template *domain.Template
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		template, err = ownedTemplate(repos, requesterID, templateID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			template.Name = strings.TrimSpace(*req.Name)
		}
		if req.Content != nil {
			template.Content = *req.Content
		}
		template.Version++
		template.UpdatedAt = nextUpdate(template.UpdatedAt)

		return repos.Templates.Update(template)
	})
	if err != nil {
		return nil, err
	}
	return template, nil
}

func (s *TemplateService) Delete(ctx context.Context, requesterID, templateID string) (*domain.Template, error) {
	return s.toggle(ctx, requesterID, templateID, func(t *domain.Template) bool {
		return t.MarkDeleted(time.Now().UTC())
	})
}

func (s *TemplateService) Restore(ctx context.Context, requesterID, templateID string) (*domain.Template, error) {
	return s.toggle(ctx, requesterID, templateID, func(t *domain.Template) bool {
		return t.Restore()
	})
}

// toggle applies a soft-delete transition. The version never changes and
// nothing is written when the template is already in the target state.
func (s *TemplateService) toggle(ctx context.Context, requesterID, templateID string, apply func(*domain.Template) bool) (*domain.Template, error) {
	var template *domain.Template
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		template, err = ownedTemplate(repos, requesterID, templateID)
		if err != nil {
			return err
		}
		if !apply(template) {
			return nil
		}
		template.UpdatedAt = nextUpdate(template.UpdatedAt)
		return repos.Templates.Update(template)
	})
	if err != nil {
		return nil, err
	}
	return template, nil
}

func ownedTemplate(repos *repository.Repositories, requesterID, templateID string) (*domain.Template, error) {
	template, err := repos.Templates.FindByID(templateID)
	if err != nil {
		return nil, notFoundAs(err, ErrTemplateNotFound)
	}
	if template.AuthorID != requesterID {
		return nil, ErrAccessDenied
	}
	return template, nil
}
