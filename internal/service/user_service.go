package service

import (
	"context"

	"private-scribe-server/internal/domain"
	"private-scribe-server/internal/repository"
)

type UserService struct {
	uow repository.UnitOfWork
}

func NewUserService(uow repository.UnitOfWork) *UserService {
	return &UserService{uow: uow}
}

// List returns every account. There is no ownership filter.
func (s *UserService) List(ctx context.Context) ([]*domain.UserSummary, error) {
	var users []*domain.User
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		var err error
		users, err = repos.Users.List()
		return err
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]*domain.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return summaries, nil
}
