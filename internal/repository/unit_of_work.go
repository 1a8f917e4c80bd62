package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository bound to one database handle, which
// inside UnitOfWork.Do is the open transaction.
type Repositories struct {
	Users            UserRepository
	Participants     ParticipantRepository
	Templates        TemplateRepository
	Notes            NoteRepository
	NoteParticipants NoteParticipantRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:            NewUserRepository(db),
		Participants:     NewParticipantRepository(db),
		Templates:        NewTemplateRepository(db),
		Notes:            NewNoteRepository(db),
		NoteParticipants: NewNoteParticipantRepository(db),
	}
}

// UnitOfWork runs fn inside a single transaction. A nil return commits, an
// error or panic rolls everything fn wrote back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos *Repositories) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(repos *Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
