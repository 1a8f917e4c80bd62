package domain

import "time"

// Participant is a contact record a user can attach to notes. Email is not unique.
type Participant struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	FirstName string    `json:"firstName" gorm:"size:100;not null"`
	LastName  string    `json:"lastName" gorm:"size:100"`
	Email     string    `json:"email" gorm:"size:120;index"`
	AuthorID  string    `json:"authorId" gorm:"size:36;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Participant) TableName() string {
	return "participants"
}

type CreateParticipantRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email,max=120"`
}

// ParticipantInput is one entry of a note's participant list: either a bare
// {id} reference to an existing participant, or a full object to upsert.
type ParticipantInput struct {
	ID        string `json:"id" validate:"omitempty,max=36"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email,max=120"`
}

// IsReference reports whether the input only names an existing participant.
func (p ParticipantInput) IsReference() bool {
	return p.ID != "" && p.FirstName == "" && p.LastName == "" && p.Email == ""
}
