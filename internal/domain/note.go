package domain

import (
	"time"

	"gorm.io/datatypes"
)

const DefaultNoteType = "text"

type Note struct {
	ID                  string         `json:"id" gorm:"primaryKey;size:36"`
	AuthorName          string         `json:"authorName" gorm:"size:200;not null"`
	NoteDate            datatypes.Date `json:"noteDate" gorm:"not null"`
	NoteContentRaw      string         `json:"noteContentRaw" gorm:"type:text;not null"`
	NoteContentMarkdown string         `json:"noteContentMarkdown" gorm:"type:text;not null"`
	NoteType            string         `json:"noteType" gorm:"size:50;not null"`
	Version             int64          `json:"version" gorm:"not null;default:1"`
	TemplateID          *string        `json:"templateId" gorm:"size:36;index"`
	AuthorID            string         `json:"authorId" gorm:"size:36;not null;index"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt" gorm:"autoUpdateTime:false"`
	SoftDelete

	// Participants is resolved through the join table, never by gorm associations.
	Participants []Participant `json:"participants" gorm:"-"`
}

func (Note) TableName() string {
	return "notes"
}

// NoteParticipant is a row of the note/participant join table. The composite
// key keeps a note's participant set free of duplicates.
type NoteParticipant struct {
	NoteID        string    `gorm:"primaryKey;size:36"`
	ParticipantID string    `gorm:"primaryKey;size:36;index"`
	Position      int       `gorm:"not null;default:0"`
	CreatedAt     time.Time
}

func (NoteParticipant) TableName() string {
	return "note_participants"
}

// NoteSummary is the list projection: participant ids only.
type NoteSummary struct {
	ID                  string         `json:"id"`
	AuthorName          string         `json:"authorName"`
	NoteDate            datatypes.Date `json:"noteDate"`
	NoteContentRaw      string         `json:"noteContentRaw"`
	NoteContentMarkdown string         `json:"noteContentMarkdown"`
	NoteType            string         `json:"noteType"`
	Version             int64          `json:"version"`
	TemplateID          *string        `json:"templateId"`
	AuthorID            string         `json:"authorId"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt" gorm:"autoUpdateTime:false"`
	SoftDelete
	ParticipantIDs []string `json:"participantIds"`
}

func (n *Note) Summary(participantIDs []string) *NoteSummary {
	if participantIDs == nil {
		participantIDs = []string{}
	}
	return &NoteSummary{
		ID:                  n.ID,
		AuthorName:          n.AuthorName,
		NoteDate:            n.NoteDate,
		NoteContentRaw:      n.NoteContentRaw,
		NoteContentMarkdown: n.NoteContentMarkdown,
		NoteType:            n.NoteType,
		Version:             n.Version,
		TemplateID:          n.TemplateID,
		AuthorID:            n.AuthorID,
		CreatedAt:           n.CreatedAt,
		UpdatedAt:           n.UpdatedAt,
		SoftDelete:          n.SoftDelete,
		ParticipantIDs:      participantIDs,
	}
}

type CreateNoteRequest struct {
	AuthorName          string             `json:"authorName" validate:"required,max=200"`
	NoteDate            string             `json:"noteDate" validate:"required"`
	NoteContentRaw      string             `json:"noteContentRaw" validate:"required"`
	NoteContentMarkdown string             `json:"noteContentMarkdown" validate:"required"`
	NoteType            string             `json:"noteType" validate:"max=50"`
	TemplateID          *string            `json:"templateId" validate:"omitempty,max=36"`
	Participants        []ParticipantInput `json:"participants" validate:"dive"`
}

// UpdateNoteRequest carries the only fields mutable after creation.
type UpdateNoteRequest struct {
	NoteContentMarkdown *string             `json:"noteContentMarkdown"`
	NoteType            *string             `json:"noteType" validate:"omitempty,max=50"`
	Participants        *[]ParticipantInput `json:"participants" validate:"omitempty,dive"`
}
