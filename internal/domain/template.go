package domain

import "time"

type Template struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Version   int64     `json:"version" gorm:"not null;default:1"`
	AuthorID  string    `json:"authorId" gorm:"size:36;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`
	SoftDelete
}

func (Template) TableName() string {
	return "templates"
}

type CreateTemplateRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

type UpdateTemplateRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}
