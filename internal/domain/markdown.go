package domain

type TranscriptionResponse struct {
	RawNote string `json:"raw_note"`
}

type NoteDetails struct {
	NoteDate     string             `json:"note_date"`
	AuthorID     string             `json:"author_id"`
	AuthorName   string             `json:"author_name"`
	TemplateID   string             `json:"template_id"`
	Participants []ParticipantInput `json:"participants"`
}

type MarkdownRequest struct {
	RawNote     string      `json:"raw_note" validate:"required"`
	NoteDetails NoteDetails `json:"note_details"`
}

type MarkdownResponse struct {
	FormattedMarkdown string `json:"formatted_markdown"`
}
