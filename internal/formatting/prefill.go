package formatting

import (
	"strings"
	"time"
)

// DateLayout is the only date format rendered notes use.
const DateLayout = "01/02/2006"

// Metadata is what the caller knows about the visit independent of the transcript.
type Metadata struct {
	NoteDate     time.Time
	AuthorName   string
	Participants []string
}

func (m Metadata) date() string {
	if m.NoteDate.IsZero() {
		return ""
	}
	return m.NoteDate.Format(DateLayout)
}

// FillPlaceholders substitutes the placeholders that metadata answers
// deterministically so the model never has to guess them. Other placeholders
// are left for the model.
func FillPlaceholders(content string, meta Metadata) string {
	return placeholderPattern.ReplaceAllStringFunc(content, func(token string) string {
		name := placeholderPattern.FindStringSubmatch(token)[1]
		switch normalize(name) {
		case "date", "note_date", "visit_date":
			if d := meta.date(); d != "" {
				return d
			}
		case "author", "author_name", "provider":
			if meta.AuthorName != "" {
				return meta.AuthorName
			}
		case "participants":
			if len(meta.Participants) > 0 {
				return strings.Join(meta.Participants, ", ")
			}
		}
		return token
	})
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}
