package formatting

import (
	"fmt"
	"strings"
)

// DefaultTemplate is used when a request names no template.
const DefaultTemplate = `## Visit Details
- Date: {{date}}
- Provider: {{author}}
- Participants: {{participants}}

## Chief Complaint
{{chief_complaint}}

## History of Present Illness
{{history_of_present_illness}}

## Physical Exam
{{physical_exam}}
`

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Prompt struct {
	Messages []Message
}

const systemPreamble = `You are an expert medical note assistant. You turn the transcript of a conversation between a clinician and a patient into a structured note.

The note MUST follow the template below exactly. The template is a hard constraint:
- Keep every heading, bullet, label, line break and blank line of the template exactly as written.
- Do not add, remove, rename or reorder sections, and do not add any title, preamble or closing remark.
- Write every date as MM/DD/YYYY.
- Return plain Markdown text only. Never wrap the answer in code fences.
`

const placeholderRules = `- The template marks fill-in points with double braces, like {{name}}. Replace each one with the matching information from the transcript.
- If the transcript does not contain the information for a placeholder, replace it with nothing and keep the rest of its line.
`

const instructionRules = `- The template describes what to write inside square brackets, like [list current medications]. Replace each bracketed instruction, brackets included, with the content it asks for.
- If the transcript does not contain enough information for an instruction, replace it with the instruction text followed by ` + InsufficientData + `.
`

// BuildPrompt assembles the chat messages for one formatting call. The
// template is embedded verbatim between markers.
func BuildPrompt(template, transcript string, meta Metadata) Prompt {
	filled := FillPlaceholders(template, meta)

	var system strings.Builder
	system.WriteString(systemPreamble)
	if DetectDialect(template) == InstructionDialect {
		system.WriteString(instructionRules)
	} else {
		system.WriteString(placeholderRules)
	}
	system.WriteString("\nTEMPLATE START\n")
	system.WriteString(filled)
	if !strings.HasSuffix(filled, "\n") {
		system.WriteString("\n")
	}
	system.WriteString("TEMPLATE END\n")

	var user strings.Builder
	user.WriteString("Visit details:\n")
	fmt.Fprintf(&user, "- Date: %s\n", meta.date())
	fmt.Fprintf(&user, "- Author: %s\n", meta.AuthorName)
	fmt.Fprintf(&user, "- Participants: %s\n", strings.Join(meta.Participants, ", "))
	user.WriteString("\nTranscript:\n")
	user.WriteString(strings.TrimSpace(transcript))
	user.WriteString("\n")

	return Prompt{Messages: []Message{
		{Role: "system", Content: system.String()},
		{Role: "user", Content: user.String()},
	}}
}

// StripCodeFence removes a Markdown code fence wrapped around the whole answer.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimRight(s, " \t\n")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
