// Package formatting turns a raw visit transcript into Markdown shaped by a
// note template, using a chat model as the renderer.
package formatting

import (
	"regexp"
	"strings"
)

type Dialect string

const (
	// PlaceholderDialect templates mark fill-in points with {{name}}.
	PlaceholderDialect Dialect = "placeholder"
	// InstructionDialect templates describe what to extract inside [brackets].
	InstructionDialect Dialect = "instruction"
)

// InsufficientData follows an instruction's text when the transcript cannot answer it.
const InsufficientData = "(insufficient information in transcript)"

var (
	placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}\n]*?)\s*\}\}`)
	// group 2 is set for Markdown links, which are not instructions
	instructionPattern = regexp.MustCompile(`\[([^\[\]\n]+)\](\([^)\n]*\))?`)
)

// DetectDialect reports which convention content follows. Placeholders win
// when both appear; content with neither is treated as placeholder dialect.
func DetectDialect(content string) Dialect {
	if placeholderPattern.MatchString(content) {
		return PlaceholderDialect
	}
	if len(Instructions(content)) > 0 {
		return InstructionDialect
	}
	return PlaceholderDialect
}

// Placeholders returns the distinct placeholder names in order of first use.
func Placeholders(content string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Instructions returns the bracketed instruction texts, skipping Markdown links
// and task-list boxes.
func Instructions(content string) []string {
	var out []string
	for _, m := range instructionPattern.FindAllStringSubmatch(content, -1) {
		if m[2] != "" {
			continue
		}
		text := strings.TrimSpace(m[1])
		if text == "" || text == "x" || text == "X" {
			continue
		}
		out = append(out, text)
	}
	return out
}

// ClearPlaceholders empties any placeholder the renderer left unfilled. The
// surrounding text stays where it was.
func ClearPlaceholders(s string) string {
	return placeholderPattern.ReplaceAllString(s, "")
}
