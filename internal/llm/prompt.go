package llm

import (
	"strings"
	"unicode/utf8"
)

// BuildSystemPrompt describes the naming rules every provider is held to.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a helpful assistant that suggests concise, descriptive filenames based on PDF content.",
		"Rules: use lowercase letters, digits, underscores or hyphens only; use underscores instead of spaces;",
		"keep it under 50 characters including the extension; end with .pdf.",
		"Prefer the document type, the counterparty and a date when they are visible.",
		"Reply with the filename only, on a single line, without quotes or explanations.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the document text and the current name. When
// maxChars is positive the text is cut to that many characters.
func BuildUserPrompt(req SuggestRequest, maxChars int) string {
	content := strings.TrimSpace(req.Content)
	if maxChars > 0 && utf8.RuneCountInString(content) > maxChars {
		content = string([]rune(content)[:maxChars])
	}

	var b strings.Builder
	b.WriteString("Please suggest a filename for a PDF with the following content:\n\n")
	b.WriteString(content)
	if name := strings.TrimSpace(req.FileName); name != "" {
		b.WriteString("\n\nCurrent filename is: ")
		b.WriteString(name)
	}
	return b.String()
}
