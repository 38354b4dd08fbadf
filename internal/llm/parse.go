package llm

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/pdf-renamer/internal/common"
)

var labelPrefixes = []string{
	"suggested filename:",
	"suggested file name:",
	"filename:",
	"file name:",
	"name:",
}

// CleanSuggestion reduces a model reply to the bare file name: first
// non-empty line, without code fences, labels, bullets or quotes.
func CleanSuggestion(reply string) string {
	for _, line := range strings.Split(reply, "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "```") {
			continue
		}
		s = strings.TrimLeft(s, "-* ")
		lower := strings.ToLower(s)
		for _, p := range labelPrefixes {
			if strings.HasPrefix(lower, p) {
				s = strings.TrimSpace(s[len(p):])
				break
			}
		}
		s = strings.Trim(s, "\"'`* ")
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	return ""
}

// RequireSuggestion cleans reply and rejects it when nothing is left.
func RequireSuggestion(provider, reply string) (string, error) {
	s := CleanSuggestion(reply)
	if s == "" {
		return "", fmt.Errorf("%w: %s returned an empty suggestion", common.ErrProviderResponse, provider)
	}
	return s, nil
}
