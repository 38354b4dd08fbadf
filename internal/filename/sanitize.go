// Package filename turns free-form suggestions into safe PDF file names.
package filename

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
)

// fallbackStem is used when nothing usable survives sanitization.
const fallbackStem = "document"

// Sanitize normalizes raw into a name matching ^[a-z0-9_-]{1,46}\.pdf$.
//
// Whitespace and dots become underscores, other characters outside
// [a-z0-9_-] are dropped, underscore runs collapse and the result is
// trimmed of leading and trailing separators. Sanitize(Sanitize(x)) ==
// Sanitize(x).
func Sanitize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: filename is empty", common.ErrInvalidArgument)
	}

	stem := strings.ToLower(StripExtension(strings.TrimSpace(raw)))

	var b strings.Builder
	b.Grow(len(stem))
	lastUnderscore := false
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case r == '_' || r == '.' || unicode.IsSpace(r):
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	out := trimSeparators(b.String())
	if len(out) > constants.MaxStemLength {
		out = trimSeparators(out[:constants.MaxStemLength])
	}
	if out == "" {
		out = fallbackStem
	}
	return out + constants.PDFExtension, nil
}

// StripExtension removes the last extension of name, if any.
func StripExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

// WithPDFExtension replaces the extension of name with .pdf.
func WithPDFExtension(name string) string {
	return StripExtension(strings.TrimSpace(name)) + constants.PDFExtension
}

// StripIllegal removes characters no common filesystem accepts in a name.
func StripIllegal(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`<>:"/\|?*`, r) {
			return -1
		}
		return r
	}, name)
}

func trimSeparators(s string) string {
	return strings.Trim(s, "_-")
}
