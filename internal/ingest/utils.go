package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/pdf-renamer/constants"
)

// AllowedExt checks if a file extension is in the allowed set.
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && strings.HasPrefix(base, ".")
}

// IsURL reports whether path is an http(s) URL rather than a local path.
func IsURL(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// displayName is the file name shown for a path or URL.
func displayName(path string) string {
	if IsURL(path) {
		path = strings.SplitN(path, "?", 2)[0]
		return path[strings.LastIndex(path, "/")+1:]
	}
	return filepath.Base(path)
}
