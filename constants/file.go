package constants

import "strings"

const (
	// PDFExtension is appended to every generated name.
	PDFExtension = ".pdf"

	// MaxFilenameLength bounds a generated name including the extension.
	MaxFilenameLength = 50

	// MaxStemLength leaves room for PDFExtension.
	MaxStemLength = MaxFilenameLength - len(PDFExtension)

	// DefaultBatchSize is the number of files processed concurrently.
	DefaultBatchSize = 3

	// DefaultCacheEntries bounds the suggestion cache.
	DefaultCacheEntries = 1000
)

// AIProvider names as they appear in configuration.
const (
	ProviderOpenAI = "OpenAI"
	ProviderGemini = "Gemini"
)

// AllowedExtensions holds the file extensions picked up by directory ingest.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// CanonicalProvider maps a loosely typed provider name onto ProviderOpenAI or
// ProviderGemini.
func CanonicalProvider(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai", "open_ai", "chatgpt":
		return ProviderOpenAI, true
	case "gemini", "google":
		return ProviderGemini, true
	}
	return "", false
}
