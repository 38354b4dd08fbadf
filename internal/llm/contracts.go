package llm

import "context"

// SuggestRequest is what a provider needs to propose a file name.
type SuggestRequest struct {
	FileName string // current display name, passed as a hint
	Content  string // extracted text; providers may truncate it
}

// Provider proposes a raw, unsanitized file name for a document.
type Provider interface {
	// Name is the configuration name of the provider (OpenAI, Gemini).
	Name() string
	// Configured reports whether the provider has credentials.
	Configured() bool
	SuggestName(ctx context.Context, req SuggestRequest) (string, error)
}

// NameSuggester is the interface the pipeline depends on.
type NameSuggester interface {
	SuggestName(ctx context.Context, fileName, content string) (string, error)
}
