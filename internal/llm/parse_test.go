package llm

import (
	"strings"
	"testing"

	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanSuggestion(t *testing.T) {
	tests := map[string]string{
		"invoice_acme.pdf":                         "invoice_acme.pdf",
		"  \"invoice_acme.pdf\"  ":                 "invoice_acme.pdf",
		"Filename: invoice_acme.pdf":               "invoice_acme.pdf",
		"**Suggested filename:** `tax_return.pdf`": "tax_return.pdf",
		"```\nlease_2024.pdf\n```":                 "lease_2024.pdf",
		"\n\n- meeting_notes.pdf\nBecause...":      "meeting_notes.pdf",
		"":                                         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanSuggestion(in), "input %q", in)
	}
}

func TestRequireSuggestion_Empty(t *testing.T) {
	_, err := RequireSuggestion("OpenAI", "```\n```")
	require.ErrorIs(t, err, common.ErrProviderResponse)
}

func TestBuildUserPrompt_Truncates(t *testing.T) {
	content := strings.Repeat("a", 1000) + "TAIL"
	p := BuildUserPrompt(SuggestRequest{FileName: "scan.pdf", Content: content}, 1000)
	assert.Contains(t, p, strings.Repeat("a", 1000))
	assert.NotContains(t, p, "TAIL")
	assert.Contains(t, p, "Current filename is: scan.pdf")

	full := BuildUserPrompt(SuggestRequest{Content: content}, 0)
	assert.Contains(t, full, "TAIL")
	assert.NotContains(t, full, "Current filename")
}

func TestSchemas_RejectMalformed(t *testing.T) {
	chat := MustCompileSchema("chat.json", ChatCompletionSchema())
	require.NoError(t, chat.Validate([]byte(`{"choices":[{"message":{"role":"assistant","content":"x.pdf"}}]}`)))
	assert.Error(t, chat.Validate([]byte(`{"choices":[]}`)))
	assert.Error(t, chat.Validate([]byte(`{"choices":[{"message":{"content":42}}]}`)))
	assert.Error(t, chat.Validate([]byte(`not json`)))

	gen := MustCompileSchema("gen.json", GenerateContentSchema())
	require.NoError(t, gen.Validate([]byte(`{"candidates":[{"content":{"parts":[{"text":"x.pdf"}]}}]}`)))
	assert.Error(t, gen.Validate([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`)))
	assert.Error(t, gen.Validate([]byte(`{"candidates":[{"content":{"parts":[]}}]}`)))
}

func TestDecodeStrict_WrapsProviderResponse(t *testing.T) {
	chat := MustCompileSchema("chat.json", ChatCompletionSchema())
	var out map[string]any
	err := DecodeStrict(chat, []byte(`{"error":"nope"}`), &out)
	require.ErrorIs(t, err, common.ErrProviderResponse)
}
