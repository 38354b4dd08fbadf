package gemini

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/llm"
)

var responseSchema = llm.MustCompileSchema("gemini_generate_content.json", llm.GenerateContentSchema())

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) Name() string { return constants.ProviderGemini }

func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// SuggestName implements llm.Provider using models/{model}:generateContent.
// The whole document text is sent.
func (c *Client) SuggestName(ctx context.Context, req llm.SuggestRequest) (string, error) {
	if !c.Configured() {
		return "", common.ConfigError("Gemini:ApiKey is not configured")
	}

	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.suggest.start",
		"req_id", rid,
		"provider", c.Name(),
		"model", c.cfg.Model,
		"text_len", len(req.Content),
	)

	body := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: llm.BuildSystemPrompt()}}},
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: llm.BuildUserPrompt(req, 0)}},
		}},
		GenerationConfig: generationConfig{Temperature: c.cfg.Temperature, MaxOutputTokens: 64},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + url.PathEscape(c.cfg.Model) + ":generateContent"
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}
	raw, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.suggest.http_error",
			"req_id", rid, "provider", c.Name(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var gr generateResponse
	if err := llm.DecodeStrict(responseSchema, raw, &gr); err != nil {
		c.logger.Error("llm.suggest.decode_error",
			"req_id", rid, "provider", c.Name(), "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	name, err := llm.RequireSuggestion(c.Name(), gr.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return "", err
	}

	c.logger.Info("llm.suggest.ok",
		"req_id", rid,
		"provider", c.Name(),
		"suggestion", name,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return name, nil
}
