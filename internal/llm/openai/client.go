package openai

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/pdf-renamer/constants"
	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/joseph-ayodele/pdf-renamer/internal/llm"
)

var responseSchema = llm.MustCompileSchema("openai_chat_completion.json", llm.ChatCompletionSchema())

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float32       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) Name() string { return constants.ProviderOpenAI }

func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// SuggestName implements llm.Provider using chat/completions. Only the
// first MaxContentChars characters of the document are sent.
func (c *Client) SuggestName(ctx context.Context, req llm.SuggestRequest) (string, error) {
	if !c.Configured() {
		return "", common.ConfigError("OpenAI:ApiKey is not configured")
	}

	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.suggest.start",
		"req_id", rid,
		"provider", c.Name(),
		"model", c.cfg.Model,
		"text_len", len(req.Content),
	)

	body := chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: llm.BuildSystemPrompt()},
			{Role: "user", Content: llm.BuildUserPrompt(req, c.cfg.MaxContentChars)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.suggest.http_error",
			"req_id", rid, "provider", c.Name(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var cc chatResponse
	if err := llm.DecodeStrict(responseSchema, raw, &cc); err != nil {
		c.logger.Error("llm.suggest.decode_error",
			"req_id", rid, "provider", c.Name(), "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	name, err := llm.RequireSuggestion(c.Name(), cc.Choices[0].Message.Content)
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
