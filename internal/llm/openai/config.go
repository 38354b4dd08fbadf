package openai

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultMaxContentChars is how much document text goes into a prompt.
const DefaultMaxContentChars = 1000

// Config for the OpenAI client.
type Config struct {
	APIKey          string        // empty leaves the client unconfigured
	BaseURL         string        // default https://api.openai.com/v1
	Model           string        // e.g., "gpt-4o-mini"
	Temperature     float32       // 0..2
	Timeout         time.Duration // http client timeout
	MaxContentChars int           // default DefaultMaxContentChars
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = DefaultMaxContentChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}
