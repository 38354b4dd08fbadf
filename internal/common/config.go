package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/pdf-renamer/constants"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	AIProvider string         `yaml:"AIProvider"`
	OpenAI     ProviderConfig `yaml:"OpenAI"`
	Gemini     ProviderConfig `yaml:"Gemini"`
	LLM        LLMConfig      `yaml:"LLM"`
	Database   DatabaseConfig `yaml:"Database"`
	Server     ServerConfig   `yaml:"Server"`
	Extract    ExtractConfig  `yaml:"Extract"`
	Pipeline   PipelineConfig `yaml:"Pipeline"`
}

// ProviderConfig holds the settings of one AI provider.
type ProviderConfig struct {
	ApiKey  string `yaml:"ApiKey"`
	Model   string `yaml:"Model"`
	BaseURL string `yaml:"BaseURL"`
}

// LLMConfig holds settings shared by all providers
type LLMConfig struct {
	Temperature float32       `yaml:"Temperature"`
	Timeout     time.Duration `yaml:"Timeout"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string        `yaml:"Driver"` // sqlite | postgres
	DSN             string        `yaml:"DSN"`
	MaxConns        int32         `yaml:"MaxConns"`
	MinConns        int32         `yaml:"MinConns"`
	MaxConnLifetime time.Duration `yaml:"MaxConnLifetime"`
	DialTimeout     time.Duration `yaml:"DialTimeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"HTTPAddr"`
	GRPCAddr string `yaml:"GRPCAddr"`
}

// ExtractConfig holds text extraction configuration
type ExtractConfig struct {
	Pdftotext     string `yaml:"Pdftotext"` // empty disables the fallback
	Pdftoppm      string `yaml:"Pdftoppm"`  // OCR needs both Pdftoppm and Tesseract
	Tesseract     string `yaml:"Tesseract"`
	TesseractLang string `yaml:"TesseractLang"`
	TessdataDir   string `yaml:"TessdataDir"`
	MaxFileBytes  int64  `yaml:"MaxFileBytes"`
}

// PipelineConfig holds batch pipeline configuration
type PipelineConfig struct {
	BatchSize    int `yaml:"BatchSize"`
	CacheEntries int `yaml:"CacheEntries"`
}

// Defaults returns a configuration with every default filled in.
func Defaults() *Config {
	return &Config{
		AIProvider: constants.ProviderOpenAI,
		OpenAI: ProviderConfig{
			Model:   "gpt-4o-mini",
			BaseURL: "https://api.openai.com/v1",
		},
		Gemini: ProviderConfig{
			Model:   "gemini-1.5-flash",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		},
		LLM: LLMConfig{
			Temperature: 0.2,
			Timeout:     45 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "pdf-renamer.db",
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: 30 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Server: ServerConfig{
			HTTPAddr: ":8081",
			GRPCAddr: ":8080",
		},
		Extract: ExtractConfig{
			MaxFileBytes: 64 << 20,
		},
		Pipeline: PipelineConfig{
			BatchSize:    constants.DefaultBatchSize,
			CacheEntries: constants.DefaultCacheEntries,
		},
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	cfg := Defaults()
	cfg.applyEnv()
	return cfg
}

// LoadConfigFile reads a YAML file over the defaults, then applies
// environment overrides.
func LoadConfigFile(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, NewAppError(CodeConfig, "parse "+path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.AIProvider = getEnv("AI_PROVIDER", c.AIProvider)

	c.OpenAI.ApiKey = getEnv("OPENAI_API_KEY", c.OpenAI.ApiKey)
	c.OpenAI.Model = getEnv("OPENAI_MODEL", c.OpenAI.Model)
	c.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", c.OpenAI.BaseURL)

	c.Gemini.ApiKey = getEnv("GEMINI_API_KEY", c.Gemini.ApiKey)
	c.Gemini.Model = getEnv("GEMINI_MODEL", c.Gemini.Model)
	c.Gemini.BaseURL = getEnv("GEMINI_BASE_URL", c.Gemini.BaseURL)

	c.LLM.Temperature = getEnvAsFloat32("LLM_TEMPERATURE", c.LLM.Temperature)
	c.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", c.LLM.Timeout)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)

	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)

	c.Extract.Pdftotext = getEnv("PDFTOTEXT_BIN", c.Extract.Pdftotext)
	c.Extract.Pdftoppm = getEnv("PDFTOPPM_BIN", c.Extract.Pdftoppm)
	c.Extract.Tesseract = getEnv("TESSERACT_BIN", c.Extract.Tesseract)
	c.Extract.TesseractLang = getEnv("TESSERACT_LANG", c.Extract.TesseractLang)
	c.Extract.TessdataDir = getEnv("TESSDATA_PREFIX", c.Extract.TessdataDir)
	c.Extract.MaxFileBytes = getEnvAsInt64("MAX_FILE_BYTES", c.Extract.MaxFileBytes)

	c.Pipeline.BatchSize = getEnvAsInt("BATCH_SIZE", c.Pipeline.BatchSize)
	c.Pipeline.CacheEntries = getEnvAsInt("SUGGESTION_CACHE_SIZE", c.Pipeline.CacheEntries)
}

// Lookup resolves colon-separated keys such as "OpenAI:ApiKey".
func (c *Config) Lookup(key string) (string, bool) {
	switch strings.ToLower(key) {
	case "aiprovider":
		return c.AIProvider, c.AIProvider != ""
	case "openai:apikey":
		return c.OpenAI.ApiKey, c.OpenAI.ApiKey != ""
	case "gemini:apikey":
		return c.Gemini.ApiKey, c.Gemini.ApiKey != ""
	case "openai:model":
		return c.OpenAI.Model, c.OpenAI.Model != ""
	case "gemini:model":
		return c.Gemini.Model, c.Gemini.Model != ""
	}
	return "", false
}

// Provider returns the settings for a canonical provider name.
func (c *Config) Provider(name string) ProviderConfig {
	if name == constants.ProviderGemini {
		return c.Gemini
	}
	return c.OpenAI
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the configuration. API keys are checked lazily by the
// resolver so the HTTP API can start without them.
func (c *Config) Validate() error {
	provider, ok := constants.CanonicalProvider(c.AIProvider)
	if !ok {
		return ConfigError("AIProvider must be %s or %s, got %q", constants.ProviderOpenAI, constants.ProviderGemini, c.AIProvider)
	}
	c.AIProvider = provider
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return ConfigError("Database.Driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return ConfigError("DB_URL is required")
	}
	if c.Pipeline.BatchSize <= 0 {
		return ConfigError("BATCH_SIZE must be positive")
	}
	if c.Pipeline.CacheEntries <= 0 {
		return ConfigError("SUGGESTION_CACHE_SIZE must be positive")
	}
	return nil
}
