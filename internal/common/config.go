package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment" validate:"omitempty,oneof=development production"`
	Storage     StorageConfig   `toml:"storage"`
	Uploads     UploadConfig    `toml:"uploads"`
	Chunking    ChunkingConfig  `toml:"chunking"`
	Retrieval   RetrievalConfig `toml:"retrieval"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Logging     LoggingConfig   `toml:"logging"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// UploadConfig controls where uploads, index artifacts, and media binaries
// live on disk and which file types are accepted.
type UploadConfig struct {
	Dir               string   `toml:"dir" validate:"required"`
	IndexDir          string   `toml:"index_dir" validate:"required"`
	MediaDir          string   `toml:"media_dir" validate:"required"`
	AllowedExtensions []string `toml:"allowed_extensions" validate:"min=1"`
	MaxFileSize       int64    `toml:"max_file_size" validate:"min=1"`
}

// ChunkingConfig controls chunk sizing. Overlap must stay below the chunk
// size or the fallback window would never advance.
type ChunkingConfig struct {
	Size    int `toml:"size" validate:"min=1"`
	Overlap int `toml:"overlap" validate:"min=0,ltfield=Size"`
}

// RetrievalConfig controls the query fan-out.
type RetrievalConfig struct {
	TopK             int    `toml:"top_k" validate:"min=1,max=10"`
	MediaPerDocument int    `toml:"media_per_document" validate:"min=0"`
	LinkPolicy       string `toml:"link_policy" validate:"oneof=first none"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`           // generation model
	EmbedModel     string  `toml:"embed_model"`     // embedding model
	EmbedDimension int     `toml:"embed_dimension"` // fixed output dimensionality
	VisionModel    string  `toml:"vision_model"`    // multimodal model for media analysis
	RateLimit      string  `toml:"rate_limit"`      // min interval between API calls, e.g. "4s"
	Timeout        string  `toml:"timeout"`
	Temperature    float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

// LLMConfig selects the generative provider.
type LLMConfig struct {
	DefaultProvider string `toml:"default_provider" validate:"oneof=claude gemini"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns the configuration defaults applied before any
// config file or environment override.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/docuchat.db",
				ResetOnStartup: false,
			},
		},
		Uploads: UploadConfig{
			Dir:               "./data/uploads",
			IndexDir:          "./data/indexes",
			MediaDir:          "./data/media",
			AllowedExtensions: []string{".pdf", ".txt", ".md"},
			MaxFileSize:       10 * 1024 * 1024, // 10MB
		},
		Chunking: ChunkingConfig{
			Size:    500,
			Overlap: 50,
		},
		Retrieval: RetrievalConfig{
			TopK:             3,
			MediaPerDocument: 2,
			LinkPolicy:       "first",
		},
		Gemini: GeminiConfig{
			APIKey:         "", // User must provide API key (no fallback)
			Model:          "gemini-3-flash-preview",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			VisionModel:    "gemini-3-flash-preview",
			RateLimit:      "4s", // 15 RPM free tier
			Timeout:        "2m",
			Temperature:    0.3,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   500,
			Temperature: 0.3,
			Timeout:     "2m",
		},
		LLM: LLMConfig{
			DefaultProvider: "claude",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 ->
// file2 -> ... -> environment variables. Later files override earlier
// files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DOCUCHAT_ENV"); env != "" {
		config.Environment = env
	}

	// Storage configuration
	if badgerPath := os.Getenv("DOCUCHAT_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if uploadsDir := os.Getenv("DOCUCHAT_UPLOADS_DIR"); uploadsDir != "" {
		config.Uploads.Dir = uploadsDir
	}
	if indexDir := os.Getenv("DOCUCHAT_INDEX_DIR"); indexDir != "" {
		config.Uploads.IndexDir = indexDir
	}

	// Provider API keys
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if provider := os.Getenv("DOCUCHAT_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = provider
	}

	// Chunking configuration
	if size := os.Getenv("DOCUCHAT_CHUNK_SIZE"); size != "" {
		if s, err := strconv.Atoi(size); err == nil {
			config.Chunking.Size = s
		}
	}
	if overlap := os.Getenv("DOCUCHAT_CHUNK_OVERLAP"); overlap != "" {
		if o, err := strconv.Atoi(overlap); err == nil {
			config.Chunking.Overlap = o
		}
	}

	// Logging configuration
	if level := os.Getenv("DOCUCHAT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("DOCUCHAT_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
