// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultChunkSize         = 25
	DefaultMaxOutputTokens   = 3000
	DefaultConcurrency       = 1
	DefaultLogFile           = "bookmark_organizer.log"
	DefaultLogLevel          = "info"
	DefaultPort              = 8080
	DefaultEmbeddingProvider = "gemini"
	DefaultEmbeddingModel    = "text-embedding-004"
	DefaultOllamaHost        = "http://localhost:11434"
	DefaultClassifyTimeout   = time.Duration(0) // no timeout
)

// Config holds the organizer settings. It can be loaded from a JSON or YAML file;
// missing values fall back to Default().
type Config struct {
	// LLM
	APIKey          string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model           string `json:"model,omitempty" yaml:"model,omitempty"` // Overrides the lite model
	ChunkSize       int    `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty" validate:"gte=1,lte=500"`
	MaxOutputTokens int    `json:"max_output_tokens,omitempty" yaml:"max_output_tokens,omitempty" validate:"gte=1,lte=65536"`
	Concurrency     int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"gte=1,lte=16"`

	// Logging
	LogFile  string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	// Server
	Port int `json:"port,omitempty" yaml:"port,omitempty" validate:"gte=1,lte=65535"`

	// Visualization
	Visualize         bool   `json:"visualize,omitempty" yaml:"visualize,omitempty"`
	EmbeddingProvider string `json:"embedding_provider,omitempty" yaml:"embedding_provider,omitempty" validate:"omitempty,oneof=gemini ollama"`
	EmbeddingModel    string `json:"embedding_model,omitempty" yaml:"embedding_model,omitempty"`
	OllamaHost        string `json:"ollama_host,omitempty" yaml:"ollama_host,omitempty" validate:"omitempty,url"`

	ClassifyTimeout Duration `json:"classify_timeout,omitempty" yaml:"classify_timeout,omitempty"`
}

// Duration is a time.Duration that reads "90s"-style strings from config files.
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.parse(s)
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// UnmarshalYAML accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if secs, err := strconv.ParseFloat(node.Value, 64); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	return d.parse(node.Value)
}

// MarshalJSON writes the duration in its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ChunkSize:         DefaultChunkSize,
		MaxOutputTokens:   DefaultMaxOutputTokens,
		Concurrency:       DefaultConcurrency,
		LogFile:           DefaultLogFile,
		LogLevel:          DefaultLogLevel,
		Port:              DefaultPort,
		EmbeddingProvider: DefaultEmbeddingProvider,
		EmbeddingModel:    DefaultEmbeddingModel,
		OllamaHost:        DefaultOllamaHost,
		ClassifyTimeout:   Duration(DefaultClassifyTimeout),
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables. Unparseable numbers are reported.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := getenv("BOOKMARKS_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := getenv("BOOKMARKS_EMBEDDING_PROVIDER"); v != "" {
		c.EmbeddingProvider = strings.ToLower(v)
	}
	if v := getenv("OLLAMA_HOST"); v != "" {
		c.OllamaHost = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"BOOKMARKS_CHUNK_SIZE", &c.ChunkSize},
		{"BOOKMARKS_MAX_OUTPUT_TOKENS", &c.MaxOutputTokens},
		{"BOOKMARKS_CONCURRENCY", &c.Concurrency},
		{"PORT", &c.Port},
	}
	for _, e := range ints {
		v := getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be an integer: %w", e.name, err)
		}
		*e.dst = n
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the configuration has valid values. The API key is not
// required here since commands that never call the model do not need it.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.ClassifyTimeout < 0 {
		return fmt.Errorf("config error: 'classify_timeout' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.EmbeddingProvider == "" {
		result.EmbeddingProvider = defaults.EmbeddingProvider
	}
	if result.EmbeddingModel == "" {
		result.EmbeddingModel = defaults.EmbeddingModel
	}
	if result.OllamaHost == "" {
		result.OllamaHost = defaults.OllamaHost
	}

	if result.ChunkSize == 0 {
		result.ChunkSize = defaults.ChunkSize
	}
	if result.MaxOutputTokens == 0 {
		result.MaxOutputTokens = defaults.MaxOutputTokens
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.ClassifyTimeout == 0 {
		result.ClassifyTimeout = defaults.ClassifyTimeout
	}

	// Bools cannot distinguish unset from false, so Visualize is not merged.

	return result
}

// Load resolves the effective configuration: file (optional), then environment,
// then defaults, then validation.
func Load(path string) (Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	merged := cfg.MergeWithDefaults(Default())
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}
