package model

import (
	"runtime"
	"time"
)

// Config holds the full service configuration
type Config struct {
	Annotate    AnnotateConfig    `yaml:"annotate" json:"annotate"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Server      ServerConfig      `yaml:"server" json:"server"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	RulesPath   string            `yaml:"rules_path" json:"rules_path"` // Optional YAML rule file; empty = built-in rules
}

// AnnotateConfig configures the annotation backend
type AnnotateConfig struct {
	Backend    string        `yaml:"backend" json:"backend"`         // "http" or "ner"
	URL        string        `yaml:"url" json:"url"`                 // Annotation service URL (http backend)
	Model      string        `yaml:"model" json:"model"`             // NER model name (ner backend)
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`         // Per-request timeout
	RatePerSec float64       `yaml:"rate_per_sec" json:"rate_per_sec"` // Upstream request rate cap
	Burst      int           `yaml:"burst" json:"burst"`
}

// CacheConfig configures extraction result caching
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" json:"batch_workers"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// LLMConfig configures the optional briefing generator
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // "openai", "ollama", "" = disabled
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"-" json:"-"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// OutputConfig controls operator-facing output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Annotate: AnnotateConfig{
			Backend:    "http",
			URL:        "http://localhost:8081/annotate",
			Model:      "KnightsAnalytics/distilbert-NER",
			Timeout:    30 * time.Second,
			RatePerSec: 20,
			Burst:      5,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: runtime.NumCPU(),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		LLM: LLMConfig{
			Provider:  "",
			MaxTokens: 1000,
		},
		Output: OutputConfig{},
	}
}
