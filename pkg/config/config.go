package config

import (
	"fmt"
	"os"
	"time"

	"github.com/askdb-ai/askdb/pkg/models"
	"gopkg.in/yaml.v3"
)

// Config holds all askdb configuration. Components receive their slice of it
// at construction; there is no package-level state.
type Config struct {
	Listen   string             `yaml:"listen"`
	Data     DataConfig         `yaml:"data"`
	Cache    CacheConfig        `yaml:"cache"`
	Provider ProviderConfig     `yaml:"provider"`
	Audit    models.AuditConfig `yaml:"audit"`
}

// DataConfig identifies the relational store and the single queried relation.
// Driver is "sqlite" (default) or "pgx" for PostgreSQL.
type DataConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
}

// CacheConfig controls the semantic cache. Threshold is the cosine
// similarity a top match must strictly exceed to count as a hit.
type CacheConfig struct {
	Enabled   bool    `yaml:"enabled"`
	DBPath    string  `yaml:"db_path"`
	Threshold float64 `yaml:"threshold"`
	TopK      int     `yaml:"top_k"`
	Dimension int     `yaml:"dimension"`
}

// ProviderConfig defines the upstream model endpoint. URL points at an
// OpenAI-compatible API root (e.g. http://localhost:11434/v1 for Ollama).
type ProviderConfig struct {
	URL        string        `yaml:"url"`
	APIKey     string        `yaml:"api_key"`
	EmbedModel string        `yaml:"embed_model"`
	ChatModel  string        `yaml:"chat_model"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Data: DataConfig{
			Driver: "sqlite",
			DSN:    "askdb.db",
			Table:  "movies",
		},
		Cache: CacheConfig{
			Enabled:   true,
			DBPath:    "askdb-cache.db",
			Threshold: 0.95,
			TopK:      1,
			Dimension: 768,
		},
		Provider: ProviderConfig{
			URL:        "http://localhost:11434/v1",
			EmbedModel: "nomic-embed-text",
			ChatModel:  "llama3.1",
			Timeout:    60 * time.Second,
		},
		Audit: models.AuditConfig{
			Enabled:       false,
			DBPath:        "askdb-audit.db",
			RetentionDays: 30,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Data.Table == "" {
		return fmt.Errorf("config: data.table must be set")
	}
	if c.Data.Driver != "sqlite" && c.Data.Driver != "pgx" {
		return fmt.Errorf("config: unknown data.driver %q (want sqlite or pgx)", c.Data.Driver)
	}
	if c.Cache.Threshold < -1 || c.Cache.Threshold > 1 {
		return fmt.Errorf("config: cache.threshold %v outside [-1, 1]", c.Cache.Threshold)
	}
	if c.Cache.TopK <= 0 {
		return fmt.Errorf("config: cache.top_k must be positive")
	}
	if c.Cache.Dimension <= 0 {
		return fmt.Errorf("config: cache.dimension must be positive")
	}
	return nil
}
