package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

// LLMConfig configures one model endpoint (embedder or summarizer).
type LLMConfig struct {
	Provider string `yaml:"provider"` // ollama or openai
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// GeneratorConfig configures the trait-extraction generator. Models is the
// priority-ordered candidate list tried in turn until one answers.
type GeneratorConfig struct {
	Provider     string   `yaml:"provider"` // ollama or openai
	BaseURL      string   `yaml:"base_url"`
	Key          string   `yaml:"key"`
	Models       []string `yaml:"models"`
	MaxNewTokens int      `yaml:"max_new_tokens"`
}

type ChunkingConfig struct {
	MaxTokens      int `yaml:"max_tokens"`
	MinTokens      int `yaml:"min_tokens"`
	OverlapTokens  int `yaml:"overlap_tokens"`
	PageModeTokens int `yaml:"page_mode_tokens"`
}

type StorageConfig struct {
	RawDir       string `yaml:"raw_dir"`
	ProcessedDir string `yaml:"processed_dir"`
}

type ArtifactConfig struct {
	Backend string `yaml:"backend"` // json or chromem
	Path    string `yaml:"path"`    // chromem db directory
}

type Config struct {
	Database   DatabaseConfig  `yaml:"database"`
	Embedder   LLMConfig       `yaml:"embedder"`
	Generator  GeneratorConfig `yaml:"generator"`
	Summarizer LLMConfig       `yaml:"summarizer"`
	Chunking   ChunkingConfig  `yaml:"chunking"`
	Storage    StorageConfig   `yaml:"storage"`
	Artifact   ArtifactConfig  `yaml:"artifact"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Chunking.MaxTokens == 0 {
		c.Chunking.MaxTokens = 900
	}
	if c.Chunking.MinTokens == 0 {
		c.Chunking.MinTokens = 120
	}
	if c.Chunking.OverlapTokens == 0 {
		c.Chunking.OverlapTokens = 120
	}
	if c.Chunking.PageModeTokens == 0 {
		c.Chunking.PageModeTokens = 400
	}
	if c.Generator.MaxNewTokens == 0 {
		c.Generator.MaxNewTokens = 512
	}
	if c.Storage.RawDir == "" {
		c.Storage.RawDir = "data/raw_files"
	}
	if c.Storage.ProcessedDir == "" {
		c.Storage.ProcessedDir = "data/processed_files"
	}
	if c.Artifact.Backend == "" {
		c.Artifact.Backend = "json"
	}
}

// Validate checks required credentials and endpoints once at startup so a
// misconfiguration fails before the first document is accepted.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if err := validateLLM("embedder", c.Embedder.Provider, c.Embedder.Key, c.Embedder.Model); err != nil {
		return err
	}
	if err := validateLLM("summarizer", c.Summarizer.Provider, c.Summarizer.Key, c.Summarizer.Model); err != nil {
		return err
	}
	if len(c.Generator.Models) == 0 {
		return fmt.Errorf("generator.models must list at least one model")
	}
	if err := validateLLM("generator", c.Generator.Provider, c.Generator.Key, c.Generator.Models[0]); err != nil {
		return err
	}
	if c.Artifact.Backend != "json" && c.Artifact.Backend != "chromem" {
		return fmt.Errorf("artifact.backend must be json or chromem, got %q", c.Artifact.Backend)
	}
	if c.Artifact.Backend == "chromem" && c.Artifact.Path == "" {
		return fmt.Errorf("artifact.path is required for the chromem backend")
	}
	return nil
}

func validateLLM(section, provider, key, model string) error {
	switch provider {
	case "ollama":
	case "openai":
		if key == "" {
			return fmt.Errorf("%s.key is required for the openai provider", section)
		}
	default:
		return fmt.Errorf("%s.provider must be ollama or openai, got %q", section, provider)
	}
	if model == "" {
		return fmt.Errorf("%s.model is required", section)
	}
	return nil
}
