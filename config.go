package regbrain

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds all configuration for the Regbrain engine.
type Config struct {
	// Completion is the LLM endpoint used for extraction, aggregation
	// and risk scoring. One client instance is shared by every stage.
	Completion LLMConfig `json:"completion" yaml:"completion"`

	// MaxChunkChars bounds the size of a document chunk sent to the
	// completion backend. Defaults to 2500.
	MaxChunkChars int `json:"max_chunk_chars" yaml:"max_chunk_chars"`

	// SampleLimit caps how many chunks per document are analyzed, as a
	// cost control. 0 analyzes every chunk.
	SampleLimit int `json:"sample_limit" yaml:"sample_limit"`

	// Concurrency is the number of parallel completion calls during
	// extraction. Defaults to 4.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Temperature is the sampling temperature for all completion calls.
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// LLMConfig configures the completion provider endpoint.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"` // ollama, lmstudio, openrouter, openai, groq, xai, gemini, custom
	Model    string `json:"model" yaml:"model"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// DefaultConfig returns a Config with sensible defaults for local
// inference. SampleLimit defaults to 3 chunks per document; set it to 0
// for exhaustive extraction of long circulars.
func DefaultConfig() Config {
	return Config{
		Completion: LLMConfig{
			Provider: "ollama",
			Model:    "llama3.1:8b",
			BaseURL:  "http://localhost:11434",
		},
		MaxChunkChars: 2500,
		SampleLimit:   3,
		Concurrency:   4,
	}
}

// LoadConfig reads a JSON config file and applies REGBRAIN_* environment
// overrides. An empty path starts from DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("opening config: %w", err)
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("REGBRAIN_PROVIDER"); v != "" {
		cfg.Completion.Provider = v
	}
	if v := os.Getenv("REGBRAIN_MODEL"); v != "" {
		cfg.Completion.Model = v
	}
	if v := os.Getenv("REGBRAIN_BASE_URL"); v != "" {
		cfg.Completion.BaseURL = v
	}
	if v := os.Getenv("REGBRAIN_LLM_API_KEY"); v != "" {
		cfg.Completion.APIKey = v
	}

	// Fallback: check well-known provider env vars for API keys.
	if cfg.Completion.APIKey == "" {
		switch cfg.Completion.Provider {
		case "openai":
			cfg.Completion.APIKey = os.Getenv("OPENAI_API_KEY")
		case "groq":
			cfg.Completion.APIKey = os.Getenv("GROQ_API_KEY")
		case "openrouter":
			cfg.Completion.APIKey = os.Getenv("OPENROUTER_API_KEY")
		case "gemini":
			cfg.Completion.APIKey = os.Getenv("GEMINI_API_KEY")
		case "xai":
			cfg.Completion.APIKey = os.Getenv("XAI_API_KEY")
		}
	}
}
