// Package config loads the process-level configuration surface: the
// AgentConfig caps/timeouts (spec §3, §6), the Anthropic credentials, and
// the storage backend selection. Grounded on pkg/config's
// loader (YAML file plus environment overrides via godotenv) reduced to
// this system's much smaller configuration surface.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/agentcore/orchestrator/internal/models"
)

// Config is everything cmd/agentcore needs to wire the orchestrator graph.
type Config struct {
	Agent   models.AgentConfig `yaml:"agent"`
	Storage StorageConfig      `yaml:"storage"`
	LLM     LLMConfig          `yaml:"llm"`
}

// StorageConfig selects and configures the persistence port implementation.
type StorageConfig struct {
	// Backend is "memory" or "sqlite"; defaults to "memory".
	Backend string `yaml:"backend"`
	// Path is the SQLite database file; ignored for the memory backend.
	Path string `yaml:"path"`
}

// LLMConfig configures the Anthropic call_llm collaborator.
type LLMConfig struct {
	// APIKeyEnv names the environment variable holding the Anthropic API
	// key, so the key itself never has to live in the YAML file.
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// yamlConfig mirrors Config but with string durations, since
// time.Duration has no native YAML representation the way JSON tags give
// it via encoding/json's text marshaler convention.
type yamlConfig struct {
	Agent struct {
		MaxTotalLLMTurns     int    `yaml:"max_total_llm_turns"`
		MaxClarifyIters      int    `yaml:"max_clarify_iters"`
		MaxPlanRevisions     int    `yaml:"max_plan_revisions"`
		MaxToolCallsPerStep  int    `yaml:"max_tool_calls_per_step"`
		ApprovalTimeout      string `yaml:"approval_timeout"`
		ToolExecutionTimeout string `yaml:"tool_execution_timeout"`
	} `yaml:"agent"`
	Storage StorageConfig `yaml:"storage"`
	LLM     LLMConfig     `yaml:"llm"`
}

// Default returns the default AgentConfig values plus an in-memory
// storage backend and a bare LLM config expecting ANTHROPIC_API_KEY in the
// environment.
func Default() *Config {
	return &Config{
		Agent:   models.DefaultAgentConfig(),
		Storage: StorageConfig{Backend: "memory"},
		LLM:     LLMConfig{APIKeyEnv: "ANTHROPIC_API_KEY"},
	}
}

// Load reads envPath (if present) into the process environment, then
// layers a YAML config file at configPath over those defaults. Either
// path may be empty to skip that step.
func Load(configPath, envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: load env file: %w", err)
		}
	}

	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", configPath, err)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(raw, &y); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
	}

	if y.Agent.MaxTotalLLMTurns > 0 {
		cfg.Agent.MaxTotalLLMTurns = y.Agent.MaxTotalLLMTurns
	}
	if y.Agent.MaxClarifyIters > 0 {
		cfg.Agent.MaxClarifyIters = y.Agent.MaxClarifyIters
	}
	if y.Agent.MaxPlanRevisions > 0 {
		cfg.Agent.MaxPlanRevisions = y.Agent.MaxPlanRevisions
	}
	if y.Agent.MaxToolCallsPerStep > 0 {
		cfg.Agent.MaxToolCallsPerStep = y.Agent.MaxToolCallsPerStep
	}
	if d, err := parseDuration(y.Agent.ApprovalTimeout); err == nil && d > 0 {
		cfg.Agent.ApprovalTimeout = d
	}
	if d, err := parseDuration(y.Agent.ToolExecutionTimeout); err == nil && d > 0 {
		cfg.Agent.ToolExecutionTimeout = d
	}
	if y.Storage.Backend != "" {
		cfg.Storage = y.Storage
	}
	if y.LLM.APIKeyEnv != "" || y.LLM.BaseURL != "" || y.LLM.Model != "" || y.LLM.MaxTokens != 0 {
		cfg.LLM = y.LLM
		if cfg.LLM.APIKeyEnv == "" {
			cfg.LLM.APIKeyEnv = "ANTHROPIC_API_KEY"
		}
	}

	return cfg, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
