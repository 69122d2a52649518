package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoFilesReturnsDefaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Agent.MaxTotalLLMTurns)
	assert.Equal(t, 3, cfg.Agent.MaxClarifyIters)
	assert.Equal(t, 60*time.Second, cfg.Agent.ApprovalTimeout)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "ANTHROPIC_API_KEY", cfg.LLM.APIKeyEnv)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agentcore.yaml")
	contents := `
agent:
  max_total_llm_turns: 5
  approval_timeout: 10s
storage:
  backend: sqlite
  path: test.db
llm:
  model: claude-opus-4
  max_tokens: 8192
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Agent.MaxTotalLLMTurns)
	assert.Equal(t, 10*time.Second, cfg.Agent.ApprovalTimeout)
	assert.Equal(t, 3, cfg.Agent.MaxClarifyIters, "fields absent from the YAML keep their default")
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "test.db", cfg.Storage.Path)
	assert.Equal(t, "claude-opus-4", cfg.LLM.Model)
	assert.Equal(t, int64(8192), cfg.LLM.MaxTokens)
}

func TestLoad_MissingConfigFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, Default().Agent, cfg.Agent)
}
