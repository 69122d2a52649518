package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentcore/orchestrator/internal/approval"
	"github.com/agentcore/orchestrator/internal/builtintools"
	"github.com/agentcore/orchestrator/internal/config"
	"github.com/agentcore/orchestrator/internal/events"
	"github.com/agentcore/orchestrator/internal/llmclient"
	"github.com/agentcore/orchestrator/internal/metrics"
	"github.com/agentcore/orchestrator/internal/orchestrator"
	"github.com/agentcore/orchestrator/internal/storage"
	"github.com/agentcore/orchestrator/internal/tools"
	"github.com/agentcore/orchestrator/internal/tracing"
)

// app bundles every collaborator the orchestrator graph needs, wired from a
// loaded Config. Building this is the CLI's one real job; run/resume/tools
// only differ in what they do with it afterward.
type app struct {
	cfg          *config.Config
	registry     *tools.Registry
	risk         *tools.RiskClassifier
	bus          *events.Bus
	approvals    *approval.ApprovalStore
	humanInput   *approval.HumanInputStore
	store        storage.Persistence
	orchestrator *orchestrator.Orchestrator
	callLLM      llmclient.Func
}

func buildApp(flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath, flags.envPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	registry := tools.NewRegistry()
	if err := builtintools.Register(registry); err != nil {
		return nil, err
	}
	risk := tools.NewRiskClassifier()
	bus := events.New()
	approvals := approval.NewApprovalStore()
	humanInput := approval.NewHumanInputStore()

	store, err := buildStore(cfg, flags.dbPath)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	tracer := tracing.New("agentcore")

	orch := orchestrator.New(registry, risk, approvals, humanInput, bus, store)
	orch.Metrics = collector
	orch.Tracer = tracer
	orch.Logger = newLogger(flags.verbose)

	callLLM, err := buildLLMClient(cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg: cfg, registry: registry, risk: risk, bus: bus,
		approvals: approvals, humanInput: humanInput, store: store,
		orchestrator: orch, callLLM: callLLM,
	}, nil
}

func buildStore(cfg *config.Config, dbPathOverride string) (storage.Persistence, error) {
	path := cfg.Storage.Path
	if dbPathOverride != "" {
		path = dbPathOverride
	}
	if cfg.Storage.Backend == "sqlite" || dbPathOverride != "" {
		if path == "" {
			path = "agentcore.db"
		}
		return storage.OpenSQLite(path)
	}
	return storage.NewMemory(), nil
}

func buildLLMClient(cfg *config.Config) (llmclient.Func, error) {
	apiKey := ""
	if cfg.LLM.APIKeyEnv != "" {
		apiKey = envOrEmpty(cfg.LLM.APIKeyEnv)
	}
	client, err := llmclient.NewAnthropicClient(llmclient.AnthropicConfig{
		APIKey: apiKey, BaseURL: cfg.LLM.BaseURL, Model: cfg.LLM.Model, MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("build llm client: %w", err)
	}
	return client.Call, nil
}

func envOrEmpty(key string) string {
	return os.Getenv(key)
}
