package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethanbaker/legal-assistant/internal/api"
	"github.com/ethanbaker/legal-assistant/internal/chat"
	"github.com/ethanbaker/legal-assistant/internal/llm"
	"github.com/ethanbaker/legal-assistant/internal/observability"
	"github.com/ethanbaker/legal-assistant/internal/prompt"
	"github.com/ethanbaker/legal-assistant/internal/stores"
	"github.com/ethanbaker/legal-assistant/internal/stores/history"
	"github.com/ethanbaker/legal-assistant/internal/stores/memory"
	"github.com/ethanbaker/legal-assistant/pkg/utils"
	"github.com/rs/zerolog"
)

// Start the API server
func main() {
	// Load global config
	cfg := utils.NewConfigFromEnv(utils.EnvFile())
	log := utils.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("API server exited")
	}
}

func run(ctx context.Context, cfg *utils.Config, log zerolog.Logger) error {
	shutdownTracing, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	// Initialize database connection to create stores
	db, err := stores.OpenMySQL(stores.MySQLDSN(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(db); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}()

	historyStore, err := history.NewStore(db)
	if err != nil {
		return err
	}

	memoryStore, err := memory.NewStore(db)
	if err != nil {
		return err
	}

	generator, err := llm.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	orchestrator := chat.NewOrchestrator(historyStore, memoryStore, prompt.NewComposer(loadPolicy(cfg, log)), generator,
		chat.WithLogger(log),
		chat.WithTaskTimeout(cfg.GetDurationWithDefault("MEMORY_TASK_TIMEOUT", chat.DefaultTaskTimeout)),
	)
	// Let memory extraction for answered turns finish before the database closes
	defer orchestrator.Wait()

	engine, err := api.NewEngine(cfg, log, api.Services{
		Chat:          orchestrator,
		Conversations: historyStore,
		Memory:        memoryStore,
	})
	if err != nil {
		return err
	}

	return api.Start(ctx, cfg, log, engine)
}

// loadPolicy reads the policy file at POLICY_PATH, falling back to the built-in policy
func loadPolicy(cfg *utils.Config, log zerolog.Logger) prompt.Policy {
	path := cfg.Get("POLICY_PATH")
	if path == "" {
		return prompt.DefaultPolicy()
	}

	policy, err := prompt.LoadPolicy(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("using default policy")
		return prompt.DefaultPolicy()
	}
	return policy
}
