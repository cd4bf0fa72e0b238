// Command docuchat answers questions about uploaded documents and recordings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docuchat/internal/adapters/driven/ai"
	"github.com/custodia-labs/docuchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docuchat/internal/adapters/driven/extract/pdf"
	"github.com/custodia-labs/docuchat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docuchat/internal/adapters/driven/storage/uploads"
	"github.com/custodia-labs/docuchat/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docuchat/internal/adapters/driving/cli"
	"github.com/custodia-labs/docuchat/internal/core/services"
	"github.com/custodia-labs/docuchat/internal/logger"
	"github.com/custodia-labs/docuchat/internal/metrics"
	"github.com/custodia-labs/docuchat/internal/postprocessors"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A missing .env is fine.
	_ = godotenv.Load()
	logger.InitFromEnv()

	home, err := homeDir()
	if err != nil {
		return err
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	aiServices := ai.Init(settings)
	defer aiServices.Close()
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	store, err := sqlite.NewStore(filepath.Join(home, "data"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	uploadStore, err := uploads.NewStore(filepath.Join(home, "uploads"))
	if err != nil {
		return err
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	chunker, err := registry.Build("chunker", postprocessors.ChunkerConfig(settings.Chunking))
	if err != nil {
		return fmt.Errorf("chunking settings: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()

	loader, err := services.NewIndexLoader(store.ChunkStore(), aiServices.EmbeddingService, flat.Factory(),
		services.IndexLoaderConfig{
			CacheSize:    settings.Index.CacheSize,
			EmbedTimeout: settings.Index.EmbedTimeout,
		})
	if err != nil {
		return err
	}
	loader.SetObserver(recorder)

	queryService := services.NewQueryService(loader, store.ChunkStore(), aiServices.EmbeddingService,
		aiServices.LLMService, services.QueryServiceConfig{
			TopK:    settings.Query.TopK,
			Timeout: settings.Query.Timeout,
		})
	queryService.SetPromptStore(prompts)
	queryService.SetObserver(recorder)

	cli.SetServices(cli.Services{
		Ingest: services.NewIngestService(store.DocumentStore(), store.ChunkStore(), uploadStore,
			chunker, pdf.NewExtractor(), aiServices.Transcriber, loader),
		Query:    queryService,
		Document: services.NewDocumentService(store.DocumentStore(), store.ChunkStore(), uploadStore, loader),
		Index:    loader,
		Settings: settingsService,
		Metrics:  recorder.Handler(),
	})
	cli.SetVersion(version)

	return cli.Execute(ctx)
}

// homeDir returns $DOCUCHAT_HOME, or ~/.docuchat.
func homeDir() (string, error) {
	if dir := os.Getenv("DOCUCHAT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".docuchat"), nil
}
