// Package app wires configuration, storage, clients, and services into
// the shared application core used by cmd/riskos-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/riskoslabs/riskos/internal/clients/quotes"
	"github.com/riskoslabs/riskos/internal/clients/riskengine"
	"github.com/riskoslabs/riskos/internal/common"
	"github.com/riskoslabs/riskos/internal/interfaces"
	"github.com/riskoslabs/riskos/internal/services/analysis"
	"github.com/riskoslabs/riskos/internal/services/enrich"
	"github.com/riskoslabs/riskos/internal/services/history"
	"github.com/riskoslabs/riskos/internal/storage"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	EngineClient    interfaces.RiskEngineClient
	QuoteClient     interfaces.QuoteClient
	AnalysisService interfaces.AnalysisService
	HistoryService  interfaces.HistoryService
	EnrichService   interfaces.EnrichmentService
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is
// used: RISKOS_CONFIG, then riskos.toml next to the binary, then the
// development fallback config/riskos.toml.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Local development convenience; absence is not an error.
	_ = godotenv.Load()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("RISKOS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "riskos.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/riskos.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory so the
	// server is self-contained wherever it is installed.
	if config.Storage.Internal.Path != "" && !filepath.IsAbs(config.Storage.Internal.Path) {
		config.Storage.Internal.Path = filepath.Join(binDir, config.Storage.Internal.Path)
	}
	if config.Storage.History.Path != "" && !filepath.IsAbs(config.Storage.History.Path) {
		config.Storage.History.Path = filepath.Join(binDir, config.Storage.History.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()
	internalStore := storageManager.InternalStore()

	engineKey, err := common.ResolveAPIKey(ctx, internalStore, "engine_api_key", config.Clients.RiskEngine.APIKey)
	if err != nil {
		logger.Debug().Msg("Engine API key not configured - submitting unauthenticated")
	}

	quotesKey, err := common.ResolveAPIKey(ctx, internalStore, "quotes_api_key", config.Clients.Quotes.APIKey)
	if err != nil {
		logger.Warn().Msg("Quotes API key not configured - live price enrichment will be unavailable")
	}

	engineClient := riskengine.NewClient(engineKey,
		riskengine.WithBaseURL(config.Clients.RiskEngine.BaseURL),
		riskengine.WithLogger(logger),
		riskengine.WithRateLimit(config.Clients.RiskEngine.RateLimit),
		riskengine.WithTimeout(config.Clients.RiskEngine.GetTimeout()),
	)

	var quoteClient interfaces.QuoteClient
	if quotesKey != "" {
		quoteClient = quotes.NewClient(quotesKey,
			quotes.WithBaseURL(config.Clients.Quotes.BaseURL),
			quotes.WithLogger(logger),
			quotes.WithRateLimit(config.Clients.Quotes.RateLimit),
			quotes.WithTimeout(config.Clients.Quotes.GetTimeout()),
		)
	}

	historyService := history.NewService(storageManager.HistoryStore(), logger)
	enrichService := enrich.NewService(quoteClient, logger)
	analysisService := analysis.NewService(engineClient, enrichService, historyService, logger)

	logger.Info().
		Str("environment", config.Environment).
		Str("engine_url", config.Clients.RiskEngine.BaseURL).
		Bool("quotes_configured", quoteClient != nil).
		Dur("startup", time.Since(startupStart)).
		Msg("Application initialized")

	return &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		EngineClient:    engineClient,
		QuoteClient:     quoteClient,
		AnalysisService: analysisService,
		HistoryService:  historyService,
		EnrichService:   enrichService,
		StartupTime:     startupStart,
	}, nil
}

// Close releases storage resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
