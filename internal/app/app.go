// Package app wires configuration, storage, clients, and services
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sambrennan/folio/internal/clients"
	"github.com/sambrennan/folio/internal/clients/gemini"
	"github.com/sambrennan/folio/internal/clients/yahoo"
	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/services/holdings"
	"github.com/sambrennan/folio/internal/services/insight"
	"github.com/sambrennan/folio/internal/services/portfolio"
	"github.com/sambrennan/folio/internal/services/sentiment"
	"github.com/sambrennan/folio/internal/storage"
)

// App holds all initialized services and clients.
// It is the shared core behind cmd/folio-server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	YahooClient      interfaces.MarketDataClient
	GeminiClient     interfaces.GeminiClient
	Registry         interfaces.ProviderRegistry
	AccountService   interfaces.AccountService
	PortfolioService interfaces.PortfolioService
	SentimentService interfaces.SentimentService
	InsightService   interfaces.InsightService
	StartupTime      time.Time

	scheduler *Scheduler
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services from configuration.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Load configuration - check provided path, FOLIO_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
	)

	var geminiClient interfaces.GeminiClient
	if config.Clients.Gemini.APIKey != "" {
		client, err := gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - assistant and scoring unavailable")
		} else {
			geminiClient = client
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - assistant and scoring unavailable")
	}

	registry := clients.DefaultRegistry(logger)

	accountService := holdings.NewService(storageManager, registry, config.Sync.AccountTimeout(), logger)
	portfolioService := portfolio.NewService(storageManager, yahooClient, logger)
	sentimentService := sentiment.NewService(storageManager, yahooClient, scorerOrNil(geminiClient), config, logger)
	insightService := insight.NewService(portfolioService, sentimentService, assistantOrNil(geminiClient), logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		YahooClient:      yahooClient,
		GeminiClient:     geminiClient,
		Registry:         registry,
		AccountService:   accountService,
		PortfolioService: portfolioService,
		SentimentService: sentimentService,
		InsightService:   insightService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// scorerOrNil returns the Gemini surface as a scorer, or the unavailable
// stub when the client could not be initialized.
func scorerOrNil(client interfaces.GeminiClient) interfaces.SentimentScorer {
	if client == nil {
		return unavailableAssistant{}
	}
	return client
}

func assistantOrNil(client interfaces.GeminiClient) interfaces.AssistantClient {
	if client == nil {
		return unavailableAssistant{}
	}
	return client
}

// StartScheduler launches the cron jobs for nightly snapshots and periodic
// sentiment refresh.
func (a *App) StartScheduler() error {
	scheduler, err := NewScheduler(a.Config, a.PortfolioService, a.SentimentService, a.AccountService, a.Logger)
	if err != nil {
		return err
	}
	a.scheduler = scheduler
	a.scheduler.Start()
	return nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, close storage.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		a.scheduler = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
