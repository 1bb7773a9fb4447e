// -----------------------------------------------------------------------
// Application Wiring - Construct and connect all services
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/docuchat/docuchat/internal/common"
	"github.com/docuchat/docuchat/internal/interfaces"
	"github.com/docuchat/docuchat/internal/services/answer"
	"github.com/docuchat/docuchat/internal/services/documents"
	"github.com/docuchat/docuchat/internal/services/extract"
	"github.com/docuchat/docuchat/internal/services/llm"
	"github.com/docuchat/docuchat/internal/services/query"
	"github.com/docuchat/docuchat/internal/services/retrieval"
	"github.com/docuchat/docuchat/internal/services/vision"
	"github.com/docuchat/docuchat/internal/storage/badger"
	"github.com/docuchat/docuchat/internal/storage/filesystem"
	"github.com/docuchat/docuchat/internal/vectorindex"
)

// App holds all application components and dependencies.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	FileStorage    interfaces.FileStorage

	// Providers
	Gemini     *llm.GeminiService
	Generative interfaces.GenerativeService

	// Pipeline services
	DocumentService *documents.Service
	QueryService    *query.Service
}

// New initializes the application with all dependencies.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager
	app.FileStorage = filesystem.NewStorage(logger)

	gemini, err := llm.NewGeminiService(&cfg.Gemini, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize Gemini service: %w", err)
	}
	app.Gemini = gemini

	generative, err := llm.NewGenerativeService(cfg, gemini, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize generative service: %w", err)
	}
	app.Generative = generative

	textExtractor := extract.NewService(logger)
	mediaExtractor := vision.NewService(gemini, app.FileStorage, &cfg.Uploads, logger)
	indexStore := vectorindex.NewStore(app.FileStorage, logger)

	app.DocumentService = documents.NewService(
		cfg,
		storageManager,
		app.FileStorage,
		textExtractor,
		mediaExtractor,
		gemini,
		indexStore,
		logger,
	)

	engine := retrieval.NewEngine(indexStore, logger)
	assembler := answer.NewAssembler(generative, logger)
	app.QueryService = query.NewService(cfg, storageManager, gemini, engine, assembler, logger)

	logger.Info().
		Str("provider", cfg.LLM.DefaultProvider).
		Str("badger_path", cfg.Storage.Badger.Path).
		Msg("Application initialized")

	return app, nil
}

// Close releases all resources in reverse initialization order.
func (a *App) Close() error {
	var firstErr error

	if a.Generative != nil {
		if err := a.Generative.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.Gemini != nil {
		if err := a.Gemini.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.Logger.Info().Msg("Application shut down")
	return firstErr
}
