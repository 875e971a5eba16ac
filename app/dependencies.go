package app

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/upb/ai-docs-prompt/config"
	"github.com/upb/ai-docs-prompt/internal/embedding"
	"github.com/upb/ai-docs-prompt/internal/extract"
	"github.com/upb/ai-docs-prompt/internal/genai"
	"github.com/upb/ai-docs-prompt/internal/vectorstore"
	"github.com/upb/ai-docs-prompt/repositories"
	"github.com/upb/ai-docs-prompt/repositories/postgres"
	"github.com/upb/ai-docs-prompt/services/answer"
	"github.com/upb/ai-docs-prompt/services/documents"
	"github.com/upb/ai-docs-prompt/services/retrieval"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	DocumentRepo repositories.DocumentRepository

	// Storage and remote clients
	VectorStore     *vectorstore.Store
	EmbeddingClient *embedding.Client
	GenAIClient     *genai.Client
	Extractor       *extract.Extractor

	// Services
	Retrieval *retrieval.RetrievalService
	Answers   *answer.AnswerService
	Documents *documents.DocumentService
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := deps.initVectorStore(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	deps.initClients(cfg)
	deps.initServices(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// SQLDB exposes the raw database handle for health checks.
func (d *Dependencies) SQLDB() *sql.DB {
	if d.DB == nil {
		return nil
	}
	return d.DB.DB
}

// initDatabase initializes the PostgreSQL connection and schema
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return err
	}
	d.DB = db

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := db.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.DocumentRepo = postgres.NewDocumentRepository(db, d.Logger)

	d.Logger.Info("database initialized",
		zap.String("connection", cfg.Database.LogString()))
	return nil
}

// initVectorStore opens the on-disk chunk index
func (d *Dependencies) initVectorStore(cfg *config.Config) error {
	store, err := vectorstore.Open(cfg.VectorStore.Path, cfg.VectorStore.Collection, d.Logger)
	if err != nil {
		return err
	}
	d.VectorStore = store

	d.Logger.Info("vector store opened",
		zap.String("path", cfg.VectorStore.Path),
		zap.String("collection", cfg.VectorStore.Collection),
		zap.Int("entries", store.Count()))
	return nil
}

// initClients builds the remote Gemini clients and the text extractor
func (d *Dependencies) initClients(cfg *config.Config) {
	if cfg.Gemini.APIKey == "" {
		d.Logger.Warn("gemini API key not configured, remote calls will fail")
	}

	d.EmbeddingClient = embedding.NewClient(
		cfg.Gemini.APIKey,
		cfg.Gemini.EmbeddingModel,
		cfg.Gemini.BaseURL,
		cfg.Gemini.Timeout,
		d.Logger,
	)
	d.GenAIClient = genai.NewClient(
		cfg.Gemini.APIKey,
		cfg.Gemini.GenerationModel,
		cfg.Gemini.BaseURL,
		cfg.Gemini.Timeout,
		d.Logger,
	)
	d.Extractor = extract.New(d.Logger)
}

// initServices wires the service layer
func (d *Dependencies) initServices(cfg *config.Config) {
	d.Retrieval = retrieval.NewRetrievalService(d.EmbeddingClient, d.VectorStore, d.Logger)
	d.Answers = answer.NewAnswerService(d.GenAIClient, d.Logger)
	d.Documents = documents.NewDocumentService(
		d.DocumentRepo,
		d.Extractor,
		d.Retrieval,
		d.Answers,
		cfg.Upload.Dir,
		documents.RetrievalMode(cfg.Retrieval.Mode),
		d.Logger,
	)

	d.Logger.Info("services initialized",
		zap.String("retrieval_mode", cfg.Retrieval.Mode))
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.VectorStore != nil {
		if err := d.VectorStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close vector store: %w", err))
		} else {
			d.Logger.Info("vector store closed")
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
