package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/saffan19/MindScroll/internal/config"
	"github.com/saffan19/MindScroll/internal/infrastructure/classify"
	"github.com/saffan19/MindScroll/internal/infrastructure/extract"
	"github.com/saffan19/MindScroll/internal/infrastructure/feed"
	"github.com/saffan19/MindScroll/internal/infrastructure/llm"
	"github.com/saffan19/MindScroll/internal/infrastructure/storage"
	"github.com/saffan19/MindScroll/internal/infrastructure/telegram"
	"github.com/saffan19/MindScroll/internal/logging"
	"github.com/saffan19/MindScroll/internal/ports"
	"github.com/saffan19/MindScroll/internal/usecase"
)

// Application wires configuration to the ingestion pipeline.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	db       *sql.DB
	logger   *slog.Logger
}

// New builds a runnable application instance or fails on misconfiguration.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	sources, err := feed.LoadSources(cfg.Resources.SourcesFile)
	if err != nil {
		return nil, err
	}
	labels, err := classify.LoadTaxonomy(cfg.Resources.CategoriesFile)
	if err != nil {
		return nil, err
	}

	ring, err := llm.NewKeyRing(cfg.Gemini.APIKeys)
	if err != nil {
		return nil, fmt.Errorf("credentials: %w", err)
	}

	app := &Application{cfg: cfg, logger: baseLogger}

	sink, err := app.buildSink(baseLogger)
	if err != nil {
		return nil, err
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	app.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Sources:               sources,
		Labels:                labels,
		Feed:                  feed.NewReader(),
		Extractor:             extract.NewExtractor(nil, baseLogger.With("component", "extractor")),
		Classifier:            classify.NewClient(cfg.Classifier.InferenceURL, cfg.Classifier.APIKey),
		Enricher:              llm.NewClient(cfg.Gemini.Endpoint, cfg.Gemini.Model, ring, baseLogger.With("component", "enricher")),
		Sink:                  sink,
		Notifier:              notifier,
		Logger:                baseLogger.With("component", "pipeline"),
		SkipOnEmptyEnrichment: cfg.Pipeline.SkipOnEmptyEnrichment,
	})

	return app, nil
}

func (a *Application) buildSink(logger *slog.Logger) (ports.ArticleSink, error) {
	switch a.cfg.Sink.Mode {
	case config.SinkFile:
		return storage.NewFileSink(a.cfg.Sink.ContentFile, logger.With("component", "sink.file")), nil
	case config.SinkPostgres:
		db, err := sql.Open("postgres", a.cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = db
		mode := storage.ModeIgnore
		if a.cfg.Sink.Upsert {
			mode = storage.ModeUpsert
		}
		return storage.NewPostgresSink(db, mode, logger.With("component", "sink.postgres")), nil
	default:
		return nil, fmt.Errorf("unknown sink mode %q", a.cfg.Sink.Mode)
	}
}

// Run performs a single ingestion batch.
func (a *Application) Run(ctx context.Context) error {
	_, err := a.pipeline.Run(ctx)
	return err
}

// Close releases the store connection, if one was opened.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
