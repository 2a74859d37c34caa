package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirillkom/legal-intake/internal/config"
	"github.com/kirillkom/legal-intake/internal/core/analysis"
	"github.com/kirillkom/legal-intake/internal/core/domain"
	"github.com/kirillkom/legal-intake/internal/core/ports"
	"github.com/kirillkom/legal-intake/internal/core/usecase"
	"github.com/kirillkom/legal-intake/internal/infrastructure/catalog"
	"github.com/kirillkom/legal-intake/internal/infrastructure/extractor"
	"github.com/kirillkom/legal-intake/internal/infrastructure/ledger"
	"github.com/kirillkom/legal-intake/internal/infrastructure/queue/nats"
	"github.com/kirillkom/legal-intake/internal/infrastructure/repository/jsonfile"
	"github.com/kirillkom/legal-intake/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/legal-intake/internal/infrastructure/resilience"
	"github.com/kirillkom/legal-intake/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/legal-intake/internal/observability/metrics"
)

var ErrEventsDisabled = errors.New("NATS_URL is not configured")

type App struct {
	Config config.Config
	Logger *slog.Logger

	Ledger    *ledger.Ledger
	Templates *catalog.Store
	Storage   *localfs.Storage
	Decoders  *extractor.Registry
	Metrics   *metrics.HTTPServerMetrics
	IntakeUC  *usecase.IntakeUseCase

	closeFns []func()
}

// New wires the intake pipeline: state store, ledger, catalog (with optional
// hot reload), storage, decoders, analysis engine and the optional event
// publisher.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (app *App, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	app = &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewHTTPServerMetrics("api"),
	}
	defer func() {
		if err != nil {
			app.Close()
			app = nil
		}
	}()

	store, err := app.openStateStore(ctx)
	if err != nil {
		return app, err
	}
	app.Ledger = ledger.New(store)

	seed, err := loadSeed(cfg.TemplatesPath)
	if err != nil {
		return app, err
	}
	state, err := app.Ledger.Load(ctx, seed)
	if err != nil {
		return app, fmt.Errorf("load ledger: %w", err)
	}
	if err := app.initCatalog(ctx, seed, state.Pages); err != nil {
		return app, err
	}

	app.Storage, err = localfs.New(cfg.StoragePath)
	if err != nil {
		return app, fmt.Errorf("init object storage: %w", err)
	}
	app.Decoders, err = extractor.Build(app.Storage, cfg.DocumentDecodeTypes, cfg.DocumentMaxBytes)
	if err != nil {
		return app, fmt.Errorf("init document decoders: %w", err)
	}

	var publisher ports.SessionPublisher
	if cfg.NATSURL != "" {
		queue, err := NewEventQueue(cfg, logger, app.Metrics)
		if err != nil {
			return app, err
		}
		app.closeFns = append(app.closeFns, queue.Close)
		publisher = queue
	}

	app.IntakeUC = usecase.NewIntakeUseCase(
		usecase.NewIngestFileUseCase(app.Storage),
		app.Decoders,
		analysis.NewEngine(analysis.PlaceholderResponder{Prefix: cfg.AIResponsePrefix}),
		app.Templates,
		app.Ledger,
		publisher,
		logger,
	)

	logger.Info("intake_ready",
		"ledger_backend", cfg.LedgerBackend,
		"templates", app.Templates.Len(),
		"decode_types", app.Decoders.Types(),
		"events", publisher != nil,
	)
	return app, nil
}

// NewEventQueue connects to NATS with retrying publishes. m may be nil.
func NewEventQueue(cfg config.Config, logger *slog.Logger, m *metrics.HTTPServerMetrics) (*nats.Queue, error) {
	execOpts := []resilience.Option{resilience.WithLogger(logger)}
	if m != nil {
		execOpts = append(execOpts, resilience.WithRetryHook(func(op string) {
			m.RecordRetry("api", op)
		}))
	}
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		QueueGroup:         cfg.NATSQueueGroup,
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultPolicy(), execOpts...),
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}
	return queue, nil
}

func (a *App) openStateStore(ctx context.Context) (ports.StateStore, error) {
	switch a.Config.LedgerBackend {
	case "", config.LedgerBackendFile:
		return jsonfile.NewStateRepository(a.Config.LedgerPath), nil
	case config.LedgerBackendPostgres:
		db, err := postgres.OpenDB(a.Config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closeFns = append(a.closeFns, func() { _ = db.Close() })
		repo := postgres.NewStateRepository(db, a.Config.LedgerStateKey)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, nil
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "open state store",
			fmt.Errorf("unknown ledger backend %q", a.Config.LedgerBackend))
	}
}

// initCatalog picks the live catalog. A configured catalog file is
// authoritative and is copied into the ledger; otherwise the pages already
// persisted in the ledger are served.
func (a *App) initCatalog(ctx context.Context, seed, persisted []domain.Template) error {
	if a.Config.TemplatesPath == "" {
		a.Templates = catalog.NewStore(persisted)
		return nil
	}

	a.Templates = catalog.NewStore(seed)
	if err := a.Ledger.SyncPages(ctx, seed); err != nil {
		return fmt.Errorf("sync catalog pages: %w", err)
	}
	if !a.Config.TemplatesWatch {
		return nil
	}

	watcher, err := catalog.NewWatcher(a.Config.TemplatesPath, func(templates []domain.Template) {
		a.Templates.Replace(templates)
		if err := a.Ledger.SyncPages(context.Background(), templates); err != nil {
			a.Logger.Warn("catalog_pages_sync_failed", "error", err.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("watch catalog: %w", err)
	}
	watcher.Start(ctx)
	a.closeFns = append(a.closeFns, watcher.Stop)
	return nil
}

func loadSeed(path string) ([]domain.Template, error) {
	if path == "" {
		return catalog.Builtin(), nil
	}
	templates, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load template catalog: %w", err)
	}
	return templates, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}

// NewSubscriber is the worker-side connection; it requires NATS_URL.
func NewSubscriber(cfg config.Config, logger *slog.Logger) (*nats.Queue, error) {
	if cfg.NATSURL == "" {
		return nil, ErrEventsDisabled
	}
	return NewEventQueue(cfg, logger, nil)
}
