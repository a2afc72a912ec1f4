package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-predictor/external/footballdata"
	"github.com/riskibarqy/match-predictor/external/webhook"
	"github.com/riskibarqy/match-predictor/internal/config"
	"github.com/riskibarqy/match-predictor/internal/domain/match"
	domainnotification "github.com/riskibarqy/match-predictor/internal/domain/notification"
	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
	"github.com/riskibarqy/match-predictor/internal/domain/userstats"
	"github.com/riskibarqy/match-predictor/internal/infrastructure/notification"
	"github.com/riskibarqy/match-predictor/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/match-predictor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/match-predictor/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/match-predictor/internal/interfaces/httpapi"
	"github.com/riskibarqy/match-predictor/internal/observability"
	idgen "github.com/riskibarqy/match-predictor/internal/platform/id"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/riskibarqy/match-predictor/internal/usecase"
	"github.com/sourcegraph/conc"
)

const listenerStopTimeout = 10 * time.Second

// App owns every long-lived component of the service.
type App struct {
	Server   *http.Server
	Listener *usecase.MatchEventListener
	Broker   *notification.Broker
	Metrics  *observability.Metrics

	cfg        config.Config
	logger     *logging.Logger
	db         *sqlx.DB
	background conc.WaitGroup
	cancel     context.CancelFunc
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{cfg: cfg, logger: logger}
	if cfg.MetricsEnabled {
		a.Metrics = observability.NewMetrics()
	}

	predictions, stats, err := a.openStores()
	if err != nil {
		return nil, err
	}

	a.Broker = notification.NewBroker(notification.BrokerConfig{OutputBuffer: cfg.EventBufferSize}, logger)
	publisher, err := a.buildPublisher()
	if err != nil {
		_ = a.closeResources()
		return nil, err
	}

	var metrics usecase.PipelineMetrics
	if a.Metrics != nil {
		metrics = a.Metrics
	}

	scorer := usecase.NewAutoScorer(predictions, stats, publisher, metrics, usecase.AutoScorerConfig{
		Workers: cfg.ScoringWorkers,
	}, logger)
	source := a.buildSource()
	a.Listener = usecase.NewMatchEventListener(source, scorer, publisher, metrics, usecase.MatchEventListenerConfig{
		PollInterval:     cfg.ListenerPollInterval,
		FetchTimeout:     cfg.ListenerFetchTimeout,
		StopTimeout:      listenerStopTimeout,
		ReconcileWorkers: cfg.ListenerReconcileWorkers,
	}, logger)

	handler := httpapi.NewHandler(
		usecase.NewPredictionService(predictions, publisher, idgen.NewUUIDGenerator(), logger),
		usecase.NewLeaderboardService(stats),
		usecase.NewMatchCatalog(source, cfg.ListenerFetchTimeout),
		scorer,
		a.Listener,
		logger,
	)

	routerCfg := httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminToken:         cfg.AdminToken,
	}
	if a.Metrics != nil {
		routerCfg.MetricsHandler = a.Metrics.Handler()
	}

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, routerCfg, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return a, nil
}

// Start launches the event log subscriber and, when enabled, the listener.
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	deliveries, err := a.Broker.Subscribe(runCtx, notification.AllEventsTopic)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe event log: %w", err)
	}
	a.background.Go(func() { a.logEvents(runCtx, deliveries) })

	if !a.cfg.ListenerEnabled {
		a.logger.InfoContext(ctx, "match event listener disabled, use the admin routes to start it")
		return nil
	}
	if err := a.Listener.Start(runCtx); err != nil {
		cancel()
		return fmt.Errorf("start match event listener: %w", err)
	}
	return nil
}

// Close stops the listener and releases the broker and the database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Listener.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.cancel != nil {
		a.cancel()
	}
	errs = append(errs, a.closeResources())
	a.background.Wait()
	return errors.Join(errs...)
}

func (a *App) closeResources() error {
	var errs []error
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close broker: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) openStores() (prediction.Repository, userstats.Repository, error) {
	var (
		predictions prediction.Repository
		stats       userstats.Repository
	)

	switch a.cfg.StoreDriver {
	case config.StorePostgres:
		db, err := openDB(a.cfg)
		if err != nil {
			return nil, nil, err
		}
		a.db = db
		predictions = postgres.NewPredictionRepository(db)
		stats = postgres.NewUserStatsRepository(db)
	default:
		predictions = memory.NewPredictionRepository()
		stats = memory.NewUserStatsRepository()
	}

	if a.cfg.CacheEnabled {
		stats = cache.NewUserStatsRepository(stats, a.cfg.CacheTTL)
	}

	a.logger.Info("stores ready", "driver", a.cfg.StoreDriver, "cache_enabled", a.cfg.CacheEnabled)
	return predictions, stats, nil
}

func (a *App) buildSource() match.Source {
	if a.cfg.FootballDataToken == "" {
		a.logger.Warn("FOOTBALL_DATA_TOKEN is empty, serving matches from the in-memory source")
		return memory.NewMatchSource()
	}

	return footballdata.NewClient(footballdata.ClientConfig{
		BaseURL:        a.cfg.FootballDataBaseURL,
		Token:          a.cfg.FootballDataToken,
		Timeout:        a.cfg.FootballDataTimeout,
		MaxRetries:     a.cfg.FootballDataMaxRetries,
		Competitions:   a.cfg.FootballDataCompetitions,
		Logger:         a.logger,
		CircuitBreaker: a.cfg.FootballDataCircuit,
	})
}

func (a *App) buildPublisher() (domainnotification.Publisher, error) {
	publishers := domainnotification.Fanout{a.Broker}
	if !a.cfg.WebhookEnabled {
		return publishers, nil
	}

	hook, err := webhook.NewPublisher(webhook.PublisherConfig{
		URL:            a.cfg.WebhookURL,
		Secret:         a.cfg.WebhookSecret,
		Timeout:        a.cfg.WebhookTimeout,
		CircuitBreaker: a.cfg.WebhookCircuit,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("build webhook publisher: %w", err)
	}
	return append(publishers, hook), nil
}

func (a *App) logEvents(ctx context.Context, deliveries <-chan notification.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			a.logger.DebugContext(ctx, "notification published", "event", delivery.Name, "match_id", delivery.MatchID)
		}
	}
}
