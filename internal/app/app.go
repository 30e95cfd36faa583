package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"StockResearch/internal/config"
	"StockResearch/internal/corpus"
	"StockResearch/internal/infrastructure/archive"
	"StockResearch/internal/infrastructure/llm"
	"StockResearch/internal/infrastructure/papers"
	"StockResearch/internal/infrastructure/scheduler"
	"StockResearch/internal/infrastructure/storage"
	"StockResearch/internal/infrastructure/telegram"
	"StockResearch/internal/infrastructure/wordpress"
	"StockResearch/internal/logging"
	"StockResearch/internal/ports"
	"StockResearch/internal/prompt"
	"StockResearch/internal/selection"
	"StockResearch/internal/usecase"
	"StockResearch/internal/webhook"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	log      *slog.Logger
	db       *sql.DB
	openai   *llm.ResearchClient
	notifier ports.Notifier

	research    *usecase.Research
	eligibility *usecase.Eligibility
	history     *usecase.History
	publish     *usecase.Publish
}

// New builds the application. A Postgres connection is opened only when a DSN is configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, log: baseLogger}

	registry := corpus.NewRegistry()
	registry.Register(papers.FileLoader{})

	var repository ports.RequestRepository
	if cfg.Database.DSN != "" {
		db, err := storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		repo := storage.NewPostgresRepository(db)
		registry.Register(repo)
		repository = repo
	}

	source := papers.NewStrategySource(registry, cfg.Corpus.Sources, baseLogger.With("component", "corpus"))

	template, err := prompt.Load(cfg.Research.PromptTemplate)
	if err != nil {
		a.Close()
		return nil, err
	}
	if !template.HasSymbol() {
		baseLogger.Warn("prompt template has no stock symbol token", "token", prompt.TokenStockSymbol)
	}

	var dispatcher ports.ResearchDispatcher
	if cfg.OpenAI.APIKey != "" {
		a.openai = llm.NewResearchClient(cfg.OpenAI)
		dispatcher = a.openai
	}

	if tg := telegram.NewNotifier(cfg.Notifications.Telegram); tg.Configured() {
		a.notifier = tg
	}

	a.research = usecase.NewResearch(usecase.ResearchDeps{
		Source:       source,
		Dispatcher:   dispatcher,
		Repository:   repository,
		Notifier:     a.notifier,
		Selector:     selection.NewSelector(nil),
		Template:     template,
		PairAttempts: cfg.Research.PairAttempts,
		Logger:       baseLogger.With("component", "research"),
	})
	a.eligibility = usecase.NewEligibility(source)
	a.history = usecase.NewHistory(repository)
	a.publish = usecase.NewPublish(usecase.PublishDeps{
		Publisher: wordpress.NewPublisher(cfg.WordPress, nil),
		Retriever: dispatcher,
		Draft:     wordpress.DraftFromHTML,
		Render:    wordpress.TextToHTML,
		Logger:    baseLogger.With("component", "publish"),
	})

	return a, nil
}

// Research returns the research use case.
func (a *Application) Research() *usecase.Research { return a.research }

// Eligibility returns the eligible-ticker listing use case.
func (a *Application) Eligibility() *usecase.Eligibility { return a.eligibility }

// History returns the request history use case.
func (a *Application) History() *usecase.History { return a.history }

// Publish returns the blog publishing use case.
func (a *Application) Publish() *usecase.Publish { return a.publish }

// CheckOpenAI confirms the configured API key with a small completion.
func (a *Application) CheckOpenAI(ctx context.Context) (string, error) {
	if a.openai == nil {
		return "", fmt.Errorf("openai api key not configured")
	}
	return a.openai.CheckKey(ctx)
}

// RunEvery runs research immediately and then every interval until ctx ends.
func (a *Application) RunEvery(ctx context.Context, every time.Duration, opts usecase.RunOptions) error {
	sched := usecase.NewScheduler(
		scheduler.NewIntervalScheduler(every),
		a.research,
		opts,
		a.log.With("component", "scheduler"),
	)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return sched.Stop(stopCtx)
}

// WebhookRouter builds the callback receiver with the configured store.
func (a *Application) WebhookRouter() (*gin.Engine, error) {
	store, err := a.callbackStore()
	if err != nil {
		return nil, err
	}

	var verifier *webhook.Verifier
	if a.cfg.Webhook.Secret != "" {
		verifier, err = webhook.NewVerifier(a.cfg.Webhook.Secret)
		if err != nil {
			return nil, err
		}
	} else {
		a.log.Warn("webhook secret not set, signatures are not verified")
	}

	gin.SetMode(gin.ReleaseMode)
	handler := webhook.NewHandler(webhook.Options{
		Store:        store,
		Verifier:     verifier,
		Notifier:     a.notifier,
		Logger:       a.log.With("component", "webhook"),
		MaxBodyBytes: a.cfg.Webhook.MaxBodyBytes,
	})
	a.log.Info("webhook store ready", "location", store.Location())
	return webhook.NewRouter(handler), nil
}

func (a *Application) callbackStore() (ports.CallbackStore, error) {
	if a.cfg.Webhook.S3.Enabled() {
		client, err := archive.NewS3Client(a.cfg.Webhook.S3)
		if err != nil {
			return nil, err
		}
		return archive.NewS3Store(client, a.cfg.Webhook.S3), nil
	}
	return archive.NewFileStore(a.cfg.Webhook.LogsDir)
}

// Close releases the database connection if one was opened.
func (a *Application) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
