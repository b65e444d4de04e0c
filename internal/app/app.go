// Package app builds the shared services from configuration and hands out
// one controller session per chat, client or terminal.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vladimiradmaev/nutriscan/internal/capture"
	"github.com/vladimiradmaev/nutriscan/internal/config"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
	"github.com/vladimiradmaev/nutriscan/internal/logger"
	"github.com/vladimiradmaev/nutriscan/internal/metrics"
	"github.com/vladimiradmaev/nutriscan/internal/repository"
	"github.com/vladimiradmaev/nutriscan/internal/services"
	"github.com/vladimiradmaev/nutriscan/internal/storage"
)

// App holds what every session shares: storage, the analysis client and
// metrics.
type App struct {
	Config   *config.Config
	Store    storage.Store
	Analyzer *services.AnalysisService
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	closers []func() error
}

// Build connects the configured storage backend and AI provider.
func Build(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*App, error) {
	store, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	gen, closeGen, err := NewGenerator(ctx, cfg.AI)
	if err != nil {
		store.Close()
		return nil, err
	}

	a := New(cfg, store, gen, metrics.New(reg))
	if closeGen != nil {
		a.closers = append(a.closers, closeGen)
	}
	return a, nil
}

// New assembles an App from ready-made parts.
func New(cfg *config.Config, store storage.Store, gen services.Generator, m *metrics.Metrics) *App {
	log := logger.GetLogger()
	return &App{
		Config:   cfg,
		Store:    store,
		Analyzer: services.NewAnalysisService(gen, cfg.AI.Timeout, m, log.With("component", "analysis")),
		Metrics:  m,
		Logger:   log,
		closers:  []func() error{store.Close},
	}
}

// NewStore opens the storage backend named by STORAGE_BACKEND.
func NewStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return storage.NewMemoryStore(), nil
	case config.StorageRedis:
		return storage.NewRedisStore(ctx, cfg.Redis.Addr(), cfg.Redis.Password)
	case config.StoragePostgres:
		return storage.NewPostgresStore(cfg.DB.DSN())
	case config.StorageSQLite:
		return storage.NewSQLiteStore(cfg.Storage.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// NewGenerator creates the client for AI_PROVIDER. The returned close
// function may be nil.
func NewGenerator(ctx context.Context, cfg config.AIConfig) (services.Generator, func() error, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		g, err := services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	case config.ProviderOpenAI:
		return services.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil, nil
	case config.ProviderVertex:
		g, err := services.NewVertexGenerator(ctx, services.VertexConfig{
			ProjectID:       cfg.VertexProjectID,
			Location:        cfg.VertexLocation,
			CredentialsFile: cfg.VertexCredentialsFile,
			Model:           cfg.VertexModel,
		})
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// Session is one user's controller with its own camera and namespaced
// history and preferences.
type Session struct {
	Controller *controller.Controller
	History    *repository.HistoryRepository
	Device     capture.Device
}

// NewSession creates and loads a controller whose keys live under namespace.
func (a *App) NewSession(ctx context.Context, namespace string, device capture.Device) *Session {
	store := storage.Namespaced(a.Store, namespace)
	log := a.Logger.With("session", namespace)

	history := repository.NewHistoryRepository(store, log)
	ctrl := controller.New(controller.Config{
		Analyzer:    a.Analyzer,
		History:     history,
		Preferences: repository.NewPreferencesRepository(store, log),
		Camera:      capture.New(device, log),
		Logger:      log,
		Metrics:     a.Metrics,
		TickEvery:   a.Config.ProgressInterval,
	})
	ctrl.Load(ctx)

	return &Session{Controller: ctrl, History: history, Device: device}
}

// Close releases the storage backend and the AI client.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
