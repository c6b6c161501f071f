package client

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"coursekeeper/internal/app/client/config"
	"coursekeeper/internal/domain/course"
	"coursekeeper/internal/infrastructure/storage/sqlite"
	"coursekeeper/internal/presenter"
	"coursekeeper/internal/store"
	"coursekeeper/internal/store/memory"
	"coursekeeper/internal/store/remote"
)

type App struct {
	config *config.Config
	log    *slog.Logger
	store  store.Client
	repo   *course.Repository
}

type ctxKey struct{}

// WithApp кладет приложение в контекст команды.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, ctxKey{}, app)
}

// FromContext достает приложение, положенное WithApp.
func FromContext(ctx context.Context) (*App, error) {
	app, ok := ctx.Value(ctxKey{}).(*App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	client, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	return NewWithStore(cfg, client, log), nil
}

// NewWithStore собирает приложение над готовым store.Client.
func NewWithStore(cfg *config.Config, client store.Client, log *slog.Logger) *App {
	return &App{
		config: cfg,
		log:    log,
		store:  client,
		repo:   course.NewRepository(client, log, course.WithCollection(cfg.Collection)),
	}
}

func openStore(cfg *config.Config, log *slog.Logger) (store.Client, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(log), nil
	case config.BackendSQLite:
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
		}
		s, err := sqlite.New(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendRemote:
		c, err := remote.New(cfg.ServerAddress, log)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации клиента сервера: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("неизвестный backend %q", cfg.Backend)
	}
}

// Courses возвращает репозиторий курсов.
func (a *App) Courses() course.Servicer {
	return a.repo
}

// List returns the current collection once. skipped counts records that
// could not be decoded.
func (a *App) List(ctx context.Context) ([]course.Course, int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	first := make(chan []course.Course, 1)
	failed := make(chan error, 1)

	sub, err := a.repo.SubscribeAll(ctx,
		func(cs []course.Course) {
			select {
			case first <- cs:
			default:
			}
		},
		func(err error) {
			failed <- err
		},
	)
	if err != nil {
		return nil, 0, err
	}
	defer a.repo.Unsubscribe(sub)

	select {
	case cs := <-first:
		return cs, sub.Skipped(), nil
	case err := <-failed:
		return nil, 0, err
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%w: %w", course.ErrCancelled, ctx.Err())
	}
}

// Watch renders every snapshot of the collection through a presenter until
// ctx is done or the store cancels the subscription.
func (a *App) Watch(ctx context.Context, r presenter.Renderer) error {
	p := presenter.New(r, a.log)
	failed := make(chan error, 1)

	sub, err := a.repo.SubscribeAll(ctx, func(cs []course.Course) { p.OnCoursesUpdated(cs) }, func(err error) {
		p.OnError(err)
		failed <- err
	})
	if err != nil {
		return err
	}
	defer a.repo.Unsubscribe(sub)

	select {
	case <-ctx.Done():
		return nil
	case <-sub.Done():
		select {
		case err := <-failed:
			return err
		default:
			return nil
		}
	}
}

func (a *App) Close() error {
	return a.store.Close()
}
