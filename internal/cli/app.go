package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/adapters/loam"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/library"
	"github.com/aretw0/turing/pkg/persistence/middleware"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/registry"
	"github.com/aretw0/turing/pkg/session"
)

// App wires the configured loader, run store and session manager.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Loader   *registry.Registry
	Sessions *session.Manager

	closers []io.Closer
}

// NewApp builds the adapters selected by cfg.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{
		Config: cfg,
		Logger: logger,
		Loader: registry.NewRegistry(memory.NewLibraryLoader()),
	}

	if cfg.Library.Dir != "" {
		lib, err := loam.Open(cfg.Library.Dir)
		if err != nil {
			return nil, err
		}
		app.Loader.Register(lib)
	}

	store, locker, err := app.openStore()
	if err != nil {
		return nil, err
	}
	if store, err = app.sealStore(store); err != nil {
		return nil, err
	}
	opts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	app.Sessions = session.NewManager(store, opts...)
	return app, nil
}

func (a *App) openStore() (ports.RunStore, ports.DistributedLocker, error) {
	switch a.Config.Store.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	case config.BackendFile, "":
		return file.New(a.Config.Store.Dir), nil, nil
	case config.BackendRedis:
		store := redis.New(a.Config.Store.RedisAddr, "", 0, redis.WithTTL(a.Config.Store.TTL))
		a.closers = append(a.closers, store)
		a.Logger.Debug("using redis run store", "addr", a.Config.Store.RedisAddr)
		return store, redis.NewLocker(store.Client(), redis.DefaultPrefix), nil
	}
	return nil, nil, &ExitError{
		Code: ExitConfiguration,
		Err:  fmt.Errorf("unknown store backend %q", a.Config.Store.Backend),
	}
}

// sealStore wraps the store with snapshot encryption when a key is configured.
func (a *App) sealStore(store ports.RunStore) (ports.RunStore, error) {
	sc := a.Config.Store
	if sc.EncryptionKey == "" {
		return store, nil
	}
	cfg := middleware.EncryptionConfig{}
	var err error
	if cfg.ActiveKey, err = middleware.ParseKey(sc.EncryptionKey); err != nil {
		return nil, &ExitError{Code: ExitConfiguration, Err: err}
	}
	for _, k := range sc.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, &ExitError{Code: ExitConfiguration, Err: fmt.Errorf("fallback key: %w", err)}
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		return nil, &ExitError{Code: ExitConfiguration, Err: err}
	}
	a.Logger.Debug("run snapshots are encrypted at rest", "fallback_keys", len(cfg.FallbackKeys))
	return mw(store), nil
}

// Close releases the store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// MachineSource selects a machine: a document on disk wins over a name.
type MachineSource struct {
	Name string
	File string
}

// ResolveMachine loads the machine from a file or the loader.
// An empty source yields the default built-in machine.
func (a *App) ResolveMachine(ctx context.Context, src MachineSource) (*domain.Machine, error) {
	if src.File != "" {
		return compiler.NewParser().ParseFile(src.File)
	}
	name := src.Name
	if name == "" {
		name = library.Default
	}
	return a.Loader.GetMachine(ctx, name)
}
