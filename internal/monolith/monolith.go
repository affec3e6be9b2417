// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"errors"
	"io"

	"github.com/go-chi/chi/v5"

	"github.com/fd1az/resale-pricer/internal/config"
	"github.com/fd1az/resale-pricer/internal/di"
	"github.com/fd1az/resale-pricer/internal/health"
	"github.com/fd1az/resale-pricer/internal/httpx"
	"github.com/fd1az/resale-pricer/internal/logger"
)

// APIPrefix is where modules mount their HTTP routes.
const APIPrefix = "/api/v1"

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Router() chi.Router
	Health() *health.Server
	Services() di.ServiceRegistry
	// OnClose registers a resource released by Close, in reverse order.
	OnClose(c io.Closer)
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config    *config.Config
	logger    logger.LoggerInterface
	mux       *chi.Mux
	api       chi.Router
	health    *health.Server
	container di.Container
	closers   []io.Closer
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	mux := httpx.NewRouter(log, cfg.Server.RequestTimeout)

	var api chi.Router
	mux.Route(APIPrefix, func(r chi.Router) { api = r })

	container := di.NewContainer()

	// Register global services
	container.Register("config", cfg)
	container.Register("logger", log)

	return &app{
		config:    cfg,
		logger:    log,
		mux:       mux,
		api:       api,
		health:    health.NewServer(cfg.Server.HealthPort, cfg.App.Environment),
		container: container,
	}, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

// Router is the API sub-router mounted at APIPrefix.
func (a *app) Router() chi.Router {
	return a.api
}

// Handler is the root HTTP handler, API and health endpoints included.
func (a *app) Handler() *chi.Mux {
	return a.mux
}

func (a *app) Health() *health.Server {
	return a.health
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

func (a *app) OnClose(c io.Closer) {
	a.closers = append(a.closers, c)
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	h := a.health.Handler()
	for _, path := range []string{"/health", "/ready", "/live"} {
		a.mux.Handle(path, h)
	}
	return nil
}

// Close closes all resources.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
