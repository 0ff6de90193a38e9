// Package app wires the console together. Startup runs as a fixed sequence
// of steps so that views are only built once every UI service they depend
// on exists.
package app

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/appetiteclub/pos/pkg"
	"github.com/appetiteclub/pos/pkg/event"
	"github.com/appetiteclub/pos/pkg/order"
	"github.com/appetiteclub/pos/services/pos/internal/backend"
	"github.com/appetiteclub/pos/services/pos/internal/board"
	"github.com/appetiteclub/pos/services/pos/internal/router"
	"github.com/appetiteclub/pos/services/pos/internal/store"
	"github.com/appetiteclub/pos/services/pos/internal/ui"
	"github.com/appetiteclub/pos/services/pos/internal/views"
	"github.com/aquamarinepk/aqm"
	aqmevents "github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/fileserver"
	"github.com/aquamarinepk/aqm/middleware"
	aqmtemplate "github.com/aquamarinepk/aqm/template"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	AppName    = "pos"
	AppVersion = "0.1.0"
)

const (
	defaultBackendURL   = "http://localhost:8085"
	defaultWarnQuantity = 10.0
	confirmCleanupEvery = 30 * time.Second
	sessionTTL          = 12 * time.Hour
)

// App encapsulates the point-of-sale console.
type App struct {
	config *aqm.Config
	logger aqm.Logger
	assets embed.FS

	steps []Step

	// root
	tmplMgr    *aqmtemplate.Manager
	backend    *backend.Client
	health     *backend.HealthProbe
	stream     *pkg.NATSStream
	subscriber *pkg.NATSSubscriber
	lifecycles []interface{}

	// store
	store      store.Store
	mongoStore *store.MongoStore

	router *router.Router

	// services
	renderer ui.Renderer
	toasts   *ui.ToastService
	confirms *ui.ConfirmService

	// primitives
	icons    *ui.IconRegistry
	services ui.Services

	// mount
	cache   *board.Cache
	handler *views.Handler
	micro   *aqm.Micro
}

type Option func(*App)

// WithAssets sets the embedded templates and static files.
func WithAssets(assets embed.FS) Option {
	return func(a *App) {
		a.assets = assets
	}
}

// New creates a new console application
func New(config *aqm.Config, logger aqm.Logger, opts ...Option) (*App, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	a := &App{
		config: config,
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Initialize runs every startup step in order.
func (a *App) Initialize(ctx context.Context) error {
	for _, s := range Startup {
		if err := a.Execute(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs a single startup step. It fails with ErrStartupOrder unless s
// is the next step of the sequence.
func (a *App) Execute(ctx context.Context, s Step) error {
	next := a.next()
	if s != next {
		return fmt.Errorf("%w: %s requested, %s expected", ErrStartupOrder, s, next)
	}

	var err error
	switch s {
	case StepRoot:
		err = a.initRoot(ctx)
	case StepStore:
		err = a.initStore(ctx)
	case StepRouter:
		err = a.initRouter()
	case StepServices:
		err = a.initServices()
	case StepPrimitives:
		err = a.initPrimitives()
	case StepMount:
		err = a.mount()
	}
	if err != nil {
		return fmt.Errorf("startup %s: %w", s, err)
	}

	a.steps = append(a.steps, s)
	a.logger.Debug("startup step done", "step", s.String())
	return nil
}

// Steps returns the steps completed so far.
func (a *App) Steps() []Step {
	out := make([]Step, len(a.steps))
	copy(out, a.steps)
	return out
}

func (a *App) next() Step {
	if len(a.steps) >= len(Startup) {
		return Step(0)
	}
	return Startup[len(a.steps)]
}

// initRoot builds the template manager and the backend data access.
func (a *App) initRoot(ctx context.Context) error {
	a.tmplMgr = aqmtemplate.NewManager(a.assets, aqmtemplate.WithLogger(a.logger))
	a.lifecycles = append(a.lifecycles, a.tmplMgr)

	backendURL := a.config.GetStringOrDef("services.backend.url", defaultBackendURL)
	a.backend = backend.NewClient(aqm.NewServiceClient(backendURL))

	grpcAddr, _ := a.config.GetString("services.backend.grpc_addr")
	a.health = backend.NewHealthProbe(grpcAddr, a.logger)
	a.lifecycles = append(a.lifecycles, a.health)

	natsURL, _ := a.config.GetString("nats.url")
	if natsURL == "" {
		a.logger.Info("NATS not configured, kitchen board is warmed from the backend only")
		return nil
	}

	if a.config.GetStringOrDef("nats.stream.enabled", "false") == "true" {
		stream, err := pkg.NewNATSStream(ctx, pkg.NATSStreamConfig{
			URL:        natsURL,
			StreamName: "ORDER_EVENTS",
			Topic:      event.OrderStateTopic,
			MaxAge:     24 * time.Hour,
		})
		if err != nil {
			return fmt.Errorf("cannot bind order event stream: %w", err)
		}
		a.stream = stream
		a.logger.Info("NATS stream initialized for board replay")
		a.lifecycles = append(a.lifecycles, aqm.LifecycleHooks{
			OnStop: func(context.Context) error { return stream.Close() },
		})
	}

	subscriber, err := pkg.NewNATSSubscriber(natsURL, a.logger)
	if err != nil {
		return fmt.Errorf("cannot connect to NATS: %w", err)
	}
	a.subscriber = subscriber
	a.lifecycles = append(a.lifecycles, aqm.LifecycleHooks{
		OnStop: func(context.Context) error { return subscriber.Close() },
	})

	return nil
}

// initStore selects the client state store and schedules demo seeding.
func (a *App) initStore(ctx context.Context) error {
	mongoURL, _ := a.config.GetString("db.mongo.url")
	if mongoURL != "" {
		a.mongoStore = store.NewMongoStore(a.config, a.logger)
		a.store = a.mongoStore
		a.lifecycles = append(a.lifecycles, a.mongoStore)
	} else {
		a.store = store.NewMemoryStore()
	}

	if a.config.GetStringOrDef("seeding.demo", "false") != "true" {
		return nil
	}

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	database := func() *mongo.Database {
		if a.mongoStore == nil {
			return nil
		}
		return a.mongoStore.Database()
	}
	a.lifecycles = append(a.lifecycles, aqm.LifecycleHooks{
		OnStart: store.DemoSeedingFunc(seedCtx, a.store, database, a.logger),
		OnStop: func(context.Context) error {
			cancelSeeds()
			return nil
		},
	})
	return nil
}

func (a *App) initRouter() error {
	rt, err := router.New(router.DefaultRoutes())
	if err != nil {
		return err
	}
	a.router = rt
	return nil
}

// initServices registers the template renderer and the toast and
// confirmation services.
func (a *App) initServices() error {
	a.renderer = ui.NewTemplateLibrary(a.tmplMgr)

	a.toasts = ui.NewToastService(a.duration("ui.toast.life", 0), a.logger)
	a.confirms = ui.NewConfirmService(a.duration("ui.confirm.ttl", 0), a.toasts, a.logger)

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	a.lifecycles = append(a.lifecycles, aqm.LifecycleHooks{
		OnStart: func(ctx context.Context) error {
			a.confirms.StartCleanup(cleanupCtx, confirmCleanupEvery)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopCleanup()
			return a.toasts.Stop(ctx)
		},
	})
	return nil
}

// initPrimitives registers the icon set and closes the services context.
func (a *App) initPrimitives() error {
	a.icons = ui.NewIconRegistry()
	ui.RegisterDefaults(a.icons)

	svc, err := ui.NewServices(a.renderer, a.toasts, a.confirms, a.icons)
	if err != nil {
		return err
	}
	a.services = svc
	return nil
}

// mount builds the views, binds the HTTP surface and assembles the runtime.
func (a *App) mount() error {
	var stream aqmevents.StreamConsumer
	if a.stream != nil {
		stream = a.stream
	}
	a.cache = board.NewCache(stream, a.backend, a.logger)

	var subscriber aqmevents.Subscriber
	if a.subscriber != nil {
		subscriber = a.subscriber
	}
	boardSubscriber := board.NewSubscriber(subscriber, a.cache, a.toasts, a.logger)
	a.lifecycles = append(a.lifecycles, boardSubscriber)

	home, err := views.NewHome(a.services, a.store, a.backend, a.cache, a.logger)
	if err != nil {
		return err
	}
	kitchen, err := views.NewKitchen(a.services, a.cache, a.backend, a.logger)
	if err != nil {
		return err
	}
	admin, err := views.NewAdmin(a.services, a.health)
	if err != nil {
		return err
	}
	inventory, err := views.NewInventory(a.services, a.backend, a.float("inventory.warn_quantity", defaultWarnQuantity))
	if err != nil {
		return err
	}
	sales, err := views.NewSales(a.services, a.backend)
	if err != nil {
		return err
	}
	notFound, err := views.NewNotFound(a.services)
	if err != nil {
		return err
	}

	events := ui.NewEventsHandler(a.toasts, a.logger)
	a.handler, err = views.NewHandler(a.router, a.services, a.toasts, a.confirms, events, a.logger,
		home, kitchen, admin, inventory, sales, notFound)
	if err != nil {
		return err
	}

	fileServer := fileserver.New(a.assets, fileserver.WithLogger(a.logger))

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: true,
	})
	stack = append(stack, chimw.NoCache, ui.SessionMiddleware(sessionTTL))

	options := []aqm.Option{
		aqm.WithConfig(a.config),
		aqm.WithLogger(a.logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithRouterConfigurator(func(mux *chi.Mux) {
			mux.NotFound(a.handler.Page)
		}),
		aqm.WithHTTPServerModules("web.port", fileServer, a.handler),
		aqm.WithLifecycle(a.lifecycles...),
		aqm.WithHealthChecks(AppName),
	}

	a.micro = aqm.NewMicro(options...)
	return nil
}

// Run starts the application
func (a *App) Run(ctx context.Context) error {
	if a.micro == nil {
		return fmt.Errorf("%w: run before %s", ErrStartupOrder, StepMount)
	}
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}

func (a *App) duration(key string, def time.Duration) time.Duration {
	raw := a.config.GetStringOrDef(key, def.String())
	d, err := time.ParseDuration(raw)
	if err != nil {
		a.logger.Info("invalid duration in config, using default", "key", key, "value", raw)
		return def
	}
	return d
}

func (a *App) float(key string, def float64) float64 {
	raw := a.config.GetStringOrDef(key, strconv.FormatFloat(def, 'f', -1, 64))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || !order.Finite(f) {
		a.logger.Info("invalid number in config, using default", "key", key, "value", raw)
		return def
	}
	return f
}
