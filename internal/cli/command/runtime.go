package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/yndnr/delivtrack-go/internal/cli/api"
	"github.com/yndnr/delivtrack-go/internal/cli/config"
	"github.com/yndnr/delivtrack-go/internal/cli/connection"
	"github.com/yndnr/delivtrack-go/internal/cli/router"
	"github.com/yndnr/delivtrack-go/internal/core/domain"
	"github.com/yndnr/delivtrack-go/internal/core/service"
	"github.com/yndnr/delivtrack-go/internal/core/validate"
	"github.com/yndnr/delivtrack-go/internal/infra/buildinfo"
	"github.com/yndnr/delivtrack-go/internal/infra/tlsroots"
	"github.com/yndnr/delivtrack-go/internal/storage"
	"github.com/yndnr/delivtrack-go/internal/telemetry/logger"
	"github.com/yndnr/delivtrack-go/internal/telemetry/metric"
)

// Runtime holds the services shared by every command of one process.
//
// Wiring order matters: the navigator is registered on the pipeline
// before the session manager, so a 401 is a forced redirect to login
// rather than an ordinary guard redirect after the session ends.
type Runtime struct {
	Config     *config.CLIConfig
	ConfigPath string
	Log        logger.Logger
	Metrics    *metric.Registry

	Store     *storage.SessionStore
	Pipeline  *connection.HTTPClient
	Auth      *api.AuthAPI
	Clients   *api.ClientsAPI
	Drivers   *api.DriversAPI
	Logs      *api.TransportLogsAPI
	Session   *service.SessionManager
	Navigator *router.Navigator
	Validator *validate.Validator
	Dashboard *service.DashboardService

	closeOnce sync.Once
	closeErr  error
}

// RuntimeOption configures NewRuntime.
type RuntimeOption func(*runtimeOptions)

type runtimeOptions struct {
	engine    storage.KVEngine
	logOutput io.Writer
}

// WithEngine uses engine instead of opening the configured one.
func WithEngine(engine storage.KVEngine) RuntimeOption {
	return func(o *runtimeOptions) {
		o.engine = engine
	}
}

// WithLogOutput sends diagnostics to w instead of stderr.
func WithLogOutput(w io.Writer) RuntimeOption {
	return func(o *runtimeOptions) {
		o.logOutput = w
	}
}

// NewRuntime opens the session store, wires the pipeline and restores
// the session. The returned runtime must be closed.
func NewRuntime(ctx context.Context, cfg *config.CLIConfig, opts ...RuntimeOption) (*Runtime, error) {
	var o runtimeOptions
	for _, opt := range opts {
		opt(&o)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: o.logOutput,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	rt := &Runtime{
		Config:  cfg,
		Log:     log,
		Metrics: metric.NewRegistry(),
	}

	// 1. Store
	engine := o.engine
	if engine == nil {
		engine, err = openEngine(cfg, log, rt.Metrics)
		if err != nil {
			return nil, err
		}
	}
	var storeOpts []storage.SessionStoreOption
	if cfg.Store.SealKeyFile != "" {
		secret, err := os.ReadFile(cfg.Store.SealKeyFile)
		if err != nil {
			engine.Close()
			return nil, fmt.Errorf("read seal key: %w", err)
		}
		sealer, err := storage.NewTokenSealer([]byte(strings.TrimSpace(string(secret))))
		if err != nil {
			engine.Close()
			return nil, fmt.Errorf("seal key: %w", err)
		}
		storeOpts = append(storeOpts, storage.WithSealer(sealer))
	}
	rt.Store = storage.NewSessionStore(engine, storeOpts...)

	// 2. Pipeline
	tlsConfig, err := tlsroots.ClientConfig(cfg.API.CAFile, cfg.API.Insecure)
	if err != nil {
		rt.Store.Close()
		return nil, err
	}
	rt.Pipeline = connection.NewHTTPClient(connection.Options{
		BaseURL:   cfg.API.URL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		TLSConfig: tlsConfig,
		UserAgent: buildinfo.UserAgent(),
		Logger:    log,
		Metrics:   rt.Metrics,
	})

	// 3. API surfaces
	rt.Auth = api.NewAuthAPI(rt.Pipeline)
	rt.Clients = api.NewClientsAPI(rt.Pipeline)
	rt.Drivers = api.NewDriversAPI(rt.Pipeline)
	rt.Logs = api.NewTransportLogsAPI(rt.Pipeline)
	rt.Dashboard = service.NewDashboardService(rt.Clients, rt.Drivers, rt.Logs)

	rt.Validator, err = validate.New()
	if err != nil {
		rt.Store.Close()
		return nil, err
	}

	// 4. Session manager and navigator
	rt.Session = service.NewSessionManager(rt.Store, rt.Auth,
		service.WithLogger(log),
		service.WithMetrics(rt.Metrics),
	)
	rt.Pipeline.UseTokenSource(rt.Session)

	rt.Navigator = router.NewNavigator(rt.Session)
	rt.Navigator.OnChange(func(from, to router.Route) {
		log.Debug("route changed", "from", string(from), "to", string(to))
	})
	rt.Pipeline.OnUnauthorized(func(ev connection.UnauthorizedEvent) {
		if rt.Navigator.HandleUnauthorized() {
			log.Info("redirected to login", "method", ev.Method, "path", ev.Path)
		}
	})
	rt.Pipeline.OnUnauthorized(func(connection.UnauthorizedEvent) {
		rt.Session.HandleUnauthorized(context.Background())
	})
	rt.Session.Subscribe(func(domain.AuthState) {
		rt.Navigator.Sync()
	})
	rt.Metrics.Registerer().MustRegister(metric.NewSessionCollector(func() bool {
		return rt.Session.State().IsAuthenticated
	}))

	// 5. Restore
	if err := rt.Session.Init(ctx); err != nil {
		rt.Store.Close()
		return nil, err
	}
	return rt, nil
}

func openEngine(cfg *config.CLIConfig, log logger.Logger, reg *metric.Registry) (storage.KVEngine, error) {
	kv := storage.DefaultKVConfig(cfg.Store.Dir)
	kv.Engine = cfg.Store.Engine
	kv.Redis = storage.RedisConfig{
		Addr:     cfg.Store.Redis.Addr,
		Password: cfg.Store.Redis.Password,
		DB:       cfg.Store.Redis.DB,
		Prefix:   cfg.Store.Redis.Prefix,
	}

	engine, err := storage.OpenEngine(kv, logger.Slog(log))
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if b, ok := engine.(*storage.BadgerEngine); ok {
		b.RegisterMetrics(reg.Registerer())
	}
	return engine, nil
}

// Close releases the session store. It is safe to call more than once.
func (rt *Runtime) Close() error {
	rt.closeOnce.Do(func() {
		rt.closeErr = rt.Store.Close()
	})
	return rt.closeErr
}
