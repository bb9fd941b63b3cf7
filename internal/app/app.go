package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/auth"
	"github.com/akkm9120/sctp02-crud-mongo/internal/config"
	"github.com/akkm9120/sctp02-crud-mongo/internal/events"
	"github.com/akkm9120/sctp02-crud-mongo/internal/health"
	"github.com/akkm9120/sctp02-crud-mongo/internal/logger"
	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"
	"github.com/akkm9120/sctp02-crud-mongo/internal/middleware"
	"github.com/akkm9120/sctp02-crud-mongo/internal/student"
	"github.com/akkm9120/sctp02-crud-mongo/internal/subject"
	"github.com/akkm9120/sctp02-crud-mongo/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

const healthCheckInterval = 10 * time.Second

type App struct {
	config     *config.Config
	router     chi.Router
	server     *http.Server
	grpcServer *grpc.Server
	checker    *health.Checker
	stopChecks context.CancelFunc
	stores     *Stores
	events     *events.Emitter
	telemetry  *telemetry.Telemetry
	logger     *slog.Logger
}

func New(ctx context.Context) (*App, error) {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env, "driver", cfg.Database.Driver)

	tel, err := telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, slogLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	stores, err := openStores(ctx, cfg.Database, tel.Metrics)
	if err != nil {
		_ = tel.Shutdown(ctx, slogLogger)
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	app := &App{
		config:    cfg,
		stores:    stores,
		events:    events.NewEmitter(newPublisher(cfg.Events, slogLogger), slogLogger, tel.Metrics),
		telemetry: tel,
		logger:    slogLogger,
	}

	app.router = NewRouter(cfg, stores, app.events, tel.Metrics, slogLogger)

	if cfg.Server.GrpcPort != "" {
		app.grpcServer = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
		app.checker = health.NewChecker(stores.Pinger, slogLogger, tel.Metrics)
		app.checker.Register(app.grpcServer)
	}

	slogLogger.Info("application initialized successfully")

	return app, nil
}

// NewRouter wires every handler onto a chi router. The auth handler guards
// its own protected routes.
func NewRouter(cfg *config.Config, stores *Stores, emitter *events.Emitter, m *metrics.Metrics, logger *slog.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	health.NewHandler(stores.Pinger, logger, m).RegisterRoutes(router)

	studentService := student.NewService(stores.Students, emitter)
	student.NewHandler(studentService, logger, m).RegisterRoutes(router)

	subjectService := subject.NewService(stores.Subjects, emitter)
	subject.NewHandler(subjectService, logger, m).RegisterRoutes(router)

	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret)
	authService := auth.NewService(stores.Users, tokens, cfg.Auth.BcryptCost, emitter)
	auth.NewHandler(authService, tokens, logger, m).RegisterRoutes(router)

	return router
}

// newPublisher returns nil when events are disabled or the broker is
// unreachable; the emitter then drops events.
func newPublisher(cfg config.EventsConfig, logger *slog.Logger) events.Publisher {
	switch cfg.Driver {
	case "nats":
		publisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			logger.Warn("failed to initialize NATS publisher, events disabled", "error", err)
			return nil
		}
		return publisher
	case "kafka":
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Warn("failed to initialize Kafka publisher, events disabled", "error", err)
			return nil
		}
		return publisher
	case "", "none":
		return nil
	default:
		logger.Warn("unknown events driver, events disabled", "driver", cfg.Driver)
		return nil
	}
}

func (a *App) Run() error {
	if a.grpcServer != nil {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", a.config.Server.GrpcPort))
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}

		checkCtx, cancel := context.WithCancel(context.Background())
		a.stopChecks = cancel
		go a.checker.Run(checkCtx, healthCheckInterval)

		go func() {
			a.logger.Info("gRPC health server starting", "port", a.config.Server.GrpcPort)
			if err := a.grpcServer.Serve(lis); err != nil {
				a.logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	if a.stopChecks != nil {
		a.stopChecks()
	}
	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}

	if err := a.events.Close(); err != nil {
		a.logger.Error("events publisher close error", "error", err)
	}

	if err := a.stores.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}

	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
