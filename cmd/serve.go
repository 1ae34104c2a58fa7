package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tcp_snm/deepshift/internal/api"
	"github.com/tcp_snm/deepshift/internal/cache"
	"github.com/tcp_snm/deepshift/internal/config"
	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/email"
	"github.com/tcp_snm/deepshift/internal/events"
	"github.com/tcp_snm/deepshift/internal/metrics"
	"github.com/tcp_snm/deepshift/internal/service"
	"github.com/tcp_snm/deepshift/internal/service/contest_service"
	"github.com/tcp_snm/deepshift/internal/service/earning_service"
	"github.com/tcp_snm/deepshift/internal/service/proctor_service"
	"github.com/tcp_snm/deepshift/internal/service/question_service"
	"github.com/tcp_snm/deepshift/internal/service/registration_service"
	"github.com/tcp_snm/deepshift/internal/service/results_service"
	"github.com/tcp_snm/deepshift/internal/service/stats_service"
	"github.com/tcp_snm/deepshift/internal/service/submission_service"
	"github.com/tcp_snm/deepshift/internal/service/user_service"
	"github.com/tcp_snm/deepshift/middleware"
)

const shutdownTimeout = 10 * time.Second

// infra holds the external clients the services share.
type infra struct {
	pool      *pgxpool.Pool
	redis     *redis.Client
	publisher events.Publisher
	mailer    email.Mailer
	emails    *email.EmailService
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
}

func (i *infra) close() {
	if i.emails != nil {
		i.emails.Stop()
	}
	if err := i.publisher.Close(); err != nil {
		log.Warnf("cannot close event publisher, %v", err)
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warnf("cannot close redis client, %v", err)
		}
	}
	i.pool.Close()
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the http server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func initDatabase(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("database url not configured, set DB_URL")
	}
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func initInfra(ctx context.Context, cfg config.Config) (*infra, error) {
	pool, err := initDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	i := &infra{
		pool:      pool,
		publisher: events.NoopPublisher{},
		mailer:    email.NoopMailer{},
		registry:  prometheus.NewRegistry(),
	}
	i.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	i.metrics = metrics.New(i.registry)

	if cfg.Redis.Addr != "" {
		i.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Infof("results cache backed by redis at %s", cfg.Redis.Addr)
	} else {
		log.Warn("redis not configured, results are read from the database on every request")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		i.publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Infof("publishing events to kafka topic %s", cfg.Kafka.Topic)
	} else {
		log.Warn("kafka not configured, domain events are dropped")
	}

	if cfg.Email.Sender != "" {
		i.emails = email.NewEmailService(email.Config{
			Sender:   cfg.Email.Sender,
			Password: cfg.Email.Password,
			SMTPHost: cfg.Email.SMTPHost,
			SMTPPort: cfg.Email.SMTPPort,
		})
		i.emails.StartEmailWorkers(cfg.Email.Workers)
		i.mailer = i.emails
	} else {
		log.Warn("sender email not configured, notifications are not sent")
	}
	return i, nil
}

func initApi(cfg config.Config, i *infra) *api.Api {
	log.Info("initializing api config")
	db := database.NewStore(i.pool)

	us := &user_service.UserService{DB: db}
	cs := &contest_service.ContestService{DB: db, Now: time.Now}
	qs := &question_service.QuestionService{
		DB: db,
		Cache: cache.NewQuestionCache(
			cfg.Contest.QuestionCacheSize,
			config.Duration(cfg.Contest.QuestionCacheTTL, 5*time.Minute),
		),
		ContestServiceConfig: cs,
	}
	ss := &submission_service.SubmissionService{
		DB:                    db,
		ContestServiceConfig:  cs,
		QuestionServiceConfig: qs,
		Events:                i.publisher,
		Metrics:               i.metrics,
		SubmitGrace:           config.Duration(cfg.Contest.SubmitGrace, submission_service.DefaultSubmitGrace),
	}

	var resultsCache cache.ResultsCache = cache.NoopResultsCache{}
	if i.redis != nil {
		resultsCache = cache.NewRedisResultsCache(i.redis, config.Duration(cfg.Redis.ResultsTTL, 10*time.Minute), i.metrics)
	}

	pm := &proctor_service.Manager{
		Submitter:       ss,
		Metrics:         i.metrics,
		WarningDuration: config.Duration(cfg.Contest.ProctorWarning, proctor_service.DefaultWarningDuration),
	}
	pm.Start()

	return &api.Api{
		UserServiceConfig:     us,
		ContestServiceConfig:  cs,
		QuestionServiceConfig: qs,
		RegistrationServiceConfig: &registration_service.RegistrationService{
			DB:                   db,
			ContestServiceConfig: cs,
			UserServiceConfig:    us,
			Events:               i.publisher,
			Mailer:               i.mailer,
			Metrics:              i.metrics,
		},
		SubmissionServiceConfig: ss,
		ResultsServiceConfig: &results_service.ResultsService{
			DB:                   db,
			ContestServiceConfig: cs,
			UserServiceConfig:    us,
			Cache:                resultsCache,
			Events:               i.publisher,
			Mailer:               i.mailer,
			Metrics:              i.metrics,
		},
		StatsServiceConfig: &stats_service.StatsService{DB: db, ContestServiceConfig: cs},
		EarningServiceConfig: &earning_service.EarningService{
			DB:                db,
			UserServiceConfig: us,
			Now:               time.Now,
			MinWithdrawal:     cfg.Creator.MinWithdrawal,
		},
		ProctorManager: pm,
	}
}

func setCors(router *chi.Mux, origins []string) {
	router.Use(
		cors.Handler(
			cors.Options{
				AllowedOrigins:   origins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: false,
				ExposedHeaders:   []string{"Link"},
				MaxAge:           300,
			},
		),
	)
	log.Info("cors options has been set")
}

func newRouter(cfg config.Config, apiConfig *api.Api, registry *prometheus.Registry) *chi.Mux {
	router := chi.NewRouter()
	setCors(router, cfg.Server.AllowedOrigins)

	router.Get("/healthz", api.HandlerReadiness)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	auth := &middleware.Auth{Secret: []byte(cfg.Auth.JWTSecret)}
	router.Mount("/v1", NewV1Router(apiConfig, auth))
	log.Info("v1 router has been mounted")
	return router
}

func runServer(ctx context.Context, cfg config.Config) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("jwt secret not configured, set JWT_SECRET")
	}
	service.InitializeServices()

	i, err := initInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer i.close()

	apiConfig := initApi(cfg, i)
	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     newRouter(cfg, apiConfig, i.registry),
		ReadTimeout: config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		// websocket sessions manage their own write deadlines
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server cannot be started: %w", err)
		}
		return nil
	case sig := <-stop:
		log.Infof("received %s, shutting down", sig)
	case <-ctx.Done():
		log.Info("context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Infof("server stopped, %d proctoring sessions were open", apiConfig.ProctorManager.Active())
	return nil
}
