// Package server composes the HTTP surface, the batch pipeline and their
// backing infrastructure from configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	assignorhandler "aprovame/internal/assignor/handler"
	assignormetrics "aprovame/internal/assignor/metrics"
	assignorservice "aprovame/internal/assignor/service"
	assignorstore "aprovame/internal/assignor/store"
	authhandler "aprovame/internal/auth/handler"
	authmetrics "aprovame/internal/auth/metrics"
	authservice "aprovame/internal/auth/service"
	"aprovame/internal/auth/token"
	"aprovame/internal/batch/dedup"
	batchhandler "aprovame/internal/batch/handler"
	"aprovame/internal/batch/intake"
	batchmetrics "aprovame/internal/batch/metrics"
	"aprovame/internal/batch/processor"
	"aprovame/internal/batch/queue"
	"aprovame/internal/notify"
	payablehandler "aprovame/internal/payable/handler"
	payablemetrics "aprovame/internal/payable/metrics"
	payableservice "aprovame/internal/payable/service"
	payablestore "aprovame/internal/payable/store"
	"aprovame/internal/platform/config"
	"aprovame/internal/platform/database"
	"aprovame/internal/platform/health"
	"aprovame/internal/platform/kafka/consumer"
	"aprovame/internal/platform/kafka/producer"
	platformredis "aprovame/internal/platform/redis"
	httptransport "aprovame/internal/transport/http"
	"aprovame/migrations"
	"aprovame/pkg/platform/circuit"
	"aprovame/pkg/platform/middleware/metadata"
	request "aprovame/pkg/platform/middleware/request"
)

const poolStatsInterval = 15 * time.Second

type runner func(ctx context.Context) error

// App is a fully wired server. Handler serves HTTP; Run also drives the
// batch consumer and background loops.
type App struct {
	cfg    config.Server
	logger *slog.Logger

	handler http.Handler
	runners []runner
	closers []func()
}

type Option func(o *options)

type options struct {
	sender notify.Sender
}

// WithSender replaces the configured report transport.
func WithSender(s notify.Sender) Option {
	return func(o *options) {
		o.sender = s
	}
}

// New builds the application. Postgres, Kafka and Redis are used when their
// URLs are configured; otherwise in-memory equivalents take their place.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checks := health.New(cfg.Environment)

	// Stores
	memAssignors := assignorstore.NewInMemory()
	var (
		assignors assignorservice.Store = memAssignors
		payables  payableservice.Store  = payablestore.NewInMemory(payablestore.WithAssignorRows(memAssignors))
	)
	pool, err := database.New(ctx, database.DefaultConfig(cfg.Database.URL))
	if err != nil {
		return nil, err
	}
	if pool != nil {
		app.closers = append(app.closers, func() { _ = pool.Close() }) //nolint:errcheck // shutdown path
		if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
			return nil, err
		}
		assignors = assignorstore.NewPostgres(pool.DB())
		payables = payablestore.NewPostgres(pool.DB())
		checks.RegisterCheck("database", pool.Health)
		logger.InfoContext(ctx, "using postgres stores")
	} else {
		logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
	}

	assignorSvc := assignorservice.New(assignors,
		assignorservice.WithLogger(logger),
		assignorservice.WithMetrics(assignormetrics.New(registry)),
	)
	payableSvc := payableservice.New(payables, assignorSvc,
		payableservice.WithLogger(logger),
		payableservice.WithMetrics(payablemetrics.New(registry)),
	)

	// Notifier
	sender := o.sender
	if sender == nil {
		if cfg.SMTP.Enabled() {
			sender = notify.NewResilientSender(
				notify.NewSMTPSender(notify.SMTPConfig{
					Host: cfg.SMTP.Host,
					Port: cfg.SMTP.Port,
					User: cfg.SMTP.User,
					Pass: cfg.SMTP.Pass,
				}),
				notify.NewLogSender(logger),
				circuit.New("smtp", circuit.WithFailureThreshold(3), circuit.WithCooldown(time.Minute)),
				logger,
			)
		} else {
			logger.WarnContext(ctx, "SMTP_HOST not set, batch reports will be logged")
			sender = notify.NewLogSender(logger)
		}
	}
	mailer := notify.NewMailer(sender, cfg.SMTP.From,
		notify.WithLogger(logger),
		notify.WithFallbackRecipient(cfg.SMTP.FallbackEmail),
	)

	// Batch pipeline
	bm := batchmetrics.New(registry)
	redisClient, err := platformredis.New(ctx, cfg.Redis, platformredis.NewMetrics(registry))
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		app.closers = append(app.closers, func() { _ = redisClient.Close() }) //nolint:errcheck // shutdown path
		checks.RegisterCheck("redis", redisClient.Health)
		app.runners = append(app.runners, func(ctx context.Context) error {
			return redisClient.RunPoolStats(ctx, poolStatsInterval)
		})
	}

	procOpts := []processor.Option{
		processor.WithLogger(logger),
		processor.WithMetrics(bm),
		processor.WithBudget(cfg.Batch.BudgetBase, cfg.Batch.BudgetPerItem),
	}
	if cfg.Batch.Dedup {
		if redisClient != nil {
			procOpts = append(procOpts, processor.WithDeduplicator(dedup.NewRedis(redisClient, cfg.Batch.DedupTTL)))
		} else {
			procOpts = append(procOpts, processor.WithDeduplicator(dedup.NewInMemory(cfg.Batch.DedupTTL)))
		}
	}
	proc := processor.New(payableSvc, mailer, procOpts...)

	publisher, err := app.wireQueue(ctx, proc, bm, checks)
	if err != nil {
		return nil, err
	}
	batchIntake := intake.New(assignorSvc, publisher,
		intake.WithLogger(logger),
		intake.WithMetrics(bm),
	)

	// Auth
	verifier, err := newVerifier(cfg.Auth)
	if err != nil {
		return nil, err
	}
	tokens := token.NewService(cfg.Auth.JWTSigningKey, cfg.Auth.TokenTTL)
	authSvc := authservice.New(verifier, tokens,
		authservice.WithLogger(logger),
		authservice.WithMetrics(authmetrics.New(registry)),
		authservice.WithLimiter(authservice.NewLoginLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst)),
	)

	app.handler = httptransport.NewRouter(httptransport.Config{
		RequestTimeout: cfg.RequestTimeout,
		TrustedProxies: metadata.ParseTrustedProxies(cfg.TrustedProxies),
		Gatherer:       registry,
		Metrics:        request.NewMetrics(registry),
	}, httptransport.Routes{
		Health: checks,
		Auth:   authhandler.New(authSvc, logger),
		Batch:  batchhandler.New(batchIntake, mailer, logger),
		Integrations: []httptransport.Registrar{
			assignorhandler.New(assignorSvc, logger),
			payablehandler.New(payableSvc, logger),
		},
	}, tokens, logger)

	ok = true
	return app, nil
}

// wireQueue picks Kafka when brokers are configured, else the in-process queue.
func (a *App) wireQueue(ctx context.Context, proc *processor.Processor, bm *batchmetrics.Metrics, checks *health.Handler) (intake.Publisher, error) {
	if !a.cfg.Kafka.Enabled() {
		a.logger.WarnContext(ctx, "KAFKA_BROKERS not set, using in-process batch queue")
		q := queue.NewMemoryQueue(proc, a.cfg.Batch.QueueBuffer,
			queue.WithWorkers(a.cfg.Batch.Workers),
			queue.WithMemoryLogger(a.logger),
		)
		a.runners = append(a.runners, q.Run)
		return q, nil
	}

	topic := a.cfg.Kafka.BatchTopic
	if topic == "" {
		topic = queue.DefaultTopic
	}

	p, err := producer.New(producer.Config{Brokers: a.cfg.Kafka.Brokers, Acks: "all"}, a.logger,
		producer.WithDeliveryFailure(func(*producer.Message, error) {
			bm.IncrementDeliveryFailure()
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	a.closers = append(a.closers, p.Close)

	c, err := consumer.New(consumer.Config{
		Brokers:         a.cfg.Kafka.Brokers,
		GroupID:         a.cfg.Kafka.GroupID,
		Topics:          []string{topic},
		AutoOffsetReset: "earliest",
	}, queue.NewKafkaHandler(proc, a.logger), a.logger)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	a.runners = append(a.runners, c.Run)

	checks.RegisterCheck("kafka", p.Ping)
	a.logger.InfoContext(ctx, "using kafka batch queue", "topic", topic, "group_id", a.cfg.Kafka.GroupID)
	return queue.NewKafkaPublisher(p, topic), nil
}

func newVerifier(cfg config.AuthConfig) (authservice.CredentialVerifier, error) {
	var (
		v   *authservice.StaticVerifier
		err error
	)
	if cfg.PasswordHash != "" {
		v, err = authservice.NewStaticVerifier(cfg.Login, cfg.PasswordHash)
	} else {
		v, err = authservice.NewStaticVerifierFromPassword(cfg.Login, cfg.Password)
	}
	if err != nil {
		return nil, fmt.Errorf("configure credentials: %w", err)
	}
	return v, nil
}

func (a *App) Handler() http.Handler {
	return a.handler
}

// RunWorkers drives the batch consumer and background loops until ctx is done.
func (a *App) RunWorkers(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, run := range a.runners {
		g.Go(func() error { return run(gctx) })
	}
	return g.Wait()
}

// Run serves HTTP on the configured address alongside the workers. When ctx
// is cancelled the server stops accepting requests, the workers drain, and
// every resource is closed.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.InfoContext(gctx, "starting http server", "addr", a.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.InfoContext(gctx, "shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), a.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return a.RunWorkers(gctx)
	})
	return g.Wait()
}

// Close releases connections in reverse order of acquisition. Safe to call twice.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
