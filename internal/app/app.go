package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/saraelainee/1023B-backend-novo/internal/health"
	"github.com/saraelainee/1023B-backend-novo/internal/httpapi"
	"github.com/saraelainee/1023B-backend-novo/internal/messaging/kafka"
	"github.com/saraelainee/1023B-backend-novo/internal/metrics"
	"github.com/saraelainee/1023B-backend-novo/internal/service/analytics"
	"github.com/saraelainee/1023B-backend-novo/internal/service/auth"
	"github.com/saraelainee/1023B-backend-novo/internal/service/cart"
	"github.com/saraelainee/1023B-backend-novo/internal/service/outbox"
	"github.com/saraelainee/1023B-backend-novo/internal/service/product"
	"github.com/saraelainee/1023B-backend-novo/internal/service/user"
	"github.com/saraelainee/1023B-backend-novo/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run поднимает API-сервер, сервер метрик и outbox worker
// и блокируется до отмены ctx или падения сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	// Kafka опционален: без брокеров события копятся в outbox, но не публикуются.
	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	if kafkaProducer != nil {
		worker := outbox.NewWorker(
			deps.OutboxRepo,
			kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicCartEvents),
			outbox.WithDLQPublisher(kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)),
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		go worker.Run(ctx)
	}

	cartMetrics := metrics.NewCartMetrics()
	gate := auth.NewService(cfg.JWTSecret, logger.WithField("component", "auth"))
	users := user.NewService(deps.UserRepo, logger.WithField("component", "users"), cartMetrics)
	products := product.NewService(deps.ProductRepo, logger.WithField("component", "catalog"), cartMetrics)
	carts := cart.NewService(deps.CartRepo, deps.ProductRepo, deps.OutboxRepo, logger.WithField("component", "cart"))
	analyticsService := analytics.NewService(
		deps.AnalyticsRepo,
		deps.CartRepo,
		deps.UserRepo,
		deps.ProductRepo,
		logger.WithField("component", "analytics"),
	)

	handler := httpapi.NewHandler(gate, users, products, carts, analyticsService, logger.WithField("component", "http_api"))

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if store := deps.Store(); store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(pingCtx)
		}))
	}
	if kafkaProducer != nil {
		healthHandler.RegisterChecker("kafka", healthcheck.NewSimpleChecker("kafka", func() error {
			return nil
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: handler.Router()}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
