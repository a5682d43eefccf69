package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/httpapi"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// Run собирает зависимости и держит оба HTTP-сервера (API и метрики) до
// отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	healthHandler := healthcheck.NewHandler(version.String())
	healthHandler.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func() error {
		if !deps.Storage.Probe(context.Background(), cfg.ProbeTimeout) {
			return errors.New("storage backend unreachable")
		}
		return nil
	}))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	router := httpapi.NewRouter(
		httpapi.NewProductHandler(deps.Catalog, logger.WithField("layer", "httpapi")),
		httpapi.NewOrderHandler(deps.Placement, deps.Orders, logger.WithField("layer", "httpapi")),
		logger.WithField("layer", "httpapi"),
	)
	apiSrv := &http.Server{Addr: cfg.APIAddr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API сервер слушает %s", cfg.APIAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем API сервер")
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

// startMetricsServer запускает HTTP-обработчики /metrics и health-проверок.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
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
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
