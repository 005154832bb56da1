package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/UnknownOlympus/athena/internal/config"
	"github.com/UnknownOlympus/athena/internal/lib/logger"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/repository"
	"github.com/UnknownOlympus/athena/internal/server"
	"github.com/UnknownOlympus/athena/internal/services/snapshots"
	"github.com/UnknownOlympus/athena/internal/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// main is the entry point of the console.
func main() {
	var wgr sync.WaitGroup

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	log, closer := logger.Setup(cfg.Env, cfg.Log.File)
	defer closer.Close()

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	apiClient, err := client.New(cfg.API.BaseURL, client.CreateHTTPClient(log, cfg.API.Timeout, nil), log, appMetrics)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create API client", sl.Err(err))
		os.Exit(1)
	}

	var (
		pinger  server.DBPinger
		service *snapshots.Service
	)
	if cfg.Snapshot.Enabled {
		dtb, dbErr := repository.NewDatabase(ctx, cfg.Postgres)
		if dbErr != nil {
			log.ErrorContext(ctx, "Failed to connect to DB", sl.Err(dbErr))
			os.Exit(1)
		}
		defer dtb.Close()

		pinger = dtb
		service = snapshots.NewService(
			log,
			apiClient,
			apiClient,
			repository.NewSnapshotRepository(dtb, appMetrics),
			appMetrics,
			snapshots.Credentials{Email: cfg.Service.Email, Password: cfg.Service.Password},
		)
	}

	deps := web.Deps{Log: log.With("division", "web"), API: apiClient, Metrics: appMetrics}
	if service != nil {
		deps.Snapshots = service
	}
	console, err := web.New(deps)
	if err != nil {
		log.ErrorContext(ctx, "Failed to build console", sl.Err(err))
		os.Exit(1)
	}

	wgr.Add(2)

	go func() {
		defer wgr.Done()
		server.StartMonitoringServer(ctx, log, reg, pinger, cfg.HTTP.MonitoringPort, cfg.API.BaseURL)
	}()

	go func() {
		defer wgr.Done()
		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           console.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		if serveErr := server.Serve(ctx, log, srv, "console"); serveErr != nil {
			log.ErrorContext(ctx, "Console server failed", sl.Err(serveErr))
			stop()
		}
	}()

	if service != nil {
		wgr.Add(1)
		go func() {
			defer wgr.Done()
			log.InfoContext(ctx, "Starting Snapshot Service")
			if startErr := service.Start(ctx, cfg.Snapshot.Interval); startErr != nil {
				log.ErrorContext(ctx, "Snapshot Service failed", sl.Err(startErr))
			}
			log.InfoContext(ctx, "Snapshot Service stopped.")
		}()
	}

	log.InfoContext(ctx, "Application started. Press Ctrl+C to stop.", "api", cfg.API.BaseURL)

	wgr.Wait()

	log.InfoContext(ctx, "Application stopped gracefully...")
}
