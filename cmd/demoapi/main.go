// Command demoapi serves an in-memory task API for local development of the console.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/athena/internal/config"
	"github.com/UnknownOlympus/athena/internal/demo"
	"github.com/UnknownOlympus/athena/internal/lib/logger"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	log, closer := logger.Setup(cfg.Env, cfg.Log.File)
	defer closer.Close()

	api := demo.NewAPI(demo.NewStore(time.Now), log.With("division", "demo"), cfg.Demo.Secret)
	srv := &http.Server{
		Addr:              cfg.Demo.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.InfoContext(ctx, "Demo API seeded", "addr", cfg.Demo.Addr, "password", demo.DemoPassword)
	if err := server.Serve(ctx, log, srv, "demo api"); err != nil {
		log.ErrorContext(ctx, "Demo API stopped with error", sl.Err(err))
	}
}
