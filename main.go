package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raine/kawthar-catalog/config"
	"github.com/raine/kawthar-catalog/internal/app"
	"github.com/raine/kawthar-catalog/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	logFileName     = "kawthar-catalog.log"
	shutdownTimeout = 10 * time.Second
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	config.LoadEnvFile()
	cfg := config.Load()

	// JOURNAL_STREAM is set by systemd when running as a service; journald
	// keeps the logs there.
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			fatal("failed to open log file: %v", err)
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))
		log.Info().Str("logFile", logFileName).Msg("logging to file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	api := server.New(a.Repository, a.Gallery)
	if a.Store != nil {
		api.RegisterSnapshots(a.Store)
	}
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)

	// Warm the catalog so the first request does not pay for the load. A
	// failure here is retried by the next request.
	g.Go(func() error {
		c, err := a.Repository.EnsureLoaded(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("catalog warm-up failed")
			return nil
		}
		if a.Store != nil {
			saved, err := a.Store.SaveSnapshot(ctx, c)
			if err != nil {
				log.Warn().Err(err).Msg("failed to save catalog snapshot")
			} else if saved {
				log.Info().Str("loadId", c.LoadID).Msg("catalog snapshot saved")
			}
		}
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.ListenAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
