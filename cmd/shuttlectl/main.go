package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/shuttlectl/internal/admin"
	"github.com/danmuck/shuttlectl/internal/auth"
	"github.com/danmuck/shuttlectl/internal/observability"
	"github.com/danmuck/shuttlectl/internal/station"
	"github.com/danmuck/shuttlectl/internal/stats"
	"github.com/rs/zerolog"
)

const appName = "shuttlectl"

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run(opts cliOptions) error {
	logger := observability.InitLogger(appName)

	cfg, err := loadRunConfig(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder, closeStats, err := stats.Open(stats.Options{
		Backend:   cfg.Stats.Backend,
		RedisAddr: cfg.Stats.RedisAddr,
		Prefix:    cfg.Stats.Prefix,
		TTL:       cfg.Stats.TTL.Duration,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStats(); err != nil {
			logger.Warn().Err(err).Msg("stats close failed")
		}
	}()

	metrics := observability.NewStationMetrics(appName)
	outcomes := stats.NewObserver(recorder, time.Second)
	defer outcomes.Close()
	st, err := station.New(
		cfg.Station(),
		station.NewTranscript(logger),
		metrics,
		outcomes,
	)
	if err != nil {
		return err
	}
	metrics.Bind(st)

	adminErr := make(chan error, 1)
	if cfg.AdminAddr != "" {
		srv := admin.New(appName, cfg.AdminAddr, st, metrics, logger, cfg.CorsOrigins, auth.FromToken(cfg.AdminToken))
		go func() {
			adminErr <- srv.Serve(ctx)
		}()
		logger.Info().Str("addr", cfg.AdminAddr).Msg("admin server listening")
	}

	logger.Info().
		Int("passengers", cfg.Passengers).
		Int("capacity", cfg.Capacity).
		Bool("timeouts", cfg.Timeouts.Enabled).
		Msg("station starting")

	report, err := st.Run(ctx)
	outcomes.Close()
	logReport(logger, report, recorder)
	if cfg.AdminAddr != "" {
		stop()
		if serveErr := <-adminErr; serveErr != nil {
			logger.Warn().Err(serveErr).Msg("admin server failed")
		}
	}

	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("station interrupted")
		return nil
	}
	return err
}

func logReport(logger zerolog.Logger, report station.Report, recorder stats.Recorder) {
	event := logger.Info().
		Int("passengers", report.Passengers).
		Int("alighted", report.Alighted).
		Int("reneged", report.RenegedTotal()).
		Int("departed", report.Departed).
		Int("cycles", report.Cycles).
		Dur("elapsed", report.Elapsed)
	for _, stage := range station.Stages() {
		if n := report.Reneged[stage]; n > 0 {
			event = event.Int("reneged_"+string(stage), n)
		}
	}
	event.Msg("station report")

	if mem, ok := recorder.(*stats.MemoryRecorder); ok {
		total := mem.Total()
		logger.Debug().
			Int64("alighted", total.Alighted).
			Int64("reneged", total.Reneged).
			Msg("stats totals")
	}
}
