// Package main provides the entry point for the scheduled refresh service.
// It refreshes game logs and lines on the refresh schedule, rebuilds the
// feature and analytics tables on the rebuild schedule and serves health
// and metrics endpoints.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/app"
	"github.com/yourusername/hoopslines/internal/health"
	"github.com/yourusername/hoopslines/internal/metrics"
	"github.com/yourusername/hoopslines/internal/predictor"
	"github.com/yourusername/hoopslines/internal/scheduler"
)

const (
	jobRefresh = "refresh"
	jobRebuild = "rebuild"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	envFile := flag.String("env-file", ".env", "Path to a .env file loaded before the config")
	runNow := flag.Bool("run-now", false, "Run the refresh and rebuild jobs once at startup")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig(ctx, *configPath, *envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	svc, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer svc.Close()
	logger := svc.Logger

	metrics.InitRegistry()

	sched := scheduler.NewScheduler(logger.WithField("component", "scheduler"))
	if err := sched.Schedule(jobRefresh, cfg.DataIngestion.Schedule.Refresh, 4*time.Hour, svc.Refresh); err != nil {
		logger.WithError(err).Fatal("Failed to schedule refresh")
	}
	if cfg.DataIngestion.Schedule.Rebuild != "" {
		if err := sched.Schedule(jobRebuild, cfg.DataIngestion.Schedule.Rebuild, 4*time.Hour, svc.Rebuild); err != nil {
			logger.WithError(err).Fatal("Failed to schedule rebuild")
		}
	}

	hcfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     app.Version,
		Port:        cfg.Metrics.Port,
		NextRun:     sched.NextRun,
		Logger:      logger,
		DB:          svc.DB,
	}
	if cfg.Metrics.Enabled {
		hcfg.MetricsPath = cfg.Metrics.Path
		hcfg.Metrics = metrics.Handler()
	}
	if svc.Predictor != nil {
		hcfg.Checks = map[string]health.CheckFunc{
			"predictor": func(ctx context.Context) error { return predictor.HealthCheck(ctx, svc.Predictor) },
		}
	}
	hs := health.NewServer(hcfg)
	if err := hs.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start health server")
	}

	if *runNow {
		for _, job := range []string{jobRefresh, jobRebuild} {
			if cfg.DataIngestion.Schedule.Rebuild == "" && job == jobRebuild {
				continue
			}
			if _, err := sched.RunNow(ctx, job); err != nil {
				logger.WithError(err).WithField("job", job).Error("Startup run failed")
			}
		}
	}

	if err := sched.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start scheduler")
	}
	hs.SetReady(true)

	logger.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"refresh":     cfg.DataIngestion.Schedule.Refresh,
		"rebuild":     cfg.DataIngestion.Schedule.Rebuild,
		"next_run":    sched.NextRun(),
	}).Info("Refresh service running")

	<-ctx.Done()
	hs.SetReady(false)
	if err := sched.Stop(); err != nil {
		logger.WithError(err).Warn("Scheduler did not stop cleanly")
	}
	logger.Info("Refresh service stopped")
}
