// Package worker runs the scheduled jobs of PostForge in a separate process.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/postforge/postforge/internal/application/usage"
	"github.com/postforge/postforge/internal/infrastructure/config"
	"github.com/postforge/postforge/internal/infrastructure/database"
	"github.com/postforge/postforge/internal/infrastructure/metrics"
	"github.com/postforge/postforge/internal/infrastructure/repository"
	"github.com/postforge/postforge/internal/infrastructure/scheduler"
	"github.com/postforge/postforge/internal/shared/clock"
	"github.com/postforge/postforge/internal/shared/logger"
	"github.com/postforge/postforge/internal/shared/version"
)

var (
	env         string
	configPath  string
	metricsAddr string
	once        bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run scheduled background jobs",
		Long:  `Run the usage period rollover on its cron schedule and expose worker metrics.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9091", "Address for the /metrics endpoint (empty disables it)")
	cmd.Flags().BoolVar(&once, "once", false, "Run the usage rollover once and exit")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, env == "development"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger().Named("worker")
	log.Infow("starting worker", "environment", env, "version", version.String())

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	db := database.Get()
	clk := clock.System()
	tracker := usage.NewTracker(repository.NewUsageRecordRepository(db, clk, log), clk, log.Named("usage"))
	rollover := usage.NewRolloverJob(repository.NewSubscriptionRepository(db, log), tracker)

	if once {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()
		created, err := rollover.Execute(ctx)
		if err != nil {
			return fmt.Errorf("usage rollover failed: %w", err)
		}
		log.Infow("usage rollover completed", "created", created)
		return nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	sched := scheduler.NewSchedulerManager(m, log.Named("scheduler"))
	if err := sched.RegisterUsageRolloverJob(cfg.Scheduler.UsageRollover, rollover, cfg.Scheduler.RunOnStart); err != nil {
		return err
	}

	var metricsSrv *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics server stopped", "error", err)
			}
		}()
		log.Infow("metrics endpoint listening", "address", metricsAddr)
	}

	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down worker...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs []error
	if err := sched.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Errorw("worker shutdown finished with errors", "error", err)
		return err
	}

	log.Infow("worker exited gracefully")
	return nil
}
