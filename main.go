package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/remindagent/internal/agent"
	"github.com/example/remindagent/internal/ai"
	"github.com/example/remindagent/internal/config"
	"github.com/example/remindagent/internal/database"
	"github.com/example/remindagent/internal/logging"
	"github.com/example/remindagent/internal/metrics"
	"github.com/example/remindagent/internal/notify"
	"github.com/example/remindagent/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// envFile is loaded before the process environment is read
	envFile string
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "remindagent",
	Short: "Adaptive reminder scheduling agent",
	Long: `remindagent decides when tasks should be scheduled, how urgent they are and
whether the user is overloaded, learning from every reported outcome.

Without OPENAI_API_KEY every decision is made by the built-in heuristics.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load")
	rootCmd.AddCommand(serveCmd)
}

// app holds the handles shared by all commands
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     database.BehaviorStore
	registry  *prometheus.Registry
	scheduler *scheduler.Scheduler
	agent     *agent.Agent
}

// newApp wires the agent from configuration. Reminder jobs are only
// registered when withJobs is set and the scheduler is enabled.
func newApp(withJobs bool) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Mode)
	if err != nil {
		return nil, err
	}

	store, err := database.Open(database.Options{
		Type: cfg.Database.Type,
		Path: cfg.Database.Path,
		URL:  cfg.Database.URL,
	})
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	client, err := ai.NewOpenAI(cfg.AI, logger, m)
	if err != nil {
		logger.Warn("reasoning service disabled, using heuristics", zap.Error(err))
		client = nil
	}

	opts := agent.Options{
		Store:    store,
		Client:   client,
		Location: cfg.Scheduler.Location,
		Logger:   logger,
		Metrics:  m,
	}
	a := &app{cfg: cfg, logger: logger, store: store, registry: registry}

	if withJobs && cfg.Scheduler.Enabled {
		a.scheduler = scheduler.New(cfg.Scheduler.Location, logger, m)
		opts.Jobs = a.scheduler
		opts.Notifier = notify.NewLog(logger)
		if cfg.Telegram.Token != "" {
			tg, err := notify.NewTelegram(cfg.Telegram, logger)
			if err != nil {
				logger.Warn("telegram delivery disabled", zap.Error(err))
			} else {
				opts.Notifier = tg
			}
		}
	}

	a.agent = agent.New(opts)
	return a, nil
}

// Close releases the store and flushes the logger
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reminder scheduler and metrics endpoint",
	Long: `Run the reminder daemon. Reminders of unresolved future tasks are restored
from the store on start, then fired at their scheduled time. Metrics are
served on METRICS_ADDR under /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.scheduler != nil {
		if _, err := a.agent.RestoreReminders(ctx); err != nil {
			return err
		}
		a.scheduler.Start()
		defer a.scheduler.Stop()
	} else {
		a.logger.Info("scheduler disabled")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	a.logger.Info("reminder agent started", zap.String("metrics_addr", a.cfg.Metrics.Addr))
	<-ctx.Done()
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("error during shutdown", zap.Error(err))
	}
	return nil
}
