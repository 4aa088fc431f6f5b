package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iceymoss/weibo-trend/internal/conf"
	"github.com/iceymoss/weibo-trend/internal/engine"
	"github.com/iceymoss/weibo-trend/internal/server"
	"github.com/iceymoss/weibo-trend/internal/tasks/pipeline"
	"github.com/iceymoss/weibo-trend/internal/weight"
	"github.com/iceymoss/weibo-trend/pkg/logger"

	// import anonymously to register tasks to the list
	_ "github.com/iceymoss/weibo-trend/internal/tasks/network"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "trend",
	Short:         "trend - weibo topic lifecycle engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scheduler and the dashboard API",
	RunE:  runServe,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Build the live store from scratch and seed staging",
	RunE: withApp(func(ctx context.Context, a *app) error {
		return a.orch.Initialize(ctx)
	}),
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh staging and swap it into live",
	RunE: withApp(func(ctx context.Context, a *app) error {
		return a.orch.Refresh(ctx)
	}),
}

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Print the hot-rate weights of the live store (learned once if absent)",
	RunE: withApp(func(ctx context.Context, a *app) error {
		w, err := weight.NewLearner(a.live).Load(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(w)
	}),
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "config file")
	rootCmd.AddCommand(serveCmd, initCmd, refreshCmd, weightsCmd)
}

func main() {
	defer logger.Sync()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatal("❌ .env error", zap.Error(err))
	}
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func loadConfig() (*conf.Config, error) {
	path := configPath
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Warn("config file not found, using defaults", zap.String("path", path))
		path = ""
	}
	cfg, err := conf.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withApp 加载配置并组装依赖，Ctrl-C 取消 ctx
func withApp(fn func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return fn(ctx, a)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		pipeline.Register(a.orch, a.cfg.Pipeline.RefreshCron)

		scheduler := engine.NewScheduler()
		srv := server.NewServer(a.cfg, scheduler, a.live)

		port := a.cfg.Server.Port
		if port == "" {
			port = ":8080"
		}
		errCh := make(chan error, 1)
		go func() {
			logger.Info("🌐 Dashboard running", zap.String("addr", port))
			errCh <- srv.Run(port)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logger.Info("shutting down, waiting for running jobs")
			<-scheduler.Stop().Done()
			return nil
		}
	})(cmd, args)
}
