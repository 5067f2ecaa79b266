package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantmind-br/gitingest-go/internal/config"
	"github.com/quantmind-br/gitingest-go/internal/ingest"
	"github.com/quantmind-br/gitingest-go/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ingestion HTTP service",
	Long: `Serves GET /api/v1/ingest and removes temporary clones older than
ingest.delete_repo_after in the background.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", config.DefaultHost, "Listen address")
	serveCmd.Flags().Int("port", config.DefaultPort, "Listen port")
	serveCmd.Flags().String("tmp-path", "", "Root directory of temporary clones")
	serveCmd.Flags().Bool("no-sweep", false, "Disable removal of stale clones")
	serveCmd.Flags().Bool("no-rate-limit", false, "Disable the per-client request quota")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("ingest.tmp_base_path", serveCmd.Flags().Lookup("tmp-path"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if noSweep, _ := cmd.Flags().GetBool("no-sweep"); noSweep {
		cfg.Sweep.Enabled = false
	}
	if noLimit, _ := cmd.Flags().GetBool("no-rate-limit"); noLimit {
		cfg.RateLimit.Enabled = false
	}

	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prom.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pipeline := ingest.NewPipeline(ingest.PipelineOptions{
		TmpBasePath:    cfg.Ingest.TmpBasePath,
		MaxDisplaySize: cfg.Ingest.MaxDisplayBytes(),
		Workers:        cfg.Ingest.Workers,
		CloneTimeout:   cfg.Ingest.CloneTimeout,
		Logger:         log.WithComponent("pipeline"),
	})

	srv, err := server.New(server.Options{
		Config:   cfg,
		Pipeline: pipeline,
		Registry: reg,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
