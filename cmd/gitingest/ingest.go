package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantmind-br/gitingest-go/internal/client"
	"github.com/quantmind-br/gitingest-go/internal/config"
	"github.com/quantmind-br/gitingest-go/internal/domain"
	"github.com/quantmind-br/gitingest-go/internal/ingest"
	"github.com/quantmind-br/gitingest-go/internal/service"
	"github.com/quantmind-br/gitingest-go/internal/utils"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <url>",
	Short: "Ingest a repository through a gitingest service",
	Long: `Asks the service at client.base_url (or $GITINGEST_URL) to ingest the
repository and prints the Markdown report. Transient failures are retried
with a doubling delay.

With --local the repository is cloned and summarized in-process instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("base-url", "", "Service URL")
	ingestCmd.Flags().Int("max-file-size", config.DefaultMaxFileSize, "Skip files larger than this many kilobytes")
	ingestCmd.Flags().String("pattern-type", string(domain.PatternExclude), "How --pattern applies: include or exclude")
	ingestCmd.Flags().String("pattern", "", "Pattern for --pattern-type (local mode only)")
	ingestCmd.Flags().Int("max-retries", config.DefaultClientMaxRetries, "Total attempts")
	ingestCmd.Flags().Duration("initial-delay", config.DefaultClientInitialDelay, "Delay before the first retry")
	ingestCmd.Flags().Bool("local", false, "Clone and summarize in-process")
	ingestCmd.Flags().Bool("no-progress", false, "Hide the progress spinner")

	_ = viper.BindPFlag("client.base_url", ingestCmd.Flags().Lookup("base-url"))
	_ = viper.BindPFlag("client.max_retries", ingestCmd.Flags().Lookup("max-retries"))
	_ = viper.BindPFlag("client.initial_delay", ingestCmd.Flags().Lookup("initial-delay"))
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	maxFileSize, _ := cmd.Flags().GetInt("max-file-size")
	patternType, _ := cmd.Flags().GetString("pattern-type")
	pattern, _ := cmd.Flags().GetString("pattern")
	local, _ := cmd.Flags().GetBool("local")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	desc := utils.DescIngesting
	if local {
		desc = utils.DescCloning
	}
	done := func() {}
	if !noProgress {
		done = spin(desc)
	}

	var report string
	if local {
		report, err = ingestLocal(ctx, newLocalIngestor(cfg, log), domain.IngestRequest{
			URL:         args[0],
			MaxFileSize: maxFileSize,
			PatternType: domain.PatternType(patternType),
			Pattern:     pattern,
		})
	} else {
		c := client.NewClient(client.ClientOptions{
			BaseURL: cfg.Client.BaseURL,
			Timeout: cfg.Client.Timeout,
			Logger:  log.WithComponent("client"),
		})
		report, err = c.Ingest(ctx, args[0], client.Options{
			MaxFileSize:  maxFileSize,
			PatternType:  patternType,
			MaxRetries:   cfg.Client.MaxRetries,
			InitialDelay: cfg.Client.InitialDelay,
		})
	}
	done()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), report)
	return nil
}

// newLocalIngestor builds an in-process ingestor writing digests below the
// configured tmp path.
func newLocalIngestor(cfg *config.Config, log *utils.Logger) *service.Ingestor {
	pipeline := ingest.NewPipeline(ingest.PipelineOptions{
		TmpBasePath:    cfg.Ingest.TmpBasePath,
		MaxDisplaySize: cfg.Ingest.MaxDisplayBytes(),
		Workers:        cfg.Ingest.Workers,
		CloneTimeout:   cfg.Ingest.CloneTimeout,
		Logger:         log.WithComponent("pipeline"),
	})
	return service.NewIngestor(service.IngestorOptions{
		Pipeline:  pipeline,
		Artifacts: service.NewArtifactStore(afero.NewOsFs(), cfg.Ingest.TmpBasePath),
		Logger:    log.WithComponent("ingest"),
	})
}

// ingestLocal formats an in-process ingestion like the remote report
func ingestLocal(ctx context.Context, ing *service.Ingestor, req domain.IngestRequest) (string, error) {
	res, err := ing.Process(ctx, req)
	if err != nil {
		return "", err
	}
	return client.FormatReport(map[string]any{
		"summary": res.Summary,
		"tree":    res.Tree,
		"content": res.Content,
	}), nil
}

// spin animates a spinner on stderr until the returned func is called
func spin(desc string) func() {
	bar := utils.NewProgressBar(-1, desc)
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				_ = bar.Finish()
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	return func() {
		close(stopCh)
		<-doneCh
	}
}
