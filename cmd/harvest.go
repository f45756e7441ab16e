package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandscope/logoharvest/internal/dataset"
	"github.com/brandscope/logoharvest/internal/fetcher"
	"github.com/brandscope/logoharvest/internal/metrics"
	"github.com/brandscope/logoharvest/internal/pipeline"
	"github.com/brandscope/logoharvest/internal/progress"
	"github.com/brandscope/logoharvest/internal/progress/sinks"
	"github.com/brandscope/logoharvest/internal/ratelimit"
	"github.com/brandscope/logoharvest/internal/server"
	"github.com/brandscope/logoharvest/internal/store"
)

func newHarvestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "harvest",
		Short: "Run the acquisition and deduplication pipeline",
		Long: `Reads the website dataset, reduces it to unique brand candidates,
fetches each candidate's logo under the configured concurrency cap, and
admits non-duplicate logos into the store. The run summary is printed on
completion. Interrupting the run leaves a valid partial store.`,
		RunE: runHarvest,
	}
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	records, err := dataset.ReadCSV(cfg.Input.Path, cfg.Input.Column)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	candidates := dataset.Reduce(records)
	metrics.ObserveRecords(len(records))
	metrics.ObserveCandidates(len(candidates))
	logger.Info("dataset reduced",
		zap.Int("records", len(records)),
		zap.Int("candidates", len(candidates)),
	)

	st, err := store.New(cfg.Store.Dir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	hub := progress.NewHub(progress.Config{},
		sinks.NewLogSink(logger),
		sinks.NewPrometheusSink(),
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hub.Close(closeCtx); err != nil {
			logger.Warn("progress hub close", zap.Error(err))
		}
	}()

	if cfg.Server.Enabled {
		srv := server.New(st, cfg.Server.Port, logger)
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Warn("observability server", zap.Error(err))
			}
		}()
	}

	limiter := ratelimit.New(ratelimit.Config{PerHostRPS: cfg.Fetch.PerHostRPS})
	f := fetcher.New(fetcher.Config{
		UserAgent:       cfg.Fetch.UserAgent,
		Timeout:         cfg.FetchTimeout(),
		DownloadTimeout: cfg.DownloadTimeout(),
	}, limiter, logger)

	p := pipeline.New(f, st, pipeline.Config{
		Concurrency:         cfg.Fetch.Concurrency,
		SimilarityThreshold: cfg.Dedup.SimilarityThreshold,
		PrefixLength:        cfg.Dedup.PrefixLength,
	}, logger, hub)

	summary := p.Run(ctx, candidates)
	summary.RecordsIn = len(records)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "records in:          %d\n", summary.RecordsIn)
	fmt.Fprintf(out, "candidates:          %d\n", summary.Candidates)
	fmt.Fprintf(out, "fetched:             %d\n", summary.Fetched)
	fmt.Fprintf(out, "fetch failures:      %d\n", summary.FetchFailures)
	fmt.Fprintf(out, "decode failures:     %d\n", summary.DecodeFailures)
	fmt.Fprintf(out, "duplicates rejected: %d\n", summary.DuplicatesRejected)
	fmt.Fprintf(out, "admitted:            %d\n", summary.Admitted)
	return nil
}
