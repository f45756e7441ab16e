// Package pipeline executes the harvest: a bounded pool of fetch workers
// feeding a single serialized admission stage that decides duplicate vs
// distinct and writes the store.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brandscope/logoharvest/internal/logo"
	"github.com/brandscope/logoharvest/internal/progress"
)

// Config controls pipeline behavior. The knobs are tuning parameters, not
// structural constants; see the configuration surface.
type Config struct {
	// Concurrency caps in-flight fetches (default 10).
	Concurrency int
	// SimilarityThreshold is the inclusive duplicate cutoff (default 0.49).
	SimilarityThreshold float64
	// PrefixLength is the brand-key prefix gate width (default 3).
	PrefixLength int
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 10
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = 0.49
	}
	if c.PrefixLength <= 0 {
		c.PrefixLength = 3
	}
	return c
}

// Summary counts every stage boundary of a run, so the documented reduction
// from thousands of rows to a few hundred logos can be audited.
type Summary struct {
	RecordsIn          int
	Candidates         int
	Fetched            int
	FetchFailures      int
	DecodeFailures     int
	DuplicatesRejected int
	Admitted           int
}

// Pipeline wires a fetcher pool to the admission stage.
type Pipeline struct {
	fetcher logo.Fetcher
	store   logo.Store
	cfg     Config
	logger  *zap.Logger
	emitter progress.Emitter
}

// New constructs a Pipeline.
func New(fetcher logo.Fetcher, store logo.Store, cfg Config, logger *zap.Logger, emitter progress.Emitter) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = progress.Nop{}
	}
	return &Pipeline{
		fetcher: fetcher,
		store:   store,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		emitter: emitter,
	}
}

// Run fetches every candidate under the concurrency cap and admits results
// one at a time. Fetch completions arrive in arbitrary order; the admitter
// applies them in ascending candidate index, so the final store is
// identical no matter how network timing interleaves. Individual failures
// are counted, never fatal.
func (p *Pipeline) Run(ctx context.Context, candidates []logo.Candidate) Summary {
	runID := progress.UUIDToBytes(uuid.New())
	start := time.Now()
	p.emitter.Emit(progress.Event{
		RunID: runID,
		TS:    start.UTC(),
		Stage: progress.StageRunStart,
		Note:  "harvest run started",
	})

	admitter := NewAdmitter(p.store, p.cfg, p.logger, p.emitter, runID)
	admitter.summary.Candidates = len(candidates)

	jobs := make(chan logo.Candidate)
	results := make(chan logo.FetchResult)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range jobs {
				results <- p.fetchOne(ctx, runID, cand)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, cand := range candidates {
			select {
			case jobs <- cand:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single consumer: the admitter owns the accepted set for the whole
	// run, so no lock guards the histogram comparisons.
	applied := 0
	for res := range results {
		admitter.Offer(res)
		applied++
	}
	if applied < len(candidates) {
		// Context canceled mid-run; unfetched and unapplied candidates
		// count as failures.
		admitter.Abandon(len(candidates) - applied)
	}

	summary := admitter.Summary()
	p.emitter.Emit(progress.Event{
		RunID: runID,
		TS:    time.Now().UTC(),
		Stage: progress.StageRunDone,
		Dur:   time.Since(start),
	})
	p.logger.Info("harvest run finished",
		zap.Int("candidates", summary.Candidates),
		zap.Int("fetched", summary.Fetched),
		zap.Int("fetch_failures", summary.FetchFailures),
		zap.Int("decode_failures", summary.DecodeFailures),
		zap.Int("duplicates_rejected", summary.DuplicatesRejected),
		zap.Int("admitted", summary.Admitted),
		zap.Duration("dur", time.Since(start)),
	)
	return summary
}

func (p *Pipeline) fetchOne(ctx context.Context, runID [16]byte, cand logo.Candidate) logo.FetchResult {
	p.emitter.Emit(progress.Event{
		RunID: runID,
		TS:    time.Now().UTC(),
		Stage: progress.StageFetchStart,
		Brand: string(cand.Brand),
		URL:   cand.SourceURL,
	})

	res := p.fetcher.FetchLogo(ctx, cand)

	note := ""
	if res.Err != nil {
		note = res.Err.Error()
	}
	p.emitter.Emit(progress.Event{
		RunID:  runID,
		TS:     time.Now().UTC(),
		Stage:  progress.StageFetchDone,
		Brand:  string(cand.Brand),
		URL:    cand.SourceURL,
		Status: res.Status.String(),
		Dur:    res.Duration,
		Note:   note,
	})
	return res
}
