package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/brandscope/logoharvest/internal/hash/sha256"
	"github.com/brandscope/logoharvest/internal/imaging"
	"github.com/brandscope/logoharvest/internal/logo"
	"github.com/brandscope/logoharvest/internal/progress"
)

// Outcome is the admission decision for one fetch result.
type Outcome int

// Admission outcomes.
const (
	// Admitted means the logo was written to the store as a new entry.
	Admitted Outcome = iota
	// RejectedDuplicate means the similarity rule judged the image the
	// same logo as an already-accepted one. Expected, not an error.
	RejectedDuplicate
	// RejectedFailed covers fetch failures and undecodable payloads.
	RejectedFailed
)

// acceptedLogo is the durable record of one admitted logo. The histogram
// is cached so new candidates never recompute it.
type acceptedLogo struct {
	brand logo.BrandKey
	path  string
	hist  imaging.Histogram
}

// Admitter is the serialized decision engine. It must be driven from a
// single goroutine; it owns the accepted set and the reorder buffer that
// turns arbitrary completion order into ascending candidate index order.
type Admitter struct {
	store   logo.Store
	cfg     Config
	logger  *zap.Logger
	emitter progress.Emitter
	runID   [16]byte
	hasher  *sha256.Hasher

	accepted []acceptedLogo
	digests  map[string]logo.BrandKey
	pending  map[int]logo.FetchResult
	next     int
	summary  Summary
}

// NewAdmitter constructs an Admitter starting at candidate index 0.
func NewAdmitter(store logo.Store, cfg Config, logger *zap.Logger, emitter progress.Emitter, runID [16]byte) *Admitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = progress.Nop{}
	}
	return &Admitter{
		store:   store,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		emitter: emitter,
		runID:   runID,
		hasher:  sha256.New(),
		digests: make(map[string]logo.BrandKey),
		pending: make(map[int]logo.FetchResult),
	}
}

// Offer buffers a fetch result and applies every result that is next in
// candidate index order. Results may arrive in any order; decisions are
// always taken in ascending index order, which makes the final store
// independent of network timing.
func (a *Admitter) Offer(res logo.FetchResult) {
	idx := res.Candidate.Index
	if idx < a.next {
		a.logger.Warn("stale fetch result ignored", zap.Int("index", idx))
		return
	}
	a.pending[idx] = res
	for {
		ready, ok := a.pending[a.next]
		if !ok {
			return
		}
		delete(a.pending, a.next)
		a.next++
		a.apply(ready)
	}
}

// Summary returns the counters accumulated so far.
func (a *Admitter) Summary() Summary {
	return a.summary
}

// Abandon accounts for candidates that will never be applied: unreceived
// results plus any buffered out-of-order results stranded behind a gap.
func (a *Admitter) Abandon(unreceived int) {
	a.summary.FetchFailures += unreceived + len(a.pending)
	a.pending = make(map[int]logo.FetchResult)
}

// apply runs the admission decision for one result:
// failed fetch -> failed decode -> byte-exact duplicate -> perceptual
// duplicate behind the prefix gate -> admit.
func (a *Admitter) apply(res logo.FetchResult) Outcome {
	cand := res.Candidate

	if res.Status != logo.FetchSuccess {
		a.summary.FetchFailures++
		a.reject(cand, progress.StageRejectFailed, 0, res.Status.String())
		return RejectedFailed
	}
	a.summary.Fetched++

	img, err := imaging.Decode(res.Body)
	if err != nil {
		a.summary.DecodeFailures++
		a.reject(cand, progress.StageRejectFailed, 0, err.Error())
		return RejectedFailed
	}

	digest, _ := a.hasher.Hash(res.Body)
	if owner, dup := a.digests[digest]; dup {
		a.summary.DuplicatesRejected++
		a.reject(cand, progress.StageRejectDuplicate, 1, "byte-identical to "+string(owner))
		return RejectedDuplicate
	}

	hist := imaging.NewHistogram(img)
	prefix := cand.Brand.Prefix(a.cfg.PrefixLength)
	for _, acc := range a.accepted {
		if acc.brand.Prefix(a.cfg.PrefixLength) != prefix {
			continue
		}
		score := hist.Similarity(acc.hist)
		if score >= a.cfg.SimilarityThreshold {
			a.summary.DuplicatesRejected++
			a.reject(cand, progress.StageRejectDuplicate, score, "similar to "+string(acc.brand))
			return RejectedDuplicate
		}
	}

	path, err := a.store.Put(cand.Brand, img)
	if err != nil {
		a.summary.FetchFailures++
		a.logger.Error("store write failed",
			zap.String("brand", string(cand.Brand)),
			zap.Error(err),
		)
		a.reject(cand, progress.StageRejectFailed, 0, err.Error())
		return RejectedFailed
	}

	a.digests[digest] = cand.Brand
	a.accepted = append(a.accepted, acceptedLogo{brand: cand.Brand, path: path, hist: hist})
	a.summary.Admitted++
	a.emitter.Emit(progress.Event{
		RunID: a.runID,
		TS:    time.Now().UTC(),
		Stage: progress.StageAdmit,
		Brand: string(cand.Brand),
		URL:   cand.SourceURL,
	})
	return Admitted
}

func (a *Admitter) reject(cand logo.Candidate, stage progress.Stage, score float64, note string) {
	a.emitter.Emit(progress.Event{
		RunID: a.runID,
		TS:    time.Now().UTC(),
		Stage: stage,
		Brand: string(cand.Brand),
		URL:   cand.SourceURL,
		Score: score,
		Note:  note,
	})
}
