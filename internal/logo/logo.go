// Package logo defines the core types and interfaces shared across the
// logo acquisition pipeline: candidates, fetch results, and the contracts
// the pipeline stages are wired together with.
package logo

import (
	"context"
	"image"
	"strings"
	"time"
)

// BrandKey is the normalized canonical identifier for a company, derived
// from its raw site identifier. Deriving it is deterministic: the same raw
// identifier always yields the same key.
type BrandKey string

// Prefix returns the first n characters of the key, lower-cased. Keys
// shorter than n are returned whole.
func (k BrandKey) Prefix(n int) string {
	s := strings.ToLower(string(k))
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

// SiteRecord is one immutable input row from the source dataset.
type SiteRecord struct {
	// RawIdentifier is the URL or bare domain as it appears in the dataset.
	RawIdentifier string
	// SourceRow is the 1-based row number in the source file.
	SourceRow int
}

// Candidate is the surviving representative of one brand group after
// reduction. Index is the candidate's position in reducer output order and
// fixes the admission order downstream.
type Candidate struct {
	Brand     BrandKey
	SourceURL string
	Index     int
}

// FetchStatus classifies the outcome of one logo fetch.
type FetchStatus int

// Fetch outcomes. Anything other than FetchSuccess drops the candidate
// without affecting the rest of the run.
const (
	FetchSuccess FetchStatus = iota
	FetchNotFound
	FetchNetworkError
	FetchTimeout
)

// String returns the wire label used in logs and metrics.
func (s FetchStatus) String() string {
	switch s {
	case FetchSuccess:
		return "success"
	case FetchNotFound:
		return "not_found"
	case FetchNetworkError:
		return "network_error"
	case FetchTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// FetchResult carries the bytes (on success) for one candidate. It is
// consumed immediately by the admission stage and is not persisted beyond
// the run except as a file for admitted logos.
type FetchResult struct {
	Candidate Candidate
	Body      []byte
	Status    FetchStatus
	Duration  time.Duration
	Err       error
}

// Fetcher downloads a logo image for a candidate. Implementations must
// honor ctx and return a non-Success result rather than failing the run.
type Fetcher interface {
	FetchLogo(ctx context.Context, cand Candidate) FetchResult
}

// StoreEntry is one admitted logo visible to downstream consumers.
type StoreEntry struct {
	Brand BrandKey
	Path  string
}

// Store is the append-only artifact the pipeline writes into. Downstream
// analysis is strictly read-only against List.
type Store interface {
	Put(brand BrandKey, img image.Image) (string, error)
	List() []StoreEntry
}
