// Package store implements the on-disk logo store, the sole artifact the
// pipeline produces and the only surface downstream analysis reads.
package store

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/brandscope/logoharvest/internal/logo"
)

// Store writes admitted logos to a directory, one canonically encoded PNG
// per brand. It is append-only within a run: there is no delete or mutate
// API, and a brand can be written at most once.
type Store struct {
	dir string

	mu      sync.Mutex
	entries []logo.StoreEntry
	seen    map[logo.BrandKey]struct{}
}

// New opens (creating if needed) the store directory and probes it for
// writability so permission problems surface before the first fetch.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("store directory is required")
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create store directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat store directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("store path %s is not a directory", dir)
	}

	probe := filepath.Join(dir, ".writable_probe")
	if err := os.WriteFile(probe, []byte("probe"), 0o600); err != nil {
		return nil, fmt.Errorf("store directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("remove writability probe: %w", err)
	}

	return &Store{
		dir:  dir,
		seen: make(map[logo.BrandKey]struct{}),
	}, nil
}

// Put encodes img as PNG under a file name derived deterministically from
// the brand key and records the entry. Writing the same brand twice is an
// error; the reducer guarantees unique keys per run.
func (s *Store) Put(brand logo.BrandKey, img image.Image) (string, error) {
	if brand == "" {
		return "", fmt.Errorf("brand key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[brand]; dup {
		return "", fmt.Errorf("brand %q already stored", brand)
	}

	path := filepath.Join(s.dir, FileName(brand))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create logo file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encode logo png: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close logo file: %w", err)
	}

	s.seen[brand] = struct{}{}
	s.entries = append(s.entries, logo.StoreEntry{Brand: brand, Path: path})
	return path, nil
}

// List returns the admitted logos sorted by brand key. The returned slice
// is a copy; callers cannot mutate the store through it.
func (s *Store) List() []logo.StoreEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]logo.StoreEntry(nil), s.entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Brand < out[j].Brand })
	return out
}

// Len reports the number of admitted logos.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// FileName derives the deterministic file name for a brand key. Characters
// that are unsafe in file names are replaced so a hostile identifier cannot
// escape the store directory.
func FileName(brand logo.BrandKey) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, string(brand))
	return safe + ".png"
}

// Open loads an existing store directory for read-only consumers such as
// the analysis commands, listing every PNG already present.
func Open(dir string) (*Store, error) {
	names, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read store directory: %w", err)
	}
	s := &Store{
		dir:  dir,
		seen: make(map[logo.BrandKey]struct{}),
	}
	for _, e := range names {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		brand := logo.BrandKey(strings.TrimSuffix(e.Name(), ".png"))
		s.seen[brand] = struct{}{}
		s.entries = append(s.entries, logo.StoreEntry{
			Brand: brand,
			Path:  filepath.Join(dir, e.Name()),
		})
	}
	return s, nil
}
