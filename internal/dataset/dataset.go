// Package dataset reads the source website records and reduces them to one
// candidate per normalized brand before any network work happens.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brandscope/logoharvest/internal/brand"
	"github.com/brandscope/logoharvest/internal/logo"
)

// ReadCSV loads site records from a CSV file with a header row. The column
// holding the site identifier is selected by name, case-insensitively.
// An unreadable or malformed source dataset is the one fatal condition of a
// run, so errors here abort before any fetching begins.
func ReadCSV(path, column string) ([]logo.SiteRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f, column)
}

// Read parses CSV records from r. Split out from ReadCSV for tests.
func Read(r io.Reader, column string) ([]logo.SiteRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("dataset has no %q column", column)
	}

	var records []logo.SiteRecord
	row := 1
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row %d: %w", row+1, err)
		}
		row++
		if col >= len(fields) {
			continue
		}
		raw := strings.TrimSpace(fields[col])
		if raw == "" {
			continue
		}
		records = append(records, logo.SiteRecord{RawIdentifier: raw, SourceRow: row})
	}
	return records, nil
}

// Reduce collapses records down to one candidate per brand key. It drops
// byte-identical raw identifiers first, then groups by normalized brand,
// keeping the first-seen record's identifier as the representative source.
// Output order is first-appearance order, which fixes the candidate index
// used for deterministic admission downstream. Deterministic and total:
// repeated runs over the same input produce identical output.
func Reduce(records []logo.SiteRecord) []logo.Candidate {
	seenRaw := make(map[string]struct{}, len(records))
	seenBrand := make(map[logo.BrandKey]struct{}, len(records))
	var out []logo.Candidate

	for _, rec := range records {
		if _, dup := seenRaw[rec.RawIdentifier]; dup {
			continue
		}
		seenRaw[rec.RawIdentifier] = struct{}{}

		key := brand.Normalize(rec.RawIdentifier)
		if key == "" {
			continue
		}
		if _, dup := seenBrand[key]; dup {
			continue
		}
		seenBrand[key] = struct{}{}

		out = append(out, logo.Candidate{
			Brand:     key,
			SourceURL: rec.RawIdentifier,
			Index:     len(out),
		})
	}
	return out
}
