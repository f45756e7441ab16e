package dataset_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandscope/logoharvest/internal/dataset"
	"github.com/brandscope/logoharvest/internal/logo"
)

func TestRead(t *testing.T) {
	t.Parallel()

	input := "id,domain\n1,acme.com\n2,  beta.org\n3,\n4,gamma.io\n"
	records, err := dataset.Read(strings.NewReader(input), "domain")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, logo.SiteRecord{RawIdentifier: "acme.com", SourceRow: 2}, records[0])
	assert.Equal(t, "beta.org", records[1].RawIdentifier)
	assert.Equal(t, logo.SiteRecord{RawIdentifier: "gamma.io", SourceRow: 5}, records[2])
}

func TestRead_ColumnIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	records, err := dataset.Read(strings.NewReader("Domain\nacme.com\n"), "domain")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestRead_MissingColumnFails(t *testing.T) {
	t.Parallel()

	_, err := dataset.Read(strings.NewReader("id,url\n1,acme.com\n"), "domain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain")
}

func TestRead_EmptyInputFails(t *testing.T) {
	t.Parallel()

	_, err := dataset.Read(strings.NewReader(""), "domain")
	require.Error(t, err)
}

func TestReduce_DropsExactDuplicates(t *testing.T) {
	t.Parallel()

	records := []logo.SiteRecord{
		{RawIdentifier: "acme.com", SourceRow: 2},
		{RawIdentifier: "acme.com", SourceRow: 3},
		{RawIdentifier: "beta.org", SourceRow: 4},
	}
	out := dataset.Reduce(records)
	require.Len(t, out, 2)
	assert.Equal(t, logo.BrandKey("acme"), out[0].Brand)
	assert.Equal(t, logo.BrandKey("beta"), out[1].Brand)
}

func TestReduce_CollapsesBrandGroupsFirstSeenWins(t *testing.T) {
	t.Parallel()

	records := []logo.SiteRecord{
		{RawIdentifier: "acme-uk.com", SourceRow: 2},
		{RawIdentifier: "acme.de", SourceRow: 3},
		{RawIdentifier: "acme.com", SourceRow: 4},
		{RawIdentifier: "beta.org", SourceRow: 5},
	}
	out := dataset.Reduce(records)
	require.Len(t, out, 2)

	// Representative is the first-seen identifier of the group.
	assert.Equal(t, "acme-uk.com", out[0].SourceURL)
	assert.Equal(t, logo.BrandKey("acme"), out[0].Brand)
	assert.Equal(t, 0, out[0].Index)
	assert.Equal(t, 1, out[1].Index)
}

func TestReduce_OutputBrandsUniqueAndMonotonic(t *testing.T) {
	t.Parallel()

	records := []logo.SiteRecord{
		{RawIdentifier: "acme.com"},
		{RawIdentifier: "acme-shop.com"},
		{RawIdentifier: "beta.org"},
		{RawIdentifier: "beta.org"},
		{RawIdentifier: "gamma.io"},
	}
	out := dataset.Reduce(records)
	assert.LessOrEqual(t, len(out), len(records))

	seen := map[logo.BrandKey]bool{}
	for i, c := range out {
		assert.False(t, seen[c.Brand], "brand %q emitted twice", c.Brand)
		seen[c.Brand] = true
		assert.Equal(t, i, c.Index)
	}
}

func TestReduce_DeterministicAcrossRuns(t *testing.T) {
	t.Parallel()

	records := []logo.SiteRecord{
		{RawIdentifier: "acme-uk.com"},
		{RawIdentifier: "acme.de"},
		{RawIdentifier: "beta.org"},
	}
	first := dataset.Reduce(records)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, dataset.Reduce(records))
	}
}

func TestReduce_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, dataset.Reduce(nil))
}
