package store_test

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandscope/logoharvest/internal/imaging"
	"github.com/brandscope/logoharvest/internal/logo"
	"github.com/brandscope/logoharvest/internal/store"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 128, G: 32, B: 200, A: 255})
		}
	}
	return img
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("CreatesMissingDirectory", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "logos")
		s, err := store.New(dir)
		require.NoError(t, err)
		assert.NotNil(t, s)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("EmptyDirFails", func(t *testing.T) {
		t.Parallel()
		_, err := store.New("  ")
		require.Error(t, err)
	})

	t.Run("FileAtPathFails", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "occupied")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		_, err := store.New(path)
		require.Error(t, err)
	})
}

func TestPutAndList(t *testing.T) {
	t.Parallel()

	s, err := store.New(t.TempDir())
	require.NoError(t, err)

	pathB, err := s.Put("beta", testImage())
	require.NoError(t, err)
	pathA, err := s.Put("acme", testImage())
	require.NoError(t, err)

	// Files are valid PNGs.
	for _, p := range []string{pathA, pathB} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		_, err = imaging.Decode(data)
		require.NoError(t, err)
	}

	entries := s.List()
	require.Len(t, entries, 2)
	assert.Equal(t, logo.BrandKey("acme"), entries[0].Brand)
	assert.Equal(t, logo.BrandKey("beta"), entries[1].Brand)
	assert.Equal(t, 2, s.Len())
}

func TestPut_DuplicateBrandRejected(t *testing.T) {
	t.Parallel()

	s, err := store.New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Put("acme", testImage())
	require.NoError(t, err)
	_, err = s.Put("acme", testImage())
	require.Error(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestPut_EmptyBrandRejected(t *testing.T) {
	t.Parallel()

	s, err := store.New(t.TempDir())
	require.NoError(t, err)
	_, err = s.Put("", testImage())
	require.Error(t, err)
}

func TestFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "acme.png", store.FileName("acme"))
	assert.Equal(t, "acme.png", store.FileName("ACME"))
	assert.Equal(t, "a_b_c.png", store.FileName("a/b\\c"))
	assert.Equal(t, "____.png", store.FileName("../."))
}

func TestOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := store.New(dir)
	require.NoError(t, err)
	_, err = s.Put("acme", testImage())
	require.NoError(t, err)
	_, err = s.Put("beta", testImage())
	require.NoError(t, err)

	reopened, err := store.Open(dir)
	require.NoError(t, err)
	entries := reopened.List()
	require.Len(t, entries, 2)
	assert.Equal(t, logo.BrandKey("acme"), entries[0].Brand)
}

func TestOpen_MissingDirFails(t *testing.T) {
	t.Parallel()

	_, err := store.Open(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
