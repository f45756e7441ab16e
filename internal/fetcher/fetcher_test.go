package fetcher_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandscope/logoharvest/internal/fetcher"
	"github.com/brandscope/logoharvest/internal/imaging"
	"github.com/brandscope/logoharvest/internal/logo"
)

func logoPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newFetcher() *fetcher.Fetcher {
	return fetcher.New(fetcher.Config{
		UserAgent:       "logoharvest-test/1.0",
		Timeout:         2 * time.Second,
		DownloadTimeout: 2 * time.Second,
	}, nil, nil)
}

func TestFetchLogo_ImgTagWins(t *testing.T) {
	t.Parallel()

	pngData := logoPNG(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<img src="/banner.jpg">
			<img src="/assets/company-logo.png">
		</body></html>`))
	})
	mux.HandleFunc("/assets/company-logo.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngData)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res := newFetcher().FetchLogo(context.Background(), logo.Candidate{
		Brand:     "acme",
		SourceURL: srv.URL,
	})
	require.Equal(t, logo.FetchSuccess, res.Status)
	require.Equal(t, pngData, res.Body)
	_, err := imaging.Decode(res.Body)
	require.NoError(t, err)
}

func TestFetchLogo_IconLinkFallback(t *testing.T) {
	t.Parallel()

	pngData := logoPNG(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head>
			<link rel="shortcut icon" href="/brand.png">
		</head><body><img src="/photo.jpg"></body></html>`))
	})
	mux.HandleFunc("/brand.png", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(pngData)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res := newFetcher().FetchLogo(context.Background(), logo.Candidate{SourceURL: srv.URL})
	require.Equal(t, logo.FetchSuccess, res.Status)
	assert.Equal(t, pngData, res.Body)
}

func TestFetchLogo_FaviconFallback(t *testing.T) {
	t.Parallel()

	pngData := logoPNG(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>nothing here</body></html>`))
	})
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(pngData)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res := newFetcher().FetchLogo(context.Background(), logo.Candidate{SourceURL: srv.URL})
	require.Equal(t, logo.FetchSuccess, res.Status)
	assert.Equal(t, pngData, res.Body)
}

func TestFetchLogo_MissingLogoIsNotFound(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><body>no images at all</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res := newFetcher().FetchLogo(context.Background(), logo.Candidate{SourceURL: srv.URL})
	assert.Equal(t, logo.FetchNotFound, res.Status)
	assert.Nil(t, res.Body)
}

func TestFetchLogo_ServerDownIsNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := newFetcher().FetchLogo(context.Background(), logo.Candidate{SourceURL: url})
	assert.Equal(t, logo.FetchNetworkError, res.Status)
	require.Error(t, res.Err)
}

func TestFetchLogo_SlowDownloadIsTimeout(t *testing.T) {
	t.Parallel()

	pngData := logoPNG(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><img src="/slow-logo.png"></html>`))
	})
	mux.HandleFunc("/slow-logo.png", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write(pngData)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := fetcher.New(fetcher.Config{
		Timeout:         2 * time.Second,
		DownloadTimeout: 50 * time.Millisecond,
	}, nil, nil)

	res := f.FetchLogo(context.Background(), logo.Candidate{SourceURL: srv.URL})
	assert.Equal(t, logo.FetchTimeout, res.Status)
}

func TestFetchLogo_CanceledContext(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Second)
		_, _ = w.Write([]byte(`<html></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newFetcher().FetchLogo(ctx, logo.Candidate{SourceURL: srv.URL})
	assert.NotEqual(t, logo.FetchSuccess, res.Status)
}
