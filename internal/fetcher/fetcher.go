// Package fetcher downloads logo images using the Colly collector. For each
// candidate it scans the site's landing page for a logo reference, falls
// back to the declared icon or /favicon.ico, and downloads the winner.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/brandscope/logoharvest/internal/logo"
	"github.com/brandscope/logoharvest/internal/ratelimit"
)

// maxLogoBytes caps a single download so one huge asset cannot exhaust
// memory under the concurrent pool.
const maxLogoBytes = 10 << 20

// Config controls collector and download behavior.
type Config struct {
	UserAgent       string
	Timeout         time.Duration
	DownloadTimeout time.Duration
}

// Fetcher implements logo.Fetcher on top of Colly.
type Fetcher struct {
	cfg     Config
	limiter *ratelimit.Limiter
	base    *colly.Collector
	client  *http.Client
	logger  *zap.Logger
}

// New builds a Fetcher. A nil limiter disables per-host throttling.
func New(cfg Config, limiter *ratelimit.Limiter, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 5 * time.Second
	}
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.Config{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Fetcher{
		cfg:     cfg,
		limiter: limiter,
		base:    c,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.DownloadTimeout,
		},
		logger: logger,
	}
}

// FetchLogo resolves and downloads the logo for one candidate. Every
// failure mode maps to a non-Success status; the run is never aborted from
// here.
func (f *Fetcher) FetchLogo(ctx context.Context, cand logo.Candidate) logo.FetchResult {
	start := time.Now()
	result := logo.FetchResult{Candidate: cand}

	pageURL := ensureScheme(cand.SourceURL)
	if err := f.limiter.Wait(ctx, hostOf(pageURL)); err != nil {
		result.Status, result.Err = classify(err), err
		result.Duration = time.Since(start)
		return result
	}

	logoURL, err := f.discover(ctx, pageURL)
	if err != nil {
		f.logger.Debug("logo discovery failed",
			zap.String("brand", string(cand.Brand)),
			zap.String("url", pageURL),
			zap.Error(err),
		)
		result.Status, result.Err = classify(err), err
		result.Duration = time.Since(start)
		return result
	}

	body, err := f.download(ctx, logoURL)
	if err != nil {
		result.Status, result.Err = classify(err), err
		result.Duration = time.Since(start)
		return result
	}

	result.Status = logo.FetchSuccess
	result.Body = body
	result.Duration = time.Since(start)
	return result
}

// errNoLogo marks pages that render fine but expose no logo candidate.
var errNoLogo = errors.New("no logo reference on page")

// errNotFound marks HTTP 404 responses.
var errNotFound = errors.New("resource not found")

// discover fetches the landing page and returns the most promising logo
// URL: an <img> whose src mentions "logo" beats a declared icon, which
// beats the conventional /favicon.ico.
func (f *Fetcher) discover(ctx context.Context, pageURL string) (string, error) {
	collector := f.base.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)

	var (
		logoSrc  string
		iconHref string
		fetchErr error
		status   int
	)

	collector.OnHTML("img[src]", func(e *colly.HTMLElement) {
		if logoSrc != "" {
			return
		}
		src := e.Attr("src")
		if strings.Contains(strings.ToLower(src), "logo") {
			logoSrc = e.Request.AbsoluteURL(src)
		}
	})
	collector.OnHTML("link[rel]", func(e *colly.HTMLElement) {
		if iconHref != "" {
			return
		}
		if strings.Contains(strings.ToLower(e.Attr("rel")), "icon") {
			iconHref = e.Request.AbsoluteURL(e.Attr("href"))
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	if err := f.runCollector(ctx, collector, pageURL, &fetchErr); err != nil {
		if status == http.StatusNotFound {
			return "", errNotFound
		}
		return "", err
	}

	switch {
	case logoSrc != "":
		return logoSrc, nil
	case iconHref != "":
		return iconHref, nil
	case status >= 200 && status < 300:
		return strings.TrimRight(pageURL, "/") + "/favicon.ico", nil
	default:
		return "", errNoLogo
	}
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, target string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(target)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("page visit canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("page visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("page response failed: %w", *fetchErr)
		}
		return nil
	}
}

func (f *Fetcher) download(ctx context.Context, logoURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download logo: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes))
	if err != nil {
		return nil, fmt.Errorf("read logo body: %w", err)
	}
	return body, nil
}

// classify maps an error to the fetch status taxonomy.
func classify(err error) logo.FetchStatus {
	if err == nil {
		return logo.FetchSuccess
	}
	if errors.Is(err, errNotFound) || errors.Is(err, errNoLogo) {
		return logo.FetchNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return logo.FetchTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return logo.FetchTimeout
	}
	return logo.FetchNetworkError
}

func ensureScheme(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
