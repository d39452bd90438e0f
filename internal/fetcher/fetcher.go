package fetcher

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	cbp "github.com/DaRealFreak/cloudflare-bp-go"

	"crowdfund-scraper/internal/config"
	"crowdfund-scraper/internal/observability"
)

// StatusError - сервер ответил не 2xx; скрейп на этом прерывается
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

type Fetcher struct {
	client   *http.Client
	cfg      *config.Config
	logger   *observability.Logger
	renderer *Renderer
}

type FetchResponse struct {
	StatusCode int
	Body       []byte
	URL        string
	Headers    http.Header
}

func NewFetcher(cfg *config.Config, logger *observability.Logger) *Fetcher {
	var transport http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.HTTP.CloudflareBypass {
		transport = cbp.AddCloudFlareByPass(transport)
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout:   cfg.GetTotalTimeout(),
			Transport: transport,
		},
		cfg:    cfg,
		logger: logger,
	}
	if cfg.Rod.Enabled {
		f.renderer = NewRenderer(cfg, logger)
	}
	return f
}

// Fetch - обычный GET страницы с браузерными заголовками
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	return f.fetchOnce(ctx, urlStr, f.pageHeaders())
}

// FetchXHR - GET с заголовками AJAX-запроса: сервер отдаёт JSON только на них
func (f *Fetcher) FetchXHR(ctx context.Context, urlStr string) (*FetchResponse, error) {
	return f.fetchOnce(ctx, urlStr, f.xhrHeaders())
}

// FetchListing возвращает HTML первой страницы листинга: через headless-браузер,
// если rod включён, иначе обычным GET
func (f *Fetcher) FetchListing(ctx context.Context, urlStr string) (string, error) {
	if f.renderer != nil {
		return f.renderer.Render(ctx, urlStr)
	}

	resp, err := f.Fetch(ctx, urlStr)
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

func (f *Fetcher) pageHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      f.cfg.HTTP.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Encoding": "gzip",
	}
}

func (f *Fetcher) xhrHeaders() map[string]string {
	return map[string]string{
		"User-Agent":       f.cfg.HTTP.UserAgent,
		"Accept":           "application/json, text/javascript, */*; q=0.01",
		"Content-Type":     "application/x-www-form-urlencoded; charset=UTF-8",
		"X-Requested-With": "XMLHttpRequest",
		"Accept-Encoding":  "gzip",
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context, urlStr string, headers map[string]string) (*FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request for %s: %w", urlStr, err)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", urlStr, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Warn("Failed to close response body", "url", urlStr, "error", err.Error())
		}
	}()

	reader := resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip body of %s: %w", urlStr, err)
		}
		defer func() { _ = gzipReader.Close() }()
		reader = gzipReader
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", urlStr, err)
	}

	f.logger.Debug("Fetched",
		"url", urlStr,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"body_bytes", len(body),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: urlStr, StatusCode: resp.StatusCode}
	}

	return &FetchResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        resp.Request.URL.String(),
		Headers:    resp.Header,
	}, nil
}
