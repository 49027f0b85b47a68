package disclosure

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout = 15 * time.Second
	userAgent      = "nikkei-bot/1.0 (+https://github.com/CRaLFa/nikkei-bot)"
)

// Fetcher retrieves a page body. An empty string means no data, whether
// the request failed or there was nothing to fetch.
type Fetcher interface {
	Fetch(ctx context.Context, url string) string
}

// HTTPFetcher is a Fetcher backed by net/http with a fixed per-call timeout.
type HTTPFetcher struct {
	client *http.Client
	logger *zap.Logger
}

func NewHTTPFetcher(timeout time.Duration, logger *zap.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) string {
	if url == "" {
		return ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.logger.Warn("failed to build request", zap.String("url", url), zap.Error(err))
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("failed to fetch", zap.String("url", url), zap.Error(err))
		return ""
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Warn("failed to close response body", zap.String("url", url), zap.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("received non-OK status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logger.Warn("failed to read response body", zap.String("url", url), zap.Error(err))
		return ""
	}
	return string(body)
}
